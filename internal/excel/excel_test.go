package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"blocapp/internal/core"
)

func TestBuildTemplate(t *testing.T) {
	f, err := BuildTemplate()
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, templateHeaders, rows[0][:len(templateHeaders)])

	options, err := f.GetRows(optionsSheet)
	require.NoError(t, err)
	assert.Equal(t, "Garsoniera", options[1][0])
	assert.Equal(t, "Termoficare", options[1][1])
}

func TestImportApartments(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", dataSheet))
	rows := [][]any{
		{"Nr_Apt*", "Proprietar*", "Nr_Persoane*", "Suprafata", "Tip_Apartament", "Sursa_Incalzire"},
		{1, "Popescu Ion", 2, "54,5", "2 camere", "Termoficare"},
		{2, "Ionescu Maria", 3, "", "", ""},
		{"abc", "Georgescu Dan", 1, "", "", ""},
		{4, "", 1, "", "", ""},
		{5, "Vasilescu Ana", 0, "", "", ""},
		{6, "Dumitrescu Radu", 2, "", "Vilă", ""},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(dataSheet, cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	result, err := ImportApartments(&buf)
	require.NoError(t, err)

	require.Len(t, result.Apartments, 2)
	assert.Equal(t, 1, result.Apartments[0].Number)
	assert.Equal(t, 54.5, result.Apartments[0].Surface)
	assert.Equal(t, "2 camere", result.Apartments[0].ApartmentType)
	assert.Equal(t, "Ionescu Maria", result.Apartments[1].Owner)

	require.Len(t, result.Errors, 4)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Reason, "Nr_Apt")
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Reason, "Proprietar")
	assert.Equal(t, 6, result.Errors[2].Row)
	assert.Contains(t, result.Errors[2].Reason, "Nr_Persoane")
	assert.Equal(t, 7, result.Errors[3].Row)
	assert.Contains(t, result.Errors[3].Reason, "Tip_Apartament")
}

func TestImportApartments_TemplateRoundTrip(t *testing.T) {
	f, err := BuildTemplate()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	// the template's example row imports as-is
	result, err := ImportApartments(&buf)
	require.NoError(t, err)
	require.Len(t, result.Apartments, 1)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "Popescu Ion", result.Apartments[0].Owner)
}

func TestExportMaintenanceTable(t *testing.T) {
	rows := []core.BillingRow{
		{
			Apartment: 1, Owner: "Popescu Ion", Persons: 2, BlockName: "A1", StairName: "Scara 1",
			CurrentMaintenance: core.FromLei(150), Restante: core.FromLei(50),
			TotalMaintenance: core.FromLei(200), Penalitati: core.FromLei(2),
			TotalDatorat: core.FromLei(202), Paid: true,
			ExpenseDetails: map[string]core.Money{"Apă rece": core.FromLei(150)},
		},
		{
			Apartment: 2, Owner: "Ionescu Maria", Persons: 3, BlockName: "A1", StairName: "Scara 1",
			CurrentMaintenance: core.FromLei(100), TotalMaintenance: core.FromLei(100),
			TotalDatorat:   core.FromLei(100),
			ExpenseDetails: map[string]core.Money{"Apă rece": core.FromLei(100)},
		},
	}

	f, err := ExportMaintenanceTable("ianuarie 2025", rows, []string{"Apă rece"})
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("ianuarie 2025")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Apă rece", got[0][5])
	assert.Equal(t, "Popescu Ion", got[1][1])
	assert.Equal(t, "DA", got[1][11])
	assert.Equal(t, "TOTAL", got[3][0])
	assert.Equal(t, "302", got[3][10])
}
