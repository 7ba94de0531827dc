package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"blocapp/internal/core"
)

// ExportMaintenanceTable writes a billing table to a workbook: one sheet
// named after the month, fixed columns first, then one column per expense
// in catalog order, and a totals row at the bottom.
func ExportMaintenanceTable(month string, rows []core.BillingRow, expenseNames []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", month); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Ap.", "Proprietar", "Pers.", "Bloc", "Scara"}
	headers = append(headers, expenseNames...)
	headers = append(headers,
		"Întreținere curentă", "Restanțe", "Total întreținere",
		"Penalități", "Total datorat", "Achitat")
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(month, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	var totals core.BillingStats
	for r, row := range rows {
		paid := ""
		if row.Paid {
			paid = "DA"
		}
		values := []any{row.Apartment, row.Owner, row.Persons, row.BlockName, row.StairName}
		for _, name := range expenseNames {
			values = append(values, row.ExpenseDetails[name].Lei())
		}
		values = append(values,
			row.CurrentMaintenance.Lei(), row.Restante.Lei(), row.TotalMaintenance.Lei(),
			row.Penalitati.Lei(), row.TotalDatorat.Lei(), paid)
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(month, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	totals = core.StatsOf(rows)
	totalRow := len(rows) + 2
	if err := f.SetCellValue(month, fmt.Sprintf("A%d", totalRow), "TOTAL"); err != nil {
		return nil, err
	}
	totalCol := 5 + len(expenseNames) + 5
	cell, err := excelize.CoordinatesToCellName(totalCol, totalRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(month, cell, totals.TotalMaintenance.Lei()); err != nil {
		return nil, fmt.Errorf("write totals row: %w", err)
	}

	return f, nil
}
