package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blocapp/internal/core"
	"blocapp/internal/storage"
)

type testEnv struct {
	repo        *storage.SQLiteRepository
	structure   *StructureService
	expenses    *ExpenseService
	maintenance *MaintenanceService
	months      *MonthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "blocapp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	maintenance := NewMaintenanceService(repo, nil)
	months := NewMonthService(repo, maintenance)
	months.now = func() time.Time { return time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC) }
	return &testEnv{
		repo:        repo,
		structure:   NewStructureService(repo),
		expenses:    NewExpenseService(repo),
		maintenance: maintenance,
		months:      months,
	}
}

// seedAssociation builds a two-apartment association with initial balances
// and one per-apartment expense for January.
func (env *testEnv) seedAssociation(t *testing.T) (string, []string) {
	t.Helper()
	ctx := context.Background()

	assoc, err := env.structure.CreateAssociation(ctx, "Asociația Primăverii")
	require.NoError(t, err)
	block, err := env.structure.CreateBlock(ctx, assoc.ID, "A1")
	require.NoError(t, err)
	stair, err := env.structure.CreateStair(ctx, block.ID, "Scara 1")
	require.NoError(t, err)

	var ids []string
	for i, owner := range []string{"Popescu Ion", "Ionescu Maria"} {
		apt, err := env.structure.CreateApartment(ctx, core.Apartment{
			StairID: stair.ID, Number: i + 1, Owner: owner, Persons: 2,
			ApartmentType: "2 camere", HeatingSource: "Termoficare",
		})
		require.NoError(t, err)
		ids = append(ids, apt.ID)
	}

	for _, id := range ids {
		require.NoError(t, env.repo.SetInitialBalance(ctx, assoc.ID, id, core.Balance{}))
	}
	require.NoError(t, env.expenses.AddExpense(ctx, core.MonthlyExpense{
		ID:            "exp-lift",
		AssociationID: assoc.ID,
		Month:         "ianuarie 2025",
		Name:          "Întreținere lift",
		Amount:        core.FromLei(100),
		Distribution:  core.DistributionApartment,
	}))
	return assoc.ID, ids
}

func TestMonths_InitialisesPointers(t *testing.T) {
	env := newTestEnv(t)
	associationID, _ := env.seedAssociation(t)

	overview, err := env.months.Months(context.Background(), associationID)
	require.NoError(t, err)
	assert.Equal(t, "ianuarie 2025", overview.Current)
	assert.Equal(t, "februarie 2025", overview.Next)
	assert.Equal(t, core.MonthInLucru, overview.Status)
}

func TestPublish_RequiresInitialBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assoc, err := env.structure.CreateAssociation(ctx, "Asociația Nouă")
	require.NoError(t, err)

	_, _, err = env.months.Publish(ctx, assoc.ID, "ianuarie 2025", false)
	assert.ErrorIs(t, err, ErrInitialBalancesMissing)
}

func TestPublish_FreezesTableAndAdvancesPointers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	associationID, apartmentIDs := env.seedAssociation(t)

	_, err := env.months.Months(ctx, associationID)
	require.NoError(t, err)

	result, report, err := env.months.Publish(ctx, associationID, "ianuarie 2025", false)
	require.NoError(t, err)
	assert.Empty(t, report.MissingReadings)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, core.FromLei(50), result.Rows[0].CurrentMaintenance)

	status, err := env.months.Status(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, core.MonthAfisata, status)

	// publish is one-way
	_, _, err = env.months.Publish(ctx, associationID, "ianuarie 2025", false)
	assert.ErrorIs(t, err, core.ErrMonthPublished)

	// expense edits are refused once published
	err = env.expenses.AddExpense(ctx, core.MonthlyExpense{
		ID: "exp-late", AssociationID: associationID, Month: "ianuarie 2025",
		Name: "Energie electrică", Amount: core.FromLei(60), Distribution: core.DistributionPerson,
	})
	assert.ErrorIs(t, err, core.ErrMonthPublished)

	overview, err := env.months.Months(ctx, associationID)
	require.NoError(t, err)
	assert.Equal(t, "februarie 2025", overview.Current)
	assert.Equal(t, "martie 2025", overview.Next)

	// the published table is served from the snapshot even after data edits
	require.NoError(t, env.repo.SetSnapshotPaid(ctx, associationID, "ianuarie 2025", apartmentIDs[0], true))
	table, err := env.maintenance.MaintenanceTable(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.True(t, table.Rows[0].Paid)
	assert.Equal(t, 1, table.Stats.PaidApartments)
}

func TestPublish_IncompleteReadings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	associationID, apartmentIDs := env.seedAssociation(t)

	require.NoError(t, env.expenses.AddExpense(ctx, core.MonthlyExpense{
		ID:            "exp-apa",
		AssociationID: associationID,
		Month:         "ianuarie 2025",
		Name:          "Apă rece",
		Distribution:  core.DistributionConsumption,
		UnitPrice:     core.FromLei(3.50),
		BillAmount:    core.FromLei(70),
		Consumption:   map[string]float64{apartmentIDs[0]: 10},
	}))

	_, report, err := env.months.Publish(ctx, associationID, "ianuarie 2025", false)
	assert.ErrorIs(t, err, ErrIncompleteReadings)
	assert.Equal(t, []string{"Apă rece: ap. 2"}, report.MissingReadings)

	// force publishes anyway, the missing reading charges zero
	result, report, err := env.months.Publish(ctx, associationID, "ianuarie 2025", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apă rece: ap. 2"}, report.MissingReadings)
	assert.Equal(t, core.FromLei(0), result.Rows[1].ExpenseDetails["Apă rece"])
	assert.Equal(t, core.FromLei(35), result.Rows[0].ExpenseDetails["Apă rece"])
}

func TestMaintenanceTable_PublishedKeepsDerivedFigures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	associationID, apartmentIDs := env.seedAssociation(t)

	require.NoError(t, env.expenses.AddExpense(ctx, core.MonthlyExpense{
		ID:            "exp-apa",
		AssociationID: associationID,
		Month:         "ianuarie 2025",
		Name:          "Apă rece",
		Distribution:  core.DistributionConsumption,
		UnitPrice:     core.FromLei(3.50),
		BillAmount:    core.FromLei(100),
		Consumption:   map[string]float64{apartmentIDs[0]: 10, apartmentIDs[1]: 10},
	}))
	// a percentage rule without a stored value, as pre-validation data
	// could contain
	require.NoError(t, env.repo.SetParticipation(ctx, apartmentIDs[0], "Întreținere lift",
		core.Participation{Kind: core.ParticipationPercentage}))

	_, _, err := env.months.Publish(ctx, associationID, "ianuarie 2025", false)
	require.NoError(t, err)

	// the snapshot read reports the same warnings and consumption gap the
	// publish did
	table, err := env.maintenance.MaintenanceTable(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Warnings)
	require.Contains(t, table.Differences, "Apă rece")
	assert.Equal(t, core.FromLei(-30), table.Differences["Apă rece"])
}

func TestClose_RollsBalancesForward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	associationID, apartmentIDs := env.seedAssociation(t)

	_, err := env.months.Months(ctx, associationID)
	require.NoError(t, err)

	// closing an unpublished month is refused
	_, err = env.months.Close(ctx, associationID, "ianuarie 2025")
	assert.ErrorIs(t, err, core.ErrMonthNotPublished)

	_, _, err = env.months.Publish(ctx, associationID, "ianuarie 2025", false)
	require.NoError(t, err)

	// first apartment pays, second does not
	_, err = env.maintenance.TogglePayment(ctx, associationID, "ianuarie 2025", apartmentIDs[0])
	require.NoError(t, err)

	nextMonth, err := env.months.Close(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, "februarie 2025", nextMonth)

	balances, err := env.repo.ListMonthlyBalances(ctx, associationID, "februarie 2025")
	require.NoError(t, err)
	assert.Equal(t, core.Balance{}, balances[apartmentIDs[0]])
	assert.Equal(t, core.Balance{
		Restante:   core.FromLei(50),
		Penalitati: core.FromLei(0.50),
	}, balances[apartmentIDs[1]])

	// February now starts from the rollover
	table, err := env.maintenance.MaintenanceTable(ctx, associationID, "februarie 2025")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, core.FromLei(50), table.Rows[1].Restante)
	assert.Equal(t, core.FromLei(0.50), table.Rows[1].Penalitati)
}

func TestTogglePayment_UnpublishedMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	associationID, apartmentIDs := env.seedAssociation(t)

	_, err := env.maintenance.TogglePayment(ctx, associationID, "ianuarie 2025", apartmentIDs[0])
	assert.ErrorIs(t, err, core.ErrMonthNotPublished)
}
