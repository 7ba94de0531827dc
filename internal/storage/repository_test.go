package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blocapp/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "blocapp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seedStructure creates one association with one block, one stair and two
// apartments, returning the association and apartment ids.
func seedStructure(t *testing.T, repo *SQLiteRepository) (string, []string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.CreateAssociation(ctx, core.Association{ID: "asoc-1", Name: "Asociația Primăverii"}))
	require.NoError(t, repo.CreateBlock(ctx, core.Block{ID: "bloc-1", AssociationID: "asoc-1", Name: "A1"}))
	require.NoError(t, repo.CreateStair(ctx, core.Stair{ID: "scara-1", BlockID: "bloc-1", Name: "Scara 1"}))

	apartments := []core.Apartment{
		{ID: "ap-1", StairID: "scara-1", Number: 1, Owner: "Popescu Ion", Persons: 2, ApartmentType: "2 camere", HeatingSource: "Termoficare"},
		{ID: "ap-2", StairID: "scara-1", Number: 2, Owner: "Ionescu Maria", Persons: 3, ApartmentType: "3 camere", HeatingSource: "Termoficare"},
	}
	require.NoError(t, repo.CreateApartments(ctx, apartments))
	return "asoc-1", []string{"ap-1", "ap-2"}
}

func TestStructureRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, _ := seedStructure(t, repo)

	got, err := repo.GetAssociation(ctx, associationID)
	require.NoError(t, err)
	assert.Equal(t, "Asociația Primăverii", got.Name)

	apartments, err := repo.ListApartments(ctx, associationID)
	require.NoError(t, err)
	require.Len(t, apartments, 2)
	assert.Equal(t, 1, apartments[0].Number)
	assert.Equal(t, 2, apartments[1].Number)

	owner, err := repo.AssociationIDForApartment(ctx, "ap-2")
	require.NoError(t, err)
	assert.Equal(t, associationID, owner)
}

func TestCreateApartment_DuplicateNumber(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedStructure(t, repo)

	err := repo.CreateApartment(ctx, core.Apartment{
		ID: "ap-3", StairID: "scara-1", Number: 1, Owner: "Georgescu Dan", Persons: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteApartment_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	assert.ErrorIs(t, repo.DeleteApartment(context.Background(), "missing"), ErrNotFound)
}

func TestMonthlyExpenseRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, apartmentIDs := seedStructure(t, repo)

	expense := core.MonthlyExpense{
		ID:            "exp-1",
		AssociationID: associationID,
		Month:         "ianuarie 2025",
		Name:          "Apă rece",
		Distribution:  core.DistributionConsumption,
		UnitPrice:     core.FromLei(3.50),
		BillAmount:    core.FromLei(100),
		Consumption:   map[string]float64{apartmentIDs[0]: 10, apartmentIDs[1]: 18.5},
	}
	require.NoError(t, repo.AddMonthlyExpense(ctx, expense))

	assert.ErrorIs(t, repo.AddMonthlyExpense(ctx, expense), core.ErrDuplicateExpense)

	got, err := repo.GetMonthlyExpense(ctx, associationID, "ianuarie 2025", "Apă rece")
	require.NoError(t, err)
	assert.Equal(t, expense.Consumption, got.Consumption)
	assert.Equal(t, core.FromLei(3.50), got.UnitPrice)

	got.Consumption[apartmentIDs[0]] = 12
	require.NoError(t, repo.UpdateMonthlyExpense(ctx, got))

	again, err := repo.GetMonthlyExpense(ctx, associationID, "ianuarie 2025", "Apă rece")
	require.NoError(t, err)
	assert.Equal(t, 12.0, again.Consumption[apartmentIDs[0]])

	require.NoError(t, repo.DeleteMonthlyExpense(ctx, associationID, "ianuarie 2025", "Apă rece"))
	_, err = repo.GetMonthlyExpense(ctx, associationID, "ianuarie 2025", "Apă rece")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpensePolicyStores(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, apartmentIDs := seedStructure(t, repo)

	require.NoError(t, repo.SetExpenseConfig(ctx, associationID, "Căldură", core.DistributionIndividual))
	require.NoError(t, repo.SetExpenseConfig(ctx, associationID, "Căldură", core.DistributionApartment))
	configs, err := repo.ListExpenseConfigs(ctx, associationID)
	require.NoError(t, err)
	assert.Equal(t, core.DistributionApartment,
		configs[core.ConfigKey{AssociationID: associationID, ExpenseName: "Căldură"}])

	pct := 50.0
	require.NoError(t, repo.SetParticipation(ctx, apartmentIDs[0], "Întreținere lift",
		core.Participation{Kind: core.ParticipationPercentage, Percent: &pct}))
	participations, err := repo.ListParticipations(ctx, associationID)
	require.NoError(t, err)
	p := participations[core.ParticipationKey{ApartmentID: apartmentIDs[0], ExpenseName: "Întreținere lift"}]
	assert.Equal(t, core.ParticipationPercentage, p.Kind)
	require.NotNil(t, p.Percent)
	assert.Equal(t, 50.0, *p.Percent)

	require.NoError(t, repo.SetDisabledExpenses(ctx, associationID, "ianuarie 2025", []string{"Canal", "Căldură"}))
	require.NoError(t, repo.SetDisabledExpenses(ctx, associationID, "ianuarie 2025", []string{"Canal"}))
	disabled, err := repo.ListDisabledExpenses(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"Canal"}, disabled)

	require.NoError(t, repo.AddCustomExpenseType(ctx, associationID,
		core.ExpenseType{Name: "Fond reparații", DefaultDistribution: core.DistributionApartment, Custom: true}))
	require.NoError(t, repo.AddCustomExpenseType(ctx, associationID,
		core.ExpenseType{Name: "Curățenie", DefaultDistribution: core.DistributionPerson, Custom: true}))
	custom, err := repo.ListCustomExpenseTypes(ctx, associationID)
	require.NoError(t, err)
	require.Len(t, custom, 2)
	assert.Equal(t, "Fond reparații", custom[0].Name)
	assert.Equal(t, "Curățenie", custom[1].Name)
}

func TestBalanceStores(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, apartmentIDs := seedStructure(t, repo)

	has, err := repo.HasInitialBalances(ctx, associationID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.SetInitialBalance(ctx, associationID, apartmentIDs[0],
		core.Balance{Restante: core.FromLei(120), Penalitati: core.FromLei(6)}))
	has, err = repo.HasInitialBalances(ctx, associationID)
	require.NoError(t, err)
	assert.True(t, has)

	initial, err := repo.ListInitialBalances(ctx, associationID)
	require.NoError(t, err)
	assert.Equal(t, core.FromLei(120), initial[apartmentIDs[0]].Restante)

	require.NoError(t, repo.SetBalanceAdjustment(ctx, associationID, "ianuarie 2025", apartmentIDs[1],
		core.Balance{Restante: core.FromLei(40)}))
	adjustments, err := repo.ListBalanceAdjustments(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, core.FromLei(40), adjustments[apartmentIDs[1]].Restante)

	rollover := map[string]core.Balance{
		apartmentIDs[0]: {Restante: core.FromLei(200), Penalitati: core.FromLei(11.50)},
		apartmentIDs[1]: {},
	}
	require.NoError(t, repo.SaveMonthlyBalances(ctx, associationID, "februarie 2025", rollover))
	saved, err := repo.ListMonthlyBalances(ctx, associationID, "februarie 2025")
	require.NoError(t, err)
	assert.Equal(t, rollover, saved)
}

func TestMonthStatus_DefaultsToInLucru(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, _ := seedStructure(t, repo)

	status, err := repo.GetMonthStatus(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, core.MonthInLucru, status)

	require.NoError(t, repo.SetMonthStatus(ctx, associationID, "ianuarie 2025", core.MonthAfisata))
	status, err = repo.GetMonthStatus(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.Equal(t, core.MonthAfisata, status)
}

func TestMonthPointers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, _ := seedStructure(t, repo)

	_, found, err := repo.GetMonthPointers(ctx, associationID)
	require.NoError(t, err)
	assert.False(t, found)

	p := MonthPointers{Current: "ianuarie 2025", Next: "februarie 2025"}
	require.NoError(t, repo.SetMonthPointers(ctx, associationID, p))
	got, found, err := repo.GetMonthPointers(ctx, associationID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, p, got)
}

func TestSnapshotStore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	associationID, apartmentIDs := seedStructure(t, repo)

	_, found, err := repo.LoadSnapshot(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.False(t, found)

	rows := []core.BillingRow{
		{
			ApartmentID: apartmentIDs[1], Apartment: 2, Owner: "Ionescu Maria", Persons: 3,
			BlockName: "A1", StairName: "Scara 1",
			CurrentMaintenance: core.FromLei(150), TotalMaintenance: core.FromLei(150),
			TotalDatorat:   core.FromLei(150),
			ExpenseDetails: map[string]core.Money{"Apă rece": core.FromLei(150)},
		},
		{
			ApartmentID: apartmentIDs[0], Apartment: 1, Owner: "Popescu Ion", Persons: 2,
			BlockName: "A1", StairName: "Scara 1",
			CurrentMaintenance: core.FromLei(100), TotalMaintenance: core.FromLei(100),
			TotalDatorat:   core.FromLei(100),
			ExpenseDetails: map[string]core.Money{"Apă rece": core.FromLei(100)},
		},
	}
	require.NoError(t, repo.SaveSnapshot(ctx, associationID, "ianuarie 2025", rows))

	loaded, found, err := repo.LoadSnapshot(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded, 2)
	// rows come back sorted by apartment number
	assert.Equal(t, 1, loaded[0].Apartment)
	assert.Equal(t, core.FromLei(100), loaded[0].ExpenseDetails["Apă rece"])

	unsynced, err := repo.ListUnsyncedSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, SnapshotRef{AssociationID: associationID, Month: "ianuarie 2025"}, unsynced[0])

	require.NoError(t, repo.MarkSnapshotSynced(ctx, associationID, "ianuarie 2025"))
	unsynced, err = repo.ListUnsyncedSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	// toggling paid marks the month for re-sync
	require.NoError(t, repo.SetSnapshotPaid(ctx, associationID, "ianuarie 2025", apartmentIDs[0], true))
	loaded, _, err = repo.LoadSnapshot(ctx, associationID, "ianuarie 2025")
	require.NoError(t, err)
	assert.True(t, loaded[0].Paid)
	assert.False(t, loaded[1].Paid)

	unsynced, err = repo.ListUnsyncedSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)

	assert.ErrorIs(t, repo.SetSnapshotPaid(ctx, associationID, "ianuarie 2025", "missing", true), ErrNotFound)
}
