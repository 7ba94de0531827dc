package services

import (
	"context"
	"fmt"
	"log/slog"

	"blocapp/internal/amqp"
	"blocapp/internal/core"
	"blocapp/internal/storage"
)

// MaintenanceService assembles billing input from storage, runs the
// calculation, and manages published snapshots. Snapshots are saved to
// SQLite first; the AMQP announcement is best effort.
type MaintenanceService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewMaintenanceService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *MaintenanceService {
	return &MaintenanceService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Catalog loads everything that shapes the month's expense list: custom
// types, distribution overrides, participations, and disabled names.
func (s *MaintenanceService) Catalog(ctx context.Context, associationID, month string) (core.Catalog, error) {
	customTypes, err := s.storage.ListCustomExpenseTypes(ctx, associationID)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("load custom types: %w", err)
	}
	overrides, err := s.storage.ListExpenseConfigs(ctx, associationID)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("load expense configs: %w", err)
	}
	participations, err := s.storage.ListParticipations(ctx, associationID)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("load participations: %w", err)
	}
	disabledNames, err := s.storage.ListDisabledExpenses(ctx, associationID, month)
	if err != nil {
		return core.Catalog{}, fmt.Errorf("load disabled expenses: %w", err)
	}
	disabled := make(map[string]bool, len(disabledNames))
	for _, name := range disabledNames {
		disabled[name] = true
	}
	return core.Catalog{
		AssociationID:  associationID,
		CustomTypes:    customTypes,
		Overrides:      overrides,
		Participations: participations,
		Disabled:       disabled,
	}, nil
}

// openingBalances resolves the balances a month starts from: the rollover
// written at the previous close when one exists, the one-time initial
// balances otherwise, with manual adjustments overriding either source.
func (s *MaintenanceService) openingBalances(ctx context.Context, associationID, month string) (map[string]core.Balance, error) {
	balances, err := s.storage.ListMonthlyBalances(ctx, associationID, month)
	if err != nil {
		return nil, fmt.Errorf("load monthly balances: %w", err)
	}
	if len(balances) == 0 {
		balances, err = s.storage.ListInitialBalances(ctx, associationID)
		if err != nil {
			return nil, fmt.Errorf("load initial balances: %w", err)
		}
	}
	adjustments, err := s.storage.ListBalanceAdjustments(ctx, associationID, month)
	if err != nil {
		return nil, fmt.Errorf("load balance adjustments: %w", err)
	}
	for apartmentID, b := range adjustments {
		balances[apartmentID] = b
	}
	return balances, nil
}

// MaintenanceTable returns the month's billing table. Published months come
// from the stored snapshot so later data edits cannot change them; working
// months are recomputed on every call.
func (s *MaintenanceService) MaintenanceTable(ctx context.Context, associationID, month string) (core.BillingResult, error) {
	rows, found, err := s.storage.LoadSnapshot(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, fmt.Errorf("load snapshot: %w", err)
	}
	if found {
		return s.snapshotResult(ctx, associationID, month, rows)
	}
	return s.computeTable(ctx, associationID, month)
}

// snapshotResult rebuilds the derived figures around frozen rows. Expenses
// cannot change after publishing, so warnings and consumption differences
// recompute to the values the table was published with.
func (s *MaintenanceService) snapshotResult(ctx context.Context, associationID, month string, rows []core.BillingRow) (core.BillingResult, error) {
	expenses, err := s.storage.ListMonthlyExpenses(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, fmt.Errorf("load expenses: %w", err)
	}
	catalog, err := s.Catalog(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, err
	}
	apartmentIDs := make([]string, len(rows))
	for i, row := range rows {
		apartmentIDs[i] = row.ApartmentID
	}
	return core.BillingResult{
		Rows:        rows,
		Stats:       core.StatsOf(rows),
		Warnings:    core.MissingParticipationValues(expenses, catalog, apartmentIDs),
		Differences: core.ConsumptionDifferences(expenses, catalog),
	}, nil
}

func (s *MaintenanceService) computeTable(ctx context.Context, associationID, month string) (core.BillingResult, error) {
	input, err := s.billingInput(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, err
	}
	return core.ComputeBillingTable(input), nil
}

func (s *MaintenanceService) billingInput(ctx context.Context, associationID, month string) (core.BillingInput, error) {
	blocks, err := s.storage.ListBlocks(ctx, associationID)
	if err != nil {
		return core.BillingInput{}, fmt.Errorf("load blocks: %w", err)
	}
	stairs, err := s.storage.ListStairs(ctx, associationID)
	if err != nil {
		return core.BillingInput{}, fmt.Errorf("load stairs: %w", err)
	}
	apartments, err := s.storage.ListApartments(ctx, associationID)
	if err != nil {
		return core.BillingInput{}, fmt.Errorf("load apartments: %w", err)
	}
	expenses, err := s.storage.ListMonthlyExpenses(ctx, associationID, month)
	if err != nil {
		return core.BillingInput{}, fmt.Errorf("load expenses: %w", err)
	}
	catalog, err := s.Catalog(ctx, associationID, month)
	if err != nil {
		return core.BillingInput{}, err
	}
	balances, err := s.openingBalances(ctx, associationID, month)
	if err != nil {
		return core.BillingInput{}, err
	}
	return core.BillingInput{
		Blocks:     blocks,
		Stairs:     stairs,
		Apartments: apartments,
		Expenses:   expenses,
		Catalog:    catalog,
		Balances:   balances,
	}, nil
}

// PublishTable freezes the month's table into a snapshot and announces it.
// The snapshot write is the source of truth; a failed announcement only
// delays the sheet sync until the worker's next catch-up pass.
func (s *MaintenanceService) PublishTable(ctx context.Context, associationID, month string) (core.BillingResult, error) {
	result, err := s.computeTable(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, err
	}
	if err := s.storage.SaveSnapshot(ctx, associationID, month, result.Rows); err != nil {
		return core.BillingResult{}, fmt.Errorf("save snapshot: %w", err)
	}

	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping table message",
			"association_id", associationID, "month", month)
		return result, nil
	}
	if err := s.amqpClient.PublishTable(ctx, associationID, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish table message",
			"association_id", associationID, "month", month, "error", err)
		// Don't fail the request, the snapshot is saved locally
	}
	return result, nil
}

// TogglePayment flips an apartment's paid flag on a published table.
func (s *MaintenanceService) TogglePayment(ctx context.Context, associationID, month, apartmentID string) (core.BillingResult, error) {
	rows, found, err := s.storage.LoadSnapshot(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		return core.BillingResult{}, core.ErrMonthNotPublished
	}
	rows, ok := core.TogglePayment(rows, apartmentID)
	if !ok {
		return core.BillingResult{}, storage.ErrNotFound
	}
	var paid bool
	for _, row := range rows {
		if row.ApartmentID == apartmentID {
			paid = row.Paid
			break
		}
	}
	if err := s.storage.SetSnapshotPaid(ctx, associationID, month, apartmentID, paid); err != nil {
		return core.BillingResult{}, err
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishTable(ctx, associationID, month); err != nil {
			slog.ErrorContext(ctx, "Failed to publish table message after payment toggle",
				"association_id", associationID, "month", month, "error", err)
		}
	}
	return s.snapshotResult(ctx, associationID, month, rows)
}

// InitialBalances returns the opening balances entered for the first
// managed month, keyed by apartment id.
func (s *MaintenanceService) InitialBalances(ctx context.Context, associationID string) (map[string]core.Balance, error) {
	return s.storage.ListInitialBalances(ctx, associationID)
}

// SetInitialBalances upserts opening balances per apartment.
func (s *MaintenanceService) SetInitialBalances(ctx context.Context, associationID string, balances map[string]core.Balance) error {
	for apartmentID, b := range balances {
		if err := s.storage.SetInitialBalance(ctx, associationID, apartmentID, b); err != nil {
			return fmt.Errorf("initial balance for %s: %w", apartmentID, err)
		}
	}
	return nil
}

func (s *MaintenanceService) Adjustments(ctx context.Context, associationID, month string) (map[string]core.Balance, error) {
	return s.storage.ListBalanceAdjustments(ctx, associationID, month)
}

// SetAdjustments records manual balance corrections for a month still in
// lucru. Published months are frozen.
func (s *MaintenanceService) SetAdjustments(ctx context.Context, associationID, month string, balances map[string]core.Balance) error {
	status, err := s.storage.GetMonthStatus(ctx, associationID, month)
	if err != nil {
		return err
	}
	if status.Published() {
		return core.ErrMonthPublished
	}
	for apartmentID, b := range balances {
		if err := s.storage.SetBalanceAdjustment(ctx, associationID, month, apartmentID, b); err != nil {
			return fmt.Errorf("adjustment for %s: %w", apartmentID, err)
		}
	}
	return nil
}
