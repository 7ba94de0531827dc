package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blocapp/internal/core"
	"blocapp/internal/storage"
)

// ErrInitialBalancesMissing is returned when the first month is published
// without any opening balances on record.
var ErrInitialBalancesMissing = errors.New("initial balances not entered")

// ErrIncompleteReadings is returned when consumption expenses are missing
// per-apartment readings and the publish was not forced.
var ErrIncompleteReadings = errors.New("consumption readings incomplete")

// MonthService owns the month lifecycle: the current/next pointers, the
// one-way in_lucru to afisata transition, and the close rollover.
type MonthService struct {
	storage     *storage.SQLiteRepository
	maintenance *MaintenanceService
	now         func() time.Time
}

func NewMonthService(storage *storage.SQLiteRepository, maintenance *MaintenanceService) *MonthService {
	return &MonthService{
		storage:     storage,
		maintenance: maintenance,
		now:         time.Now,
	}
}

// MonthOverview is what the month endpoints return.
type MonthOverview struct {
	Current string           `json:"current"`
	Next    string           `json:"next"`
	Status  core.MonthStatus `json:"status"`
}

// Months returns the association's current and next month, initialising the
// pointers from the calendar on first use.
func (s *MonthService) Months(ctx context.Context, associationID string) (MonthOverview, error) {
	pointers, found, err := s.storage.GetMonthPointers(ctx, associationID)
	if err != nil {
		return MonthOverview{}, err
	}
	if !found {
		current := core.CurrentMonthLabel(s.now())
		next, err := core.AddMonthsLabel(current, 1)
		if err != nil {
			return MonthOverview{}, err
		}
		pointers = storage.MonthPointers{Current: current, Next: next}
		if err := s.storage.SetMonthPointers(ctx, associationID, pointers); err != nil {
			return MonthOverview{}, err
		}
	}
	status, err := s.storage.GetMonthStatus(ctx, associationID, pointers.Current)
	if err != nil {
		return MonthOverview{}, err
	}
	return MonthOverview{Current: pointers.Current, Next: pointers.Next, Status: status}, nil
}

func (s *MonthService) Status(ctx context.Context, associationID, month string) (core.MonthStatus, error) {
	if _, err := core.ParseMonthLabel(month); err != nil {
		return "", err
	}
	return s.storage.GetMonthStatus(ctx, associationID, month)
}

// PublishReport lists what a publish skipped over.
type PublishReport struct {
	MissingReadings []string `json:"missing_readings,omitempty"`
}

// Publish freezes a month. The snapshot becomes the source of truth for its
// table and expense data stops being editable. Consumption expenses with
// missing readings block the publish unless force is set; the first month
// cannot be published before initial balances exist.
func (s *MonthService) Publish(ctx context.Context, associationID, month string, force bool) (core.BillingResult, PublishReport, error) {
	if _, err := core.ParseMonthLabel(month); err != nil {
		return core.BillingResult{}, PublishReport{}, err
	}
	status, err := s.storage.GetMonthStatus(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, PublishReport{}, err
	}
	if !status.CanPublish() {
		return core.BillingResult{}, PublishReport{}, core.ErrMonthPublished
	}

	if err := s.requireOpeningBalances(ctx, associationID, month); err != nil {
		return core.BillingResult{}, PublishReport{}, err
	}

	report, err := s.readingsReport(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, PublishReport{}, err
	}
	if len(report.MissingReadings) > 0 && !force {
		return core.BillingResult{}, report, ErrIncompleteReadings
	}

	result, err := s.maintenance.PublishTable(ctx, associationID, month)
	if err != nil {
		return core.BillingResult{}, report, err
	}
	if err := s.storage.SetMonthStatus(ctx, associationID, month, core.MonthAfisata); err != nil {
		return core.BillingResult{}, report, err
	}
	if err := s.advancePointers(ctx, associationID, month); err != nil {
		return core.BillingResult{}, report, err
	}

	slog.InfoContext(ctx, "Month published",
		"association_id", associationID, "month", month, "rows", len(result.Rows), "forced", force)
	return result, report, nil
}

// requireOpeningBalances rejects publishing a month that has neither a
// rollover from a closed predecessor nor entered initial balances.
func (s *MonthService) requireOpeningBalances(ctx context.Context, associationID, month string) error {
	rollover, err := s.storage.ListMonthlyBalances(ctx, associationID, month)
	if err != nil {
		return err
	}
	if len(rollover) > 0 {
		return nil
	}
	has, err := s.storage.HasInitialBalances(ctx, associationID)
	if err != nil {
		return err
	}
	if !has {
		return ErrInitialBalancesMissing
	}
	return nil
}

// readingsReport lists every apartment missing a reading on a consumption
// expense for the month.
func (s *MonthService) readingsReport(ctx context.Context, associationID, month string) (PublishReport, error) {
	expenses, err := s.storage.ListMonthlyExpenses(ctx, associationID, month)
	if err != nil {
		return PublishReport{}, err
	}
	catalog, err := s.maintenance.Catalog(ctx, associationID, month)
	if err != nil {
		return PublishReport{}, err
	}
	apartments, err := s.storage.ListApartments(ctx, associationID)
	if err != nil {
		return PublishReport{}, err
	}

	var report PublishReport
	for _, e := range expenses {
		if catalog.DistributionFor(e.Name) != core.DistributionConsumption {
			continue
		}
		for _, apt := range apartments {
			if _, ok := e.Consumption[apt.ID]; !ok {
				report.MissingReadings = append(report.MissingReadings,
					fmt.Sprintf("%s: ap. %d", e.Name, apt.Number))
			}
		}
	}
	return report, nil
}

// advancePointers keeps the current/next pair ahead of published months.
// Publishing the current month promotes next to current; publishing the
// next month schedules a fresh one three calendar months out.
func (s *MonthService) advancePointers(ctx context.Context, associationID, month string) error {
	pointers, found, err := s.storage.GetMonthPointers(ctx, associationID)
	if err != nil || !found {
		return err
	}
	switch month {
	case pointers.Current:
		pointers.Current = pointers.Next
		next, err := core.NextMonthLabel(pointers.Current)
		if err != nil {
			return err
		}
		pointers.Next = next
	case pointers.Next:
		next, err := core.AddMonthsLabel(core.CurrentMonthLabel(s.now()), 3)
		if err != nil {
			return err
		}
		pointers.Next = next
	default:
		return nil
	}
	return s.storage.SetMonthPointers(ctx, associationID, pointers)
}

// Close rolls a published month's unpaid totals into the next month's
// opening balances and advances the current pointer past it.
func (s *MonthService) Close(ctx context.Context, associationID, month string) (string, error) {
	if _, err := core.ParseMonthLabel(month); err != nil {
		return "", err
	}
	status, err := s.storage.GetMonthStatus(ctx, associationID, month)
	if err != nil {
		return "", err
	}
	if !status.Published() {
		return "", core.ErrMonthNotPublished
	}
	rows, found, err := s.storage.LoadSnapshot(ctx, associationID, month)
	if err != nil {
		return "", err
	}
	if !found {
		return "", core.ErrMonthNotPublished
	}

	nextMonth, err := core.NextMonthLabel(month)
	if err != nil {
		return "", err
	}
	balances := core.NextMonthBalances(rows)
	if err := s.storage.SaveMonthlyBalances(ctx, associationID, nextMonth, balances); err != nil {
		return "", err
	}

	pointers, found, err := s.storage.GetMonthPointers(ctx, associationID)
	if err != nil {
		return "", err
	}
	if found && pointers.Current == month {
		pointers.Current = nextMonth
		if pointers.Current == pointers.Next {
			next, err := core.NextMonthLabel(pointers.Current)
			if err != nil {
				return "", err
			}
			pointers.Next = next
		}
		if err := s.storage.SetMonthPointers(ctx, associationID, pointers); err != nil {
			return "", err
		}
	}

	slog.InfoContext(ctx, "Month closed",
		"association_id", associationID, "month", month, "next_month", nextMonth)
	return nextMonth, nil
}
