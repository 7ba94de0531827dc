package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"blocapp/internal/core"
	"blocapp/internal/storage"
)

// ExpenseService manages monthly expense entry and the per-association
// expense policy: distribution overrides, participations, disabled names,
// and custom types. All writes are refused once the month is published.
type ExpenseService struct {
	storage *storage.SQLiteRepository
}

func NewExpenseService(storage *storage.SQLiteRepository) *ExpenseService {
	return &ExpenseService{storage: storage}
}

func (s *ExpenseService) requireEditable(ctx context.Context, associationID, month string) error {
	status, err := s.storage.GetMonthStatus(ctx, associationID, month)
	if err != nil {
		return err
	}
	if status.Published() {
		return core.ErrMonthPublished
	}
	return nil
}

func (s *ExpenseService) AddExpense(ctx context.Context, e core.MonthlyExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.requireEditable(ctx, e.AssociationID, e.Month); err != nil {
		return err
	}
	if err := s.storage.AddMonthlyExpense(ctx, e); err != nil {
		return fmt.Errorf("add expense: %w", err)
	}
	return nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.MonthlyExpense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.requireEditable(ctx, e.AssociationID, e.Month); err != nil {
		return err
	}
	if e.ID == "" {
		existing, err := s.storage.GetMonthlyExpense(ctx, e.AssociationID, e.Month, e.Name)
		if err != nil {
			return err
		}
		e.ID = existing.ID
	}
	return s.storage.UpdateMonthlyExpense(ctx, e)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, associationID, month, name string) error {
	if err := s.requireEditable(ctx, associationID, month); err != nil {
		return err
	}
	return s.storage.DeleteMonthlyExpense(ctx, associationID, month, name)
}

func (s *ExpenseService) GetExpense(ctx context.Context, associationID, month, name string) (core.MonthlyExpense, error) {
	return s.storage.GetMonthlyExpense(ctx, associationID, month, name)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, associationID, month string) ([]core.MonthlyExpense, error) {
	return s.storage.ListMonthlyExpenses(ctx, associationID, month)
}

func (s *ExpenseService) SetDistribution(ctx context.Context, associationID, expenseName string, d core.Distribution) error {
	return s.storage.SetExpenseConfig(ctx, associationID, expenseName, d.Normalize())
}

// Distribution resolves the effective distribution for an expense name:
// association override first, then the type catalog, then the apartment
// default. It never fails on unknown names.
func (s *ExpenseService) Distribution(ctx context.Context, associationID, expenseName string) (core.Distribution, error) {
	configs, err := s.storage.ListExpenseConfigs(ctx, associationID)
	if err != nil {
		return "", err
	}
	if d, ok := configs[core.ConfigKey{AssociationID: associationID, ExpenseName: expenseName}]; ok {
		return d.Normalize(), nil
	}
	if t, ok := core.DefaultExpenseType(expenseName); ok {
		return t.DefaultDistribution.Normalize(), nil
	}
	custom, err := s.storage.ListCustomExpenseTypes(ctx, associationID)
	if err != nil {
		return "", err
	}
	for _, t := range custom {
		if t.Name == expenseName {
			return t.DefaultDistribution.Normalize(), nil
		}
	}
	return core.DistributionApartment, nil
}

// Participation returns the apartment's rule for one expense name, the
// integral default when none is stored.
func (s *ExpenseService) Participation(ctx context.Context, apartmentID, expenseName string) (core.Participation, error) {
	associationID, err := s.storage.AssociationIDForApartment(ctx, apartmentID)
	if err != nil {
		return core.Participation{}, err
	}
	participations, err := s.storage.ListParticipations(ctx, associationID)
	if err != nil {
		return core.Participation{}, err
	}
	if p, ok := participations[core.ParticipationKey{ApartmentID: apartmentID, ExpenseName: expenseName}]; ok {
		return p, nil
	}
	return core.IntegralParticipation(), nil
}

func (s *ExpenseService) DisabledExpenses(ctx context.Context, associationID, month string) ([]string, error) {
	return s.storage.ListDisabledExpenses(ctx, associationID, month)
}

func (s *ExpenseService) SetParticipation(ctx context.Context, apartmentID, expenseName string, p core.Participation) error {
	switch p.Kind {
	case core.ParticipationIntegral, core.ParticipationExcluded:
	case core.ParticipationPercentage:
		if p.Percent == nil || *p.Percent < 0 || *p.Percent > 100 {
			return core.ErrInvalidAmount
		}
	case core.ParticipationFixed:
		if p.Amount == nil || p.Amount.Cents < 0 {
			return core.ErrInvalidAmount
		}
	default:
		return fmt.Errorf("%w: unknown participation kind %q", core.ErrInvalidInput, p.Kind)
	}
	return s.storage.SetParticipation(ctx, apartmentID, expenseName, p)
}

func (s *ExpenseService) SetDisabledExpenses(ctx context.Context, associationID, month string, names []string) error {
	if err := s.requireEditable(ctx, associationID, month); err != nil {
		return err
	}
	return s.storage.SetDisabledExpenses(ctx, associationID, month, names)
}

// AddCustomType registers an association-scoped expense type. Names that
// shadow a default catalog entry are refused.
func (s *ExpenseService) AddCustomType(ctx context.Context, associationID string, t core.ExpenseType) error {
	if t.Name == "" {
		return core.ErrEmptyName
	}
	if _, ok := core.DefaultExpenseType(t.Name); ok {
		return core.ErrDuplicateExpense
	}
	t.Custom = true
	t.DefaultDistribution = t.DefaultDistribution.Normalize()
	return s.storage.AddCustomExpenseType(ctx, associationID, t)
}

func (s *ExpenseService) DeleteCustomType(ctx context.Context, associationID, name string) error {
	return s.storage.DeleteCustomExpenseType(ctx, associationID, name)
}
