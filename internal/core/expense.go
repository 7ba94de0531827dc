package core

import "strings"

// Distribution says how a monthly expense is split across apartments.
type Distribution string

const (
	// DistributionApartment splits the amount equally per unit.
	DistributionApartment Distribution = "apartment"
	// DistributionPerson splits the amount proportionally to occupant count.
	DistributionPerson Distribution = "person"
	// DistributionConsumption charges metered usage: reading x unit price.
	DistributionConsumption Distribution = "consumption"
	// DistributionIndividual charges an administrator-entered amount per
	// apartment, no formula.
	DistributionIndividual Distribution = "individual"
)

// Normalize maps unknown labels to the per-apartment split, the engine's
// universal fallback.
func (d Distribution) Normalize() Distribution {
	switch d {
	case DistributionApartment, DistributionPerson, DistributionConsumption, DistributionIndividual:
		return d
	default:
		return DistributionApartment
	}
}

// ExpenseType is an entry of the expense catalog: either one of the fixed
// default types below or an association-scoped custom type.
type ExpenseType struct {
	Name                string
	DefaultDistribution Distribution
	ConsumptionUnit     string // set for metered types, e.g. "mc"
	Custom              bool
}

// DefaultExpenseTypes is the fixed catalog every association starts from,
// in display order.
var DefaultExpenseTypes = []ExpenseType{
	{Name: "Apă caldă", DefaultDistribution: DistributionConsumption, ConsumptionUnit: "mc"},
	{Name: "Apă rece", DefaultDistribution: DistributionConsumption, ConsumptionUnit: "mc"},
	{Name: "Canal", DefaultDistribution: DistributionConsumption, ConsumptionUnit: "mc"},
	{Name: "Întreținere lift", DefaultDistribution: DistributionApartment},
	{Name: "Energie electrică", DefaultDistribution: DistributionPerson},
	{Name: "Service interfon", DefaultDistribution: DistributionApartment},
	{Name: "Cheltuieli cu asociația", DefaultDistribution: DistributionApartment},
	{Name: "Salarii NETE", DefaultDistribution: DistributionApartment},
	{Name: "Impozit ANAF", DefaultDistribution: DistributionApartment},
	{Name: "Spații în folosință", DefaultDistribution: DistributionApartment},
	{Name: "Căldură", DefaultDistribution: DistributionIndividual},
}

// DefaultExpenseType looks up a default type by name.
func DefaultExpenseType(name string) (ExpenseType, bool) {
	for _, t := range DefaultExpenseTypes {
		if t.Name == name {
			return t, true
		}
	}
	return ExpenseType{}, false
}

// MonthlyExpense is one expense instance for an association and month.
// Exactly one record exists per (association, month, name).
type MonthlyExpense struct {
	ID            string
	AssociationID string
	Month         string
	Name          string
	Amount        Money
	Distribution  Distribution
	// Consumption-based expenses only. Amount is unused for distribution:
	// the billed total is BillAmount and the per-apartment cost is
	// reading x UnitPrice. The two totals may diverge; the divergence is
	// surfaced, never corrected.
	UnitPrice   Money
	BillAmount  Money
	Consumption map[string]float64 // apartment id -> meter reading
	// Individual expenses only: apartment id -> entered amount.
	IndividualAmounts map[string]Money
}

// IsConsumption reports whether the expense is metered.
func (e MonthlyExpense) IsConsumption() bool {
	return e.Distribution.Normalize() == DistributionConsumption
}

// Validate applies the data-entry rules: consumption expenses need both a
// unit price and a bill total, everything else except individual entry
// needs an amount.
func (e MonthlyExpense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.Month) == "" {
		return ErrInvalidMonthLabel
	}
	switch e.Distribution.Normalize() {
	case DistributionConsumption:
		if e.UnitPrice.Cents <= 0 || e.BillAmount.Cents <= 0 {
			return ErrConsumptionNeedsPrices
		}
	case DistributionIndividual:
		// Per-apartment amounts arrive incrementally; nothing to require
		// at creation time.
	default:
		if e.Amount.Cents <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// ConsumptionDifference returns the gap between the computed total
// (sum of reading x unit price over all readings, each rounded to bani)
// and the billed total. Negative means less was metered than billed.
func (e MonthlyExpense) ConsumptionDifference() Money {
	if !e.IsConsumption() {
		return Money{}
	}
	var computed Money
	for _, reading := range e.Consumption {
		computed = computed.Add(FromLei(reading * e.UnitPrice.Lei()))
	}
	return Money{Cents: computed.Cents - e.BillAmount.Cents}
}
