package core

// Cost allocation: one apartment's share of one monthly expense.
//
// The allocator favors defaulting over failing. Unknown distribution labels
// fall back to the per-apartment split, missing readings and individual
// amounts count as zero, and empty denominators yield a zero cost instead of
// a division error, because the billing table must always render over
// incomplete data entry.

// Totals carries the denominators for the proportional splits.
type Totals struct {
	Apartments int
	Persons    int
}

// TotalsOf derives the denominators from the active apartment set.
func TotalsOf(apartments []Apartment) Totals {
	t := Totals{Apartments: len(apartments)}
	for _, a := range apartments {
		t.Persons += a.Persons
	}
	return t
}

// Allocation is the outcome of allocating one expense to one apartment.
type Allocation struct {
	Cost Money
	// Warning is set when a percentage or fixed rule had no stored value
	// and the cost defaulted to zero.
	Warning bool
}

// AllocateCost computes the apartment's final cost for the expense: the base
// share under the expense's distribution policy, with the participation rule
// applied on top, rounded to bani.
func AllocateCost(e MonthlyExpense, apt Apartment, totals Totals, part Participation) Allocation {
	if part.Kind == ParticipationExcluded {
		return Allocation{}
	}

	base := baseCost(e, apt, totals)

	switch part.Kind {
	case ParticipationPercentage:
		if part.Percent == nil {
			return Allocation{Warning: true}
		}
		return Allocation{Cost: FromLei(base * *part.Percent / 100.0)}
	case ParticipationFixed:
		if part.Amount == nil {
			return Allocation{Warning: true}
		}
		// The base share is discarded entirely.
		return Allocation{Cost: *part.Amount}
	default:
		// Integral, and anything unrecognized, charges the base share.
		return Allocation{Cost: FromLei(base)}
	}
}

// baseCost computes the unrounded share in lei under the distribution
// policy. Rounding to bani happens once, after participation.
func baseCost(e MonthlyExpense, apt Apartment, totals Totals) float64 {
	switch e.Distribution.Normalize() {
	case DistributionIndividual:
		return e.IndividualAmounts[apt.ID].Lei()
	case DistributionPerson:
		if totals.Persons == 0 {
			return 0
		}
		return e.Amount.Lei() / float64(totals.Persons) * float64(apt.Persons)
	case DistributionConsumption:
		return e.Consumption[apt.ID] * e.UnitPrice.Lei()
	default:
		if totals.Apartments == 0 {
			return 0
		}
		return e.Amount.Lei() / float64(totals.Apartments)
	}
}
