package core

import "sort"

// Balance is what an apartment carries into a month: arrears and penalties
// from prior periods.
type Balance struct {
	Restante   Money
	Penalitati Money
}

// BillingRow is one apartment's line of the maintenance table.
type BillingRow struct {
	ApartmentID        string
	Apartment          int
	Owner              string
	Persons            int
	BlockName          string
	StairName          string
	CurrentMaintenance Money
	Restante           Money
	TotalMaintenance   Money
	Penalitati         Money
	TotalDatorat       Money
	Paid               bool
	ExpenseDetails     map[string]Money
}

// BillingInput is everything the aggregator needs, passed explicitly so the
// computation stays a pure function over its arguments.
type BillingInput struct {
	Blocks     []Block
	Stairs     []Stair
	Apartments []Apartment
	Expenses   []MonthlyExpense
	Catalog    Catalog
	// Balances carries each apartment's opening balance for the month.
	// Absent entries mean a clean slate.
	Balances map[string]Balance
	// PaidFlags preserves payment marks from an existing snapshot. Absent
	// entries initialize to unpaid.
	PaidFlags map[string]bool
}

// BillingStats aggregates the table for the summary header.
type BillingStats struct {
	TotalMaintenance  Money
	PaidAmount        Money
	UnpaidAmount      Money
	TotalApartments   int
	PaidApartments    int
	UnpaidApartments  int
	PaymentPercentage int
}

// BillingResult is the computed table plus derived figures.
type BillingResult struct {
	Rows  []BillingRow
	Stats BillingStats
	// Warnings counts participation rules that defaulted to a zero cost
	// because their value was missing.
	Warnings int
	// Differences maps each consumption expense to computed minus billed
	// total.
	Differences map[string]Money
}

// ComputeBillingTable produces the maintenance table for one association and
// month: per-apartment allocated costs summed into current dues, opening
// balances merged in, rows sorted by apartment number. Recomputing over
// unchanged inputs yields identical output.
func ComputeBillingTable(in BillingInput) BillingResult {
	if len(in.Apartments) == 0 {
		return BillingResult{}
	}

	totals := TotalsOf(in.Apartments)
	res := BillingResult{Rows: make([]BillingRow, 0, len(in.Apartments))}

	stairsByID := make(map[string]Stair, len(in.Stairs))
	for _, s := range in.Stairs {
		stairsByID[s.ID] = s
	}
	blocksByID := make(map[string]Block, len(in.Blocks))
	for _, b := range in.Blocks {
		blocksByID[b.ID] = b
	}

	for _, apt := range in.Apartments {
		var current Money
		details := make(map[string]Money, len(in.Expenses))

		for _, e := range in.Expenses {
			// The policy is resolved by name so later configuration
			// changes take effect without touching stored records.
			e.Distribution = in.Catalog.DistributionFor(e.Name)
			part := in.Catalog.ParticipationFor(apt.ID, e.Name)

			alloc := AllocateCost(e, apt, totals, part)
			if alloc.Warning {
				res.Warnings++
			}
			details[e.Name] = alloc.Cost
			current = current.Add(alloc.Cost)
		}

		balance := in.Balances[apt.ID]
		stair := stairsByID[apt.StairID]
		block := blocksByID[stair.BlockID]

		totalMaintenance := current.Add(balance.Restante)
		row := BillingRow{
			ApartmentID:        apt.ID,
			Apartment:          apt.Number,
			Owner:              apt.Owner,
			Persons:            apt.Persons,
			BlockName:          block.Name,
			StairName:          stair.Name,
			CurrentMaintenance: current,
			Restante:           balance.Restante,
			TotalMaintenance:   totalMaintenance,
			Penalitati:         balance.Penalitati,
			TotalDatorat:       totalMaintenance.Add(balance.Penalitati),
			Paid:               in.PaidFlags[apt.ID],
			ExpenseDetails:     details,
		}
		res.Rows = append(res.Rows, row)
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		a, b := res.Rows[i], res.Rows[j]
		if a.Apartment != b.Apartment {
			return a.Apartment < b.Apartment
		}
		if a.BlockName != b.BlockName {
			return a.BlockName < b.BlockName
		}
		return a.StairName < b.StairName
	})

	res.Stats = StatsOf(res.Rows)

	res.Differences = ConsumptionDifferences(in.Expenses, in.Catalog)

	return res
}

// ConsumptionDifferences maps each consumption expense to computed minus
// billed total. Nil when the month has no consumption expenses.
func ConsumptionDifferences(expenses []MonthlyExpense, catalog Catalog) map[string]Money {
	var out map[string]Money
	for _, e := range expenses {
		if catalog.DistributionFor(e.Name) == DistributionConsumption {
			if out == nil {
				out = make(map[string]Money)
			}
			out[e.Name] = e.ConsumptionDifference()
		}
	}
	return out
}

// MissingParticipationValues counts percentage and fixed rules that carry no
// stored value over the given apartments, matching the warnings a fresh
// computation would raise.
func MissingParticipationValues(expenses []MonthlyExpense, catalog Catalog, apartmentIDs []string) int {
	n := 0
	for _, id := range apartmentIDs {
		for _, e := range expenses {
			switch part := catalog.ParticipationFor(id, e.Name); part.Kind {
			case ParticipationPercentage:
				if part.Percent == nil {
					n++
				}
			case ParticipationFixed:
				if part.Amount == nil {
					n++
				}
			}
		}
	}
	return n
}

// StatsOf summarises payment progress over a billing table.
func StatsOf(rows []BillingRow) BillingStats {
	stats := BillingStats{TotalApartments: len(rows)}
	for _, row := range rows {
		stats.TotalMaintenance = stats.TotalMaintenance.Add(row.TotalDatorat)
		if row.Paid {
			stats.PaidAmount = stats.PaidAmount.Add(row.TotalDatorat)
			stats.PaidApartments++
		}
	}
	stats.UnpaidAmount = Money{Cents: stats.TotalMaintenance.Cents - stats.PaidAmount.Cents}
	stats.UnpaidApartments = stats.TotalApartments - stats.PaidApartments
	if stats.TotalApartments > 0 {
		stats.PaymentPercentage = int(float64(stats.PaidApartments)/float64(stats.TotalApartments)*100 + 0.5)
	}
	return stats
}

// TogglePayment flips the paid flag for one apartment's row, returning the
// updated table. A no-op on an empty table or an unknown apartment.
func TogglePayment(rows []BillingRow, apartmentID string) ([]BillingRow, bool) {
	updated := make([]BillingRow, len(rows))
	copy(updated, rows)
	for i := range updated {
		if updated[i].ApartmentID == apartmentID {
			updated[i].Paid = !updated[i].Paid
			return updated, true
		}
	}
	return updated, false
}

// latePenaltyPct is the surcharge applied once per month close to unpaid
// rows, on the current period's dues only. The flat 1% regardless of debt
// age reproduces the documented behavior; see DESIGN.md before changing it.
const latePenaltyPct = 1.0

// NextMonthBalances turns a closed month's table into the next month's
// opening balances. Unpaid rows carry their full total as arrears plus the
// late surcharge on top of existing penalties; paid rows start clean.
func NextMonthBalances(rows []BillingRow) map[string]Balance {
	out := make(map[string]Balance, len(rows))
	for _, row := range rows {
		if row.Paid {
			out[row.ApartmentID] = Balance{}
			continue
		}
		out[row.ApartmentID] = Balance{
			Restante:   row.TotalDatorat,
			Penalitati: row.Penalitati.Add(row.CurrentMaintenance.Percent(latePenaltyPct)),
		}
	}
	return out
}
