package http

import (
	"blocapp/internal/core"
)

// Wire representations. Monetary values cross the API as lei with two
// decimals; core keeps them in bani.

type associationJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CUI           string `json:"cui,omitempty"`
	Address       string `json:"address,omitempty"`
	Administrator string `json:"administrator,omitempty"`
}

func toAssociationJSON(a core.Association) associationJSON {
	return associationJSON{ID: a.ID, Name: a.Name, CUI: a.CUI, Address: a.Address, Administrator: a.Administrator}
}

type blockJSON struct {
	ID            string `json:"id"`
	AssociationID string `json:"association_id"`
	Name          string `json:"name"`
}

type stairJSON struct {
	ID      string `json:"id"`
	BlockID string `json:"block_id"`
	Name    string `json:"name"`
}

type apartmentJSON struct {
	ID            string  `json:"id"`
	StairID       string  `json:"stair_id"`
	Number        int     `json:"number"`
	Owner         string  `json:"owner"`
	Persons       int     `json:"persons"`
	Surface       float64 `json:"surface,omitempty"`
	ApartmentType string  `json:"apartment_type,omitempty"`
	HeatingSource string  `json:"heating_source,omitempty"`
}

func toApartmentJSON(a core.Apartment) apartmentJSON {
	return apartmentJSON{
		ID:            a.ID,
		StairID:       a.StairID,
		Number:        a.Number,
		Owner:         a.Owner,
		Persons:       a.Persons,
		Surface:       a.Surface,
		ApartmentType: a.ApartmentType,
		HeatingSource: a.HeatingSource,
	}
}

func (j apartmentJSON) toCore() core.Apartment {
	return core.Apartment{
		ID:            j.ID,
		StairID:       j.StairID,
		Number:        j.Number,
		Owner:         j.Owner,
		Persons:       j.Persons,
		Surface:       j.Surface,
		ApartmentType: j.ApartmentType,
		HeatingSource: j.HeatingSource,
	}
}

type expenseJSON struct {
	Name         string  `json:"name"`
	Month        string  `json:"month"`
	Amount       float64 `json:"amount"`
	Distribution string  `json:"distribution"`
	UnitPrice    float64 `json:"unit_price,omitempty"`
	BillAmount   float64 `json:"bill_amount,omitempty"`
	// apartment id -> meter reading, consumption expenses only
	Consumption map[string]float64 `json:"consumption,omitempty"`
	// apartment id -> lei, individual expenses only
	IndividualAmounts map[string]float64 `json:"individual_amounts,omitempty"`
}

func toExpenseJSON(e core.MonthlyExpense) expenseJSON {
	out := expenseJSON{
		Name:         e.Name,
		Month:        e.Month,
		Amount:       e.Amount.Lei(),
		Distribution: string(e.Distribution.Normalize()),
		UnitPrice:    e.UnitPrice.Lei(),
		BillAmount:   e.BillAmount.Lei(),
	}
	if len(e.Consumption) > 0 {
		out.Consumption = e.Consumption
	}
	if len(e.IndividualAmounts) > 0 {
		out.IndividualAmounts = make(map[string]float64, len(e.IndividualAmounts))
		for id, m := range e.IndividualAmounts {
			out.IndividualAmounts[id] = m.Lei()
		}
	}
	return out
}

func (j expenseJSON) toCore(associationID, month string) core.MonthlyExpense {
	e := core.MonthlyExpense{
		AssociationID: associationID,
		Month:         month,
		Name:          j.Name,
		Amount:        core.FromLei(j.Amount),
		Distribution:  core.Distribution(j.Distribution).Normalize(),
		UnitPrice:     core.FromLei(j.UnitPrice),
		BillAmount:    core.FromLei(j.BillAmount),
		Consumption:   j.Consumption,
	}
	if len(j.IndividualAmounts) > 0 {
		e.IndividualAmounts = make(map[string]core.Money, len(j.IndividualAmounts))
		for id, lei := range j.IndividualAmounts {
			e.IndividualAmounts[id] = core.FromLei(lei)
		}
	}
	return e
}

type expenseTypeJSON struct {
	Name                string `json:"name"`
	DefaultDistribution string `json:"default_distribution"`
	ConsumptionUnit     string `json:"consumption_unit,omitempty"`
	Custom              bool   `json:"custom"`
}

func toExpenseTypeJSON(t core.ExpenseType) expenseTypeJSON {
	return expenseTypeJSON{
		Name:                t.Name,
		DefaultDistribution: string(t.DefaultDistribution.Normalize()),
		ConsumptionUnit:     t.ConsumptionUnit,
		Custom:              t.Custom,
	}
}

type participationJSON struct {
	Kind    string   `json:"kind"`
	Percent *float64 `json:"percent,omitempty"`
	Amount  *float64 `json:"amount,omitempty"`
}

func toParticipationJSON(p core.Participation) participationJSON {
	out := participationJSON{Kind: string(p.Kind), Percent: p.Percent}
	if p.Amount != nil {
		lei := p.Amount.Lei()
		out.Amount = &lei
	}
	return out
}

func (j participationJSON) toCore() core.Participation {
	p := core.Participation{Kind: core.ParticipationKind(j.Kind), Percent: j.Percent}
	if j.Amount != nil {
		m := core.FromLei(*j.Amount)
		p.Amount = &m
	}
	return p
}

type balanceJSON struct {
	Restante   float64 `json:"restante"`
	Penalitati float64 `json:"penalitati"`
}

func toBalanceMapJSON(balances map[string]core.Balance) map[string]balanceJSON {
	out := make(map[string]balanceJSON, len(balances))
	for id, b := range balances {
		out[id] = balanceJSON{Restante: b.Restante.Lei(), Penalitati: b.Penalitati.Lei()}
	}
	return out
}

func (j balanceJSON) toCore() core.Balance {
	return core.Balance{Restante: core.FromLei(j.Restante), Penalitati: core.FromLei(j.Penalitati)}
}

type billingRowJSON struct {
	ApartmentID        string             `json:"apartment_id"`
	Apartment          int                `json:"apartment"`
	Owner              string             `json:"owner"`
	Persons            int                `json:"persons"`
	Block              string             `json:"block"`
	Stair              string             `json:"stair"`
	CurrentMaintenance float64            `json:"current_maintenance"`
	Restante           float64            `json:"restante"`
	TotalMaintenance   float64            `json:"total_maintenance"`
	Penalitati         float64            `json:"penalitati"`
	TotalDatorat       float64            `json:"total_datorat"`
	Paid               bool               `json:"paid"`
	ExpenseDetails     map[string]float64 `json:"expense_details"`
}

type billingStatsJSON struct {
	TotalMaintenance  float64 `json:"total_maintenance"`
	PaidAmount        float64 `json:"paid_amount"`
	UnpaidAmount      float64 `json:"unpaid_amount"`
	TotalApartments   int     `json:"total_apartments"`
	PaidApartments    int     `json:"paid_apartments"`
	UnpaidApartments  int     `json:"unpaid_apartments"`
	PaymentPercentage int     `json:"payment_percentage"`
}

type billingResultJSON struct {
	Rows        []billingRowJSON   `json:"rows"`
	Stats       billingStatsJSON   `json:"stats"`
	Warnings    int                `json:"warnings"`
	Differences map[string]float64 `json:"differences,omitempty"`
}

func toBillingResultJSON(res core.BillingResult) billingResultJSON {
	out := billingResultJSON{
		Rows: make([]billingRowJSON, 0, len(res.Rows)),
		Stats: billingStatsJSON{
			TotalMaintenance:  res.Stats.TotalMaintenance.Lei(),
			PaidAmount:        res.Stats.PaidAmount.Lei(),
			UnpaidAmount:      res.Stats.UnpaidAmount.Lei(),
			TotalApartments:   res.Stats.TotalApartments,
			PaidApartments:    res.Stats.PaidApartments,
			UnpaidApartments:  res.Stats.UnpaidApartments,
			PaymentPercentage: res.Stats.PaymentPercentage,
		},
		Warnings: res.Warnings,
	}
	for _, row := range res.Rows {
		details := make(map[string]float64, len(row.ExpenseDetails))
		for name, m := range row.ExpenseDetails {
			details[name] = m.Lei()
		}
		out.Rows = append(out.Rows, billingRowJSON{
			ApartmentID:        row.ApartmentID,
			Apartment:          row.Apartment,
			Owner:              row.Owner,
			Persons:            row.Persons,
			Block:              row.BlockName,
			Stair:              row.StairName,
			CurrentMaintenance: row.CurrentMaintenance.Lei(),
			Restante:           row.Restante.Lei(),
			TotalMaintenance:   row.TotalMaintenance.Lei(),
			Penalitati:         row.Penalitati.Lei(),
			TotalDatorat:       row.TotalDatorat.Lei(),
			Paid:               row.Paid,
			ExpenseDetails:     details,
		})
	}
	if len(res.Differences) > 0 {
		out.Differences = make(map[string]float64, len(res.Differences))
		for name, m := range res.Differences {
			out.Differences[name] = m.Lei()
		}
	}
	return out
}
