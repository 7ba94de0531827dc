package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apartmentsFixture() []Apartment {
	return []Apartment{
		{ID: "ap-1", StairID: "sc-a", Number: 1, Owner: "Ion Popescu", Persons: 2},
		{ID: "ap-2", StairID: "sc-a", Number: 2, Owner: "Maria Georgescu", Persons: 3},
	}
}

func TestAllocateCost_ApartmentSplit(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	e := MonthlyExpense{Name: "Service interfon", Distribution: DistributionApartment, Amount: Money{Cents: 10000}}

	var sum Money
	for _, apt := range apts {
		alloc := AllocateCost(e, apt, totals, IntegralParticipation())
		assert.Equal(t, int64(5000), alloc.Cost.Cents)
		sum = sum.Add(alloc.Cost)
	}
	assert.Equal(t, e.Amount, sum)
}

func TestAllocateCost_PersonSplit(t *testing.T) {
	apts := apartmentsFixture() // 2 + 3 = 5 persons
	totals := TotalsOf(apts)
	e := MonthlyExpense{Name: "Energie electrică", Distribution: DistributionPerson, Amount: Money{Cents: 50000}}

	first := AllocateCost(e, apts[0], totals, IntegralParticipation())
	second := AllocateCost(e, apts[1], totals, IntegralParticipation())

	assert.Equal(t, int64(20000), first.Cost.Cents, "500/5 x 2 = 200.00")
	assert.Equal(t, int64(30000), second.Cost.Cents, "500/5 x 3 = 300.00")
	assert.Equal(t, e.Amount.Cents, first.Cost.Cents+second.Cost.Cents)
}

func TestAllocateCost_PersonSplitSumTolerance(t *testing.T) {
	// 100.00 over 3 persons does not divide evenly; the per-row rounding
	// must stay within a cent per apartment of the entered amount.
	apts := []Apartment{
		{ID: "a", Number: 1, Persons: 1},
		{ID: "b", Number: 2, Persons: 1},
		{ID: "c", Number: 3, Persons: 1},
	}
	totals := TotalsOf(apts)
	e := MonthlyExpense{Name: "Energie electrică", Distribution: DistributionPerson, Amount: Money{Cents: 10000}}

	var sum Money
	for _, apt := range apts {
		sum = sum.Add(AllocateCost(e, apt, totals, IntegralParticipation()).Cost)
	}
	diff := sum.Cents - e.Amount.Cents
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, int64(len(apts)), "sum may drift at most a cent per apartment")
}

func TestAllocateCost_Consumption(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	e := MonthlyExpense{
		Name:         "Apă rece",
		Distribution: DistributionConsumption,
		UnitPrice:    Money{Cents: 350},
		BillAmount:   Money{Cents: 10000},
		Consumption:  map[string]float64{"ap-1": 20},
	}

	withReading := AllocateCost(e, apts[0], totals, IntegralParticipation())
	assert.Equal(t, int64(7000), withReading.Cost.Cents, "20 x 3.50 = 70.00")

	missingReading := AllocateCost(e, apts[1], totals, IntegralParticipation())
	assert.True(t, missingReading.Cost.IsZero(), "missing reading counts as zero")

	assert.Equal(t, int64(7000-10000), e.ConsumptionDifference().Cents, "computed minus billed")
}

func TestAllocateCost_Individual(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	e := MonthlyExpense{
		Name:              "Căldură",
		Distribution:      DistributionIndividual,
		IndividualAmounts: map[string]Money{"ap-1": {Cents: 12050}},
	}

	assert.Equal(t, int64(12050), AllocateCost(e, apts[0], totals, IntegralParticipation()).Cost.Cents)
	assert.True(t, AllocateCost(e, apts[1], totals, IntegralParticipation()).Cost.IsZero(),
		"absent entry is a zero, not a computed share")
}

func TestAllocateCost_Participation(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	e := MonthlyExpense{Name: "Întreținere lift", Distribution: DistributionApartment, Amount: Money{Cents: 10000}}

	pct := 25.0
	fixed := Money{Cents: 1234}

	tests := []struct {
		name string
		part Participation
		want int64
	}{
		{name: "integral", part: IntegralParticipation(), want: 5000},
		{name: "percentage", part: Participation{Kind: ParticipationPercentage, Percent: &pct}, want: 1250},
		{name: "fixed discards base", part: Participation{Kind: ParticipationFixed, Amount: &fixed}, want: 1234},
		{name: "excluded", part: Participation{Kind: ParticipationExcluded}, want: 0},
		{name: "unrecognized falls back to integral", part: Participation{Kind: "jumatate"}, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := AllocateCost(e, apts[0], totals, tt.part)
			assert.Equal(t, tt.want, alloc.Cost.Cents)
			assert.False(t, alloc.Warning)
		})
	}
}

func TestAllocateCost_ExcludedIgnoresEverything(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	excluded := Participation{Kind: ParticipationExcluded}

	for _, dist := range []Distribution{DistributionApartment, DistributionPerson, DistributionConsumption, DistributionIndividual} {
		e := MonthlyExpense{
			Name:              "Apă caldă",
			Distribution:      dist,
			Amount:            Money{Cents: 99999},
			UnitPrice:         Money{Cents: 500},
			Consumption:       map[string]float64{"ap-1": 40},
			IndividualAmounts: map[string]Money{"ap-1": {Cents: 7777}},
		}
		alloc := AllocateCost(e, apts[0], totals, excluded)
		assert.True(t, alloc.Cost.IsZero(), "distribution %s", dist)
	}
}

func TestAllocateCost_MissingParticipationValue(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	e := MonthlyExpense{Name: "Salarii NETE", Distribution: DistributionApartment, Amount: Money{Cents: 10000}}

	for _, kind := range []ParticipationKind{ParticipationPercentage, ParticipationFixed} {
		alloc := AllocateCost(e, apts[0], totals, Participation{Kind: kind})
		assert.True(t, alloc.Cost.IsZero())
		assert.True(t, alloc.Warning, "missing value must surface a warning")
	}
}

func TestAllocateCost_EmptyDenominators(t *testing.T) {
	totals := Totals{}
	apt := Apartment{ID: "ap-1", Number: 1, Persons: 0}

	for _, dist := range []Distribution{DistributionApartment, DistributionPerson} {
		e := MonthlyExpense{Name: "Canal", Distribution: dist, Amount: Money{Cents: 10000}}
		alloc := AllocateCost(e, apt, totals, IntegralParticipation())
		require.True(t, alloc.Cost.IsZero(), "empty denominator must not divide, distribution %s", dist)
	}
}

func TestAllocateCost_UnknownDistributionFallsBack(t *testing.T) {
	apts := apartmentsFixture()
	totals := TotalsOf(apts)
	e := MonthlyExpense{Name: "Fond rulment", Distribution: "cota_parte", Amount: Money{Cents: 10000}}

	alloc := AllocateCost(e, apts[0], totals, IntegralParticipation())
	assert.Equal(t, int64(5000), alloc.Cost.Cents, "unknown labels use the apartment split")
}
