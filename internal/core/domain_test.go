package core

import (
	"errors"
	"testing"
)

func TestApartmentValidate(t *testing.T) {
	valid := Apartment{
		StairID: "stair-1",
		Number:  10,
		Owner:   "Ion Popescu",
		Persons: 3,
		Surface: 54.2,
	}

	tests := []struct {
		name    string
		mutate  func(*Apartment)
		wantErr error
	}{
		{name: "valid", mutate: func(*Apartment) {}},
		{name: "no stair", mutate: func(a *Apartment) { a.StairID = "" }, wantErr: nil},
		{name: "zero number", mutate: func(a *Apartment) { a.Number = 0 }, wantErr: ErrInvalidNumber},
		{name: "empty owner", mutate: func(a *Apartment) { a.Owner = "  " }, wantErr: ErrEmptyOwner},
		{name: "zero persons", mutate: func(a *Apartment) { a.Persons = 0 }, wantErr: ErrInvalidPersons},
		{name: "unknown type", mutate: func(a *Apartment) { a.ApartmentType = "vila" }, wantErr: ErrUnknownType},
		{name: "known type", mutate: func(a *Apartment) { a.ApartmentType = "3 camere" }},
		{name: "unknown heating", mutate: func(a *Apartment) { a.HeatingSource = "soba" }, wantErr: ErrUnknownHeating},
		{name: "known heating", mutate: func(a *Apartment) { a.HeatingSource = "Termoficare" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apt := valid
			tt.mutate(&apt)
			err := apt.Validate()

			switch tt.name {
			case "valid", "known type", "known heating":
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			case "no stair":
				if err == nil {
					t.Error("Validate() expected error for missing stair")
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestMonthlyExpenseValidate(t *testing.T) {
	tests := []struct {
		name    string
		expense MonthlyExpense
		wantErr error
	}{
		{
			name: "apartment split needs amount",
			expense: MonthlyExpense{
				Name: "Service interfon", Month: "ianuarie 2025",
				Distribution: DistributionApartment,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "consumption needs unit price",
			expense: MonthlyExpense{
				Name: "Apă rece", Month: "ianuarie 2025",
				Distribution: DistributionConsumption,
				BillAmount:   Money{Cents: 10000},
			},
			wantErr: ErrConsumptionNeedsPrices,
		},
		{
			name: "consumption needs bill total",
			expense: MonthlyExpense{
				Name: "Apă rece", Month: "ianuarie 2025",
				Distribution: DistributionConsumption,
				UnitPrice:    Money{Cents: 350},
			},
			wantErr: ErrConsumptionNeedsPrices,
		},
		{
			name: "individual needs no amount up front",
			expense: MonthlyExpense{
				Name: "Căldură", Month: "ianuarie 2025",
				Distribution: DistributionIndividual,
			},
		},
		{
			name: "valid consumption",
			expense: MonthlyExpense{
				Name: "Apă caldă", Month: "ianuarie 2025",
				Distribution: DistributionConsumption,
				UnitPrice:    Money{Cents: 350},
				BillAmount:   Money{Cents: 10000},
			},
		},
		{
			name: "missing name",
			expense: MonthlyExpense{
				Month:        "ianuarie 2025",
				Distribution: DistributionApartment,
				Amount:       Money{Cents: 5000},
			},
			wantErr: ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expense.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
