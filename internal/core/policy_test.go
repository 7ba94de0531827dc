package core

import "testing"

func TestCatalogDistributionFor(t *testing.T) {
	catalog := Catalog{
		AssociationID: "as-1",
		CustomTypes: []ExpenseType{
			{Name: "Fond reparații", DefaultDistribution: DistributionApartment, Custom: true},
		},
		Overrides: map[ConfigKey]Distribution{
			{AssociationID: "as-1", ExpenseName: "Apă rece"}: DistributionPerson,
		},
	}

	tests := []struct {
		name        string
		expenseName string
		want        Distribution
	}{
		{name: "override wins over default", expenseName: "Apă rece", want: DistributionPerson},
		{name: "default catalog", expenseName: "Căldură", want: DistributionIndividual},
		{name: "custom type", expenseName: "Fond reparații", want: DistributionApartment},
		{name: "unknown name falls back", expenseName: "Gradina", want: DistributionApartment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := catalog.DistributionFor(tt.expenseName); got != tt.want {
				t.Errorf("DistributionFor(%q) = %q, want %q", tt.expenseName, got, tt.want)
			}
		})
	}
}

func TestCatalogParticipationFor(t *testing.T) {
	pct := 50.0
	catalog := Catalog{
		AssociationID: "as-1",
		Participations: map[ParticipationKey]Participation{
			{ApartmentID: "ap-1", ExpenseName: "Apă rece"}: {Kind: ParticipationPercentage, Percent: &pct},
		},
	}

	got := catalog.ParticipationFor("ap-1", "Apă rece")
	if got.Kind != ParticipationPercentage || got.Percent == nil || *got.Percent != 50 {
		t.Errorf("ParticipationFor() = %+v, want percentage 50", got)
	}

	fallback := catalog.ParticipationFor("ap-2", "Apă rece")
	if fallback.Kind != ParticipationIntegral {
		t.Errorf("absent entry should default to integral, got %q", fallback.Kind)
	}
}

func TestCatalogActiveTypes(t *testing.T) {
	catalog := Catalog{
		AssociationID: "as-1",
		CustomTypes: []ExpenseType{
			{Name: "Fond reparații", DefaultDistribution: DistributionApartment, Custom: true},
			{Name: "Curățenie", DefaultDistribution: DistributionApartment, Custom: true},
		},
		Disabled: map[string]bool{"Căldură": true, "Curățenie": true},
	}

	active := catalog.ActiveTypes()
	wantLen := len(DefaultExpenseTypes) - 1 + 1
	if len(active) != wantLen {
		t.Fatalf("ActiveTypes() returned %d entries, want %d", len(active), wantLen)
	}

	// Defaults keep catalog order and come first.
	if active[0].Name != "Apă caldă" {
		t.Errorf("first active type = %q, want catalog head", active[0].Name)
	}
	if last := active[len(active)-1]; last.Name != "Fond reparații" || !last.Custom {
		t.Errorf("last active type = %+v, want the surviving custom type", last)
	}
	for _, tp := range active {
		if tp.Name == "Căldură" || tp.Name == "Curățenie" {
			t.Errorf("disabled type %q still active", tp.Name)
		}
	}

	disabled := catalog.DisabledTypes()
	if len(disabled) != 2 {
		t.Fatalf("DisabledTypes() returned %d entries, want 2", len(disabled))
	}
	if disabled[0].Name != "Căldură" || disabled[1].Name != "Curățenie" {
		t.Errorf("DisabledTypes() = %v", disabled)
	}
}
