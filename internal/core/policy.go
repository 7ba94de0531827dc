package core

// Composite keys for the override maps. The legacy data kept these as
// "id-name" strings, which collides as soon as a name contains the
// delimiter; typed keys avoid that.
type (
	// ConfigKey addresses an association-level distribution override.
	ConfigKey struct {
		AssociationID string
		ExpenseName   string
	}

	// ParticipationKey addresses an apartment's participation rule for one
	// expense name.
	ParticipationKey struct {
		ApartmentID string
		ExpenseName string
	}
)

// ParticipationKind says how an apartment takes part in one expense.
type ParticipationKind string

const (
	ParticipationIntegral   ParticipationKind = "integral"
	ParticipationPercentage ParticipationKind = "percentage"
	ParticipationFixed      ParticipationKind = "fixed"
	ParticipationExcluded   ParticipationKind = "excluded"
)

// Participation carries only the data its kind needs. Percent is set for
// percentage rules, Amount for fixed rules; a nil value means the rule was
// stored without one and contributes a zero cost plus a data-quality
// warning.
type Participation struct {
	Kind    ParticipationKind
	Percent *float64
	Amount  *Money
}

// IntegralParticipation is the default rule for every apartment.
func IntegralParticipation() Participation {
	return Participation{Kind: ParticipationIntegral}
}

// Catalog resolves expense configuration for one association and month:
// the distribution policy per expense name and the participation rule per
// apartment. All lookups are total functions; absent entries resolve to
// defaults, never to errors.
type Catalog struct {
	AssociationID string
	// CustomTypes holds the association's custom expense types in creation
	// order.
	CustomTypes []ExpenseType
	// Overrides holds explicit distribution choices keyed per association
	// and expense name.
	Overrides map[ConfigKey]Distribution
	// Participations holds per-apartment participation rules.
	Participations map[ParticipationKey]Participation
	// Disabled holds the expense names suppressed for the month.
	Disabled map[string]bool
}

// DistributionFor resolves the distribution policy for an expense name:
// explicit override first, then the default-type catalog, then the custom
// types, and finally the per-apartment split for names matching nothing.
func (c Catalog) DistributionFor(name string) Distribution {
	if d, ok := c.Overrides[ConfigKey{AssociationID: c.AssociationID, ExpenseName: name}]; ok {
		return d.Normalize()
	}
	if t, ok := DefaultExpenseType(name); ok {
		return t.DefaultDistribution
	}
	for _, t := range c.CustomTypes {
		if t.Name == name {
			return t.DefaultDistribution.Normalize()
		}
	}
	return DistributionApartment
}

// ParticipationFor resolves the participation rule for an apartment and
// expense name, defaulting to integral.
func (c Catalog) ParticipationFor(apartmentID, name string) Participation {
	if p, ok := c.Participations[ParticipationKey{ApartmentID: apartmentID, ExpenseName: name}]; ok {
		return p
	}
	return IntegralParticipation()
}

// ActiveTypes returns the month's expense catalog: default types in catalog
// order, then custom types in creation order, minus the disabled names.
func (c Catalog) ActiveTypes() []ExpenseType {
	var out []ExpenseType
	for _, t := range DefaultExpenseTypes {
		if !c.Disabled[t.Name] {
			out = append(out, t)
		}
	}
	for _, t := range c.CustomTypes {
		if !c.Disabled[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

// DisabledTypes returns the suppressed counterpart of ActiveTypes.
func (c Catalog) DisabledTypes() []ExpenseType {
	var out []ExpenseType
	for _, t := range DefaultExpenseTypes {
		if c.Disabled[t.Name] {
			out = append(out, t)
		}
	}
	for _, t := range c.CustomTypes {
		if c.Disabled[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
