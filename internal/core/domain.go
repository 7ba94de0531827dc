package core

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Association is the tenant root. Every block, apartment, expense and
	// balance is scoped to one association, directly or through the
	// stair -> block chain.
	Association struct {
		ID            string
		Name          string
		CUI           string
		Address       string
		Administrator string
	}

	// Block is a building belonging to an association.
	Block struct {
		ID            string
		AssociationID string
		Name          string
	}

	// Stair is a stairwell entrance within a block.
	Stair struct {
		ID      string
		BlockID string
		Name    string
	}

	// Apartment is a unit within a stair. Number is unique within the stair.
	Apartment struct {
		ID            string
		StairID       string
		Number        int
		Owner         string
		Persons       int
		Surface       float64 // square meters, optional
		ApartmentType string  // optional, one of ApartmentTypes
		HeatingSource string  // optional, one of HeatingSources
	}
)

// ApartmentTypes lists the accepted apartment layouts, as offered in the
// bulk-import template.
var ApartmentTypes = []string{
	"Garsoniera",
	"2 camere",
	"3 camere",
	"4 camere",
	"5 camere",
	"Penthouse",
}

// HeatingSources lists the accepted heating setups.
var HeatingSources = []string{
	"Termoficare",
	"Centrală proprie",
	"Centrală bloc",
	"Debranșat",
}

var (
	// ErrInvalidInput is the base of every validation failure, so callers
	// can match the whole family with errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyName         = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrInvalidPersons    = fmt.Errorf("%w: persons must be at least 1", ErrInvalidInput)
	ErrInvalidNumber     = fmt.Errorf("%w: apartment number must be positive", ErrInvalidInput)
	ErrEmptyOwner        = fmt.Errorf("%w: empty owner", ErrInvalidInput)
	ErrUnknownType       = fmt.Errorf("%w: unknown apartment type", ErrInvalidInput)
	ErrUnknownHeating    = fmt.Errorf("%w: unknown heating source", ErrInvalidInput)
	ErrDuplicateExpense  = errors.New("expense already added for this month")
	ErrMonthPublished    = errors.New("month is published and read-only")
	ErrMonthNotPublished = errors.New("month is not published")
)

func (a Association) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > 200 {
		return fmt.Errorf("%w: name too long (max 200 characters)", ErrInvalidInput)
	}
	return nil
}

func (b Block) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.AssociationID == "" {
		return fmt.Errorf("%w: block must belong to an association", ErrInvalidInput)
	}
	return nil
}

func (s Stair) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.BlockID == "" {
		return fmt.Errorf("%w: stair must belong to a block", ErrInvalidInput)
	}
	return nil
}

func (ap Apartment) Validate() error {
	if ap.StairID == "" {
		return fmt.Errorf("%w: apartment must belong to a stair", ErrInvalidInput)
	}
	if ap.Number <= 0 {
		return ErrInvalidNumber
	}
	if strings.TrimSpace(ap.Owner) == "" {
		return ErrEmptyOwner
	}
	if len(ap.Owner) > 200 {
		return fmt.Errorf("%w: owner too long (max 200 characters)", ErrInvalidInput)
	}
	if ap.Persons < 1 {
		return ErrInvalidPersons
	}
	if ap.Surface < 0 {
		return fmt.Errorf("%w: surface cannot be negative", ErrInvalidInput)
	}
	if ap.ApartmentType != "" && !contains(ApartmentTypes, ap.ApartmentType) {
		return ErrUnknownType
	}
	if ap.HeatingSource != "" && !contains(HeatingSources, ap.HeatingSource) {
		return ErrUnknownHeating
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
