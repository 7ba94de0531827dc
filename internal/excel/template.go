// Package excel builds and reads the xlsx files the application exchanges
// with administrators: the apartment import template, filled import files,
// and the maintenance table export.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"blocapp/internal/core"
)

const (
	dataSheet         = "Apartamente"
	instructionsSheet = "Instrucțiuni"
	optionsSheet      = "Opțiuni"
)

// templateHeaders are the columns of the import sheet, in order. A trailing
// star marks a required column.
var templateHeaders = []string{
	"Nr_Apt*",
	"Proprietar*",
	"Nr_Persoane*",
	"Suprafata",
	"Tip_Apartament",
	"Sursa_Incalzire",
}

// BuildTemplate produces the workbook administrators fill in for the bulk
// apartment import: a data sheet with the expected headers, an instruction
// sheet, and an options sheet listing the accepted enum values.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, fmt.Errorf("rename data sheet: %w", err)
	}
	for i, header := range templateHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(dataSheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	// An example row so the expected formats are visible.
	example := []any{1, "Popescu Ion", 2, 54.5, core.ApartmentTypes[1], core.HeatingSources[0]}
	for i, v := range example {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(dataSheet, cell, v); err != nil {
			return nil, fmt.Errorf("write example row: %w", err)
		}
	}

	if _, err := f.NewSheet(instructionsSheet); err != nil {
		return nil, fmt.Errorf("create instructions sheet: %w", err)
	}
	instructions := []string{
		"Completați foaia \"Apartamente\", un apartament pe rând.",
		"Coloanele marcate cu * sunt obligatorii.",
		"Nr_Apt: numărul apartamentului, întreg pozitiv, unic pe scară.",
		"Nr_Persoane: numărul de persoane, minim 1.",
		"Suprafata: metri pătrați, opțional, virgula și punctul sunt acceptate.",
		"Tip_Apartament și Sursa_Incalzire: folosiți valorile din foaia \"Opțiuni\".",
		"Rândul de exemplu poate fi șters sau suprascris.",
	}
	for i, line := range instructions {
		if err := f.SetCellValue(instructionsSheet, fmt.Sprintf("A%d", i+1), line); err != nil {
			return nil, fmt.Errorf("write instructions: %w", err)
		}
	}

	if _, err := f.NewSheet(optionsSheet); err != nil {
		return nil, fmt.Errorf("create options sheet: %w", err)
	}
	if err := f.SetCellValue(optionsSheet, "A1", "Tip_Apartament"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(optionsSheet, "B1", "Sursa_Incalzire"); err != nil {
		return nil, err
	}
	for i, v := range core.ApartmentTypes {
		if err := f.SetCellValue(optionsSheet, fmt.Sprintf("A%d", i+2), v); err != nil {
			return nil, err
		}
	}
	for i, v := range core.HeatingSources {
		if err := f.SetCellValue(optionsSheet, fmt.Sprintf("B%d", i+2), v); err != nil {
			return nil, err
		}
	}

	return f, nil
}
