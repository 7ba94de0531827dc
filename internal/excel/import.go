package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"blocapp/internal/core"
)

// RowError reports one rejected row of an import file.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult is the parsed outcome of an uploaded workbook: the rows that
// validated and a per-row error report for the rest.
type ImportResult struct {
	Apartments []core.Apartment
	Errors     []RowError
}

// ImportApartments reads a filled template. Rows whose required columns fail
// to validate are reported by row number and skipped; valid rows come back
// ready for insertion.
func ImportApartments(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(dataSheet)
	if err != nil {
		return ImportResult{}, fmt.Errorf("missing sheet %q: %w", dataSheet, err)
	}
	if len(rows) < 2 {
		return ImportResult{}, nil
	}

	var result ImportResult
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(row) {
			continue
		}
		apt, reason := parseApartmentRow(row)
		if reason != "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Reason: reason})
			continue
		}
		result.Apartments = append(result.Apartments, apt)
	}
	return result, nil
}

func parseApartmentRow(row []string) (core.Apartment, string) {
	number, err := strconv.Atoi(strings.TrimSpace(cell(row, 0)))
	if err != nil || number <= 0 {
		return core.Apartment{}, "Nr_Apt trebuie să fie un întreg pozitiv"
	}
	owner := strings.TrimSpace(cell(row, 1))
	if owner == "" {
		return core.Apartment{}, "Proprietar este obligatoriu"
	}
	persons, err := strconv.Atoi(strings.TrimSpace(cell(row, 2)))
	if err != nil || persons < 1 {
		return core.Apartment{}, "Nr_Persoane trebuie să fie minim 1"
	}

	apt := core.Apartment{
		Number:        number,
		Owner:         owner,
		Persons:       persons,
		Surface:       core.LenientLei(cell(row, 3)),
		ApartmentType: strings.TrimSpace(cell(row, 4)),
		HeatingSource: strings.TrimSpace(cell(row, 5)),
	}
	if apt.ApartmentType != "" && !containsString(core.ApartmentTypes, apt.ApartmentType) {
		return core.Apartment{}, fmt.Sprintf("Tip_Apartament necunoscut: %q", apt.ApartmentType)
	}
	if apt.HeatingSource != "" && !containsString(core.HeatingSources, apt.HeatingSource) {
		return core.Apartment{}, fmt.Sprintf("Sursa_Incalzire necunoscută: %q", apt.HeatingSource)
	}
	return apt, ""
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
