package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month handling. Months are identified by their Romanian long label
// ("ianuarie 2025"), the same string the posting notice carries.

// MonthStatus is the lifecycle state of one association month.
type MonthStatus string

const (
	// MonthInLucru: editable, expenses can be added, no payments recorded.
	MonthInLucru MonthStatus = "in_lucru"
	// MonthAfisata: published and read-only, payments can be toggled.
	MonthAfisata MonthStatus = "afisata"
)

var (
	ErrInvalidMonthLabel      = fmt.Errorf("%w: invalid month label", ErrInvalidInput)
	ErrConsumptionNeedsPrices = fmt.Errorf("%w: consumption expense needs unit price and bill total", ErrInvalidInput)
)

var romanianMonths = []string{
	"ianuarie", "februarie", "martie", "aprilie", "mai", "iunie",
	"iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie",
}

// MonthLabel formats a time as the Romanian long month-year label.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", romanianMonths[t.Month()-1], t.Year())
}

// ParseMonthLabel parses "ianuarie 2025" back into the first day of that
// month, UTC.
func ParseMonthLabel(label string) (time.Time, error) {
	parts := strings.Fields(strings.TrimSpace(strings.ToLower(label)))
	if len(parts) != 2 {
		return time.Time{}, ErrInvalidMonthLabel
	}
	month := -1
	for i, name := range romanianMonths {
		if name == parts[0] {
			month = i + 1
			break
		}
	}
	if month == -1 {
		return time.Time{}, ErrInvalidMonthLabel
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || year < 1900 || year > 9999 {
		return time.Time{}, ErrInvalidMonthLabel
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// AddMonthsLabel shifts a month label by n calendar months.
func AddMonthsLabel(label string, n int) (string, error) {
	t, err := ParseMonthLabel(label)
	if err != nil {
		return "", err
	}
	return MonthLabel(t.AddDate(0, n, 0)), nil
}

// NextMonthLabel is AddMonthsLabel(label, 1).
func NextMonthLabel(label string) (string, error) {
	return AddMonthsLabel(label, 1)
}

// CurrentMonthLabel is the label for now, normalized to the first of the
// month so day-of-month arithmetic cannot skew later shifts.
func CurrentMonthLabel(now time.Time) string {
	return MonthLabel(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// CanPublish reports whether a month in the given status accepts the
// publish transition. Publishing is one-way; there is no un-publish.
func (s MonthStatus) CanPublish() bool {
	return s == MonthInLucru
}

// Published reports whether the month is frozen for expense edits.
func (s MonthStatus) Published() bool {
	return s == MonthAfisata
}
