package core

import (
	"testing"
	"time"
)

func TestMonthLabelRoundTrip(t *testing.T) {
	tests := []struct {
		label string
		year  int
		month time.Month
	}{
		{"ianuarie 2025", 2025, time.January},
		{"decembrie 2024", 2024, time.December},
		{"mai 2026", 2026, time.May},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			parsed, err := ParseMonthLabel(tt.label)
			if err != nil {
				t.Fatalf("ParseMonthLabel(%q) error: %v", tt.label, err)
			}
			if parsed.Year() != tt.year || parsed.Month() != tt.month {
				t.Errorf("ParseMonthLabel(%q) = %v", tt.label, parsed)
			}
			if got := MonthLabel(parsed); got != tt.label {
				t.Errorf("MonthLabel() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestParseMonthLabelInvalid(t *testing.T) {
	for _, label := range []string{"", "ianuarie", "january 2025", "ianuarie abc", "ianuarie 2025 extra"} {
		if _, err := ParseMonthLabel(label); err == nil {
			t.Errorf("ParseMonthLabel(%q) expected error", label)
		}
	}
}

func TestParseMonthLabelCaseInsensitive(t *testing.T) {
	parsed, err := ParseMonthLabel("  Ianuarie 2025 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Month() != time.January {
		t.Errorf("got %v", parsed.Month())
	}
}

func TestAddMonthsLabel(t *testing.T) {
	tests := []struct {
		label string
		n     int
		want  string
	}{
		{"ianuarie 2025", 1, "februarie 2025"},
		{"decembrie 2024", 1, "ianuarie 2025"},
		{"noiembrie 2024", 3, "februarie 2025"},
		{"martie 2025", -1, "februarie 2025"},
	}

	for _, tt := range tests {
		got, err := AddMonthsLabel(tt.label, tt.n)
		if err != nil {
			t.Fatalf("AddMonthsLabel(%q, %d) error: %v", tt.label, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddMonthsLabel(%q, %d) = %q, want %q", tt.label, tt.n, got, tt.want)
		}
	}
}

func TestCurrentMonthLabelNormalizesDay(t *testing.T) {
	// January 31st + 1 month must not skid into March.
	now := time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	label := CurrentMonthLabel(now)
	if label != "ianuarie 2025" {
		t.Fatalf("CurrentMonthLabel = %q", label)
	}
	next, err := NextMonthLabel(label)
	if err != nil {
		t.Fatal(err)
	}
	if next != "februarie 2025" {
		t.Errorf("NextMonthLabel = %q, want februarie 2025", next)
	}
}

func TestMonthStatusTransitions(t *testing.T) {
	if !MonthInLucru.CanPublish() {
		t.Error("in_lucru must accept publish")
	}
	if MonthAfisata.CanPublish() {
		t.Error("published months cannot publish again")
	}
	if MonthInLucru.Published() {
		t.Error("in_lucru is not published")
	}
	if !MonthAfisata.Published() {
		t.Error("afisata is published")
	}
}
