package models

import "testing"

func TestParseYearMonth(t *testing.T) {
	m, err := ParseYearMonth("2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Year() != 2024 {
		t.Errorf("year = %d", m.Year())
	}
	if m.Quarter() != 1 {
		t.Errorf("quarter = %d", m.Quarter())
	}

	if _, err := ParseYearMonth("not-a-month"); err == nil {
		t.Fatal("expected error for invalid month")
	}
}

func TestQuarterMonths(t *testing.T) {
	months := QuarterMonths(2024, 2)
	want := []YearMonth{"2024-04", "2024-05", "2024-06"}
	if len(months) != len(want) {
		t.Fatalf("got %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("got %v, want %v", months, want)
		}
	}

	if QuarterMonths(2024, 5) != nil {
		t.Error("expected nil for invalid quarter")
	}
	if QuarterMonths(2024, 0) != nil {
		t.Error("expected nil for invalid quarter")
	}
}

func TestMonthSetSortedDeduplicates(t *testing.T) {
	set := NewMonthSet("2024-03", "2024-01", "2024-03", "2024-02")
	sorted := set.Sorted()
	want := []YearMonth{"2024-01", "2024-02", "2024-03"}
	if len(sorted) != len(want) {
		t.Fatalf("got %v, want %v", sorted, want)
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("got %v, want %v", sorted, want)
		}
	}
}

func TestMonthSetContains(t *testing.T) {
	set := NewMonthSet("2024-03")
	if !set.Contains("2024-03") {
		t.Error("expected set to contain 2024-03")
	}
	if set.Contains("2024-04") {
		t.Error("expected set to not contain 2024-04")
	}
}
