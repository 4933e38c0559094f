package handler

import "testing"

func TestValidateStructRejectsOutOfRangeQuarter(t *testing.T) {
	err := validateStruct(monthsQuery{Year: 2024, Quarter: 5})
	if err == nil {
		t.Fatal("expected an error for quarter=5")
	}
}

func TestValidateStructAcceptsValidQuery(t *testing.T) {
	if err := validateStruct(monthsQuery{Year: 2024, Quarter: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStructAcceptsOmittedYearAndQuarter(t *testing.T) {
	if err := validateStruct(monthsQuery{Months: "2024-03"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
