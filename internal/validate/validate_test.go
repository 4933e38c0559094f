package validate

import (
	"testing"

	"github.com/costmatrix/analytics-engine/internal/models"
)

func mustDay(t *testing.T, raw string) models.Day {
	t.Helper()
	day, ok := models.ParseDay(raw)
	if !ok {
		t.Fatalf("failed to parse day %q", raw)
	}
	return day
}

func TestValidateConflictWorkHasTravel(t *testing.T) {
	month := models.YearMonth("2024-03")
	day := mustDay(t, "2024-03-05")

	attendance := []models.AttendanceRow{
		{Date: day, EmployeeName: "Alice", Status: models.StatusWork, DepartmentPath: models.DepartmentPath{"Eng"}},
	}
	travel := []models.TravelRow{
		{EventDate: day, TravellerName: "Alice", Kind: models.KindFlight},
	}

	v := New()
	anomalies, warnings := v.Validate(month, attendance, travel)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Kind != models.AnomalyConflictWorkHasTravel {
		t.Fatalf("unexpected kind: %s", anomalies[0].Kind)
	}
}

func TestValidateMissingTravelForTripStatus(t *testing.T) {
	month := models.YearMonth("2024-03")
	day := mustDay(t, "2024-03-05")

	attendance := []models.AttendanceRow{
		{Date: day, EmployeeName: "Bob", Status: models.StatusTravel, DepartmentPath: models.DepartmentPath{"Sales"}},
	}

	v := New()
	anomalies, _ := v.Validate(month, attendance, nil)

	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	if anomalies[0].Kind != models.AnomalyMissingTravelForTripStatus {
		t.Fatalf("unexpected kind: %s", anomalies[0].Kind)
	}
}

func TestValidateTravelWithinThreeDaysSuppressesMissingTravelAnomaly(t *testing.T) {
	month := models.YearMonth("2024-03")
	tripDay := mustDay(t, "2024-03-05")
	bookingDay := mustDay(t, "2024-03-07")

	attendance := []models.AttendanceRow{
		{Date: tripDay, EmployeeName: "Carol", Status: models.StatusTravel},
	}
	travel := []models.TravelRow{
		{EventDate: bookingDay, TravellerName: "Carol", Kind: models.KindHotel},
	}

	v := New()
	anomalies, _ := v.Validate(month, attendance, travel)

	if len(anomalies) != 0 {
		t.Fatalf("expected no anomalies within the 3-day window, got %d", len(anomalies))
	}
}

func TestValidateSkipsBlankEmployeeRows(t *testing.T) {
	month := models.YearMonth("2024-03")
	day := mustDay(t, "2024-03-05")

	attendance := []models.AttendanceRow{
		{Date: day, EmployeeName: "", Status: models.StatusWork},
	}
	travel := []models.TravelRow{
		{EventDate: day, TravellerName: ""},
	}

	v := New()
	anomalies, warnings := v.Validate(month, attendance, travel)

	if len(anomalies) != 0 {
		t.Fatalf("expected no anomalies, got %d", len(anomalies))
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings (blank attendance + blank travel), got %d: %v", len(warnings), warnings)
	}
}

func TestValidateCollapsesRepeatedConflictsForSameEmployeeDay(t *testing.T) {
	month := models.YearMonth("2024-03")
	day := mustDay(t, "2024-03-05")

	attendance := []models.AttendanceRow{
		{Date: day, EmployeeName: "Dana", Status: models.StatusWork},
	}
	travel := []models.TravelRow{
		{EventDate: day, TravellerName: "Dana", Kind: models.KindFlight},
		{EventDate: day, TravellerName: "Dana", Kind: models.KindHotel},
	}

	v := New()
	anomalies, _ := v.Validate(month, attendance, travel)

	if len(anomalies) != 1 {
		t.Fatalf("expected a single collapsed anomaly per (date, employee, kind), got %d", len(anomalies))
	}
}

func TestValidateOrdersDeterministicallyByDateEmployeeKind(t *testing.T) {
	month := models.YearMonth("2024-03")
	day1 := mustDay(t, "2024-03-01")
	day2 := mustDay(t, "2024-03-02")

	attendance := []models.AttendanceRow{
		{Date: day2, EmployeeName: "Zed", Status: models.StatusTravel},
		{Date: day1, EmployeeName: "Alice", Status: models.StatusWork},
		{Date: day1, EmployeeName: "Bob", Status: models.StatusTravel},
	}
	travel := []models.TravelRow{
		{EventDate: day1, TravellerName: "Alice", Kind: models.KindFlight},
	}

	v := New()
	anomalies, _ := v.Validate(month, attendance, travel)

	if len(anomalies) != 3 {
		t.Fatalf("expected 3 anomalies, got %d", len(anomalies))
	}
	for i := 1; i < len(anomalies); i++ {
		if anomalies[i-1].Date.String() > anomalies[i].Date.String() {
			t.Fatalf("anomalies not sorted by date: %v", anomalies)
		}
	}
}
