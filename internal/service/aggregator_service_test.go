package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/internal/repository"
)

type stubAggregatorStore struct {
	attendance []models.AttendanceRow
	travel     []models.TravelRow
	anomalies  []models.AnomalyRow
}

func (s *stubAggregatorStore) ReadRows(ctx context.Context, months models.MonthSet, kinds []repository.RowKind) ([]models.AttendanceRow, []models.TravelRow, []models.AnomalyRow, error) {
	var attendance []models.AttendanceRow
	var travel []models.TravelRow
	var anomalies []models.AnomalyRow
	for _, k := range kinds {
		switch k {
		case repository.KindRowAttendance:
			attendance = s.attendance
		case repository.KindRowTravel:
			travel = s.travel
		case repository.KindRowAnomaly:
			anomalies = s.anomalies
		}
	}
	return attendance, travel, anomalies, nil
}

func mustDay(t *testing.T, raw string) models.Day {
	t.Helper()
	d, ok := models.ParseDay(raw)
	if !ok {
		t.Fatalf("failed to parse day %q", raw)
	}
	return d
}

func newTestAggregator(store AggregatorStore) *AggregatorService {
	return NewAggregatorService(store, nil, nil, zap.NewNop())
}

func TestSummaryAggregatesOrdersAndCost(t *testing.T) {
	store := &stubAggregatorStore{
		travel: []models.TravelRow{
			{Kind: models.KindFlight, Amount: models.ParseMoney("100.00"), IsOverStandard: true, OverStandardReason: "upgraded cabin", ProjectCode: strPtr("1")},
			{Kind: models.KindHotel, Amount: models.ParseMoney("50.00"), ProjectCode: strPtr("1")},
			{Kind: models.KindTrain, Amount: models.ParseMoney("25.00")},
		},
		attendance: []models.AttendanceRow{
			{Status: models.StatusWork, WorkHours: 8},
			{Status: models.StatusWork, WorkHours: 10},
			{Status: models.StatusWeekendWork, WorkHours: 6},
		},
		anomalies: []models.AnomalyRow{{}},
	}

	svc := newTestAggregator(store)
	summary, err := svc.Summary(context.Background(), models.NewMonthSet("2024-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalCost.Decimal.String() != "175" {
		t.Errorf("total_cost = %s, want 175", summary.TotalCost.Decimal.String())
	}
	if summary.OrderBreakdown.Total != 3 {
		t.Errorf("order total = %d, want 3", summary.OrderBreakdown.Total)
	}
	if summary.OverStandardCount != 1 {
		t.Errorf("over_standard_count = %d, want 1", summary.OverStandardCount)
	}
	if summary.FlightOverTypeBreakdown["upgraded cabin"] != 1 {
		t.Errorf("flight_over_type_breakdown mismatch: %v", summary.FlightOverTypeBreakdown)
	}
	if summary.AvgWorkHours != 9 {
		t.Errorf("avg_work_hours = %v, want 9", summary.AvgWorkHours)
	}
	if summary.HolidayAvgWorkHours != 6 {
		t.Errorf("holiday_avg_work_hours = %v, want 6", summary.HolidayAvgWorkHours)
	}
	if summary.AnomalyCount != 1 {
		t.Errorf("anomaly_count = %d, want 1", summary.AnomalyCount)
	}
	if summary.TotalProjectCount != 2 { // project "1" and the synthetic "nan" bucket
		t.Errorf("total_project_count = %d, want 2", summary.TotalProjectCount)
	}
}

func TestBookingBehaviorUrgentOrders(t *testing.T) {
	two, three, one := 2, 3, 1
	store := &stubAggregatorStore{
		travel: []models.TravelRow{
			{AdvanceDays: &two},
			{AdvanceDays: &three},
			{AdvanceDays: &one},
		},
	}
	svc := newTestAggregator(store)
	result, err := svc.BookingBehavior(context.Background(), models.NewMonthSet("2024-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalOrders != 3 {
		t.Fatalf("total_orders = %d, want 3", result.TotalOrders)
	}
	if result.UrgentOrders != 2 {
		t.Fatalf("urgent_orders = %d, want 2 (advance_days <= 2)", result.UrgentOrders)
	}
	wantRatio := float64(2) / float64(3) * 100
	if result.UrgentRatio != wantRatio {
		t.Fatalf("urgent_ratio = %v, want %v", result.UrgentRatio, wantRatio)
	}
}

func TestDepartmentListComputesSaturation(t *testing.T) {
	store := &stubAggregatorStore{
		attendance: []models.AttendanceRow{
			{EmployeeName: "Alice", DepartmentPath: models.DepartmentPath{"Engineering"}, Status: models.StatusWork, WorkHours: 8},
			{EmployeeName: "Bob", DepartmentPath: models.DepartmentPath{"Engineering"}, Status: models.StatusWork, WorkHours: 8},
		},
		travel: []models.TravelRow{
			{DepartmentPath: models.DepartmentPath{"Engineering"}, Amount: models.ParseMoney("10.00")},
		},
	}
	svc := newTestAggregator(store)
	list, err := svc.DepartmentList(context.Background(), models.NewMonthSet("2024-03"), 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 department, got %d", len(list))
	}
	dept := list[0]
	if dept.PersonCount != 2 {
		t.Errorf("person_count = %d, want 2", dept.PersonCount)
	}
	if dept.TotalCost.Decimal.String() != "10" {
		t.Errorf("total_cost = %s, want 10", dept.TotalCost.Decimal.String())
	}
	wantSaturation := (8.0 + 8.0) / (2.0 * models.StandardMonthlyHours) * 100
	if diff := dept.Saturation - wantSaturation; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("saturation = %v, want %v", dept.Saturation, wantSaturation)
	}
}

func TestDepartmentDetailsWeekendAttendanceCountIsIndependentOfWeekendWorkDays(t *testing.T) {
	saturday := mustDay(t, "2024-03-09")
	sunday := mustDay(t, "2024-03-10")
	weekday := mustDay(t, "2024-03-11")

	store := &stubAggregatorStore{
		attendance: []models.AttendanceRow{
			// WORK on a Saturday counts as weekend attendance, not weekend work.
			{EmployeeName: "Alice", DepartmentPath: models.DepartmentPath{"Engineering"}, Date: saturday, Status: models.StatusWork, WorkHours: 8},
			// WEEKEND_WORK status counts as weekend work, not weekend attendance.
			{EmployeeName: "Bob", DepartmentPath: models.DepartmentPath{"Engineering"}, Date: saturday, Status: models.StatusWeekendWork, WorkHours: 8},
			// TRAVEL on a Sunday counts as weekend attendance.
			{EmployeeName: "Carol", DepartmentPath: models.DepartmentPath{"Engineering"}, Date: sunday, Status: models.StatusTravel},
			// WORK on a weekday counts as neither.
			{EmployeeName: "Dave", DepartmentPath: models.DepartmentPath{"Engineering"}, Date: weekday, Status: models.StatusWork, WorkHours: 8},
		},
	}
	svc := newTestAggregator(store)
	details, err := svc.DepartmentDetails(context.Background(), models.NewMonthSet("2024-03"), "Engineering", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.WeekendWorkDays != 1 {
		t.Errorf("weekend_work_days = %d, want 1", details.WeekendWorkDays)
	}
	if details.WeekendAttendanceCount != 2 {
		t.Errorf("weekend_attendance_count = %d, want 2", details.WeekendAttendanceCount)
	}
}

func TestDepartmentDetailsSaturationFormula(t *testing.T) {
	store := &stubAggregatorStore{
		attendance: []models.AttendanceRow{
			{EmployeeName: "Alice", DepartmentPath: models.DepartmentPath{"Engineering"}, Status: models.StatusWork, WorkHours: 176},
		},
	}
	svc := newTestAggregator(store)
	details, err := svc.DepartmentDetails(context.Background(), models.NewMonthSet("2024-03"), "Engineering", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// total_work_hours / (person_count * 176.0) * 100 = 176 / (1 * 176) * 100 = 100
	if details.DepartmentSaturation != 100 {
		t.Fatalf("department_saturation = %v, want 100", details.DepartmentSaturation)
	}
}

func TestListProjectsPicksMostCommonNameWithFirstOccurrenceTiebreak(t *testing.T) {
	code := "7"
	store := &stubAggregatorStore{
		travel: []models.TravelRow{
			{ProjectCode: &code, ProjectName: strPtr("Alpha"), Amount: models.ParseMoney("1")},
			{ProjectCode: &code, ProjectName: strPtr("Beta"), Amount: models.ParseMoney("1")},
			{ProjectCode: &code, ProjectName: strPtr("Alpha"), Amount: models.ParseMoney("1")},
		},
	}
	svc := newTestAggregator(store)
	projects, err := svc.ListProjects(context.Background(), models.NewMonthSet("2024-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].Name != "Alpha" {
		t.Fatalf("name = %q, want Alpha (most common)", projects[0].Name)
	}
}

func strPtr(s string) *string { return &s }
