package models

// OrderBreakdown splits a count by travel kind, plus the total.
type OrderBreakdown struct {
	Flight int `json:"flight"`
	Hotel  int `json:"hotel"`
	Train  int `json:"train"`
	Total  int `json:"total"`
}

// Add increments the bucket matching kind and the total.
func (b *OrderBreakdown) Add(kind TravelKind, n int) {
	switch kind {
	case KindFlight:
		b.Flight += n
	case KindHotel:
		b.Hotel += n
	case KindTrain:
		b.Train += n
	}
	b.Total += n
}

// Summary is the Aggregator's whole-selection KPI rollup.
type Summary struct {
	TotalCost               Money          `json:"total_cost"`
	AvgWorkHours            float64        `json:"avg_work_hours"`
	HolidayAvgWorkHours     float64        `json:"holiday_avg_work_hours"`
	AnomalyCount            int            `json:"anomaly_count"`
	TotalOrders             int            `json:"total_orders"`
	OrderBreakdown          OrderBreakdown `json:"order_breakdown"`
	OverStandardCount       int            `json:"over_standard_count"`
	OverStandardBreakdown   OrderBreakdown `json:"over_standard_breakdown"`
	FlightOverTypeBreakdown map[string]int `json:"flight_over_type_breakdown"`
	TotalProjectCount       int            `json:"total_project_count"`
}

// DateRange is a [Start, End] inclusive window over event dates.
type DateRange struct {
	Start Day `json:"start"`
	End   Day `json:"end"`
}

// ProjectSummary is one row of list_projects/project_top_n.
type ProjectSummary struct {
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	TotalCost         Money     `json:"total_cost"`
	FlightCost        Money     `json:"flight_cost"`
	HotelCost         Money     `json:"hotel_cost"`
	TrainCost         Money     `json:"train_cost"`
	RecordCount       int       `json:"record_count"`
	FlightCount       int       `json:"flight_count"`
	HotelCount        int       `json:"hotel_count"`
	TrainCount        int       `json:"train_count"`
	PersonCount       int       `json:"person_count"`
	PersonList        []string  `json:"person_list"`
	DepartmentList    []string  `json:"department_list"`
	DateRange         DateRange `json:"date_range"`
	OverStandardCount int       `json:"over_standard_count"`
}

// ProjectOrder is one row of project_orders.
type ProjectOrder struct {
	ID                 string         `json:"id"`
	ProjectCode        *string        `json:"project_code"`
	ProjectName        *string        `json:"project_name"`
	TravellerName      string         `json:"traveller_name"`
	DepartmentPath     DepartmentPath `json:"department_path"`
	Kind               TravelKind     `json:"kind"`
	Amount             Money          `json:"amount"`
	EventDate          Day            `json:"event_date"`
	IsOverStandard     bool           `json:"is_over_standard"`
	OverStandardReason string         `json:"over_standard_reason"`
	AdvanceDays        *int           `json:"advance_days"`
}

// DepartmentHierarchy is department_hierarchy's three-level forest.
type DepartmentHierarchy struct {
	Level1 []string            `json:"level1"`
	Level2 map[string][]string `json:"level2"`
	Level3 map[string][]string `json:"level3"`
}

// DepartmentSummary is one row of department_list.
type DepartmentSummary struct {
	Name                string  `json:"name"`
	Level               int     `json:"level"`
	Parent              string  `json:"parent,omitempty"`
	PersonCount         int     `json:"person_count"`
	TotalCost           Money   `json:"total_cost"`
	AvgWorkHours        float64 `json:"avg_work_hours"`
	HolidayAvgWorkHours float64 `json:"holiday_avg_work_hours"`
	Saturation          float64 `json:"saturation"`
}

// RankedPerson is one row of a department_details top-10 ranking.
type RankedPerson struct {
	EmployeeName string  `json:"employee_name"`
	Value        float64 `json:"value"`
}

// DepartmentDetails is department_details's one-department dossier.
type DepartmentDetails struct {
	Name                   string                   `json:"name"`
	Level                  int                      `json:"level"`
	StatusCounts           map[AttendanceStatus]int `json:"status_counts"`
	WeekendWorkDays        int                      `json:"weekend_work_days"`
	WorkdayAttendanceDays  int                      `json:"workday_attendance_days"`
	TravelDays             int                      `json:"travel_days"`
	LeaveDays              int                      `json:"leave_days"`
	AnomalyDays            int                      `json:"anomaly_days"`
	LateAfter1930Count     int                      `json:"late_after_1930_count"`
	WeekendAttendanceCount int                      `json:"weekend_attendance_count"`
	TravelRanking          []RankedPerson           `json:"travel_ranking"`
	AnomalyRanking         []RankedPerson           `json:"anomaly_ranking"`
	LatestCheckoutRanking  []RankedPerson           `json:"latest_checkout_ranking"`
	LongestHoursRanking    []RankedPerson           `json:"longest_hours_ranking"`
	// DepartmentSaturation expresses headcount utilisation as a percentage
	// of the 176-standard-monthly-hours baseline.
	DepartmentSaturation float64 `json:"department_saturation"`
}

// ChildStatistics is one row of the nested per-child table returned by
// level1_statistics / level2_statistics.
type ChildStatistics struct {
	Name    string            `json:"name"`
	Summary DepartmentSummary `json:"summary"`
}

// ParentStatistics is the level1_statistics/level2_statistics payload.
type ParentStatistics struct {
	Name     string            `json:"name"`
	Level    int               `json:"level"`
	Summary  DepartmentSummary `json:"summary"`
	Children []ChildStatistics `json:"children"`
}

// AnomalyListItem is one row of list_anomalies.
type AnomalyListItem struct {
	Date             Day              `json:"date"`
	EmployeeName     string           `json:"employee_name"`
	DepartmentPath   DepartmentPath   `json:"department_path"`
	Kind             AnomalyKind      `json:"kind"`
	AttendanceStatus AttendanceStatus `json:"attendance_status,omitempty"`
	Detail           string           `json:"detail"`
}

// BookingBehavior is booking_behavior's payload.
type BookingBehavior struct {
	TotalOrders    int     `json:"total_orders"`
	UrgentOrders   int     `json:"urgent_orders"`
	UrgentRatio    float64 `json:"urgent_ratio"`
	AvgAdvanceDays float64 `json:"avg_advance_days"`
}

// UrgentAdvanceDaysThreshold is the advance_days <= threshold cutoff that
// marks a booking "urgent" for BookingBehavior.UrgentOrders.
const UrgentAdvanceDaysThreshold = 2

// StandardMonthlyHours is the 176-hour baseline used by department
// saturation: total_work_hours / (person_count * 176.0) * 100.
const StandardMonthlyHours = 176.0

// LateCheckoutThreshold is the checkout_time cutoff for
// DepartmentDetails.LateAfter1930Count.
var LateCheckoutThreshold = ClockTime{Hour: 19, Minute: 30}
