package models

import "strings"

// AttendanceStatus enumerates the normalised attendance status values.
type AttendanceStatus string

const (
	StatusWork        AttendanceStatus = "WORK"
	StatusWeekendWork AttendanceStatus = "WEEKEND_WORK"
	StatusTravel      AttendanceStatus = "TRAVEL"
	StatusLeave       AttendanceStatus = "LEAVE"
	StatusUnknown     AttendanceStatus = "UNKNOWN"
)

// statusLookup is the fixed literal mapping from raw status text to the
// enum. Matching is on the raw status text after trimming whitespace.
var statusLookup = map[string]AttendanceStatus{
	"上班":    StatusWork,
	"公休日上班": StatusWeekendWork,
	"周末加班":  StatusWeekendWork,
	"出差":    StatusTravel,
	"请假":    StatusLeave,
	"年假":    StatusLeave,
	"病假":    StatusLeave,
	"事假":    StatusLeave,
}

// ParseAttendanceStatus maps raw status text to the enum, returning
// StatusUnknown (never an error) for anything not in the lookup table.
func ParseAttendanceStatus(raw string) AttendanceStatus {
	trimmed := strings.TrimSpace(raw)
	if status, ok := statusLookup[trimmed]; ok {
		return status
	}
	return StatusUnknown
}

// AttendanceRow is one (employee, date) pair.
type AttendanceRow struct {
	ID             string           `db:"id" json:"id"`
	Date           Day              `db:"date" json:"date"`
	EmployeeName   string           `db:"employee_name" json:"employee_name"`
	DepartmentPath DepartmentPath   `db:"-" json:"department_path"`
	DepartmentJoin string           `db:"department_path" json:"-"`
	Status         AttendanceStatus `db:"status" json:"status"`
	WorkHours      float64          `db:"work_hours" json:"work_hours"`
	CheckoutTime   *ClockTime       `db:"checkout_time" json:"checkout_time,omitempty"`
	SourceMonth    YearMonth        `db:"source_month" json:"source_month"`
}
