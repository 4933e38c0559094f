package models

import (
	"regexp"
	"strconv"
	"strings"
)

// TravelKind distinguishes the three booking sheets. Per-kind logic is
// switched on this tag rather than modelled as separate types, since all
// three sheets share the same shape.
type TravelKind string

const (
	KindFlight TravelKind = "FLIGHT"
	KindHotel  TravelKind = "HOTEL"
	KindTrain  TravelKind = "TRAIN"
)

// NanProjectCode is the synthetic bucket every null project_code is grouped
// under for counting purposes in total_project_count.
const NanProjectCode = "nan"

var projectFieldPattern = regexp.MustCompile(`^\s*(\d+)\s+(.*)$`)

// ParseProjectField splits the workbook's single "<code> <name>" project
// column into (code, name). code is nil when the field doesn't start with
// a contiguous run of digits followed by whitespace.
func ParseProjectField(raw string) (code *string, name *string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	m := projectFieldPattern.FindStringSubmatch(trimmed)
	if m == nil {
		n := trimmed
		return nil, &n
	}
	c := m[1]
	n := strings.TrimSpace(m[2])
	if n == "" {
		return &c, nil
	}
	return &c, &n
}

// ParseAdvanceDays parses the advance-booking-days column, which may be
// negative or absent.
func ParseAdvanceDays(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return v, true
}

// TravelRow is one booking line from any of the flight/hotel/train sheets.
type TravelRow struct {
	ID                 string         `db:"id" json:"id"`
	Kind               TravelKind     `db:"kind" json:"kind"`
	EventDate          Day            `db:"event_date" json:"event_date"`
	BookerName         string         `db:"booker_name" json:"booker_name"`
	TravellerName      string         `db:"traveller_name" json:"traveller_name"`
	DepartmentPath     DepartmentPath `db:"-" json:"department_path"`
	DepartmentJoin     string         `db:"department_path" json:"-"`
	Amount             Money          `db:"amount" json:"amount"`
	ProjectCode        *string        `db:"project_code" json:"project_code"`
	ProjectName        *string        `db:"project_name" json:"project_name"`
	AdvanceDays        *int           `db:"advance_days" json:"advance_days"`
	IsOverStandard     bool           `db:"is_over_standard" json:"is_over_standard"`
	OverStandardReason string         `db:"over_standard_reason" json:"over_standard_reason"`
	SourceMonth        YearMonth      `db:"source_month" json:"source_month"`
}

// ProjectCodeOrNan returns project_code, or the synthetic "nan" bucket when
// it is null, for grouping.
func (t TravelRow) ProjectCodeOrNan() string {
	if t.ProjectCode == nil {
		return NanProjectCode
	}
	return *t.ProjectCode
}
