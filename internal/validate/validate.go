// Package validate derives cross-sheet anomalies from one month's
// attendance and travel rows.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/costmatrix/analytics-engine/internal/models"
)

// Warning mirrors normalize.Warning's shape for rows the Validator itself
// had to skip (a row that slipped through the Normaliser with a field it
// cannot reconcile, e.g. an empty employee name).
type Warning struct {
	Reason string `json:"reason"`
}

// Validator derives AnomalyRows from a month's row sets. It is pure and
// holds no state, so a single instance is safe to share across months.
type Validator struct{}

// New builds a Validator.
func New() *Validator {
	return &Validator{}
}

type key struct {
	date     string
	employee string
}

// Validate runs both rules over one month's rows and returns deterministically
// ordered, deduplicated AnomalyRows plus any warnings for rows it had to skip.
func (v *Validator) Validate(month models.YearMonth, attendance []models.AttendanceRow, travel []models.TravelRow) ([]models.AnomalyRow, []Warning) {
	var warnings []Warning

	travelByTraveller := make(map[string][]models.TravelRow)
	for _, t := range travel {
		name := strings.TrimSpace(t.TravellerName)
		if name == "" {
			warnings = append(warnings, Warning{Reason: "travel row with blank traveller_name skipped"})
			continue
		}
		travelByTraveller[name] = append(travelByTraveller[name], t)
	}

	type candidate struct {
		row        models.AnomalyRow
		baseDetail string
		count      int
	}
	collapsed := make(map[[3]string]*candidate) // [date, employee, kind] -> candidate, with a running count

	addOrCollapse := func(date models.Day, employee string, dept models.DepartmentPath, kind models.AnomalyKind, detail string, status models.AttendanceStatus) {
		k := [3]string{date.String(), employee, string(kind)}
		if existing, ok := collapsed[k]; ok {
			existing.count++
			existing.row.Detail = fmt.Sprintf("%s (x%d)", existing.baseDetail, existing.count)
			return
		}
		collapsed[k] = &candidate{
			row: models.AnomalyRow{
				ID:               fmt.Sprintf("%s-%s-%s-%s", month, date.String(), employee, kind),
				Date:             date,
				EmployeeName:     employee,
				DepartmentPath:   dept,
				DepartmentJoin:   dept.Join(),
				Kind:             kind,
				Detail:           detail,
				AttendanceStatus: status,
				SourceMonth:      month,
			},
			baseDetail: detail,
			count:      1,
		}
	}

	for _, a := range attendance {
		employee := strings.TrimSpace(a.EmployeeName)
		if employee == "" || a.Date.IsZero() {
			warnings = append(warnings, Warning{Reason: "attendance row with blank employee or date skipped"})
			continue
		}

		switch a.Status {
		case models.StatusWork, models.StatusWeekendWork:
			var kinds []string
			for _, t := range travelByTraveller[employee] {
				if t.EventDate.String() == a.Date.String() {
					kinds = append(kinds, string(t.Kind))
				}
			}
			if len(kinds) > 0 {
				detail := fmt.Sprintf("%s attended as %s on %s while booked travel (%s) on the same day", employee, a.Status, a.Date, strings.Join(kinds, ","))
				addOrCollapse(a.Date, employee, a.DepartmentPath, models.AnomalyConflictWorkHasTravel, detail, a.Status)
			}

		case models.StatusTravel:
			found := false
			for _, t := range travelByTraveller[employee] {
				if abs(t.EventDate.DiffDays(a.Date)) <= 3 {
					found = true
					break
				}
			}
			if !found {
				detail := fmt.Sprintf("%s marked TRAVEL on %s but no travel booking within 3 days", employee, a.Date)
				addOrCollapse(a.Date, employee, a.DepartmentPath, models.AnomalyMissingTravelForTripStatus, detail, a.Status)
			}
		}
	}

	out := make([]models.AnomalyRow, 0, len(collapsed))
	for _, c := range collapsed {
		out = append(out, c.row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.String() != out[j].Date.String() {
			return out[i].Date.String() < out[j].Date.String()
		}
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return rulePriority(out[i].Kind) < rulePriority(out[j].Kind)
	})

	return out, warnings
}

func rulePriority(kind models.AnomalyKind) int {
	if kind == models.AnomalyConflictWorkHasTravel {
		return 1
	}
	return 2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
