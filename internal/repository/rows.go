package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/costmatrix/analytics-engine/internal/models"
	apperrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

type attendanceRowDB struct {
	ID             string  `db:"id"`
	Date           string  `db:"date"`
	EmployeeName   string  `db:"employee_name"`
	DepartmentPath string  `db:"department_path"`
	DeptL1         string  `db:"dept_l1"`
	DeptL2         string  `db:"dept_l2"`
	DeptL3         string  `db:"dept_l3"`
	Status         string  `db:"status"`
	WorkHours      float64 `db:"work_hours"`
	CheckoutTime   *string `db:"checkout_time"`
	SourceMonth    string  `db:"source_month"`
}

func toAttendanceDB(row models.AttendanceRow) attendanceRowDB {
	var checkout *string
	if row.CheckoutTime != nil {
		s := row.CheckoutTime.String()
		checkout = &s
	}
	return attendanceRowDB{
		ID:             row.ID,
		Date:           row.Date.String(),
		EmployeeName:   row.EmployeeName,
		DepartmentPath: row.DepartmentPath.Join(),
		DeptL1:         row.DepartmentPath.Level1(),
		DeptL2:         row.DepartmentPath.Level2(),
		DeptL3:         row.DepartmentPath.Level3(),
		Status:         string(row.Status),
		WorkHours:      row.WorkHours,
		CheckoutTime:   checkout,
		SourceMonth:    string(row.SourceMonth),
	}
}

func fromAttendanceDB(r attendanceRowDB) models.AttendanceRow {
	day, _ := models.ParseDay(r.Date)
	row := models.AttendanceRow{
		ID:             r.ID,
		Date:           day,
		EmployeeName:   r.EmployeeName,
		DepartmentPath: models.SplitDepartmentPath(r.DepartmentPath),
		DepartmentJoin: r.DepartmentPath,
		Status:         models.AttendanceStatus(r.Status),
		WorkHours:      r.WorkHours,
		SourceMonth:    models.YearMonth(r.SourceMonth),
	}
	if r.CheckoutTime != nil {
		if ct, ok := models.ParseClockTime(*r.CheckoutTime); ok {
			row.CheckoutTime = &ct
		}
	}
	return row
}

func insertAttendanceRow(ctx context.Context, tx *sqlx.Tx, row models.AttendanceRow) error {
	query := tx.Rebind(`INSERT INTO attendance_rows
		(id, date, employee_name, department_path, dept_l1, dept_l2, dept_l3, status, work_hours, checkout_time, source_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	db := toAttendanceDB(row)
	if _, err := tx.ExecContext(ctx, query, db.ID, db.Date, db.EmployeeName, db.DepartmentPath, db.DeptL1, db.DeptL2, db.DeptL3, db.Status, db.WorkHours, db.CheckoutTime, db.SourceMonth); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "insert attendance row")
	}
	return nil
}

func selectAttendance(ctx context.Context, db *sqlx.DB, months models.MonthSet) ([]models.AttendanceRow, error) {
	placeholders, args := monthPlaceholders(months)
	query := db.Rebind(`SELECT id, date, employee_name, department_path, dept_l1, dept_l2, dept_l3, status, work_hours, checkout_time, source_month
		FROM attendance_rows WHERE source_month IN (` + placeholders + `)
		ORDER BY source_month, date, id`)
	var rows []attendanceRowDB
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "select attendance rows")
	}
	out := make([]models.AttendanceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromAttendanceDB(r))
	}
	return out, nil
}

type travelRowDB struct {
	ID                 string  `db:"id"`
	Kind               string  `db:"kind"`
	EventDate          string  `db:"event_date"`
	BookerName         string  `db:"booker_name"`
	TravellerName      string  `db:"traveller_name"`
	DepartmentPath     string  `db:"department_path"`
	DeptL1             string  `db:"dept_l1"`
	DeptL2             string  `db:"dept_l2"`
	DeptL3             string  `db:"dept_l3"`
	Amount             string  `db:"amount"`
	ProjectCode        *string `db:"project_code"`
	ProjectName        *string `db:"project_name"`
	AdvanceDays        *int    `db:"advance_days"`
	IsOverStandard     bool    `db:"is_over_standard"`
	OverStandardReason string  `db:"over_standard_reason"`
	SourceMonth        string  `db:"source_month"`
}

func toTravelDB(row models.TravelRow) travelRowDB {
	return travelRowDB{
		ID:                 row.ID,
		Kind:               string(row.Kind),
		EventDate:          row.EventDate.String(),
		BookerName:         row.BookerName,
		TravellerName:      row.TravellerName,
		DepartmentPath:     row.DepartmentPath.Join(),
		DeptL1:             row.DepartmentPath.Level1(),
		DeptL2:             row.DepartmentPath.Level2(),
		DeptL3:             row.DepartmentPath.Level3(),
		Amount:             row.Amount.Decimal.String(),
		ProjectCode:        row.ProjectCode,
		ProjectName:        row.ProjectName,
		AdvanceDays:        row.AdvanceDays,
		IsOverStandard:     row.IsOverStandard,
		OverStandardReason: row.OverStandardReason,
		SourceMonth:        string(row.SourceMonth),
	}
}

func fromTravelDB(r travelRowDB) models.TravelRow {
	day, _ := models.ParseDay(r.EventDate)
	return models.TravelRow{
		ID:                 r.ID,
		Kind:               models.TravelKind(r.Kind),
		EventDate:          day,
		BookerName:         r.BookerName,
		TravellerName:      r.TravellerName,
		DepartmentPath:     models.SplitDepartmentPath(r.DepartmentPath),
		DepartmentJoin:     r.DepartmentPath,
		Amount:             models.ParseMoney(r.Amount),
		ProjectCode:        r.ProjectCode,
		ProjectName:        r.ProjectName,
		AdvanceDays:        r.AdvanceDays,
		IsOverStandard:     r.IsOverStandard,
		OverStandardReason: r.OverStandardReason,
		SourceMonth:        models.YearMonth(r.SourceMonth),
	}
}

func insertTravelRow(ctx context.Context, tx *sqlx.Tx, row models.TravelRow) error {
	query := tx.Rebind(`INSERT INTO travel_rows
		(id, kind, event_date, booker_name, traveller_name, department_path, dept_l1, dept_l2, dept_l3, amount, project_code, project_name, advance_days, is_over_standard, over_standard_reason, source_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	db := toTravelDB(row)
	if _, err := tx.ExecContext(ctx, query, db.ID, db.Kind, db.EventDate, db.BookerName, db.TravellerName, db.DepartmentPath, db.DeptL1, db.DeptL2, db.DeptL3, db.Amount, db.ProjectCode, db.ProjectName, db.AdvanceDays, db.IsOverStandard, db.OverStandardReason, db.SourceMonth); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "insert travel row")
	}
	return nil
}

func selectTravel(ctx context.Context, db *sqlx.DB, months models.MonthSet) ([]models.TravelRow, error) {
	placeholders, args := monthPlaceholders(months)
	query := db.Rebind(`SELECT id, kind, event_date, booker_name, traveller_name, department_path, dept_l1, dept_l2, dept_l3, amount, project_code, project_name, advance_days, is_over_standard, over_standard_reason, source_month
		FROM travel_rows WHERE source_month IN (` + placeholders + `)
		ORDER BY source_month, event_date, id`)
	var rows []travelRowDB
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "select travel rows")
	}
	out := make([]models.TravelRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromTravelDB(r))
	}
	return out, nil
}

type anomalyRowDB struct {
	ID               string `db:"id"`
	Date             string `db:"date"`
	EmployeeName     string `db:"employee_name"`
	DepartmentPath   string `db:"department_path"`
	Kind             string `db:"kind"`
	Detail           string `db:"detail"`
	AttendanceStatus string `db:"attendance_status"`
	SourceMonth      string `db:"source_month"`
}

func toAnomalyDB(row models.AnomalyRow) anomalyRowDB {
	return anomalyRowDB{
		ID:               row.ID,
		Date:             row.Date.String(),
		EmployeeName:     row.EmployeeName,
		DepartmentPath:   row.DepartmentPath.Join(),
		Kind:             string(row.Kind),
		Detail:           row.Detail,
		AttendanceStatus: string(row.AttendanceStatus),
		SourceMonth:      string(row.SourceMonth),
	}
}

func fromAnomalyDB(r anomalyRowDB) models.AnomalyRow {
	day, _ := models.ParseDay(r.Date)
	return models.AnomalyRow{
		ID:               r.ID,
		Date:             day,
		EmployeeName:     r.EmployeeName,
		DepartmentPath:   models.SplitDepartmentPath(r.DepartmentPath),
		DepartmentJoin:   r.DepartmentPath,
		Kind:             models.AnomalyKind(r.Kind),
		Detail:           r.Detail,
		AttendanceStatus: models.AttendanceStatus(r.AttendanceStatus),
		SourceMonth:      models.YearMonth(r.SourceMonth),
	}
}

func insertAnomalyRow(ctx context.Context, tx *sqlx.Tx, row models.AnomalyRow) error {
	query := tx.Rebind(`INSERT INTO anomaly_rows
		(id, date, employee_name, department_path, kind, detail, attendance_status, source_month)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	db := toAnomalyDB(row)
	if _, err := tx.ExecContext(ctx, query, db.ID, db.Date, db.EmployeeName, db.DepartmentPath, db.Kind, db.Detail, db.AttendanceStatus, db.SourceMonth); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "insert anomaly row")
	}
	return nil
}

func selectAnomalies(ctx context.Context, db *sqlx.DB, months models.MonthSet) ([]models.AnomalyRow, error) {
	placeholders, args := monthPlaceholders(months)
	query := db.Rebind(`SELECT id, date, employee_name, department_path, kind, detail, attendance_status, source_month
		FROM anomaly_rows WHERE source_month IN (` + placeholders + `)
		ORDER BY source_month, date, id`)
	var rows []anomalyRowDB
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "select anomaly rows")
	}
	out := make([]models.AnomalyRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromAnomalyDB(r))
	}
	return out, nil
}

func monthPlaceholders(months models.MonthSet) (string, []interface{}) {
	sorted := months.Sorted()
	args := make([]interface{}, len(sorted))
	placeholders := make([]string, len(sorted))
	for i, m := range sorted {
		args[i] = string(m)
		placeholders[i] = "?"
	}
	return strings.Join(placeholders, ","), args
}
