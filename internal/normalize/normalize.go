// Package normalize turns one uploaded workbook into tabular row sets the
// rest of the pipeline can store and query.
package normalize

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/pkg/errors"
)

// Sheet names the workbook must carry. Missing any of these is a
// SOURCE_INVALID failure; everything else is best-effort.
const (
	SheetAttendance = "状态明细"
	SheetFlight     = "机票"
	SheetHotel      = "酒店"
	SheetTrain      = "火车票"
)

var requiredSheets = []string{SheetAttendance, SheetFlight, SheetHotel, SheetTrain}

var attendanceColumns = []string{colAttendanceDate, colAttendanceName, colAttendanceDepartment, colAttendanceStatus, colAttendanceHours, colAttendanceCheckout}

func travelColumns(dateColumn string) []string {
	return []string{dateColumn, colTravelBooker, colTravelTraveller, colTravelDepartment, colTravelAmount, colTravelProject, colTravelAdvanceDays, colTravelOverStandard, colTravelOverReason}
}

// attendance column headers.
const (
	colAttendanceDate       = "日期"
	colAttendanceName       = "姓名"
	colAttendanceDepartment = "一级部门"
	colAttendanceStatus     = "当日状态判断"
	colAttendanceHours      = "工时"
	colAttendanceCheckout   = "下班打卡时间"
)

// travel (flight/hotel/train share this shape; only the date column name
// differs between flight/train and hotel).
const (
	colTravelDateFlightTrain = "出发日期"
	colTravelDateHotel       = "入住日期"
	colTravelBooker          = "预订人姓名"
	colTravelTraveller       = "差旅人员姓名"
	colTravelDepartment      = "一级部门"
	colTravelAmount          = "授信金额"
	colTravelProject         = "项目"
	colTravelAdvanceDays     = "提前预定天数"
	colTravelOverStandard    = "是否超标"
	colTravelOverReason      = "超标原因"
)

// Warning is a non-fatal defect encountered while normalising a row.
type Warning struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the Normaliser's full output: three row sets, the derived
// months_covered set, and any warnings collected along the way.
type Result struct {
	Attendance    []models.AttendanceRow
	Travel        []models.TravelRow
	MonthsCovered models.MonthSet
	Warnings      []Warning
}

// Normaliser reads one workbook and produces a Result. It never fails on
// row-level defects — only on a workbook that cannot be opened or is
// missing a required sheet.
type Normaliser struct{}

// New builds a Normaliser. It carries no state; a single instance may be
// shared across concurrent ingestions.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise reads path (an .xlsx file already persisted to the upload
// directory by the Ingestor) and returns its normalised contents.
func (n *Normaliser) Normalise(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSourceInvalid.Code, errors.ErrSourceInvalid.Status, fmt.Sprintf("open workbook: %v", err))
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	byNormalizedName := make(map[string]string, len(sheetList))
	for _, name := range sheetList {
		byNormalizedName[normalizeHeader(name)] = name
	}

	resolved := make(map[string]string, len(requiredSheets))
	var missing []string
	for _, required := range requiredSheets {
		if actual, ok := byNormalizedName[normalizeHeader(required)]; ok {
			resolved[required] = actual
		} else {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 && len(sheetList) == len(requiredSheets) {
		// The workbook carries exactly as many sheets as required but one
		// or more titles don't match any documented name; assign the
		// unmatched sheets, in workbook order, to the unmatched required
		// slots, in requiredSheets order.
		usedActual := make(map[string]bool, len(resolved))
		for _, actual := range resolved {
			usedActual[actual] = true
		}
		var free []string
		for _, name := range sheetList {
			if !usedActual[name] {
				free = append(free, name)
			}
		}
		if len(free) == len(missing) {
			for i, required := range missing {
				resolved[required] = free[i]
			}
			missing = nil
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrSourceInvalid.Code, errors.ErrSourceInvalid.Status, fmt.Sprintf("missing required sheet(s): %v", missing))
	}

	res := &Result{MonthsCovered: models.NewMonthSet()}

	attendanceRows, attendanceWarnings, err := n.readAttendance(f, resolved[SheetAttendance])
	if err != nil {
		return nil, err
	}
	res.Attendance = attendanceRows
	res.Warnings = append(res.Warnings, attendanceWarnings...)

	for _, sheet := range []struct {
		canonical  string
		kind       models.TravelKind
		dateColumn string
	}{
		{SheetFlight, models.KindFlight, colTravelDateFlightTrain},
		{SheetHotel, models.KindHotel, colTravelDateHotel},
		{SheetTrain, models.KindTrain, colTravelDateFlightTrain},
	} {
		rows, warnings, err := n.readTravel(f, resolved[sheet.canonical], sheet.canonical, sheet.kind, sheet.dateColumn)
		if err != nil {
			return nil, err
		}
		res.Travel = append(res.Travel, rows...)
		res.Warnings = append(res.Warnings, warnings...)
	}

	for _, row := range res.Attendance {
		res.MonthsCovered.Add(row.SourceMonth)
	}
	for _, row := range res.Travel {
		res.MonthsCovered.Add(row.SourceMonth)
	}

	return res, nil
}

func (n *Normaliser) readAttendance(f *excelize.File, sheetName string) ([]models.AttendanceRow, []Warning, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrSourceInvalid.Code, errors.ErrSourceInvalid.Status, fmt.Sprintf("read sheet %q: %v", sheetName, err))
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	idx := resolveColumns(rows[0], attendanceColumns)
	var out []models.AttendanceRow
	var warnings []Warning

	for rowNum, record := range rows[1:] {
		lineNo := rowNum + 2

		dateRaw := cell(record, colOf(idx, colAttendanceDate))
		day, ok := models.ParseDay(dateRaw)
		if !ok {
			warnings = append(warnings, Warning{Sheet: SheetAttendance, Row: lineNo, Reason: "unparseable date, row dropped"})
			continue
		}

		statusRaw := cell(record, colOf(idx, colAttendanceStatus))
		status := models.ParseAttendanceStatus(statusRaw)
		if status == models.StatusUnknown && trimmed(statusRaw) != "" {
			warnings = append(warnings, Warning{Sheet: SheetAttendance, Row: lineNo, Reason: fmt.Sprintf("unrecognised status %q, mapped to UNKNOWN", statusRaw)})
		}

		deptPath := models.ParseDepartmentPath(cell(record, colOf(idx, colAttendanceDepartment)))

		row := models.AttendanceRow{
			ID:             uuidFor(SheetAttendance, fmt.Sprintf("%d", lineNo), day.String()),
			Date:           day,
			EmployeeName:   nameOrUnknown(cell(record, colOf(idx, colAttendanceName))),
			DepartmentPath: deptPath,
			DepartmentJoin: deptPath.Join(),
			Status:         status,
			WorkHours:      parseFloatOrZero(cell(record, colOf(idx, colAttendanceHours))),
			SourceMonth:    day.YearMonth(),
		}
		if checkout, ok := models.ParseClockTime(cell(record, colOf(idx, colAttendanceCheckout))); ok {
			row.CheckoutTime = &checkout
		}

		out = append(out, row)
	}

	return out, warnings, nil
}

func (n *Normaliser) readTravel(f *excelize.File, sheetName, canonicalName string, kind models.TravelKind, dateColumn string) ([]models.TravelRow, []Warning, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrSourceInvalid.Code, errors.ErrSourceInvalid.Status, fmt.Sprintf("read sheet %q: %v", sheetName, err))
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	idx := resolveColumns(rows[0], travelColumns(dateColumn))
	var out []models.TravelRow
	var warnings []Warning

	for rowNum, record := range rows[1:] {
		lineNo := rowNum + 2

		dateRaw := cell(record, colOf(idx, dateColumn))
		day, ok := models.ParseDay(dateRaw)
		if !ok {
			warnings = append(warnings, Warning{Sheet: canonicalName, Row: lineNo, Reason: "unparseable date, row dropped"})
			continue
		}

		deptPath := models.ParseDepartmentPath(cell(record, colOf(idx, colTravelDepartment)))
		code, name := models.ParseProjectField(cell(record, colOf(idx, colTravelProject)))

		row := models.TravelRow{
			ID:                 uuidFor(canonicalName, fmt.Sprintf("%d", lineNo), day.String()),
			Kind:               kind,
			EventDate:          day,
			BookerName:         nameOrUnknown(cell(record, colOf(idx, colTravelBooker))),
			TravellerName:      nameOrUnknown(cell(record, colOf(idx, colTravelTraveller))),
			DepartmentPath:     deptPath,
			DepartmentJoin:     deptPath.Join(),
			Amount:             models.ParseMoney(cell(record, colOf(idx, colTravelAmount))),
			ProjectCode:        code,
			ProjectName:        name,
			IsOverStandard:     isAffirmative(cell(record, colOf(idx, colTravelOverStandard))),
			OverStandardReason: trimmed(cell(record, colOf(idx, colTravelOverReason))),
			SourceMonth:        day.YearMonth(),
		}
		if advance, ok := models.ParseAdvanceDays(cell(record, colOf(idx, colTravelAdvanceDays))); ok {
			row.AdvanceDays = &advance
		}

		out = append(out, row)
	}

	return out, warnings, nil
}
