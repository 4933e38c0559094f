package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/internal/repository"
)

// AggregatorStore describes the read-only Store surface the Aggregator needs.
type AggregatorStore interface {
	ReadRows(ctx context.Context, months models.MonthSet, kinds []repository.RowKind) ([]models.AttendanceRow, []models.TravelRow, []models.AnomalyRow, error)
}

// AggregatorService computes cross-sheet KPIs over one or more months.
// Summary and ListProjects are served through the Redis-backed read cache;
// Summary, ListProjects and ProjectOrders record their Store read time in
// Prometheus. The other methods read the Store directly on every call.
type AggregatorService struct {
	store   AggregatorStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAggregatorService constructs the Aggregator.
func NewAggregatorService(store AggregatorStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AggregatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregatorService{store: store, cache: cache, metrics: metrics, logger: logger}
}

func makeAggregateCacheKey(method string, months models.MonthSet, parts ...string) string {
	var builder strings.Builder
	builder.WriteString("aggregate:")
	builder.WriteString(method)
	for _, m := range months.Sorted() {
		builder.WriteByte(':')
		builder.WriteString(string(m))
	}
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func (s *AggregatorService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

// Summary returns the whole-selection KPI rollup.
func (s *AggregatorService) Summary(ctx context.Context, months models.MonthSet) (models.Summary, error) {
	cacheKey := makeAggregateCacheKey("summary", months)
	var cached models.Summary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	start := time.Now()
	attendance, travel, anomalies, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowAttendance, repository.KindRowTravel, repository.KindRowAnomaly})
	if err != nil {
		return models.Summary{}, err
	}
	s.observeQuery("aggregate_summary", start)

	out := models.Summary{FlightOverTypeBreakdown: map[string]int{}}
	out.AnomalyCount = len(anomalies)

	distinctProjects := make(map[string]struct{})
	for _, t := range travel {
		out.TotalCost = out.TotalCost.Add(t.Amount)
		out.OrderBreakdown.Add(t.Kind, 1)
		if t.IsOverStandard {
			out.OverStandardCount++
			out.OverStandardBreakdown.Add(t.Kind, 1)
			if t.Kind == models.KindFlight {
				reason := t.OverStandardReason
				if reason == "" {
					reason = "(unspecified)"
				}
				out.FlightOverTypeBreakdown[reason]++
			}
		}
		distinctProjects[t.ProjectCodeOrNan()] = struct{}{}
	}
	out.TotalProjectCount = len(distinctProjects)

	var workSum, workCount, holidaySum, holidayCount float64
	for _, a := range attendance {
		if a.WorkHours <= 0 {
			continue
		}
		switch a.Status {
		case models.StatusWork:
			workSum += a.WorkHours
			workCount++
		case models.StatusWeekendWork:
			holidaySum += a.WorkHours
			holidayCount++
		}
	}
	if workCount > 0 {
		out.AvgWorkHours = workSum / workCount
	}
	if holidayCount > 0 {
		out.HolidayAvgWorkHours = holidaySum / holidayCount
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, out, 0)
	}
	return out, nil
}

// ListProjects implements list_projects.
func (s *AggregatorService) ListProjects(ctx context.Context, months models.MonthSet) ([]models.ProjectSummary, error) {
	cacheKey := makeAggregateCacheKey("projects", months)
	var cached []models.ProjectSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	start := time.Now()
	_, travel, _, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowTravel})
	if err != nil {
		return nil, err
	}
	s.observeQuery("aggregate_projects", start)

	out := buildProjectSummaries(travel)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, out, 0)
	}
	return out, nil
}

// ProjectTopN restricts ListProjects to the top n codes by total_cost.
func (s *AggregatorService) ProjectTopN(ctx context.Context, months models.MonthSet, n int) ([]models.ProjectSummary, error) {
	if n <= 0 {
		n = 20
	}
	all, err := s.ListProjects(ctx, months)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TotalCost.Decimal.GreaterThan(all[j].TotalCost.Decimal) })
	if len(all) <= n {
		return all, nil
	}
	return all[:n], nil
}

// ProjectOrders implements project_orders.
func (s *AggregatorService) ProjectOrders(ctx context.Context, months models.MonthSet, code string) ([]models.ProjectOrder, error) {
	start := time.Now()
	_, travel, _, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowTravel})
	if err != nil {
		return nil, err
	}
	s.observeQuery("aggregate_project_orders", start)

	out := make([]models.ProjectOrder, 0)
	for _, t := range travel {
		if t.ProjectCodeOrNan() != code {
			continue
		}
		out = append(out, models.ProjectOrder{
			ID:                 t.ID,
			ProjectCode:        t.ProjectCode,
			ProjectName:        t.ProjectName,
			TravellerName:      t.TravellerName,
			DepartmentPath:     t.DepartmentPath,
			Kind:               t.Kind,
			Amount:             t.Amount,
			EventDate:          t.EventDate,
			IsOverStandard:     t.IsOverStandard,
			OverStandardReason: t.OverStandardReason,
			AdvanceDays:        t.AdvanceDays,
		})
	}
	return out, nil
}

// DepartmentHierarchy implements department_hierarchy.
func (s *AggregatorService) DepartmentHierarchy(ctx context.Context, months models.MonthSet) (models.DepartmentHierarchy, error) {
	_, travel, _, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowTravel})
	if err != nil {
		return models.DepartmentHierarchy{}, err
	}
	attendance, _, _, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowAttendance})
	if err != nil {
		return models.DepartmentHierarchy{}, err
	}

	l1Set := map[string]struct{}{}
	l2Set := map[string]map[string]struct{}{}
	l3Set := map[string]map[string]struct{}{}

	visit := func(p models.DepartmentPath) {
		l1 := p.Level1()
		l1Set[l1] = struct{}{}
		if l2 := p.Level2(); l2 != "" {
			if l2Set[l1] == nil {
				l2Set[l1] = map[string]struct{}{}
			}
			l2Set[l1][l2] = struct{}{}
		}
		if l3 := p.Level3(); l3 != "" && len(p) >= 2 {
			l2key := strings.Join(p[:2], "/")
			if l3Set[l2key] == nil {
				l3Set[l2key] = map[string]struct{}{}
			}
			l3Set[l2key][l3] = struct{}{}
		}
	}
	for _, a := range attendance {
		visit(a.DepartmentPath)
	}
	for _, t := range travel {
		visit(t.DepartmentPath)
	}

	out := models.DepartmentHierarchy{Level2: map[string][]string{}, Level3: map[string][]string{}}
	for l1 := range l1Set {
		out.Level1 = append(out.Level1, l1)
	}
	sort.Strings(out.Level1)
	for l1, children := range l2Set {
		out.Level2[l1] = sortedKeys(children)
	}
	for l2, children := range l3Set {
		out.Level3[l2] = sortedKeys(children)
	}
	return out, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DepartmentList implements department_list, including the supplemented
// saturation metric.
func (s *AggregatorService) DepartmentList(ctx context.Context, months models.MonthSet, level int, parent string) ([]models.DepartmentSummary, error) {
	attendance, travel, _, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowAttendance, repository.KindRowTravel})
	if err != nil {
		return nil, err
	}

	type acc struct {
		persons        map[string]struct{}
		totalCost      models.Money
		workSum        float64
		workCount      float64
		holidaySum     float64
		holidayCount   float64
		totalWorkHours float64
	}
	byName := map[string]*acc{}
	get := func(name string) *acc {
		if byName[name] == nil {
			byName[name] = &acc{persons: map[string]struct{}{}, totalCost: models.Zero}
		}
		return byName[name]
	}

	for _, a := range attendance {
		if !matchesLevel(a.DepartmentPath, level, parent) {
			continue
		}
		name := a.DepartmentPath.AtLevel(level)
		entry := get(name)
		entry.persons[a.EmployeeName] = struct{}{}
		entry.totalWorkHours += a.WorkHours
		if a.WorkHours > 0 {
			switch a.Status {
			case models.StatusWork:
				entry.workSum += a.WorkHours
				entry.workCount++
			case models.StatusWeekendWork:
				entry.holidaySum += a.WorkHours
				entry.holidayCount++
			}
		}
	}
	for _, t := range travel {
		if !matchesLevel(t.DepartmentPath, level, parent) {
			continue
		}
		name := t.DepartmentPath.AtLevel(level)
		entry := get(name)
		entry.totalCost = entry.totalCost.Add(t.Amount)
	}

	out := make([]models.DepartmentSummary, 0, len(byName))
	for name, entry := range byName {
		summary := models.DepartmentSummary{
			Name:        name,
			Level:       level,
			Parent:      parent,
			PersonCount: len(entry.persons),
			TotalCost:   entry.totalCost,
		}
		if entry.workCount > 0 {
			summary.AvgWorkHours = entry.workSum / entry.workCount
		}
		if entry.holidayCount > 0 {
			summary.HolidayAvgWorkHours = entry.holidaySum / entry.holidayCount
		}
		if summary.PersonCount > 0 {
			summary.Saturation = entry.totalWorkHours / (float64(summary.PersonCount) * models.StandardMonthlyHours) * 100
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matchesLevel(path models.DepartmentPath, level int, parent string) bool {
	key := path.AtLevel(level)
	if key == "" {
		return false
	}
	if parent == "" {
		return true
	}
	return path.HasPrefix(models.ParseDepartmentPath(parent))
}

// DepartmentDetails implements the one-department dossier, including the
// department_saturation metric.
func (s *AggregatorService) DepartmentDetails(ctx context.Context, months models.MonthSet, name string, level int) (models.DepartmentDetails, error) {
	attendance, _, anomalies, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowAttendance, repository.KindRowAnomaly})
	if err != nil {
		return models.DepartmentDetails{}, err
	}

	details := models.DepartmentDetails{Name: name, Level: level, StatusCounts: map[models.AttendanceStatus]int{}}
	persons := map[string]struct{}{}
	travelDays := map[string]int{}
	anomalyDaysByPerson := map[string]int{}
	checkoutByPerson := map[string]models.ClockTime{}
	workHoursSumByPerson := map[string]float64{}
	workDaysByPerson := map[string]int{}

	var totalWorkHours float64

	for _, a := range attendance {
		if a.DepartmentPath.AtLevel(level) != name {
			continue
		}
		persons[a.EmployeeName] = struct{}{}
		details.StatusCounts[a.Status]++
		totalWorkHours += a.WorkHours

		switch a.Status {
		case models.StatusWeekendWork:
			details.WeekendWorkDays++
		case models.StatusWork:
			details.WorkdayAttendanceDays++
			workHoursSumByPerson[a.EmployeeName] += a.WorkHours
			workDaysByPerson[a.EmployeeName]++
		case models.StatusTravel:
			details.TravelDays++
			travelDays[a.EmployeeName]++
		case models.StatusLeave:
			details.LeaveDays++
		}

		// WeekendAttendanceCount is distinct from WeekendWorkDays: it counts
		// WORK/TRAVEL rows that happen to fall on a Saturday or Sunday,
		// independent of the WEEKEND_WORK status.
		if weekday := a.Date.Weekday(); weekday == time.Saturday || weekday == time.Sunday {
			if a.Status == models.StatusWork || a.Status == models.StatusTravel {
				details.WeekendAttendanceCount++
			}
		}

		if a.CheckoutTime != nil {
			if a.CheckoutTime.After(models.LateCheckoutThreshold) {
				details.LateAfter1930Count++
			}
			if existing, ok := checkoutByPerson[a.EmployeeName]; !ok || a.CheckoutTime.After(existing) {
				checkoutByPerson[a.EmployeeName] = *a.CheckoutTime
			}
		}
	}

	for _, an := range anomalies {
		if an.DepartmentPath.AtLevel(level) != name {
			continue
		}
		details.AnomalyDays++
		anomalyDaysByPerson[an.EmployeeName]++
	}

	details.TravelRanking = topRanked(travelDays, 10)
	details.AnomalyRanking = topRanked(anomalyDaysByPerson, 10)

	checkoutMinutes := map[string]int{}
	for name, ct := range checkoutByPerson {
		checkoutMinutes[name] = ct.Minutes()
	}
	details.LatestCheckoutRanking = topRanked(checkoutMinutes, 10)

	avgHours := map[string]float64{}
	for name, sum := range workHoursSumByPerson {
		if days := workDaysByPerson[name]; days > 0 {
			avgHours[name] = sum / float64(days)
		}
	}
	details.LongestHoursRanking = topRankedFloat(avgHours, 10)

	if personCount := len(persons); personCount > 0 {
		details.DepartmentSaturation = totalWorkHours / (float64(personCount) * models.StandardMonthlyHours) * 100
	}

	return details, nil
}

func topRanked(values map[string]int, limit int) []models.RankedPerson {
	out := make([]models.RankedPerson, 0, len(values))
	for name, v := range values {
		out = append(out, models.RankedPerson{EmployeeName: name, Value: float64(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topRankedFloat(values map[string]float64, limit int) []models.RankedPerson {
	out := make([]models.RankedPerson, 0, len(values))
	for name, v := range values {
		out = append(out, models.RankedPerson{EmployeeName: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].EmployeeName < out[j].EmployeeName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Level1Statistics and Level2Statistics aggregate a parent department plus
// a nested per-child table.
func (s *AggregatorService) Level1Statistics(ctx context.Context, months models.MonthSet, l1Name string) (models.ParentStatistics, error) {
	return s.parentStatistics(ctx, months, l1Name, 1, 2)
}

func (s *AggregatorService) Level2Statistics(ctx context.Context, months models.MonthSet, l2Name string) (models.ParentStatistics, error) {
	return s.parentStatistics(ctx, months, l2Name, 2, 3)
}

func (s *AggregatorService) parentStatistics(ctx context.Context, months models.MonthSet, name string, level, childLevel int) (models.ParentStatistics, error) {
	parentSummaries, err := s.DepartmentList(ctx, months, level, "")
	if err != nil {
		return models.ParentStatistics{}, err
	}
	var parentSummary models.DepartmentSummary
	for _, p := range parentSummaries {
		if p.Name == name {
			parentSummary = p
			break
		}
	}

	childSummaries, err := s.DepartmentList(ctx, months, childLevel, name)
	if err != nil {
		return models.ParentStatistics{}, err
	}
	children := make([]models.ChildStatistics, 0, len(childSummaries))
	for _, c := range childSummaries {
		children = append(children, models.ChildStatistics{Name: c.Name, Summary: c})
	}

	return models.ParentStatistics{Name: name, Level: level, Summary: parentSummary, Children: children}, nil
}

// ListAnomalies implements list_anomalies. No pagination here;
// the Gateway handler MAY paginate.
func (s *AggregatorService) ListAnomalies(ctx context.Context, months models.MonthSet) ([]models.AnomalyListItem, error) {
	_, _, anomalies, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowAnomaly})
	if err != nil {
		return nil, err
	}
	out := make([]models.AnomalyListItem, 0, len(anomalies))
	for _, a := range anomalies {
		out = append(out, models.AnomalyListItem{
			Date:             a.Date,
			EmployeeName:     a.EmployeeName,
			DepartmentPath:   a.DepartmentPath,
			Kind:             a.Kind,
			AttendanceStatus: a.AttendanceStatus,
			Detail:           a.Detail,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.String() < out[j].Date.String() })
	return out, nil
}

// BookingBehavior implements the booking-behaviour metrics.
func (s *AggregatorService) BookingBehavior(ctx context.Context, months models.MonthSet) (models.BookingBehavior, error) {
	_, travel, _, err := s.store.ReadRows(ctx, months, []repository.RowKind{repository.KindRowTravel})
	if err != nil {
		return models.BookingBehavior{}, err
	}

	out := models.BookingBehavior{TotalOrders: len(travel)}
	var advanceSum float64
	var advanceCount int
	for _, t := range travel {
		if t.AdvanceDays == nil {
			continue
		}
		advanceSum += float64(*t.AdvanceDays)
		advanceCount++
		if *t.AdvanceDays <= models.UrgentAdvanceDaysThreshold {
			out.UrgentOrders++
		}
	}
	if out.TotalOrders > 0 {
		out.UrgentRatio = float64(out.UrgentOrders) / float64(out.TotalOrders) * 100
	}
	if advanceCount > 0 {
		out.AvgAdvanceDays = advanceSum / float64(advanceCount)
	}
	return out, nil
}

func buildProjectSummaries(travel []models.TravelRow) []models.ProjectSummary {
	type acc struct {
		names       map[string]int
		firstSeen   map[string]int
		order       int
		totalCost   models.Money
		flightCost  models.Money
		hotelCost   models.Money
		trainCost   models.Money
		recordCount int
		flightCount int
		hotelCount  int
		trainCount  int
		persons     map[string]struct{}
		departments map[string]struct{}
		minDate     models.Day
		maxDate     models.Day
		hasDate     bool
		overCount   int
	}
	byCode := map[string]*acc{}
	orderCounter := 0

	for _, t := range travel {
		code := t.ProjectCodeOrNan()
		entry, ok := byCode[code]
		if !ok {
			entry = &acc{
				names:       map[string]int{},
				firstSeen:   map[string]int{},
				totalCost:   models.Zero,
				flightCost:  models.Zero,
				hotelCost:   models.Zero,
				trainCost:   models.Zero,
				persons:     map[string]struct{}{},
				departments: map[string]struct{}{},
			}
			byCode[code] = entry
		}

		if t.ProjectName != nil && *t.ProjectName != "" {
			entry.names[*t.ProjectName]++
			if _, seen := entry.firstSeen[*t.ProjectName]; !seen {
				entry.firstSeen[*t.ProjectName] = orderCounter
				orderCounter++
			}
		}

		entry.totalCost = entry.totalCost.Add(t.Amount)
		entry.recordCount++
		switch t.Kind {
		case models.KindFlight:
			entry.flightCost = entry.flightCost.Add(t.Amount)
			entry.flightCount++
		case models.KindHotel:
			entry.hotelCost = entry.hotelCost.Add(t.Amount)
			entry.hotelCount++
		case models.KindTrain:
			entry.trainCost = entry.trainCost.Add(t.Amount)
			entry.trainCount++
		}
		entry.persons[t.TravellerName] = struct{}{}
		entry.departments[t.DepartmentPath.Join()] = struct{}{}
		if t.IsOverStandard {
			entry.overCount++
		}
		if !entry.hasDate {
			entry.minDate, entry.maxDate, entry.hasDate = t.EventDate, t.EventDate, true
		} else {
			if t.EventDate.DiffDays(entry.minDate) < 0 {
				entry.minDate = t.EventDate
			}
			if t.EventDate.DiffDays(entry.maxDate) > 0 {
				entry.maxDate = t.EventDate
			}
		}
	}

	out := make([]models.ProjectSummary, 0, len(byCode))
	for code, entry := range byCode {
		name := bestName(entry.names, entry.firstSeen)
		personList := sortedKeys(entry.persons)
		deptList := sortedKeys(entry.departments)
		out = append(out, models.ProjectSummary{
			Code:              code,
			Name:              name,
			TotalCost:         entry.totalCost,
			FlightCost:        entry.flightCost,
			HotelCost:         entry.hotelCost,
			TrainCost:         entry.trainCost,
			RecordCount:       entry.recordCount,
			FlightCount:       entry.flightCount,
			HotelCount:        entry.hotelCount,
			TrainCount:        entry.trainCount,
			PersonCount:       len(entry.persons),
			PersonList:        personList,
			DepartmentList:    deptList,
			DateRange:         models.DateRange{Start: entry.minDate, End: entry.maxDate},
			OverStandardCount: entry.overCount,
		})
	}
	return out
}

func bestName(counts map[string]int, firstSeen map[string]int) string {
	best := ""
	bestCount := -1
	bestOrder := math.MaxInt32
	for name, count := range counts {
		order := firstSeen[name]
		if count > bestCount || (count == bestCount && order < bestOrder) {
			best, bestCount, bestOrder = name, count, order
		}
	}
	return best
}
