package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/internal/repository"
	appErrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

// monthsQuery binds the months/year/quarter query parameters so
// paramValidator can enforce their ranges before resolveMonths interprets
// the combination.
type monthsQuery struct {
	Months  string `form:"months"`
	Year    int    `form:"year" validate:"omitempty,gte=2000,lte=2100"`
	Quarter int    `form:"quarter" validate:"omitempty,gte=1,lte=4"`
}

// resolveMonths implements the "months/quarter/year" query-parameter
// contract: an explicit comma-separated `months` list wins; otherwise
// `quarter`+`year` expands to that quarter's three months; `year` alone
// expands to every month in the Store that falls in that year.
func resolveMonths(c *gin.Context, store *repository.Store) (models.MonthSet, error) {
	var q monthsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid months/year/quarter query parameters")
	}
	if err := validateStruct(q); err != nil {
		return nil, err
	}

	if q.Months != "" {
		set, err := parseMonthsParam(q.Months)
		if err != nil {
			return nil, err
		}
		return set, nil
	}

	if c.Query("year") != "" {
		if c.Query("quarter") != "" {
			months := models.QuarterMonths(q.Year, q.Quarter)
			if months == nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, "quarter must be 1-4")
			}
			return models.NewMonthSet(months...), nil
		}

		existing, err := store.ListMonths(c.Request.Context())
		if err != nil {
			return nil, err
		}
		set := models.MonthSet{}
		for _, m := range existing {
			if m.Year() == q.Year {
				set.Add(m)
			}
		}
		return set, nil
	}

	return nil, appErrors.Clone(appErrors.ErrValidation, "one of months, or year (optionally with quarter), is required")
}

func parseMonthsParam(raw string) (models.MonthSet, error) {
	set := models.MonthSet{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		m, err := models.ParseYearMonth(token)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month in months parameter: "+token)
		}
		set.Add(m)
	}
	if len(set) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "months parameter must not be empty")
	}
	return set, nil
}

// parseMonthParam reads the ":m" path parameter used by DELETE /months/{m}.
func parseMonthParam(c *gin.Context) (models.YearMonth, error) {
	m, err := models.ParseYearMonth(c.Param("m"))
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid month path parameter")
	}
	return m, nil
}
