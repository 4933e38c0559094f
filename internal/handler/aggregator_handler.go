package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/costmatrix/analytics-engine/internal/dto"
	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/internal/repository"
	"github.com/costmatrix/analytics-engine/internal/service"
	appErrors "github.com/costmatrix/analytics-engine/pkg/errors"
	"github.com/costmatrix/analytics-engine/pkg/response"
)

// AggregatorHandler exposes the analyze/projects/departments/anomalies
// HTTP surface.
type AggregatorHandler struct {
	aggregator *service.AggregatorService
	export     *service.ExportService
	store      *repository.Store
}

// NewAggregatorHandler constructs the handler.
func NewAggregatorHandler(aggregator *service.AggregatorService, export *service.ExportService, store *repository.Store) *AggregatorHandler {
	return &AggregatorHandler{aggregator: aggregator, export: export, store: store}
}

// Analyze handles POST /analyze: Aggregator.summary plus a dashboard bundle.
func (h *AggregatorHandler) Analyze(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.aggregator.Summary(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	booking, err := h.aggregator.BookingBehavior(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	hierarchy, err := h.aggregator.DepartmentHierarchy(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AnalyzeResponse{
		Months:          monthStrings(months),
		Summary:         summary,
		BookingBehavior: booking,
		Hierarchy:       hierarchy,
	})
}

// BookingBehavior handles GET /booking-behavior.
func (h *AggregatorHandler) BookingBehavior(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.aggregator.BookingBehavior(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Projects handles GET /projects. A `top_n` query parameter switches to
// project_top_n.
func (h *AggregatorHandler) Projects(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}

	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid top_n parameter"))
			return
		}
		result, err := h.aggregator.ProjectTopN(c.Request.Context(), months, n)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, result)
		return
	}

	result, err := h.aggregator.ListProjects(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ProjectOrders handles GET /projects/{code}/orders.
func (h *AggregatorHandler) ProjectOrders(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	code := c.Param("code")
	result, err := h.aggregator.ProjectOrders(c.Request.Context(), months, code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// DepartmentHierarchy handles GET /departments/hierarchy.
func (h *AggregatorHandler) DepartmentHierarchy(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.aggregator.DepartmentHierarchy(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// DepartmentList handles GET /departments/list.
func (h *AggregatorHandler) DepartmentList(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	level, err := parseLevel(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.aggregator.DepartmentList(c.Request.Context(), months, level, c.Query("parent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// DepartmentDetails handles GET /departments/details.
func (h *AggregatorHandler) DepartmentDetails(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	level, err := parseLevel(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	name := c.Query("name")
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "name query parameter is required"))
		return
	}
	result, err := h.aggregator.DepartmentDetails(c.Request.Context(), months, name, level)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Level1Statistics handles GET /departments/level1/statistics.
func (h *AggregatorHandler) Level1Statistics(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	name := c.Query("name")
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "name query parameter is required"))
		return
	}
	result, err := h.aggregator.Level1Statistics(c.Request.Context(), months, name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Level2Statistics handles GET /departments/level2/statistics.
func (h *AggregatorHandler) Level2Statistics(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	name := c.Query("name")
	if name == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "name query parameter is required"))
		return
	}
	result, err := h.aggregator.Level2Statistics(c.Request.Context(), months, name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Anomalies handles GET /anomalies, with an optional `format=csv|pdf` export.
func (h *AggregatorHandler) Anomalies(c *gin.Context) {
	months, err := resolveMonths(c, h.store)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.aggregator.ListAnomalies(c.Request.Context(), months)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.Query("format") {
	case "csv":
		data, err := h.export.AnomaliesCSV(result)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.KindInternal, http.StatusInternalServerError, "render anomalies csv"))
			return
		}
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.export.AnomaliesPDF(result)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.KindInternal, http.StatusInternalServerError, "render anomalies pdf"))
			return
		}
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.OK(c, result)
	}
}

func parseLevel(c *gin.Context) (int, error) {
	raw := c.Query("level")
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "level query parameter is required")
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 || level > 3 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "level must be 1, 2, or 3")
	}
	return level, nil
}

func monthStrings(months models.MonthSet) []string {
	sorted := months.Sorted()
	out := make([]string, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, string(m))
	}
	return out
}
