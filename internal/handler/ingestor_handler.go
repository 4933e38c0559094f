package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/costmatrix/analytics-engine/internal/dto"
	"github.com/costmatrix/analytics-engine/internal/repository"
	"github.com/costmatrix/analytics-engine/internal/service"
	appErrors "github.com/costmatrix/analytics-engine/pkg/errors"
	"github.com/costmatrix/analytics-engine/pkg/response"
	"github.com/costmatrix/analytics-engine/pkg/storage"
)

// IngestorHandler exposes the upload/progress/months HTTP surface.
type IngestorHandler struct {
	ingestor       *service.IngestorService
	store          *repository.Store
	uploads        *storage.LocalStorage
	cache          *service.CacheService
	maxUploadBytes int64
}

// NewIngestorHandler constructs the handler.
func NewIngestorHandler(ingestor *service.IngestorService, store *repository.Store, uploads *storage.LocalStorage, cache *service.CacheService, maxUploadSizeMB int) *IngestorHandler {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 200
	}
	return &IngestorHandler{ingestor: ingestor, store: store, uploads: uploads, cache: cache, maxUploadBytes: int64(maxUploadSizeMB) * 1024 * 1024}
}

// Upload handles POST /upload: reads the multipart workbook into memory,
// then hands off to the Ingestor and returns a task_id without waiting for
// the file to be saved or normalised.
func (h *IngestorHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field \"file\" is required"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "uploaded file exceeds the configured size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.KindInternal, http.StatusInternalServerError, "open uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.KindInternal, http.StatusInternalServerError, "read uploaded file"))
		return
	}

	taskID, err := h.ingestor.Submit(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, dto.UploadResponse{TaskID: taskID, FileName: fileHeader.Filename})
}

// Progress handles GET /progress/{task_id}.
func (h *IngestorHandler) Progress(c *gin.Context) {
	taskID := c.Param("task_id")
	task, ok := h.ingestor.Progress(taskID)
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	steps := make([]string, 0, len(task.Steps))
	for _, step := range task.Steps {
		steps = append(steps, step.Label)
	}
	response.OK(c, dto.ProgressResponse{
		TaskID:      task.TaskID,
		FileName:    task.FileName,
		Status:      string(task.Status),
		Progress:    task.Progress,
		CurrentStep: task.CurrentStep,
		Steps:       steps,
		Error:       task.Error,
	})
}

// Months handles GET /months.
func (h *IngestorHandler) Months(c *gin.Context) {
	months, err := h.store.ListMonths(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, string(m))
	}
	response.OK(c, dto.MonthsResponse{Months: out})
}

// DeleteMonth handles DELETE /months/{m}: removes the month's rows and,
// for any UploadRecord left covering no months, the underlying blob.
func (h *IngestorHandler) DeleteMonth(c *gin.Context) {
	month, err := parseMonthParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	emptied, err := h.store.DeleteMonth(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Best-effort: CacheService.Invalidate already logs its own failures, and
	// a transient cache error must not turn an otherwise-successful delete
	// into a client-facing error.
	if h.cache != nil {
		_ = h.cache.Invalidate(c.Request.Context(), "aggregate:*")
	}

	removed := 0
	for _, record := range emptied {
		if h.uploads == nil {
			continue
		}
		if err := h.uploads.Delete(record.FilePath); err != nil {
			continue
		}
		removed++
	}

	response.OK(c, dto.DeleteMonthResponse{
		Month:          string(month),
		UploadsRemoved: removed,
		UploadsUpdated: len(emptied) - removed,
	})
}
