package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/internal/normalize"
	"github.com/costmatrix/analytics-engine/internal/validate"
	apperrors "github.com/costmatrix/analytics-engine/pkg/errors"
	"github.com/costmatrix/analytics-engine/pkg/jobs"
	"github.com/costmatrix/analytics-engine/pkg/storage"
)

// IngestorStore describes the Store operations the Ingestor drives.
type IngestorStore interface {
	ReplaceMonth(ctx context.Context, month models.YearMonth, attendance []models.AttendanceRow, travel []models.TravelRow, anomalies []models.AnomalyRow) error
	UploadUpsert(ctx context.Context, record models.UploadRecord) error
	ProgressCreate(task models.ProgressTask)
	ProgressUpdate(taskID string, mutate func(*models.ProgressTask))
	ProgressGet(taskID string) (models.ProgressTask, bool)
}

// ingestionPayload is what the jobs.Queue hands to the Ingestor's handler.
type ingestionPayload struct {
	taskID   string
	fileName string
	data     []byte
}

// IngestorService drives one uploaded workbook through normalise -> validate
// -> replace_month, dispatched on the in-process worker pool so /upload can
// return a task_id immediately.
type IngestorService struct {
	store      IngestorStore
	storage    *storage.LocalStorage
	normaliser *normalize.Normaliser
	validator  *validate.Validator
	queue      *jobs.Queue
	cache      *CacheService
	logger     *zap.Logger
}

// NewIngestorService builds the Ingestor and its backing worker queue.
func NewIngestorService(store IngestorStore, fileStorage *storage.LocalStorage, cache *CacheService, logger *zap.Logger, cfg jobs.QueueConfig) *IngestorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &IngestorService{
		store:      store,
		storage:    fileStorage,
		normaliser: normalize.New(),
		validator:  validate.New(),
		cache:      cache,
		logger:     logger,
	}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("ingestion", svc.handle, cfg)
	return svc
}

// Start begins the underlying worker pool.
func (s *IngestorService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains and stops the underlying worker pool.
func (s *IngestorService) Stop() { s.queue.Stop() }

// Submit accepts a workbook payload, creates its ProgressTask, and enqueues
// the whole pipeline (saving the file, normalising, validating, storing)
// for async processing. It returns the task_id immediately.
func (s *IngestorService) Submit(ctx context.Context, fileName string, data []byte) (string, error) {
	taskID := uuid.NewString()
	now := time.Now().UTC()
	s.store.ProgressCreate(models.ProgressTask{
		TaskID:      taskID,
		FileName:    fileName,
		Status:      models.ProgressUploading,
		Progress:    0,
		CurrentStep: "uploading",
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	if err := s.queue.Enqueue(jobs.Job{
		ID:      taskID,
		Type:    "ingest_workbook",
		Payload: ingestionPayload{taskID: taskID, fileName: fileName, data: data},
	}); err != nil {
		s.store.ProgressUpdate(taskID, func(t *models.ProgressTask) { t.Fail(time.Now().UTC(), err.Error()) })
		return "", apperrors.Wrap(err, apperrors.KindInternal, 500, "enqueue ingestion job")
	}

	return taskID, nil
}

// Progress reads a ProgressTask by id.
func (s *IngestorService) Progress(taskID string) (models.ProgressTask, bool) {
	return s.store.ProgressGet(taskID)
}

func (s *IngestorService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ingestionPayload)
	if !ok {
		return fmt.Errorf("ingestion job carries unexpected payload type %T", job.Payload)
	}

	advance := func(label string, pct int) {
		s.store.ProgressUpdate(payload.taskID, func(t *models.ProgressTask) { t.Advance(time.Now().UTC(), label, pct) })
	}
	fail := func(err error) error {
		s.store.ProgressUpdate(payload.taskID, func(t *models.ProgressTask) { t.Fail(time.Now().UTC(), err.Error()) })
		// A malformed workbook fails normalisation identically on every
		// attempt; requeuing it would only re-save the blob under a fresh
		// name and re-run the same doomed pass.
		if appErr := apperrors.FromError(err); appErr.Code == apperrors.KindSourceInvalid {
			return jobs.Permanent(err)
		}
		return err
	}

	s.store.ProgressUpdate(payload.taskID, func(t *models.ProgressTask) { t.Start(time.Now().UTC()) })

	advance("persisting workbook", 10)
	storedName := uniqueUploadName(payload.fileName, time.Now().UTC())
	path, err := s.storage.Save(storedName, payload.data)
	if err != nil {
		return fail(fmt.Errorf("persist workbook: %w", err))
	}
	fullPath := s.storage.Path(path)

	advance("normalising workbook", 30)
	result, err := s.normaliser.Normalise(fullPath)
	if err != nil {
		return fail(err)
	}
	if len(result.Warnings) > 0 {
		s.logger.Warn("normaliser warnings", zap.String("task_id", payload.taskID), zap.Int("count", len(result.Warnings)))
	}

	months := result.MonthsCovered.Sorted()
	advance("validating and storing months", 60)
	total := len(months)
	for i, month := range months {
		monthAttendance := filterAttendance(result.Attendance, month)
		monthTravel := filterTravel(result.Travel, month)

		anomalies, warnings := s.validator.Validate(month, monthAttendance, monthTravel)
		if len(warnings) > 0 {
			s.logger.Warn("validator warnings", zap.String("task_id", payload.taskID), zap.String("month", string(month)), zap.Int("count", len(warnings)))
		}

		if err := s.store.ReplaceMonth(ctx, month, monthAttendance, monthTravel, anomalies); err != nil {
			return fail(fmt.Errorf("replace month %s: %w", month, err))
		}

		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, "aggregate:*"); err != nil {
				s.logger.Warn("invalidate aggregate cache", zap.Error(err))
			}
		}

		pct := 60 + int(float64(i+1)/float64(total)*30)
		advance(fmt.Sprintf("stored month %s", month), pct)
	}

	now := time.Now().UTC()
	record := models.UploadRecord{
		ID:            uuid.NewString(),
		FileName:      payload.fileName,
		FilePath:      path,
		FileSize:      int64(len(payload.data)),
		UploadedAt:    now,
		MonthsCovered: months,
		Parsed:        true,
	}
	if err := s.store.UploadUpsert(ctx, record); err != nil {
		return fail(fmt.Errorf("upsert upload record: %w", err))
	}

	s.store.ProgressUpdate(payload.taskID, func(t *models.ProgressTask) { t.Complete(time.Now().UTC()) })
	return nil
}

// uniqueUploadName disambiguates concurrent uploads sharing the upload
// directory by appending the first 8 hex digits of the SHA-256 of the
// original name plus the upload timestamp, rather than hashing the
// file's content.
func uniqueUploadName(fileName string, uploadedAt time.Time) string {
	seed := fmt.Sprintf("%s|%d", fileName, uploadedAt.UnixNano())
	sum := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("%s-%s.xlsx", sanitizeFileName(fileName), hex.EncodeToString(sum[:4]))
}

func sanitizeFileName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func filterAttendance(rows []models.AttendanceRow, month models.YearMonth) []models.AttendanceRow {
	out := make([]models.AttendanceRow, 0, len(rows))
	for _, r := range rows {
		if r.SourceMonth == month {
			out = append(out, r)
		}
	}
	return out
}

func filterTravel(rows []models.TravelRow, month models.YearMonth) []models.TravelRow {
	out := make([]models.TravelRow, 0, len(rows))
	for _, r := range rows {
		if r.SourceMonth == month {
			out = append(out, r)
		}
	}
	return out
}
