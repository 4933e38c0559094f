package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/costmatrix/analytics-engine/internal/models"
	"github.com/costmatrix/analytics-engine/internal/normalize"
	"github.com/costmatrix/analytics-engine/pkg/jobs"
	"github.com/costmatrix/analytics-engine/pkg/storage"
)

type stubIngestorStore struct {
	mu      sync.Mutex
	months  []models.YearMonth
	uploads []models.UploadRecord
	tasks   map[string]models.ProgressTask
}

func newStubIngestorStore() *stubIngestorStore {
	return &stubIngestorStore{tasks: make(map[string]models.ProgressTask)}
}

func (s *stubIngestorStore) ReplaceMonth(ctx context.Context, month models.YearMonth, attendance []models.AttendanceRow, travel []models.TravelRow, anomalies []models.AnomalyRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months = append(s.months, month)
	return nil
}

func (s *stubIngestorStore) UploadUpsert(ctx context.Context, record models.UploadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, record)
	return nil
}

func (s *stubIngestorStore) ProgressCreate(task models.ProgressTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.TaskID] = task
}

func (s *stubIngestorStore) ProgressUpdate(taskID string, mutate func(*models.ProgressTask)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tasks[taskID]
	mutate(&t)
	s.tasks[taskID] = t
}

func (s *stubIngestorStore) ProgressGet(taskID string) (models.ProgressTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	return t, ok
}

func buildMinimalWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	mustSheet(t, f, normalize.SheetAttendance, []interface{}{"日期", "姓名", "一级部门", "当日状态判断", "工时", "下班打卡时间"},
		[][]interface{}{{"2024-03-05", "Alice", "Engineering", "上班", 8.0, ""}})
	mustSheet(t, f, normalize.SheetFlight, []interface{}{"出发日期", "预订人姓名", "差旅人员姓名", "一级部门", "授信金额", "项目", "提前预定天数", "是否超标", "超标原因"}, nil)
	mustSheet(t, f, normalize.SheetHotel, []interface{}{"入住日期"}, nil)
	mustSheet(t, f, normalize.SheetTrain, []interface{}{"出发日期"}, nil)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "upload.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read workbook bytes: %v", err)
	}
	return data
}

func mustSheet(t *testing.T, f *excelize.File, name string, header []interface{}, rows [][]interface{}) {
	t.Helper()
	if _, err := f.NewSheet(name); err != nil {
		t.Fatalf("create sheet %s: %v", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		t.Fatalf("set header for %s: %v", name, err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			t.Fatalf("set row for %s: %v", name, err)
		}
	}
}

func TestIngestorSubmitProcessesWorkbookAndCompletesProgress(t *testing.T) {
	data := buildMinimalWorkbook(t)

	store := newStubIngestorStore()
	fileStorage, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	svc := NewIngestorService(store, fileStorage, nil, zap.NewNop(), jobs.QueueConfig{
		Workers: 1, BufferSize: 4, MaxRetries: 1, RetryDelay: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	taskID, err := svc.Submit(ctx, "march.xlsx", data)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if taskID == "" {
		t.Fatal("expected a non-empty task id")
	}

	deadline := time.Now().Add(5 * time.Second)
	var task models.ProgressTask
	for time.Now().Before(deadline) {
		task, _ = svc.Progress(taskID)
		if task.Status == models.ProgressCompleted || task.Status == models.ProgressFailed {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if task.Status != models.ProgressCompleted {
		t.Fatalf("expected task to complete, got status=%s error=%s", task.Status, task.Error)
	}
	if task.Progress != 100 {
		t.Fatalf("expected progress=100, got %d", task.Progress)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.months) != 1 || store.months[0] != models.YearMonth("2024-03") {
		t.Fatalf("expected ReplaceMonth for 2024-03, got %v", store.months)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected one upload record, got %d", len(store.uploads))
	}
}

func TestIngestorSubmitSourceInvalidFailsWithoutRetry(t *testing.T) {
	// A workbook missing a required sheet fails normalisation on every
	// attempt; it must reach FAILED after exactly one attempt rather than
	// being requeued MaxRetries times.
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck
	mustSheet(t, f, normalize.SheetAttendance, []interface{}{"日期"}, nil)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	path := filepath.Join(t.TempDir(), "incomplete.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read workbook bytes: %v", err)
	}

	store := newStubIngestorStore()
	fileStorage, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	svc := NewIngestorService(store, fileStorage, nil, zap.NewNop(), jobs.QueueConfig{
		Workers: 1, BufferSize: 4, MaxRetries: 2, RetryDelay: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	taskID, err := svc.Submit(ctx, "incomplete.xlsx", data)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var task models.ProgressTask
	for time.Now().Before(deadline) {
		task, _ = svc.Progress(taskID)
		if task.Status == models.ProgressFailed {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if task.Status != models.ProgressFailed {
		t.Fatalf("expected task to fail, got status=%s", task.Status)
	}

	// Give a wrongly-scheduled retry time to fire before asserting it didn't.
	time.Sleep(100 * time.Millisecond)

	entries, err := os.ReadDir(fileStorage.Path(""))
	if err != nil {
		t.Fatalf("read storage dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one saved blob (no retry re-save), got %d", len(entries))
	}
}

func TestUniqueUploadNameDiffersByTimestamp(t *testing.T) {
	t1 := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 3, 5, 10, 0, 0, 1, time.UTC)

	n1 := uniqueUploadName("march.xlsx", t1)
	n2 := uniqueUploadName("march.xlsx", t2)
	if n1 == n2 {
		t.Fatalf("expected distinct names for distinct upload timestamps, got %q twice", n1)
	}
}

func TestSanitizeFileNameReplacesUnsafeCharacters(t *testing.T) {
	got := sanitizeFileName("march report (final).xlsx")
	for _, r := range got {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			continue
		default:
			t.Fatalf("unexpected character %q in sanitized name %q", r, got)
		}
	}
}
