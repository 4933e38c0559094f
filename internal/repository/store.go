// Package repository is the Store: the single logical relational store
// behind attendance, travel, anomaly and upload rows, plus the ephemeral
// progress table.
package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/costmatrix/analytics-engine/internal/models"
	apperrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

// monthLockWait bounds how long ReplaceMonth/DeleteMonth will wait to
// acquire a month's advisory lock before giving up and surfacing
// STORE_CONTENTION rather than blocking the caller indefinitely.
const monthLockWait = 5 * time.Second

// Store is the single entry point onto the four persistent tables and the
// ephemeral progress table. Only replace_month and delete_month need to be
// atomic with respect to readers; per-month locks serialise writers to the
// same month while letting different months proceed in parallel.
type Store struct {
	db         *sqlx.DB
	logger     *zap.Logger
	monthLocks sync.Map // models.YearMonth -> chan struct{} (1-buffered semaphore)
	progress   *progressStore
}

// New builds a Store and runs its migrations.
func New(db *sqlx.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{db: db, logger: logger, progress: newProgressStore()}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("run store migrations: %w", err)
	}
	return nil
}

func (s *Store) lockFor(month models.YearMonth) chan struct{} {
	actual, _ := s.monthLocks.LoadOrStore(month, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// acquireMonthLock waits up to monthLockWait to serialise with any other
// writer holding month's advisory lock. The returned release func must be
// called exactly once to hand the lock back.
func (s *Store) acquireMonthLock(ctx context.Context, month models.YearMonth) (func(), error) {
	sem := s.lockFor(month)
	timer := time.NewTimer(monthLockWait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, apperrors.Wrap(ctx.Err(), apperrors.KindCancelled, 499, "cancelled waiting for month lock")
	case <-timer.C:
		return nil, apperrors.Clone(apperrors.ErrStoreContention, fmt.Sprintf("timed out waiting for the lock on month %s", month))
	}
}

// ReplaceMonth atomically deletes every attendance/travel/anomaly row for
// month and inserts the replacement sets. Concurrent calls for the same
// month are serialised; the last writer to acquire the lock wins.
func (s *Store) ReplaceMonth(ctx context.Context, month models.YearMonth, attendance []models.AttendanceRow, travel []models.TravelRow, anomalies []models.AnomalyRow) error {
	release, err := s.acquireMonthLock(ctx, month)
	if err != nil {
		return err
	}
	defer release()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "begin replace_month transaction")
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM attendance_rows WHERE source_month = ?`), string(month)); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "delete attendance rows for month")
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM travel_rows WHERE source_month = ?`), string(month)); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "delete travel rows for month")
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM anomaly_rows WHERE source_month = ?`), string(month)); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "delete anomaly rows for month")
	}

	for _, row := range attendance {
		if err := insertAttendanceRow(ctx, tx, row); err != nil {
			return err
		}
	}
	for _, row := range travel {
		if err := insertTravelRow(ctx, tx, row); err != nil {
			return err
		}
	}
	for _, row := range anomalies {
		if err := insertAnomalyRow(ctx, tx, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "commit replace_month transaction")
	}
	committed = true
	return nil
}

// DeleteMonth removes every row tied to month, shrinks every UploadRecord's
// months_covered accordingly, and deletes any UploadRecord whose coverage
// set becomes empty (the caller is responsible for removing that record's
// file blob from pkg/storage once this returns).
func (s *Store) DeleteMonth(ctx context.Context, month models.YearMonth) ([]models.UploadRecord, error) {
	release, err := s.acquireMonthLock(ctx, month)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "begin delete_month transaction")
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM attendance_rows WHERE source_month = ?`), string(month)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "delete attendance rows for month")
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM travel_rows WHERE source_month = ?`), string(month)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "delete travel rows for month")
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM anomaly_rows WHERE source_month = ?`), string(month)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "delete anomaly rows for month")
	}

	uploads, err := listUploadsTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	var emptied []models.UploadRecord
	for _, u := range uploads {
		remaining := make([]models.YearMonth, 0, len(u.MonthsCovered))
		for _, m := range u.MonthsCovered {
			if m != month {
				remaining = append(remaining, m)
			}
		}
		if len(remaining) == len(u.MonthsCovered) {
			continue
		}
		if len(remaining) == 0 {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM upload_records WHERE id = ?`), u.ID); err != nil {
				return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "delete emptied upload record")
			}
			emptied = append(emptied, u)
			continue
		}
		u.MonthsCovered = remaining
		if err := upsertUploadTx(ctx, tx, u); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "commit delete_month transaction")
	}
	committed = true
	return emptied, nil
}

// RowKind selects which row table ReadRows streams from.
type RowKind string

const (
	KindRowAttendance RowKind = "attendance"
	KindRowTravel     RowKind = "travel"
	KindRowAnomaly    RowKind = "anomaly"
)

// ReadRows returns every row of the requested kinds whose source_month is
// in months, ordered by source_month, then date (event_date for travel
// rows), then id.
func (s *Store) ReadRows(ctx context.Context, months models.MonthSet, kinds []RowKind) (attendance []models.AttendanceRow, travel []models.TravelRow, anomalies []models.AnomalyRow, err error) {
	if len(months) == 0 {
		return nil, nil, nil, nil
	}
	for _, kind := range kinds {
		switch kind {
		case KindRowAttendance:
			attendance, err = selectAttendance(ctx, s.db, months)
		case KindRowTravel:
			travel, err = selectTravel(ctx, s.db, months)
		case KindRowAnomaly:
			anomalies, err = selectAnomalies(ctx, s.db, months)
		}
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return attendance, travel, anomalies, nil
}

// ListMonths returns the sorted ascending distinct source_month values
// present in attendance rows, the canonical anchor for which months exist.
func (s *Store) ListMonths(ctx context.Context) ([]models.YearMonth, error) {
	var raw []string
	if err := s.db.SelectContext(ctx, &raw, `SELECT DISTINCT source_month FROM attendance_rows ORDER BY source_month ASC`); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "list months")
	}
	out := make([]models.YearMonth, 0, len(raw))
	for _, r := range raw {
		out = append(out, models.YearMonth(r))
	}
	return out, nil
}

// UploadUpsert inserts or merges an UploadRecord.
func (s *Store) UploadUpsert(ctx context.Context, record models.UploadRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "begin upload_upsert transaction")
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()
	if err := upsertUploadTx(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "commit upload_upsert transaction")
	}
	committed = true
	return nil
}

// UploadList returns every UploadRecord, most recently uploaded first.
func (s *Store) UploadList(ctx context.Context) ([]models.UploadRecord, error) {
	return listUploads(ctx, s.db)
}

// ProgressCreate creates a new ProgressTask.
func (s *Store) ProgressCreate(task models.ProgressTask) { s.progress.create(task) }

// ProgressUpdate mutates an existing ProgressTask under a single-writer lock.
func (s *Store) ProgressUpdate(taskID string, mutate func(*models.ProgressTask)) {
	s.progress.update(taskID, mutate)
}

// ProgressGet reads a ProgressTask by id.
func (s *Store) ProgressGet(taskID string) (models.ProgressTask, bool) {
	return s.progress.get(taskID)
}
