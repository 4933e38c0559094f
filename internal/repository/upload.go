package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/costmatrix/analytics-engine/internal/models"
	apperrors "github.com/costmatrix/analytics-engine/pkg/errors"
)

type uploadRecordDB struct {
	ID             string  `db:"id"`
	FileName       string  `db:"file_name"`
	FilePath       string  `db:"file_path"`
	FileSize       int64   `db:"file_size"`
	UploadedAt     string  `db:"uploaded_at"`
	MonthsCovered  string  `db:"months_covered"`
	Parsed         bool    `db:"parsed"`
	LastAnalysedAt *string `db:"last_analysed_at"`
}

const timeLayout = time.RFC3339

func toUploadDB(u models.UploadRecord) uploadRecordDB {
	months := make([]string, len(u.MonthsCovered))
	for i, m := range u.MonthsCovered {
		months[i] = string(m)
	}
	var lastAnalysed *string
	if u.LastAnalysedAt != nil {
		s := u.LastAnalysedAt.UTC().Format(timeLayout)
		lastAnalysed = &s
	}
	return uploadRecordDB{
		ID:             u.ID,
		FileName:       u.FileName,
		FilePath:       u.FilePath,
		FileSize:       u.FileSize,
		UploadedAt:     u.UploadedAt.UTC().Format(timeLayout),
		MonthsCovered:  strings.Join(months, ","),
		Parsed:         u.Parsed,
		LastAnalysedAt: lastAnalysed,
	}
}

func fromUploadDB(r uploadRecordDB) models.UploadRecord {
	var months []models.YearMonth
	if r.MonthsCovered != "" {
		for _, m := range strings.Split(r.MonthsCovered, ",") {
			months = append(months, models.YearMonth(m))
		}
	}
	uploadedAt, _ := time.Parse(timeLayout, r.UploadedAt)
	var lastAnalysed *time.Time
	if r.LastAnalysedAt != nil {
		if t, err := time.Parse(timeLayout, *r.LastAnalysedAt); err == nil {
			lastAnalysed = &t
		}
	}
	return models.UploadRecord{
		ID:             r.ID,
		FileName:       r.FileName,
		FilePath:       r.FilePath,
		FileSize:       r.FileSize,
		UploadedAt:     uploadedAt,
		MonthsCovered:  months,
		MonthsJoin:     r.MonthsCovered,
		Parsed:         r.Parsed,
		LastAnalysedAt: lastAnalysed,
	}
}

func upsertUploadTx(ctx context.Context, tx *sqlx.Tx, record models.UploadRecord) error {
	db := toUploadDB(record)
	query := tx.Rebind(`INSERT INTO upload_records
		(id, file_name, file_path, file_size, uploaded_at, months_covered, parsed, last_analysed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			file_name = excluded.file_name,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			uploaded_at = excluded.uploaded_at,
			months_covered = excluded.months_covered,
			parsed = excluded.parsed,
			last_analysed_at = excluded.last_analysed_at`)
	if _, err := tx.ExecContext(ctx, query, db.ID, db.FileName, db.FilePath, db.FileSize, db.UploadedAt, db.MonthsCovered, db.Parsed, db.LastAnalysedAt); err != nil {
		return apperrors.Wrap(err, apperrors.KindInternal, 500, "upsert upload record")
	}
	return nil
}

func listUploadsTx(ctx context.Context, tx *sqlx.Tx) ([]models.UploadRecord, error) {
	var rows []uploadRecordDB
	query := `SELECT id, file_name, file_path, file_size, uploaded_at, months_covered, parsed, last_analysed_at
		FROM upload_records ORDER BY uploaded_at DESC`
	if err := tx.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "list upload records")
	}
	out := make([]models.UploadRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromUploadDB(r))
	}
	return out, nil
}

func listUploads(ctx context.Context, db *sqlx.DB) ([]models.UploadRecord, error) {
	var rows []uploadRecordDB
	query := `SELECT id, file_name, file_path, file_size, uploaded_at, months_covered, parsed, last_analysed_at
		FROM upload_records ORDER BY uploaded_at DESC`
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, 500, "list upload records")
	}
	out := make([]models.UploadRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromUploadDB(r))
	}
	return out, nil
}
