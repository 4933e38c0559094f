package models

import "time"

// UploadRecord is one ingested workbook; each ingestion writes a new record
// listing the months its workbook held. delete_month removes that month
// from every record's months_covered set and deletes a record once the set
// is empty.
type UploadRecord struct {
	ID             string      `db:"id" json:"id"`
	FileName       string      `db:"file_name" json:"file_name"`
	FilePath       string      `db:"file_path" json:"file_path"`
	FileSize       int64       `db:"file_size" json:"file_size"`
	UploadedAt     time.Time   `db:"uploaded_at" json:"uploaded_at"`
	MonthsCovered  []YearMonth `db:"-" json:"months_covered"`
	MonthsJoin     string      `db:"months_covered" json:"-"`
	Parsed         bool        `db:"parsed" json:"parsed"`
	LastAnalysedAt *time.Time  `db:"last_analysed_at" json:"last_analysed_at,omitempty"`
}

// HasMonths reports whether MonthsCovered is non-empty, used by Store's
// delete_month to decide whether an UploadRecord should be removed
// entirely once its coverage empties out.
func (u UploadRecord) HasMonths() bool { return len(u.MonthsCovered) > 0 }
