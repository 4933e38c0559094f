package repository

// schema holds the star-schema-inspired, intentionally denormalised table
// set used by the Store, collapsed to the flat row types the rest of this
// package works with directly. Written in ANSI SQL that both the sqlite3
// and lib/pq drivers accept unmodified.
const schema = `
CREATE TABLE IF NOT EXISTS attendance_rows (
	id               TEXT PRIMARY KEY,
	date             TEXT NOT NULL,
	employee_name    TEXT NOT NULL,
	department_path  TEXT NOT NULL,
	dept_l1          TEXT NOT NULL,
	dept_l2          TEXT NOT NULL DEFAULT '',
	dept_l3          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	work_hours       REAL NOT NULL DEFAULT 0,
	checkout_time    TEXT,
	source_month     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attendance_month ON attendance_rows(source_month);
CREATE INDEX IF NOT EXISTS idx_attendance_employee_date ON attendance_rows(employee_name, date);
CREATE INDEX IF NOT EXISTS idx_attendance_dept_l1 ON attendance_rows(dept_l1);

CREATE TABLE IF NOT EXISTS travel_rows (
	id                    TEXT PRIMARY KEY,
	kind                  TEXT NOT NULL,
	event_date            TEXT NOT NULL,
	booker_name           TEXT NOT NULL,
	traveller_name        TEXT NOT NULL,
	department_path       TEXT NOT NULL,
	dept_l1               TEXT NOT NULL,
	dept_l2               TEXT NOT NULL DEFAULT '',
	dept_l3               TEXT NOT NULL DEFAULT '',
	amount                TEXT NOT NULL,
	project_code          TEXT,
	project_name          TEXT,
	advance_days          INTEGER,
	is_over_standard      INTEGER NOT NULL DEFAULT 0,
	over_standard_reason  TEXT NOT NULL DEFAULT '',
	source_month          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_travel_month ON travel_rows(source_month);
CREATE INDEX IF NOT EXISTS idx_travel_traveller ON travel_rows(traveller_name);
CREATE INDEX IF NOT EXISTS idx_travel_project ON travel_rows(project_code);
CREATE INDEX IF NOT EXISTS idx_travel_dept_l1 ON travel_rows(dept_l1);

CREATE TABLE IF NOT EXISTS anomaly_rows (
	id                 TEXT PRIMARY KEY,
	date               TEXT NOT NULL,
	employee_name      TEXT NOT NULL,
	department_path    TEXT NOT NULL,
	kind               TEXT NOT NULL,
	detail             TEXT NOT NULL,
	attendance_status  TEXT NOT NULL DEFAULT '',
	source_month       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_anomaly_month ON anomaly_rows(source_month);

CREATE TABLE IF NOT EXISTS upload_records (
	id                TEXT PRIMARY KEY,
	file_name         TEXT NOT NULL,
	file_path         TEXT NOT NULL,
	file_size         INTEGER NOT NULL,
	uploaded_at       TEXT NOT NULL,
	months_covered    TEXT NOT NULL DEFAULT '',
	parsed            INTEGER NOT NULL DEFAULT 0,
	last_analysed_at  TEXT
);
CREATE INDEX IF NOT EXISTS idx_upload_uploaded_at ON upload_records(uploaded_at);
`
