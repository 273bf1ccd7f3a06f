package store

const schemaVersion = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id                 TEXT PRIMARY KEY,
	name               TEXT,
	created_at         TEXT NOT NULL,
	total              INTEGER NOT NULL,
	overall_category   TEXT NOT NULL,
	overall_confidence REAL NOT NULL,
	summary            BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	run_id           TEXT NOT NULL REFERENCES runs(id),
	record_id        TEXT NOT NULL,
	position         INTEGER NOT NULL,
	final_category   TEXT NOT NULL,
	final_confidence REAL NOT NULL,
	payload          BLOB NOT NULL,
	PRIMARY KEY (run_id, record_id)
);

CREATE TABLE IF NOT EXISTS overrides (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	record_id  TEXT NOT NULL,
	category   TEXT NOT NULL,
	reason     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id, record_id) REFERENCES records(run_id, record_id)
);

CREATE INDEX IF NOT EXISTS idx_overrides_run ON overrides(run_id);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(final_category);
`
