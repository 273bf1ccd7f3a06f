package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"triage/internal/evidence"
)

// timeFormat sorts lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates a SQLite DB at path and runs migrations. Creates the
// parent directory if it does not exist.
func Open(path string) (*SqlStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	var tables int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		if _, err := s.db.Exec(schemaV1); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	}
	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != schemaVersion {
		return fmt.Errorf("unknown schema version %d", v)
	}
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its records in one transaction. Run ids are unique.
func (s *SqlStore) SaveRun(run *evidence.Run) error {
	if run == nil || run.ID == "" {
		return errors.New("run needs an id")
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO runs(id, name, created_at, total, overall_category, overall_confidence, summary)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.CreatedAt.UTC().Format(timeFormat), run.Summary.Total,
		string(run.Summary.OverallCategory), run.Summary.OverallConfidence, summary,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	for i := range run.Records {
		rec := &run.Records[i]
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.ID, err)
		}
		_, err = tx.Exec(
			`INSERT INTO records(run_id, record_id, position, final_category, final_confidence, payload)
			 VALUES(?, ?, ?, ?, ?, ?)`,
			run.ID, rec.ID, i, string(rec.FinalCategory), rec.FinalConfidence, payload,
		)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads a run with its records in their original order.
func (s *SqlStore) GetRun(id string) (*evidence.Run, error) {
	var run evidence.Run
	var name sql.NullString
	var createdAt string
	var summary []byte
	err := s.db.QueryRow(
		"SELECT id, name, created_at, summary FROM runs WHERE id = ?", id,
	).Scan(&run.ID, &name, &createdAt, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.Name = name.String
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse run time: %w", err)
	}
	if err := json.Unmarshal(summary, &run.Summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	rows, err := s.db.Query("SELECT payload FROM records WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	run.Records = []evidence.EvidenceRecord{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec evidence.EvidenceRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		run.Records = append(run.Records, rec)
	}
	return &run, rows.Err()
}

// ListRuns returns run summaries, newest first.
func (s *SqlStore) ListRuns(limit int) ([]RunInfo, error) {
	q := `SELECT id, name, created_at, total, overall_category, overall_confidence
	      FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []RunInfo
	for rows.Next() {
		var v RunInfo
		var name sql.NullString
		var createdAt, cat string
		if err := rows.Scan(&v.ID, &name, &createdAt, &v.Total, &cat, &v.OverallConfidence); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		v.Name = name.String
		v.OverallCategory = evidence.Category(cat)
		if v.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse run time: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetRecord loads one record.
func (s *SqlStore) GetRecord(runID, recordID string) (*evidence.EvidenceRecord, error) {
	var payload []byte
	err := s.db.QueryRow(
		"SELECT payload FROM records WHERE run_id = ? AND record_id = ?", runID, recordID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s/%s: %w", runID, recordID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	var rec evidence.EvidenceRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// SaveOverride appends an override row. The record must exist.
func (s *SqlStore) SaveOverride(o Override) (int64, error) {
	if err := checkOverride(o); err != nil {
		return 0, err
	}
	if _, err := s.GetRecord(o.RunID, o.RecordID); err != nil {
		return 0, err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	res, err := s.db.Exec(
		`INSERT INTO overrides(run_id, record_id, category, reason, created_at) VALUES(?, ?, ?, ?, ?)`,
		o.RunID, o.RecordID, string(o.Category), o.Reason, o.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("insert override: %w", err)
	}
	return res.LastInsertId()
}

// ListOverrides returns a run's overrides in insertion order.
func (s *SqlStore) ListOverrides(runID string) ([]Override, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, record_id, category, reason, created_at
		 FROM overrides WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()
	var out []Override
	for rows.Next() {
		var o Override
		var cat, createdAt string
		if err := rows.Scan(&o.ID, &o.RunID, &o.RecordID, &cat, &o.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.Category = evidence.Category(cat)
		if o.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse override time: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
