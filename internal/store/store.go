// Package store persists triage runs, their records and external overrides.
package store

import (
	"errors"
	"time"

	"triage/internal/evidence"
)

// DefaultDBPath is the default relative path for the SQLite DB. Open creates
// the parent directory.
const DefaultDBPath = ".triage/triage.db"

// ErrNotFound is returned when a run or record does not exist.
var ErrNotFound = errors.New("not found")

// RunInfo is the listing view of a stored run.
type RunInfo struct {
	ID                string            `json:"id"`
	Name              string            `json:"name,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	Total             int               `json:"total"`
	OverallCategory   evidence.Category `json:"overall_category"`
	OverallConfidence float64           `json:"overall_confidence"`
}

// Override is a reviewer's (or external reasoner's) replacement verdict for
// one record. Records themselves are never modified.
type Override struct {
	ID        int64             `json:"id"`
	RunID     string            `json:"run_id"`
	RecordID  string            `json:"record_id"`
	Category  evidence.Category `json:"category"`
	Reason    string            `json:"reason"`
	CreatedAt time.Time         `json:"created_at"`
}

// Store is the persistence facade. Implementations are SQLite or in-memory.
type Store interface {
	SaveRun(run *evidence.Run) error
	GetRun(id string) (*evidence.Run, error)
	// ListRuns returns the newest runs first; limit <= 0 means all.
	ListRuns(limit int) ([]RunInfo, error)
	GetRecord(runID, recordID string) (*evidence.EvidenceRecord, error)
	// SaveOverride appends an override for an existing record and returns its id.
	SaveOverride(o Override) (int64, error)
	// ListOverrides returns a run's overrides oldest first.
	ListOverrides(runID string) ([]Override, error)
	Close() error
}

func infoOf(run *evidence.Run) RunInfo {
	return RunInfo{
		ID:                run.ID,
		Name:              run.Name,
		CreatedAt:         run.CreatedAt,
		Total:             run.Summary.Total,
		OverallCategory:   run.Summary.OverallCategory,
		OverallConfidence: run.Summary.OverallConfidence,
	}
}

func checkOverride(o Override) error {
	if o.RunID == "" || o.RecordID == "" {
		return errors.New("override needs a run id and a record id")
	}
	if !o.Category.Valid() {
		return errors.New("override category " + string(o.Category) + " is not a known category")
	}
	return nil
}

// Latest returns the effective override for each record of a run: the most
// recent one wins.
func Latest(overrides []Override) map[string]Override {
	out := make(map[string]Override, len(overrides))
	for _, o := range overrides {
		out[o.RecordID] = o
	}
	return out
}
