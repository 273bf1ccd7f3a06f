package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"triage/internal/evidence"
)

// MemStore is an in-memory Store for tests and one-shot runs. Runs are
// deep-copied in and out so callers cannot mutate stored records.
type MemStore struct {
	mu        sync.RWMutex
	runs      map[string][]byte
	infos     map[string]RunInfo
	overrides []Override
	nextID    int64
	now       func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		runs:  make(map[string][]byte),
		infos: make(map[string]RunInfo),
		now:   time.Now,
	}
}

// SaveRun implements Store.
func (s *MemStore) SaveRun(run *evidence.Run) error {
	if run == nil || run.ID == "" {
		return errors.New("run needs an id")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = data
	s.infos[run.ID] = infoOf(run)
	return nil
}

// GetRun implements Store.
func (s *MemStore) GetRun(id string) (*evidence.Run, error) {
	s.mu.RLock()
	data, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	var run evidence.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}

// ListRuns implements Store.
func (s *MemStore) ListRuns(limit int) ([]RunInfo, error) {
	s.mu.RLock()
	out := make([]RunInfo, 0, len(s.infos))
	for _, v := range s.infos {
		out = append(out, v)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetRecord implements Store.
func (s *MemStore) GetRecord(runID, recordID string) (*evidence.EvidenceRecord, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}
	for i := range run.Records {
		if run.Records[i].ID == recordID {
			return &run.Records[i], nil
		}
	}
	return nil, fmt.Errorf("record %s/%s: %w", runID, recordID, ErrNotFound)
}

// SaveOverride implements Store.
func (s *MemStore) SaveOverride(o Override) (int64, error) {
	if err := checkOverride(o); err != nil {
		return 0, err
	}
	if _, err := s.GetRecord(o.RunID, o.RecordID); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.overrides = append(s.overrides, o)
	return o.ID, nil
}

// ListOverrides implements Store.
func (s *MemStore) ListOverrides(runID string) ([]Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Override
	for _, o := range s.overrides {
		if o.RunID == runID {
			out = append(out, o)
		}
	}
	return out, nil
}

// Close implements Store.
func (s *MemStore) Close() error { return nil }
