package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"triage/internal/timeline"
)

// Entry is one recorded locator history.
type Entry struct {
	LastModified  *time.Time `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	Exists        bool       `json:"exists" yaml:"exists"`
	PresentAtHead bool       `json:"present_at_head" yaml:"present_at_head"`
}

// Recorded is a history fixture keyed by locator (automation side) and by
// element id (product side).
type Recorded struct {
	Automation map[string]Entry `json:"automation" yaml:"automation"`
	Product    map[string]Entry `json:"product" yaml:"product"`
}

// LoadRecorded reads a recorded history file (YAML or JSON).
func LoadRecorded(path string) (*Recorded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var r Recorded
	// JSON is a subset of YAML for these shapes.
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}

// RecordedLookup serves one side of a Recorded fixture. Locators that are not
// listed never existed.
type RecordedLookup map[string]Entry

// LastModified implements timeline.HistoryLookup.
func (r RecordedLookup) LastModified(ctx context.Context, locator string) (timeline.History, error) {
	if err := ctx.Err(); err != nil {
		return timeline.History{}, fmt.Errorf("%w: %v", timeline.ErrUnavailable, err)
	}
	e, ok := r[locator]
	if !ok {
		e, ok = r[strings.TrimSpace(locator)]
	}
	if !ok {
		return timeline.History{}, nil
	}
	return timeline.History{
		LastModified:  e.LastModified,
		ExistsAtAll:   e.Exists || e.PresentAtHead,
		PresentAtHead: e.PresentAtHead,
	}, nil
}
