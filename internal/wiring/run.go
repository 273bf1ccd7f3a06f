// Package wiring assembles the triage pipeline from configuration: workspace
// and history lookups into the builder, bundle intake with schema checks,
// and persistence of the finished run.
package wiring

import (
	"context"
	"errors"
	"fmt"

	"triage/internal/builder"
	"triage/internal/config"
	"triage/internal/evidence"
	"triage/internal/history"
	"triage/internal/intake"
	"triage/internal/logging"
	"triage/internal/metrics"
	"triage/internal/schema"
	"triage/internal/signature"
	"triage/internal/store"
	"triage/internal/timeline"
	"triage/internal/workspace"
)

// NewBuilder returns a Builder for cfg. When cfg names a workspace that can
// drive a timeline comparison, the builder gets a comparator over its history
// lookups; otherwise locator failures fall back to the decision table.
func NewBuilder(cfg config.Config, rec metrics.Recorder) (*builder.Builder, error) {
	b := builder.New(cfg.Thresholds).WithRecorder(rec)
	if cfg.Workspace == "" {
		return b, nil
	}
	ws, err := workspace.LoadFromPath(cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	test, product, ok, err := history.FromWorkspace(ws)
	if err != nil {
		return nil, err
	}
	if !ok {
		logging.New("wiring").Warn("workspace cannot drive timeline comparison", "path", cfg.Workspace)
		return b, nil
	}
	return b.WithComparator(timeline.NewComparator(test, product, cfg.Thresholds.LookupTimeout, signature.ElementID)), nil
}

// Analyze fetches the bundle ref from src, checks it against the bundle
// schema, builds the run and saves it to st. st may be nil for a dry run.
// runID and name, when set, replace the bundle's own.
func Analyze(ctx context.Context, b *builder.Builder, src intake.Source, ref, runID, name string, st store.Store) (*evidence.Run, error) {
	log := logging.New("wiring")

	bundle, err := src.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(schema.Bundle, bundle); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", ref, err)
	}
	inputs, err := bundle.Inputs()
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", ref, err)
	}
	if runID == "" {
		runID = bundle.RunID
	}
	if name == "" {
		name = bundle.Name
	}

	run, err := b.BuildRun(ctx, runID, name, inputs)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(schema.Run, run); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}
	if st != nil {
		if err := st.SaveRun(&run); err != nil {
			return nil, fmt.Errorf("save run %s: %w", run.ID, err)
		}
	}
	log.Info("run analysed",
		"run_id", run.ID,
		"failures", run.Summary.Total,
		"overall", run.Summary.OverallCategory,
		"confidence", run.Summary.OverallConfidence,
		"saved", st != nil)
	return &run, nil
}

// Override records a reviewed verdict for one stored record after checking
// the category.
func Override(st store.Store, runID, recordID, category, reason string) (store.Override, error) {
	c := evidence.Category(category)
	if !c.Valid() {
		return store.Override{}, fmt.Errorf("unknown category %q", category)
	}
	if reason == "" {
		return store.Override{}, errors.New("an override needs a reason")
	}
	o := store.Override{RunID: runID, RecordID: recordID, Category: c, Reason: reason}
	id, err := st.SaveOverride(o)
	if err != nil {
		return store.Override{}, err
	}
	o.ID = id
	return o, nil
}
