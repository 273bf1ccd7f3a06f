// Package mcp exposes the triage engine as MCP tools so an agent can analyse
// failures, browse stored runs and record reviewed verdicts.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"triage/internal/builder"
	"triage/internal/evidence"
	"triage/internal/intake"
	"triage/internal/logging"
	"triage/internal/store"
	"triage/internal/wiring"
)

// Version is reported in the MCP implementation info.
var Version = "dev"

// Server wraps the MCP SDK server around a Builder and a Store.
type Server struct {
	MCPServer *sdkmcp.Server
	Builder   *builder.Builder
	Store     store.Store

	log *slog.Logger
}

// NewServer creates an MCP server with the triage tools registered.
func NewServer(b *builder.Builder, st store.Store) *Server {
	s := &Server{Builder: b, Store: st, log: logging.New("mcp")}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "triage", Version: Version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_failure",
		Description: "Classify one failed test as product, automation or infrastructure and return the full evidence record. Nothing is stored.",
	}, s.handleAnalyzeFailure)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_run",
		Description: "Classify every failure of a CI run (inline or from a bundle file), store the run and return its summary.",
	}, s.handleAnalyzeRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List stored runs, newest first.",
	}, s.handleListRuns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Return a stored run with every evidence record and any reviewed overrides.",
	}, s.handleGetRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_record",
		Description: "Return one stored evidence record with its latest override, if any.",
	}, s.handleGetRecord)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "override_verdict",
		Description: "Record a reviewed category for a stored record. The original record is kept; the override is shown alongside it.",
	}, s.handleOverrideVerdict)
}

// --- Tool input/output types ---

type analyzeFailureOutput struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Path       string  `json:"path"`
	Record     any     `json:"record"`
}

type analyzeRunInput struct {
	RunID      string        `json:"run_id,omitempty" jsonschema:"run id; generated when empty"`
	Name       string        `json:"name,omitempty" jsonschema:"human name for the run"`
	BundlePath string        `json:"bundle_path,omitempty" jsonschema:"path to a YAML or JSON failure bundle; used instead of failures"`
	Failures   []failureArgs `json:"failures,omitempty" jsonschema:"failures to classify"`
}

type recordBrief struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Path       string  `json:"path"`
}

type analyzeRunOutput struct {
	RunID             string         `json:"run_id"`
	Total             int            `json:"total"`
	OverallCategory   string         `json:"overall_category"`
	OverallConfidence float64        `json:"overall_confidence"`
	Counts            map[string]int `json:"counts"`
	Notes             []string       `json:"notes,omitempty"`
	Records           []recordBrief  `json:"records"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum runs to return (0 = all)"`
}

type runBrief struct {
	ID                string  `json:"id"`
	Name              string  `json:"name,omitempty"`
	CreatedAt         string  `json:"created_at"`
	Total             int     `json:"total"`
	OverallCategory   string  `json:"overall_category"`
	OverallConfidence float64 `json:"overall_confidence"`
}

type listRunsOutput struct {
	Runs []runBrief `json:"runs"`
}

type getRunInput struct {
	RunID string `json:"run_id" jsonschema:"run id from analyze_run or list_runs"`
}

type getRunOutput struct {
	Run       any `json:"run"`
	Overrides any `json:"overrides"`
}

type getRecordInput struct {
	RunID    string `json:"run_id" jsonschema:"run id"`
	RecordID string `json:"record_id" jsonschema:"failure id within the run"`
}

type getRecordOutput struct {
	Record   any `json:"record"`
	Override any `json:"override,omitempty"`
}

type overrideInput struct {
	RunID    string `json:"run_id" jsonschema:"run id"`
	RecordID string `json:"record_id" jsonschema:"failure id within the run"`
	Category string `json:"category" jsonschema:"product, automation, infrastructure, mixed, flaky, expected_change or insufficient_evidence"`
	Reason   string `json:"reason" jsonschema:"why the verdict was changed"`
}

type overrideOutput struct {
	ID int64  `json:"id"`
	OK string `json:"ok"`
}

// --- Tool handlers ---

func (s *Server) handleAnalyzeFailure(ctx context.Context, _ *sdkmcp.CallToolRequest, input failureArgs) (*sdkmcp.CallToolResult, analyzeFailureOutput, error) {
	if input.ErrorText == "" && input.StackTrace == "" {
		return nil, analyzeFailureOutput{}, errors.New("error_text or stack_trace is required")
	}
	rec := s.Builder.BuildRecord(ctx, input.input())
	return nil, analyzeFailureOutput{
		Category:   string(rec.FinalCategory),
		Confidence: rec.FinalConfidence,
		Path:       string(rec.Classification.Path),
		Record:     rec,
	}, nil
}

func (s *Server) handleAnalyzeRun(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeRunInput) (*sdkmcp.CallToolResult, analyzeRunOutput, error) {
	var src intake.Source = intake.FileSource{}
	ref := input.BundlePath
	switch {
	case ref != "":
	case len(input.Failures) > 0:
		bundle := &intake.Bundle{Failures: make([]evidence.FailureInput, len(input.Failures))}
		for i, f := range input.Failures {
			bundle.Failures[i] = f.input()
		}
		src, ref = intake.StaticSource{Bundle: bundle}, "inline"
	default:
		return nil, analyzeRunOutput{}, errors.New("failures or bundle_path is required")
	}

	run, err := wiring.Analyze(ctx, s.Builder, src, ref, input.RunID, input.Name, s.Store)
	if err != nil {
		return nil, analyzeRunOutput{}, err
	}

	out := analyzeRunOutput{
		RunID:             run.ID,
		Total:             run.Summary.Total,
		OverallCategory:   string(run.Summary.OverallCategory),
		OverallConfidence: run.Summary.OverallConfidence,
		Counts:            make(map[string]int, len(run.Summary.Counts)),
		Notes:             run.Summary.Notes,
		Records:           make([]recordBrief, len(run.Records)),
	}
	for c, n := range run.Summary.Counts {
		out.Counts[string(c)] = n
	}
	for i, r := range run.Records {
		out.Records[i] = recordBrief{
			ID:         r.ID,
			Kind:       r.Signature.Kind.String(),
			Category:   string(r.FinalCategory),
			Confidence: r.FinalConfidence,
			Path:       string(r.Classification.Path),
		}
	}
	return nil, out, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	runs, err := s.Store.ListRuns(input.Limit)
	if err != nil {
		return nil, listRunsOutput{}, err
	}
	out := listRunsOutput{Runs: make([]runBrief, len(runs))}
	for i, r := range runs {
		out.Runs[i] = runBrief{
			ID:                r.ID,
			Name:              r.Name,
			CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339),
			Total:             r.Total,
			OverallCategory:   string(r.OverallCategory),
			OverallConfidence: r.OverallConfidence,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunInput) (*sdkmcp.CallToolResult, getRunOutput, error) {
	run, err := s.Store.GetRun(input.RunID)
	if err != nil {
		return nil, getRunOutput{}, err
	}
	overrides, err := s.Store.ListOverrides(input.RunID)
	if err != nil {
		return nil, getRunOutput{}, err
	}
	if overrides == nil {
		overrides = []store.Override{}
	}
	return nil, getRunOutput{Run: run, Overrides: overrides}, nil
}

func (s *Server) handleGetRecord(_ context.Context, _ *sdkmcp.CallToolRequest, input getRecordInput) (*sdkmcp.CallToolResult, getRecordOutput, error) {
	rec, err := s.Store.GetRecord(input.RunID, input.RecordID)
	if err != nil {
		return nil, getRecordOutput{}, err
	}
	out := getRecordOutput{Record: rec}
	overrides, err := s.Store.ListOverrides(input.RunID)
	if err != nil {
		return nil, getRecordOutput{}, err
	}
	if o, ok := store.Latest(overrides)[input.RecordID]; ok {
		out.Override = o
	}
	return nil, out, nil
}

func (s *Server) handleOverrideVerdict(_ context.Context, _ *sdkmcp.CallToolRequest, input overrideInput) (*sdkmcp.CallToolResult, overrideOutput, error) {
	o, err := wiring.Override(s.Store, input.RunID, input.RecordID, input.Category, input.Reason)
	if err != nil {
		return nil, overrideOutput{}, err
	}
	s.log.Info("verdict overridden", "run_id", o.RunID, "record_id", o.RecordID, "category", o.Category)
	return nil, overrideOutput{ID: o.ID, OK: "override recorded"}, nil
}

// Run serves over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
