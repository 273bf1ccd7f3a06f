// Package builder runs the scoring pipeline for each failure and aggregates a run.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"triage/internal/evidence"
	"triage/internal/logging"
	"triage/internal/metrics"
	"triage/internal/scoring"
	"triage/internal/signature"
	"triage/internal/timeline"
	"triage/internal/tracing"
	"triage/internal/validate"
)

// Builder turns FailureInputs into EvidenceRecords. The zero value is not
// usable; construct with New.
type Builder struct {
	Table      *scoring.Table
	Comparator *timeline.Comparator // nil when no repositories are configured
	Thresholds Thresholds
	Recorder   metrics.Recorder

	log    *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// New returns a Builder with the default table and no timeline comparator.
func New(th Thresholds) *Builder {
	return &Builder{
		Table:      scoring.DefaultTable(),
		Thresholds: th,
		Recorder:   metrics.Nop{},
		log:        logging.New("builder"),
		tracer:     tracing.Tracer("triage/builder"),
		now:        time.Now,
	}
}

// WithComparator sets the timeline comparator and returns b.
func (b *Builder) WithComparator(c *timeline.Comparator) *Builder {
	b.Comparator = c
	return b
}

// WithRecorder sets the metrics recorder and returns b.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.Nop{}
	}
	b.Recorder = r
	return b
}

// BuildRecord runs the full pipeline for one failure. It never fails: missing
// evidence and unavailable lookups lower the confidence and leave a note.
func (b *Builder) BuildRecord(ctx context.Context, in evidence.FailureInput) evidence.EvidenceRecord {
	start := b.now()
	ctx, span := b.tracer.Start(ctx, "triage.BuildRecord", trace.WithAttributes(attribute.String("failure.id", in.ID)))
	defer span.End()

	th := b.Thresholds
	sig := signature.Parse(in.ErrorText, in.StackTrace)
	facts := evidence.FactsFrom(in, sig, th.RecentChangeDays)

	rec := evidence.EvidenceRecord{
		ID:             in.ID,
		TestName:       in.TestName,
		ErrorText:      in.ErrorText,
		StackTrace:     in.StackTrace,
		Signature:      sig,
		Environment:    in.Environment,
		Repository:     in.Repository,
		Console:        in.Console,
		Flakiness:      in.Flakiness,
		TimelineStatus: evidence.TimelineNotApplicable,
		Notes:          missingNotes(in),
	}

	rec.BaseScores = b.Table.BaseScore(sig.Kind, facts.EnvHealthy, facts.LocatorFound)
	adjusted, factors := scoring.Adjust(rec.BaseScores, facts)
	rec.Factors = factors
	cls := evidence.ClassificationResult{
		Category: adjusted.Argmax().Category(),
		Scores:   adjusted,
		Path:     evidence.PathDecisionTable,
	}

	var corroborating *evidence.TimelineVerdict
	if sig.Kind == evidence.KindLocatorNotFound {
		v, status, note := b.compareTimeline(ctx, sig, in.HistoryRef)
		rec.TimelineStatus = status
		if note != "" {
			rec.Notes = append(rec.Notes, note)
		}
		if v != nil {
			rec.Timeline = v
			facts.Timeline = v
			if status == evidence.TimelinePreempted {
				cls.Category = v.Category
				cls.Path = evidence.PathTimelineOverride
			} else {
				corroborating = v
			}
		}
	}

	rec.Confidence = b.confidence(in, sig, facts, cls, adjusted, corroborating)

	res := validate.Validate(cls, facts)
	rec.Classification = res.Classification
	rec.Corrections = res.Corrections
	rec.Flags = res.Flags

	rec.FinalCategory, rec.FinalConfidence = b.resolve(rec, res)
	if rec.FinalCategory == evidence.CategoryInsufficientEvidence {
		rec.Notes = append(rec.Notes, fmt.Sprintf("final confidence %.2f below %.2f; not enough evidence for a call", rec.FinalConfidence, th.InsufficientEvidence))
	}

	span.SetAttributes(
		attribute.String("signature.kind", sig.Kind.String()),
		attribute.String("classification.path", string(rec.Classification.Path)),
		attribute.String("final.category", string(rec.FinalCategory)),
		attribute.Float64("final.confidence", rec.FinalConfidence),
	)
	b.log.Debug("record built",
		"id", in.ID, "kind", sig.Kind.String(), "category", rec.FinalCategory,
		"confidence", rec.FinalConfidence, "path", rec.Classification.Path)
	b.Recorder.ObserveRecord(rec, b.now().Sub(start))
	return rec
}

// compareTimeline runs the comparator for a locator failure, searching the
// test history at ref when the failure names one. It returns the verdict
// (nil when absent), the status and an optional note.
func (b *Builder) compareTimeline(ctx context.Context, sig evidence.FailureSignature, ref string) (*evidence.TimelineVerdict, evidence.TimelineStatus, string) {
	if sig.Locator == nil {
		return nil, evidence.TimelineNotApplicable, "no locator extracted; timeline comparison skipped"
	}
	if b.Comparator == nil {
		return nil, evidence.TimelineNotConfigured, "timeline comparison not configured; decision table used"
	}
	v, err := b.Comparator.Compare(ctx, *sig.Locator, ref)
	if err != nil {
		b.log.Warn("timeline lookup unavailable", "locator", *sig.Locator, "error", err)
		return nil, evidence.TimelineUnavailable, fmt.Sprintf("timeline comparison attempted but unavailable: %v", err)
	}
	if v.Confidence >= b.Thresholds.TimelinePreempt {
		return &v, evidence.TimelinePreempted, ""
	}
	return &v, evidence.TimelineCorroborating, ""
}

func (b *Builder) confidence(in evidence.FailureInput, sig evidence.FailureSignature, facts evidence.Facts,
	cls evidence.ClassificationResult, scores evidence.ScoreTriple, corroborating *evidence.TimelineVerdict,
) evidence.ConfidenceResult {
	chosen, ok := cls.Category.Cause()
	if !ok {
		chosen = scores.Argmax()
	}
	var supports *bool
	if facts.Timeline != nil {
		s := facts.Timeline.Category == cls.Category
		supports = &s
	}
	return scoring.Confidence(scores, scoring.Signals{
		Completeness: scoring.Completeness(in, sig),
		Agreement:    scoring.Agreement(chosen, scoring.Votes(facts, corroborating)),
		Certainty:    scoring.LocatorCertainty(facts.LocatorFound, scoring.ChangeKnown(facts)),
		History:      scoring.HistorySignal(supports, facts.RecentlyChanged),
	})
}

// resolve picks the final category and confidence. A pre-empting timeline
// verdict carries its own confidence; otherwise the calculator's value is
// used. Both are shifted by the validator's deltas.
func (b *Builder) resolve(rec evidence.EvidenceRecord, res validate.Result) (evidence.Category, float64) {
	th := b.Thresholds
	base := rec.Confidence.Value
	if rec.Classification.Path == evidence.PathTimelineOverride && rec.Timeline != nil {
		base = rec.Timeline.Confidence
	}
	conf := math.Round(clamp01(base+res.Delta())*1e6) / 1e6
	cat := rec.Classification.Category

	if conf < th.InsufficientEvidence {
		return evidence.CategoryInsufficientEvidence, conf
	}
	if rec.Classification.Path == evidence.PathDecisionTable && nearTie(rec.Classification.Scores, th) {
		return evidence.CategoryMixed, conf
	}
	return cat, conf
}

func nearTie(s evidence.ScoreTriple, th Thresholds) bool {
	r := s.Ranked()
	top, second := s[r[0]], s[r[1]]
	return top-second < th.MixedGap && second >= th.MixedFloor
}

func missingNotes(in evidence.FailureInput) []string {
	var notes []string
	if in.ErrorText == "" {
		notes = append(notes, "error text missing")
	}
	if in.StackTrace == "" {
		notes = append(notes, "stack trace missing")
	}
	if in.Environment == nil {
		notes = append(notes, "environment evidence missing; assumed healthy")
	}
	if in.Repository == nil {
		notes = append(notes, "repository evidence missing; locator status unknown")
	}
	if in.Console == nil {
		notes = append(notes, "console evidence missing")
	}
	return notes
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ErrCancelled is returned when a run is abandoned before every record is built.
var ErrCancelled = errors.New("run cancelled before all failures were evaluated")

// BuildRun evaluates every input in parallel and summarises the result. If
// ctx ends before all records are built the run is discarded: partial runs
// are never returned.
func (b *Builder) BuildRun(ctx context.Context, runID, name string, inputs []evidence.FailureInput) (evidence.Run, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx, span := b.tracer.Start(ctx, "triage.BuildRun", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.failures", len(inputs)),
	))
	defer span.End()

	workers := b.Thresholds.Workers
	if workers < 1 {
		workers = 1
	}
	b.log.Info("building run", "run_id", runID, "failures", len(inputs), "workers", workers)

	records := make([]evidence.EvidenceRecord, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = b.BuildRecord(gctx, inputs[i])
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return evidence.Run{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	run := evidence.Run{
		ID:        runID,
		Name:      name,
		CreatedAt: b.now().UTC(),
		Records:   records,
		Summary:   Summarize(records, b.Thresholds),
	}
	b.Recorder.ObserveRun(run.Summary)
	b.log.Info("run built", "run_id", runID, "overall", run.Summary.OverallCategory,
		"confidence", run.Summary.OverallConfidence)
	return run, nil
}
