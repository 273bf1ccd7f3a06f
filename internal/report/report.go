// Package report renders runs and records for people: terminal tables,
// Markdown, or indented JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"triage/internal/display"
	"triage/internal/evidence"
	"triage/internal/format"
	"triage/internal/store"
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Run writes the run header, the category counts and one row per record.
// overrides may be nil.
func Run(w io.Writer, run *evidence.Run, overrides []store.Override, m format.Mode) error {
	sum := run.Summary
	fmt.Fprintf(w, "Run %s", run.ID)
	if run.Name != "" {
		fmt.Fprintf(w, " (%s)", run.Name)
	}
	fmt.Fprintf(w, " at %s\n", format.FmtTime(run.CreatedAt))
	fmt.Fprintf(w, "Overall: %s, confidence %s (%s)\n\n",
		display.Category(sum.OverallCategory), format.FmtConfidence(sum.OverallConfidence),
		evidence.LevelFor(sum.OverallConfidence))

	counts := format.NewTable(m)
	counts.Header("Category", "Failures", "Share")
	for _, c := range evidence.Categories {
		n := sum.Counts[c]
		if n == 0 {
			continue
		}
		counts.Row(display.Category(c), n, format.FmtPercent(float64(n)/float64(max(sum.Total, 1))))
	}
	counts.Footer("TOTAL", sum.Total, "")
	counts.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
	)
	fmt.Fprintln(w, counts.String())

	latest := store.Latest(overrides)
	recs := format.NewTable(m)
	recs.Header("ID", "Test", "Signature", "Verdict", "Conf", "Decided by", "Rules", "Override")
	for _, r := range run.Records {
		ov := "-"
		if o, ok := latest[r.ID]; ok {
			ov = display.Category(o.Category)
		}
		recs.Row(
			r.ID,
			format.Truncate(r.TestName, 40),
			display.Kind(r.Signature.Kind),
			display.Category(r.FinalCategory),
			format.FmtConfidence(r.FinalConfidence),
			display.Path(r.Classification.Path),
			display.RuleList(append(append([]evidence.Correction{}, r.Corrections...), r.Flags...)),
			ov,
		)
	}
	recs.Columns(
		format.ColumnConfig{Number: 2, MaxWidth: 40},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
		format.ColumnConfig{Number: 7, MaxWidth: 48},
	)
	fmt.Fprintln(w, recs.String())

	if len(sum.Notes) > 0 {
		fmt.Fprintln(w, "Notes:")
		for _, n := range sum.Notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}
	return nil
}

// Runs writes the run listing.
func Runs(w io.Writer, runs []store.RunInfo, m format.Mode) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs stored.")
		return err
	}
	tb := format.NewTable(m)
	tb.Header("Run", "Name", "Created", "Failures", "Overall", "Conf")
	for _, r := range runs {
		tb.Row(r.ID, r.Name, format.FmtTime(r.CreatedAt), r.Total,
			display.Category(r.OverallCategory), format.FmtConfidence(r.OverallConfidence))
	}
	tb.Columns(
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 6, Align: format.AlignRight},
	)
	_, err := fmt.Fprintln(w, tb.String())
	return err
}

// Record writes the full fact sheet of one record. override may be nil.
func Record(w io.Writer, r *evidence.EvidenceRecord, override *store.Override, m format.Mode) error {
	fmt.Fprintf(w, "Failure %s", r.ID)
	if r.TestName != "" {
		fmt.Fprintf(w, ": %s", r.TestName)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Verdict: %s, confidence %s (%s), decided by %s\n",
		display.CategoryWithCode(r.FinalCategory), format.FmtConfidence(r.FinalConfidence),
		evidence.LevelFor(r.FinalConfidence), display.Path(r.Classification.Path))
	if override != nil {
		fmt.Fprintf(w, "Override: %s (%s)\n", display.CategoryWithCode(override.Category), override.Reason)
	}

	sig := r.Signature
	fmt.Fprintf(w, "Signature: %s", display.Kind(sig.Kind))
	if sig.HasLocation() {
		fmt.Fprintf(w, " at %s:%d", sig.File, sig.Line)
	}
	if sig.Locator != nil {
		fmt.Fprintf(w, ", locator %s", *sig.Locator)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	scores := format.NewTable(m)
	scores.Header("Cause", "Base", "Adjusted")
	for _, c := range evidence.Causes {
		scores.Row(display.Category(c.Category()), format.FmtConfidence(r.BaseScores[c]),
			format.FmtConfidence(r.Classification.Scores[c]))
	}
	fmt.Fprintln(w, scores.String())

	if len(r.Factors) > 0 {
		tb := format.NewTable(m)
		tb.Header("Factor", "Towards", "Delta")
		for _, f := range r.Factors {
			tb.Row(display.Rule(f.Name), display.Category(f.Into.Category()), format.FmtDelta(f.Delta))
		}
		fmt.Fprintln(w, tb.String())
	}

	conf := r.Confidence
	sub := format.NewTable(m)
	sub.Header("Signal", "Value")
	sub.Row("separation", format.FmtConfidence(conf.Separation))
	sub.Row("completeness", format.FmtConfidence(conf.Completeness))
	sub.Row("agreement", format.FmtConfidence(conf.Agreement))
	sub.Row("certainty", format.FmtConfidence(conf.Certainty))
	sub.Row("history", format.FmtConfidence(conf.History))
	sub.Footer("confidence", format.FmtConfidence(conf.Value))
	fmt.Fprintln(w, sub.String())

	fmt.Fprintf(w, "Timeline: %s", display.TimelineStatus(r.TimelineStatus))
	if v := r.Timeline; v != nil {
		fmt.Fprintf(w, ", %s -> %s at %s", display.Reason(v.ReasonCode), display.Category(v.Category),
			format.FmtConfidence(v.Confidence))
	}
	fmt.Fprintln(w)

	rules := append(append([]evidence.Correction{}, r.Corrections...), r.Flags...)
	if len(rules) > 0 {
		tb := format.NewTable(m)
		tb.Header("Rule", "Kind", "From", "To", "Delta", "Reason")
		for _, c := range rules {
			tb.Row(display.Rule(c.Rule), string(c.Kind), string(c.From), string(c.To), format.FmtDelta(c.ConfidenceDelta), c.Reason)
		}
		tb.Columns(format.ColumnConfig{Number: 6, MaxWidth: 60})
		fmt.Fprintln(w, tb.String())
	}

	var notes []string
	notes = append(notes, r.Notes...)
	notes = append(notes, conf.Warnings...)
	if len(notes) > 0 {
		fmt.Fprintln(w, "Notes:")
		fmt.Fprintln(w, "  - "+strings.Join(notes, "\n  - "))
	}
	return nil
}
