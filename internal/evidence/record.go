package evidence

import "time"

// ClassificationResult is the category call with the scores behind it.
type ClassificationResult struct {
	Category Category    `json:"category"`
	Scores   ScoreTriple `json:"scores"`
	Path     Path        `json:"path"`
}

// ConfidenceResult is the combined confidence and the sub-scores that made it.
type ConfidenceResult struct {
	Value        float64  `json:"value"`
	Level        Level    `json:"level"`
	Separation   float64  `json:"separation"`
	Completeness float64  `json:"completeness"`
	Agreement    float64  `json:"agreement"`
	Certainty    float64  `json:"certainty"`
	History      float64  `json:"history"`
	Warnings     []string `json:"warnings,omitempty"`
}

// ReasonCode is the terminal state of a timeline comparison.
type ReasonCode string

const (
	ReasonNeverExisted                  ReasonCode = "never_existed"
	ReasonRemovedStillReferenced        ReasonCode = "removed_still_referenced"
	ReasonProductChangedAfterAutomation ReasonCode = "product_changed_after_automation"
	ReasonAutomationChangedAfterProduct ReasonCode = "automation_changed_after_product"
)

// TimelineVerdict is the outcome of comparing test and product change history.
type TimelineVerdict struct {
	Category       Category   `json:"category"`
	Confidence     float64    `json:"confidence"`
	ReasonCode     ReasonCode `json:"reason_code"`
	AutomationDate *time.Time `json:"automation_date,omitempty"`
	ProductDate    *time.Time `json:"product_date,omitempty"`
	GapDays        int        `json:"gap_days,omitempty"`
}

// TimelineStatus records whether the timeline path ran and how it ended.
type TimelineStatus string

const (
	TimelineNotApplicable TimelineStatus = "not_applicable"
	TimelineNotConfigured TimelineStatus = "not_configured"
	TimelineUnavailable   TimelineStatus = "unavailable"
	TimelineCorroborating TimelineStatus = "corroborating"
	TimelinePreempted     TimelineStatus = "preempted"
)

// CorrectionKind separates category-changing overrides from review flags.
type CorrectionKind string

const (
	KindOverride CorrectionKind = "override"
	KindFlag     CorrectionKind = "flag"
)

// Correction is one validator rule that fired.
type Correction struct {
	Rule            string         `json:"rule"`
	Kind            CorrectionKind `json:"kind"`
	From            Category       `json:"from"`
	To              Category       `json:"to"`
	Reason          string         `json:"reason"`
	ConfidenceDelta float64        `json:"confidence_delta,omitempty"`
}

// AppliedFactor is one factor-adjuster delta that fired.
type AppliedFactor struct {
	Name  string  `json:"name"`
	Into  Cause   `json:"into"`
	Delta float64 `json:"delta"`
}

// EvidenceRecord is the immutable fact sheet for one failure.
type EvidenceRecord struct {
	ID              string               `json:"id"`
	TestName        string               `json:"test_name"`
	ErrorText       string               `json:"error_text"`
	StackTrace      string               `json:"stack_trace,omitempty"`
	Signature       FailureSignature     `json:"signature"`
	Environment     *EnvironmentEvidence `json:"environment"`
	Repository      *RepositoryEvidence  `json:"repository"`
	Console         *ConsoleEvidence     `json:"console"`
	Flakiness       *FlakinessEvidence   `json:"flakiness,omitempty"`
	BaseScores      ScoreTriple          `json:"base_scores"`
	Factors         []AppliedFactor      `json:"factors,omitempty"`
	Classification  ClassificationResult `json:"classification"`
	Confidence      ConfidenceResult     `json:"confidence"`
	Timeline        *TimelineVerdict     `json:"timeline,omitempty"`
	TimelineStatus  TimelineStatus       `json:"timeline_status"`
	Corrections     []Correction         `json:"corrections"`
	Flags           []Correction         `json:"flags"`
	Notes           []string             `json:"notes,omitempty"`
	FinalCategory   Category             `json:"final_category"`
	FinalConfidence float64              `json:"final_confidence"`
}

// RunSummary aggregates the records of one run.
type RunSummary struct {
	Total             int              `json:"total"`
	Counts            map[Category]int `json:"counts"`
	OverallCategory   Category         `json:"overall_category"`
	OverallConfidence float64          `json:"overall_confidence"`
	Overrides         int              `json:"overrides"`
	Flags             int              `json:"flags"`
	TimelineOverrides int              `json:"timeline_overrides"`
	Notes             []string         `json:"notes,omitempty"`
}

// Run is a batch of records plus their summary.
type Run struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Records   []EvidenceRecord `json:"records"`
	Summary   RunSummary       `json:"summary"`
}
