package types

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind tells evaluation entries from analysis entries.
type EntryKind string

const (
	EntryEvaluation EntryKind = "evaluation"
	EntryAnalysis   EntryKind = "analysis"
)

// JournalEntry is the durable record of one completed submission or
// analysis.
type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	Kind      EntryKind `json:"kind"`
	ProblemID string    `json:"problem_id"`
	Language  string    `json:"language,omitempty"`

	// SourceSHA256 identifies the submitted code without storing it.
	SourceSHA256 string `json:"source_sha256"`

	Verdict      Verdict  `json:"verdict,omitempty"`
	MaxTimeMs    int      `json:"max_time_ms"`
	MaxMemoryKb  int      `json:"max_memory_kb"`
	Passed       int      `json:"passed"`
	Total        int      `json:"total"`
	FailingTests []string `json:"failing_tests"`

	AnalysisSuccess bool   `json:"analysis_success,omitempty"`
	Complexity      string `json:"complexity,omitempty"`
	AnalysisError   string `json:"analysis_error,omitempty"`

	// ReportKey is the object key of the archived full report, empty when
	// no archive is configured.
	ReportKey string    `json:"report_key,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// JournalFilter narrows a journal listing.
type JournalFilter struct {
	ProblemID string
	Kind      EntryKind
	Limit     int
}
