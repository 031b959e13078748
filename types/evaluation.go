package types

import (
	"encoding/json"
	"strings"
)

// DefaultTimeLimitMs is the per-test time limit used when a submission does
// not specify one.
const DefaultTimeLimitMs = 2000

// Verdict is the outcome of judging a submission or a single test. The set
// of values is open: strings the client does not recognize are kept as-is so
// newer backends can introduce statuses without breaking display.
type Verdict string

// Known verdict values.
const (
	VerdictAccepted            Verdict = "Accepted"
	VerdictWrongAnswer         Verdict = "WrongAnswer"
	VerdictRuntimeError        Verdict = "RuntimeError"
	VerdictTimeLimitExceeded   Verdict = "TimeLimitExceeded"
	VerdictMemoryLimitExceeded Verdict = "MemoryLimitExceeded"
	VerdictCompileError        Verdict = "CompileError"

	// Emitted by some engine versions in place of CompileError.
	VerdictCompilationError Verdict = "CompilationError"
)

// IsKnown reports whether v belongs to the client's verdict enumeration.
func (v Verdict) IsKnown() bool {
	switch v {
	case VerdictAccepted, VerdictWrongAnswer, VerdictRuntimeError,
		VerdictTimeLimitExceeded, VerdictMemoryLimitExceeded, VerdictCompileError:
		return true
	}
	return false
}

// IsAccepted reports whether v is Accepted.
func (v Verdict) IsAccepted() bool {
	return v == VerdictAccepted
}

// Severity ranks verdicts for "worst test" display. Accepted is 0, a missing
// verdict is -1, unknown strings sit just above WrongAnswer.
func (v Verdict) Severity() int {
	switch v {
	case "":
		return -1
	case VerdictAccepted:
		return 0
	case VerdictWrongAnswer:
		return 1
	case VerdictTimeLimitExceeded:
		return 3
	case VerdictMemoryLimitExceeded:
		return 4
	case VerdictRuntimeError:
		return 5
	case VerdictCompileError, VerdictCompilationError:
		return 6
	default:
		return 2
	}
}

// Short returns the compact label used in tables and logs.
func (v Verdict) Short() string {
	switch v {
	case VerdictAccepted:
		return "AC"
	case VerdictWrongAnswer:
		return "WA"
	case VerdictRuntimeError:
		return "RE"
	case VerdictTimeLimitExceeded:
		return "TLE"
	case VerdictMemoryLimitExceeded:
		return "MLE"
	case VerdictCompileError, VerdictCompilationError:
		return "CE"
	case "":
		return "?"
	default:
		return string(v)
	}
}

// EvaluationRequest is the body of POST /submissions.
type EvaluationRequest struct {
	// ProblemID identifies the problem whose test cases are used.
	ProblemID string `json:"problem_id"`

	// Language is the identifier of the programming language, e.g. "cpp".
	Language string `json:"language"`

	// SourceCode is the submitted program text.
	SourceCode string `json:"source_code"`

	// TimeLimitMs is the per-test time limit in milliseconds.
	TimeLimitMs int `json:"time_limit_ms"`
}

// EvaluationResponse is the multi-test verdict returned by the Evaluation
// Engine. It is received once per submission and never modified.
type EvaluationResponse struct {
	// SubmissionID is the engine-assigned identifier of the submission.
	SubmissionID string `json:"submission_id"`

	// OverallStatus is the authoritative verdict across all tests.
	OverallStatus Verdict `json:"overall_status"`

	// CompileLog is the compiler output. It may be empty.
	CompileLog string `json:"compile_log"`

	// MaxTimeMs is the engine-reported maximum test time. Older engines omit
	// it, in which case it is nil.
	MaxTimeMs *int `json:"max_time_ms,omitempty"`

	// MaxMemoryKb is the engine-reported peak memory, nil when omitted.
	MaxMemoryKb *int `json:"max_memory_kb,omitempty"`

	// Tests holds the per-test results in engine order.
	Tests []TestResult `json:"tests"`
}

// TestResult is the outcome of a single test case.
type TestResult struct {
	// ID is the test identifier, stable per problem.
	ID string `json:"id"`

	// Status is the per-test verdict.
	Status Verdict `json:"status"`

	// TimeMs is the measured execution time.
	TimeMs int `json:"time_ms"`

	// MemoryKb is the peak memory, nil when the engine does not report it.
	MemoryKb *int `json:"memory_kb,omitempty"`

	// RuntimeLog is the captured stderr, usually populated only on failure.
	RuntimeLog string `json:"runtime_log"`
}

// evaluationWire accepts both the snake_case and the camelCase spelling of
// every field. encoding/json already matches keys case-insensitively.
type evaluationWire struct {
	SubmissionID    json.RawMessage   `json:"submission_id"`
	SubmissionIDAlt json.RawMessage   `json:"submissionId"`
	OverallStatus   *Verdict          `json:"overall_status"`
	OverallAlt      *Verdict          `json:"overallStatus"`
	CompileLog      *string           `json:"compile_log"`
	CompileLogAlt   *string           `json:"compileLog"`
	MaxTimeMs       *int              `json:"max_time_ms"`
	MaxTimeMsAlt    *int              `json:"maxTimeMs"`
	MaxMemoryKb     *int              `json:"max_memory_kb"`
	MaxMemoryKbAlt  *int              `json:"maxMemoryKb"`
	Tests           []json.RawMessage `json:"tests"`
}

// UnmarshalJSON tolerates field-name drift between engine versions and
// numeric submission ids.
func (r *EvaluationResponse) UnmarshalJSON(data []byte) error {
	var w evaluationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := EvaluationResponse{
		SubmissionID:  rawID(w.SubmissionID),
		OverallStatus: deref(first(w.OverallStatus, w.OverallAlt)),
		CompileLog:    deref(first(w.CompileLog, w.CompileLogAlt)),
		MaxTimeMs:     first(w.MaxTimeMs, w.MaxTimeMsAlt),
		MaxMemoryKb:   first(w.MaxMemoryKb, w.MaxMemoryKbAlt),
	}
	if out.SubmissionID == "" {
		out.SubmissionID = rawID(w.SubmissionIDAlt)
	}
	if w.Tests != nil {
		out.Tests = make([]TestResult, 0, len(w.Tests))
		for _, raw := range w.Tests {
			var tr TestResult
			if err := json.Unmarshal(raw, &tr); err != nil {
				return err
			}
			out.Tests = append(out.Tests, tr)
		}
	}
	*r = out
	return nil
}

type testResultWire struct {
	ID            json.RawMessage `json:"id"`
	Status        *Verdict        `json:"status"`
	TimeMs        *int            `json:"time_ms"`
	TimeMsAlt     *int            `json:"timeMs"`
	MemoryKb      *int            `json:"memory_kb"`
	MemoryKbAlt   *int            `json:"memoryKb"`
	RuntimeLog    *string         `json:"runtime_log"`
	RuntimeLogAlt *string         `json:"runtimeLog"`
}

// UnmarshalJSON tolerates field-name drift and numeric test ids.
func (t *TestResult) UnmarshalJSON(data []byte) error {
	var w testResultWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = TestResult{
		ID:         rawID(w.ID),
		Status:     deref(w.Status),
		TimeMs:     deref(first(w.TimeMs, w.TimeMsAlt)),
		MemoryKb:   first(w.MemoryKb, w.MemoryKbAlt),
		RuntimeLog: deref(first(w.RuntimeLog, w.RuntimeLogAlt)),
	}
	return nil
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func first[T any](values ...*T) *T {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func clonePtr(v *int) *int {
	if v == nil {
		return nil
	}
	return IntPtr(*v)
}

// Clone returns a copy that shares no pointers with tr.
func (tr TestResult) Clone() TestResult {
	tr.MemoryKb = clonePtr(tr.MemoryKb)
	return tr
}

// Clone returns a deep copy of the response, including every test.
func (r EvaluationResponse) Clone() EvaluationResponse {
	r.MaxTimeMs = clonePtr(r.MaxTimeMs)
	r.MaxMemoryKb = clonePtr(r.MaxMemoryKb)
	if r.Tests != nil {
		tests := make([]TestResult, len(r.Tests))
		for i, tr := range r.Tests {
			tests[i] = tr.Clone()
		}
		r.Tests = tests
	}
	return r
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// IntPtr returns a pointer to v. It keeps test fixtures and optional field
// assignments short.
func IntPtr(v int) *int {
	return &v
}
