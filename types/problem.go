package types

import "strings"

// Difficulty is the display label of a problem's difficulty as stored by the
// Problem Repository. Values outside the known set are kept verbatim.
type Difficulty string

// Known difficulty levels.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var difficultyAliases = map[string]Difficulty{
	"easy":    DifficultyEasy,
	"fácil":   DifficultyEasy,
	"facil":   DifficultyEasy,
	"medium":  DifficultyMedium,
	"medio":   DifficultyMedium,
	"hard":    DifficultyHard,
	"difícil": DifficultyHard,
	"dificil": DifficultyHard,
}

// ParseDifficulty normalizes a user supplied label. The boolean reports
// whether the label maps to one of the known levels; unknown labels are
// returned trimmed but otherwise untouched.
func ParseDifficulty(raw string) (Difficulty, bool) {
	trimmed := strings.TrimSpace(raw)
	if d, ok := difficultyAliases[strings.ToLower(trimmed)]; ok {
		return d, true
	}
	return Difficulty(trimmed), false
}

// IsKnown reports whether d is Easy, Medium or Hard.
func (d Difficulty) IsKnown() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TestCase represents a single input/output pair attached to a problem.
type TestCase struct {
	// Input is the raw text fed to the program's standard input.
	Input string `json:"input"`

	// ExpectedOutput is the exact text a correct solution must print.
	// Comparison is performed by the Evaluation Engine, not the client.
	ExpectedOutput string `json:"expected_output"`
}

// ProblemSummary is the list projection of a problem returned by the
// repository's list and filter endpoints. It omits the heavy fields.
type ProblemSummary struct {
	// ProblemID is the unique, immutable key of the problem.
	ProblemID string `json:"problem_id"`

	// Title is the human-readable name of the problem.
	Title string `json:"title"`

	// Difficulty is the display label of the problem's difficulty.
	Difficulty Difficulty `json:"difficulty"`

	// Tags are free-form labels. Order is preserved for display but is not
	// significant for matching.
	Tags []string `json:"tags"`
}

// ProblemDetail is the full problem record.
type ProblemDetail struct {
	// ProblemID is the unique, immutable key of the problem. The client never
	// generates it; uniqueness is enforced by the repository.
	ProblemID string `json:"problem_id"`

	// Title is the human-readable name of the problem.
	Title string `json:"title"`

	// Description contains the full problem statement.
	Description string `json:"description"`

	// Difficulty is the display label of the problem's difficulty.
	Difficulty Difficulty `json:"difficulty"`

	// Tags are free-form labels used for filtering.
	Tags []string `json:"tags"`

	// CodeStub is the starter source text shown to the user.
	CodeStub string `json:"code_stub"`

	// TestCases is the ordered list of test cases. It may legitimately be
	// empty.
	TestCases []TestCase `json:"test_cases"`
}

// Summary projects the detail onto its list view.
func (p ProblemDetail) Summary() ProblemSummary {
	return ProblemSummary{
		ProblemID:  p.ProblemID,
		Title:      p.Title,
		Difficulty: p.Difficulty,
		Tags:       append([]string(nil), p.Tags...),
	}
}

// Clone returns a deep copy so callers can hand the detail out without
// sharing the backing slices.
func (p ProblemDetail) Clone() ProblemDetail {
	out := p
	out.Tags = append([]string(nil), p.Tags...)
	out.TestCases = append([]TestCase(nil), p.TestCases...)
	return out
}

// HasTag reports whether the problem carries tag, ignoring case.
func (p ProblemSummary) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ProblemUpdate is the PUT body for a problem. The id travels in the URL
// only, so it is deliberately absent here.
type ProblemUpdate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        []string   `json:"tags"`
	CodeStub    string     `json:"code_stub"`
	TestCases   []TestCase `json:"test_cases"`
}

// UpdateFrom builds the PUT body from a full detail, dropping the id.
func UpdateFrom(p ProblemDetail) ProblemUpdate {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tcs := p.TestCases
	if tcs == nil {
		tcs = []TestCase{}
	}
	return ProblemUpdate{
		Title:       p.Title,
		Description: p.Description,
		Difficulty:  p.Difficulty,
		Tags:        tags,
		CodeStub:    p.CodeStub,
		TestCases:   tcs,
	}
}

// ProblemListResponse is the envelope of every repository list endpoint.
type ProblemListResponse struct {
	Problems []ProblemSummary `json:"problems"`
}

// MessageResponse acknowledges create, update and delete calls.
type MessageResponse struct {
	Message   string `json:"message"`
	ProblemID string `json:"problem_id,omitempty"`
}

// ErrorResponse is the error payload emitted by the backends.
type ErrorResponse struct {
	Error string `json:"error"`
}
