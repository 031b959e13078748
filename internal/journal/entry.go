package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/codecoach/client/internal/summary"
	"github.com/codecoach/client/types"
)

// FromEvaluation builds the record of a finished submission.
func FromEvaluation(problemID, language, source string, resp types.EvaluationResponse) (Record, error) {
	s := summary.Summarize(resp)
	failing := make([]string, 0, len(s.FailingTests))
	for _, tr := range s.FailingTests {
		failing = append(failing, tr.ID)
	}

	report, err := json.Marshal(resp)
	if err != nil {
		return Record{}, fmt.Errorf("encode evaluation report: %w", err)
	}
	return Record{
		Entry: types.JournalEntry{
			Kind:         types.EntryEvaluation,
			ProblemID:    problemID,
			Language:     language,
			SourceSHA256: hashSource(source),
			Verdict:      s.OverallStatus,
			MaxTimeMs:    s.MaxTimeMs,
			MaxMemoryKb:  s.MaxMemoryKb,
			Passed:       s.Passed,
			Total:        s.Total,
			FailingTests: failing,
		},
		Report: report,
	}, nil
}

// FromAnalysis builds the record of a finished analysis. Failed analyses are
// recorded too.
func FromAnalysis(problemID, source string, res types.AnalysisResult) (Record, error) {
	report, err := json.Marshal(res)
	if err != nil {
		return Record{}, fmt.Errorf("encode analysis report: %w", err)
	}
	return Record{
		Entry: types.JournalEntry{
			Kind:            types.EntryAnalysis,
			ProblemID:       problemID,
			SourceSHA256:    hashSource(source),
			FailingTests:    []string{},
			AnalysisSuccess: res.Success,
			Complexity:      res.Complexity,
			AnalysisError:   res.Error,
		},
		Report: report,
	}, nil
}

func hashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
