package render

import (
	"strings"
	"testing"
	"time"

	"github.com/codecoach/client/internal/storage"
	"github.com/codecoach/client/internal/summary"
	"github.com/codecoach/client/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func wrongAnswer() types.EvaluationResponse {
	return types.EvaluationResponse{
		SubmissionID:  "42",
		OverallStatus: types.VerdictWrongAnswer,
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 10, MemoryKb: types.IntPtr(256)},
			{ID: "2", Status: types.VerdictWrongAnswer, TimeMs: 15, RuntimeLog: "expected 3, got 4\n"},
		},
	}
}

func TestProblemList(t *testing.T) {
	out := ProblemList([]types.ProblemSummary{
		{ProblemID: "two-sum", Title: "Two Sum", Difficulty: types.DifficultyEasy, Tags: []string{"arrays", "hashing"}},
	})
	assert.Contains(t, out, "two-sum")
	assert.Contains(t, out, "Two Sum")
	assert.Contains(t, out, "arrays, hashing")

	assert.Contains(t, ProblemList(nil), "No problems found")
}

func TestProblemDetail(t *testing.T) {
	out := ProblemDetail(types.ProblemDetail{
		ProblemID:   "lis",
		Title:       "LIS",
		Description: "Find the longest increasing subsequence.",
		Difficulty:  types.DifficultyMedium,
		CodeStub:    "int solve();",
		TestCases:   []types.TestCase{{}, {}},
	})
	assert.Contains(t, out, "Medium")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "int solve();")
}

func TestEvaluationShowsFailingTests(t *testing.T) {
	resp := wrongAnswer()
	out := Evaluation(resp, summary.Summarize(resp), true)

	assert.Contains(t, out, "WrongAnswer")
	assert.Contains(t, out, "1/2 passed")
	assert.Contains(t, out, "15 ms")
	assert.Contains(t, out, "#2 WA")
	assert.NotContains(t, out, "256 KB")

	full := Evaluation(resp, summary.Summarize(resp), false)
	assert.Contains(t, full, "256 KB")
}

func TestTranscriptIsPlain(t *testing.T) {
	out := Transcript(wrongAnswer())
	assert.Equal(t, "Overall: WrongAnswer\nTest 1: Accepted (10 ms)\nTest 2: WrongAnswer (15 ms)\n  expected 3, got 4\n", out)
	assert.NotContains(t, out, "\x1b[")
}

func TestAnalysis(t *testing.T) {
	ok := Analysis(types.AnalysisResult{
		Success:       true,
		Complexity:    "O(n log n)",
		AlgorithmType: "divide and conquer",
		Details:       types.AnalysisDetails{IsRecursive: true, AverageRatio: 2.1},
		Suggestions:   []string{"use a heap"},
	})
	assert.Contains(t, ok, "O(n log n)")
	assert.Contains(t, ok, "2.10")
	assert.Contains(t, ok, "- use a heap")

	failed := Analysis(types.FailedAnalysis("HTTP Error 500: boom"))
	assert.Contains(t, failed, "HTTP Error 500: boom")
}

func TestJournalEntries(t *testing.T) {
	id := uuid.New()
	entries := []types.JournalEntry{
		{ID: id, Kind: types.EntryEvaluation, ProblemID: "two-sum", Verdict: types.VerdictAccepted, Passed: 2, Total: 2, CreatedAt: time.Now()},
		{ID: uuid.New(), Kind: types.EntryAnalysis, ProblemID: "two-sum", AnalysisError: "timeout", CreatedAt: time.Now()},
	}
	out := JournalEntries(entries)
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, "Accepted 2/2")
	assert.Contains(t, out, "failed: timeout")
	assert.Contains(t, JournalEntries(nil), "No journal entries")

	detail := JournalEntry(types.JournalEntry{ID: id, Kind: types.EntryEvaluation, FailingTests: []string{"2", "5"}, ReportKey: "reports/x/y.json"})
	assert.Contains(t, detail, "2, 5")
	assert.Contains(t, detail, "reports/x/y.json")
}

func TestUnknownVerdictPassesThrough(t *testing.T) {
	assert.True(t, strings.Contains(Verdict("PartialAccepted"), "PartialAccepted"))
}

func TestReports(t *testing.T) {
	assert.Contains(t, Reports(nil), "No archived reports.")

	out := Reports([]storage.ObjectInfo{
		{Key: "reports/two-sum/a.json", Size: 512, LastModified: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	})
	assert.Contains(t, out, "reports/two-sum/a.json")
	assert.Contains(t, out, "512 B")
}

func TestTableHeaderPrecedesRows(t *testing.T) {
	out := ProblemList([]types.ProblemSummary{
		{ProblemID: "lis", Title: "LIS", Difficulty: types.DifficultyMedium},
	})
	header := strings.Index(out, "Difficulty")
	row := strings.Index(out, "lis")
	assert.True(t, header >= 0 && row > header, out)
}
