package summary

import (
	"testing"

	"github.com/codecoach/client/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeRecomputesWithoutEngineMaxima(t *testing.T) {
	resp := types.EvaluationResponse{
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 120},
			{ID: "2", Status: types.VerdictWrongAnswer, TimeMs: 340},
		},
	}

	s := Summarize(resp)
	assert.NotEqual(t, types.VerdictAccepted, s.OverallStatus)
	assert.Equal(t, types.VerdictWrongAnswer, s.OverallStatus)
	assert.Equal(t, 340, s.MaxTimeMs)
	assert.Equal(t, 0, s.MaxMemoryKb)
	require.Len(t, s.FailingTests, 1)
	assert.Equal(t, resp.Tests[1], s.FailingTests[0])
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 2, s.Total)
}

func TestSummarizeEngineValuesTakePrecedence(t *testing.T) {
	resp := types.EvaluationResponse{
		OverallStatus: types.VerdictAccepted,
		MaxTimeMs:     types.IntPtr(999),
		MaxMemoryKb:   types.IntPtr(2048),
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 120, MemoryKb: types.IntPtr(512)},
			{ID: "2", Status: types.VerdictWrongAnswer, TimeMs: 340, MemoryKb: types.IntPtr(640)},
		},
	}

	s := Summarize(resp)
	assert.Equal(t, types.VerdictAccepted, s.OverallStatus)
	assert.Equal(t, 999, s.MaxTimeMs)
	assert.Equal(t, 2048, s.MaxMemoryKb)
	assert.Len(t, s.FailingTests, 1)
}

func TestSummarizeMemoryFallback(t *testing.T) {
	resp := types.EvaluationResponse{
		OverallStatus: types.VerdictAccepted,
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, MemoryKb: types.IntPtr(700)},
			{ID: "2", Status: types.VerdictAccepted},
			{ID: "3", Status: types.VerdictAccepted, MemoryKb: types.IntPtr(300)},
		},
	}

	assert.Equal(t, 700, Summarize(resp).MaxMemoryKb)
}

func TestSummarizeIsIdempotentAndPure(t *testing.T) {
	resp := types.EvaluationResponse{
		OverallStatus: types.VerdictRuntimeError,
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictRuntimeError, TimeMs: 3, MemoryKb: types.IntPtr(10), RuntimeLog: "segfault"},
			{ID: "2", Status: types.VerdictAccepted, TimeMs: 2},
		},
	}

	first := Summarize(resp)
	second := Summarize(resp)
	assert.Equal(t, first, second)

	*first.FailingTests[0].MemoryKb = 99
	first.FailingTests[0].RuntimeLog = "mutated"
	assert.Equal(t, 10, *resp.Tests[0].MemoryKb)
	assert.Equal(t, "segfault", resp.Tests[0].RuntimeLog)
}

func TestSummarizeWorstPicksFirstOfHighestSeverity(t *testing.T) {
	resp := types.EvaluationResponse{
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictWrongAnswer},
			{ID: "2", Status: types.VerdictTimeLimitExceeded},
			{ID: "3", Status: types.VerdictAccepted},
			{ID: "4", Status: types.VerdictTimeLimitExceeded},
		},
	}

	s := Summarize(resp)
	require.NotNil(t, s.Worst)
	assert.Equal(t, "2", s.Worst.ID)
	assert.Equal(t, types.VerdictTimeLimitExceeded, s.OverallStatus)

	ids := make([]string, 0, len(s.FailingTests))
	for _, tr := range s.FailingTests {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"1", "2", "4"}, ids)
}

func TestSummarizeUnknownVerdictsPassThrough(t *testing.T) {
	resp := types.EvaluationResponse{
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted},
			{ID: "2", Status: "PartialAccepted"},
		},
	}

	s := Summarize(resp)
	assert.Equal(t, types.Verdict("PartialAccepted"), s.OverallStatus)
	assert.Len(t, s.FailingTests, 1)
}

func TestSummarizeAllAccepted(t *testing.T) {
	resp := types.EvaluationResponse{
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 1},
			{ID: "2", Status: types.VerdictAccepted, TimeMs: 5},
		},
	}

	s := Summarize(resp)
	assert.Equal(t, types.VerdictAccepted, s.OverallStatus)
	assert.Empty(t, s.FailingTests)
	assert.NotNil(t, s.FailingTests)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(types.EvaluationResponse{OverallStatus: types.VerdictCompileError, CompileLog: "error: expected ';'"})
	assert.Equal(t, types.VerdictCompileError, s.OverallStatus)
	assert.Nil(t, s.Worst)
	assert.Zero(t, s.Total)
}

func TestByStatus(t *testing.T) {
	resp := types.EvaluationResponse{
		Tests: []types.TestResult{
			{Status: types.VerdictAccepted},
			{Status: types.VerdictWrongAnswer},
			{Status: types.VerdictAccepted},
		},
	}

	assert.Equal(t, map[types.Verdict]int{
		types.VerdictAccepted:    2,
		types.VerdictWrongAnswer: 1,
	}, ByStatus(resp))
}
