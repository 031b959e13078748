// Package summary condenses an evaluation response for display.
package summary

import "github.com/codecoach/client/types"

// Summary is the presentation view of one EvaluationResponse.
type Summary struct {
	OverallStatus types.Verdict
	MaxTimeMs     int
	MaxMemoryKb   int

	// FailingTests are the non-accepted tests in engine order.
	FailingTests []types.TestResult

	Passed int
	Total  int

	// Worst is the first test of the highest severity, nil when there are
	// no tests.
	Worst *types.TestResult
}

// Summarize never modifies resp and returns equal values for equal inputs.
//
// Engine-supplied maxima and overall status take precedence. The per-test
// fallback exists for older engines that omit them.
func Summarize(resp types.EvaluationResponse) Summary {
	s := Summary{
		Total:        len(resp.Tests),
		FailingTests: []types.TestResult{},
	}

	var maxTime, maxMem int
	worst := -1
	for i, tr := range resp.Tests {
		maxTime = max(maxTime, tr.TimeMs)
		if tr.MemoryKb != nil {
			maxMem = max(maxMem, *tr.MemoryKb)
		}
		if tr.Status.IsAccepted() {
			s.Passed++
		} else {
			s.FailingTests = append(s.FailingTests, tr.Clone())
		}
		if worst < 0 || tr.Status.Severity() > resp.Tests[worst].Status.Severity() {
			worst = i
		}
	}
	if worst >= 0 {
		w := resp.Tests[worst].Clone()
		s.Worst = &w
	}

	s.MaxTimeMs = maxTime
	if resp.MaxTimeMs != nil {
		s.MaxTimeMs = *resp.MaxTimeMs
	}
	s.MaxMemoryKb = maxMem
	if resp.MaxMemoryKb != nil {
		s.MaxMemoryKb = *resp.MaxMemoryKb
	}

	s.OverallStatus = resp.OverallStatus
	if s.OverallStatus == "" {
		s.OverallStatus = fallbackStatus(resp.Tests, worst)
	}
	return s
}

// fallbackStatus derives a verdict from the tests when the engine sent none:
// the most severe test status, which is Accepted only when every test passed.
func fallbackStatus(tests []types.TestResult, worst int) types.Verdict {
	if worst < 0 {
		return ""
	}
	return tests[worst].Status
}

// ByStatus counts tests per verdict.
func ByStatus(resp types.EvaluationResponse) map[types.Verdict]int {
	counts := make(map[types.Verdict]int, len(resp.Tests))
	for _, tr := range resp.Tests {
		counts[tr.Status]++
	}
	return counts
}

// Clone returns a copy that shares no memory with s.
func (s Summary) Clone() Summary {
	failing := make([]types.TestResult, len(s.FailingTests))
	for i, tr := range s.FailingTests {
		failing[i] = tr.Clone()
	}
	s.FailingTests = failing
	if s.Worst != nil {
		w := s.Worst.Clone()
		s.Worst = &w
	}
	return s
}
