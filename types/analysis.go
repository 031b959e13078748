package types

import "encoding/json"

// AnalysisRequest is the body of POST /api/analyze. The analyzer speaks
// camelCase on the wire.
type AnalysisRequest struct {
	// Code is the source code to analyze.
	Code string `json:"code"`

	// ProblemName is an optional context hint.
	ProblemName string `json:"problemName"`

	// ConsoleOutput is an optional transcript of a prior run, used by the
	// analyzer as hybrid (static + empirical) context.
	ConsoleOutput string `json:"consoleOutput"`
}

// AnalysisDetails carries the static and dynamic metrics behind a
// complexity estimate.
type AnalysisDetails struct {
	// NestedLoops is the deepest loop nesting found.
	NestedLoops int `json:"nestedLoops"`

	// IsRecursive reports whether recursion was detected.
	IsRecursive bool `json:"isRecursive"`

	// AverageRatio is the mean growth ratio between timed samples.
	AverageRatio float64 `json:"averageRatio"`

	// ExecutionTimes are the empirical samples used for the estimate.
	ExecutionTimes []float64 `json:"executionTimes"`
}

// AnalysisResult is the analyzer's reply. When Success is false only Error
// is meaningful; when it is true the complexity fields are populated.
// Consumers must check Success before reading anything else.
type AnalysisResult struct {
	Success       bool            `json:"success"`
	Complexity    string          `json:"complexity,omitempty"`
	AlgorithmType string          `json:"algorithmType,omitempty"`
	Details       AnalysisDetails `json:"details"`
	Explanation   string          `json:"explanation,omitempty"`
	Suggestions   []string        `json:"suggestions,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Clone returns a copy that shares no slices with a.
func (a AnalysisResult) Clone() AnalysisResult {
	a.Suggestions = append([]string(nil), a.Suggestions...)
	a.Details.ExecutionTimes = append([]float64(nil), a.Details.ExecutionTimes...)
	return a
}

// FailedAnalysis builds the uniform failure shape.
func FailedAnalysis(message string) AnalysisResult {
	return AnalysisResult{Success: false, Error: message}
}

type analysisWire struct {
	Success          *bool            `json:"success"`
	Complexity       *string          `json:"complexity"`
	AlgorithmType    *string          `json:"algorithmType"`
	AlgorithmTypeAlt *string          `json:"algorithm_type"`
	Details          *AnalysisDetails `json:"details"`
	Explanation      *string          `json:"explanation"`
	Suggestions      []string         `json:"suggestions"`
	Error            *string          `json:"error"`
}

// UnmarshalJSON accepts both camelCase and snake_case field names.
func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	var w analysisWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = AnalysisResult{
		Success:       deref(w.Success),
		Complexity:    deref(w.Complexity),
		AlgorithmType: deref(first(w.AlgorithmType, w.AlgorithmTypeAlt)),
		Details:       deref(w.Details),
		Explanation:   deref(w.Explanation),
		Suggestions:   w.Suggestions,
		Error:         deref(w.Error),
	}
	return nil
}

type detailsWire struct {
	NestedLoops       *int      `json:"nestedLoops"`
	NestedLoopsAlt    *int      `json:"nested_loops"`
	IsRecursive       *bool     `json:"isRecursive"`
	IsRecursiveAlt    *bool     `json:"is_recursive"`
	AverageRatio      *float64  `json:"averageRatio"`
	AverageRatioAlt   *float64  `json:"average_ratio"`
	ExecutionTimes    []float64 `json:"executionTimes"`
	ExecutionTimesAlt []float64 `json:"execution_times"`
}

// UnmarshalJSON accepts both camelCase and snake_case field names.
func (d *AnalysisDetails) UnmarshalJSON(data []byte) error {
	var w detailsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	times := w.ExecutionTimes
	if times == nil {
		times = w.ExecutionTimesAlt
	}
	*d = AnalysisDetails{
		NestedLoops:    deref(first(w.NestedLoops, w.NestedLoopsAlt)),
		IsRecursive:    deref(first(w.IsRecursive, w.IsRecursiveAlt)),
		AverageRatio:   deref(first(w.AverageRatio, w.AverageRatioAlt)),
		ExecutionTimes: times,
	}
	return nil
}
