package controller

import (
	"github.com/codecoach/client/internal/summary"
	"github.com/codecoach/client/types"
)

// State is the controller's position in the session lifecycle. There is no
// terminal state; every trigger is accepted again after LoadError.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	LoadError
	Submitting
	Analyzing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loading:
		return "Loading"
	case Loaded:
		return "Loaded"
	case LoadError:
		return "LoadError"
	case Submitting:
		return "Submitting"
	case Analyzing:
		return "Analyzing"
	default:
		return "Unknown"
	}
}

// Filter describes which list fetch produced the current list.
type Filter struct {
	Difficulty types.Difficulty
	Tag        string
	Random     bool
}

func (f Filter) String() string {
	switch {
	case f.Random:
		return "random"
	case f.Difficulty != "":
		return "difficulty=" + string(f.Difficulty)
	case f.Tag != "":
		return "tag=" + f.Tag
	default:
		return "all"
	}
}

// ViewModel is a consistent copy of everything the presentation layer shows.
// Mutating it does not affect the controller.
type ViewModel struct {
	State           State
	Status          string
	Filter          Filter
	Problems        []types.ProblemSummary
	Selected        *types.ProblemDetail
	LastEvaluation  *types.EvaluationResponse
	Summary         *summary.Summary
	LastAnalysis    *types.AnalysisResult
	AnalyzerHealthy bool
}
