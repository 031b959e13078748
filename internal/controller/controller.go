// Package controller owns the session state of the client: the loaded
// problem list, the selected problem and the latest evaluation and analysis.
//
// Every command blocks until its backend calls finish, so the caller always
// observes the outcome. List fetches are single-flight: a trigger that
// arrives while another is in flight returns ErrLoadInFlight and performs no
// network call. Detail fetches, submissions and analyses are not serialized
// against each other; each write to the view model is atomic and the last
// write wins.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/internal/journal"
	"github.com/codecoach/client/internal/summary"
	"github.com/codecoach/client/types"
	"github.com/rs/zerolog"
)

var (
	ErrLoadInFlight        = errors.New("a problem list load is already in progress")
	ErrAnalyzerUnavailable = errors.New("complexity analyzer unavailable")
)

// Repository is the subset of the Problem Repository client the controller
// drives.
type Repository interface {
	Health(ctx context.Context) error
	List(ctx context.Context) ([]types.ProblemSummary, error)
	ListByDifficulty(ctx context.Context, level types.Difficulty) ([]types.ProblemSummary, error)
	ListByTag(ctx context.Context, tag string) ([]types.ProblemSummary, error)
	Get(ctx context.Context, id string) (types.ProblemDetail, error)
	Random(ctx context.Context) (types.ProblemDetail, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, req types.EvaluationRequest) (types.EvaluationResponse, error)
}

type Analyzer interface {
	CheckHealth(ctx context.Context) bool
	Analyze(ctx context.Context, code, problemName, consoleOutput string) types.AnalysisResult
}

type Option func(*Controller)

// WithRecorder hands every completed submission and analysis to r.
func WithRecorder(r journal.Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

type Controller struct {
	repo     Repository
	eval     Evaluator
	analyzer Analyzer
	recorder journal.Recorder
	logger   zerolog.Logger

	mu              sync.Mutex
	loading         bool
	state           State
	status          string
	filter          Filter
	problems        []types.ProblemSummary
	selected        *types.ProblemDetail
	lastEvaluation  *types.EvaluationResponse
	lastSummary     *summary.Summary
	lastAnalysis    *types.AnalysisResult
	analyzerHealthy bool
}

// New builds a controller in the Idle state. The analyzer health is checked
// once here and cached; RefreshAnalyzerHealth re-checks it explicitly.
func New(ctx context.Context, repo Repository, eval Evaluator, analyzer Analyzer, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		eval:     eval,
		analyzer: analyzer,
		logger:   logger.With().Str("component", "controller").Logger(),
		state:    Idle,
		status:   "Ready",
		problems: []types.ProblemSummary{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.RefreshAnalyzerHealth(ctx)
	return c
}

// RefreshAnalyzerHealth re-checks the analyzer and caches the answer.
func (c *Controller) RefreshAnalyzerHealth(ctx context.Context) bool {
	healthy := c.analyzer.CheckHealth(ctx)
	c.mu.Lock()
	c.analyzerHealthy = healthy
	c.mu.Unlock()
	if !healthy {
		c.logger.Warn().Msg("complexity analyzer is not reachable")
	}
	return healthy
}

func (c *Controller) Snapshot() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	vm := ViewModel{
		State:           c.state,
		Status:          c.status,
		Filter:          c.filter,
		Problems:        make([]types.ProblemSummary, len(c.problems)),
		AnalyzerHealthy: c.analyzerHealthy,
	}
	for i, p := range c.problems {
		p.Tags = append([]string(nil), p.Tags...)
		vm.Problems[i] = p
	}
	if c.selected != nil {
		p := c.selected.Clone()
		vm.Selected = &p
	}
	if c.lastEvaluation != nil {
		e := c.lastEvaluation.Clone()
		vm.LastEvaluation = &e
	}
	if c.lastSummary != nil {
		s := c.lastSummary.Clone()
		vm.Summary = &s
	}
	if c.lastAnalysis != nil {
		a := c.lastAnalysis.Clone()
		vm.LastAnalysis = &a
	}
	return vm
}

func (c *Controller) LoadAll(ctx context.Context) error {
	return c.load(ctx, Filter{}, func(ctx context.Context) ([]types.ProblemSummary, error) {
		return c.repo.List(ctx)
	})
}

// FilterByDifficulty and FilterByTag reject a blank filter before any
// request is made; state and the single-flight flag stay untouched.
func (c *Controller) FilterByDifficulty(ctx context.Context, level types.Difficulty) error {
	if strings.TrimSpace(string(level)) == "" {
		return c.invalid("difficulty", "must not be empty")
	}
	if parsed, ok := types.ParseDifficulty(string(level)); ok {
		level = parsed
	}
	return c.load(ctx, Filter{Difficulty: level}, func(ctx context.Context) ([]types.ProblemSummary, error) {
		return c.repo.ListByDifficulty(ctx, level)
	})
}

func (c *Controller) FilterByTag(ctx context.Context, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return c.invalid("tag", "must not be empty")
	}
	return c.load(ctx, Filter{Tag: tag}, func(ctx context.Context) ([]types.ProblemSummary, error) {
		return c.repo.ListByTag(ctx, tag)
	})
}

// PickRandom replaces the list with one random problem and selects it.
func (c *Controller) PickRandom(ctx context.Context) error {
	return c.load(ctx, Filter{Random: true}, func(ctx context.Context) ([]types.ProblemSummary, error) {
		p, err := c.repo.Random(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.selected = &p
		c.mu.Unlock()
		return []types.ProblemSummary{p.Summary()}, nil
	})
}

// Reset drops the selection and the last results and reloads the full list.
func (c *Controller) Reset(ctx context.Context) error {
	return c.load(ctx, Filter{}, func(ctx context.Context) ([]types.ProblemSummary, error) {
		c.mu.Lock()
		c.selected = nil
		c.lastEvaluation = nil
		c.lastSummary = nil
		c.lastAnalysis = nil
		c.mu.Unlock()
		return c.repo.List(ctx)
	})
}

type fetchFunc func(ctx context.Context) ([]types.ProblemSummary, error)

// load runs health check, fetch and assignment strictly in sequence under
// the single-flight flag.
func (c *Controller) load(ctx context.Context, filter Filter, fetch fetchFunc) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.logger.Debug().Str("filter", filter.String()).Msg("list load dropped, another is in flight")
		return ErrLoadInFlight
	}
	c.loading = true
	c.state = Loading
	c.status = "Loading problems..."
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	if err := c.repo.Health(ctx); err != nil {
		c.fail(LoadError, "Cannot reach the problem repository: "+describe(err), err)
		return fmt.Errorf("repository health: %w", err)
	}

	list, err := fetch(ctx)
	if err != nil {
		c.fail(LoadError, "Failed to load problems: "+describe(err), err)
		return fmt.Errorf("load problems (%s): %w", filter, err)
	}

	c.mu.Lock()
	c.problems = list
	c.filter = filter
	c.state = Loaded
	c.status = fmt.Sprintf("%d problem(s) loaded", len(list))
	c.mu.Unlock()

	c.logger.Info().Str("filter", filter.String()).Int("count", len(list)).Msg("problem list loaded")
	return nil
}

// Select fetches the full detail of id and makes it the current problem.
func (c *Controller) Select(ctx context.Context, id string) (types.ProblemDetail, error) {
	if strings.TrimSpace(id) == "" {
		err := gateway.Invalid("problem_id", "select a problem first")
		c.setStatus(err.Error())
		return types.ProblemDetail{}, err
	}

	c.setStatus(fmt.Sprintf("Loading details of '%s'...", id))
	p, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			c.setStatus(fmt.Sprintf("Problem '%s' not found", id))
		} else {
			c.setStatus(fmt.Sprintf("Could not load problem '%s': %s", id, describe(err)))
		}
		c.logger.Warn().Err(err).Str("problem_id", id).Msg("select failed")
		return types.ProblemDetail{}, err
	}

	c.mu.Lock()
	c.selected = &p
	if c.state == Idle || c.state == LoadError {
		c.state = Loaded
	}
	c.status = fmt.Sprintf("Problem '%s' loaded", p.Title)
	c.mu.Unlock()
	return p.Clone(), nil
}

// Submit evaluates source against the selected problem. A missing selection
// or blank source is a validation error raised before any network call.
func (c *Controller) Submit(ctx context.Context, language, source string, timeLimitMs int) (types.EvaluationResponse, error) {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()

	if selected == nil {
		err := gateway.Invalid("problem", "select a problem before submitting")
		c.setStatus(err.Error())
		return types.EvaluationResponse{}, err
	}
	if strings.TrimSpace(source) == "" {
		err := gateway.Invalid("source_code", "must not be blank")
		c.setStatus(err.Error())
		return types.EvaluationResponse{}, err
	}

	prev := c.enter(Submitting, fmt.Sprintf("Submitting to '%s'...", selected.ProblemID))

	resp, err := c.eval.Evaluate(ctx, types.EvaluationRequest{
		ProblemID:   selected.ProblemID,
		Language:    language,
		SourceCode:  source,
		TimeLimitMs: timeLimitMs,
	})
	if err != nil {
		c.leave(Submitting, prev, "Submission failed: "+describe(err))
		c.logger.Warn().Err(err).Str("problem_id", selected.ProblemID).Msg("submission failed")
		return types.EvaluationResponse{}, err
	}

	s := summary.Summarize(resp)
	c.mu.Lock()
	c.lastEvaluation = &resp
	c.lastSummary = &s
	c.mu.Unlock()
	c.leave(Submitting, prev, submitStatus(s))

	rec, err := journal.FromEvaluation(selected.ProblemID, language, source, resp)
	c.record(ctx, rec, err)
	return resp, nil
}

// Analyze sends code to the complexity analyzer. The cached health from the
// last check decides whether the analyzer is contacted at all.
func (c *Controller) Analyze(ctx context.Context, code, consoleOutput string) (types.AnalysisResult, error) {
	c.mu.Lock()
	healthy := c.analyzerHealthy
	var problemID, problemName string
	if c.selected != nil {
		problemID = c.selected.ProblemID
		problemName = c.selected.Title
	}
	c.mu.Unlock()

	if !healthy {
		c.setStatus("Complexity analyzer unavailable")
		return types.AnalysisResult{}, ErrAnalyzerUnavailable
	}

	prev := c.enter(Analyzing, "Analyzing complexity...")
	res := c.analyzer.Analyze(ctx, code, problemName, consoleOutput)

	c.mu.Lock()
	c.lastAnalysis = &res
	c.mu.Unlock()
	if res.Success {
		c.leave(Analyzing, prev, "Estimated complexity: "+res.Complexity)
	} else {
		c.leave(Analyzing, prev, "Analysis failed: "+res.Error)
	}

	rec, err := journal.FromAnalysis(problemID, code, res)
	c.record(ctx, rec, err)
	return res, nil
}

// record hands rec to the recorder. buildErr comes from building rec; like
// recorder failures it is only logged.
func (c *Controller) record(ctx context.Context, rec journal.Record, buildErr error) {
	if c.recorder == nil {
		return
	}
	if buildErr != nil {
		c.logger.Warn().Err(buildErr).Msg("journal record skipped")
		return
	}
	if err := c.recorder.Record(ctx, rec); err != nil {
		c.logger.Warn().Err(err).Str("kind", string(rec.Entry.Kind)).Msg("journal record failed")
	}
}

// enter switches to state and returns the state it replaced.
func (c *Controller) enter(state State, status string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.state
	c.state = state
	c.status = status
	return prev
}

// leave restores prev unless another command moved the state meanwhile.
func (c *Controller) leave(from, prev State, status string) {
	c.mu.Lock()
	if c.state == from {
		c.state = prev
	}
	c.status = status
	c.mu.Unlock()
}

func (c *Controller) fail(state State, status string, err error) {
	c.mu.Lock()
	c.state = state
	c.status = status
	c.mu.Unlock()
	c.logger.Error().Err(err).Str("kind", gateway.Classify(err).String()).Msg(status)
}

func (c *Controller) invalid(field, msg string) error {
	err := gateway.Invalid(field, msg)
	c.setStatus(err.Error())
	return err
}

func (c *Controller) setStatus(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func submitStatus(s summary.Summary) string {
	if len(s.FailingTests) == 0 {
		return fmt.Sprintf("%s: %d/%d tests passed, max %d ms", s.OverallStatus, s.Passed, s.Total, s.MaxTimeMs)
	}
	ids := make([]string, 0, len(s.FailingTests))
	for _, tr := range s.FailingTests {
		ids = append(ids, tr.ID)
	}
	return fmt.Sprintf("%s: %d/%d tests passed, failing: %s", s.OverallStatus, s.Passed, s.Total, strings.Join(ids, ", "))
}

func describe(err error) string {
	var se *gateway.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("HTTP %d %s", se.StatusCode, se.Message())
	}
	var ne *gateway.NetworkError
	if errors.As(err, &ne) && ne.Timeout() {
		return "request timed out"
	}
	return err.Error()
}
