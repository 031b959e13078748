// Package analyzer is the client of the Complexity Analyzer. Analyze never
// fails: every error is folded into an unsuccessful AnalysisResult so callers
// render a single shape.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
	"github.com/rs/zerolog"
)

const (
	healthPath  = "/api/health"
	analyzePath = "/api/analyze"
)

type Client struct {
	gw     *gateway.Client
	logger zerolog.Logger
}

func New(gw *gateway.Client, logger zerolog.Logger) *Client {
	return &Client{
		gw:     gw,
		logger: logger.With().Str("component", "analyzer").Logger(),
	}
}

// CheckHealth reports whether GET /api/health answers 2xx. It is unrelated
// to the repository's health.
func (c *Client) CheckHealth(ctx context.Context) bool {
	if _, err := c.gw.Do(ctx, http.MethodGet, healthPath, nil); err != nil {
		c.logger.Warn().Err(err).Msg("analyzer health check failed")
		return false
	}
	return true
}

// Analyze submits code for complexity analysis. problemName and
// consoleOutput are optional context.
func (c *Client) Analyze(ctx context.Context, code, problemName, consoleOutput string) types.AnalysisResult {
	req := types.AnalysisRequest{
		Code:          code,
		ProblemName:   problemName,
		ConsoleOutput: consoleOutput,
	}

	result, err := gateway.DoJSON[types.AnalysisResult](ctx, c.gw, http.MethodPost, analyzePath, req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("kind", gateway.Classify(err).String()).
			Int("status", gateway.StatusCode(err)).
			Msg("analysis failed")
		return types.FailedAnalysis(failureMessage(err))
	}

	if !result.Success && result.Error == "" {
		result.Error = "Analysis failed without an error message"
	}
	return result
}

func failureMessage(err error) string {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("HTTP Error %d: %s", statusErr.StatusCode, string(statusErr.Body))
	}
	return "Error: " + err.Error()
}
