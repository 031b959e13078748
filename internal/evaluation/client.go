// Package evaluation submits source code to the Evaluation Engine.
package evaluation

import (
	"context"
	"net/http"
	"strings"

	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
	"github.com/rs/zerolog"
)

const submissionsPath = "/submissions"

type Client struct {
	gw     *gateway.Client
	logger zerolog.Logger
}

func New(gw *gateway.Client, logger zerolog.Logger) *Client {
	return &Client{
		gw:     gw,
		logger: logger.With().Str("component", "evaluation").Logger(),
	}
}

// Evaluate posts req and returns the engine's verdict as received. A
// non-positive time limit is replaced by types.DefaultTimeLimitMs.
func (c *Client) Evaluate(ctx context.Context, req types.EvaluationRequest) (types.EvaluationResponse, error) {
	if strings.TrimSpace(req.ProblemID) == "" {
		return types.EvaluationResponse{}, gateway.Invalid("problem_id", "must not be empty")
	}
	if req.TimeLimitMs <= 0 {
		req.TimeLimitMs = types.DefaultTimeLimitMs
	}
	return gateway.DoJSON[types.EvaluationResponse](ctx, c.gw, http.MethodPost, submissionsPath, req)
}

// Submit is the degraded form of Evaluate: any failure is logged and
// reported as nil.
func (c *Client) Submit(ctx context.Context, problemID, language, source string, timeLimitMs int) *types.EvaluationResponse {
	resp, err := c.Evaluate(ctx, types.EvaluationRequest{
		ProblemID:   problemID,
		Language:    language,
		SourceCode:  source,
		TimeLimitMs: timeLimitMs,
	})
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("problem_id", problemID).
			Str("kind", gateway.Classify(err).String()).
			Int("status", gateway.StatusCode(err)).
			Msg("submission failed")
		return nil
	}
	return &resp
}
