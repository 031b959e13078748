package problems

import (
	"context"

	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
)

// IsHealthy reports false on any non-2xx status or transport failure.
func (c *Client) IsHealthy(ctx context.Context) bool {
	if err := c.Health(ctx); err != nil {
		c.warn(err, "health check failed")
		return false
	}
	return true
}

// ListAll returns every problem, or an empty list when the repository cannot
// be read. Use Health first to tell "no problems" from "backend down".
func (c *Client) ListAll(ctx context.Context) []types.ProblemSummary {
	return c.orEmpty(c.List(ctx))
}

func (c *Client) ListByDifficultyOrEmpty(ctx context.Context, level types.Difficulty) []types.ProblemSummary {
	return c.orEmpty(c.ListByDifficulty(ctx, level))
}

func (c *Client) ListByTagOrEmpty(ctx context.Context, tag string) []types.ProblemSummary {
	return c.orEmpty(c.ListByTag(ctx, tag))
}

// GetByID returns false both when the problem does not exist and when the
// lookup failed for any other reason.
func (c *Client) GetByID(ctx context.Context, id string) (types.ProblemDetail, bool) {
	p, err := c.Get(ctx, id)
	if err != nil {
		c.warn(err, "get problem failed")
		return types.ProblemDetail{}, false
	}
	return p, true
}

func (c *Client) GetRandom(ctx context.Context) (types.ProblemDetail, bool) {
	p, err := c.Random(ctx)
	if err != nil {
		c.warn(err, "random problem failed")
		return types.ProblemDetail{}, false
	}
	return p, true
}

func (c *Client) CreateProblem(ctx context.Context, p types.ProblemDetail) bool {
	if _, err := c.Create(ctx, p); err != nil {
		c.warn(err, "create problem failed")
		return false
	}
	return true
}

func (c *Client) UpdateProblem(ctx context.Context, id string, p types.ProblemDetail) bool {
	if _, err := c.Update(ctx, id, p); err != nil {
		c.warn(err, "update problem failed")
		return false
	}
	return true
}

func (c *Client) DeleteProblem(ctx context.Context, id string) bool {
	if _, err := c.Delete(ctx, id); err != nil {
		c.warn(err, "delete problem failed")
		return false
	}
	return true
}

func (c *Client) orEmpty(list []types.ProblemSummary, err error) []types.ProblemSummary {
	if err != nil {
		c.warn(err, "list problems failed")
		return []types.ProblemSummary{}
	}
	return list
}

func (c *Client) warn(err error, msg string) {
	ev := c.logger.Warn()
	if gateway.Classify(err) == gateway.KindNetwork {
		ev = c.logger.Error()
	}
	ev.Err(err).
		Str("kind", gateway.Classify(err).String()).
		Int("status", gateway.StatusCode(err)).
		Msg(msg)
}
