// Package problems is the typed client of the Problem Repository.
//
// The strict methods (List, Get, Create, ...) return gateway errors so that
// callers can tell a missing problem apart from an unreachable backend. The
// degraded methods (ListAll, GetByID, CreateProblem, ...) collapse every
// failure into an empty, absent or false result and log it instead.
package problems

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
	"github.com/rs/zerolog"
)

const (
	healthPath   = "/health"
	problemsPath = "/problems"
)

// Client talks to the Problem Repository. It holds no state besides its
// gateway and is safe for concurrent use.
type Client struct {
	gw     *gateway.Client
	logger zerolog.Logger
}

func New(gw *gateway.Client, logger zerolog.Logger) *Client {
	return &Client{
		gw:     gw,
		logger: logger.With().Str("component", "problems").Logger(),
	}
}

// Health returns nil when GET /health answers 2xx.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.gw.Do(ctx, http.MethodGet, healthPath, nil)
	return err
}

func (c *Client) List(ctx context.Context) ([]types.ProblemSummary, error) {
	return c.list(ctx, problemsPath)
}

func (c *Client) ListByDifficulty(ctx context.Context, level types.Difficulty) ([]types.ProblemSummary, error) {
	if strings.TrimSpace(string(level)) == "" {
		return nil, gateway.Invalid("difficulty", "must not be empty")
	}
	return c.list(ctx, problemsPath+"/difficulty/"+url.PathEscape(string(level)))
}

func (c *Client) ListByTag(ctx context.Context, tag string) ([]types.ProblemSummary, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, gateway.Invalid("tag", "must not be empty")
	}
	return c.list(ctx, problemsPath+"/tags/"+url.PathEscape(tag))
}

func (c *Client) list(ctx context.Context, path string) ([]types.ProblemSummary, error) {
	resp, err := gateway.DoJSON[types.ProblemListResponse](ctx, c.gw, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.Problems == nil {
		return []types.ProblemSummary{}, nil
	}
	return resp.Problems, nil
}

// Get fetches a full problem. A 404 is reported as gateway.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (types.ProblemDetail, error) {
	if err := requireID(id); err != nil {
		return types.ProblemDetail{}, err
	}
	return gateway.DoJSON[types.ProblemDetail](ctx, c.gw, http.MethodGet, problemPath(id), nil)
}

func (c *Client) Random(ctx context.Context) (types.ProblemDetail, error) {
	return gateway.DoJSON[types.ProblemDetail](ctx, c.gw, http.MethodGet, problemsPath+"/random", nil)
}

// Create posts the full detail, id included. The id must be non-empty; its
// uniqueness is checked by the repository.
func (c *Client) Create(ctx context.Context, p types.ProblemDetail) (types.MessageResponse, error) {
	if err := requireID(p.ProblemID); err != nil {
		return types.MessageResponse{}, err
	}
	body := p
	if body.Tags == nil {
		body.Tags = []string{}
	}
	if body.TestCases == nil {
		body.TestCases = []types.TestCase{}
	}
	return c.message(ctx, http.MethodPost, problemsPath, body)
}

// Update replaces every field of problem id except the id itself, which is
// taken from the path and never sent in the body.
func (c *Client) Update(ctx context.Context, id string, p types.ProblemDetail) (types.MessageResponse, error) {
	if err := requireID(id); err != nil {
		return types.MessageResponse{}, err
	}
	return c.message(ctx, http.MethodPut, problemPath(id), types.UpdateFrom(p))
}

func (c *Client) Delete(ctx context.Context, id string) (types.MessageResponse, error) {
	if err := requireID(id); err != nil {
		return types.MessageResponse{}, err
	}
	return c.message(ctx, http.MethodDelete, problemPath(id), nil)
}

// message tolerates an empty 2xx body: some repository versions answer
// deletes with 204.
func (c *Client) message(ctx context.Context, method, path string, body any) (types.MessageResponse, error) {
	resp, err := c.gw.Do(ctx, method, path, body)
	if err != nil {
		return types.MessageResponse{}, err
	}
	var out types.MessageResponse
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return out, nil
	}
	if err := gateway.Decode(path, resp.Body, &out); err != nil {
		return types.MessageResponse{}, err
	}
	return out, nil
}

func problemPath(id string) string {
	return problemsPath + "/" + url.PathEscape(id)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return gateway.Invalid("problem_id", "must not be empty")
	}
	return nil
}
