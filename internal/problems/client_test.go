package problems

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/codecoach/client/internal/fakebackend"
	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() []types.ProblemDetail {
	return []types.ProblemDetail{
		{
			ProblemID:   "two-sum",
			Title:       "Two Sum",
			Description: "Find two numbers that add up to a target.",
			Difficulty:  types.DifficultyEasy,
			Tags:        []string{"arrays", "hashing"},
			CodeStub:    "int main() {}",
			TestCases:   []types.TestCase{{Input: "2 7\n9", ExpectedOutput: "0 1"}},
		},
		{
			ProblemID:  "lis",
			Title:      "Longest Increasing Subsequence",
			Difficulty: types.DifficultyMedium,
			Tags:       []string{"dp"},
		},
		{
			ProblemID:  "a/b",
			Title:      "Slash in id",
			Difficulty: types.DifficultyHard,
			Tags:       []string{"Strings"},
		},
	}
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(gateway.New(baseURL, 2*time.Second), zerolog.Nop())
}

func TestListAndFilters(t *testing.T) {
	srv := fakebackend.New(t, seed()...)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "two-sum", all[0].ProblemID)
	assert.Equal(t, []string{"arrays", "hashing"}, all[0].Tags)

	medium, err := c.ListByDifficulty(ctx, types.DifficultyMedium)
	require.NoError(t, err)
	require.Len(t, medium, 1)
	assert.Equal(t, "lis", medium[0].ProblemID)

	tagged, err := c.ListByTag(ctx, "strings")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "a/b", tagged[0].ProblemID)

	none, err := c.ListByTag(ctx, "graphs")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetEscapesPathSegment(t *testing.T) {
	srv := fakebackend.New(t, seed()...)
	c := newClient(t, srv.URL)

	p, err := c.Get(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "Slash in id", p.Title)
}

func TestGetDistinguishesNotFoundFromUnreachable(t *testing.T) {
	srv := fakebackend.New(t, seed()...)
	ctx := context.Background()

	_, err := newClient(t, srv.URL).Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, gateway.KindNotFound, gateway.Classify(err))

	_, err = newClient(t, fakebackend.UnreachableURL(t)).Get(ctx, "two-sum")
	require.Error(t, err)
	assert.Equal(t, gateway.KindNetwork, gateway.Classify(err))
}

func TestGetByIDConflatesMissingAndUnreachable(t *testing.T) {
	srv := fakebackend.New(t, seed()...)
	ctx := context.Background()

	_, ok := newClient(t, srv.URL).GetByID(ctx, "missing")
	assert.False(t, ok)

	_, ok = newClient(t, fakebackend.UnreachableURL(t)).GetByID(ctx, "two-sum")
	assert.False(t, ok)

	p, ok := newClient(t, srv.URL).GetByID(ctx, "two-sum")
	require.True(t, ok)
	assert.Equal(t, "Two Sum", p.Title)
}

func TestUnreachableBackendDegrades(t *testing.T) {
	c := newClient(t, fakebackend.UnreachableURL(t))
	ctx := context.Background()

	assert.False(t, c.IsHealthy(ctx))

	all := c.ListAll(ctx)
	assert.NotNil(t, all)
	assert.Empty(t, all)
	assert.Empty(t, c.ListByDifficultyOrEmpty(ctx, types.DifficultyEasy))
	assert.Empty(t, c.ListByTagOrEmpty(ctx, "dp"))

	_, ok := c.GetRandom(ctx)
	assert.False(t, ok)
	assert.False(t, c.CreateProblem(ctx, seed()[0]))
	assert.False(t, c.UpdateProblem(ctx, "two-sum", seed()[0]))
	assert.False(t, c.DeleteProblem(ctx, "two-sum"))
}

func TestHealth(t *testing.T) {
	srv := fakebackend.New(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	assert.True(t, c.IsHealthy(ctx))
	srv.SetHealthy(false)
	assert.False(t, c.IsHealthy(ctx))
	assert.Equal(t, gateway.KindServer, gateway.Classify(c.Health(ctx)))
}

func TestCreateRequiresID(t *testing.T) {
	srv := fakebackend.New(t)
	c := newClient(t, srv.URL)

	_, err := c.Create(context.Background(), types.ProblemDetail{Title: "no id"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, 0, srv.Calls(fakebackend.RouteCreate))
}

func TestCreateSendsIDAndConflicts(t *testing.T) {
	srv := fakebackend.New(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	msg, err := c.Create(ctx, seed()[1])
	require.NoError(t, err)
	assert.Equal(t, "lis", msg.ProblemID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.LastBody(fakebackend.RouteCreate), &sent))
	assert.Equal(t, "lis", sent["problem_id"])
	assert.Equal(t, []any{}, sent["test_cases"])

	assert.False(t, c.CreateProblem(ctx, seed()[1]))
}

func TestUpdateOmitsIDFromBody(t *testing.T) {
	srv := fakebackend.New(t, seed()...)
	c := newClient(t, srv.URL)

	edited := seed()[0]
	edited.ProblemID = "should-not-be-sent"
	edited.Title = "Two Sum II"

	require.True(t, c.UpdateProblem(context.Background(), "two-sum", edited))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.LastBody(fakebackend.RouteUpdate), &sent))
	assert.NotContains(t, sent, "problem_id")
	assert.Equal(t, "Two Sum II", sent["title"])
}

func TestUpdateAndDeleteReturnFalseOn404(t *testing.T) {
	srv := fakebackend.New(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	assert.False(t, c.UpdateProblem(ctx, "missing", seed()[0]))
	assert.False(t, c.DeleteProblem(ctx, "missing"))

	_, err := c.Delete(ctx, "missing")
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestDelete(t *testing.T) {
	srv := fakebackend.New(t, seed()...)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	require.True(t, c.DeleteProblem(ctx, "lis"))
	_, ok := srv.Problem("lis")
	assert.False(t, ok)
	assert.Len(t, c.ListAll(ctx), 2)
}

func TestRandomReturnsSeededProblem(t *testing.T) {
	srv := fakebackend.New(t, seed()[1])
	c := newClient(t, srv.URL)

	p, ok := c.GetRandom(context.Background())
	require.True(t, ok)
	assert.Equal(t, "lis", p.ProblemID)
}

func TestGetUpdateGetRoundTrip(t *testing.T) {
	for _, original := range seed() {
		t.Run(original.ProblemID, func(t *testing.T) {
			srv := fakebackend.New(t, seed()...)
			c := newClient(t, srv.URL)
			ctx := context.Background()

			before, ok := c.GetByID(ctx, original.ProblemID)
			require.True(t, ok)

			edited := types.ProblemDetail{
				ProblemID:   "ignored",
				Title:       before.Title + " (revised)",
				Description: "new statement",
				Difficulty:  types.DifficultyHard,
				Tags:        []string{"z", "a"},
				CodeStub:    "package main",
				TestCases: []types.TestCase{
					{Input: "1", ExpectedOutput: "1"},
					{Input: "2", ExpectedOutput: "4"},
				},
			}
			require.True(t, c.UpdateProblem(ctx, original.ProblemID, edited))

			after, ok := c.GetByID(ctx, original.ProblemID)
			require.True(t, ok)

			want := edited
			want.ProblemID = original.ProblemID
			assert.Equal(t, want, after)
		})
	}
}

func TestBlankFiltersAreValidationErrors(t *testing.T) {
	srv := fakebackend.New(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.ListByTag(ctx, " ")
	assert.ErrorIs(t, err, gateway.ErrValidation)
	_, err = c.ListByDifficulty(ctx, "")
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, 0, srv.Calls(fakebackend.RouteByTag))
}
