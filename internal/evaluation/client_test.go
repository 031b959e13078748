package evaluation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codecoach/client/internal/fakebackend"
	"github.com/codecoach/client/internal/gateway"
	"github.com/codecoach/client/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDefaultsTimeLimit(t *testing.T) {
	srv := fakebackend.New(t, types.ProblemDetail{ProblemID: "two-sum"})
	c := New(gateway.New(srv.URL, time.Second), zerolog.Nop())

	resp := c.Submit(context.Background(), "two-sum", "cpp", "int main(){}", 0)
	require.NotNil(t, resp)
	assert.Equal(t, types.VerdictAccepted, resp.OverallStatus)

	subs := srv.Submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, types.EvaluationRequest{
		ProblemID:   "two-sum",
		Language:    "cpp",
		SourceCode:  "int main(){}",
		TimeLimitMs: types.DefaultTimeLimitMs,
	}, subs[0])
}

func TestSubmitReturnsResponseUnmodified(t *testing.T) {
	srv := fakebackend.New(t, types.ProblemDetail{ProblemID: "p"})
	srv.SetEvaluate(func(types.EvaluationRequest) (types.EvaluationResponse, int) {
		// Overall status disagrees with the tests on purpose: the engine wins.
		return types.EvaluationResponse{
			OverallStatus: "PartialAccepted",
			Tests: []types.TestResult{
				{ID: "1", Status: types.VerdictAccepted, TimeMs: 10},
				{ID: "2", Status: "SomethingNew", TimeMs: 15},
			},
		}, http.StatusOK
	})
	c := New(gateway.New(srv.URL, time.Second), zerolog.Nop())

	resp := c.Submit(context.Background(), "p", "cpp", "x", 1500)
	require.NotNil(t, resp)
	assert.Equal(t, types.Verdict("PartialAccepted"), resp.OverallStatus)
	assert.Equal(t, types.Verdict("SomethingNew"), resp.Tests[1].Status)
	assert.Nil(t, resp.MaxTimeMs)
	assert.Equal(t, 1500, srv.Submissions()[0].TimeLimitMs)
}

func TestSubmitToleratesCamelCaseEngines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"submissionId": 42,
			"overallStatus": "WrongAnswer",
			"maxTimeMs": 15,
			"tests": [
				{"id": 1, "status": "Accepted", "timeMs": 10},
				{"id": "2", "Status": "WrongAnswer", "time_ms": 15, "memoryKb": 900, "runtimeLog": "diff"}
			]
		}`))
	}))
	defer server.Close()

	c := New(gateway.New(server.URL, time.Second), zerolog.Nop())
	resp, err := c.Evaluate(context.Background(), types.EvaluationRequest{ProblemID: "p", SourceCode: "x"})
	require.NoError(t, err)

	assert.Equal(t, "42", resp.SubmissionID)
	assert.Equal(t, types.VerdictWrongAnswer, resp.OverallStatus)
	require.NotNil(t, resp.MaxTimeMs)
	assert.Equal(t, 15, *resp.MaxTimeMs)
	require.Len(t, resp.Tests, 2)
	assert.Equal(t, "1", resp.Tests[0].ID)
	assert.Equal(t, types.VerdictWrongAnswer, resp.Tests[1].Status)
	require.NotNil(t, resp.Tests[1].MemoryKb)
	assert.Equal(t, 900, *resp.Tests[1].MemoryKb)
	assert.Equal(t, "diff", resp.Tests[1].RuntimeLog)
}

func TestSubmitFailuresAreAbsent(t *testing.T) {
	srv := fakebackend.New(t)
	ctx := context.Background()

	c := New(gateway.New(srv.URL, time.Second), zerolog.Nop())
	assert.Nil(t, c.Submit(ctx, "unknown-problem", "cpp", "x", 2000))

	unreachable := New(gateway.New(fakebackend.UnreachableURL(t), time.Second), zerolog.Nop())
	assert.Nil(t, unreachable.Submit(ctx, "p", "cpp", "x", 2000))

	_, err := unreachable.Evaluate(ctx, types.EvaluationRequest{ProblemID: "p"})
	assert.Equal(t, gateway.KindNetwork, gateway.Classify(err))
}

func TestEvaluateRejectsBlankProblem(t *testing.T) {
	srv := fakebackend.New(t)
	c := New(gateway.New(srv.URL, time.Second), zerolog.Nop())

	_, err := c.Evaluate(context.Background(), types.EvaluationRequest{ProblemID: "  "})
	assert.ErrorIs(t, err, gateway.ErrValidation)
	assert.Equal(t, 0, srv.Calls(fakebackend.RouteSubmit))
}
