package analyzer

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

func newClient(baseURL string) *Client {
	return New(gateway.New(baseURL, time.Second), zerolog.Nop())
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := fakebackend.New(t)
	c := newClient(srv.URL)

	res := c.Analyze(context.Background(), "for(;;){}", "two-sum", "Test 1: Accepted")
	require.True(t, res.Success)
	assert.Equal(t, "O(n)", res.Complexity)
	assert.Equal(t, []float64{1.1, 2.0, 4.2}, res.Details.ExecutionTimes)

	sent := srv.Analyses()
	require.Len(t, sent, 1)
	assert.Equal(t, types.AnalysisRequest{
		Code:          "for(;;){}",
		ProblemName:   "two-sum",
		ConsoleOutput: "Test 1: Accepted",
	}, sent[0])
}

func TestAnalyzeSendsCamelCase(t *testing.T) {
	srv := fakebackend.New(t)
	newClient(srv.URL).Analyze(context.Background(), "x", "p", "out")

	assert.JSONEq(t,
		`{"code":"x","problemName":"p","consoleOutput":"out"}`,
		string(srv.LastBody(fakebackend.RouteAnalyze)))
}

func TestAnalyzeUnreachableNeverAbsent(t *testing.T) {
	c := newClient(fakebackend.UnreachableURL(t))

	res := c.Analyze(context.Background(), "", "", "")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Contains(t, res.Error, "Error: ")
	assert.False(t, c.CheckHealth(context.Background()))
}

func TestAnalyzeHTTPErrorMessage(t *testing.T) {
	srv := fakebackend.New(t)
	srv.SetAnalyze(func(types.AnalysisRequest) (types.AnalysisResult, int) {
		return types.FailedAnalysis("compiler crashed"), http.StatusInternalServerError
	})

	res := newClient(srv.URL).Analyze(context.Background(), "x", "", "")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "HTTP Error 500: ")
	assert.Contains(t, res.Error, "compiler crashed")
}

func TestAnalyzeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer server.Close()

	res := newClient(server.URL).Analyze(context.Background(), "x", "", "")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Error: ")
}

func TestAnalyzeFillsMissingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	res := newClient(server.URL).Analyze(context.Background(), "x", "", "")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestAnalyzeAcceptsSnakeCaseReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"Success": true,
			"complexity": "O(n^2)",
			"algorithm_type": "brute force",
			"details": {"nested_loops": 2, "is_recursive": false, "average_ratio": 3.9, "execution_times": [1, 4, 16]},
			"suggestions": ["use a hash map"]
		}`))
	}))
	defer server.Close()

	res := newClient(server.URL).Analyze(context.Background(), "x", "", "")
	require.True(t, res.Success)
	assert.Equal(t, "O(n^2)", res.Complexity)
	assert.Equal(t, "brute force", res.AlgorithmType)
	assert.Equal(t, 2, res.Details.NestedLoops)
	assert.InDelta(t, 3.9, res.Details.AverageRatio, 1e-9)
	assert.Equal(t, []float64{1, 4, 16}, res.Details.ExecutionTimes)
	assert.Equal(t, []string{"use a hash map"}, res.Suggestions)
}

func TestCheckHealthIndependentOfRepository(t *testing.T) {
	srv := fakebackend.New(t)
	srv.SetHealthy(false)
	c := newClient(srv.URL)

	assert.True(t, c.CheckHealth(context.Background()))
	srv.SetAnalyzerHealthy(false)
	assert.False(t, c.CheckHealth(context.Background()))
	assert.Equal(t, 0, srv.Calls(fakebackend.RouteHealth))
}
