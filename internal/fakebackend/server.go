// Package fakebackend provides in-memory doubles of the Problem Repository,
// Evaluation Engine and Complexity Analyzer served over httptest. Every
// route counts its calls, and any route can be held in flight with a Gate.
package fakebackend

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/codecoach/client/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route keys accepted by Calls and Hold.
const (
	RouteHealth         = "GET /health"
	RouteList           = "GET /problems"
	RouteGet            = "GET /problems/{id}"
	RouteRandom         = "GET /problems/random"
	RouteByDifficulty   = "GET /problems/difficulty/{level}"
	RouteByTag          = "GET /problems/tags/{tag}"
	RouteCreate         = "POST /problems"
	RouteUpdate         = "PUT /problems/{id}"
	RouteDelete         = "DELETE /problems/{id}"
	RouteSubmit         = "POST /submissions"
	RouteAnalyzerHealth = "GET /api/health"
	RouteAnalyze        = "POST /api/analyze"
)

// EvaluateFunc produces the engine reply for a submission.
type EvaluateFunc func(req types.EvaluationRequest) (types.EvaluationResponse, int)

// AnalyzeFunc produces the analyzer reply for a request.
type AnalyzeFunc func(req types.AnalysisRequest) (types.AnalysisResult, int)

// Server is a running fake. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	problems map[string]types.ProblemDetail
	order    []string
	calls    map[string]int
	gates    map[string]*Gate
	healthy  bool
	aHealthy bool
	evaluate EvaluateFunc
	analyze  AnalyzeFunc

	submissions []types.EvaluationRequest
	analyses    []types.AnalysisRequest
	rawBodies   map[string][]byte
}

// New starts a fake seeded with problems. It is closed on test cleanup.
func New(t testing.TB, seed ...types.ProblemDetail) *Server {
	t.Helper()

	s := &Server{
		problems:  make(map[string]types.ProblemDetail),
		calls:     make(map[string]int),
		gates:     make(map[string]*Gate),
		healthy:   true,
		aHealthy:  true,
		evaluate:  AcceptAll,
		analyze:   ConstantAnalysis("O(n)"),
		rawBodies: make(map[string][]byte),
	}
	for _, p := range seed {
		s.put(p)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/health", s.handleHealth)
	router.Route("/problems", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/random", s.handleRandom)
		r.Get("/difficulty/{level}", s.handleByDifficulty)
		r.Get("/tags/{tag}", s.handleByTag)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	router.Post("/submissions", s.handleSubmit)
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleAnalyzerHealth)
		r.Post("/analyze", s.handleAnalyze)
	})

	s.Server = httptest.NewServer(router)
	t.Cleanup(func() {
		s.releaseAll()
		s.Close()
	})
	return s
}

// UnreachableURL returns a base URL on which nothing listens.
func UnreachableURL(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return "http://" + addr
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	s.healthy = ok
	s.mu.Unlock()
}

func (s *Server) SetAnalyzerHealthy(ok bool) {
	s.mu.Lock()
	s.aHealthy = ok
	s.mu.Unlock()
}

func (s *Server) SetEvaluate(fn EvaluateFunc) {
	s.mu.Lock()
	s.evaluate = fn
	s.mu.Unlock()
}

func (s *Server) SetAnalyze(fn AnalyzeFunc) {
	s.mu.Lock()
	s.analyze = fn
	s.mu.Unlock()
}

// Problem returns the stored record.
func (s *Server) Problem(id string) (types.ProblemDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.problems[id]
	return p.Clone(), ok
}

// Submissions returns every evaluation request received so far.
func (s *Server) Submissions() []types.EvaluationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.EvaluationRequest(nil), s.submissions...)
}

// Analyses returns every analysis request received so far.
func (s *Server) Analyses() []types.AnalysisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.AnalysisRequest(nil), s.analyses...)
}

// LastBody returns the raw body of the latest request on route.
func (s *Server) LastBody(route string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.rawBodies[route]...)
}

// Hold makes subsequent requests on route block until the gate is released.
func (s *Server) Hold(route string) *Gate {
	g := newGate()
	s.mu.Lock()
	s.gates[route] = g
	s.mu.Unlock()
	return g
}

// hit records a call and blocks on the route's gate, if any.
func (s *Server) hit(r *http.Request, route string) {
	s.mu.Lock()
	s.calls[route]++
	g := s.gates[route]
	s.mu.Unlock()

	if g != nil {
		g.wait(r.Context())
	}
}

func (s *Server) releaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.gates {
		g.Release()
	}
}

func (s *Server) put(p types.ProblemDetail) {
	if _, exists := s.problems[p.ProblemID]; !exists {
		s.order = append(s.order, p.ProblemID)
	}
	s.problems[p.ProblemID] = p.Clone()
}
