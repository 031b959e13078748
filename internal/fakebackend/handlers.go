package fakebackend

import (
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"

	"github.com/codecoach/client/types"
	"github.com/go-chi/chi/v5"
)

// AcceptAll answers every submission with two accepted tests.
func AcceptAll(req types.EvaluationRequest) (types.EvaluationResponse, int) {
	return types.EvaluationResponse{
		SubmissionID:  "sub-" + req.ProblemID,
		OverallStatus: types.VerdictAccepted,
		Tests: []types.TestResult{
			{ID: "1", Status: types.VerdictAccepted, TimeMs: 4},
			{ID: "2", Status: types.VerdictAccepted, TimeMs: 6},
		},
	}, http.StatusOK
}

// ConstantAnalysis answers every analysis with the given complexity.
func ConstantAnalysis(complexity string) AnalyzeFunc {
	return func(types.AnalysisRequest) (types.AnalysisResult, int) {
		return types.AnalysisResult{
			Success:       true,
			Complexity:    complexity,
			AlgorithmType: "iterative",
			Details: types.AnalysisDetails{
				NestedLoops:    1,
				AverageRatio:   1.0,
				ExecutionTimes: []float64{1.1, 2.0, 4.2},
			},
			Explanation: "single pass over the input",
		}, http.StatusOK
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteHealth)
	s.mu.Lock()
	ok := s.healthy
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteList)
	writeJSON(w, http.StatusOK, types.ProblemListResponse{Problems: s.filter(func(types.ProblemDetail) bool { return true })})
}

func (s *Server) handleByDifficulty(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteByDifficulty)
	level := param(r, "level")
	writeJSON(w, http.StatusOK, types.ProblemListResponse{Problems: s.filter(func(p types.ProblemDetail) bool {
		return strings.EqualFold(string(p.Difficulty), level)
	})})
}

func (s *Server) handleByTag(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteByTag)
	tag := param(r, "tag")
	writeJSON(w, http.StatusOK, types.ProblemListResponse{Problems: s.filter(func(p types.ProblemDetail) bool {
		return p.Summary().HasTag(tag)
	})})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteGet)
	p, ok := s.Problem(param(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Problema no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteRandom)
	s.mu.Lock()
	if len(s.order) == 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "No hay problemas")
		return
	}
	p := s.problems[s.order[rand.IntN(len(s.order))]].Clone()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteCreate)
	body, ok := s.readBody(w, r, RouteCreate)
	if !ok {
		return
	}
	var p types.ProblemDetail
	if err := json.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid problem payload")
		return
	}
	if strings.TrimSpace(p.ProblemID) == "" {
		writeError(w, http.StatusBadRequest, "problem_id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.problems[p.ProblemID]; exists {
		writeError(w, http.StatusConflict, "problem_id already exists")
		return
	}
	s.put(p)
	writeJSON(w, http.StatusCreated, types.MessageResponse{Message: "Problema creado", ProblemID: p.ProblemID})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteUpdate)
	body, ok := s.readBody(w, r, RouteUpdate)
	if !ok {
		return
	}
	var u types.ProblemUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid problem payload")
		return
	}

	id := param(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.problems[id]; !exists {
		writeError(w, http.StatusNotFound, "Problema no encontrado")
		return
	}
	s.put(types.ProblemDetail{
		ProblemID:   id,
		Title:       u.Title,
		Description: u.Description,
		Difficulty:  u.Difficulty,
		Tags:        u.Tags,
		CodeStub:    u.CodeStub,
		TestCases:   u.TestCases,
	})
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Problema actualizado", ProblemID: id})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteDelete)
	id := param(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.problems[id]; !exists {
		writeError(w, http.StatusNotFound, "Problema no encontrado")
		return
	}
	delete(s.problems, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: "Problema eliminado", ProblemID: id})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteSubmit)
	body, ok := s.readBody(w, r, RouteSubmit)
	if !ok {
		return
	}
	var req types.EvaluationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submission payload")
		return
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, req)
	fn := s.evaluate
	_, exists := s.problems[req.ProblemID]
	s.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, "Problema no encontrado")
		return
	}
	resp, status := fn(req)
	writeJSON(w, status, resp)
}

func (s *Server) handleAnalyzerHealth(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteAnalyzerHealth)
	s.mu.Lock()
	ok := s.aHealthy
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	s.hit(r, RouteAnalyze)
	body, ok := s.readBody(w, r, RouteAnalyze)
	if !ok {
		return
	}
	var req types.AnalysisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis payload")
		return
	}

	s.mu.Lock()
	s.analyses = append(s.analyses, req)
	fn := s.analyze
	s.mu.Unlock()

	resp, status := fn(req)
	writeJSON(w, status, resp)
}

func (s *Server) filter(keep func(types.ProblemDetail) bool) []types.ProblemSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ProblemSummary, 0, len(s.order))
	for _, id := range s.order {
		p := s.problems[id]
		if keep(p) {
			out = append(out, p.Summary())
		}
	}
	return out
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, route string) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return nil, false
	}
	s.mu.Lock()
	s.rawBodies[route] = body
	s.mu.Unlock()
	return body, true
}

// param returns a decoded URL parameter. chi matches on the raw path, so
// escaped slashes arrive still encoded.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, types.ErrorResponse{Error: message})
}
