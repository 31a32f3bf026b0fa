package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/docuseek/docqa-go/internal/qa"
)

// handleAsk handles POST /api/ask. The response is the qa.Answer JSON:
// answer text, per-document sources, and a retrieval confidence score.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, r, http.StatusBadRequest, "question is required")
		return
	}

	start := time.Now()
	answer, err := s.qa.Ask(r.Context(), req.Question, req.TopK)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, qa.ErrNoIndex):
		s.observeAsk("no_index", elapsed)
		writeError(w, r, http.StatusNotFound, "no documents ingested yet")
		return
	case errors.Is(err, qa.ErrGeneration):
		s.observeAsk("error", elapsed)
		writeError(w, r, http.StatusBadGateway, "answer generation failed")
		return
	case err != nil:
		s.observeAsk("error", elapsed)
		writeError(w, r, http.StatusInternalServerError, "answering failed")
		return
	}

	s.observeAsk("ok", elapsed)
	writeJSON(w, http.StatusOK, answer)
}

// observeAsk records one completed ask request under the given outcome.
func (s *Server) observeAsk(outcome string, elapsed time.Duration) {
	s.metrics.askRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.askDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
