package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/docuseek/docqa-go/internal/logging"
)

// probeTimeout bounds each dependency probe during a readiness check, so
// /api/ready answers promptly when a backend is slow rather than down.
const probeTimeout = 5 * time.Second

// Pinger reports the reachability of one backing dependency. Implementations
// return nil when healthy and must be safe for concurrent use.
type Pinger interface {
	// Ping checks reachability within the context deadline.
	Ping(ctx context.Context) error

	// Name is the short label reported in readiness responses, e.g. "ollama".
	Name() string
}

// readyCheck is the per-dependency entry in a readiness response.
type readyCheck struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	// Error carries the failure reason when OK is false.
	Error string `json:"error,omitempty"`
}

// readyResponse is the GET /api/ready body.
type readyResponse struct {
	Ready  bool         `json:"ready"`
	Checks []readyCheck `json:"checks"`
}

// handleReady probes every registered Pinger and returns 200 when all
// dependencies answer, 503 otherwise. /api/health stays a pure liveness
// check; this endpoint is the one that reflects backend state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	resp := readyResponse{Ready: true}
	for _, p := range s.pingers {
		probeCtx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Ping(probeCtx)
		cancel()

		check := readyCheck{Name: p.Name(), OK: err == nil}
		if err != nil {
			check.Error = err.Error()
			resp.Ready = false
			log.Warn("readiness probe failed",
				slog.String("dependency", p.Name()),
				slog.Any("error", err),
			)
		}
		resp.Checks = append(resp.Checks, check)
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("ready encode error", slog.Any("error", err))
	}
}
