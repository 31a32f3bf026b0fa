package server

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/docuseek/docqa-go/internal/logging"
)

// requestLogger tags every request with a random request_id, stores a child
// logger carrying it in the request context, and logs method, path, status,
// and latency when the handler returns. It wraps the whole mux so auth and
// rate-limit rejections are logged with the same fields.
func requestLogger(base *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := base.With(
			slog.String("request_id", newRequestID()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		r = r.WithContext(logging.WithLogger(r.Context(), log))

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rw, r)

		log.Info("request",
			slog.Int("status", rw.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// statusRecorder captures the status code a handler writes so the middleware
// can log it after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// newRequestID returns 8 random bytes hex-encoded. The rand.Read error path
// cannot happen on supported platforms but still yields a stable placeholder.
func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(b)
}
