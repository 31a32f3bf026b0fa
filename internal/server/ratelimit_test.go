package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// okHandler verifies that allowed requests reach the downstream handler.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func limitedRequest(path, remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimitAllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(100, 5, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	for i := range 5 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, limitedRequest("/api/ask", "127.0.0.1:12345"))
		if w.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimitRejectsOverBurst(t *testing.T) {
	t.Parallel()

	// rps is near zero so the bucket never refills during the test; the
	// third request must see 429.
	rl, stop := newRateLimiter(0.001, 2, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	var rejected bool
	for range 10 {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, limitedRequest("/api/ask", "10.0.0.1:9999"))
		if w.Code == http.StatusTooManyRequests {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Error("expected at least one 429 response, got none")
	}
}

func TestRateLimitRetryAfterHeader(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(0.001, 1, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	// First request drains the single burst token.
	h.ServeHTTP(httptest.NewRecorder(), limitedRequest("/api/documents", "10.0.0.2:1234"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, limitedRequest("/api/documents", "10.0.0.2:1234"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429 response")
	}
}

func TestRateLimitIsolatesClients(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(0.001, 1, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	// Exhaust one client.
	for range 5 {
		h.ServeHTTP(httptest.NewRecorder(), limitedRequest("/api/ask", "192.168.1.1:1111"))
	}

	// A different client keeps its own bucket.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, limitedRequest("/api/ask", "192.168.1.2:2222"))

	if w.Code != http.StatusOK {
		t.Errorf("second client: expected 200, got %d", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		remoteAddr string
		want       string
	}{
		{"127.0.0.1:54321", "127.0.0.1"},
		{"10.0.0.1:80", "10.0.0.1"},
		{"::1:8080", "::1"},
		{"noport", "noport"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remoteAddr
		if got := clientIP(req); got != tc.want {
			t.Errorf("remoteAddr=%q: expected %q, got %q", tc.remoteAddr, tc.want, got)
		}
	}
}
