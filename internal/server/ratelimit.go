package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/docuseek/docqa-go/internal/logging"
)

// Default per-client token-bucket parameters. Ingestion and ask calls are
// expensive (embedding plus generation), so the sustained rate is modest
// while the burst absorbs short spikes such as multi-file uploads.
const (
	defaultRateLimit = 10
	defaultRateBurst = 20
)

// staleClientAge is how long an idle client's bucket survives before the
// eviction loop reclaims it.
const staleClientAge = 5 * time.Minute

// clientBucket pairs a token bucket with its last activity time.
type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter enforces a per-IP token bucket across the protected endpoints.
// Idle buckets are evicted periodically to bound the map size.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	rps     rate.Limit
	burst   int
	log     *slog.Logger
}

// newRateLimiter builds a limiter and starts its eviction goroutine. The
// returned stop function terminates the goroutine; Server.Start defers it.
func newRateLimiter(rps float64, burst int, log *slog.Logger) (*rateLimiter, func()) {
	rl := &rateLimiter{
		buckets: make(map[string]*clientBucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		log:     log,
	}

	stop := make(chan struct{})
	go rl.evictLoop(stop)
	return rl, func() { close(stop) }
}

// bucketFor returns the bucket for ip, creating it on first sight and
// refreshing its activity timestamp.
func (rl *rateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (rl *rateLimiter) evictLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.evictStale()
		}
	}
}

func (rl *rateLimiter) evictStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleClientAge)
	for ip, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// middleware rejects over-limit requests with 429 and a Retry-After header
// before they reach the handler.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.bucketFor(ip).Allow() {
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is deliberately
// ignored: the service fronts no trusted proxy.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
