package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// HTTPPinger probes an HTTP dependency with a lightweight GET request. It is
// used for backends like Ollama that expose a cheap status endpoint, avoiding
// token-consuming model calls in readiness checks.
type HTTPPinger struct {
	// name identifies the dependency in readiness responses (e.g. "ollama").
	name string
	// url is the endpoint probed with GET.
	url string
	// client is the HTTP client used for probes.
	client *http.Client
}

// NewHTTPPinger constructs an HTTPPinger for the given endpoint.
func NewHTTPPinger(name, url string) *HTTPPinger {
	return &HTTPPinger{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: probeTimeout},
	}
}

// NewOllamaPinger probes an Ollama instance via its version endpoint.
func NewOllamaPinger(host string) *HTTPPinger {
	return NewHTTPPinger("ollama", strings.TrimRight(host, "/")+"/api/version")
}

// Name returns the dependency label used in readiness responses.
func (p *HTTPPinger) Name() string { return p.name }

// Ping issues a GET to the probe URL and expects a 2xx status.
func (p *HTTPPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("creating probe request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// QdrantPinger probes a Qdrant instance using its native HealthCheck RPC.
// It satisfies the Pinger interface and is used by GET /api/ready.
type QdrantPinger struct {
	// client is the Qdrant gRPC client to probe.
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
// Returns nil if Qdrant is reachable, or a descriptive error otherwise.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	_, err := p.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
