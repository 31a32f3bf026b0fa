// Package tracing wires optional Langfuse observability into the eino model
// calls made by the generator.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

const defaultLangfuseHost = "http://localhost:3000"

// Setup builds a Langfuse callback handler when both LANGFUSE_PUBLIC_KEY and
// LANGFUSE_SECRET_KEY are present. The returned flush function must run
// before process exit or buffered traces are lost. When the keys are absent
// the third return value is false and tracing stays off.
func Setup() (callbacks.Handler, func(), bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultLangfuseHost
	}

	handler, flush := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
	})
	return handler, flush, true
}
