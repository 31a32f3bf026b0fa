package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/docuseek/docqa-go/internal/budget"
	"github.com/docuseek/docqa-go/internal/embedder"
	"github.com/docuseek/docqa-go/internal/generator"
	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/qa"
	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/server"
	"github.com/docuseek/docqa-go/internal/tracing"
)

// NewServeCmd constructs the `docqa serve` command, which starts the HTTP
// API for uploads, document management, and question answering.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the docqa HTTP API server",
		Long: `Start the docqa HTTP server on localhost.

The server exposes the document QA API: upload files with POST /api/documents,
list and delete them, and ask questions with POST /api/ask. Prometheus metrics
are served at /metrics, liveness at /api/health, readiness at /api/ready.

Examples:
  docqa serve
  docqa serve --port 9090
  MODEL_PROVIDER=azure docqa serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			docs, err := openDocumentStore(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer docs.Close()

			index, closeIndex, err := openVectorIndex(ctx, docs, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer closeIndex()

			pipeline, err := buildPipeline(docs, index, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			gen, err := generator.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise answer generator: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}
			retriever, err := rag.NewRetriever(emb, index, getEnvInt("DOCQA_TOP_K", 0))
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			qaSvc, err := qa.NewService(docs, retriever, gen, qa.Config{
				TopK:             getEnvInt("DOCQA_TOP_K", 0),
				MaxContextTokens: getEnvInt("DOCQA_MAX_CONTEXT_TOKENS", budget.DefaultMaxContextTokens),
			})
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			srv, err := server.New(pipeline, qaSvc, docs, index, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: buildPingers(index),
				APIKey:  os.Getenv("DOCQA_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}

// buildPingers assembles the readiness probes for /api/ready: the model and
// embedding backends when they run on Ollama, plus Qdrant when it backs the
// index.
func buildPingers(index rag.VectorStore) []server.Pinger {
	var pingers []server.Pinger

	if getEnvOrDefault("MODEL_PROVIDER", "ollama") == "ollama" ||
		getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama")) == "ollama" {
		pingers = append(pingers, server.NewOllamaPinger(getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")))
	}

	if qs, ok := index.(*rag.QdrantStore); ok {
		pingers = append(pingers, server.NewQdrantPinger(qs.Client()))
	}

	return pingers
}
