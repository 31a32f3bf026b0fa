package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docuseek/docqa-go/internal/ingestion"
	"github.com/docuseek/docqa-go/internal/logging"
)

// NewIngestCmd constructs the `docqa ingest` command, which ingests local
// files into the document store and vector index without going through the
// HTTP API.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Ingest local documents into the index",
		Long: `Extract, chunk, embed, and index one or more local files.

Supported formats: PDF, DOCX, and plain text (.txt, .md, .log, .csv).
The content type is inferred from each file's extension.

Each file is processed independently: a malformed file is recorded as failed
and does not stop the rest of the batch.

Environment variables:
  MODEL_PROVIDER / EMBEDDING_*   Embedding backend selection (default: ollama)
  VECTOR_BACKEND                 flat (default) or qdrant
  DOCQA_DB                       SQLite path (default: ~/.docqa/docqa.db)
  DOCQA_INDEX_PATH               Flat index snapshot (default: ~/.docqa/index.gob)
  CHUNK_SIZE / CHUNK_OVERLAP     Chunking overrides

Examples:
  docqa ingest policy.txt
  docqa ingest handbook.pdf contracts/*.docx
  CHUNK_SIZE=500 docqa ingest notes.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			docs, err := openDocumentStore(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer docs.Close()

			index, closeIndex, err := openVectorIndex(ctx, docs, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer closeIndex()

			pipeline, err := buildPipeline(docs, index, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			inputs := make([]ingestion.FileInput, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("ingest: reading %s: %w", path, err)
				}
				inputs = append(inputs, ingestion.FileInput{
					Name:    filepath.Base(path),
					Content: content,
				})
			}

			log.Info("starting ingestion", slog.Int("files", len(inputs)))

			failed := 0
			for _, res := range pipeline.Ingest(ctx, inputs) {
				if res.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "failed   %s: %v\n", res.Name, res.Err)
					continue
				}
				fmt.Printf("ingested %s (%d chunks, id %s)\n", res.Name, res.ChunkCount, res.DocID)
			}

			if failed > 0 {
				return fmt.Errorf("ingest: %d of %d files failed", failed, len(inputs))
			}
			return nil
		},
	}

	return cmd
}
