package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuseek/docqa-go/internal/budget"
	"github.com/docuseek/docqa-go/internal/embedder"
	"github.com/docuseek/docqa-go/internal/generator"
	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/qa"
	"github.com/docuseek/docqa-go/internal/rag"
)

// NewAskCmd constructs the `docqa ask` command, which answers a single
// question from the command line against the ingested corpus.
func NewAskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about your ingested documents",
		Long: `Answer a natural language question using the ingested documents.

The question is embedded, the most similar chunks are retrieved, and the
configured LLM generates an answer grounded in them. The answer is printed
with its sources and a retrieval confidence score.

Examples:
  docqa ask "how many remote days are allowed?"
  docqa ask --top-k 5 "what does the termination clause say?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			docs, err := openDocumentStore(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer docs.Close()

			index, closeIndex, err := openVectorIndex(ctx, docs, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer closeIndex()

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ask: failed to initialise embedder: %w", err)
			}
			retriever, err := rag.NewRetriever(emb, index, topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			gen, err := generator.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise answer generator: %w", err)
			}

			svc, err := qa.NewService(docs, retriever, gen, qa.Config{
				TopK:             topK,
				MaxContextTokens: getEnvInt("DOCQA_MAX_CONTEXT_TOKENS", budget.DefaultMaxContextTokens),
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			answer, err := svc.Ask(ctx, args[0], topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(answer.Text)
			fmt.Println()
			fmt.Printf("confidence: %.2f\n", answer.Confidence)
			for _, src := range answer.Sources {
				fmt.Printf("source: %s (%.2f)\n", src.DocumentName, src.SimilarityScore)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (default 3)")

	return cmd
}
