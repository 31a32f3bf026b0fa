// Package qa orchestrates question answering over the ingested corpus:
// retrieve the most similar chunks, fit them to the model's context budget,
// and generate a grounded answer with source attributions.
package qa

import (
	"context"
	"errors"
	"fmt"

	"github.com/docuseek/docqa-go/internal/budget"
	"github.com/docuseek/docqa-go/internal/generator"
	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/store"
)

var (
	// ErrNoIndex indicates no documents have been ingested yet, so there is
	// nothing to answer from.
	ErrNoIndex = errors.New("qa: no documents ingested")

	// ErrGeneration indicates the retrieval succeeded but the model failed
	// to produce an answer.
	ErrGeneration = errors.New("qa: answer generation failed")
)

// DefaultTopK is the number of chunks retrieved per question when the caller
// does not specify one.
const DefaultTopK = 3

// Source attributes one retrieved chunk to its document.
type Source struct {
	// DocumentName is the original filename of the source document.
	DocumentName string `json:"document_name"`

	// SimilarityScore is the cosine similarity between the question and
	// this chunk, in [-1, 1].
	SimilarityScore float32 `json:"similarity_score"`
}

// Answer is the result of asking a question.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources lists the chunks the answer was grounded in, best match
	// first, one entry per chunk. A document retrieved more than once
	// appears once per retrieved chunk.
	Sources []Source `json:"sources"`

	// Confidence is the similarity score of the best retrieved chunk,
	// clamped to [0, 1]. It reflects retrieval quality, not factual
	// certainty.
	Confidence float32 `json:"confidence"`
}

// Config tunes the question-answering service.
type Config struct {
	// TopK is the number of chunks to retrieve per question.
	// Defaults to DefaultTopK if zero.
	TopK int

	// MaxContextTokens caps the estimated prompt size. Defaults to
	// budget.DefaultMaxContextTokens if zero.
	MaxContextTokens int
}

// Service answers questions against the ingested document corpus.
type Service struct {
	docs      store.DocumentStore
	retriever rag.Retriever
	gen       generator.Generator
	cfg       Config
}

// NewService wires the service from its dependencies.
func NewService(docs store.DocumentStore, retriever rag.Retriever, gen generator.Generator, cfg Config) (*Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("qa: document store must not be nil")
	}
	if retriever == nil {
		return nil, fmt.Errorf("qa: retriever must not be nil")
	}
	if gen == nil {
		return nil, fmt.Errorf("qa: generator must not be nil")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = budget.DefaultMaxContextTokens
	}
	return &Service{docs: docs, retriever: retriever, gen: gen, cfg: cfg}, nil
}

// Ask answers question using the topK most similar chunks. Passing topK <= 0
// uses the configured default. Returns ErrNoIndex when no documents are
// available and ErrGeneration when the model call fails.
func (s *Service) Ask(ctx context.Context, question string, topK int) (*Answer, error) {
	log := logging.FromContext(ctx)

	if question == "" {
		return nil, fmt.Errorf("qa: question must not be empty")
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	count, err := s.docs.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("qa: count documents: %w", err)
	}
	if count == 0 {
		return nil, ErrNoIndex
	}

	results, err := s.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("qa: retrieve: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoIndex
	}

	// Reserve room for the instructions and the question itself; the rest of
	// the budget goes to retrieved excerpts.
	reserved := 200 + budget.Estimate(question)
	trimmed := budget.TrimResults(results, reserved, s.cfg.MaxContextTokens)
	if len(trimmed) < len(results) {
		log.Debug("context trimmed to fit budget", "retrieved", len(results), "kept", len(trimmed))
	}

	text, err := s.gen.Answer(ctx, question, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return &Answer{
		Text:       text,
		Sources:    chunkSources(trimmed),
		Confidence: clamp01(trimmed[0].Score),
	}, nil
}

// clamp01 bounds a cosine similarity into [0, 1] for reporting. Negative
// similarities carry no useful confidence signal.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// chunkSources maps the retrieved chunks to source attributions, one per
// chunk with its raw score, preserving best-first order.
func chunkSources(results []rag.Result) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			DocumentName:    r.DocName,
			SimilarityScore: r.Score,
		})
	}
	return sources
}
