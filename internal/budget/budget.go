// Package budget provides token budget estimation and context trimming for
// answer generation. Because multiple LLM backends with different tokenizers
// are supported, this package uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). This deliberately under-estimates
// token counts to leave headroom for model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"

	"github.com/docuseek/docqa-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English and code; using 3
	// would be more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models (Llama 3 8B,
	// GPT-3.5) while leaving room for the output.
	DefaultMaxContextTokens = 6000

	// perChunkOverhead accounts for the header and spacing added around each
	// excerpt when the prompt is assembled.
	perChunkOverhead = 12
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimResults drops the lowest-ranked retrieved chunks until the estimated
// prompt size fits within maxTokens. reserved is the token estimate for the
// parts of the prompt that cannot be trimmed (system prompt and question).
// Results arrive ordered best-first, so trimming removes from the tail. The
// top result is never dropped even if it alone exceeds the budget.
func TrimResults(results []rag.Result, reserved, maxTokens int) []rag.Result {
	for len(results) > 1 {
		total := reserved
		for _, r := range results {
			total += perChunkOverhead + Estimate(r.DocName) + Estimate(r.Text)
		}
		if total <= maxTokens {
			break
		}
		results = results[:len(results)-1]
	}
	return results
}
