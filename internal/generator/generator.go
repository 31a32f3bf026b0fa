package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/docuseek/docqa-go/internal/budget"
	"github.com/docuseek/docqa-go/internal/logging"
	"github.com/docuseek/docqa-go/internal/rag"
)

// systemPrompt constrains the model to answer strictly from the supplied
// excerpts. If the excerpts do not contain the answer the model must say so
// rather than guess.
const systemPrompt = `You are a document question-answering assistant.
Answer the user's question using ONLY the document excerpts provided below.
Each excerpt is labelled with the name of the document it came from.
If the excerpts do not contain enough information to answer the question,
say that the documents do not cover it. Do not invent facts.
Keep answers concise and cite document names when helpful.`

// EinoGenerator answers questions with an Eino chat model. It is stateless
// apart from the underlying model client and safe for concurrent use.
type EinoGenerator struct {
	chat model.ToolCallingChatModel
}

// NewEinoGenerator wraps an already constructed chat model.
func NewEinoGenerator(chat model.ToolCallingChatModel) *EinoGenerator {
	return &EinoGenerator{chat: chat}
}

// Answer builds a grounded prompt from the retrieved chunks and asks the
// model for a single non-streamed completion.
func (g *EinoGenerator) Answer(ctx context.Context, question string, retrieved []rag.Result) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildPrompt(question, retrieved)),
	}
	logging.FromContext(ctx).Debug("calling chat model",
		"chunks", len(retrieved),
		"estimated_prompt_tokens", budget.EstimateMessages(messages))
	resp, err := g.chat.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generator: model call failed: %w", err)
	}
	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", fmt.Errorf("generator: model returned an empty answer")
	}
	return answer, nil
}

// buildPrompt lays out the excerpts in retrieval order, each under a header
// naming its source document, followed by the question.
func buildPrompt(question string, retrieved []rag.Result) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for i, r := range retrieved {
		fmt.Fprintf(&b, "[%d] From %q:\n%s\n\n", i+1, r.DocName, r.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
