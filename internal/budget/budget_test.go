package budget

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/docuseek/docqa-go/internal/rag"
)

func Test_Estimate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},        // < 4 chars → 1
		{"abcd", 1},     // exactly 4 chars → 1
		{"abcde", 1},    // 5 chars → 1
		{"abcdefgh", 2}, // 8 chars → 2
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		got := Estimate(tc.input)
		if got != tc.want {
			t.Errorf("Estimate(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func Test_EstimateMessages(t *testing.T) {
	t.Parallel()
	msgs := []*schema.Message{
		schema.UserMessage("hello world"),
		schema.UserMessage("hello world"),
	}
	got := EstimateMessages(msgs)
	// Each message: 4 overhead + Estimate("user")=1 + Estimate("hello world")=2 = 7
	// Two messages: 14
	if got != 14 {
		t.Errorf("EstimateMessages = %d, want 14", got)
	}
}

func makeResults(n, textLen int) []rag.Result {
	out := make([]rag.Result, n)
	for i := range out {
		out[i] = rag.Result{
			Entry: rag.Entry{DocName: "doc.txt", Text: strings.Repeat("x", textLen)},
			Score: 1 - float32(i)*0.1,
		}
	}
	return out
}

func Test_TrimResults_NoTrimNeeded(t *testing.T) {
	t.Parallel()
	results := makeResults(3, 40) // ~10 tokens each plus overhead
	trimmed := TrimResults(results, 100, DefaultMaxContextTokens)
	if len(trimmed) != 3 {
		t.Errorf("len = %d, want 3 (nothing should be trimmed)", len(trimmed))
	}
}

func Test_TrimResults_DropsTail(t *testing.T) {
	t.Parallel()
	// 4 results at ~250 tokens each, budget fits roughly two.
	results := makeResults(4, 1000)
	trimmed := TrimResults(results, 50, 600)
	if len(trimmed) >= 4 || len(trimmed) == 0 {
		t.Fatalf("len = %d, want partial trim", len(trimmed))
	}
	// Best-first ordering preserved: the kept results are the head.
	if trimmed[0].Score != results[0].Score {
		t.Error("top result must survive trimming")
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i].Score > trimmed[i-1].Score {
			t.Error("trimming must not reorder results")
		}
	}
}

func Test_TrimResults_KeepsTopEvenOverBudget(t *testing.T) {
	t.Parallel()
	results := makeResults(2, 10000)
	trimmed := TrimResults(results, 0, 10)
	if len(trimmed) != 1 {
		t.Errorf("len = %d, want 1 (top result always kept)", len(trimmed))
	}
}
