package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docuseek/docqa-go/internal/rag"
	"github.com/docuseek/docqa-go/internal/store"
)

// countingStore stubs the document count; nothing else is touched by Ask.
type countingStore struct {
	store.DocumentStore
	count int
}

func (c *countingStore) CountDocuments(context.Context) (int, error) {
	return c.count, nil
}

type fakeRetriever struct {
	results []rag.Result
	err     error
	gotTopK int
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, topK int) ([]rag.Result, error) {
	f.gotTopK = topK
	return f.results, f.err
}

type fakeGenerator struct {
	answer string
	err    error
}

func (f *fakeGenerator) Answer(_ context.Context, _ string, _ []rag.Result) (string, error) {
	return f.answer, f.err
}

func twoDocResults() []rag.Result {
	return []rag.Result{
		{Entry: rag.Entry{DocID: "d1", DocName: "policy.txt", Text: "Remote work is allowed 3 days per week."}, Score: 0.92},
		{Entry: rag.Entry{DocID: "d1", DocName: "policy.txt", Text: "Equipment is provided for home offices."}, Score: 0.71},
		{Entry: rag.Entry{DocID: "d2", DocName: "handbook.pdf", Text: "Core hours are 10:00 to 16:00."}, Score: 0.55},
	}
}

func TestAskReturnsAnswerWithSources(t *testing.T) {
	t.Parallel()

	ret := &fakeRetriever{results: twoDocResults()}
	svc, err := NewService(&countingStore{count: 2}, ret, &fakeGenerator{answer: "3 days per week."}, Config{})
	if err != nil {
		t.Fatal(err)
	}

	ans, err := svc.Ask(context.Background(), "How many remote days?", 0)
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text != "3 days per week." {
		t.Errorf("Text = %q", ans.Text)
	}
	if ans.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", ans.Confidence)
	}
	if ret.gotTopK != DefaultTopK {
		t.Errorf("topK = %d, want default %d", ret.gotTopK, DefaultTopK)
	}

	// One source per retrieved chunk, best first, raw score each. Two
	// chunks from the same document stay two entries.
	want := []Source{
		{DocumentName: "policy.txt", SimilarityScore: 0.92},
		{DocumentName: "policy.txt", SimilarityScore: 0.71},
		{DocumentName: "handbook.pdf", SimilarityScore: 0.55},
	}
	if len(ans.Sources) != len(want) {
		t.Fatalf("got %d sources, want %d", len(ans.Sources), len(want))
	}
	for i, w := range want {
		if ans.Sources[i] != w {
			t.Errorf("source[%d] = %+v, want %+v", i, ans.Sources[i], w)
		}
	}
}

func TestAskNoDocuments(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&countingStore{count: 0}, &fakeRetriever{}, &fakeGenerator{}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ask(context.Background(), "anything?", 0); !errors.Is(err, ErrNoIndex) {
		t.Errorf("err = %v, want ErrNoIndex", err)
	}
}

func TestAskEmptyRetrieval(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&countingStore{count: 1}, &fakeRetriever{}, &fakeGenerator{}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ask(context.Background(), "anything?", 0); !errors.Is(err, ErrNoIndex) {
		t.Errorf("err = %v, want ErrNoIndex", err)
	}
}

func TestAskGenerationFailure(t *testing.T) {
	t.Parallel()

	svc, err := NewService(
		&countingStore{count: 1},
		&fakeRetriever{results: twoDocResults()},
		&fakeGenerator{err: errors.New("model unreachable")},
		Config{},
	)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Ask(context.Background(), "anything?", 0)
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("err = %v, want ErrGeneration", err)
	}
	if !strings.Contains(err.Error(), "model unreachable") {
		t.Errorf("error should carry the cause: %v", err)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&countingStore{count: 1}, &fakeRetriever{}, &fakeGenerator{}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ask(context.Background(), "", 0); err == nil {
		t.Error("expected error for empty question")
	}
}

func TestAskExplicitTopK(t *testing.T) {
	t.Parallel()

	ret := &fakeRetriever{results: twoDocResults()}
	svc, err := NewService(&countingStore{count: 1}, ret, &fakeGenerator{answer: "ok"}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ask(context.Background(), "q?", 7); err != nil {
		t.Fatal(err)
	}
	if ret.gotTopK != 7 {
		t.Errorf("topK = %d, want 7", ret.gotTopK)
	}
}
