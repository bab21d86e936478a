package enhance

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type mockCompleter struct {
	answer string
	err    error
	calls  int
}

func (m *mockCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.answer, m.err
}

func TestEnhance_RewritesQuery(t *testing.T) {
	llm := &mockCompleter{answer: `{"query": "mid-century modern velvet sofa", "category": "sofa"}`}
	e := New(llm, zap.NewNop())

	got := e.Enhance(context.Background(), "mcm velvet couch")
	if got.Query != "mid-century modern velvet sofa" {
		t.Errorf("Query = %q", got.Query)
	}
	if got.Category != "sofa" {
		t.Errorf("Category = %q, want sofa", got.Category)
	}
}

func TestEnhance_StripsCodeFences(t *testing.T) {
	llm := &mockCompleter{answer: "```json\n{\"query\": \"ergonomic office chair\", \"category\": \"\"}\n```"}
	e := New(llm, zap.NewNop())

	got := e.Enhance(context.Background(), "ergo chair")
	if got.Query != "ergonomic office chair" {
		t.Errorf("Query = %q", got.Query)
	}
}

func TestEnhance_LLMErrorFallsBack(t *testing.T) {
	llm := &mockCompleter{err: errors.New("rate limited")}
	e := New(llm, zap.NewNop())

	got := e.Enhance(context.Background(), "cozy reading lamp")
	if got.Query != "cozy reading lamp" || got.Category != "" {
		t.Errorf("got %+v, want raw query fallback", got)
	}
}

func TestEnhance_MalformedJSONFallsBack(t *testing.T) {
	llm := &mockCompleter{answer: "sure! here is a better query: velvet sofa"}
	e := New(llm, zap.NewNop())

	got := e.Enhance(context.Background(), "velevt sofa")
	if got.Query != "velevt sofa" {
		t.Errorf("Query = %q, want raw query", got.Query)
	}
}

func TestEnhance_EmptyRewriteFallsBack(t *testing.T) {
	llm := &mockCompleter{answer: `{"query": "  ", "category": "sofa"}`}
	e := New(llm, zap.NewNop())

	got := e.Enhance(context.Background(), "velvet sofa")
	if got.Query != "velvet sofa" {
		t.Errorf("Query = %q, want raw query", got.Query)
	}
}

func TestEnhance_NilLLMPassesThrough(t *testing.T) {
	e := New(nil, zap.NewNop())

	got := e.Enhance(context.Background(), "velvet sofa")
	if got.Query != "velvet sofa" {
		t.Errorf("Query = %q", got.Query)
	}
}

func TestEnhance_BlankQuerySkipsLLM(t *testing.T) {
	llm := &mockCompleter{answer: `{"query": "x"}`}
	e := New(llm, zap.NewNop())

	e.Enhance(context.Background(), "   ")
	if llm.calls != 0 {
		t.Errorf("calls = %d, want 0", llm.calls)
	}
}
