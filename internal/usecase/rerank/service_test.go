package rerank

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
)

// --- Mocks ---

type mockScorer struct {
	scores []float64
	err    error
	calls  int

	delay time.Duration
}

func (m *mockScorer) Score(ctx context.Context, _ string, _ []result.Result) ([]float64, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.scores, m.err
}

func candidates() []result.Result {
	return []result.Result{
		result.New("item-a", 0.9, nil, nil),
		result.New("item-b", 0.5, nil, nil),
	}
}

func newService(t *testing.T, scorer Scorer, opts Options) *Service {
	t.Helper()
	return New(scorer, opts, zap.NewNop())
}

// --- Tests ---

func TestRerank_MergesAndReorders(t *testing.T) {
	// item-b gets a high secondary score and should overtake item-a.
	scorer := &mockScorer{scores: []float64{0.0, 1.0}}
	svc := newService(t, scorer, Options{Weight: 0.5})

	out := svc.Rerank(context.Background(), "cozy sofa", candidates())
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}

	// item-a: 0.5*((0.9+1)/2) + 0.5*0.0 = 0.475
	// item-b: 0.5*((0.5+1)/2) + 0.5*1.0 = 0.875
	if out[0].ID() != "item-b" {
		t.Errorf("out[0] = %q, want item-b", out[0].ID())
	}
	if got := out[0].Merged(); math.Abs(got-0.875) > 1e-9 {
		t.Errorf("merged = %v, want 0.875", got)
	}
	if got := out[1].Merged(); math.Abs(got-0.475) > 1e-9 {
		t.Errorf("merged = %v, want 0.475", got)
	}
	if out[0].Secondary() == nil || *out[0].Secondary() != 1.0 {
		t.Errorf("secondary = %v, want 1.0", out[0].Secondary())
	}
	// Similarity of the input must be preserved untouched.
	if out[0].Similarity() != 0.5 {
		t.Errorf("similarity = %v, want 0.5", out[0].Similarity())
	}
}

func TestRerank_TieBreaksOnID(t *testing.T) {
	scorer := &mockScorer{scores: []float64{0.5, 0.5}}
	in := []result.Result{
		result.New("item-z", 0.7, nil, nil),
		result.New("item-a", 0.7, nil, nil),
	}
	svc := newService(t, scorer, Options{Weight: 0.3})

	out := svc.Rerank(context.Background(), "q", in)
	if out[0].ID() != "item-a" || out[1].ID() != "item-z" {
		t.Errorf("order = [%s %s], want [item-a item-z]", out[0].ID(), out[1].ID())
	}
}

func TestRerank_ScorerErrorDegrades(t *testing.T) {
	scorer := &mockScorer{err: errors.New("llm unavailable")}
	svc := newService(t, scorer, Options{Weight: 0.3})

	in := candidates()
	out := svc.Rerank(context.Background(), "q", in)
	if len(out) != 2 || out[0].ID() != "item-a" || out[1].ID() != "item-b" {
		t.Errorf("degraded output should preserve input order, got %v", ids(out))
	}
	if out[0].Secondary() != nil {
		t.Error("degraded result should carry no secondary score")
	}
}

func TestRerank_ScoreCountMismatchDegrades(t *testing.T) {
	scorer := &mockScorer{scores: []float64{0.5}}
	svc := newService(t, scorer, Options{Weight: 0.3})

	out := svc.Rerank(context.Background(), "q", candidates())
	if out[0].ID() != "item-a" {
		t.Errorf("output order changed on mismatch, got %v", ids(out))
	}
}

func TestRerank_TimeoutDegrades(t *testing.T) {
	scorer := &mockScorer{scores: []float64{0.1, 0.2}, delay: 50 * time.Millisecond}
	svc := newService(t, scorer, Options{Weight: 0.3, Timeout: time.Millisecond})

	out := svc.Rerank(context.Background(), "q", candidates())
	if out[0].ID() != "item-a" || out[0].Secondary() != nil {
		t.Error("timed-out rerank should return input unchanged")
	}
}

func TestRerank_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	scorer := &mockScorer{err: errors.New("boom")}
	svc := newService(t, scorer, Options{Weight: 0.3, BreakerFailures: 2})

	for i := 0; i < 5; i++ {
		svc.Rerank(context.Background(), "q", candidates())
	}
	// Two real calls trip the breaker, the remaining three are rejected
	// without reaching the scorer.
	if scorer.calls != 2 {
		t.Errorf("scorer calls = %d, want 2", scorer.calls)
	}
}

func TestRerank_EmptyInputSkips(t *testing.T) {
	scorer := &mockScorer{scores: []float64{}}
	svc := newService(t, scorer, Options{Weight: 0.3})

	out := svc.Rerank(context.Background(), "q", nil)
	if out != nil {
		t.Errorf("out = %v, want nil", out)
	}
	if scorer.calls != 0 {
		t.Errorf("scorer calls = %d, want 0", scorer.calls)
	}
}

func TestRerank_NilScorerPassesThrough(t *testing.T) {
	svc := newService(t, nil, Options{Weight: 0.3})

	in := candidates()
	out := svc.Rerank(context.Background(), "q", in)
	if len(out) != 2 || out[0].ID() != "item-a" {
		t.Errorf("pass-through changed results, got %v", ids(out))
	}
}

func TestRerank_ClampsSecondaryScores(t *testing.T) {
	scorer := &mockScorer{scores: []float64{1.7, -0.3}}
	svc := newService(t, scorer, Options{Weight: 1.0})

	out := svc.Rerank(context.Background(), "q", candidates())
	if out[0].Merged() != 1.0 {
		t.Errorf("merged = %v, want clamped 1.0", out[0].Merged())
	}
	if out[1].Merged() != 0.0 {
		t.Errorf("merged = %v, want clamped 0.0", out[1].Merged())
	}
}

func ids(rs []result.Result) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].ID()
	}
	return out
}
