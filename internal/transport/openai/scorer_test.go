package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
)

func chatServer(t *testing.T, content string, inspect func(body []byte)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if inspect != nil {
			var buf [16384]byte
			n, _ := r.Body.Read(buf[:])
			inspect(buf[:n])
		}

		resp := map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": content},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func scoreCandidates() []result.Result {
	return []result.Result{
		result.New("item-1", 0.9, map[string]string{"category": "sofa"}, map[string]float64{"price": 1299}),
		result.New("item-2", 0.4, map[string]string{"category": "lamp"}, nil),
	}
}

func TestScorer_Score(t *testing.T) {
	var gotBody string
	server := chatServer(t, `{"scores": [0.8, 0.2]}`, func(body []byte) {
		gotBody = string(body)
	})
	defer server.Close()

	scorer := NewScorer(&ScorerConfig{APIKey: "k", BaseURL: server.URL, Model: "test-model", Logger: zap.NewNop()})
	scores, err := scorer.Score(context.Background(), "velvet sofa", scoreCandidates())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(scores) != 2 || scores[0] != 0.8 || scores[1] != 0.2 {
		t.Errorf("scores = %v, expected [0.8 0.2]", scores)
	}

	for _, want := range []string{"velvet sofa", "item-1", "item-2", "category=sofa"} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(gotBody, "similarity") {
		t.Error("prompt should not leak internal scores")
	}
}

func TestScorer_ScoreStripsCodeFences(t *testing.T) {
	server := chatServer(t, "```json\n{\"scores\": [1.0, 0.0]}\n```", nil)
	defer server.Close()

	scorer := NewScorer(&ScorerConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Logger: zap.NewNop()})
	scores, err := scorer.Score(context.Background(), "q", scoreCandidates())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if scores[0] != 1.0 {
		t.Errorf("scores = %v", scores)
	}
}

func TestScorer_ScoreCountMismatch(t *testing.T) {
	server := chatServer(t, `{"scores": [0.8]}`, nil)
	defer server.Close()

	scorer := NewScorer(&ScorerConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Logger: zap.NewNop()})
	if _, err := scorer.Score(context.Background(), "q", scoreCandidates()); err == nil {
		t.Error("expected error on score count mismatch")
	}
}

func TestScorer_ScoreMalformedJSON(t *testing.T) {
	server := chatServer(t, "the first item looks great!", nil)
	defer server.Close()

	scorer := NewScorer(&ScorerConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Logger: zap.NewNop()})
	if _, err := scorer.Score(context.Background(), "q", scoreCandidates()); err == nil {
		t.Error("expected error on malformed response")
	}
}

func TestScorer_Complete(t *testing.T) {
	server := chatServer(t, "rewritten query", nil)
	defer server.Close()

	scorer := NewScorer(&ScorerConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Logger: zap.NewNop()})
	got, err := scorer.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "rewritten query" {
		t.Errorf("Complete = %q", got)
	}
}

func TestScorer_CompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited", "type": "rate_limit"}}`)
	}))
	defer server.Close()

	scorer := NewScorer(&ScorerConfig{APIKey: "k", BaseURL: server.URL, Model: "m", Logger: zap.NewNop()})
	if _, err := scorer.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected error from API failure")
	}
}
