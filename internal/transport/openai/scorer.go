package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tastefeed/internal/domain/search/result"
)

const scorerSystemPrompt = `You score how well product candidates match a search query.
For each candidate, output a relevance score between 0.0 and 1.0.
Respond with JSON only: {"scores": [<one number per candidate, in input order>]}`

// Scorer is a chat-completion relevance scorer and generic completer on the
// same OpenAI-compatible API. It backs both the rerank pass and the query
// enhancer.
type Scorer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ScorerConfig holds the LLM provider settings.
type ScorerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewScorer creates a chat-based scorer.
func NewScorer(cfg *ScorerConfig) *Scorer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Scorer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Score implements rerank.Scorer: one [0,1] relevance per candidate, in
// input order.
func (s *Scorer) Score(ctx context.Context, query string, items []result.Result) ([]float64, error) {
	answer, err := s.Complete(ctx, scorerSystemPrompt, buildScorePrompt(query, items))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(answer)), &parsed); err != nil {
		return nil, fmt.Errorf("parse scorer response: %w", err)
	}
	if len(parsed.Scores) != len(items) {
		return nil, fmt.Errorf("scorer returned %d scores for %d candidates", len(parsed.Scores), len(items))
	}
	return parsed.Scores, nil
}

// Complete implements enhance.ChatCompleter.
func (s *Scorer) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels.
func (s *Scorer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildScorePrompt renders the query and candidate metadata as the user
// message. Vectors never go to the LLM, only human-readable metadata.
func buildScorePrompt(query string, items []result.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nCandidates:\n", query)
	for i := range items {
		item := &items[i]
		fmt.Fprintf(&b, "%d. id=%s", i+1, item.ID())
		for k, v := range item.Tags() {
			fmt.Fprintf(&b, " %s=%s", k, v)
		}
		for k, v := range item.Numerics() {
			fmt.Fprintf(&b, " %s=%g", k, v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// extractJSONObject cuts the first top-level JSON object out of the answer.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
