// Package enhance rewrites free-text search queries with an LLM before
// embedding. Strictly best effort: any failure returns the raw query.
package enhance

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

const systemPrompt = `You rewrite product search queries for a vector search engine.
Expand abbreviations, fix typos, and add descriptive attributes the user implied.
If the query clearly names a product category, report it.
Respond with JSON only: {"query": "<rewritten query>", "category": "<category or empty>"}`

// ChatCompleter runs one chat completion and returns the raw assistant text.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Enhanced is the LLM's reading of a raw query.
type Enhanced struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

// Enhancer rewrites queries through an LLM.
type Enhancer struct {
	llm    ChatCompleter
	logger *zap.Logger
}

// New creates an Enhancer. llm may be nil, in which case Enhance is a
// pass-through.
func New(llm ChatCompleter, logger *zap.Logger) *Enhancer {
	return &Enhancer{llm: llm, logger: logger}
}

// Enhance returns the rewritten query and an optional category hint. The
// raw query comes back untouched when the LLM is unavailable, errors, or
// returns something unusable.
func (e *Enhancer) Enhance(ctx context.Context, query string) Enhanced {
	raw := Enhanced{Query: query}
	if e.llm == nil || strings.TrimSpace(query) == "" {
		return raw
	}

	answer, err := e.llm.Complete(ctx, systemPrompt, query)
	if err != nil {
		e.logger.Warn("query enhancement failed", zap.Error(err))
		return raw
	}

	var enhanced Enhanced
	if err := json.Unmarshal([]byte(extractJSON(answer)), &enhanced); err != nil {
		e.logger.Warn("query enhancement returned malformed JSON", zap.Error(err))
		return raw
	}
	if strings.TrimSpace(enhanced.Query) == "" {
		return raw
	}
	return enhanced
}

// extractJSON cuts the first top-level JSON object out of the answer.
// Chat models occasionally wrap JSON in code fences or prose.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
