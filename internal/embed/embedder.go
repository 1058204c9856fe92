// Package embed provides the embedding client used by the vector backend and
// the benchmark's token-cost estimation.
package embed

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// Client generates embeddings via an OpenAI-compatible API, throttled so
// benchmark runs stay within provider quotas.
type Client struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient creates the embedding client from configuration.
func NewClient(cfg config.EmbeddingConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.ValidationError("embedding API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-ada-002"
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		api:     openai.NewClientWithConfig(clientCfg),
		model:   model,
		limiter: limiter,
	}, nil
}

// Embed generates embeddings for the texts in order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, errors.EmbeddingError("embedding request failed", err)
	}

	out := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(out) {
			return nil, errors.EmbeddingError("embedding response index out of range", nil)
		}
		out[data.Index] = data.Embedding
	}

	return out, nil
}

// TokenEstimator approximates the token cost of embedding a query. It is a
// simulation heuristic, not a tokenizer; the multiplier is configurable so
// operators can model different pricing assumptions.
type TokenEstimator struct {
	tokensPerWord int
}

// NewTokenEstimator creates an estimator with the configured multiplier.
func NewTokenEstimator(tokensPerWord int) TokenEstimator {
	if tokensPerWord < 1 {
		tokensPerWord = 100
	}
	return TokenEstimator{tokensPerWord: tokensPerWord}
}

// Estimate returns the simulated token count for a query: word count times
// the configured multiplier. Deterministic for a given query.
func (e TokenEstimator) Estimate(query string) int {
	return len(strings.Fields(query)) * e.tokensPerWord
}
