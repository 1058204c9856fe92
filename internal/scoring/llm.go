package scoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// LLMConfig configures the LLM-judged metrics.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LLMMetric scores a dimension by asking a chat model to grade the test case.
type LLMMetric struct {
	client *openai.Client
	model  string
	name   string
	prompt string
}

var _ Metric = (*LLMMetric)(nil)

const (
	faithfulnessPrompt = `You are grading retrieval quality. Given a query, an answer, and the
retrieved context, rate how well the answer is supported by the context.
Reply with only a number between 0.0 and 1.0.`

	relevancyPrompt = `You are grading retrieval quality. Given a query, an answer, and the
retrieved context, rate how well the answer addresses the query's intent.
Reply with only a number between 0.0 and 1.0.`
)

// NewLLMFaithfulness creates an LLM-judged faithfulness metric.
func NewLLMFaithfulness(cfg LLMConfig) (*LLMMetric, error) {
	return newLLMMetric(cfg, DimensionFaithfulness, faithfulnessPrompt)
}

// NewLLMRelevancy creates an LLM-judged relevancy metric.
func NewLLMRelevancy(cfg LLMConfig) (*LLMMetric, error) {
	return newLLMMetric(cfg, DimensionRelevancy, relevancyPrompt)
}

func newLLMMetric(cfg LLMConfig, name, prompt string) (*LLMMetric, error) {
	if cfg.APIKey == "" {
		return nil, errors.ValidationError("scoring API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &LLMMetric{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		name:   name,
		prompt: prompt,
	}, nil
}

// Name returns the dimension name.
func (m *LLMMetric) Name() string {
	return m.name
}

// Measure asks the judge model to grade the test case.
func (m *LLMMetric) Measure(ctx context.Context, tc TestCase) (float64, error) {
	if err := tc.Validate(); err != nil {
		return 0, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\nAnswer: %s\n\nRetrieved context:\n", tc.Input, tc.ActualOutput)
	for i, c := range tc.RetrievalContext {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, c)
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: m.prompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return 0, errors.ScoringError(fmt.Sprintf("%s judge call failed", m.name), err)
	}

	if len(resp.Choices) == 0 {
		return 0, errors.ScoringError(fmt.Sprintf("%s judge returned no choices", m.name), nil)
	}

	return parseScore(resp.Choices[0].Message.Content, m.name)
}

// parseScore extracts a [0,1] score from the judge's reply.
func parseScore(reply, dimension string) (float64, error) {
	text := strings.TrimSpace(reply)
	// Tolerate replies like "Score: 0.8" by taking the last field.
	fields := strings.Fields(text)
	if len(fields) > 0 {
		text = fields[len(fields)-1]
	}
	text = strings.Trim(text, ".,")

	score, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.ScoringError(fmt.Sprintf("%s judge reply not a number: %q", dimension, reply), err)
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
