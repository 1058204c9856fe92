package embed

import (
	"testing"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.EmbeddingConfig{})
	if !errors.IsValidation(err) {
		t.Errorf("NewClient() without key error = %v, want validation error", err)
	}

	c, err := NewClient(config.EmbeddingConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.model != "text-embedding-ada-002" {
		t.Errorf("default model = %s, want text-embedding-ada-002", c.model)
	}
}

func TestTokenEstimator(t *testing.T) {
	tests := []struct {
		name          string
		tokensPerWord int
		query         string
		want          int
	}{
		{"three words default multiplier", 100, "widget temperature range", 300},
		{"empty query", 100, "", 0},
		{"custom multiplier", 10, "one two", 20},
		{"extra whitespace ignored", 100, "  a   b  ", 200},
		{"invalid multiplier falls back", 0, "a b c", 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewTokenEstimator(tt.tokensPerWord)
			if got := e.Estimate(tt.query); got != tt.want {
				t.Errorf("Estimate(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestTokenEstimatorDeterministic(t *testing.T) {
	e := NewTokenEstimator(100)
	query := "how do I install the controller"

	first := e.Estimate(query)
	for i := 0; i < 10; i++ {
		if got := e.Estimate(query); got != first {
			t.Fatalf("Estimate() not deterministic: %d != %d", got, first)
		}
	}
}
