// Package backend defines the search backend capability contract consumed by
// the benchmark, and its Elasticsearch (lexical) and Qdrant (vector)
// implementations.
package backend

import (
	"context"
	"fmt"
)

// Document is a corpus document handed to a backend for indexing.
type Document struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Category string            `json:"category"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchHit is one result returned by a backend's search capability.
// ID is the stable dedup key for hybrid fusion.
type SearchHit struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Content map[string]any `json:"content"`
}

// Text extracts display text from the hit's content, preferring the body
// field, then the title, then a stringified representation.
func (h SearchHit) Text() string {
	if v, ok := h.Content["content"].(string); ok && v != "" {
		return v
	}
	if v, ok := h.Content["title"].(string); ok && v != "" {
		return v
	}
	return fmt.Sprintf("%v", h.Content)
}

// IndexStats reports resource usage for one backend's indexing pass.
type IndexStats struct {
	SuccessCount     int     `json:"success_count"`
	FailedCount      int     `json:"failed_count"`
	DurationSeconds  float64 `json:"duration_seconds"`
	MemoryUsageMB    float64 `json:"memory_usage_mb"`
	StorageUsageMB   float64 `json:"storage_usage_mb"`
	DocumentsIndexed int     `json:"documents_indexed"`
	EmbeddingCalls   int     `json:"embedding_calls,omitempty"`
}

// SearchBackend is the capability contract the benchmark consumes.
type SearchBackend interface {
	// Name identifies the backend in reports (e.g. "Elasticsearch").
	Name() string

	// Connect establishes the connection. False means unavailable, which is
	// a degraded state, not an error.
	Connect(ctx context.Context) bool

	// CreateIndex creates (or recreates) the benchmark index.
	CreateIndex(ctx context.Context) error

	// IndexDocuments indexes the corpus and reports resource usage.
	IndexDocuments(ctx context.Context, docs []Document) (IndexStats, error)

	// Search returns up to limit hits for the query, best first.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Close releases the connection. Safe to call after a failed Connect.
	Close() error
}

// Embedder turns text into dense vectors. Implemented by internal/embed;
// declared here so the vector backend depends on the capability, not the
// client.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
