// Package results persists completed benchmark runs. A run record carries the
// ordered per-method results plus per-backend indexing statistics, keyed by a
// timestamp-derived run ID.
package results

import (
	"context"
	"time"

	"github.com/searchroi/search-roi/internal/backend"
	"github.com/searchroi/search-roi/internal/evaluation"
)

// SkippedMethod records a benchmark method that could not run, with the
// reason (typically an unavailable backend). Skipped is a degraded outcome,
// not a failure of the run.
type SkippedMethod struct {
	MethodName string `json:"method_name"`
	Reason     string `json:"reason"`
}

// RunRecord is one complete benchmark run as persisted.
type RunRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Methods holds completed method results in execution order.
	Methods []evaluation.MethodResult `json:"methods"`

	// Indexing holds resource usage per backend name.
	Indexing map[string]backend.IndexStats `json:"indexing"`

	Skipped []SkippedMethod `json:"skipped,omitempty"`
}

// Summary is the list-view projection of a run.
type Summary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	NumMethods int       `json:"num_methods"`
	NumSkipped int       `json:"num_skipped,omitempty"`
}

// Summarize projects a record to its list view.
func (r *RunRecord) Summarize() Summary {
	return Summary{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		NumMethods: len(r.Methods),
		NumSkipped: len(r.Skipped),
	}
}

// Store is the interface for run persistence.
type Store interface {
	// SaveRun persists a completed run.
	SaveRun(ctx context.Context, record *RunRecord) error

	// GetRun loads a run by ID.
	GetRun(ctx context.Context, id string) (*RunRecord, error)

	// ListRuns returns summaries of all runs, newest first.
	ListRuns(ctx context.Context) ([]Summary, error)

	// Close releases storage resources.
	Close() error
}

// NewRunID derives a run ID from the start time.
func NewRunID(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}
