// Package scoring provides the accuracy scoring capability consumed by the
// evaluator. A Metric measures one quality dimension of a retrieval outcome
// and returns a score in [0,1].
package scoring

import (
	"context"

	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// TestCase is the input to a single measurement.
type TestCase struct {
	// Input is the original search query.
	Input string

	// ActualOutput is the answer being judged.
	ActualOutput string

	// RetrievalContext is the ordered list of retrieved document texts.
	RetrievalContext []string
}

// Validate rejects malformed test cases before they reach a scorer.
func (tc TestCase) Validate() error {
	if tc.Input == "" {
		return errors.ValidationError("test case input cannot be empty")
	}
	if tc.ActualOutput == "" {
		return errors.ValidationError("test case actual output cannot be empty")
	}
	return nil
}

// Metric measures one quality dimension. Implementations return a score in
// [0,1] or a scoring error; they must not panic on malformed input.
type Metric interface {
	// Name identifies the dimension (e.g. "faithfulness", "relevancy").
	Name() string

	// Measure scores the test case. Blocking; honors ctx cancellation.
	Measure(ctx context.Context, tc TestCase) (float64, error)
}

// Dimension names used across the benchmark.
const (
	DimensionFaithfulness = "faithfulness"
	DimensionRelevancy    = "relevancy"
)
