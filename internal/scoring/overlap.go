package scoring

import (
	"context"
	"strings"
)

// OverlapMetric is a deterministic, offline scoring capability based on token
// overlap. It lets benchmark runs complete without a judge model; scores are
// coarse but stable across runs.
type OverlapMetric struct {
	name string
}

var _ Metric = (*OverlapMetric)(nil)

// NewOverlapFaithfulness scores answer support as token overlap between the
// answer and the retrieved context.
func NewOverlapFaithfulness() *OverlapMetric {
	return &OverlapMetric{name: DimensionFaithfulness}
}

// NewOverlapRelevancy scores intent match as token overlap between the query
// and the answer.
func NewOverlapRelevancy() *OverlapMetric {
	return &OverlapMetric{name: DimensionRelevancy}
}

// Name returns the dimension name.
func (m *OverlapMetric) Name() string {
	return m.name
}

// Measure computes the overlap score for the test case.
func (m *OverlapMetric) Measure(ctx context.Context, tc TestCase) (float64, error) {
	if err := tc.Validate(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	switch m.name {
	case DimensionFaithfulness:
		context := strings.Join(tc.RetrievalContext, " ")
		return overlapRatio(tc.ActualOutput, context), nil
	default:
		return overlapRatio(tc.Input, tc.ActualOutput), nil
	}
}

// overlapRatio returns the fraction of distinct tokens in a that also occur
// in b, in [0,1].
func overlapRatio(a, b string) float64 {
	aTokens := tokenize(a)
	if len(aTokens) == 0 {
		return 0
	}

	bSet := make(map[string]struct{})
	for _, tok := range tokenize(b) {
		bSet[tok] = struct{}{}
	}

	seen := make(map[string]struct{}, len(aTokens))
	matched := 0
	for _, tok := range aTokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := bSet[tok]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(seen))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}
