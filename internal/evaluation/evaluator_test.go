package evaluation

import (
	"context"
	"math"
	"testing"

	"github.com/searchroi/search-roi/internal/backend"
	"github.com/searchroi/search-roi/internal/pkg/errors"
	"github.com/searchroi/search-roi/internal/pkg/logger"
	"github.com/searchroi/search-roi/internal/scoring"
)

// stubMetric returns a fixed score, or fails on queries listed in failOn.
type stubMetric struct {
	name   string
	score  float64
	failOn map[string]bool
	calls  []scoring.TestCase
}

func (m *stubMetric) Name() string { return m.name }

func (m *stubMetric) Measure(ctx context.Context, tc scoring.TestCase) (float64, error) {
	m.calls = append(m.calls, tc)
	if m.failOn[tc.Input] {
		return 0, errors.ScoringError("stub failure", nil)
	}
	return m.score, nil
}

func newTestEvaluator(faithScore, relScore float64, failOn map[string]bool) (*Evaluator, *stubMetric, *stubMetric) {
	faith := &stubMetric{name: scoring.DimensionFaithfulness, score: faithScore, failOn: failOn}
	rel := &stubMetric{name: scoring.DimensionRelevancy, score: relScore}
	return New(faith, rel, logger.New("error", "text")), faith, rel
}

func hitsFor(texts ...string) []backend.SearchHit {
	hits := make([]backend.SearchHit, len(texts))
	for i, text := range texts {
		hits[i] = backend.SearchHit{
			ID:      text,
			Score:   1.0 - float64(i)*0.1,
			Content: map[string]any{"content": text},
		}
	}
	return hits
}

func TestEvaluateQuery_DefaultsExpectedToFirstContext(t *testing.T) {
	e, faith, _ := newTestEvaluator(0.8, 0.6, nil)

	eval := e.EvaluateQuery(context.Background(), "q", []string{"first", "second"}, "")

	if eval.FaithfulnessScore != 0.8 {
		t.Errorf("FaithfulnessScore = %v, want 0.8", eval.FaithfulnessScore)
	}
	if eval.NumContexts != 2 {
		t.Errorf("NumContexts = %d, want 2", eval.NumContexts)
	}
	if len(faith.calls) != 1 || faith.calls[0].ActualOutput != "first" {
		t.Errorf("expected defaulted to %q, want first context", faith.calls[0].ActualOutput)
	}
}

func TestEvaluateQuery_SentinelWhenNoContexts(t *testing.T) {
	e, faith, _ := newTestEvaluator(0.5, 0.5, nil)

	eval := e.EvaluateQuery(context.Background(), "q", nil, "")

	if eval.NumContexts != 0 {
		t.Errorf("NumContexts = %d, want 0", eval.NumContexts)
	}
	if faith.calls[0].ActualOutput != NoInformationSentinel {
		t.Errorf("expected = %q, want sentinel", faith.calls[0].ActualOutput)
	}
}

func TestEvaluateQuery_ScoringFailureIsolated(t *testing.T) {
	e, _, _ := newTestEvaluator(0.9, 0.7, map[string]bool{"failing query": true})

	eval := e.EvaluateQuery(context.Background(), "failing query", []string{"ctx"}, "")

	if eval.FaithfulnessScore != 0 {
		t.Errorf("FaithfulnessScore = %v, want 0 after failure", eval.FaithfulnessScore)
	}
	if !eval.FaithfulnessFailed {
		t.Error("FaithfulnessFailed = false, want true")
	}
	// The other dimension is unaffected.
	if eval.RelevancyScore != 0.7 {
		t.Errorf("RelevancyScore = %v, want 0.7", eval.RelevancyScore)
	}
	if eval.RelevancyFailed {
		t.Error("RelevancyFailed = true, want false")
	}
}

func TestEvaluateSearchMethod_Aggregation(t *testing.T) {
	e, _, _ := newTestEvaluator(0.8, 0.6, nil)

	queries := []TestQuery{
		{Query: "q1"},
		{Query: "q2"},
		{Query: "q3"},
	}

	search := func(ctx context.Context, query string) ([]backend.SearchHit, error) {
		return hitsFor("a", "b"), nil
	}

	result, err := e.EvaluateSearchMethod(context.Background(), queries, search, "Keyword")
	if err != nil {
		t.Fatalf("EvaluateSearchMethod() error = %v", err)
	}

	if result.MethodName != "Keyword" {
		t.Errorf("MethodName = %s, want Keyword", result.MethodName)
	}
	if result.NumQueries != 3 {
		t.Errorf("NumQueries = %d, want 3", result.NumQueries)
	}
	if math.Abs(result.AvgFaithfulness-0.8) > 1e-9 {
		t.Errorf("AvgFaithfulness = %v, want 0.8", result.AvgFaithfulness)
	}
	if math.Abs(result.AvgRelevancy-0.6) > 1e-9 {
		t.Errorf("AvgRelevancy = %v, want 0.6", result.AvgRelevancy)
	}
	if len(result.DetailedResults) != 3 {
		t.Errorf("DetailedResults length = %d, want 3", len(result.DetailedResults))
	}
}

func TestEvaluateSearchMethod_EmptyQuerySet(t *testing.T) {
	e, _, _ := newTestEvaluator(0.8, 0.6, nil)

	search := func(ctx context.Context, query string) ([]backend.SearchHit, error) {
		t.Fatal("search should not be called for empty query set")
		return nil, nil
	}

	result, err := e.EvaluateSearchMethod(context.Background(), nil, search, "Vector")
	if err != nil {
		t.Fatalf("EvaluateSearchMethod() error = %v", err)
	}

	if result.NumQueries != 0 {
		t.Errorf("NumQueries = %d, want 0", result.NumQueries)
	}
	if result.AvgFaithfulness != 0 || result.AvgRelevancy != 0 || result.AvgSearchTime != 0 {
		t.Errorf("averages = %v/%v/%v, want all 0",
			result.AvgFaithfulness, result.AvgRelevancy, result.AvgSearchTime)
	}
}

func TestEvaluateSearchMethod_TopFiveContexts(t *testing.T) {
	faith := &stubMetric{name: scoring.DimensionFaithfulness, score: 1}
	rel := &stubMetric{name: scoring.DimensionRelevancy, score: 1}
	e := New(faith, rel, logger.New("error", "text"))

	search := func(ctx context.Context, query string) ([]backend.SearchHit, error) {
		return hitsFor("a", "b", "c", "d", "e", "f", "g"), nil
	}

	result, err := e.EvaluateSearchMethod(context.Background(), []TestQuery{{Query: "q"}}, search, "Keyword")
	if err != nil {
		t.Fatalf("EvaluateSearchMethod() error = %v", err)
	}

	if result.DetailedResults[0].NumContexts != 5 {
		t.Errorf("NumContexts = %d, want 5 (top 5 hits)", result.DetailedResults[0].NumContexts)
	}
	if len(faith.calls[0].RetrievalContext) != 5 {
		t.Errorf("scoring saw %d contexts, want 5", len(faith.calls[0].RetrievalContext))
	}
}

func TestEvaluateSearchMethod_ScoringFailureCoversAllQueries(t *testing.T) {
	e, _, _ := newTestEvaluator(0.9, 0.7, map[string]bool{"q2": true})

	queries := []TestQuery{{Query: "q1"}, {Query: "q2"}, {Query: "q3"}}
	search := func(ctx context.Context, query string) ([]backend.SearchHit, error) {
		return hitsFor("ctx"), nil
	}

	result, err := e.EvaluateSearchMethod(context.Background(), queries, search, "Keyword")
	if err != nil {
		t.Fatalf("EvaluateSearchMethod() error = %v", err)
	}

	if result.NumQueries != 3 || len(result.DetailedResults) != 3 {
		t.Fatalf("result covers %d/%d queries, want 3/3", result.NumQueries, len(result.DetailedResults))
	}

	for _, r := range result.DetailedResults {
		switch r.Query {
		case "q2":
			if r.FaithfulnessScore != 0 || !r.FaithfulnessFailed {
				t.Errorf("q2 faithfulness = %v failed=%v, want 0/true", r.FaithfulnessScore, r.FaithfulnessFailed)
			}
		default:
			if r.FaithfulnessScore != 0.9 || r.FaithfulnessFailed {
				t.Errorf("%s faithfulness = %v failed=%v, want 0.9/false", r.Query, r.FaithfulnessScore, r.FaithfulnessFailed)
			}
		}
	}
}

func TestEvaluateSearchMethod_SearchErrorAbortsMethod(t *testing.T) {
	e, _, _ := newTestEvaluator(0.9, 0.7, nil)

	search := func(ctx context.Context, query string) ([]backend.SearchHit, error) {
		return nil, errors.BackendUnavailableError("elasticsearch")
	}

	_, err := e.EvaluateSearchMethod(context.Background(), []TestQuery{{Query: "q"}}, search, "Keyword")
	if !errors.IsBackendUnavailable(err) {
		t.Errorf("EvaluateSearchMethod() error = %v, want backend unavailable", err)
	}
}

func TestEvaluateSearchMethod_InputOrderPreserved(t *testing.T) {
	e, faith, _ := newTestEvaluator(1, 1, nil)

	queries := []TestQuery{{Query: "first"}, {Query: "second"}, {Query: "third"}}
	search := func(ctx context.Context, query string) ([]backend.SearchHit, error) {
		return hitsFor(query), nil
	}

	if _, err := e.EvaluateSearchMethod(context.Background(), queries, search, "Keyword"); err != nil {
		t.Fatalf("EvaluateSearchMethod() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, tc := range faith.calls {
		if tc.Input != want[i] {
			t.Errorf("scoring call %d input = %s, want %s", i, tc.Input, want[i])
		}
	}
}
