// Package evaluation runs the quality-measurement protocol for a search
// method over the benchmark query set.
package evaluation

import (
	"context"
	"time"

	"github.com/searchroi/search-roi/internal/backend"
	"github.com/searchroi/search-roi/internal/pkg/logger"
	"github.com/searchroi/search-roi/internal/scoring"
)

// NoInformationSentinel is the expected answer used when a search returns no
// contexts and no expected answer was supplied.
const NoInformationSentinel = "No relevant information found."

// contextLimit is how many top hits feed the scoring capability.
const contextLimit = 5

// SearchFunc is the search capability under evaluation. The orchestrator
// supplies a cost-instrumented implementation per method.
type SearchFunc func(ctx context.Context, query string) ([]backend.SearchHit, error)

// Evaluator scores retrieval quality along two dimensions.
type Evaluator struct {
	faithfulness scoring.Metric
	relevancy    scoring.Metric
	log          *logger.Logger
}

// New creates an evaluator with the given scoring metrics.
func New(faithfulness, relevancy scoring.Metric, log *logger.Logger) *Evaluator {
	return &Evaluator{
		faithfulness: faithfulness,
		relevancy:    relevancy,
		log:          log,
	}
}

// EvaluateQuery scores a single query against its retrieved contexts.
//
// Each scoring call is isolated: a failure records a zero score with the
// corresponding Failed flag set, and evaluation continues. A scoring failure
// never aborts the benchmark.
func (e *Evaluator) EvaluateQuery(ctx context.Context, query string, contexts []string, expected string) QueryEvaluation {
	if expected == "" {
		if len(contexts) > 0 {
			expected = contexts[0]
		} else {
			expected = NoInformationSentinel
		}
	}

	tc := scoring.TestCase{
		Input:            query,
		ActualOutput:     expected,
		RetrievalContext: contexts,
	}

	start := time.Now()

	faithfulness, faithErr := e.faithfulness.Measure(ctx, tc)
	if faithErr != nil {
		e.log.Warn("faithfulness scoring failed", "query", query, "error", faithErr)
		faithfulness = 0
	}

	relevancy, relErr := e.relevancy.Measure(ctx, tc)
	if relErr != nil {
		e.log.Warn("relevancy scoring failed", "query", query, "error", relErr)
		relevancy = 0
	}

	return QueryEvaluation{
		Query:              query,
		FaithfulnessScore:  faithfulness,
		RelevancyScore:     relevancy,
		FaithfulnessFailed: faithErr != nil,
		RelevancyFailed:    relErr != nil,
		EvaluationTime:     time.Since(start).Seconds(),
		NumContexts:        len(contexts),
	}
}

// EvaluateSearchMethod runs every query through the search capability in
// input order and aggregates the scores.
//
// A search failure aborts the method (the caller marks it unavailable); a
// scoring failure does not.
func (e *Evaluator) EvaluateSearchMethod(ctx context.Context, queries []TestQuery, search SearchFunc, methodName string) (MethodResult, error) {
	log := e.log.WithMethod(methodName)

	results := make([]QueryEvaluation, 0, len(queries))
	var totalTime float64

	for i, tq := range queries {
		if err := ctx.Err(); err != nil {
			return MethodResult{}, err
		}

		log.Debug("evaluating query", "index", i+1, "total", len(queries), "query", tq.Query)

		searchStart := time.Now()
		hits, err := search(ctx, tq.Query)
		searchTime := time.Since(searchStart).Seconds()
		if err != nil {
			return MethodResult{}, err
		}

		if len(hits) > contextLimit {
			hits = hits[:contextLimit]
		}
		contexts := make([]string, 0, len(hits))
		for _, hit := range hits {
			contexts = append(contexts, hit.Text())
		}

		eval := e.EvaluateQuery(ctx, tq.Query, contexts, tq.Expected)
		eval.SearchTime = searchTime
		results = append(results, eval)

		totalTime += searchTime + eval.EvaluationTime
	}

	result := MethodResult{
		MethodName:      methodName,
		NumQueries:      len(queries),
		TotalTime:       totalTime,
		DetailedResults: results,
	}

	if len(results) > 0 {
		var sumFaith, sumRel, sumSearch float64
		for _, r := range results {
			sumFaith += r.FaithfulnessScore
			sumRel += r.RelevancyScore
			sumSearch += r.SearchTime
		}
		n := float64(len(results))
		result.AvgFaithfulness = sumFaith / n
		result.AvgRelevancy = sumRel / n
		result.AvgSearchTime = sumSearch / n
	}

	return result, nil
}
