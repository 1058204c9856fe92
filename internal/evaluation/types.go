package evaluation

import (
	"github.com/searchroi/search-roi/internal/cost"
)

// TestQuery is one benchmark query, optionally with a known expected answer.
type TestQuery struct {
	Query    string `json:"query"`
	Expected string `json:"expected,omitempty"`
}

// QueryEvaluation holds the scores for one query under one method.
// Immutable after creation.
//
// The Failed flags distinguish a scoring-capability failure (score forced to
// zero) from a genuinely measured zero.
type QueryEvaluation struct {
	Query              string  `json:"query"`
	FaithfulnessScore  float64 `json:"faithfulness_score"`
	RelevancyScore     float64 `json:"relevancy_score"`
	FaithfulnessFailed bool    `json:"faithfulness_failed,omitempty"`
	RelevancyFailed    bool    `json:"relevancy_failed,omitempty"`
	SearchTime         float64 `json:"search_time"`
	EvaluationTime     float64 `json:"evaluation_time"`
	NumContexts        int     `json:"num_contexts"`
}

// MethodResult aggregates one method's benchmark pass. The cost fields are
// attached by the orchestrator; the evaluator has no ledger visibility.
type MethodResult struct {
	MethodName      string            `json:"method_name"`
	NumQueries      int               `json:"num_queries"`
	AvgFaithfulness float64           `json:"avg_faithfulness"`
	AvgRelevancy    float64           `json:"avg_relevancy"`
	AvgSearchTime   float64           `json:"avg_search_time"`
	TotalTime       float64           `json:"total_time"`
	CostBreakdown   cost.Breakdown    `json:"cost_breakdown"`
	TotalCost       float64           `json:"total_cost"`
	DetailedResults []QueryEvaluation `json:"detailed_results"`
}
