// Package dashboard serves persisted benchmark runs over a JSON HTTP API.
package dashboard

import (
	"github.com/searchroi/search-roi/internal/results"
)

// MethodComparison is the ROI view of one method: accuracy next to cost.
type MethodComparison struct {
	MethodName        string  `json:"method_name"`
	AvgFaithfulness   float64 `json:"avg_faithfulness"`
	AvgRelevancy      float64 `json:"avg_relevancy"`
	AvgAccuracy       float64 `json:"avg_accuracy"`
	AvgSearchTime     float64 `json:"avg_search_time"`
	TotalCost         float64 `json:"total_cost"`
	AccuracyPerDollar float64 `json:"accuracy_per_dollar"`
}

// Comparison summarizes one run across methods.
type Comparison struct {
	RunID          string             `json:"run_id"`
	Methods        []MethodComparison `json:"methods"`
	Skipped        []string           `json:"skipped,omitempty"`
	BestAccuracy   string             `json:"best_accuracy,omitempty"`
	BestValue      string             `json:"best_value,omitempty"`
	CheapestMethod string             `json:"cheapest_method,omitempty"`
}

// BuildComparison derives the per-method ROI summary from a run record.
// Accuracy is the mean of the two quality dimensions; accuracy-per-dollar is
// zero when a method recorded no cost.
func BuildComparison(record *results.RunRecord) Comparison {
	cmp := Comparison{
		RunID:   record.ID,
		Methods: make([]MethodComparison, 0, len(record.Methods)),
	}
	for _, s := range record.Skipped {
		cmp.Skipped = append(cmp.Skipped, s.MethodName)
	}

	var bestAccuracy, bestValue float64
	cheapest := -1.0

	for _, m := range record.Methods {
		accuracy := (m.AvgFaithfulness + m.AvgRelevancy) / 2

		var perDollar float64
		if m.TotalCost > 0 {
			perDollar = accuracy / m.TotalCost
		}

		cmp.Methods = append(cmp.Methods, MethodComparison{
			MethodName:        m.MethodName,
			AvgFaithfulness:   m.AvgFaithfulness,
			AvgRelevancy:      m.AvgRelevancy,
			AvgAccuracy:       accuracy,
			AvgSearchTime:     m.AvgSearchTime,
			TotalCost:         m.TotalCost,
			AccuracyPerDollar: perDollar,
		})

		if accuracy > bestAccuracy {
			bestAccuracy = accuracy
			cmp.BestAccuracy = m.MethodName
		}
		if perDollar > bestValue {
			bestValue = perDollar
			cmp.BestValue = m.MethodName
		}
		if cheapest < 0 || m.TotalCost < cheapest {
			cheapest = m.TotalCost
			cmp.CheapestMethod = m.MethodName
		}
	}

	return cmp
}
