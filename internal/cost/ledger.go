// Package cost meters and prices backend operations for benchmark runs.
//
// A Ledger owns an append-only sequence of priced events. It never contacts
// a backend itself; callers record what they observed and the ledger derives
// cost from configured rates.
package cost

import (
	"fmt"
	"time"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// EventKind identifies the priced operation type.
type EventKind string

const (
	KindEmbedding    EventKind = "embedding"
	KindVectorQuery  EventKind = "vector_query"
	KindLexicalQuery EventKind = "lexical_query"
)

// Event is one priced backend operation. Magnitude is the token count for
// embedding events and elapsed seconds for query events. Cost is always
// derived from rates, never stored.
type Event struct {
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Magnitude float64   `json:"magnitude"`
}

// Rates holds the simulated pricing model. The time multipliers layer a
// per-second surcharge on top of the base per-query rates.
type Rates struct {
	EmbeddingPer1K        float64
	VectorPerQuery        float64
	VectorTimeMultiplier  float64
	LexicalPerQuery       float64
	LexicalTimeMultiplier float64
}

// RatesFromConfig builds Rates from the cost configuration section.
func RatesFromConfig(cfg config.CostConfig) Rates {
	return Rates{
		EmbeddingPer1K:        cfg.EmbeddingPer1K,
		VectorPerQuery:        cfg.VectorPerQuery,
		VectorTimeMultiplier:  cfg.VectorTimeMultiplier,
		LexicalPerQuery:       cfg.LexicalPerQuery,
		LexicalTimeMultiplier: cfg.LexicalTimeMultiplier,
	}
}

// Breakdown is an aggregate view over a ledger's events.
// Invariant: TotalCost == EmbeddingCost + VectorQueryCost + LexicalQueryCost.
type Breakdown struct {
	TotalCost        float64 `json:"total_cost"`
	EmbeddingCost    float64 `json:"embedding_cost"`
	VectorQueryCost  float64 `json:"vector_query_cost"`
	LexicalQueryCost float64 `json:"lexical_query_cost"`
	EmbeddingCalls   int     `json:"embedding_calls"`
	VectorQueries    int     `json:"vector_queries"`
	LexicalQueries   int     `json:"lexical_queries"`
	TotalComputeTime float64 `json:"total_compute_time"`
}

// Ledger meters the cost of atomic backend operations. A ledger is owned by
// exactly one method's benchmarking pass; it is not safe for concurrent use.
type Ledger struct {
	rates  Rates
	events []Event
}

// NewLedger creates an empty ledger with the given rates.
func NewLedger(rates Rates) *Ledger {
	return &Ledger{rates: rates}
}

// RecordEmbedding appends an embedding event and returns its cost.
// Cost is (tokens / 1000) * EmbeddingPer1K.
func (l *Ledger) RecordEmbedding(tokens int) (float64, error) {
	if tokens < 0 {
		return 0, errors.ValidationError(fmt.Sprintf("token count cannot be negative: %d", tokens))
	}

	l.events = append(l.events, Event{
		Kind:      KindEmbedding,
		Timestamp: time.Now(),
		Magnitude: float64(tokens),
	})

	return l.eventCost(l.events[len(l.events)-1]), nil
}

// RecordVectorQuery appends a vector query event and returns its cost.
// Cost is VectorPerQuery + computeTime * VectorTimeMultiplier.
func (l *Ledger) RecordVectorQuery(computeTime float64) (float64, error) {
	if computeTime < 0 {
		return 0, errors.ValidationError(fmt.Sprintf("compute time cannot be negative: %v", computeTime))
	}

	l.events = append(l.events, Event{
		Kind:      KindVectorQuery,
		Timestamp: time.Now(),
		Magnitude: computeTime,
	})

	return l.eventCost(l.events[len(l.events)-1]), nil
}

// RecordLexicalQuery appends a lexical query event and returns its cost.
// Cost is LexicalPerQuery + latency * LexicalTimeMultiplier.
func (l *Ledger) RecordLexicalQuery(latency float64) (float64, error) {
	if latency < 0 {
		return 0, errors.ValidationError(fmt.Sprintf("latency cannot be negative: %v", latency))
	}

	l.events = append(l.events, Event{
		Kind:      KindLexicalQuery,
		Timestamp: time.Now(),
		Magnitude: latency,
	})

	return l.eventCost(l.events[len(l.events)-1]), nil
}

// TotalCost returns the sum of all recorded event costs.
func (l *Ledger) TotalCost() float64 {
	var total float64
	for _, e := range l.events {
		total += l.eventCost(e)
	}
	return total
}

// Breakdown computes the aggregate view fresh from the event log.
// It has no side effects; calling it twice without intervening records
// returns identical values.
func (l *Ledger) Breakdown() Breakdown {
	var b Breakdown

	for _, e := range l.events {
		cost := l.eventCost(e)
		b.TotalCost += cost

		switch e.Kind {
		case KindEmbedding:
			b.EmbeddingCost += cost
			b.EmbeddingCalls++
		case KindVectorQuery:
			b.VectorQueryCost += cost
			b.VectorQueries++
			b.TotalComputeTime += e.Magnitude
		case KindLexicalQuery:
			b.LexicalQueryCost += cost
			b.LexicalQueries++
			b.TotalComputeTime += e.Magnitude
		}
	}

	return b
}

// Events returns a copy of the recorded event log.
func (l *Ledger) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Reset clears the event log. Only valid at the start of a fresh
// measurement scope, never mid-method.
func (l *Ledger) Reset() {
	l.events = nil
}

func (l *Ledger) eventCost(e Event) float64 {
	switch e.Kind {
	case KindEmbedding:
		return (e.Magnitude / 1000) * l.rates.EmbeddingPer1K
	case KindVectorQuery:
		return l.rates.VectorPerQuery + e.Magnitude*l.rates.VectorTimeMultiplier
	case KindLexicalQuery:
		return l.rates.LexicalPerQuery + e.Magnitude*l.rates.LexicalTimeMultiplier
	default:
		return 0
	}
}
