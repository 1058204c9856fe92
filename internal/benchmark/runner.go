package benchmark

import (
	"context"
	"time"

	"github.com/searchroi/search-roi/internal/backend"
	"github.com/searchroi/search-roi/internal/bus"
	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/cost"
	"github.com/searchroi/search-roi/internal/embed"
	"github.com/searchroi/search-roi/internal/evaluation"
	"github.com/searchroi/search-roi/internal/pkg/logger"
	"github.com/searchroi/search-roi/internal/results"
)

// State is the run lifecycle stage.
type State int

const (
	StateIdle State = iota
	StateIndexing
	StateBenchmarking
	StatePersisting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIndexing:
		return "indexing"
	case StateBenchmarking:
		return "benchmarking"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Orchestrator runs the full benchmark: index the corpus into each backend,
// benchmark every method sequentially with a fresh cost ledger, persist the
// run record.
//
// Backend availability is explicit orchestrator state: a failed connect or
// indexing pass marks that backend unavailable and methods depending on it
// are skipped, not retried.
type Orchestrator struct {
	lexical   backend.SearchBackend
	vector    backend.SearchBackend
	evaluator *evaluation.Evaluator
	estimator embed.TokenEstimator
	rates     cost.Rates
	store     results.Store
	events    bus.Bus
	log       *logger.Logger

	topK        int
	hybridLimit int

	state     State
	lexicalUp bool
	vectorUp  bool
}

// New creates an orchestrator. The backends are not connected until Run.
func New(cfg *config.Config, lexical, vector backend.SearchBackend, evaluator *evaluation.Evaluator, store results.Store, events bus.Bus, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		lexical:     lexical,
		vector:      vector,
		evaluator:   evaluator,
		estimator:   embed.NewTokenEstimator(cfg.Embedding.TokensPerWord),
		rates:       cost.RatesFromConfig(cfg.Cost),
		store:       store,
		events:      events,
		log:         log,
		topK:        cfg.Benchmark.TopK,
		hybridLimit: cfg.Benchmark.HybridLimit,
		state:       StateIdle,
	}
}

// State returns the current lifecycle stage.
func (o *Orchestrator) State() State {
	return o.state
}

// Run executes one complete benchmark and persists the result. Cancellation
// discards partial results; backend teardown runs in every exit path.
func (o *Orchestrator) Run(ctx context.Context, docs []backend.Document, queries []evaluation.TestQuery) (*results.RunRecord, error) {
	startedAt := time.Now()
	runID := results.NewRunID(startedAt)

	o.log.Info("benchmark run starting", "run_id", runID,
		"documents", len(docs), "queries", len(queries))
	o.publish(ctx, bus.TopicRunStarted, runID, map[string]any{
		"num_documents": len(docs),
		"num_queries":   len(queries),
	})

	o.state = StateIndexing

	o.lexicalUp = o.lexical.Connect(ctx)
	if !o.lexicalUp {
		o.log.Warn("backend unavailable", "backend", o.lexical.Name())
	}
	o.vectorUp = o.vector.Connect(ctx)
	if !o.vectorUp {
		o.log.Warn("backend unavailable", "backend", o.vector.Name())
	}

	// Teardown runs even on cancellation. Close is safe after a failed
	// Connect.
	defer func() {
		if err := o.lexical.Close(); err != nil {
			o.log.Warn("backend close failed", "backend", o.lexical.Name(), "error", err)
		}
		if err := o.vector.Close(); err != nil {
			o.log.Warn("backend close failed", "backend", o.vector.Name(), "error", err)
		}
	}()

	o.publish(ctx, bus.TopicIndexingStarted, runID, nil)
	indexing := o.indexCorpus(ctx, docs)
	if err := ctx.Err(); err != nil {
		o.publish(context.WithoutCancel(ctx), bus.TopicRunFailed, runID, map[string]any{"error": err.Error()})
		return nil, err
	}
	o.publish(ctx, bus.TopicIndexingDone, runID, map[string]any{"backends": len(indexing)})

	o.state = StateBenchmarking

	var methods []evaluation.MethodResult
	var skipped []results.SkippedMethod

	for _, kind := range []MethodKind{MethodKeyword, MethodVector, MethodHybrid} {
		if err := ctx.Err(); err != nil {
			o.publish(context.WithoutCancel(ctx), bus.TopicRunFailed, runID, map[string]any{"error": err.Error()})
			return nil, err
		}

		if reason := o.skipReason(kind); reason != "" {
			o.log.Warn("method skipped", "method", kind.String(), "reason", reason)
			skipped = append(skipped, results.SkippedMethod{MethodName: kind.String(), Reason: reason})
			o.publish(ctx, bus.TopicMethodSkipped, runID, map[string]any{
				"method": kind.String(),
				"reason": reason,
			})
			continue
		}

		o.log.Info("benchmarking method", "method", kind.String())
		o.publish(ctx, bus.TopicMethodStarted, runID, map[string]any{"method": kind.String()})

		result, err := o.runMethod(ctx, kind, queries)
		if err != nil {
			if ctx.Err() != nil {
				o.publish(context.WithoutCancel(ctx), bus.TopicRunFailed, runID, map[string]any{"error": ctx.Err().Error()})
				return nil, ctx.Err()
			}

			// One failed backend call marks the method unavailable for
			// the rest of the run; no retries.
			o.log.Warn("method failed", "method", kind.String(), "error", err)
			o.markBackendDown(kind)
			skipped = append(skipped, results.SkippedMethod{MethodName: kind.String(), Reason: err.Error()})
			o.publish(ctx, bus.TopicMethodSkipped, runID, map[string]any{
				"method": kind.String(),
				"reason": err.Error(),
			})
			continue
		}

		o.log.Info("method complete", "method", kind.String(),
			"avg_faithfulness", result.AvgFaithfulness,
			"avg_relevancy", result.AvgRelevancy,
			"total_cost", result.TotalCost)
		methods = append(methods, result)
		o.publish(ctx, bus.TopicMethodDone, runID, map[string]any{
			"method":           kind.String(),
			"avg_faithfulness": result.AvgFaithfulness,
			"avg_relevancy":    result.AvgRelevancy,
			"total_cost":       result.TotalCost,
		})
	}

	o.state = StatePersisting

	record := &results.RunRecord{
		ID:         runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Methods:    methods,
		Indexing:   indexing,
		Skipped:    skipped,
	}

	if err := o.store.SaveRun(ctx, record); err != nil {
		o.publish(context.WithoutCancel(ctx), bus.TopicRunFailed, runID, map[string]any{"error": err.Error()})
		return nil, err
	}

	o.state = StateDone
	o.log.Info("benchmark run complete", "run_id", runID,
		"methods", len(methods), "skipped", len(skipped))
	o.publish(ctx, bus.TopicRunCompleted, runID, map[string]any{
		"methods": len(methods),
		"skipped": len(skipped),
	})

	return record, nil
}

// indexCorpus indexes the documents into every available backend. An
// indexing failure degrades that backend to unavailable; it never fails the
// run.
func (o *Orchestrator) indexCorpus(ctx context.Context, docs []backend.Document) map[string]backend.IndexStats {
	indexing := make(map[string]backend.IndexStats)

	if o.lexicalUp {
		stats, err := o.indexBackend(ctx, o.lexical, docs)
		if err != nil {
			o.log.Warn("indexing failed", "backend", o.lexical.Name(), "error", err)
			o.lexicalUp = false
		} else {
			indexing[o.lexical.Name()] = stats
		}
	}
	if ctx.Err() != nil {
		return indexing
	}

	if o.vectorUp {
		stats, err := o.indexBackend(ctx, o.vector, docs)
		if err != nil {
			o.log.Warn("indexing failed", "backend", o.vector.Name(), "error", err)
			o.vectorUp = false
		} else {
			indexing[o.vector.Name()] = stats
		}
	}

	return indexing
}

func (o *Orchestrator) indexBackend(ctx context.Context, b backend.SearchBackend, docs []backend.Document) (backend.IndexStats, error) {
	log := o.log.WithBackend(b.Name())
	log.Info("indexing documents", "count", len(docs))

	if err := b.CreateIndex(ctx); err != nil {
		return backend.IndexStats{}, err
	}

	stats, err := b.IndexDocuments(ctx, docs)
	if err != nil {
		return backend.IndexStats{}, err
	}

	log.Info("indexing complete",
		"success", stats.SuccessCount,
		"failed", stats.FailedCount,
		"duration_seconds", stats.DurationSeconds)
	return stats, nil
}

// skipReason returns why the method cannot run, or "" if it can.
func (o *Orchestrator) skipReason(kind MethodKind) string {
	if kind.needsLexical() && !o.lexicalUp {
		return o.lexical.Name() + " is unavailable"
	}
	if kind.needsVector() && !o.vectorUp {
		return o.vector.Name() + " is unavailable"
	}
	return ""
}

// markBackendDown degrades the backend a failed method depends on, so later
// methods that need it are skipped instead of failing the same way. A hybrid
// failure degrades nothing: both single-backend methods already ran.
func (o *Orchestrator) markBackendDown(kind MethodKind) {
	switch kind {
	case MethodKeyword:
		o.lexicalUp = false
	case MethodVector:
		o.vectorUp = false
	}
}

// runMethod benchmarks one method against a fresh ledger and attaches the
// cost fields the evaluator has no visibility into.
func (o *Orchestrator) runMethod(ctx context.Context, kind MethodKind, queries []evaluation.TestQuery) (evaluation.MethodResult, error) {
	ledger := cost.NewLedger(o.rates)

	result, err := o.evaluator.EvaluateSearchMethod(ctx, queries, o.instrumentedSearch(kind, ledger), kind.String())
	if err != nil {
		return evaluation.MethodResult{}, err
	}

	result.CostBreakdown = ledger.Breakdown()
	result.TotalCost = ledger.TotalCost()
	return result, nil
}

// instrumentedSearch wraps the backend call(s) for one method so that every
// search records its ledger events before returning hits.
func (o *Orchestrator) instrumentedSearch(kind MethodKind, ledger *cost.Ledger) evaluation.SearchFunc {
	switch kind {
	case MethodKeyword:
		return func(ctx context.Context, query string) ([]backend.SearchHit, error) {
			start := time.Now()
			hits, err := o.lexical.Search(ctx, query, o.topK)
			elapsed := time.Since(start).Seconds()
			if err != nil {
				return nil, err
			}
			if _, err := ledger.RecordLexicalQuery(elapsed); err != nil {
				return nil, err
			}
			return hits, nil
		}

	case MethodVector:
		return func(ctx context.Context, query string) ([]backend.SearchHit, error) {
			if _, err := ledger.RecordEmbedding(o.estimator.Estimate(query)); err != nil {
				return nil, err
			}
			start := time.Now()
			hits, err := o.vector.Search(ctx, query, o.topK)
			elapsed := time.Since(start).Seconds()
			if err != nil {
				return nil, err
			}
			if _, err := ledger.RecordVectorQuery(elapsed); err != nil {
				return nil, err
			}
			return hits, nil
		}

	default: // MethodHybrid
		return func(ctx context.Context, query string) ([]backend.SearchHit, error) {
			// The query is embedded once; both sources share it.
			if _, err := ledger.RecordEmbedding(o.estimator.Estimate(query)); err != nil {
				return nil, err
			}

			start := time.Now()
			vectorHits, err := o.vector.Search(ctx, query, o.topK)
			elapsed := time.Since(start).Seconds()
			if err != nil {
				return nil, err
			}
			if _, err := ledger.RecordVectorQuery(elapsed); err != nil {
				return nil, err
			}

			start = time.Now()
			lexicalHits, err := o.lexical.Search(ctx, query, o.topK)
			elapsed = time.Since(start).Seconds()
			if err != nil {
				return nil, err
			}
			if _, err := ledger.RecordLexicalQuery(elapsed); err != nil {
				return nil, err
			}

			return FuseHits(vectorHits, lexicalHits, o.hybridLimit), nil
		}
	}
}

// publish emits a lifecycle event; delivery failures never affect the run.
func (o *Orchestrator) publish(ctx context.Context, topic, runID string, payload map[string]any) {
	if err := o.events.Publish(ctx, topic, bus.NewEvent(topic, runID, payload)); err != nil {
		o.log.Debug("event publish failed", "topic", topic, "error", err)
	}
}
