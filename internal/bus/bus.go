// Package bus publishes benchmark lifecycle events so external consumers can
// follow run progress without polling result storage.
package bus

import (
	"context"
	"time"
)

// Bus is the publishing side of the event surface. The benchmark never
// consumes events; subscription is a concern of whatever sits on the bus.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Close closes the bus and releases resources.
	Close() error
}

// Handler is a function that handles events. Used by the in-memory bus.
type Handler func(ctx context.Context, event Event) error

// Event represents a benchmark lifecycle event.
type Event struct {
	// Type is the event type, mirroring the topic it was published on.
	Type string `json:"type"`

	// RunID identifies the benchmark run the event belongs to.
	RunID string `json:"run_id"`

	// Timestamp is when the event was created (unix seconds).
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload map[string]any `json:"payload,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType, runID string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		RunID:     runID,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
}

// Topics for benchmark lifecycle events.
const (
	TopicRunStarted      = "benchmark.run.started"
	TopicIndexingStarted = "benchmark.indexing.started"
	TopicIndexingDone    = "benchmark.indexing.done"
	TopicMethodStarted   = "benchmark.method.started"
	TopicMethodDone      = "benchmark.method.done"
	TopicMethodSkipped   = "benchmark.method.skipped"
	TopicRunCompleted    = "benchmark.run.completed"
	TopicRunFailed       = "benchmark.run.failed"
)
