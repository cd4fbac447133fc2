// Package queue defines the contract for enqueuing and consuming match events.
//
// Events are partitioned by match id so that a single consumer per shard
// sees each match's events in arrival order.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 50_000
	defaultShardCount    = 8
)

// Event represents the payload type flowing through the queue.
type Event = model.MatchEvent

// Queue provides non-blocking enqueue and per-shard channel dequeue.
type Queue interface {
	// Enqueue adds an event to its match's shard. It returns ErrFull when
	// the shard is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, e Event) error

	// Dequeue returns the channel for one shard. Exactly one consumer per
	// shard keeps per-match ordering intact.
	Dequeue(ctx context.Context, shard int) <-chan Event

	// Shards returns the number of shards.
	Shards() int

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops accepting events and closes every shard channel once drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using one buffered channel per shard.
type InMemoryQueue struct {
	shards        []chan Event
	capacity      int
	shardCount    int
	shardCapacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(q)
	}

	q.shardCapacity = (q.capacity + q.shardCount - 1) / q.shardCount
	q.shards = make([]chan Event, q.shardCount)
	for i := range q.shards {
		q.shards[i] = make(chan Event, q.shardCapacity)
	}

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// ShardFor returns the shard index for a match id.
func (q *InMemoryQueue) ShardFor(matchID string) int {
	return int(xxhash.Sum64String(matchID) % uint64(q.shardCount))
}

// Shards implements Queue.
func (q *InMemoryQueue) Shards() int { return q.shardCount }

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.shards[q.ShardFor(e.MatchID)] <- e:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context, shard int) <-chan Event {
	src := q.shards[shard]
	out := make(chan Event)
	go func() {
		defer close(out)
		for event := range src {
			select {
			case out <- event:
				metrics.RecordQueueDequeue()
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len implements Queue.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.updateGauges()
}

func (q *InMemoryQueue) updateGauges() int {
	size := 0
	for _, ch := range q.shards {
		size += len(ch)
	}
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.shardCapacity*q.shardCount))
	return size
}

// Close implements Queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	for _, ch := range q.shards {
		close(ch)
	}
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
