// Package worker drains queue shards into the match engines.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/pkg/logger"
	"github.com/okian/momentum/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Event abstracts what workers read off the queue.
type Event = model.MatchEvent

// Processor applies one event to its match.
type Processor interface {
	Process(ctx context.Context, e Event) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, e Event) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: mirrors the channel element type
	return f(ctx, e)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context, shard int) <-chan Event
	Shards() int
}

// Worker processes events from one shard.
type Worker interface {
	// Run starts the worker loop until the shard closes or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current event to finish.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker is the single consumer of one queue shard.
type InMemoryWorker struct {
	queue     Queue
	shard     int
	processor Processor
	name      string
	processed *atomic.Int64

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker bound to one shard.
func NewInMemoryWorker(queue Queue, shard int, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		shard:     shard,
		processor: processor,
		name:      "worker",
		processed: &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Processed returns how many events this worker handled successfully.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Run starts the worker loop. Canceling ctx does not stop it: accepted
// events are applied until the shard is closed or Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()

	events := w.queue.Dequeue(ctx, w.shard)
	for {
		select {
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processEvent(ctx context.Context, event Event) error { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.processor.Process(ctx, event); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process_error")
		return fmt.Errorf("process event %s of match %s: %w", event.EventID, event.MatchID, err)
	}
	w.processed.Add(1)
	return nil
}

// Pool runs one worker per queue shard.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}

	lastCount int64
	lastTime  time.Time

	logger logger.Logger
}

// NewPool creates a pool with one worker for every shard of queue.
func NewPool(queue Queue, processor Processor) *Pool {
	n := queue.Shards()
	pool := &Pool{
		workers:  make([]*InMemoryWorker, n),
		queue:    queue,
		shutdown: make(chan struct{}),
		lastTime: time.Now(),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < n; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, i, processor, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerActiveCount(n)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the total number of events handled by all workers.
func (p *Pool) Processed() int64 {
	var total int64
	for _, w := range p.workers {
		total += w.Processed()
	}
	return total
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	count := p.Processed()
	if elapsed := now.Sub(p.lastTime).Seconds(); elapsed > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(count-p.lastCount) / elapsed)
	}
	p.lastCount = count
	p.lastTime = now
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
