// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/okian/momentum/internal/adapters/mq/queue"
	workerpool "github.com/okian/momentum/internal/adapters/mq/worker"
	"github.com/okian/momentum/internal/adapters/publisher"
	repository "github.com/okian/momentum/internal/adapters/repository"
	"github.com/okian/momentum/internal/domain/dedupe"
	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/pkg/logger"
	"github.com/okian/momentum/pkg/metrics"
)

// Service implements the API dependencies for the momentum system.
type Service struct {
	mu sync.RWMutex

	store      *repository.MemoryStore
	deduper    dedupe.Deduper
	eventQueue *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool
	publisher  publisher.Publisher

	workerCount int
	queueSize   int
	dedupeSize  int
	maxMatches  int
	maxHorizon  int
	randomSeed  int64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of queue shards, one worker each.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxMatches caps the number of live matches. 0 means unlimited.
func WithMaxMatches(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxMatches = n
		}
	}
}

// WithMaxForecastHorizon caps forecast requests.
func WithMaxForecastHorizon(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxHorizon = n
		}
	}
}

// WithRandomSeed seeds the per-match random sources. 0 disables randomness.
func WithRandomSeed(seed int64) Option {
	return func(s *Service) {
		s.randomSeed = seed
	}
}

// WithPublisher sets where shifts and patterns are published.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   50_000,
		dedupeSize:  200_000,
		maxMatches:  1_000,
		maxHorizon:  30,
		publisher:   publisher.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting momentum service...")

	s.store = repository.NewMemoryStore(ctx,
		repository.WithMaxMatches(s.maxMatches),
		repository.WithRandomSeed(s.randomSeed),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithShards(s.workerCount),
	)
	s.workerPool = workerpool.NewPool(s.eventQueue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "momentum service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxMatches", s.maxMatches),
	)
	return nil
}

// Stop drains the queue and shuts the service down. Events accepted before
// Stop are applied even when the context given to Start was canceled.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping momentum service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "momentum service stopped")
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return fmt.Errorf("%w: service not started", model.ErrUnavailable)
	}
	return nil
}

// CreateMatch initializes a new match. An empty id gets a generated one.
func (s *Service) CreateMatch(ctx context.Context, id string, cfg momentum.InitConfig) (string, momentum.InitResult, error) {
	if err := s.running(); err != nil {
		return "", momentum.InitResult{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	_, res, err := s.store.Create(ctx, id, cfg)
	if err != nil {
		return "", momentum.InitResult{}, translate(err)
	}
	s.logger.Info(ctx, "match created",
		logger.String("match_id", id),
		logger.String("home", cfg.HomeTeam),
		logger.String("away", cfg.AwayTeam),
	)
	return id, res, nil
}

// DeleteMatch drops a match and forgets its event ids.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	if err := s.running(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return translate(err)
	}
	forgotten := s.deduper.ForgetPrefix(ctx, model.MatchEvent{MatchID: id}.DedupeKey())
	s.logger.Info(ctx, "match deleted", logger.String("match_id", id), logger.Int("forgotten_ids", forgotten))
	return nil
}

// ListMatches returns the live matches.
func (s *Service) ListMatches(ctx context.Context) ([]model.MatchSummary, error) {
	if err := s.running(); err != nil {
		return nil, err
	}
	return s.store.List(ctx), nil
}

// Submit deduplicates an event and queues it for its match's worker.
// duplicate is true when the event id was already accepted for the match.
func (s *Service) Submit(ctx context.Context, e model.MatchEvent) (duplicate bool, err error) { //nolint:gocritic // hugeParam: value semantics match the queue
	if err := s.running(); err != nil {
		return false, err
	}
	if err := s.precheck(ctx, e); err != nil {
		return false, err
	}

	key := e.DedupeKey()
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event", logger.String("match_id", e.MatchID), logger.String("event_id", e.EventID))
		return true, nil
	}

	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}
	if err := s.eventQueue.Enqueue(ctx, e); err != nil {
		s.deduper.Unrecord(ctx, key)
		metrics.RecordEventRejected("backpressure")
		if errors.Is(err, eventqueue.ErrClosed) {
			return false, fmt.Errorf("%w: %w", model.ErrUnavailable, err)
		}
		return false, fmt.Errorf("%w: %w", model.ErrBackpressure, err)
	}
	return false, nil
}

// ProcessEvent applies an event synchronously, bypassing the queue.
func (s *Service) ProcessEvent(ctx context.Context, e model.MatchEvent) (momentum.ProcessResult, bool, error) { //nolint:gocritic // hugeParam: value semantics match the queue
	if err := s.running(); err != nil {
		return momentum.ProcessResult{}, false, err
	}
	if err := s.precheck(ctx, e); err != nil {
		return momentum.ProcessResult{}, false, err
	}
	if e.EventID != "" {
		if s.deduper.SeenAndRecord(ctx, e.DedupeKey()) {
			metrics.RecordEventDuplicate()
			return momentum.ProcessResult{}, true, nil
		}
	}
	res, err := s.apply(ctx, e)
	return res, false, err
}

// Process implements worker.Processor for queued events.
func (s *Service) Process(ctx context.Context, e model.MatchEvent) error { //nolint:gocritic // hugeParam: value semantics match the queue
	_, err := s.apply(ctx, e)
	return err
}

// precheck rejects what would certainly fail in the engine so the async path
// can answer with an error instead of accepting a doomed event.
func (s *Service) precheck(ctx context.Context, e model.MatchEvent) error { //nolint:gocritic // hugeParam: value semantics match the queue
	if _, err := momentum.NewEvent(e.Type, e.Side, e.Minute); err != nil {
		metrics.RecordEventRejected("invalid")
		return fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}
	if _, err := s.store.Get(ctx, e.MatchID); err != nil {
		metrics.RecordEventRejected("match_not_found")
		return translate(err)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, e model.MatchEvent) (momentum.ProcessResult, error) { //nolint:gocritic // hugeParam: value semantics match the queue
	m, err := s.store.Get(ctx, e.MatchID)
	if err != nil {
		metrics.RecordEventRejected("match_not_found")
		return momentum.ProcessResult{}, translate(err)
	}
	ev, err := momentum.NewEvent(e.Type, e.Side, e.Minute)
	if err != nil {
		metrics.RecordEventRejected("invalid")
		return momentum.ProcessResult{}, fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	}

	var (
		res        momentum.ProcessResult
		newPattern bool
	)
	start := time.Now()
	err = m.Do(func(eng *momentum.Engine) error {
		var perr error
		if res, perr = eng.ProcessEvent(ev); perr != nil {
			return perr
		}
		if res.Pattern != nil {
			patterns, _ := eng.Patterns()
			newPattern = isNewPattern(patterns)
		}
		return nil
	})
	metrics.RecordEventLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordEventRejected("engine")
		return momentum.ProcessResult{}, translate(err)
	}

	metrics.RecordEventProcessed(ev.Type.String())
	for _, w := range res.Warnings {
		s.logger.Debug(ctx, "engine warning",
			logger.String("match_id", e.MatchID),
			logger.String("event_id", e.EventID),
			logger.String("code", string(w.Code)),
			logger.String("message", w.Message),
		)
	}
	if res.Shift != nil {
		metrics.RecordMomentumShift(string(res.Shift.Type))
		if err := s.publisher.PublishShift(ctx, e.MatchID, *res.Shift); err != nil {
			s.logger.Warn(ctx, "shift publish failed", logger.String("match_id", e.MatchID), logger.Error(err))
		}
	}
	if res.Pattern != nil && newPattern {
		metrics.RecordPatternDetected(string(res.Pattern.Type))
		if err := s.publisher.PublishPattern(ctx, e.MatchID, *res.Pattern); err != nil {
			s.logger.Warn(ctx, "pattern publish failed", logger.String("match_id", e.MatchID), logger.Error(err))
		}
	}
	if res.MomentumGoal != nil {
		metrics.RecordMomentumGoal()
	}
	return res, nil
}

// isNewPattern reports whether the latest detection differs from the one
// before it, so a pattern that holds over many events is announced once.
func isNewPattern(patterns []momentum.DetectedPattern) bool {
	n := len(patterns)
	if n < 2 {
		return n == 1
	}
	last, prev := patterns[n-1], patterns[n-2]
	return last.Type != prev.Type || last.Side != prev.Side
}

func (s *Service) withMatch(ctx context.Context, id, op string, fn func(e *momentum.Engine) error) error {
	if err := s.running(); err != nil {
		return err
	}
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	start := time.Now()
	err = m.Do(fn)
	metrics.RecordAnalysisLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		return translate(err)
	}
	return nil
}

// Analyze returns the analysis at minute, or the current one when minute is nil.
func (s *Service) Analyze(ctx context.Context, id string, minute *int) (momentum.Analysis, error) {
	var out momentum.Analysis
	err := s.withMatch(ctx, id, "analysis", func(e *momentum.Engine) error {
		var err error
		out, err = e.AnalyzeState(minute)
		return err
	})
	return out, err
}

// Forecast projects a match up to horizon steps ahead.
func (s *Service) Forecast(ctx context.Context, id string, horizon int) (momentum.Forecast, error) {
	if horizon > s.maxHorizon {
		return momentum.Forecast{}, fmt.Errorf("%w: horizon %d exceeds limit %d", model.ErrInvalidInput, horizon, s.maxHorizon)
	}
	var out momentum.Forecast
	err := s.withMatch(ctx, id, "forecast", func(e *momentum.Engine) error {
		var err error
		out, err = e.Forecast(horizon)
		return err
	})
	return out, err
}

// Triggers ranks the events that lifted a side's momentum.
func (s *Service) Triggers(ctx context.Context, id string, side momentum.Side) (momentum.TriggerReport, error) {
	var out momentum.TriggerReport
	err := s.withMatch(ctx, id, "triggers", func(e *momentum.Engine) error {
		var err error
		out, err = e.Triggers(side)
		return err
	})
	return out, err
}

// CriticalMoments lists the turning points of a match.
func (s *Service) CriticalMoments(ctx context.Context, id string) (momentum.CriticalMoments, error) {
	var out momentum.CriticalMoments
	err := s.withMatch(ctx, id, "critical_moments", func(e *momentum.Engine) error {
		var err error
		out, err = e.CriticalMoments()
		return err
	})
	return out, err
}

// Report summarises a match.
func (s *Service) Report(ctx context.Context, id string) (momentum.Report, error) {
	var out momentum.Report
	err := s.withMatch(ctx, id, "report", func(e *momentum.Engine) error {
		var err error
		out, err = e.Report()
		return err
	})
	return out, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"maxMatches":         s.maxMatches,
		"maxForecastHorizon": s.maxHorizon,
	}

	if s.started {
		stats["queueLength"] = s.eventQueue.Len(ctx)
		stats["matches"] = s.store.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		if total, err := metrics.CounterTotal("events_processed_total"); err == nil {
			stats["eventsProcessed"] = total
		}
		if total, err := metrics.CounterTotal("events_duplicate_total"); err == nil {
			stats["eventsDuplicate"] = total
		}
	}
	if s.workerPool != nil {
		stats["eventsApplied"] = s.workerPool.Processed()
	}
	return stats
}

// translate maps adapter and engine errors onto the shared error kinds.
func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrMatchNotFound),
		errors.Is(err, momentum.ErrMinuteNotRecorded):
		return fmt.Errorf("%w: %w", model.ErrNotFound, err)
	case errors.Is(err, repository.ErrMatchExists):
		return fmt.Errorf("%w: %w", model.ErrConflict, err)
	case errors.Is(err, repository.ErrCapacity):
		return fmt.Errorf("%w: %w", model.ErrBackpressure, err)
	case errors.Is(err, repository.ErrInvalidID),
		errors.Is(err, momentum.ErrInvalidConfig),
		errors.Is(err, momentum.ErrInvalidSide),
		errors.Is(err, momentum.ErrInvalidMinute),
		errors.Is(err, momentum.ErrInvalidHorizon):
		return fmt.Errorf("%w: %w", model.ErrInvalidInput, err)
	default:
		return err
	}
}
