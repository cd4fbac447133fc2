package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/pkg/metrics"
)

// MemoryStore is the in-memory Store. The map lock only guards membership;
// engine access is serialised per match so matches never block each other.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*Match

	maxMatches            int
	seed                  int64
	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs a store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		matches:               make(map[string]*Match),
		metricsUpdateInterval: 5 * time.Second,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	metrics.UpdateActiveMatches(0)
	s.startMetricsUpdater(ctx)

	return s
}

func (s *MemoryStore) newEngine(id string) *momentum.Engine {
	if s.seed == 0 {
		return momentum.New()
	}
	seed := s.seed ^ int64(xxhash.Sum64String(id)) //nolint:gosec // wrap-around is fine for a seed
	return momentum.New(momentum.WithRandomSource(momentum.NewSeededSource(seed)))
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, id string, cfg momentum.InitConfig) (*Match, momentum.InitResult, error) {
	if id == "" {
		return nil, momentum.InitResult{}, ErrInvalidID
	}

	m := &Match{ID: id, CreatedAt: s.now(), engine: s.newEngine(id)}
	res, err := m.engine.Initialize(cfg)
	if err != nil {
		return nil, momentum.InitResult{}, fmt.Errorf("initialize match %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matches[id]; exists {
		return nil, momentum.InitResult{}, fmt.Errorf("%w: %s", ErrMatchExists, id)
	}
	if s.maxMatches > 0 && len(s.matches) >= s.maxMatches {
		return nil, momentum.InitResult{}, fmt.Errorf("%w: %d", ErrCapacity, s.maxMatches)
	}
	s.matches[id] = m
	metrics.RecordMatchCreated()
	metrics.UpdateActiveMatches(len(s.matches))
	return m, res, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Match, error) {
	s.mu.RLock()
	m, ok := s.matches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	delete(s.matches, id)
	metrics.RecordMatchDeleted()
	metrics.UpdateActiveMatches(len(s.matches))
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) []model.MatchSummary {
	s.mu.RLock()
	all := make([]*Match, 0, len(s.matches))
	for _, m := range s.matches {
		all = append(all, m)
	}
	s.mu.RUnlock()

	out := make([]model.MatchSummary, 0, len(all))
	for _, m := range all {
		sum := model.MatchSummary{MatchID: m.ID, CreatedAt: m.CreatedAt}
		_ = m.Do(func(e *momentum.Engine) error {
			if ctx, err := e.Context(); err == nil {
				sum.HomeTeam, sum.AwayTeam = ctx.HomeTeam, ctx.AwayTeam
			}
			if events, err := e.Events(); err == nil {
				sum.Events = len(events)
			}
			return nil
		})
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateActiveMatches(s.Count(ctx))
			}
		}
	}()
}
