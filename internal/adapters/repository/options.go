package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxMatches caps the number of live matches. n <= 0 means unlimited.
func WithMaxMatches(n int) Option {
	return func(s *MemoryStore) {
		s.maxMatches = n
	}
}

// WithRandomSeed gives every match engine a seeded random source derived
// from seed and the match id. Seed 0 keeps engines fully deterministic.
func WithRandomSeed(seed int64) Option {
	return func(s *MemoryStore) {
		s.seed = seed
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock overrides time.Now for match creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
