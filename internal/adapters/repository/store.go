// Package repository keeps the live matches, one momentum engine per match.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
)

// Match owns one engine. The engine is not safe for concurrent use, so all
// access goes through Do, which serialises callers.
type Match struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	engine *momentum.Engine
}

// Do runs fn with exclusive access to the match engine.
func (m *Match) Do(fn func(e *momentum.Engine) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.engine)
}

// Store provides access to the live matches.
type Store interface {
	// Create initializes a new match engine under id.
	// Returns ErrMatchExists if id is taken and ErrCapacity when full.
	Create(ctx context.Context, id string, cfg momentum.InitConfig) (*Match, momentum.InitResult, error)

	// Get returns the match or ErrMatchNotFound.
	Get(ctx context.Context, id string) (*Match, error)

	// Delete drops the match and its history.
	Delete(ctx context.Context, id string) error

	// List returns summaries ordered by creation time.
	List(ctx context.Context) []model.MatchSummary

	// Count returns the number of live matches.
	Count(ctx context.Context) int
}
