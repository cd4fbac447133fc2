// Package publisher fans momentum shifts and patterns out to Redis streams.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/momentum/internal/domain/momentum"
	"github.com/okian/momentum/pkg/metrics"
)

const defaultMaxLen = 10_000

// StreamClient is the subset of *redis.Client the publisher needs.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Publisher receives engine outputs worth sharing with other services.
type Publisher interface {
	PublishShift(ctx context.Context, matchID string, shift momentum.MomentumShift) error
	PublishPattern(ctx context.Context, matchID string, pattern momentum.DetectedPattern) error
}

// StreamPublisher writes to <prefix>.shifts.<match> and <prefix>.patterns.<match>.
type StreamPublisher struct {
	client StreamClient
	prefix string
	maxLen int64
}

// Option configures a StreamPublisher.
type Option func(*StreamPublisher)

// WithPrefix sets the stream key prefix.
func WithPrefix(prefix string) Option {
	return func(p *StreamPublisher) {
		if prefix != "" {
			p.prefix = prefix
		}
	}
}

// WithMaxLen caps each stream at roughly n entries. n <= 0 disables trimming.
func WithMaxLen(n int64) Option {
	return func(p *StreamPublisher) {
		p.maxLen = n
	}
}

// NewStreamPublisher creates a new stream publisher.
func NewStreamPublisher(client StreamClient, opts ...Option) *StreamPublisher {
	p := &StreamPublisher{
		client: client,
		prefix: "momentum",
		maxLen: defaultMaxLen,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShiftStream returns the stream key for a match's shifts.
func (p *StreamPublisher) ShiftStream(matchID string) string {
	return fmt.Sprintf("%s.shifts.%s", p.prefix, matchID)
}

// PatternStream returns the stream key for a match's patterns.
func (p *StreamPublisher) PatternStream(matchID string) string {
	return fmt.Sprintf("%s.patterns.%s", p.prefix, matchID)
}

// PublishShift implements Publisher.
func (p *StreamPublisher) PublishShift(ctx context.Context, matchID string, shift momentum.MomentumShift) error {
	return p.publish(ctx, "shift", p.ShiftStream(matchID), matchID, string(shift.Type), shift)
}

// PublishPattern implements Publisher.
func (p *StreamPublisher) PublishPattern(ctx context.Context, matchID string, pattern momentum.DetectedPattern) error {
	return p.publish(ctx, "pattern", p.PatternStream(matchID), matchID, string(pattern.Type), pattern)
}

func (p *StreamPublisher) publish(ctx context.Context, kind, stream, matchID, typ string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		metrics.RecordStreamPublishError(kind)
		return fmt.Errorf("marshal %s: %w", kind, err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": matchID,
			"type":     typ,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		metrics.RecordStreamPublishError(kind)
		return fmt.Errorf("publish to stream %s: %w", stream, err)
	}
	metrics.RecordStreamPublished(kind)
	return nil
}

// Nop discards everything. Used when no Redis address is configured.
type Nop struct{}

// PublishShift implements Publisher.
func (Nop) PublishShift(context.Context, string, momentum.MomentumShift) error { return nil }

// PublishPattern implements Publisher.
func (Nop) PublishPattern(context.Context, string, momentum.DetectedPattern) error { return nil }
