// Package dedupe defines the interface for idempotency tracking.
package dedupe

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Deduper records seen event keys to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord removes a key from the seen set, allowing it to be retried.
	// Only used when an event was marked as seen but never reached the
	// engine (e.g., queue backpressure).
	Unrecord(ctx context.Context, key string)

	// ForgetPrefix drops every key starting with prefix. Used when a match
	// is deleted so its id can be reused.
	ForgetPrefix(ctx context.Context, prefix string) int

	Size() int64
}

// inMemoryDeduper keeps keys in insertion order and evicts the oldest first
// once maxSize is reached. maxSize <= 0 means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is the oldest key
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 200_000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

// SeenAndRecord implements Deduper.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(key)
	d.size.Add(1)
	return false
}

// Unrecord implements Deduper.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, exists := d.seen[key]; exists {
		d.remove(key, el)
	}
}

// ForgetPrefix implements Deduper.
func (d *inMemoryDeduper) ForgetPrefix(_ context.Context, prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for key, el := range d.seen {
		if strings.HasPrefix(key, prefix) {
			d.remove(key, el)
			n++
		}
	}
	return n
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	key, _ := front.Value.(string)
	d.remove(key, front)
}

func (d *inMemoryDeduper) remove(key string, el *list.Element) {
	delete(d.seen, key)
	d.order.Remove(el)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
