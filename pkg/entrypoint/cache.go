package entrypoint

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default expiration windows
const (
	DefaultSliding  = 5 * time.Minute
	DefaultAbsolute = time.Hour
	DefaultSize     = 128
)

// Cache stores fetched entrypoints. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*Root, bool)
	Set(ctx context.Context, key string, root *Root)
}

// Expiration controls when cache entries lapse. An entry expires when it
// has not been read for Sliding, or Absolute after it was stored, whichever
// comes first.
type Expiration struct {
	Sliding  time.Duration
	Absolute time.Duration
}

// DefaultExpiration returns a 5 minute sliding, 1 hour absolute policy.
func DefaultExpiration() Expiration {
	return Expiration{Sliding: DefaultSliding, Absolute: DefaultAbsolute}
}

func (e Expiration) withDefaults() Expiration {
	if e.Sliding <= 0 {
		e.Sliding = DefaultSliding
	}
	if e.Absolute <= 0 {
		e.Absolute = DefaultAbsolute
	}
	return e
}

// ttl returns how long an entry last touched at now may live.
func (e Expiration) ttl(now, deadline time.Time) time.Duration {
	remaining := deadline.Sub(now)
	if e.Sliding < remaining {
		return e.Sliding
	}
	return remaining
}

type entry[V any] struct {
	value    V
	deadline time.Time
	expires  time.Time
}

// MemoryCache is a bounded in-process cache with per-entry expiration.
type MemoryCache[V any] struct {
	mu      sync.Mutex
	entries *lru.Cache[string, *entry[V]]
	policy  Expiration
	now     func() time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	size int
	now  func() time.Time
}

// WithSize bounds the number of entries; the least recently used entry is
// evicted first.
func WithSize(size int) MemoryOption {
	return func(o *memoryOptions) {
		o.size = size
	}
}

// WithClock sets the time source used for expiration.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) {
		o.now = now
	}
}

// NewMemoryCache creates a memory cache with the given policy.
func NewMemoryCache[V any](policy Expiration, opts ...MemoryOption) (*MemoryCache[V], error) {
	o := &memoryOptions{size: DefaultSize, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	entries, err := lru.New[string, *entry[V]](o.size)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &MemoryCache[V]{
		entries: entries,
		policy:  policy.withDefaults(),
		now:     o.now,
	}, nil
}

// Get returns the cached value and extends its sliding window.
func (c *MemoryCache[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries.Get(key)
	if !ok {
		return zero, false
	}

	now := c.now()
	if !now.Before(e.expires) {
		c.entries.Remove(key)
		return zero, false
	}

	e.expires = now.Add(c.policy.ttl(now, e.deadline))
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *MemoryCache[V]) Set(_ context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	deadline := now.Add(c.policy.Absolute)
	c.entries.Add(key, &entry[V]{
		value:    value,
		deadline: deadline,
		expires:  now.Add(c.policy.ttl(now, deadline)),
	})
}

// Delete removes key.
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Remove(key)
}

// Len returns the number of stored entries, including expired ones not
// yet evicted.
func (c *MemoryCache[V]) Len() int {
	return c.entries.Len()
}

// NewMemory returns an entrypoint cache with the default policy.
func NewMemory(opts ...MemoryOption) (Cache, error) {
	return NewMemoryCache[*Root](DefaultExpiration(), opts...)
}
