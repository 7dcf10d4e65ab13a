// Package query caches backend reads per key between requests. Entries go
// stale after a fixed time, concurrent reads of one key share a single
// fetch, and writers drop keys by prefix after a mutation.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/ghazighazi3030/blogueee/internal/telemetry"
)

// Key identifies a cached query as ordered segments, e.g.
// Key{"posts", "slug", "derby-day"}.
type Key []string

func (k Key) String() string { return strings.Join(k, ":") }

// HasPrefix reports whether the first segments of k equal prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// DefaultFetchTimeout bounds a shared fetch once it no longer follows the
// context of the caller that started it.
const DefaultFetchTimeout = 30 * time.Second

type entry struct {
	key       Key
	value     any
	fetchedAt time.Time
}

// Cache holds successful query results. Failed fetches are never stored.
type Cache struct {
	staleTime    time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	// gen is bumped by every invalidation so that fetches started before it
	// neither store their result nor get joined by later callers.
	gen   uint64
	group singleflight.Group
}

// New returns a cache whose entries are fresh for staleTime. A zero
// staleTime disables reuse but still shares concurrent fetches.
func New(staleTime time.Duration) *Cache {
	return &Cache{
		staleTime:    staleTime,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		entries:      make(map[string]entry),
	}
}

func (c *Cache) lookup(k string) (any, bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if ok && c.now().Sub(e.fetchedAt) < c.staleTime {
		return e.value, true, c.gen
	}
	return nil, false, c.gen
}

func (c *Cache) store(key Key, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.staleTime <= 0 {
		return
	}
	c.entries[key.String()] = entry{key: key, value: value, fetchedAt: c.now()}
}

// Invalidate drops every entry whose key starts with prefix. An empty
// prefix drops everything.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for k, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			delete(c.entries, k)
		}
	}
}

// InvalidateAll drops every entry under each prefix.
func (c *Cache) InvalidateAll(prefixes ...Key) {
	for _, p := range prefixes {
		c.Invalidate(p)
	}
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetch returns the fresh cached value for key or runs fn to load it.
// Concurrent calls for the same key share one fn call. That call keeps the
// values of the first caller's context but not its cancellation, so one
// caller going away does not fail the others; each caller stops waiting
// when its own ctx is done.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "query.fetch")
	defer span.End()
	if len(key) > 0 {
		span.SetAttributes(attribute.String("cache.key", key[0]))
	}

	k := key.String()
	v, ok, gen := c.lookup(k)
	if ok {
		if typed, ok := v.(T); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return typed, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	flight := fmt.Sprintf("%s#%d", k, gen)
	ch := c.group.DoChan(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		v, err := fn(fctx)
		if err != nil {
			return v, err
		}
		c.store(key, v, gen)
		return v, nil
	})

	var zero T
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := ctx.Err()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}
	span.SetAttributes(attribute.Bool("cache.shared", res.Shared))

	v, err := res.Val, res.Err
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query: cached value for %q has type %T", k, v)
	}
	return typed, nil
}
