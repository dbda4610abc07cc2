// Package query is a keyed cache of fetched backend data with explicit
// invalidation, shared in-flight fetches and optimistic updates.
package query

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Options configures a Cache.
type Options struct {
	// MaxAge makes entries stale this long after they were fetched.
	// Zero means entries stay fresh until invalidated.
	MaxAge time.Duration

	// Now is the clock used for MaxAge. Default: time.Now.
	Now func() time.Time

	// Logger receives invalidation and rollback logs. Default: discarded.
	Logger *slog.Logger
}

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
	// rev increments on every write so a rollback can tell whether its
	// speculative value is still the current one.
	rev uint64
}

// Cache holds the last known value per Key. All methods are safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	// gens counts invalidations per resource. A fetch that started before an
	// invalidation of its resource stores its result as stale.
	gens   map[string]uint64
	flight singleflight.Group

	maxAge time.Duration
	now    func() time.Time
	log    *slog.Logger

	hits          prometheus.Counter
	misses        prometheus.Counter
	invalidations *prometheus.CounterVec
}

// NewCache creates an empty cache.
func NewCache(opts Options) *Cache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		entries: make(map[Key]*entry),
		gens:    make(map[string]uint64),
		maxAge:  opts.MaxAge,
		now:     opts.Now,
		log:     opts.Logger,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ramik",
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Fetches served from a fresh cache entry.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ramik",
			Subsystem: "query",
			Name:      "cache_misses_total",
			Help:      "Fetches that went to the backend.",
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ramik",
			Subsystem: "query",
			Name:      "invalidations_total",
			Help:      "Resource invalidations, by resource.",
		}, []string{"resource"}),
	}
}

// Collectors returns the cache's Prometheus collectors for registration.
func (c *Cache) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.hits, c.misses, c.invalidations}
}

// MaxAge returns the configured entry lifetime.
func (c *Cache) MaxAge() time.Duration {
	return c.maxAge
}

// Get returns the cached value for k and whether it is fresh.
// ok is false when nothing is cached.
func (c *Cache) Get(k Key) (value any, fresh bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		return nil, false, false
	}
	return e.value, c.freshLocked(e), true
}

// Lookup is a typed Get. It reports false when nothing is cached or the
// cached value is not a T.
func Lookup[T any](c *Cache, k Key) (value T, fresh bool, ok bool) {
	v, fresh, ok := c.Get(k)
	if !ok {
		return value, false, false
	}
	value, ok = v.(T)
	return value, fresh && ok, ok
}

// Set stores v under k as fresh.
func (c *Cache) Set(k Key, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(k, v, false)
}

// Invalidate marks every entry of resource stale and returns how many there
// were. Invalidating a resource with no entries is a no-op.
func (c *Cache) Invalidate(resource string) int {
	c.mu.Lock()
	c.gens[resource]++
	n := 0
	for k, e := range c.entries {
		if k.Resource == resource {
			e.stale = true
			n++
		}
	}
	c.mu.Unlock()

	c.invalidations.WithLabelValues(resource).Inc()
	c.log.Debug("cache invalidated", "resource", resource, "entries", n)
	return n
}

// InvalidateKey marks the single entry k stale.
func (c *Cache) InvalidateKey(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staleLocked(k)
}

func (c *Cache) staleLocked(k Key) {
	c.gens[k.Resource]++
	if e, ok := c.entries[k]; ok {
		e.stale = true
	}
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.stale {
		return false
	}
	if c.maxAge > 0 && c.now().Sub(e.fetchedAt) >= c.maxAge {
		return false
	}
	return true
}

func (c *Cache) writeLocked(k Key, v any, stale bool) *entry {
	e, ok := c.entries[k]
	if !ok {
		e = &entry{}
		c.entries[k] = e
	}
	e.value = v
	e.fetchedAt = c.now()
	e.stale = stale
	e.rev++
	return e
}

func (c *Cache) generation(resource string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[resource]
}

// storeFetched writes a fetch result, stale if the resource was invalidated
// after the fetch began.
func (c *Cache) storeFetched(k Key, v any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(k, v, c.gens[k.Resource] != gen)
}

// rewrite applies fn to the cached value of k and returns the settle step
// for the call that follows. Settle marks k stale and, when failed, first
// puts the previous value back, both under one lock so no reader sees the
// restored value as fresh. The restore is skipped when k was not cached, fn
// declined, or k was written again in between.
func (c *Cache) rewrite(k Key, fn func(current any) (any, bool)) (settle func(failed bool) (restored bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	invalidate := func(bool) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.staleLocked(k)
		return false
	}

	e, ok := c.entries[k]
	if !ok {
		return invalidate
	}
	next, ok := fn(e.value)
	if !ok {
		return invalidate
	}

	prev := *e
	e.value = next
	e.rev++
	speculative := e.rev

	return func(failed bool) bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		defer c.staleLocked(k)

		cur, ok := c.entries[k]
		if !failed || !ok || cur.rev != speculative {
			return false
		}
		cur.value = prev.value
		cur.fetchedAt = prev.fetchedAt
		cur.rev++
		return true
	}
}
