package query

import (
	"context"
	"fmt"
)

// Fetch returns the fresh cached value of k, or calls fn and caches its
// result. Concurrent Fetches of the same key share one call of fn; its
// context is that of the caller that started it. Errors are not cached.
func Fetch[T any](ctx context.Context, c *Cache, k Key, fn func(context.Context) (T, error)) (T, error) {
	if v, fresh, ok := Lookup[T](c, k); ok && fresh {
		c.hits.Inc()
		return v, nil
	}
	c.misses.Inc()

	gen := c.generation(k.Resource)
	res, err, _ := c.flight.Do(k.String(), func() (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.storeFetched(k, v, gen)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query: %s holds %T, not the requested type", k, res)
	}
	return v, nil
}

// Mutate calls fn and, once it has succeeded, invalidates every listed
// resource. A failed call invalidates nothing.
func Mutate[In, Out any](ctx context.Context, c *Cache, fn func(context.Context, In) (Out, error), in In, invalidates ...string) (Out, error) {
	out, err := fn(ctx, in)
	if err != nil {
		return out, err
	}
	for _, r := range invalidates {
		c.Invalidate(r)
	}
	return out, nil
}

// Query pairs a cache key with the call that fills it.
type Query[T any] struct {
	Key  Key
	Call func(context.Context) (T, error)
}

func (q Query[T]) Run(ctx context.Context, c *Cache) (T, error) {
	return Fetch(ctx, c, q.Key, q.Call)
}

// Mutation pairs a backend call with the resources it makes stale.
type Mutation[In, Out any] struct {
	Call        func(context.Context, In) (Out, error)
	Invalidates []string
}

func (m Mutation[In, Out]) Run(ctx context.Context, c *Cache, in In) (Out, error) {
	return Mutate(ctx, c, m.Call, in, m.Invalidates...)
}

// Optimistic is a mutation that rewrites the cached value of Key before the
// call resolves. Apply must return a new value rather than modify current.
// On failure the previous value is restored exactly; success or failure, Key
// is invalidated once the call has returned.
type Optimistic[T, In, Out any] struct {
	Key   Key
	Apply func(current T, in In) T
	Call  func(context.Context, In) (Out, error)
}

func (o Optimistic[T, In, Out]) Run(ctx context.Context, c *Cache, in In) (Out, error) {
	settle := c.rewrite(o.Key, func(current any) (any, bool) {
		t, ok := current.(T)
		if !ok {
			return nil, false
		}
		return o.Apply(t, in), true
	})

	out, err := o.Call(ctx, in)
	if settle(err != nil) {
		c.log.Debug("optimistic update rolled back", "key", o.Key.String(), "error", err)
	}
	return out, err
}
