package query

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{K("users"), "users"},
		{K("regions", 7), "regions/7"},
		{K("product-sizes", int64(3), "x"), "product-sizes/3/x"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if K("regions", 7) != (Key{Resource: "regions", Qualifier: "7"}) {
		t.Error("K should build comparable keys")
	}
}

func TestFetchCachesUntilInvalidated(t *testing.T) {
	c := NewCache(Options{})
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"Floral", "Woody"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, K("categories"), fetch)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Unexpected value %v", got)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 backend call, got %d", calls.Load())
	}

	if n := c.Invalidate("categories"); n != 1 {
		t.Errorf("Expected 1 invalidated entry, got %d", n)
	}
	if _, fresh, ok := c.Get(K("categories")); !ok || fresh {
		t.Errorf("Invalidated entry should stay cached but stale (ok=%v fresh=%v)", ok, fresh)
	}

	if _, err := Fetch(ctx, c, K("categories"), fetch); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Expected a refetch after invalidation, got %d calls", calls.Load())
	}
}

func TestInvalidateCoversEveryQualifier(t *testing.T) {
	c := NewCache(Options{})
	c.Set(K("regions"), 1)
	c.Set(K("regions", 4), 2)
	c.Set(K("regions", 5), 3)
	c.Set(K("users"), 4)

	if n := c.Invalidate("regions"); n != 3 {
		t.Errorf("Expected 3 entries invalidated, got %d", n)
	}
	for _, k := range []Key{K("regions"), K("regions", 4), K("regions", 5)} {
		if _, fresh, _ := c.Get(k); fresh {
			t.Errorf("%s should be stale", k)
		}
	}
	if _, fresh, _ := c.Get(K("users")); !fresh {
		t.Error("users should be untouched")
	}
}

func TestInvalidateUnknownResourceIsNoop(t *testing.T) {
	c := NewCache(Options{})
	if n := c.Invalidate("nothing"); n != 0 {
		t.Errorf("Expected 0, got %d", n)
	}
	if n := c.Invalidate("nothing"); n != 0 {
		t.Errorf("Expected 0 on repeat, got %d", n)
	}
	c.InvalidateKey(K("nothing", 1))
	if c.Len() != 0 {
		t.Errorf("Invalidation should not create entries, Len = %d", c.Len())
	}
}

func TestFetchSharesInFlightCall(t *testing.T) {
	c := NewCache(Options{})
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = Fetch(ctx, c, K("products"), fetch)
	}()
	<-started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Fetch(ctx, c, K("products"), fetch)
		}()
	}
	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("Expected one shared call, got %d", calls.Load())
	}
	for i, r := range results {
		if r != 42 {
			t.Errorf("Caller %d got %d", i, r)
		}
	}
}

func TestFetchErrorIsNotCached(t *testing.T) {
	c := NewCache(Options{})
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, K("users"), func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("A failed fetch must not create an entry")
	}
}

func TestFetchRacingInvalidationStoresStale(t *testing.T) {
	c := NewCache(Options{})

	_, err := Fetch(context.Background(), c, K("products"), func(context.Context) (string, error) {
		// A mutation lands while the list is being fetched.
		c.Invalidate("products")
		return "old list", nil
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	v, fresh, ok := c.Get(K("products"))
	if !ok || v != "old list" {
		t.Fatalf("Expected the fetched value to be cached, got %v", v)
	}
	if fresh {
		t.Error("A value fetched across an invalidation must be stale")
	}
}

func TestMaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(Options{MaxAge: time.Minute, Now: func() time.Time { return now }})

	c.Set(K("languages"), "x")
	if _, fresh, _ := c.Get(K("languages")); !fresh {
		t.Error("New entry should be fresh")
	}
	now = now.Add(time.Minute)
	if _, fresh, _ := c.Get(K("languages")); fresh {
		t.Error("Entry should be stale after MaxAge")
	}
}

func TestMutateInvalidatesOnlyOnSuccess(t *testing.T) {
	c := NewCache(Options{})
	ctx := context.Background()

	tests := []struct {
		name      string
		err       error
		wantFresh bool
	}{
		{"failure keeps cache fresh", errors.New("rejected"), true},
		{"success invalidates", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Set(K("products"), "list")
			c.Set(K("product", 5), "detail")

			var sawFresh bool
			_, err := Mutate(ctx, c, func(context.Context, int64) (struct{}, error) {
				// The cache must not be touched before the call resolves.
				_, sawFresh, _ = c.Get(K("products"))
				return struct{}{}, tt.err
			}, 5, "products", "product")
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected %v, got %v", tt.err, err)
			}
			if !sawFresh {
				t.Error("Invalidation happened before the call resolved")
			}

			for _, k := range []Key{K("products"), K("product", 5)} {
				if _, fresh, _ := c.Get(k); fresh != tt.wantFresh {
					t.Errorf("%s fresh = %v, want %v", k, fresh, tt.wantFresh)
				}
			}
		})
	}
}

type user struct {
	ID     int
	Active bool
}

func deactivate(current []user, id int) []user {
	out := slices.Clone(current)
	for i := range out {
		if out[i].ID == id {
			out[i].Active = false
		}
	}
	return out
}

func TestOptimisticRollback(t *testing.T) {
	c := NewCache(Options{})
	original := []user{{1, true}, {2, true}}
	c.Set(K("users"), original)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	toggle := Optimistic[[]user, int, struct{}]{
		Key:   K("users"),
		Apply: deactivate,
		Call: func(ctx context.Context, id int) (struct{}, error) {
			close(entered)
			<-proceed
			return struct{}{}, errors.New("network down")
		},
	}

	done := make(chan error)
	go func() {
		_, err := toggle.Run(context.Background(), c, 1)
		done <- err
	}()

	<-entered
	during, _, _ := Lookup[[]user](c, K("users"))
	if during[0].Active {
		t.Error("User 1 should read as inactive before the call resolves")
	}
	close(proceed)

	if err := <-done; err == nil {
		t.Fatal("Expected the mutation error")
	}

	after, fresh, ok := Lookup[[]user](c, K("users"))
	if !ok {
		t.Fatal("Entry disappeared")
	}
	if !slices.Equal(after, original) {
		t.Errorf("Rollback = %v, want %v", after, original)
	}
	if fresh {
		t.Error("Key should be invalidated on settle")
	}
}

func TestOptimisticRollbackIsNeverFresh(t *testing.T) {
	c := NewCache(Options{})
	c.Set(K("users"), []user{{1, true}})

	settle := c.rewrite(K("users"), func(current any) (any, bool) {
		return deactivate(current.([]user), 1), true
	})

	var (
		wg   sync.WaitGroup
		stop atomic.Bool
		bad  atomic.Int64
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			v, fresh, ok := Lookup[[]user](c, K("users"))
			if ok && fresh && v[0].Active {
				bad.Add(1)
			}
		}
	}()

	if !settle(true) {
		t.Fatal("Expected the previous value to be restored")
	}
	time.Sleep(5 * time.Millisecond)
	stop.Store(true)
	wg.Wait()

	if n := bad.Load(); n > 0 {
		t.Errorf("Restored value read as fresh %d times", n)
	}
	got, fresh, _ := Lookup[[]user](c, K("users"))
	if !got[0].Active {
		t.Error("Expected user 1 restored to active")
	}
	if fresh {
		t.Error("Restored value should be stale")
	}
}

func TestSettleAfterRewriteSkipsRestore(t *testing.T) {
	c := NewCache(Options{})
	c.Set(K("users"), []user{{1, true}})

	settle := c.rewrite(K("users"), func(current any) (any, bool) {
		return deactivate(current.([]user), 1), true
	})
	c.Set(K("users"), []user{{1, true}, {2, true}})

	if settle(true) {
		t.Error("Restore should be skipped after a newer write")
	}
	got, fresh, _ := Lookup[[]user](c, K("users"))
	if len(got) != 2 {
		t.Errorf("Newer value was overwritten: %v", got)
	}
	if fresh {
		t.Error("Key should be stale after settle")
	}
}

func TestOptimisticSuccessKeepsRewrite(t *testing.T) {
	c := NewCache(Options{})
	c.Set(K("users"), []user{{1, true}})

	toggle := Optimistic[[]user, int, string]{
		Key:   K("users"),
		Apply: deactivate,
		Call:  func(context.Context, int) (string, error) { return "ok", nil },
	}
	out, err := toggle.Run(context.Background(), c, 1)
	if err != nil || out != "ok" {
		t.Fatalf("Run = %q, %v", out, err)
	}

	got, fresh, _ := Lookup[[]user](c, K("users"))
	if got[0].Active {
		t.Error("Successful update should keep the rewritten value until refetch")
	}
	if fresh {
		t.Error("Key should be invalidated on settle")
	}
}

func TestOptimisticWithoutEntry(t *testing.T) {
	c := NewCache(Options{})
	toggle := Optimistic[[]user, int, struct{}]{
		Key:   K("users"),
		Apply: deactivate,
		Call:  func(context.Context, int) (struct{}, error) { return struct{}{}, errors.New("fail") },
	}
	if _, err := toggle.Run(context.Background(), c, 1); err == nil {
		t.Fatal("Expected the call error")
	}
	if c.Len() != 0 {
		t.Error("No entry should be created for an uncached key")
	}
}

func TestQueryAndMutationBindings(t *testing.T) {
	c := NewCache(Options{})
	ctx := context.Background()

	var calls int
	list := Query[[]string]{
		Key: K("languages"),
		Call: func(context.Context) ([]string, error) {
			calls++
			return []string{"en"}, nil
		},
	}
	create := Mutation[string, string]{
		Call:        func(_ context.Context, code string) (string, error) { return code, nil },
		Invalidates: []string{"languages"},
	}

	list.Run(ctx, c)
	list.Run(ctx, c)
	if _, err := create.Run(ctx, c, "ar"); err != nil {
		t.Fatalf("Mutation failed: %v", err)
	}
	list.Run(ctx, c)

	if calls != 2 {
		t.Errorf("Expected 2 fetches around the mutation, got %d", calls)
	}
}
