package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func identityHash(k int) uint64 { return uint64(k) }

func TestShared_ComputesOncePerDirtyPeriod(t *testing.T) {
	var c Shared[[]int]
	calls := 0
	compute := func() []int {
		calls++
		return []int{1, 2, 3}
	}

	if c.IsCached() {
		t.Fatal("zero value should be dirty")
	}
	c.Ensure(compute)
	c.Ensure(compute)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	c.Tag()
	if _, ok := c.Peek(); ok {
		t.Error("Peek after Tag should report dirty")
	}
	c.Ensure(compute)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if c.Computations() != 2 {
		t.Errorf("Computations() = %d, want 2", c.Computations())
	}
}

func TestShared_ConcurrentReadersShareOneComputation(t *testing.T) {
	var c Shared[[]int]
	var calls atomic.Int32
	start := make(chan struct{})

	results := make([][]int, 16)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = c.Ensure(func() []int {
				calls.Add(1)
				time.Sleep(5 * time.Millisecond)
				return []int{42}
			})
		}()
	}
	close(start)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("compute ran %d times, want 1", calls.Load())
	}
	for i, r := range results {
		if len(r) != 1 || &r[0] != &results[0][0] {
			t.Errorf("reader %d observed a different value", i)
		}
	}
}

func TestShared_PanicLeavesDirty(t *testing.T) {
	var c Shared[int]
	func() {
		defer func() { _ = recover() }()
		c.Ensure(func() int { panic("boom") })
	}()
	if c.IsCached() {
		t.Error("value should stay dirty after a panicking compute")
	}
	if got := c.Ensure(func() int { return 7 }); got != 7 {
		t.Errorf("Ensure() = %d, want 7", got)
	}
}

func TestShardedCache_GetOrCreate(t *testing.T) {
	c := NewSharded[int, string](4, identityHash)

	created := 0
	get := func(k int) string {
		return c.GetOrCreate(k, func() string {
			created++
			return "v"
		})
	}

	get(1)
	get(1)
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if v, ok := c.Get(1); !ok || v != "v" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) should miss")
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 2 {
		t.Errorf("stats = %+v, want 2 hits 2 misses", st)
	}
}

func TestShardedCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSharded[int, int](2, func(int) uint64 { return 0 }) // one shard

	c.GetOrCreate(1, func() int { return 1 })
	c.GetOrCreate(2, func() int { return 2 })
	c.Get(1) // 2 is now the oldest
	c.GetOrCreate(3, func() int { return 3 })

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	if _, ok := c.Get(1); !ok {
		t.Error("key 1 should still be cached")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestShardedCache_Clear(t *testing.T) {
	c := NewSharded[int, int](0, identityHash)
	for i := range 100 {
		c.GetOrCreate(i, func() int { return i })
	}
	if c.Len() != 100 {
		t.Errorf("Len() = %d, want 100", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestShardedCache_Concurrent(t *testing.T) {
	c := NewSharded[int, int](8, identityHash)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := (i + g) % 64
				if v := c.GetOrCreate(k, func() int { return k * 2 }); v != k*2 {
					t.Errorf("GetOrCreate(%d) = %d", k, v)
					return
				}
			}
		}()
	}
	wg.Wait()
}
