package cache

import (
	"sync"
	"sync/atomic"
)

// Shared is a lazily computed value with its own dirty flag and mutex.
//
// The zero value is dirty and ready to use. A value is recomputed at most
// once per dirty period regardless of how many goroutines read it, and it is
// never visible half-computed: readers either get the complete value or block
// until it is ready.
//
// Compute functions must build a fresh value rather than mutate the previous
// one, so a reader still holding an older result keeps a consistent snapshot.
type Shared[T any] struct {
	mu       sync.Mutex
	value    T
	valid    bool
	computes atomic.Uint64
}

// Ensure returns the cached value, calling compute under the lock if the value
// is dirty. If compute panics the value stays dirty.
func (c *Shared[T]) Ensure(compute func() T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		c.value = compute()
		c.valid = true
		c.computes.Add(1)
	}
	return c.value
}

// Tag marks the value dirty and drops the reference to the old value.
func (c *Shared[T]) Tag() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.valid = false
}

// Peek returns the cached value without computing it.
// Returns (zero, false) if the value is dirty.
func (c *Shared[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid {
		var zero T
		return zero, false
	}
	return c.value, true
}

// IsCached reports whether the value can be read without recomputation.
func (c *Shared[T]) IsCached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid
}

// Computations returns how many times compute has run over the lifetime of c.
func (c *Shared[T]) Computations() uint64 {
	return c.computes.Load()
}
