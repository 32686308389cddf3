package cache

import (
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	ShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 64

	shardMask = ShardCount - 1
)

// Hasher computes a hash for a key. Used by ShardedCache for shard selection.
type Hasher[K any] func(K) uint64

// ShardedCache is a thread-safe, sharded LRU cache for high-concurrency scenarios.
//
// Values are stored as-is and handed out to every caller, so cached values
// must be treated as read-only.
type ShardedCache[K comparable, V any] struct {
	shards   [ShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int // per shard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// shard is a single shard of the cache with its own mutex and LRU list.
// head is the most recently used entry, tail the least recently used.
type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V]
	tail    *entry[K, V]
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int // total across all shards
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewSharded creates a new sharded cache with the specified capacity per shard.
// If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ShardedCache[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]*entry[K, V])}
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a cached value by key and marks it most recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.moveToFront(e)
	c.hits.Add(1)
	return e.value, true
}

// GetOrCreate returns a cached value or creates it using the provided function.
// The create function runs with the shard lock held, so concurrent callers
// asking for the same key never compute it twice.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.moveToFront(e)
		c.hits.Add(1)
		return e.value
	}
	c.misses.Add(1)

	value := create()
	for len(s.entries) >= c.capacity && s.tail != nil {
		oldest := s.tail
		s.unlink(oldest)
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}
	e := &entry[K, V]{key: key, value: value}
	s.pushFront(e)
	s.entries[key] = e
	return value
}

// Clear removes all entries from the cache.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats returns current cache statistics.
func (c *ShardedCache[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity * ShardCount,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (s *shard[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *shard[K, V]) moveToFront(e *entry[K, V]) {
	if s.head == e {
		return
	}
	s.unlink(e)
	s.pushFront(e)
}

func (s *shard[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
