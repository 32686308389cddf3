// Package cache provides the caching primitives behind derived curve data.
//
// # Shared[T]
//
// A lazily computed value guarded by its own mutex. The first reader after the
// value was tagged dirty computes it while holding the lock; concurrent readers
// block until the new value is ready and then all observe the same result.
// Different Shared values never block each other.
//
//	var positions cache.Shared[[]Vec3]
//	p := positions.Ensure(func() []Vec3 { return evaluate() })
//	positions.Tag() // next Ensure recomputes
//
// # ShardedCache[K, V]
//
// A sharded LRU cache for values that are shared process-wide and requested
// concurrently from parallel workers, such as generated NURBS knot vectors.
//
//	knots := cache.NewSharded[knotKey, []float32](64, hashKnotKey)
//	k := knots.GetOrCreate(key, func() []float32 { return generate(key) })
//
// # Thread Safety
//
// Both types are safe for concurrent use and must not be copied after first
// use (they contain mutexes).
package cache
