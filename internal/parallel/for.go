package parallel

import "sync"

var (
	defaultMu   sync.Mutex
	defaultPool *WorkerPool
)

// Default returns the process-wide pool used by For, creating it with
// GOMAXPROCS workers on first use.
func Default() *WorkerPool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultPool == nil || !defaultPool.IsRunning() {
		defaultPool = NewWorkerPool(0)
	}
	return defaultPool
}

// SetDefault replaces the process-wide pool and closes the previous one.
// A nil pool resets to a lazily created GOMAXPROCS pool.
func SetDefault(p *WorkerPool) {
	defaultMu.Lock()
	old := defaultPool
	defaultPool = p
	defaultMu.Unlock()

	if old != nil && old != p {
		old.Close()
	}
}

// For splits [0, n) into chunks of at least grain indices and calls fn for
// each chunk on the default pool. It returns once every chunk is done.
//
// Larger grains suit cheap per-index work (copying offsets), smaller grains
// suit expensive work (evaluating a high resolution Bezier segment).
// fn must not call For itself.
func For(n, grain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}
	if n <= grain {
		fn(0, n)
		return
	}
	Default().For(n, grain, fn)
}

// For is the pool-specific variant of the package level For.
func (p *WorkerPool) For(n, grain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if grain < 1 {
		grain = 1
	}
	chunks := (n + grain - 1) / grain
	// Never create more chunks than are useful to keep every worker busy.
	if limit := len(p.queues) * 4; chunks > limit {
		chunks = limit
	}
	if chunks <= 1 {
		fn(0, n)
		return
	}

	size := (n + chunks - 1) / chunks
	var done sync.WaitGroup
	work := make([]chunk, 0, chunks)
	for start := 0; start < n; start += size {
		work = append(work, chunk{fn: fn, start: start, end: min(start+size, n), done: &done})
	}
	done.Add(len(work))
	p.run(work)
}
