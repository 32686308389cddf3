package parallel

import (
	"runtime"
	"sync"
)

// chunk is one contiguous index range of a For call.
type chunk struct {
	fn         func(start, end int)
	start, end int
	done       *sync.WaitGroup
}

func (c chunk) run() {
	defer c.done.Done()
	c.fn(c.start, c.end)
}

// WorkerPool runs the chunks of For calls on a fixed set of goroutines.
//
// Every worker owns a queue and steals from the others once its own queue is
// empty, so a chunk of high resolution Bezier curves does not hold up the
// chunks of cheap poly curves queued behind it.
//
// A WorkerPool is safe for concurrent use. A chunk must not start a nested
// For on the same pool and wait for it.
type WorkerPool struct {
	queues []chan chunk
	quit   chan struct{}
	exited sync.WaitGroup

	// mu orders dispatching against Close: nothing is queued once closed
	// is set, so workers can drain their queues and exit.
	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts a pool with the given number of workers. workers <= 0
// uses GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		queues: make([]chan chunk, workers),
		quit:   make(chan struct{}),
	}
	depth := max(workers*4, 8)
	for i := range p.queues {
		p.queues[i] = make(chan chunk, depth)
	}

	p.exited.Add(workers)
	for i := range workers {
		go p.work(i)
	}
	return p
}

func (p *WorkerPool) work(id int) {
	defer p.exited.Done()
	own := p.queues[id]
	for {
		select {
		case c := <-own:
			c.run()
			continue
		default:
		}
		if c, ok := p.steal(id); ok {
			c.run()
			continue
		}
		select {
		case c := <-own:
			c.run()
		case <-p.quit:
			for {
				select {
				case c := <-own:
					c.run()
				default:
					return
				}
			}
		}
	}
}

// steal takes a queued chunk from any other worker.
func (p *WorkerPool) steal(id int) (chunk, bool) {
	for i := 1; i < len(p.queues); i++ {
		select {
		case c := <-p.queues[(id+i)%len(p.queues)]:
			return c, true
		default:
		}
	}
	return chunk{}, false
}

// run queues chunks round-robin and waits for all of them. On a closed pool
// the chunks run on the calling goroutine, so derived data is never left
// half computed.
func (p *WorkerPool) run(chunks []chunk) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for _, c := range chunks {
			c.run()
		}
		return
	}
	for i, c := range chunks {
		p.queues[i%len(p.queues)] <- c
	}
	p.mu.RUnlock()
	chunks[0].done.Wait()
}

// Close stops the workers after the queued chunks have run. It is safe to
// call more than once.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.quit)
	p.exited.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int {
	return len(p.queues)
}

// IsRunning reports whether Close has not been called yet.
func (p *WorkerPool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.closed
}
