package syncgroup

import "sync"

// SyncGroup wraps sync.WaitGroup so Add and Done cannot get out of step:
// callers queue functions, then Run launches them all and Wait blocks until
// every one returns. A group can be reused after Wait.
type SyncGroup struct {
	wg sync.WaitGroup

	mu      sync.Mutex
	fns     []func()
	running int
}

func New() *SyncGroup {
	return &SyncGroup{}
}

// Add queues a function for the next Run. Nil functions are ignored, as are
// adds made while a previous Run is still in flight.
func (g *SyncGroup) Add(fn func()) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running > 0 {
		return
	}
	g.fns = append(g.fns, fn)
}

// Run launches every queued function in its own goroutine and clears the
// queue. Calling Run while a previous batch is still running is a no-op.
func (g *SyncGroup) Run() {
	g.mu.Lock()
	if g.running > 0 {
		g.mu.Unlock()
		return
	}
	fns := g.fns
	g.fns = nil
	g.running = len(fns)
	g.mu.Unlock()

	for _, fn := range fns {
		g.wg.Add(1)
		go func(do func()) {
			defer func() {
				g.wg.Done()
				g.mu.Lock()
				g.running--
				g.mu.Unlock()
			}()
			do()
		}(fn)
	}
}

// Wait blocks until the running batch completes.
func (g *SyncGroup) Wait() {
	g.wg.Wait()
}
