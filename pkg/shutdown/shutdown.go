package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/gomm/pkg/logger"
)

// Handler runs during shutdown. Handlers must respect ctx so a hung venue
// call cannot block process exit past the deadline.
type Handler func(ctx context.Context)

// Manager collects shutdown handlers and runs them concurrently on exit.
type Manager struct {
	mu        sync.Mutex
	callbacks []Handler
}

func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown registers a handler. Safe to call from any goroutine.
func (m *Manager) OnShutdown(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, handler)
}

// Shutdown runs every registered handler concurrently and blocks until all
// finish or ctx expires. Pass a context with a deadline.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	callbacks := m.callbacks
	m.mu.Unlock()

	if len(callbacks) == 0 {
		return
	}
	logger.Infof("shutting down, %d handlers", len(callbacks))

	var wg sync.WaitGroup
	wg.Add(len(callbacks))
	for _, cb := range callbacks {
		go func(h Handler) {
			defer wg.Done()
			h(ctx)
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-ctx.Done():
		logger.Warnf("shutdown timed out: %v", ctx.Err())
	}
}
