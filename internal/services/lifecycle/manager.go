// Package lifecycle tracks the resources the server opens at boot and
// closes them in reverse order on shutdown.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// Manager collects named shutdown hooks. Hooks run last-registered
// first, so dependents close before the things they depend on.
type Manager struct {
	mu      sync.Mutex
	closers []closer
	logger  *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Register adds a shutdown hook.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, closer{name: name, fn: fn})
}

// Shutdown runs every registered hook in reverse order. All hooks run
// even when earlier ones fail; the first error is returned.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	closers := make([]closer, len(m.closers))
	copy(closers, m.closers)
	m.closers = nil
	m.mu.Unlock()

	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		m.logger.Info("shutting down", zap.String("component", c.name))
		if err := c.fn(ctx); err != nil {
			m.logger.Error("shutdown failed", zap.String("component", c.name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Listen blocks until SIGINT or SIGTERM arrives or ctx is done.
func (m *Manager) Listen(ctx context.Context) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		m.logger.Info("signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}
}
