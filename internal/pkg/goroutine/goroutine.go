// Package goroutine runs background work with a concurrency cap, panic
// recovery and a single Wait point used during shutdown.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/xceltrack/xceltrack-api/internal/pkg/stacktrace"
)

// DefaultPerCPU is the per-CPU limit used when NewManager gets a
// non-positive value.
const DefaultPerCPU = 100

// ErrRejected is returned by Go when the manager is closed or saturated.
var ErrRejected = errors.New("goroutine: task rejected")

// Manager runs tasks in goroutines and collects their errors.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.Mutex
	errs   []error
	closed bool
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultPerCPU
	}

	return &Manager{sema: make(chan struct{}, limit)}
}

// Go starts f unless the manager is closed or every slot is busy, in which
// case it logs and returns ErrRejected without blocking.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, task skipped", "task", name)
		return ErrRejected
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, task skipped", "task", name)
		return ErrRejected
	}

	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()
		defer func() {
			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", stacktrace.InternalPaths(stack))
				g.record(errors.New("goroutine: panic in task " + name))
			}
		}()

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", err)
			return
		}

		if err := f(ctx); err != nil {
			g.record(err)
		}
	}()

	return nil
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Wait stops accepting new tasks, blocks until running ones finish and
// returns their joined errors.
func (g *Manager) Wait() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
