// Package scheduler runs named jobs on cron specs. Each tick is handed to a
// goroutine.Manager so shutdown waits for in-flight jobs, and a job that is
// still running when its next tick fires is skipped.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goroutine"
	"go.uber.org/atomic"
)

var (
	ErrDuplicateJob = errors.New("scheduler: job already registered")
	ErrUnknownJob   = errors.New("scheduler: job not registered")
	ErrJobRunning   = errors.New("scheduler: job is still running")
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Runner is the goroutine.Manager subset the scheduler needs.
type Runner interface {
	Go(ctx context.Context, name string, f func(ctx context.Context) error) error
}

type entry struct {
	name    string
	job     Job
	running *atomic.Bool
	runs    *atomic.Int64
	id      cron.EntryID
}

// Scheduler wraps cron.Cron with per-job overlap protection.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration

	mu   sync.Mutex
	jobs map[string]*entry

	ctx    context.Context
	cancel context.CancelFunc
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithLocation evaluates specs in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = cron.New(cron.WithLocation(loc), cron.WithLogger(cron.DiscardLogger))
		}
	}
}

// WithJobTimeout bounds every job run.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

func New(runner Runner, opts ...Option) *Scheduler {
	if runner == nil {
		runner = goroutine.NewManager(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DiscardLogger)),
		runner: runner,
		jobs:   make(map[string]*entry),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register adds job under name on spec, for example "@every 15m".
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return ErrDuplicateJob
	}

	e := &entry{name: name, job: job, running: atomic.NewBool(false), runs: atomic.NewInt64(0)}
	id, err := s.cron.AddFunc(spec, func() {
		if err := s.dispatch(e); err != nil && !errors.Is(err, ErrJobRunning) {
			slog.Warn("scheduled job not dispatched", "job", name, "error", err)
		}
	})
	if err != nil {
		return err
	}

	e.id = id
	s.jobs[name] = e
	slog.Info("scheduled job registered", "job", name, "spec", spec)

	return nil
}

// Trigger runs a registered job now, outside of its schedule.
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownJob
	}

	return s.dispatch(e)
}

// Runs reports how many times the job has completed.
func (s *Scheduler) Runs(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.jobs[name]; ok {
		return e.runs.Load()
	}
	return 0
}

// Next reports the next activation time of the job once started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.jobs[name]; ok {
		return s.cron.Entry(e.id).Next
	}
	return time.Time{}
}

func (s *Scheduler) dispatch(e *entry) error {
	if !e.running.CompareAndSwap(false, true) {
		slog.Warn("scheduled job still running, tick skipped", "job", e.name)
		return ErrJobRunning
	}

	err := s.runner.Go(s.ctx, "scheduler."+e.name, func(ctx context.Context) error {
		defer e.running.Store(false)
		defer e.runs.Inc()

		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := e.job(ctx); err != nil {
			slog.ErrorContext(ctx, "scheduled job failed", "job", e.name, "error", err)
			return nil
		}
		slog.InfoContext(ctx, "scheduled job finished", "job", e.name, "latency_ms", time.Since(start).Milliseconds())

		return nil
	})
	if err != nil {
		e.running.Store(false)
		return err
	}

	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and cancels the context handed to running jobs.
// Waiting for those jobs is the Runner's concern.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
