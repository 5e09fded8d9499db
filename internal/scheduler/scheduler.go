// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. Jobs share a context that Stop cancels.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu      sync.Mutex
	jobs    map[string]Job
	entries map[string]cron.EntryID
	started bool
}

// New creates a Scheduler. Each run of a job is bounded by timeout.
func New(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	logger := slogLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
	}
}

// Every registers job under name on a cron spec such as "@every 10m" or
// "*/5 * * * *". Registering a name again replaces the earlier job.
func (s *Scheduler) Every(spec, name string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[name]; ok {
		s.cron.Remove(id)
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("scheduling %s with %q: %w", name, spec, err)
	}
	s.jobs[name] = job
	s.entries[name] = id

	slog.Info("scheduled job", "job", name, "spec", spec)
	return nil
}

// RunNow runs the named job immediately on the calling goroutine.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		slog.Warn("scheduled job failed", "job", name, "error", err, "duration", time.Since(start))
		return err
	}
	slog.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
	return nil
}

// Next returns the next run time of the named job, or the zero time.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.cron.Start()
		s.started = true
	}
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	s.cancel()
	if !started {
		return
	}

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
