package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestEvery_InvalidSpec(t *testing.T) {
	s := New(time.Second)
	defer s.Stop(context.Background())

	tests := []string{"", "invalid", "@every", "61 * * * *"}
	for _, spec := range tests {
		if err := s.Every(spec, "job", func(context.Context) error { return nil }); err == nil {
			t.Errorf("Every(%q) expected error, got nil", spec)
		}
	}
}

func TestEvery_ReplacesJob(t *testing.T) {
	s := New(time.Second)
	defer s.Stop(context.Background())

	var first, second atomic.Int32
	if err := s.Every("@every 1h", "purge", func(context.Context) error { first.Add(1); return nil }); err != nil {
		t.Fatalf("Every() error: %v", err)
	}
	if err := s.Every("@every 2h", "purge", func(context.Context) error { second.Add(1); return nil }); err != nil {
		t.Fatalf("Every() error: %v", err)
	}

	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("cron entries = %d, want 1", got)
	}
	if err := s.RunNow("purge"); err != nil {
		t.Fatalf("RunNow() error: %v", err)
	}
	if first.Load() != 0 || second.Load() != 1 {
		t.Errorf("runs = %d/%d, want 0/1", first.Load(), second.Load())
	}
}

func TestRunNow(t *testing.T) {
	s := New(time.Second)
	defer s.Stop(context.Background())

	boom := errors.New("boom")
	if err := s.Every("@every 1h", "fails", func(context.Context) error { return boom }); err != nil {
		t.Fatalf("Every() error: %v", err)
	}

	if err := s.RunNow("fails"); !errors.Is(err, boom) {
		t.Errorf("RunNow() error = %v, want %v", err, boom)
	}
	if err := s.RunNow("missing"); err == nil {
		t.Error("RunNow(missing) expected error, got nil")
	}
}

func TestRunNow_AppliesTimeout(t *testing.T) {
	s := New(20 * time.Millisecond)
	defer s.Stop(context.Background())

	if err := s.Every("@every 1h", "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatalf("Every() error: %v", err)
	}

	if err := s.RunNow("slow"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunNow() error = %v, want deadline exceeded", err)
	}
}

func TestStartRunsJobs(t *testing.T) {
	s := New(time.Second)

	ran := make(chan struct{}, 1)
	if err := s.Every("@every 1s", "tick", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("Every() error: %v", err)
	}

	s.Start()
	defer s.Stop(context.Background())

	if s.Next("tick").IsZero() {
		t.Error("Next() is zero after Start")
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run within 3s")
	}
}

func TestStop_CancelsContext(t *testing.T) {
	s := New(time.Minute)
	s.Start()
	s.Stop(context.Background())

	if s.ctx.Err() == nil {
		t.Error("job context not cancelled after Stop")
	}
	// Stop is safe to call twice.
	s.Stop(context.Background())
}
