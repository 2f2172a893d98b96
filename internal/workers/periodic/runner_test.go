package periodic

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerNeverOverlapsAJobWithItself(t *testing.T) {
	var running, maxRunning, runs int32

	r := New(discard())
	r.Add("slow", 5*time.Millisecond, func(ctx context.Context) error {
		cur := atomic.AddInt32(&running, 1)
		defer atomic.AddInt32(&running, -1)
		for {
			prev := atomic.LoadInt32(&maxRunning)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxRunning, prev, cur) {
				break
			}
		}
		atomic.AddInt32(&runs, 1)
		time.Sleep(30 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	time.Sleep(150 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&maxRunning); got != 1 {
		t.Fatalf("max concurrent runs = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&runs); got < 2 {
		t.Fatalf("job ran %d times, want at least 2", got)
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	var runs int32
	r := New(discard())
	r.Add("counter", 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	after := atomic.LoadInt32(&runs)
	time.Sleep(30 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != after {
		t.Fatalf("job still running after cancel: %d -> %d", after, got)
	}
}

func TestAddIgnoresNonPositiveIntervals(t *testing.T) {
	r := New(discard())
	r.Add("never", 0, func(ctx context.Context) error {
		t.Error("disabled job ran")
		return nil
	})
	r.Add("also-never", -time.Second, func(ctx context.Context) error {
		t.Error("disabled job ran")
		return nil
	})
	if len(r.jobs) != 0 {
		t.Fatalf("registered %d jobs, want 0", len(r.jobs))
	}
}

