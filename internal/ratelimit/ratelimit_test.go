package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowEnforcesBurstPerKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	l := PerMinute(60, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatal("expected burst of two to be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("expected third request to be throttled")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("expected other key to have its own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatal("expected token to refill after one second")
	}
}

func TestSweepRemovesIdleKeys(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	l := PerMinute(10, 5)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(10 * time.Minute)
	l.Allow("fresh")

	if removed := l.Sweep(5 * time.Minute); removed != 1 {
		t.Fatalf("Sweep() removed %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		PerMinute(1, 1).Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
