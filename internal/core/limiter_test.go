package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCheckLimiter_AcquireRelease(t *testing.T) {
	limiter := NewCheckLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	if got := limiter.Status(); got.Active != 1 || got.Available != 1 || got.MaxConcurrent != 2 {
		t.Errorf("Status = %+v, want 1 active, 1 available, max 2", got)
	}

	limiter.Release()
	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("ActiveCount = %d, want 0", got)
	}
}

func TestCheckLimiter_TimesOutWhenFull(t *testing.T) {
	limiter := NewCheckLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyChecks) {
		t.Errorf("Acquire error = %v, want ErrTooManyChecks", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, want about 50ms", elapsed)
	}
}

func TestCheckLimiter_ContextCancelled(t *testing.T) {
	limiter := NewCheckLimiter(1, time.Minute)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire error = %v, want context.Canceled", err)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire on full limiter succeeded")
	}
}

func TestCheckLimiter_Defaults(t *testing.T) {
	limiter := NewCheckLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentChecks {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentChecks)
	}
}

func TestCheckLimiter_WaitForDrain(t *testing.T) {
	limiter := NewCheckLimiter(3, time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		if err := limiter.Acquire(context.Background()); err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			time.Sleep(d)
			limiter.Release()
		}(time.Duration(i+1) * 20 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain error = %v", err)
	}
	wg.Wait()
}

func TestCheckLimiter_WaitForDrainTimeout(t *testing.T) {
	limiter := NewCheckLimiter(1, time.Second)
	limiter.TryAcquire()
	defer limiter.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain error = %v, want DeadlineExceeded", err)
	}
}
