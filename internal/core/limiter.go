package core

// limiter.go bounds how many checks the server runs at once.
//
// Each check holds one slot of a semaphore for its whole run. When all slots
// are taken a request waits up to maxWait and then fails with
// ErrTooManyChecks. WaitForDrain lets shutdown wait for running checks.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyChecks is returned when every check slot stays busy for the whole
// wait period. Clients should retry after a short delay.
var ErrTooManyChecks = errors.New("too many concurrent checks, please try again later")

const (
	DefaultMaxConcurrentChecks = 5
	DefaultMaxWaitTime         = 30 * time.Second
)

// CheckLimiter is a counting semaphore for check runs.
type CheckLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewCheckLimiter allows at most maxConcurrent simultaneous checks.
func NewCheckLimiter(maxConcurrent int, maxWait time.Duration) *CheckLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentChecks
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &CheckLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. It returns ErrTooManyChecks when maxWait expires
// and ctx.Err() when ctx ends first. Callers must Release a slot they got.
func (l *CheckLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyChecks
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *CheckLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *CheckLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

func (l *CheckLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

func (l *CheckLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

func (l *CheckLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no check is running or ctx ends.
func (l *CheckLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of a CheckLimiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *CheckLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
