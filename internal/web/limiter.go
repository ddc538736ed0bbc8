package web

// limiter.go bounds how many validations run at once.
//
// Each validation holds a slot for the full load + check pass. When every
// slot is taken, new requests wait up to maxWait and then fail with
// ErrTooManyValidations. Drain blocks shutdown until in-flight work ends.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyValidations is returned when no slot frees up before the wait expires.
var ErrTooManyValidations = errors.New("too many concurrent validations, please try again later")

const (
	// DefaultMaxConcurrent is used when the configured limit is not positive.
	DefaultMaxConcurrent = 4

	// DefaultMaxWaitTime is how long Acquire waits for a slot.
	DefaultMaxWaitTime = 30 * time.Second
)

// ValidationLimiter is a counting semaphore over validation requests.
type ValidationLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewValidationLimiter allows at most maxConcurrent validations in flight.
func NewValidationLimiter(maxConcurrent int, maxWait time.Duration) *ValidationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ValidationLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot or returns ErrTooManyValidations after maxWait.
// A cancelled ctx returns ctx.Err(). Callers must Release on success.
func (l *ValidationLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyValidations
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ValidationLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ValidationLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of validations holding a slot.
func (l *ValidationLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// Drain blocks until no validation is active or ctx ends.
func (l *ValidationLimiter) Drain(ctx context.Context) error {
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

// LimiterStatus is a point-in-time view of the limiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current occupancy.
func (l *ValidationLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
