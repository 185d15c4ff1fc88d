// MIT License
//
// Copyright (c) 2022-2026 FinMesh Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package breaker provides a thread-safe circuit breaker isolating callers
// from downstreams that are currently failing. It wraps arbitrary outbound
// operations and composes freely with the connection-level retry policy.
package breaker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// CircuitBreaker is a thread-safe circuit breaker implementation.
//
// In the closed state calls pass through and consecutive failures are
// counted; reaching the failure threshold opens the breaker. While open,
// calls are rejected without invoking the wrapped operation until the open
// timeout elapses, at which point a bounded number of trial calls probe the
// downstream. Enough consecutive trial successes close the breaker again; a
// single trial failure reopens it.
type CircuitBreaker struct {
	opts *options

	state    atomic.Int32
	openedAt atomic.Int64 // unix nano of the last transition into Open

	consecutiveFailures atomic.Int32 // meaningful in Closed
	halfOpenSuccesses   atomic.Int32 // meaningful in HalfOpen
	halfOpenCalls       atomic.Int32 // trial calls admitted in HalfOpen

	// running totals for observability only
	totalCalls     atomic.Uint64
	totalSuccesses atomic.Uint64
	totalFailures  atomic.Uint64

	mu sync.Mutex // guards transitions
}

// NewCircuitBreaker constructs a circuit breaker. Invalid option values are
// adjusted to sensible defaults.
func NewCircuitBreaker(opts ...Option) *CircuitBreaker {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}
	o.Sanitize()
	return newBreaker(o)
}

// NewCircuitBreakerWithValidation constructs a circuit breaker with validation.
// Returns an error if the provided options are invalid.
func NewCircuitBreakerWithValidation(opts ...Option) (*CircuitBreaker, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return newBreaker(o), nil
}

func newBreaker(o *options) *CircuitBreaker {
	b := &CircuitBreaker{opts: o}
	b.state.Store(int32(Closed))
	return b
}

// Name returns the breaker name.
func (b *CircuitBreaker) Name() string { return b.opts.name }

// State returns the current breaker state.
func (b *CircuitBreaker) State() State { return State(b.state.Load()) }

// Enabled reports whether the breaker is tracking state. A disabled breaker
// allows every call.
func (b *CircuitBreaker) Enabled() bool { return b.opts.enabled }

// Execute runs fn if the breaker allows it, records the outcome, and returns
// fn's result. The wrapped operation's own error is returned unchanged on
// failure; a rejection returns an [*OpenError] without invoking fn at all.
func (b *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	if !b.opts.enabled {
		return fn(ctx)
	}

	if !b.TryAllow() {
		return nil, &OpenError{Name: b.opts.name, State: b.State()}
	}

	b.totalCalls.Inc()

	defer func() {
		if r := recover(); r != nil {
			b.onFailure()
			panic(r)
		}
	}()

	value, err := fn(ctx)
	if err != nil {
		b.onFailure()
		return nil, err
	}
	b.onSuccess()
	return value, nil
}

// TryAllow returns whether a call is permitted at this moment. A rejected
// call has no side effects on the breaker. Callers using TryAllow directly
// must report the call outcome through Execute instead, or the breaker never
// observes recovery.
func (b *CircuitBreaker) TryAllow() bool {
	if !b.opts.enabled {
		return true
	}

	switch b.State() {
	case Closed:
		return true
	case Open:
		deadline := b.openedAt.Load() + b.opts.openTimeout.Nanoseconds()
		if b.opts.clock().UnixNano() < deadline {
			return false
		}
		b.toHalfOpen()
		return b.admitTrialCall()
	default:
		return b.admitTrialCall()
	}
}

// admitTrialCall reserves one half-open permit. The compare-and-swap loop
// guarantees that a rejected caller never consumes a permit.
func (b *CircuitBreaker) admitTrialCall() bool {
	for {
		n := b.halfOpenCalls.Load()
		if int(n) >= b.opts.halfOpenMaxCalls {
			return false
		}
		if b.halfOpenCalls.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// ForceOpen jumps straight to Open regardless of current counts and restarts
// the open timeout clock. Administrative override.
func (b *CircuitBreaker) ForceOpen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Store(int32(Open))
	b.openedAt.Store(b.opts.clock().UnixNano())
	b.resetCountersLocked()
}

// Reset jumps straight to Closed and zeroes all counters, including the
// running totals. Usable after manual remediation.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Store(int32(Closed))
	b.resetCountersLocked()
	b.totalCalls.Store(0)
	b.totalSuccesses.Store(0)
	b.totalFailures.Store(0)
}

// onSuccess records a successful call.
func (b *CircuitBreaker) onSuccess() {
	b.totalSuccesses.Inc()
	switch b.State() {
	case HalfOpen:
		if int(b.halfOpenSuccesses.Inc()) >= b.opts.successThreshold {
			b.transitionTo(Closed)
		}
	default:
		// any success in Closed clears accumulated failures
		b.consecutiveFailures.Store(0)
	}
}

// onFailure records a failed call.
func (b *CircuitBreaker) onFailure() {
	b.totalFailures.Inc()
	switch b.State() {
	case HalfOpen:
		b.transitionTo(Open)
	case Closed:
		if int(b.consecutiveFailures.Inc()) >= b.opts.failureThreshold {
			b.transitionTo(Open)
		}
	default:
	}
}

func (b *CircuitBreaker) toHalfOpen() {
	b.transitionTo(HalfOpen)
}

// transitionTo attempts to transition from the current state to the target
// state. Returns true if the transition was performed, false when the breaker
// is already in the target state — concurrent callers racing on the same
// boundary produce exactly one transition.
func (b *CircuitBreaker) transitionTo(target State) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if State(b.state.Load()) == target {
		return false
	}

	switch target {
	case Open:
		b.openedAt.Store(b.opts.clock().UnixNano())
	case HalfOpen, Closed:
	}
	b.resetCountersLocked()
	b.state.Store(int32(target))
	return true
}

// resetCountersLocked zeroes the per-state counters. Caller must hold b.mu.
func (b *CircuitBreaker) resetCountersLocked() {
	b.consecutiveFailures.Store(0)
	b.halfOpenSuccesses.Store(0)
	b.halfOpenCalls.Store(0)
}

// Metrics is a read-only snapshot of the breaker's running totals.
type Metrics struct {
	Name        string
	State       State
	Calls       uint64
	Successes   uint64
	Failures    uint64
	FailureRate float64
	OpenedAt    time.Time
}

// Metrics returns a snapshot of running totals without mutating state.
func (b *CircuitBreaker) Metrics() Metrics {
	m := Metrics{
		Name:      b.opts.name,
		State:     b.State(),
		Calls:     b.totalCalls.Load(),
		Successes: b.totalSuccesses.Load(),
		Failures:  b.totalFailures.Load(),
	}
	if m.Calls > 0 {
		m.FailureRate = float64(m.Failures) / float64(m.Calls)
	}
	if at := b.openedAt.Load(); at > 0 {
		m.OpenedAt = time.Unix(0, at)
	}
	return m
}
