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

package breaker

import (
	"fmt"
	"time"
)

// options configures the breaker.
type options struct {
	name             string
	enabled          bool
	failureThreshold int           // consecutive failures in Closed before opening
	successThreshold int           // consecutive successes in HalfOpen before closing
	openTimeout      time.Duration // how long to stay open before moving to half-open
	halfOpenMaxCalls int           // trial calls permitted in half-open
	clock            func() time.Time
}

// Validate checks if the options are valid and returns an error if not
func (o *options) Validate() error {
	if o.failureThreshold < 1 {
		return fmt.Errorf("failureThreshold must be at least 1, got %d", o.failureThreshold)
	}
	if o.successThreshold < 1 {
		return fmt.Errorf("successThreshold must be at least 1, got %d", o.successThreshold)
	}
	if o.openTimeout <= 0 {
		return fmt.Errorf("openTimeout must be positive, got %v", o.openTimeout)
	}
	if o.halfOpenMaxCalls < 1 {
		return fmt.Errorf("halfOpenMaxCalls must be at least 1, got %d", o.halfOpenMaxCalls)
	}
	if o.clock == nil {
		return fmt.Errorf("clock function cannot be nil")
	}
	return nil
}

func defaultOptions() *options {
	return &options{
		name:             "breaker",
		enabled:          true,
		failureThreshold: 5,
		successThreshold: 3,
		openTimeout:      30 * time.Second,
		halfOpenMaxCalls: 3,
		clock:            time.Now,
	}
}

// Sanitize adjusts invalid options to their default values.
func (o *options) Sanitize() {
	if o.name == "" {
		o.name = "breaker"
	}
	if o.failureThreshold < 1 {
		o.failureThreshold = 5
	}
	if o.successThreshold < 1 {
		o.successThreshold = 3
	}
	if o.openTimeout <= 0 {
		o.openTimeout = 30 * time.Second
	}
	if o.halfOpenMaxCalls < 1 {
		o.halfOpenMaxCalls = 3
	}
	if o.clock == nil {
		o.clock = time.Now
	}
}

// Option functional option.
type Option func(*options)

// WithName sets the breaker name reported by rejections and metrics.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithEnabled toggles the breaker. When disabled, every call is allowed and
// no state is tracked beyond pass-through.
func WithEnabled(enabled bool) Option { return func(o *options) { o.enabled = enabled } }

// WithFailureThreshold sets the number of consecutive failures tolerated in the
// closed state before the breaker opens.
func WithFailureThreshold(n int) Option { return func(o *options) { o.failureThreshold = n } }

// WithSuccessThreshold sets the number of consecutive successful trial calls in
// the half-open state required before the breaker closes again.
func WithSuccessThreshold(n int) Option { return func(o *options) { o.successThreshold = n } }

// WithOpenTimeout sets the duration the circuit breaker remains open before transitioning
// to the half-open state. This controls how long requests are blocked after the breaker opens.
func WithOpenTimeout(d time.Duration) Option { return func(o *options) { o.openTimeout = d } }

// WithHalfOpenMaxCalls sets the maximum number of trial calls permitted when the
// circuit breaker is in the half-open state. This limits the risk of overload during recovery.
func WithHalfOpenMaxCalls(n int) Option { return func(o *options) { o.halfOpenMaxCalls = n } }

// WithClock overrides the time source. Intended for tests.
func WithClock(clock func() time.Time) Option { return func(o *options) { o.clock = clock } }
