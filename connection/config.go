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

package connection

import (
	"time"

	"github.com/tochemey/finmesh/breaker"
	"github.com/tochemey/finmesh/internal/validation"
	"github.com/tochemey/finmesh/log"
)

// Config carries the client policies: the initial-connect retry schedule,
// the reconnect schedule, the default request timeout, and the optional
// circuit breaker and heartbeat settings.
type Config struct {
	requestTimeout time.Duration

	retryEnabled           bool
	retryAttempts          int
	retryDelay             time.Duration
	retryBackoffMultiplier float64

	reconnectAttempts int
	reconnectDelay    time.Duration

	heartbeatInterval time.Duration

	circuitBreaker *breaker.CircuitBreaker
	logger         log.Logger
}

// enforce compilation error
var _ validation.Validator = (*Config)(nil)

// defaultConfig returns the documented client defaults: three connect
// attempts with a one second base delay and a 1.5 backoff multiplier, three
// reconnect attempts two seconds apart, a thirty second request timeout,
// retry enabled, no breaker, no heartbeat.
func defaultConfig() *Config {
	return &Config{
		requestTimeout:         30 * time.Second,
		retryEnabled:           true,
		retryAttempts:          3,
		retryDelay:             time.Second,
		retryBackoffMultiplier: 1.5,
		reconnectAttempts:      3,
		reconnectDelay:         2 * time.Second,
		logger:                 log.DefaultLogger,
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	return validation.New(validation.AllErrors()).
		AddAssertion(c.requestTimeout > 0, "requestTimeout must be positive").
		AddAssertion(c.retryAttempts >= 1, "retryAttempts must be at least 1").
		AddAssertion(c.retryDelay > 0, "retryDelay must be positive").
		AddAssertion(c.retryBackoffMultiplier >= 1.0, "retryBackoffMultiplier must be at least 1.0").
		AddAssertion(c.reconnectAttempts >= 1, "reconnectAttempts must be at least 1").
		AddAssertion(c.reconnectDelay > 0, "reconnectDelay must be positive").
		AddAssertion(c.heartbeatInterval >= 0, "heartbeatInterval cannot be negative").
		AddAssertion(c.logger != nil, "logger is required").
		Validate()
}

// Option configures a client at construction time.
type Option func(*Config)

// WithRequestTimeout sets the default round-trip timeout applied when a
// message carries no per-message timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) { c.requestTimeout = d }
}

// WithRetry configures the initial-connect retry schedule: up to attempts
// tries, sleeping delay × multiplier^i between them (zero-based attempt
// index). A multiplier of 1.0 degenerates to fixed-delay retry.
func WithRetry(attempts int, delay time.Duration, multiplier float64) Option {
	return func(c *Config) {
		c.retryAttempts = attempts
		c.retryDelay = delay
		c.retryBackoffMultiplier = multiplier
	}
}

// WithRetryDisabled makes Connect perform exactly one attempt regardless of
// the configured attempt count.
func WithRetryDisabled() Option {
	return func(c *Config) { c.retryEnabled = false }
}

// WithReconnect configures the reconnect helper: a fixed attempt count with
// a fixed inter-attempt delay, distinct from the initial-connect schedule.
func WithReconnect(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.reconnectAttempts = attempts
		c.reconnectDelay = delay
	}
}

// WithHeartbeat makes a connected client emit a one-way Heartbeat message at
// the given interval. Zero disables the emitter.
func WithHeartbeat(interval time.Duration) Option {
	return func(c *Config) { c.heartbeatInterval = interval }
}

// WithCircuitBreaker decorates every outbound send with the given breaker.
func WithCircuitBreaker(cb *breaker.CircuitBreaker) Option {
	return func(c *Config) { c.circuitBreaker = cb }
}

// WithLogger sets the logger. The default is [log.DefaultLogger].
func WithLogger(logger log.Logger) Option {
	return func(c *Config) { c.logger = logger }
}
