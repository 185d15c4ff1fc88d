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

// Package connection implements the client and server lifecycle state
// machines of the messaging runtime. Concrete channels plug in through the
// [Transport] and [ServerTransport] contracts; resilience policies (retry
// with backoff, reconnect, circuit breaking) compose around them as
// decorators rather than inherited behavior.
package connection

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/finmesh/errors"
	"github.com/tochemey/finmesh/internal/ticker"
	"github.com/tochemey/finmesh/message"
)

// HeartbeatCode is the transaction code of the keep-alive probes emitted by
// a client configured with a heartbeat interval.
const HeartbeatCode = "SYS_HEARTBEAT"

// Client drives one logical connection to a remote endpoint through a
// [Transport]. Its lifecycle state variable is mutated exclusively through
// compare-and-set transitions, so concurrent Connect, Disconnect and
// Reconnect calls cannot race the machine into an inconsistent state.
//
// A Client is safe for concurrent use.
type Client struct {
	transport Transport
	config    *Config
	state     atomic.Int32

	hbMu   sync.Mutex
	hb     *ticker.Ticker
	hbStop chan struct{}
}

// NewClient creates a Client over the given transport.
func NewClient(transport Transport, opts ...Option) (*Client, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("connection: invalid client configuration: %w", err)
	}
	if transport == nil {
		return nil, fmt.Errorf("connection: transport is required")
	}
	c := &Client{
		transport: transport,
		config:    config,
	}
	c.state.Store(int32(Disconnected))
	return c, nil
}

// State returns the current lifecycle state.
func (c *Client) State() State { return State(c.state.Load()) }

// IsConnected reports whether the state is exactly [Connected].
func (c *Client) IsConnected() bool { return c.State() == Connected }

// Connect attempts the transition Disconnected→Connecting (or
// Failed→Connecting) and runs the retry-governed connect procedure. When the
// transition is not currently legal — the client is already connected, or
// another Connect holds the Connecting state — it fails immediately with a
// [*gerrors.ConnectionError] reporting the current state; it never silently
// no-ops and never blocks waiting for another connect to finish.
//
// On success the state becomes Connected. When the retry budget is exhausted
// the state becomes Failed and the returned error states the number of
// attempts made.
func (c *Client) Connect(ctx context.Context) error {
	if !c.cas(Disconnected, Connecting) && !c.cas(Failed, Connecting) {
		current := c.State()
		return gerrors.NewConnectionError("connect", current.String(),
			fmt.Sprintf("connect is not allowed from state %s", current))
	}

	attempts, err := c.dialWithRetry(ctx)
	if err != nil {
		c.state.Store(int32(Failed))
		return gerrors.NewConnectionError("connect", Failed.String(),
			fmt.Sprintf("gave up after %d attempt(s)", attempts), err)
	}

	c.state.Store(int32(Connected))
	c.startHeartbeat()
	c.config.logger.Infof("client connected after %d attempt(s)", attempts)
	return nil
}

// dialWithRetry runs the transport connect procedure under the configured
// exponential backoff schedule and returns the number of attempts made.
func (c *Client) dialWithRetry(ctx context.Context) (int, error) {
	budget := c.config.retryAttempts
	if !c.config.retryEnabled {
		budget = 1
	}

	delay := c.config.retryDelay
	var lastErr error
	for attempt := 0; attempt < budget; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}

		lastErr = c.transport.Connect(ctx)
		if lastErr == nil {
			return attempt + 1, nil
		}
		c.config.logger.Warnf("connect attempt %d/%d failed: %v", attempt+1, budget, lastErr)

		if attempt == budget-1 {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return attempt + 1, err
		}
		delay = time.Duration(float64(delay) * c.config.retryBackoffMultiplier)
	}
	return budget, lastErr
}

// Disconnect tears the connection down. Calling it on an already
// disconnected client is a no-op. The client unconditionally ends in
// Disconnected; teardown errors are logged, never propagated, so the state
// machine cannot get stuck.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.State() == Disconnected {
		return nil
	}

	c.stopHeartbeat()
	c.state.Store(int32(Disconnecting))
	if err := c.transport.Disconnect(ctx); err != nil {
		c.config.logger.Warnf("teardown failed, forcing disconnected state: %v", err)
	}
	c.state.Store(int32(Disconnected))
	return nil
}

// Reconnect re-establishes a dropped connection. It only proceeds from
// Connected or Failed — the guard prevents double reconnection — and retries
// up to the configured fixed attempt count with a fixed inter-attempt delay,
// a policy distinct from the initial-connect backoff schedule. The state
// ends in Connected or Failed.
func (c *Client) Reconnect(ctx context.Context) error {
	if !c.cas(Connected, Reconnecting) && !c.cas(Failed, Reconnecting) {
		current := c.State()
		return gerrors.NewConnectionError("reconnect", current.String(),
			fmt.Sprintf("reconnect is not allowed from state %s", current))
	}

	c.stopHeartbeat()
	if err := c.transport.Disconnect(ctx); err != nil {
		c.config.logger.Warnf("teardown before reconnect failed: %v", err)
	}

	retrier := retry.NewRetrier(c.config.reconnectAttempts, c.config.reconnectDelay, c.config.reconnectDelay)
	if err := retrier.RunContext(ctx, c.transport.Connect); err != nil {
		c.state.Store(int32(Failed))
		return gerrors.NewConnectionError("reconnect", Failed.String(),
			fmt.Sprintf("gave up after %d attempt(s)", c.config.reconnectAttempts), err)
	}

	c.state.Store(int32(Connected))
	c.startHeartbeat()
	return nil
}

// Send performs a request/response round trip, blocking up to the message's
// own timeout when set and the configured request timeout otherwise.
func (c *Client) Send(ctx context.Context, msg *message.Message) (*message.Message, error) {
	timeout := msg.Timeout()
	if timeout <= 0 {
		timeout = c.config.requestTimeout
	}
	return c.SendTimeout(ctx, msg, timeout)
}

// SendTimeout performs a request/response round trip, blocking the caller up
// to the given timeout. It requires the Connected state. On expiry the
// caller is released with a [*gerrors.TimeoutError] carrying the bound; the
// in-flight transport operation may still complete later and its late result
// is discarded safely. Any other transport failure surfaces unchanged.
func (c *Client) SendTimeout(ctx context.Context, msg *message.Message, timeout time.Duration) (*message.Message, error) {
	if timeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}
	if err := c.requireConnected("send"); err != nil {
		return nil, err
	}

	op := func(ctx context.Context) (any, error) {
		return c.roundTrip(ctx, msg, timeout)
	}

	var (
		result any
		err    error
	)
	if cb := c.config.circuitBreaker; cb != nil {
		result, err = cb.Execute(ctx, op)
	} else {
		result, err = op(ctx)
	}
	if err != nil {
		return nil, err
	}
	return result.(*message.Message), nil
}

// SendOneWay writes a message without awaiting any response. It requires the
// Connected state.
func (c *Client) SendOneWay(ctx context.Context, msg *message.Message) error {
	if err := c.requireConnected("sendOneWay"); err != nil {
		return err
	}

	op := func(ctx context.Context) (any, error) {
		return nil, c.transport.SendOneWay(ctx, msg)
	}

	var err error
	if cb := c.config.circuitBreaker; cb != nil {
		_, err = cb.Execute(ctx, op)
	} else {
		_, err = op(ctx)
	}
	return err
}

// roundTrip runs one asynchronous exchange and awaits the correlated
// response under the timeout bound.
func (c *Client) roundTrip(ctx context.Context, msg *message.Message, timeout time.Duration) (*message.Message, error) {
	f, err := c.transport.SendAsync(ctx, msg)
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := f.Await(cctx)
	switch {
	case err == nil:
		return response, nil
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, gerrors.NewTimeoutError("send", timeout)
	default:
		return nil, err
	}
}

// requireConnected fails with a ConnectionError when the state is not
// Connected.
func (c *Client) requireConnected(op string) error {
	if current := c.State(); current != Connected {
		return gerrors.NewConnectionError(op, current.String(),
			gerrors.ErrNotConnected.Error(), gerrors.ErrNotConnected)
	}
	return nil
}

// cas attempts one compare-and-set state transition.
func (c *Client) cas(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// startHeartbeat launches the keep-alive emitter when configured.
func (c *Client) startHeartbeat() {
	interval := c.config.heartbeatInterval
	if interval <= 0 {
		return
	}

	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	if c.hb != nil {
		return
	}

	c.hb = ticker.New(interval)
	c.hbStop = make(chan struct{})
	c.hb.Start()

	go func(tick *ticker.Ticker, stop chan struct{}) {
		for {
			select {
			case <-stop:
				return
			case <-tick.Ticks:
				if !c.IsConnected() {
					continue
				}
				probe := message.New(HeartbeatCode, message.WithKind(message.Heartbeat))
				if err := c.transport.SendOneWay(context.Background(), probe); err != nil {
					c.config.logger.Warnf("heartbeat failed: %v", err)
				}
			}
		}
	}(c.hb, c.hbStop)
}

// stopHeartbeat stops the keep-alive emitter when running.
func (c *Client) stopHeartbeat() {
	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	if c.hb == nil {
		return
	}
	close(c.hbStop)
	c.hb.Stop()
	c.hb = nil
	c.hbStop = nil
}

// sleep blocks for the given duration or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
