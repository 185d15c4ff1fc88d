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

// Package tcp implements the stream transport. Messages travel as
// length-prefixed binary frames carrying a correlation identifier and a
// CBOR-encoded envelope; a single long-lived connection multiplexes
// concurrent exchanges, with a background read loop pairing responses to
// their pending futures.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/future"
	"github.com/tochemey/finmesh/internal/frame"
	"github.com/tochemey/finmesh/internal/syncmap"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// ErrClientClosed is returned when an operation is attempted on a client
// whose connection has been torn down.
var ErrClientClosed = errors.New("tcp client is closed")

// Client implements [connection.Transport] over a single TCP connection.
// Writes are serialized by a mutex; a background read loop decodes inbound
// frames and completes the pending future registered under the frame's
// correlation id. Frames for unknown or already abandoned ids are dropped.
type Client struct {
	addr       string
	dialer     net.Dialer
	serializer message.Serializer
	logger     log.Logger

	mu      sync.Mutex
	conn    net.Conn
	pending *syncmap.SyncMap[string, future.Completable]
}

// enforce compilation error
var _ connection.Transport = (*Client)(nil)

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithDialTimeout sets the timeout for establishing the TCP connection.
// The default is 5 seconds.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.dialer.Timeout = d }
}

// WithKeepAlive sets the TCP keep-alive interval. The default is 15 seconds.
func WithKeepAlive(d time.Duration) ClientOption {
	return func(c *Client) { c.dialer.KeepAlive = d }
}

// WithSerializer replaces the envelope serializer. The default is the CBOR
// serializer.
func WithSerializer(serializer message.Serializer) ClientOption {
	return func(c *Client) { c.serializer = serializer }
}

// WithLogger sets the client logger.
func WithLogger(logger log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client that connects to addr (host:port).
func NewClient(addr string, opts ...ClientOption) *Client {
	c := &Client{
		addr:       addr,
		serializer: message.NewCBORSerializer(),
		logger:     log.DefaultLogger,
		pending:    syncmap.New[string, future.Completable](),
		dialer: net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return err
	}
	c.conn = conn
	go c.readLoop(conn)
	return nil
}

// Disconnect closes the connection and fails every pending exchange. It is
// safe to call on a client that never connected.
func (c *Client) Disconnect(context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	err := conn.Close()
	c.failPending(ErrClientClosed)
	return err
}

// SendOneWay writes one message without registering for a response.
func (c *Client) SendOneWay(ctx context.Context, msg *message.Message) error {
	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return err
	}
	return c.write(ctx, msg.ID(), payload)
}

// SendAsync writes one request and returns a Future completed by the read
// loop when the correlated response frame arrives.
func (c *Client) SendAsync(ctx context.Context, msg *message.Message) (future.Future, error) {
	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return nil, err
	}

	comp := future.NewCompletable()
	c.pending.Set(msg.ID(), comp)

	if err := c.write(ctx, msg.ID(), payload); err != nil {
		c.pending.Delete(msg.ID())
		return nil, err
	}
	return comp.Future(), nil
}

// write frames and writes one payload under the write mutex.
func (c *Client) write(ctx context.Context, cid string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrClientClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}
	return frame.Write(c.conn, cid, payload)
}

// readLoop decodes inbound frames until the connection dies and routes each
// payload to the pending future registered under its correlation id.
func (c *Client) readLoop(conn net.Conn) {
	for {
		data, err := frame.Read(conn)
		if err != nil {
			c.failPending(ErrClientClosed)
			return
		}

		cid, payload, err := frame.Decode(data)
		if err != nil {
			c.logger.Warnf("dropping malformed frame: %v", err)
			continue
		}

		comp, ok := c.pending.Get(cid)
		if !ok {
			// Late or unsolicited response, nobody is waiting.
			continue
		}
		c.pending.Delete(cid)

		response, err := c.serializer.Deserialize(payload)
		if err != nil {
			comp.Failure(err)
			continue
		}
		comp.Success(response)
	}
}

// failPending fails and clears every in-flight exchange.
func (c *Client) failPending(err error) {
	c.pending.Range(func(_ string, comp future.Completable) {
		comp.Failure(err)
	})
	c.pending.Reset()
}
