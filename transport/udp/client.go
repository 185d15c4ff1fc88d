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

// Package udp implements the datagram transport. Each datagram carries one
// self-correlating frame; there is no delivery guarantee, so callers relying
// on a response should pair this transport with their own timeout. Frames
// larger than one datagram are rejected rather than fragmented.
package udp

import (
	"context"
	"errors"
	"net"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/future"
	"github.com/tochemey/finmesh/internal/frame"
	"github.com/tochemey/finmesh/internal/syncmap"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// maxDatagramSize bounds a single frame to what fits one UDP datagram.
const maxDatagramSize = 64 * 1024

// ErrClientClosed is returned when an operation is attempted on a client
// whose socket has been torn down.
var ErrClientClosed = errors.New("udp client is closed")

// ErrDatagramTooLarge is returned when an encoded frame exceeds the
// datagram size.
var ErrDatagramTooLarge = errors.New("frame exceeds datagram size")

// Client implements [connection.Transport] over a connected UDP socket. A
// background read loop pairs inbound frames to pending futures by
// correlation id, exactly like the stream transport.
type Client struct {
	addr       string
	serializer message.Serializer
	logger     log.Logger

	conn    *net.UDPConn
	pending *syncmap.SyncMap[string, future.Completable]
}

// enforce compilation error
var _ connection.Transport = (*Client)(nil)

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithSerializer replaces the envelope serializer. The default is the CBOR
// serializer.
func WithSerializer(serializer message.Serializer) ClientOption {
	return func(c *Client) { c.serializer = serializer }
}

// WithLogger sets the client logger.
func WithLogger(logger log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client that sends to addr (host:port).
func NewClient(addr string, opts ...ClientOption) *Client {
	c := &Client{
		addr:       addr,
		serializer: message.NewCBORSerializer(),
		logger:     log.DefaultLogger,
		pending:    syncmap.New[string, future.Completable](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the connected socket and starts the read loop.
func (c *Client) Connect(context.Context) error {
	if c.conn != nil {
		return nil
	}

	raddr, err := net.ResolveUDPAddr("udp", c.addr)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return err
	}
	c.conn = conn
	go c.readLoop(conn)
	return nil
}

// Disconnect closes the socket and fails every pending exchange. Safe to
// call on a client that never connected.
func (c *Client) Disconnect(context.Context) error {
	conn := c.conn
	c.conn = nil
	if conn == nil {
		return nil
	}
	err := conn.Close()
	c.failPending(ErrClientClosed)
	return err
}

// SendOneWay writes one datagram without registering for a response.
func (c *Client) SendOneWay(_ context.Context, msg *message.Message) error {
	return c.write(msg.ID(), msg)
}

// SendAsync writes one request datagram and returns a Future completed by
// the read loop when the correlated response arrives. The datagram may be
// lost in transit; the caller's await timeout is the only recovery.
func (c *Client) SendAsync(_ context.Context, msg *message.Message) (future.Future, error) {
	comp := future.NewCompletable()
	c.pending.Set(msg.ID(), comp)
	if err := c.write(msg.ID(), msg); err != nil {
		c.pending.Delete(msg.ID())
		return nil, err
	}
	return comp.Future(), nil
}

func (c *Client) write(cid string, msg *message.Message) error {
	conn := c.conn
	if conn == nil {
		return ErrClientClosed
	}

	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return err
	}
	data, err := frame.Encode(cid, payload)
	if err != nil {
		return err
	}
	if len(data) > maxDatagramSize {
		return ErrDatagramTooLarge
	}
	_, err = conn.Write(data)
	return err
}

func (c *Client) readLoop(conn *net.UDPConn) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			c.failPending(ErrClientClosed)
			return
		}

		cid, payload, err := frame.Decode(buf[:n])
		if err != nil {
			c.logger.Warnf("dropping malformed datagram: %v", err)
			continue
		}

		comp, ok := c.pending.Get(cid)
		if !ok {
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

func (c *Client) failPending(err error) {
	c.pending.Range(func(_ string, comp future.Completable) {
		comp.Failure(err)
	})
	c.pending.Reset()
}
