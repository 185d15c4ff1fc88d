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

// Package nats implements the broker transport. Envelopes travel as CBOR
// payloads on subjects derived from the transaction code; request/response
// correlation rides on the broker's reply-inbox mechanism and server side
// consumers share a queue group for load balancing.
package nats

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/future"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// DefaultSubjectPrefix is the subject namespace all envelopes travel under.
// A message with code "ACCT_INFO_REQ" is published on
// "finmesh.ACCT_INFO_REQ".
const DefaultSubjectPrefix = "finmesh"

// Client implements [connection.Transport] over a NATS connection.
type Client struct {
	serverURL  string
	prefix     string
	serializer message.Serializer
	logger     log.Logger

	nc *nats.Conn
}

// enforce compilation error
var _ connection.Transport = (*Client)(nil)

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithSubjectPrefix overrides the subject namespace. The default is
// [DefaultSubjectPrefix].
func WithSubjectPrefix(prefix string) ClientOption {
	return func(c *Client) { c.prefix = prefix }
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

// NewClient creates a Client targeting the broker at serverURL.
func NewClient(serverURL string, opts ...ClientOption) *Client {
	c := &Client{
		serverURL:  serverURL,
		prefix:     DefaultSubjectPrefix,
		serializer: message.NewCBORSerializer(),
		logger:     log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes the broker connection.
func (c *Client) Connect(context.Context) error {
	if c.nc != nil && c.nc.IsConnected() {
		return nil
	}

	opts := nats.GetDefaultOptions()
	opts.Url = c.serverURL
	opts.Name = "finmesh-client"
	opts.ReconnectWait = 2 * time.Second
	opts.MaxReconnect = -1

	nc, err := opts.Connect()
	if err != nil {
		return err
	}
	c.nc = nc
	return nil
}

// Disconnect closes the broker connection. Safe to call on a client that
// never connected.
func (c *Client) Disconnect(context.Context) error {
	if c.nc == nil {
		return nil
	}
	c.nc.Close()
	c.nc = nil
	return nil
}

// SendOneWay publishes one message without a reply inbox.
func (c *Client) SendOneWay(_ context.Context, msg *message.Message) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}
	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return err
	}
	return c.nc.Publish(c.subject(msg), payload)
}

// SendAsync publishes one request with a reply inbox and returns a Future
// completed with the decoded reply.
func (c *Client) SendAsync(ctx context.Context, msg *message.Message) (future.Future, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}
	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return nil, err
	}

	subject := c.subject(msg)
	nc := c.nc
	return future.New(func() (*message.Message, error) {
		reply, err := nc.RequestMsgWithContext(ctx, &nats.Msg{Subject: subject, Data: payload})
		if err != nil {
			return nil, err
		}
		return c.serializer.Deserialize(reply.Data)
	}), nil
}

func (c *Client) subject(msg *message.Message) string {
	return c.prefix + "." + msg.Code()
}

func (c *Client) ensureConnected() error {
	if c.nc == nil || !c.nc.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return nil
}
