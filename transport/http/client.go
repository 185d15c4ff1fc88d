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

// Package http implements the request/response transport over HTTP/2
// cleartext (h2c). Each exchange is one POST carrying the CBOR-encoded
// envelope in the body; the HTTP response body carries the correlated
// response envelope, so no explicit correlation id is needed on the wire.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/http2"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/future"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// messagesPath is the endpoint all envelopes are posted to.
const messagesPath = "/messages"

// contentType identifies the CBOR envelope body.
const contentType = "application/cbor"

// maxReadFrameSize bounds HTTP/2 frames to 16 MiB, in line with the other
// transports' frame cap.
const maxReadFrameSize = 16 << 20

// Client implements [connection.Transport] over h2c. A single HTTP/2
// connection multiplexes concurrent exchanges.
type Client struct {
	baseURL    string
	httpClient *http.Client
	serializer message.Serializer
	logger     log.Logger
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

// NewClient creates a Client targeting the server at host:port.
func NewClient(host string, port int, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    URL(host, port),
		httpClient: newH2CClient(),
		serializer: message.NewCBORSerializer(),
		logger:     log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect verifies the endpoint is reachable with a HEAD probe. The HTTP/2
// connection itself is established lazily and pooled by the transport.
func (c *Client) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+messagesPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// Disconnect drops the pooled connections.
func (c *Client) Disconnect(context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SendOneWay posts one message and discards the response body.
func (c *Client) SendOneWay(ctx context.Context, msg *message.Message) error {
	_, err := c.roundTrip(ctx, msg)
	return err
}

// SendAsync posts one message in a background goroutine and returns a Future
// completed with the decoded response.
func (c *Client) SendAsync(ctx context.Context, msg *message.Message) (future.Future, error) {
	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return nil, err
	}
	return future.New(func() (*message.Message, error) {
		return c.post(ctx, payload)
	}), nil
}

func (c *Client) roundTrip(ctx context.Context, msg *message.Message) (*message.Message, error) {
	payload, err := c.serializer.Serialize(msg)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, payload)
}

// post performs one POST exchange and decodes the response body when there
// is one. A 204 means one-way traffic, no response envelope.
func (c *Client) post(ctx context.Context, payload []byte) (*message.Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return c.serializer.Deserialize(body)
	case http.StatusNoContent:
		return nil, nil
	default:
		return nil, fmt.Errorf("http transport: server returned status %d", resp.StatusCode)
	}
}

// newH2CClient builds the HTTP/2 cleartext client: multiplexing over a
// single TCP connection, keep-alive dialer, fast dead-connection detection.
func newH2CClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http2.Transport{
			AllowHTTP:        true,
			MaxReadFrameSize: maxReadFrameSize,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
			PingTimeout:     10 * time.Second,
			ReadIdleTimeout: 20 * time.Second,
		},
	}
}

// URL builds the cleartext base address for host:port.
func URL(host string, port int) string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(port)))
}
