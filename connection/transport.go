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
	"context"

	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/future"
	"github.com/tochemey/finmesh/message"
)

// Transport is the contract a concrete channel (TCP, UDP, HTTP, NATS) must
// implement for the client state machine. The state machine calls these four
// operations and interprets their outcomes; it contains no socket or HTTP
// specific logic itself.
//
// Implementations frame one [message.Message] per exchange and provide
// whatever request-to-response correlation their wire protocol supports.
type Transport interface {
	// Connect establishes the underlying channel.
	Connect(ctx context.Context) error

	// Disconnect tears the channel down. It must be safe to call on a
	// channel that never connected or already failed.
	Disconnect(ctx context.Context) error

	// SendOneWay writes a message without awaiting any response.
	SendOneWay(ctx context.Context, msg *message.Message) error

	// SendAsync writes a request and returns a Future completed with the
	// correlated response. A Future abandoned by its caller must be
	// completable later without side effects.
	SendAsync(ctx context.Context, msg *message.Message) (future.Future, error)
}

// Receiver consumes one decoded inbound message and produces the response to
// write back to the peer. A nil response means there is nothing to write
// (one-way traffic). Implementations are provided by [Server]; transports
// must never see a panic escape a Receiver.
type Receiver func(ctx context.Context, request *message.Message, call *dispatch.Context) *message.Message

// ServerTransport is the contract a concrete listening channel must
// implement for the server runtime: start accepting peers and hand every
// decoded inbound message to the receiver, then stop.
type ServerTransport interface {
	// Start begins accepting peers. It must not block once the listener is
	// ready; inbound messages are delivered to receiver from the
	// transport's own goroutines.
	Start(ctx context.Context, receiver Receiver) error

	// Stop stops accepting and releases the listener.
	Stop(ctx context.Context) error
}
