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

// Package dispatch routes inbound messages to business logic by transaction
// code.
package dispatch

import (
	"context"

	"github.com/tochemey/finmesh/message"
)

// Handler is one unit of business logic. The server runtime invokes it for
// every inbound message whose code matches [Handler.MessageCode].
//
// Implementations must be pure with respect to the registry: they may keep
// their own state but must not reach into registry internals. A handler that
// returns an error does not crash the dispatching server; the server converts
// the failure into a generic system-error response.
type Handler interface {
	// MessageCode returns the transaction code this handler serves.
	MessageCode() string

	// Handle processes the request and returns a response message.
	Handle(ctx context.Context, request *message.Message, call *Context) (*message.Message, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	code string
	fn   func(ctx context.Context, request *message.Message, call *Context) (*message.Message, error)
}

// enforce compilation error
var _ Handler = (*HandlerFunc)(nil)

// NewHandlerFunc creates a Handler backed by the given function.
func NewHandlerFunc(code string, fn func(ctx context.Context, request *message.Message, call *Context) (*message.Message, error)) *HandlerFunc {
	return &HandlerFunc{code: code, fn: fn}
}

// MessageCode returns the transaction code this handler serves.
func (h *HandlerFunc) MessageCode() string { return h.code }

// Handle processes the request and returns a response message.
func (h *HandlerFunc) Handle(ctx context.Context, request *message.Message, call *Context) (*message.Message, error) {
	return h.fn(ctx, request, call)
}
