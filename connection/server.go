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
	"fmt"

	"go.uber.org/atomic"

	"github.com/tochemey/finmesh/dispatch"
	gerrors "github.com/tochemey/finmesh/errors"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
	"github.com/tochemey/finmesh/normalize"
)

// Server accepts inbound traffic from a [ServerTransport] and routes every
// decoded message through a [dispatch.Registry]. Handler panics are
// recovered and handler errors and unmatched codes are converted into Nack
// responses, so one misbehaving handler cannot take the accept path down.
type Server struct {
	transport ServerTransport
	registry  *dispatch.Registry
	logger    log.Logger
	started   atomic.Bool
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithServerLogger sets the server logger. The default is
// [log.DefaultLogger].
func WithServerLogger(logger log.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server routing inbound messages through the given
// registry.
func NewServer(transport ServerTransport, registry *dispatch.Registry, opts ...ServerOption) (*Server, error) {
	if transport == nil {
		return nil, fmt.Errorf("connection: server transport is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("connection: dispatch registry is required")
	}
	s := &Server{
		transport: transport,
		registry:  registry,
		logger:    log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Registry returns the dispatch registry the server routes through.
func (s *Server) Registry() *dispatch.Registry { return s.registry }

// Running reports whether the server has been started and not yet stopped.
func (s *Server) Running() bool { return s.started.Load() }

// Start starts the listening transport. Starting an already started server
// fails with [gerrors.ErrServerAlreadyStarted].
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return gerrors.ErrServerAlreadyStarted
	}
	if err := s.transport.Start(ctx, s.receive); err != nil {
		s.started.Store(false)
		return fmt.Errorf("connection: failed to start server: %w", err)
	}
	s.logger.Info("server started")
	return nil
}

// Stop stops the listening transport. Stopping a server that is not running
// fails with [gerrors.ErrServerNotStarted].
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return gerrors.ErrServerNotStarted
	}
	if err := s.transport.Stop(ctx); err != nil {
		return fmt.Errorf("connection: failed to stop server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// receive dispatches one inbound message and returns the response to write
// back, or nil for one-way traffic.
func (s *Server) receive(ctx context.Context, request *message.Message, call *dispatch.Context) (response *message.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("handler panic on code=%s id=%s: %v", request.Code(), request.ID(), r)
			response = s.nack(request, fmt.Sprintf("handler panic: %v", r))
		}
	}()

	if request.Kind() == message.Heartbeat {
		return nil
	}

	handler, ok := s.registry.Lookup(request.Code())
	if !ok {
		s.logger.Warnf("no handler for code=%s id=%s from=%s", request.Code(), request.ID(), call.RemoteAddr())
		return s.nack(request, gerrors.ErrHandlerNotFound.Error())
	}

	reply, err := handler.Handle(ctx, request, call)
	if err != nil {
		s.logger.Errorf("handler failed on code=%s id=%s: %v", request.Code(), request.ID(), err)
		return s.nack(request, err.Error())
	}
	return reply
}

// nack builds the generic system-error response for a failed dispatch.
func (s *Server) nack(request *message.Message, reason string) *message.Message {
	return message.NewResponse(request,
		message.WithKind(message.Nack),
		message.WithFields(map[string]any{
			"status":       normalize.GenericFailureCode,
			"errorMessage": reason,
		}))
}
