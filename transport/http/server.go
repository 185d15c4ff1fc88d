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

package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// Server implements [connection.ServerTransport] over an h2c HTTP server.
type Server struct {
	addr       string
	serializer message.Serializer
	logger     log.Logger

	listener net.Listener
	server   *http.Server
	receiver connection.Receiver
}

// enforce compilation error
var _ connection.ServerTransport = (*Server)(nil)

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithServerSerializer replaces the envelope serializer. The default is the
// CBOR serializer.
func WithServerSerializer(serializer message.Serializer) ServerOption {
	return func(s *Server) { s.serializer = serializer }
}

// WithServerLogger sets the server logger.
func WithServerLogger(logger log.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server bound to the given address (host:port).
func NewServer(addr string, opts ...ServerOption) *Server {
	s := &Server{
		addr:       addr,
		serializer: message.NewCBORSerializer(),
		logger:     log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAddr returns the actual listen address, useful when the server was
// started on port 0. Returns an empty string before Start.
func (s *Server) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start creates the listener and serves the h2c handler in a background
// goroutine. It does not block.
func (s *Server) Start(ctx context.Context, receiver connection.Receiver) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.receiver = receiver

	mux := http.NewServeMux()
	mux.HandleFunc(messagesPath, s.handleMessages)
	s.server = &http.Server{
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("http server stopped: %v", err)
		}
	}()
	return nil
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handleMessages decodes one envelope, dispatches it and writes the response
// envelope back. One-way traffic answers 204.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	request, err := s.serializer.Deserialize(body)
	if err != nil {
		s.logger.Warnf("dropping undecodable message from %s: %v", r.RemoteAddr, err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	call := dispatch.NewContext(r.RemoteAddr, time.Now())
	response := s.receiver(r.Context(), request, call)
	if response == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out, err := s.serializer.Serialize(response)
	if err != nil {
		s.logger.Errorf("failed to serialize response for code=%s: %v", request.Code(), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out); err != nil {
		s.logger.Warnf("failed to write response to %s: %v", r.RemoteAddr, err)
	}
}
