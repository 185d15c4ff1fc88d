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

package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/internal/frame"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// Server implements [connection.ServerTransport] over a TCP listener. Each
// accepted connection is served by its own goroutine reading frames in
// sequence; responses are written back tagged with the request's correlation
// id so multiplexing clients can pair them.
type Server struct {
	addr       string
	serializer message.Serializer
	logger     log.Logger

	listener net.Listener
	receiver connection.Receiver
	shutdown atomic.Bool
	conns    sync.WaitGroup
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

// Start creates the listener and launches the accept loop. It does not
// block.
func (s *Server) Start(ctx context.Context, receiver connection.Receiver) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.receiver = receiver
	s.shutdown.Store(false)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and waits for in-flight connections to drain.
func (s *Server) Stop(ctx context.Context) error {
	s.shutdown.Store(true)
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			s.logger.Errorf("accept failed: %v", err)
			return
		}

		s.conns.Add(1)
		go s.serveConn(conn)
	}
}

// serveConn reads frames off one connection until it dies, dispatching each
// decoded message through the receiver.
func (s *Server) serveConn(conn net.Conn) {
	defer s.conns.Done()
	defer func() { _ = conn.Close() }()

	remoteAddr := conn.RemoteAddr().String()

	for {
		data, err := frame.Read(conn)
		if err != nil {
			return
		}

		cid, payload, err := frame.Decode(data)
		if err != nil {
			s.logger.Warnf("dropping malformed frame from %s: %v", remoteAddr, err)
			continue
		}

		request, err := s.serializer.Deserialize(payload)
		if err != nil {
			s.logger.Warnf("dropping undecodable message from %s: %v", remoteAddr, err)
			continue
		}

		call := dispatch.NewContext(remoteAddr, time.Now())
		response := s.receiver(context.Background(), request, call)
		if response == nil {
			continue
		}

		out, err := s.serializer.Serialize(response)
		if err != nil {
			s.logger.Errorf("failed to serialize response for code=%s: %v", request.Code(), err)
			continue
		}

		if err := frame.Write(conn, cid, out); err != nil {
			s.logger.Warnf("failed to write response to %s: %v", remoteAddr, err)
			return
		}
	}
}
