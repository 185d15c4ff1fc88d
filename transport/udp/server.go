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

package udp

import (
	"context"
	"net"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/internal/frame"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// Server implements [connection.ServerTransport] over a UDP socket. Each
// inbound datagram is dispatched in its own goroutine and the response, when
// there is one, is written back to the sender's address tagged with the
// request's correlation id.
type Server struct {
	addr       string
	serializer message.Serializer
	logger     log.Logger

	conn     *net.UDPConn
	receiver connection.Receiver
	shutdown atomic.Bool
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
	if s.conn == nil {
		return ""
	}
	return s.conn.LocalAddr().String()
}

// Start binds the socket and launches the read loop. It does not block.
func (s *Server) Start(_ context.Context, receiver connection.Receiver) error {
	laddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return err
	}
	s.conn = conn
	s.receiver = receiver
	s.shutdown.Store(false)
	go s.readLoop(conn)
	return nil
}

// Stop closes the socket.
func (s *Server) Stop(context.Context) error {
	s.shutdown.Store(true)
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Server) readLoop(conn *net.UDPConn) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			if !s.shutdown.Load() {
				s.logger.Errorf("udp read failed: %v", err)
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		go s.handle(conn, remote, data)
	}
}

// handle dispatches one datagram and writes the response back when there is
// one.
func (s *Server) handle(conn *net.UDPConn, remote *net.UDPAddr, data []byte) {
	cid, payload, err := frame.Decode(data)
	if err != nil {
		s.logger.Warnf("dropping malformed datagram from %s: %v", remote, err)
		return
	}

	request, err := s.serializer.Deserialize(payload)
	if err != nil {
		s.logger.Warnf("dropping undecodable message from %s: %v", remote, err)
		return
	}

	call := dispatch.NewContext(remote.String(), time.Now())
	response := s.receiver(context.Background(), request, call)
	if response == nil {
		return
	}

	out, err := s.serializer.Serialize(response)
	if err != nil {
		s.logger.Errorf("failed to serialize response for code=%s: %v", request.Code(), err)
		return
	}
	frameData, err := frame.Encode(cid, out)
	if err != nil {
		s.logger.Errorf("failed to frame response for code=%s: %v", request.Code(), err)
		return
	}
	if _, err := conn.WriteToUDP(frameData, remote); err != nil {
		s.logger.Warnf("failed to write response to %s: %v", remote, err)
	}
}
