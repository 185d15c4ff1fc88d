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

package nats

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/log"
	"github.com/tochemey/finmesh/message"
)

// DefaultQueueGroup is the queue group server consumers join so the broker
// load balances requests across instances.
const DefaultQueueGroup = "finmesh-servers"

// Server implements [connection.ServerTransport] over a NATS queue
// subscription covering the whole subject namespace.
type Server struct {
	serverURL  string
	prefix     string
	queueGroup string
	serializer message.Serializer
	logger     log.Logger

	nc           *nats.Conn
	subscription *nats.Subscription
	receiver     connection.Receiver
}

// enforce compilation error
var _ connection.ServerTransport = (*Server)(nil)

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithServerSubjectPrefix overrides the subject namespace. The default is
// [DefaultSubjectPrefix].
func WithServerSubjectPrefix(prefix string) ServerOption {
	return func(s *Server) { s.prefix = prefix }
}

// WithQueueGroup overrides the queue group. The default is
// [DefaultQueueGroup].
func WithQueueGroup(group string) ServerOption {
	return func(s *Server) { s.queueGroup = group }
}

// WithServerSerializer replaces the envelope serializer. The default is the
// CBOR serializer.
func WithServerSerializer(serializer message.Serializer) ServerOption {
	return func(s *Server) { s.serializer = serializer }
}

// WithServerLogger sets the server logger.
func WithServerLogger(logger log.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server consuming from the broker at serverURL.
func NewServer(serverURL string, opts ...ServerOption) *Server {
	s := &Server{
		serverURL:  serverURL,
		prefix:     DefaultSubjectPrefix,
		queueGroup: DefaultQueueGroup,
		serializer: message.NewCBORSerializer(),
		logger:     log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects to the broker and installs the queue subscription. It does
// not block; inbound messages are delivered from the connection's own
// goroutines.
func (s *Server) Start(_ context.Context, receiver connection.Receiver) error {
	opts := nats.GetDefaultOptions()
	opts.Url = s.serverURL
	opts.Name = "finmesh-server"
	opts.ReconnectWait = 2 * time.Second
	opts.MaxReconnect = -1

	nc, err := opts.Connect()
	if err != nil {
		return err
	}

	s.nc = nc
	s.receiver = receiver

	subscription, err := nc.QueueSubscribe(s.prefix+".>", s.queueGroup, s.handle)
	if err != nil {
		nc.Close()
		s.nc = nil
		return err
	}
	s.subscription = subscription
	return nil
}

// Stop drains the subscription and closes the broker connection.
func (s *Server) Stop(context.Context) error {
	if s.subscription != nil && s.subscription.IsValid() {
		if err := s.subscription.Unsubscribe(); err != nil {
			return err
		}
		s.subscription = nil
	}
	if s.nc != nil {
		s.nc.Close()
		s.nc = nil
	}
	return nil
}

// handle dispatches one broker delivery. Replies are published to the reply
// inbox when the sender asked for one.
func (s *Server) handle(m *nats.Msg) {
	request, err := s.serializer.Deserialize(m.Data)
	if err != nil {
		s.logger.Warnf("dropping undecodable message on %s: %v", m.Subject, err)
		return
	}

	call := dispatch.NewContext(m.Subject, time.Now())
	response := s.receiver(context.Background(), request, call)
	if response == nil || m.Reply == "" {
		return
	}

	out, err := s.serializer.Serialize(response)
	if err != nil {
		s.logger.Errorf("failed to serialize response for code=%s: %v", request.Code(), err)
		return
	}
	if err := s.nc.Publish(m.Reply, out); err != nil {
		s.logger.Errorf("failed to publish reply for code=%s: %v", request.Code(), err)
	}
}
