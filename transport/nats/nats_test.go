/*
 * MIT License
 *
 * Copyright (c) 2022-2026 FinMesh Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package nats

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/message"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host: "127.0.0.1",
		Port: -1,
	})

	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}

	t.Cleanup(serv.Shutdown)
	return serv
}

func startTransportServer(t *testing.T, serverURL string, receiver connection.Receiver) *Server {
	t.Helper()
	server := NewServer(serverURL)
	require.NoError(t, server.Start(context.Background(), receiver))
	t.Cleanup(func() {
		_ = server.Stop(context.Background())
	})
	return server
}

func TestClientServer_RequestReply(t *testing.T) {
	srv := startNatsServer(t)
	startTransportServer(t, srv.ClientURL(), func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
		return message.NewResponse(request, message.WithFields(map[string]any{"status": "00"}))
	})

	client := NewClient(srv.ClientURL())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	f, err := client.SendAsync(context.Background(), message.New("BAL_INQ_REQ", message.WithProtocol(message.NATS)))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	response, err := f.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "BAL_INQ_REQ", response.Code())
	status, err := response.GetString("status")
	require.NoError(t, err)
	assert.Equal(t, "00", status)
}

func TestClient_OneWay(t *testing.T) {
	srv := startNatsServer(t)
	received := make(chan *message.Message, 1)
	startTransportServer(t, srv.ClientURL(), func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
		received <- request
		return nil
	})

	client := NewClient(srv.ClientURL())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	require.NoError(t, client.SendOneWay(context.Background(), message.New("AUDIT_EVT", message.WithKind(message.Ack))))

	select {
	case msg := <-received:
		assert.Equal(t, "AUDIT_EVT", msg.Code())
	case <-time.After(3 * time.Second):
		t.Fatal("published message never arrived")
	}
}

func TestQueueGroup_SingleDelivery(t *testing.T) {
	srv := startNatsServer(t)

	// two competing servers in the same queue group: each request is
	// delivered to exactly one of them
	hits := make(chan string, 4)
	for _, name := range []string{"a", "b"} {
		name := name
		startTransportServer(t, srv.ClientURL(), func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
			hits <- name
			return message.NewResponse(request, message.WithFields(map[string]any{"served": name}))
		})
	}

	client := NewClient(srv.ClientURL())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	for i := 0; i < 4; i++ {
		f, err := client.SendAsync(context.Background(), message.New("BAL_INQ_REQ"))
		require.NoError(t, err)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		response, err := f.Await(ctx)
		cancel()
		require.NoError(t, err)
		require.NotNil(t, response)
	}

	require.Len(t, hits, 4)
}

func TestClient_NotConnected(t *testing.T) {
	client := NewClient("nats://127.0.0.1:1")

	_, err := client.SendAsync(context.Background(), message.New("BAL_INQ_REQ"))
	require.Error(t, err)

	err = client.SendOneWay(context.Background(), message.New("AUDIT_EVT"))
	require.Error(t, err)
}

func TestCustomSubjectPrefix(t *testing.T) {
	srv := startNatsServer(t)

	server := NewServer(srv.ClientURL(), WithServerSubjectPrefix("acquiring"))
	require.NoError(t, server.Start(context.Background(), func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
		return message.NewResponse(request)
	}))
	t.Cleanup(func() { _ = server.Stop(context.Background()) })

	// a client on the default prefix never reaches the server
	defaultClient := NewClient(srv.ClientURL())
	require.NoError(t, defaultClient.Connect(context.Background()))
	defer defaultClient.Disconnect(context.Background()) //nolint:errcheck

	f, err := defaultClient.SendAsync(context.Background(), message.New("BAL_INQ_REQ"))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	_, err = f.Await(ctx)
	cancel()
	require.Error(t, err)

	// a client on the matching prefix gets through
	client := NewClient(srv.ClientURL(), WithSubjectPrefix("acquiring"))
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	f, err = client.SendAsync(context.Background(), message.New("BAL_INQ_REQ"))
	require.NoError(t, err)
	ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	response, err := f.Await(ctx)
	require.NoError(t, err)
	require.NotNil(t, response)
}
