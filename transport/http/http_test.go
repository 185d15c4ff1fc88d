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

package http

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/message"
)

func startServer(t *testing.T, receiver connection.Receiver) int {
	t.Helper()
	ports := dynaport.Get(1)
	server := NewServer(fmt.Sprintf("127.0.0.1:%d", ports[0]))
	require.NoError(t, server.Start(context.Background(), receiver))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return ports[0]
}

func TestURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8080", URL("127.0.0.1", 8080))
}

func TestClientServer_RoundTrip(t *testing.T) {
	port := startServer(t, func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
		return message.NewResponse(request, message.WithFields(map[string]any{"status": "00"}))
	})

	client := NewClient("127.0.0.1", port)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	f, err := client.SendAsync(context.Background(), message.New("BAL_INQ_REQ", message.WithProtocol(message.HTTP)))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	response, err := f.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "BAL_INQ_REQ", response.Code())
	status, err := response.GetString("status")
	require.NoError(t, err)
	assert.Equal(t, "00", status)
}

func TestClient_OneWay(t *testing.T) {
	received := make(chan *message.Message, 1)
	port := startServer(t, func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
		received <- request
		return nil
	})

	client := NewClient("127.0.0.1", port)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	require.NoError(t, client.SendOneWay(context.Background(), message.New("AUDIT_EVT", message.WithKind(message.Ack))))

	select {
	case msg := <-received:
		assert.Equal(t, "AUDIT_EVT", msg.Code())
	case <-time.After(2 * time.Second):
		t.Fatal("one-way message never arrived")
	}
}

func TestClient_ConnectProbe(t *testing.T) {
	t.Run("reachable endpoint", func(t *testing.T) {
		port := startServer(t, func(context.Context, *message.Message, *dispatch.Context) *message.Message {
			return nil
		})
		client := NewClient("127.0.0.1", port)
		require.NoError(t, client.Connect(context.Background()))
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		ports := dynaport.Get(1)
		client := NewClient("127.0.0.1", ports[0])
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.Error(t, client.Connect(ctx))
	})
}
