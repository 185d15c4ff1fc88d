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

package tcp

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/finmesh/connection"
	"github.com/tochemey/finmesh/dispatch"
	"github.com/tochemey/finmesh/message"
)

// echoReceiver answers every request with a response echoing one field.
func echoReceiver(_ context.Context, request *message.Message, call *dispatch.Context) *message.Message {
	if request.Kind() != message.Request {
		return nil
	}
	seq, _ := request.GetInt64("seq")
	return message.NewResponse(request, message.WithFields(map[string]any{
		"seq":  seq,
		"from": call.RemoteAddr(),
	}))
}

func startServer(t *testing.T, receiver connection.Receiver) *Server {
	t.Helper()
	ports := dynaport.Get(1)
	server := NewServer(fmt.Sprintf("127.0.0.1:%d", ports[0]))
	require.NoError(t, server.Start(context.Background(), receiver))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func TestClientServer_RoundTrip(t *testing.T) {
	server := startServer(t, echoReceiver)

	client := NewClient(server.ListenAddr())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	request := message.New("BAL_INQ_REQ", message.WithFields(map[string]any{"seq": int64(7)}))
	f, err := client.SendAsync(context.Background(), request)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	response, err := f.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "BAL_INQ_REQ", response.Code())
	require.Equal(t, message.Response, response.Kind())

	seq, err := response.GetInt64("seq")
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}

func TestClientServer_ConcurrentCorrelation(t *testing.T) {
	server := startServer(t, echoReceiver)

	client := NewClient(server.ListenAddr())
	require.NoError(t, client.Connect(context.Background()))
	defer client.Disconnect(context.Background()) //nolint:errcheck

	const inflight = 20
	var wg sync.WaitGroup
	for i := 0; i < inflight; i++ {
		wg.Add(1)
		go func(seq int64) {
			defer wg.Done()
			request := message.New("BAL_INQ_REQ", message.WithFields(map[string]any{"seq": seq}))
			f, err := client.SendAsync(context.Background(), request)
			assert.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			response, err := f.Await(ctx)
			assert.NoError(t, err)
			if response == nil {
				return
			}
			got, err := response.GetInt64("seq")
			assert.NoError(t, err)
			// every caller gets its own answer back
			assert.Equal(t, seq, got)
		}(int64(i))
	}
	wg.Wait()
}

func TestClient_OneWay(t *testing.T) {
	received := make(chan *message.Message, 1)
	server := startServer(t, func(_ context.Context, request *message.Message, _ *dispatch.Context) *message.Message {
		received <- request
		return nil
	})

	client := NewClient(server.ListenAddr())
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

func TestClient_Errors(t *testing.T) {
	t.Run("send before connect", func(t *testing.T) {
		client := NewClient("127.0.0.1:1")
		_, err := client.SendAsync(context.Background(), message.New("BAL_INQ_REQ"))
		require.ErrorIs(t, err, ErrClientClosed)
	})

	t.Run("connect refused", func(t *testing.T) {
		ports := dynaport.Get(1)
		client := NewClient(fmt.Sprintf("127.0.0.1:%d", ports[0]), WithDialTimeout(500*time.Millisecond))
		require.Error(t, client.Connect(context.Background()))
	})

	t.Run("pending requests fail on disconnect", func(t *testing.T) {
		// a receiver that never answers keeps the request pending
		server := startServer(t, func(context.Context, *message.Message, *dispatch.Context) *message.Message {
			return nil
		})

		client := NewClient(server.ListenAddr())
		require.NoError(t, client.Connect(context.Background()))

		f, err := client.SendAsync(context.Background(), message.New("BAL_INQ_REQ"))
		require.NoError(t, err)
		require.NoError(t, client.Disconnect(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err = f.Await(ctx)
		require.Error(t, err)
	})
}

func TestServer_Lifecycle(t *testing.T) {
	ports := dynaport.Get(1)
	server := NewServer(fmt.Sprintf("127.0.0.1:%d", ports[0]))
	require.NoError(t, server.Start(context.Background(), echoReceiver))
	require.NotEmpty(t, server.ListenAddr())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	// the port is released: a new client cannot connect
	client := NewClient(server.ListenAddr(), WithDialTimeout(500*time.Millisecond))
	require.Error(t, client.Connect(context.Background()))
}
