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

package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tochemey/finmesh/internal/pause"
	"github.com/tochemey/finmesh/message"
)

func TestCompletable_Success(t *testing.T) {
	comp := NewCompletable()
	expected := message.New("RSP")

	go func() {
		pause.For(10 * time.Millisecond)
		comp.Success(expected)
	}()

	got, err := comp.Future().Await(context.Background())
	require.NoError(t, err)
	require.Same(t, expected, got)
}

func TestCompletable_Failure(t *testing.T) {
	comp := NewCompletable()
	boom := errors.New("boom")
	comp.Failure(boom)

	got, err := comp.Future().Await(context.Background())
	require.Nil(t, got)
	require.ErrorIs(t, err, boom)
}

func TestCompletable_FirstCompletionWins(t *testing.T) {
	comp := NewCompletable()
	expected := message.New("RSP")
	comp.Success(expected)
	comp.Failure(errors.New("too late"))
	comp.Success(message.New("OTHER"))

	got, err := comp.Future().Await(context.Background())
	require.NoError(t, err)
	require.Same(t, expected, got)
}

func TestFuture_AwaitHonorsContext(t *testing.T) {
	comp := NewCompletable()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := comp.Future().Await(ctx)
	require.Nil(t, got)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// a late completion must not panic or block the transport
	comp.Success(message.New("LATE"))
}

func TestFuture_ResultIsSticky(t *testing.T) {
	comp := NewCompletable()
	expected := message.New("RSP")
	comp.Success(expected)

	f := comp.Future()
	for i := 0; i < 3; i++ {
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		require.Same(t, expected, got)
	}
}

func TestNew_RunsTask(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		expected := message.New("RSP")
		f := New(func() (*message.Message, error) {
			return expected, nil
		})
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		require.Same(t, expected, got)
	})

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		f := New(func() (*message.Message, error) {
			return nil, boom
		})
		_, err := f.Await(context.Background())
		require.ErrorIs(t, err, boom)
	})
}
