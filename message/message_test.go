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

package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	msg := New("ACCT_INFO_REQ")

	require.NotEmpty(t, msg.ID())
	assert.Equal(t, "ACCT_INFO_REQ", msg.Code())
	assert.Equal(t, Request, msg.Kind())
	assert.Zero(t, msg.Timeout())
	assert.Zero(t, msg.Len())
	assert.False(t, msg.CreatedAt().IsZero())

	t.Run("identifiers are unique", func(t *testing.T) {
		other := New("ACCT_INFO_REQ")
		require.NotEqual(t, msg.ID(), other.ID())
	})

	t.Run("options apply", func(t *testing.T) {
		msg := New("PAY_REQ",
			WithKind(Ack),
			WithProtocol(HTTP),
			WithTimeout(5*time.Second),
			WithRaw([]byte{0x01}),
			WithFields(map[string]any{"amount": int64(100)}),
		)
		assert.Equal(t, Ack, msg.Kind())
		assert.Equal(t, HTTP, msg.Protocol())
		assert.Equal(t, 5*time.Second, msg.Timeout())
		assert.Equal(t, []byte{0x01}, msg.Raw())
		assert.Equal(t, 1, msg.Len())
	})
}

func TestNewResponse(t *testing.T) {
	request := New("BAL_INQ_REQ", WithProtocol(TCP))
	response := NewResponse(request, WithFields(map[string]any{"balance": int64(42)}))

	assert.Equal(t, request.Code(), response.Code())
	assert.Equal(t, request.Protocol(), response.Protocol())
	assert.Equal(t, Response, response.Kind())
	assert.NotEqual(t, request.ID(), response.ID())
	assert.True(t, response.Has("balance"))
}

func TestMessage_Fields(t *testing.T) {
	msg := New("TEST")

	t.Run("set get unset", func(t *testing.T) {
		msg.Set("name", "alice").Set("age", int64(30))
		v, ok := msg.Get("name")
		require.True(t, ok)
		assert.Equal(t, "alice", v)
		assert.True(t, msg.Has("age"))
		assert.Equal(t, 2, msg.Len())

		msg.Unset("age")
		assert.False(t, msg.Has("age"))

		// removing a missing field is a no-op
		msg.Unset("missing")
		assert.Equal(t, 1, msg.Len())
	})

	t.Run("fields returns a copy", func(t *testing.T) {
		snapshot := msg.Fields()
		snapshot["name"] = "mallory"
		v, _ := msg.Get("name")
		assert.Equal(t, "alice", v)
	})
}

func TestMessage_TypedGetters(t *testing.T) {
	msg := New("TEST").
		Set("str", "hello").
		Set("i64", int64(99)).
		Set("i", 7).
		Set("u32", uint32(12)).
		Set("f64", 2.5).
		Set("b", true).
		Set("bytes", []byte("raw"))

	t.Run("string", func(t *testing.T) {
		v, err := msg.GetString("str")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("int64 coerces widths", func(t *testing.T) {
		v, err := msg.GetInt64("i64")
		require.NoError(t, err)
		assert.EqualValues(t, 99, v)

		v, err = msg.GetInt64("i")
		require.NoError(t, err)
		assert.EqualValues(t, 7, v)

		v, err = msg.GetInt64("u32")
		require.NoError(t, err)
		assert.EqualValues(t, 12, v)
	})

	t.Run("float64", func(t *testing.T) {
		v, err := msg.GetFloat64("f64")
		require.NoError(t, err)
		assert.Equal(t, 2.5, v)
	})

	t.Run("bool", func(t *testing.T) {
		v, err := msg.GetBool("b")
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("bytes", func(t *testing.T) {
		v, err := msg.GetBytes("bytes")
		require.NoError(t, err)
		assert.Equal(t, []byte("raw"), v)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := msg.GetString("nope")
		require.ErrorIs(t, err, ErrFieldNotFound)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := msg.GetInt64("str")
		require.Error(t, err)
		var typeErr *FieldTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, "str", typeErr.Field)
	})
}

func TestCBORSerializer_RoundTrip(t *testing.T) {
	serializer := NewCBORSerializer()

	msg := New("FUNDS_XFER_REQ",
		WithKind(Request),
		WithProtocol(NATS),
		WithTimeout(1500*time.Millisecond),
		WithRaw([]byte{0xDE, 0xAD}),
	).
		Set("fromAccount", "A-100").
		Set("amount", int64(2500)).
		Set("express", true)

	data, err := serializer.Serialize(msg)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, msg.ID(), decoded.ID())
	assert.Equal(t, msg.Code(), decoded.Code())
	assert.Equal(t, msg.Kind(), decoded.Kind())
	assert.Equal(t, msg.Protocol(), decoded.Protocol())
	assert.Equal(t, msg.Timeout(), decoded.Timeout())
	assert.Equal(t, msg.Raw(), decoded.Raw())
	assert.True(t, msg.CreatedAt().Equal(decoded.CreatedAt()))

	from, err := decoded.GetString("fromAccount")
	require.NoError(t, err)
	assert.Equal(t, "A-100", from)

	amount, err := decoded.GetInt64("amount")
	require.NoError(t, err)
	assert.EqualValues(t, 2500, amount)

	express, err := decoded.GetBool("express")
	require.NoError(t, err)
	assert.True(t, express)
}

func TestCBORSerializer_Errors(t *testing.T) {
	serializer := NewCBORSerializer()

	t.Run("nil message", func(t *testing.T) {
		_, err := serializer.Serialize(nil)
		require.ErrorIs(t, err, ErrNilMessage)
	})

	t.Run("empty frame", func(t *testing.T) {
		_, err := serializer.Deserialize(nil)
		require.ErrorIs(t, err, ErrInvalidFrame)
	})

	t.Run("garbage frame", func(t *testing.T) {
		_, err := serializer.Deserialize([]byte{0xFF, 0x00, 0x13})
		require.ErrorIs(t, err, ErrDeserializeFailed)
	})

	t.Run("missing identity", func(t *testing.T) {
		// a valid CBOR map that is not a valid envelope
		_, err := serializer.Deserialize([]byte{0xA0})
		require.ErrorIs(t, err, ErrInvalidFrame)
	})
}

func TestTypeAndProtocolStrings(t *testing.T) {
	assert.Equal(t, "REQUEST", Request.String())
	assert.Equal(t, "RESPONSE", Response.String())
	assert.Equal(t, "ACK", Ack.String())
	assert.Equal(t, "NACK", Nack.String())
	assert.Equal(t, "HEARTBEAT", Heartbeat.String())

	assert.Equal(t, "TCP", TCP.String())
	assert.Equal(t, "UDP", UDP.String())
	assert.Equal(t, "HTTP", HTTP.String())
	assert.Equal(t, "NATS", NATS.String())
}
