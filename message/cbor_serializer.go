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
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CBORSerializer errors.
var (
	// ErrNilMessage is returned by [CBORSerializer.Serialize] when the
	// supplied message is nil.
	ErrNilMessage = errors.New("message: message is nil")

	// ErrSerializeFailed is returned when CBOR marshaling fails. It wraps
	// the underlying CBOR library error.
	ErrSerializeFailed = errors.New("message: failed to serialize message")

	// ErrDeserializeFailed is returned when CBOR unmarshaling fails. It
	// wraps the underlying CBOR library error.
	ErrDeserializeFailed = errors.New("message: failed to deserialize message")

	// ErrInvalidFrame is returned by [CBORSerializer.Deserialize] when the
	// byte slice is empty or decodes into an envelope without an identity
	// or a transaction code.
	ErrInvalidFrame = errors.New("message: malformed or truncated frame")
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortNone, // no key sorting — fastest
		IndefLength: cbor.IndefLengthForbidden,
	}
	if cborEncMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Errorf("message: invalid CBOR encode options: %w", err))
	}

	decOpts := cbor.DecOptions{
		// Field maps travel as CBOR maps of dynamically typed values;
		// decode integers signed and maps keyed by string so the typed
		// accessors see predictable Go types.
		IntDec:         cbor.IntDecConvertSignedOrFail,
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}
	if cborDecMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Errorf("message: invalid CBOR decode options: %w", err))
	}
}

// wireEnvelope is the CBOR wire representation of a [Message].
type wireEnvelope struct {
	ID            string         `cbor:"id"`
	Code          string         `cbor:"code"`
	Kind          int8           `cbor:"kind"`
	Protocol      int8           `cbor:"protocol"`
	Fields        map[string]any `cbor:"fields,omitempty"`
	Raw           []byte         `cbor:"raw,omitempty"`
	CreatedAtNano int64          `cbor:"created"`
	TimeoutMillis int64          `cbor:"timeout,omitempty"`
}

// CBORSerializer encodes the full envelope as a self-contained CBOR map.
// It is the wire format shared by the built-in transports.
//
// The zero value is ready to use and safe for concurrent use.
type CBORSerializer struct{}

// enforce compilation error
var _ Serializer = (*CBORSerializer)(nil)

// NewCBORSerializer creates a CBORSerializer.
func NewCBORSerializer() *CBORSerializer {
	return &CBORSerializer{}
}

// Serialize encodes the envelope.
func (s *CBORSerializer) Serialize(msg *Message) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}

	env := wireEnvelope{
		ID:            msg.id,
		Code:          msg.code,
		Kind:          int8(msg.kind),
		Protocol:      int8(msg.protocol),
		Fields:        msg.fields,
		Raw:           msg.raw,
		CreatedAtNano: msg.createdAt.UnixNano(),
		TimeoutMillis: msg.timeout.Milliseconds(),
	}

	data, err := cborEncMode.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializeFailed, err)
	}
	return data, nil
}

// Deserialize decodes a byte slice produced by Serialize.
func (s *CBORSerializer) Deserialize(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrInvalidFrame
	}

	var env wireEnvelope
	if err := cborDecMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserializeFailed, err)
	}

	if env.ID == "" || env.Code == "" {
		return nil, fmt.Errorf("%w: missing id or code", ErrInvalidFrame)
	}
	if env.Kind < 0 || Type(env.Kind) >= numTypes {
		return nil, fmt.Errorf("%w: unknown message type %d", ErrInvalidFrame, env.Kind)
	}
	if env.Protocol < 0 || Protocol(env.Protocol) >= numProtocols {
		return nil, fmt.Errorf("%w: unknown protocol %d", ErrInvalidFrame, env.Protocol)
	}

	fields := env.Fields
	if fields == nil {
		fields = make(map[string]any)
	}

	return &Message{
		id:        env.ID,
		code:      env.Code,
		kind:      Type(env.Kind),
		protocol:  Protocol(env.Protocol),
		fields:    fields,
		raw:       env.Raw,
		createdAt: time.Unix(0, env.CreatedAtNano),
		timeout:   time.Duration(env.TimeoutMillis) * time.Millisecond,
	}, nil
}
