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

// Package message defines the canonical transaction envelope exchanged by
// clients, servers and business handlers, together with the wire serializer
// extension point shared by all transports.
package message

import (
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Message is the canonical transaction envelope. Identity, code, type,
// protocol and creation time are fixed at construction; only the field map
// and the raw payload are mutable.
//
// A Message is owned by whichever unit currently holds it. It is not safe
// for concurrent mutation by multiple goroutines.
type Message struct {
	id        string
	code      string
	kind      Type
	protocol  Protocol
	fields    map[string]any
	raw       []byte
	createdAt time.Time
	timeout   time.Duration
}

// Option configures a Message at construction time.
type Option func(*Message)

// WithKind sets the message type. The default is Request.
func WithKind(t Type) Option {
	return func(m *Message) { m.kind = t }
}

// WithProtocol sets the transport channel the message is associated with.
func WithProtocol(p Protocol) Option {
	return func(m *Message) { m.protocol = p }
}

// WithTimeout sets the per-message response timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Message) { m.timeout = d }
}

// WithFields seeds the field map. The given map is copied.
func WithFields(fields map[string]any) Option {
	return func(m *Message) {
		maps.Copy(m.fields, fields)
	}
}

// WithRaw sets the raw byte payload.
func WithRaw(raw []byte) Option {
	return func(m *Message) { m.raw = raw }
}

// New creates a Message with the given transaction code and a generated
// unique identifier.
func New(code string, opts ...Option) *Message {
	m := &Message{
		id:        uuid.NewString(),
		code:      code,
		kind:      Request,
		fields:    make(map[string]any),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewResponse creates a Response message answering the given request. The
// response inherits the request's code and protocol and carries a fresh
// identifier.
func NewResponse(request *Message, opts ...Option) *Message {
	m := New(request.Code(),
		WithKind(Response),
		WithProtocol(request.Protocol()))
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the unique message identifier.
func (m *Message) ID() string { return m.id }

// Code returns the transaction code, e.g. "ACCT_INFO_REQ".
func (m *Message) Code() string { return m.code }

// Kind returns the message type.
func (m *Message) Kind() Type { return m.kind }

// Protocol returns the transport channel the message is associated with.
func (m *Message) Protocol() Protocol { return m.protocol }

// CreatedAt returns the creation timestamp.
func (m *Message) CreatedAt() time.Time { return m.createdAt }

// Timeout returns the per-message response timeout. Zero means the caller's
// default applies.
func (m *Message) Timeout() time.Duration { return m.timeout }

// Set stores a field value and returns the message for chaining.
func (m *Message) Set(name string, value any) *Message {
	m.fields[name] = value
	return m
}

// Get returns the raw field value and whether the field exists.
func (m *Message) Get(name string) (any, bool) {
	v, ok := m.fields[name]
	return v, ok
}

// Has reports whether the given field exists.
func (m *Message) Has(name string) bool {
	_, ok := m.fields[name]
	return ok
}

// Unset removes a field. Removing a missing field has no effect.
func (m *Message) Unset(name string) {
	delete(m.fields, name)
}

// Fields returns a copy of the field map.
func (m *Message) Fields() map[string]any {
	return maps.Clone(m.fields)
}

// Len returns the number of fields.
func (m *Message) Len() int { return len(m.fields) }

// Raw returns the raw byte payload, nil when none is set.
func (m *Message) Raw() []byte { return m.raw }

// SetRaw replaces the raw byte payload.
func (m *Message) SetRaw(raw []byte) {
	m.raw = raw
}

// String renders the envelope for logging. Field values are not included.
func (m *Message) String() string {
	return fmt.Sprintf("Message(id=%s code=%s type=%s protocol=%s fields=%d)",
		m.id, m.code, m.kind, m.protocol, len(m.fields))
}
