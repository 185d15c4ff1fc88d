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

package dispatch

import (
	"time"

	"github.com/tochemey/finmesh/internal/syncmap"
)

// Context carries per-call metadata into a [Handler]: the remote peer
// address, the receipt timestamp, and an arbitrary attribute bag that the
// transport or earlier handlers may populate.
type Context struct {
	remoteAddr string
	receivedAt time.Time
	attributes *syncmap.SyncMap[string, any]
}

// NewContext creates a call Context.
func NewContext(remoteAddr string, receivedAt time.Time) *Context {
	return &Context{
		remoteAddr: remoteAddr,
		receivedAt: receivedAt,
		attributes: syncmap.New[string, any](),
	}
}

// RemoteAddr returns the address of the peer that sent the request.
func (c *Context) RemoteAddr() string { return c.remoteAddr }

// ReceivedAt returns the timestamp at which the request was received.
func (c *Context) ReceivedAt() time.Time { return c.receivedAt }

// SetAttribute stores an arbitrary attribute on the call.
func (c *Context) SetAttribute(name string, value any) {
	c.attributes.Set(name, value)
}

// Attribute returns the named attribute and whether it exists.
func (c *Context) Attribute(name string) (any, bool) {
	return c.attributes.Get(name)
}
