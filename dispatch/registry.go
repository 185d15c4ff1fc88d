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
	"sync"

	"github.com/tochemey/finmesh/internal/syncmap"
)

// Registry maps a transaction code to the [Handler] serving it, with one
// optional default handler for unmatched codes.
//
// Registration normally happens during a startup phase while lookups run
// concurrently from every inbound connection; all operations are safe for
// concurrent use. Registering a handler for a code that already has one
// silently replaces the previous handler (last writer wins).
type Registry struct {
	handlers *syncmap.SyncMap[string, Handler]

	mu       sync.RWMutex
	fallback Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: syncmap.New[string, Handler](),
	}
}

// Register stores the handler keyed by the code it declares it handles.
// Re-registering the same code overwrites the prior handler.
func (r *Registry) Register(handler Handler) {
	r.handlers.Set(handler.MessageCode(), handler)
}

// SetDefault replaces any previously set default handler. The default is
// returned by Lookup for codes with no explicit registration.
func (r *Registry) SetDefault(handler Handler) {
	r.mu.Lock()
	r.fallback = handler
	r.mu.Unlock()
}

// Lookup returns the handler registered for the given code. When no explicit
// registration matches, the default handler is returned if one is set. The
// boolean reports whether any handler was found.
func (r *Registry) Lookup(code string) (Handler, bool) {
	if handler, ok := r.handlers.Get(code); ok {
		return handler, true
	}
	r.mu.RLock()
	fallback := r.fallback
	r.mu.RUnlock()
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// Size reports the number of explicitly registered entries. The default
// handler is not counted.
func (r *Registry) Size() int {
	return r.handlers.Len()
}

// Clear removes all entries including the default handler.
func (r *Registry) Clear() {
	r.handlers.Reset()
	r.mu.Lock()
	r.fallback = nil
	r.mu.Unlock()
}
