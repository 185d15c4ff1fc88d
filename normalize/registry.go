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

package normalize

import (
	"sync"

	"github.com/tochemey/finmesh/internal/syncmap"
)

// Registry holds the Normalizer of every known provider. Lookup falls back
// to a configured default normalizer — typically a pass-through one — for
// providers needing no translation. Registering the same provider id twice
// overwrites the previous normalizer.
type Registry struct {
	normalizers *syncmap.SyncMap[string, *Normalizer]

	mu       sync.RWMutex
	fallback *Normalizer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		normalizers: syncmap.New[string, *Normalizer](),
	}
}

// Register stores the normalizer keyed by its provider id, replacing any
// previous registration for the same provider.
func (r *Registry) Register(n *Normalizer) {
	r.normalizers.Set(n.Provider(), n)
}

// SetDefault replaces the default normalizer returned for unknown providers.
func (r *Registry) SetDefault(n *Normalizer) {
	r.mu.Lock()
	r.fallback = n
	r.mu.Unlock()
}

// Lookup returns the normalizer registered for the given provider id, or the
// default normalizer when none matches. The boolean reports whether any
// normalizer was found.
func (r *Registry) Lookup(provider string) (*Normalizer, bool) {
	if n, ok := r.normalizers.Get(provider); ok {
		return n, true
	}
	r.mu.RLock()
	fallback := r.fallback
	r.mu.RUnlock()
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

// Size reports the number of explicitly registered normalizers. The default
// is not counted.
func (r *Registry) Size() int {
	return r.normalizers.Len()
}
