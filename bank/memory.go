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

package bank

import (
	"context"

	"github.com/tochemey/finmesh/internal/syncmap"
)

// MemoryStore is an in-memory AccountStore for tests and demos.
type MemoryStore struct {
	accounts *syncmap.SyncMap[string, Account]
}

// enforce compilation error
var _ AccountStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: syncmap.New[string, Account](),
	}
}

// Get returns the account with the given number.
func (s *MemoryStore) Get(_ context.Context, number string) (*Account, error) {
	account, ok := s.accounts.Get(number)
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &account, nil
}

// Save creates or replaces the account. The record is stored by value so
// later caller mutations do not leak into the store.
func (s *MemoryStore) Save(_ context.Context, account *Account) error {
	s.accounts.Set(account.Number, *account)
	return nil
}

// Delete removes the account.
func (s *MemoryStore) Delete(_ context.Context, number string) error {
	s.accounts.Delete(number)
	return nil
}
