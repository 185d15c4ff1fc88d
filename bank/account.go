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

// Package bank is the demo business layer: account records, pluggable
// account stores and the transaction handlers plugged into the dispatch
// registry. Stores are explicit repository objects constructed once at
// process start and handed to the handlers; there are no package-level
// singletons.
package bank

import (
	"context"
	"errors"
)

// ErrAccountNotFound is returned by stores when no account matches the
// given number.
var ErrAccountNotFound = errors.New("account not found")

// Account is one bank account record. Balance is carried in minor currency
// units (cents) to keep arithmetic exact.
type Account struct {
	Number   string `cbor:"number" json:"number"`
	Name     string `cbor:"name" json:"name"`
	Balance  int64  `cbor:"balance" json:"balance"`
	Currency string `cbor:"currency" json:"currency"`
}

// AccountStore is the repository contract the handlers depend on.
// Implementations must be safe for concurrent use.
type AccountStore interface {
	// Get returns the account with the given number, or ErrAccountNotFound.
	Get(ctx context.Context, number string) (*Account, error)

	// Save creates or replaces the account keyed by its number.
	Save(ctx context.Context, account *Account) error

	// Delete removes the account. Deleting a missing account is a no-op.
	Delete(ctx context.Context, number string) error
}
