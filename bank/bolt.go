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
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	bbolt "go.etcd.io/bbolt"
)

const (
	boltFileMode   os.FileMode = 0o600
	boltBucketName             = "accounts"
)

var (
	defaultBoltOptions = &bbolt.Options{Timeout: 5 * time.Second, NoGrowSync: true}
	errBoltStoreClosed = errors.New("bank: bolt store is closed")
)

// BoltStore is a durable AccountStore backed by go.etcd.io/bbolt. Records
// are CBOR-encoded into a single bucket keyed by account number. bbolt
// provides single-writer/multi-reader semantics; only the close state needs
// guarding.
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
	closed atomic.Bool
}

// enforce compilation error
var _ AccountStore = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the database file at path and ensures the
// accounts bucket exists. The database is opened with a short timeout to
// avoid blocking on locked files.
func NewBoltStore(path string) (*BoltStore, error) {
	optionsCopy := *defaultBoltOptions
	db, err := bbolt.Open(path, boltFileMode, &optionsCopy)
	if err != nil {
		return nil, fmt.Errorf("bank: opening boltdb: %w", err)
	}

	bucket := []byte(boltBucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bank: initializing boltdb bucket: %w", err)
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

// Get returns the account with the given number.
func (s *BoltStore) Get(ctx context.Context, number string) (*Account, error) {
	if err := s.guard(ctx); err != nil {
		return nil, err
	}

	var data []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(number)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrAccountNotFound
	}

	account := new(Account)
	if err := cbor.Unmarshal(data, account); err != nil {
		return nil, fmt.Errorf("bank: decoding account %s: %w", number, err)
	}
	return account, nil
}

// Save creates or replaces the account keyed by its number.
func (s *BoltStore) Save(ctx context.Context, account *Account) error {
	if err := s.guard(ctx); err != nil {
		return err
	}

	data, err := cbor.Marshal(account)
	if err != nil {
		return fmt.Errorf("bank: encoding account %s: %w", account.Number, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(account.Number), data)
	})
}

// Delete removes the account.
func (s *BoltStore) Delete(ctx context.Context, number string) error {
	if err := s.guard(ctx); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(number))
	})
}

// Close closes the underlying database. It is idempotent.
func (s *BoltStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) guard(ctx context.Context) error {
	if s.closed.Load() {
		return errBoltStoreClosed
	}
	return ctx.Err()
}
