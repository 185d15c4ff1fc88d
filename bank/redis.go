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

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces account records in the keyspace.
const redisKeyPrefix = "finmesh:account:"

// RedisStore is an AccountStore backed by a Redis server. Records are
// CBOR-encoded under "finmesh:account:<number>" keys.
type RedisStore struct {
	client *redis.Client
}

// enforce compilation error
var _ AccountStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore over an existing client. The caller
// owns the client's lifecycle.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the account with the given number.
func (s *RedisStore) Get(ctx context.Context, number string) (*Account, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+number).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	account := new(Account)
	if err := cbor.Unmarshal(data, account); err != nil {
		return nil, fmt.Errorf("bank: decoding account %s: %w", number, err)
	}
	return account, nil
}

// Save creates or replaces the account keyed by its number. Records do not
// expire.
func (s *RedisStore) Save(ctx context.Context, account *Account) error {
	data, err := cbor.Marshal(account)
	if err != nil {
		return fmt.Errorf("bank: encoding account %s: %w", account.Number, err)
	}
	return s.client.Set(ctx, redisKeyPrefix+account.Number, data, 0).Err()
}

// Delete removes the account.
func (s *RedisStore) Delete(ctx context.Context, number string) error {
	return s.client.Del(ctx, redisKeyPrefix+number).Err()
}
