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
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the AccountStore contract against any
// implementation.
func runStoreSuite(t *testing.T, store AccountStore) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("save and get", func(t *testing.T) {
		account := &Account{Number: "2001", Name: "Esi Boateng", Balance: 125_000, Currency: "GHS"}
		require.NoError(t, store.Save(ctx, account))

		got, err := store.Get(ctx, "2001")
		require.NoError(t, err)
		assert.Equal(t, account, got)
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &Account{Number: "2002", Name: "Yaw Darko", Balance: 100, Currency: "GHS"}))
		require.NoError(t, store.Save(ctx, &Account{Number: "2002", Name: "Yaw Darko", Balance: 900, Currency: "GHS"}))

		got, err := store.Get(ctx, "2002")
		require.NoError(t, err)
		assert.Equal(t, int64(900), got.Balance)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &Account{Number: "2003", Name: "Adwoa Safo", Balance: 500, Currency: "GHS"}))

		got, err := store.Get(ctx, "2003")
		require.NoError(t, err)
		got.Balance = 0

		again, err := store.Get(ctx, "2003")
		require.NoError(t, err)
		assert.Equal(t, int64(500), again.Balance)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &Account{Number: "2004", Name: "Kojo Antwi", Balance: 1, Currency: "GHS"}))
		require.NoError(t, store.Delete(ctx, "2004"))

		_, err := store.Get(ctx, "2004")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("delete missing is a no-op", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "never-existed"))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.db")
	store, err := NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runStoreSuite(t, store)

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := store.Get(ctx, "3001")
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("survives reopen", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, &Account{Number: "3001", Name: "Akosua Agyeman", Balance: 42, Currency: "GHS"}))
		require.NoError(t, store.Close())

		reopened, err := NewBoltStore(path)
		require.NoError(t, err)
		defer reopened.Close() //nolint:errcheck

		got, err := reopened.Get(ctx, "3001")
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Balance)
	})

	t.Run("closed store rejects operations", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "closed.db")
		closed, err := NewBoltStore(path)
		require.NoError(t, err)
		require.NoError(t, closed.Close())
		// idempotent
		require.NoError(t, closed.Close())

		_, err = closed.Get(context.Background(), "3001")
		require.ErrorIs(t, err, errBoltStoreClosed)
		require.ErrorIs(t, closed.Save(context.Background(), &Account{Number: "x"}), errBoltStoreClosed)
		require.ErrorIs(t, closed.Delete(context.Background(), "x"), errBoltStoreClosed)
	})
}

// TestRedisStore needs a reachable Redis server; point REDIS_ADDR at one
// (for instance 127.0.0.1:6379) to run it.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	runStoreSuite(t, NewRedisStore(client))
}
