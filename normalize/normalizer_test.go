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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/finmesh/errors"
	"github.com/tochemey/finmesh/message"
)

func acmeNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer("acme",
		WithSuccessCodes("00"),
		WithCodeMapping(map[string]string{
			"01": "1001",
			"99": "9999",
		}),
	)
	require.NoError(t, err)
	return n
}

func TestNormalizer_Normalize(t *testing.T) {
	n := acmeNormalizer(t)

	t.Run("success code", func(t *testing.T) {
		msg := message.New("PAY_RSP").Set("status", "00")
		resp := n.Normalize(msg)
		require.Equal(t, Success, resp.Status())
		assert.True(t, resp.Success())
		assert.Equal(t, SuccessCode, resp.ErrorCode())
		assert.Equal(t, "00", resp.OriginalErrorCode())
		assert.Equal(t, "acme", resp.Provider())
		assert.Same(t, msg, resp.Original())
		require.NoError(t, resp.Err())
	})

	t.Run("mapped failure", func(t *testing.T) {
		msg := message.New("PAY_RSP").
			Set("status", "01").
			Set("errorMessage", "card expired")
		resp := n.Normalize(msg)
		require.Equal(t, Failure, resp.Status())
		assert.Equal(t, "1001", resp.ErrorCode())
		assert.Equal(t, "01", resp.OriginalErrorCode())
		assert.Equal(t, "card expired", resp.ErrorMessage())
	})

	t.Run("many to one collapse", func(t *testing.T) {
		msg := message.New("PAY_RSP").Set("status", "99")
		resp := n.Normalize(msg)
		require.Equal(t, Failure, resp.Status())
		assert.Equal(t, "9999", resp.ErrorCode())
	})

	t.Run("unmapped code falls back to the generic code", func(t *testing.T) {
		msg := message.New("PAY_RSP").Set("status", "77")
		resp := n.Normalize(msg)
		require.Equal(t, Failure, resp.Status())
		assert.Equal(t, GenericFailureCode, resp.ErrorCode())
		assert.Equal(t, "77", resp.OriginalErrorCode())
	})

	t.Run("absent status is unknown", func(t *testing.T) {
		resp := n.Normalize(message.New("PAY_RSP"))
		require.Equal(t, Unknown, resp.Status())
		assert.False(t, resp.Success())
		assert.Empty(t, resp.ErrorCode())
	})

	t.Run("nil status is unknown", func(t *testing.T) {
		msg := message.New("PAY_RSP").Set("status", nil)
		resp := n.Normalize(msg)
		require.Equal(t, Unknown, resp.Status())
	})

	t.Run("numeric status codes stringify", func(t *testing.T) {
		msg := message.New("PAY_RSP").Set("status", int64(0))
		custom, err := NewNormalizer("numeric", WithSuccessCodes("0"))
		require.NoError(t, err)
		resp := custom.Normalize(msg)
		require.Equal(t, Success, resp.Status())
		assert.Equal(t, "0", resp.OriginalErrorCode())
	})
}

func TestNormalizer_CustomFieldNames(t *testing.T) {
	n, err := NewNormalizer("legacy",
		WithStatusField("resultCode"),
		WithMessageField("resultText"),
		WithSuccessCodes("OK"),
	)
	require.NoError(t, err)

	msg := message.New("LEGACY_RSP").
		Set("resultCode", "FAIL").
		Set("resultText", "host down")
	resp := n.Normalize(msg)
	require.Equal(t, Failure, resp.Status())
	assert.Equal(t, "host down", resp.ErrorMessage())
}

func TestNormalizer_Err(t *testing.T) {
	n := acmeNormalizer(t)

	msg := message.New("PAY_RSP").
		Set("status", "01").
		Set("errorMessage", "card expired")
	resp := n.Normalize(msg)

	err := resp.Err()
	require.Error(t, err)

	var providerErr *gerrors.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "acme", providerErr.Provider)
	assert.Equal(t, "1001", providerErr.ErrorCode)
	assert.Equal(t, "01", providerErr.OriginalCode)
	assert.Equal(t, "card expired", providerErr.Message)

	t.Run("override message", func(t *testing.T) {
		err := resp.Err("payment declined")
		var pe *gerrors.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "payment declined", pe.Message)
	})
}

func TestNewPassthrough(t *testing.T) {
	n, err := NewPassthrough("internal")
	require.NoError(t, err)

	t.Run("success sentinel", func(t *testing.T) {
		resp := n.Normalize(message.New("RSP").Set("status", SuccessCode))
		require.Equal(t, Success, resp.Status())
	})

	t.Run("raw code echoed", func(t *testing.T) {
		resp := n.Normalize(message.New("RSP").Set("status", "5100"))
		require.Equal(t, Failure, resp.Status())
		assert.Equal(t, "5100", resp.ErrorCode())
		assert.Equal(t, "5100", resp.OriginalErrorCode())
	})
}

func TestNewNormalizer_Validation(t *testing.T) {
	t.Run("empty provider", func(t *testing.T) {
		_, err := NewNormalizer("")
		require.Error(t, err)
	})
	t.Run("empty status field", func(t *testing.T) {
		_, err := NewNormalizer("acme", WithStatusField(""))
		require.Error(t, err)
	})
	t.Run("nil fallback", func(t *testing.T) {
		_, err := NewNormalizer("acme", WithFallback(nil))
		require.Error(t, err)
	})
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	acme := acmeNormalizer(t)

	t.Run("lookup miss without default", func(t *testing.T) {
		_, ok := registry.Lookup("acme")
		require.False(t, ok)
	})

	registry.Register(acme)

	t.Run("lookup hit", func(t *testing.T) {
		n, ok := registry.Lookup("acme")
		require.True(t, ok)
		require.Same(t, acme, n)
		require.Equal(t, 1, registry.Size())
	})

	t.Run("default serves unknown providers", func(t *testing.T) {
		fallback, err := NewPassthrough("default")
		require.NoError(t, err)
		registry.SetDefault(fallback)

		n, ok := registry.Lookup("unregistered")
		require.True(t, ok)
		require.Same(t, fallback, n)
	})

	t.Run("register overwrites", func(t *testing.T) {
		other, err := NewNormalizer("acme", WithSuccessCodes("000"))
		require.NoError(t, err)
		registry.Register(other)

		n, ok := registry.Lookup("acme")
		require.True(t, ok)
		require.Same(t, other, n)
		require.Equal(t, 1, registry.Size())
	})
}
