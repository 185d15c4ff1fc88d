/*
 * MIT License
 *
 * Copyright (c) 2022-2026 FinMesh Team
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package ticker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTicker(t *testing.T) {
	t.Run("delivers ticks while started", func(t *testing.T) {
		tick := New(10 * time.Millisecond)
		require.False(t, tick.Ticking())
		tick.Start()
		require.True(t, tick.Ticking())

		select {
		case <-tick.Ticks:
		case <-time.After(time.Second):
			t.Fatal("no tick delivered")
		}

		tick.Stop()
		require.False(t, tick.Ticking())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		tick := New(10 * time.Millisecond)
		tick.Start()
		tick.Start()
		require.True(t, tick.Ticking())
		tick.Stop()
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		tick := New(10 * time.Millisecond)
		tick.Stop()
		require.False(t, tick.Ticking())
	})

	t.Run("non-positive interval panics", func(t *testing.T) {
		require.Panics(t, func() { New(0) })
	})
}
