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

package connection

// State represents the lifecycle state of a client connection. The state
// variable is owned by exactly one client instance; transitions are
// compare-and-set guarded so that concurrent callers cannot race the machine
// into an inconsistent state.
type State int32

const (
	// Disconnected is the initial state and the terminal state of every
	// disconnect.
	Disconnected State = iota
	// Connecting is held while the retry-governed connect procedure runs.
	Connecting
	// Connected means the transport is established and sends are allowed.
	Connected
	// Reconnecting is held while the reconnect helper re-establishes a
	// connection after a detected drop.
	Reconnecting
	// Disconnecting is held while teardown runs.
	Disconnecting
	// Failed means the connect or reconnect procedure exhausted its retry
	// budget. A new Connect attempt is allowed from this state.
	Failed
)

// String returns the text representation of the state.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	case Disconnecting:
		return "disconnecting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
