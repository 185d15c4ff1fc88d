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

package message

// Serializer is the extension point for plugging a custom wire format into
// the transports. Implement this interface when the envelope must travel in
// an encoding other than the built-in CBOR framing.
//
// A single Serializer instance may be called from multiple goroutines
// concurrently. Implementations must be safe for concurrent use without
// external synchronization.
//
// Both methods must return a non-nil error when encoding or decoding fails.
// Returning a nil error alongside a nil message is incorrect and may cause
// silent data loss.
type Serializer interface {
	// Serialize encodes the envelope into a self-contained byte slice that
	// can be safely transmitted over the network.
	Serialize(msg *Message) ([]byte, error)

	// Deserialize decodes a byte slice produced by Serialize back into an
	// envelope.
	Deserialize(data []byte) (*Message, error)
}
