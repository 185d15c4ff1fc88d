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

// Package frame implements the binary frame shared by the byte-oriented
// transports. A frame is self-correlating: it embeds the correlation
// identifier pairing a response to its request, so receivers can route
// payloads without inspecting them.
//
// Frame layout (all integers are big-endian uint32):
//
//	┌──────────┬──────────┬─────────────────┬──────────┐
//	│ totalLen │ cidLen   │ correlation id  │ payload  │
//	│ 4 bytes  │ 4 bytes  │ N bytes         │ M bytes  │
//	└──────────┴──────────┴─────────────────┴──────────┘
//
//	totalLen = 4 + 4 + N + M   (covers the entire frame including itself)
package frame

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxFrameSize is the maximum allowed size for a single frame (16 MiB).
const MaxFrameSize = 16 << 20

// headerSize is the fixed leading portion of every frame.
const headerSize = 8

var (
	// ErrInvalidFrame is returned for truncated or malformed frames.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrFrameTooLarge is returned when a frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
)

// Encode builds a single frame carrying the correlation id and payload. It
// pre-computes the frame size and performs exactly one allocation.
func Encode(cid string, payload []byte) ([]byte, error) {
	totalLen := headerSize + len(cid) + len(payload)
	if totalLen > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	out := make([]byte, 0, totalLen)
	var hdr [headerSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(totalLen))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(cid)))
	out = append(out, hdr[:]...)
	out = append(out, cid...)
	out = append(out, payload...)
	return out, nil
}

// Decode splits a frame produced by Encode into its correlation id and
// payload. The payload aliases the input, no copy is made.
func Decode(data []byte) (string, []byte, error) {
	if len(data) < headerSize {
		return "", nil, ErrInvalidFrame
	}

	totalLen := int(binary.BigEndian.Uint32(data[:4]))
	if totalLen < headerSize || len(data) < totalLen {
		return "", nil, ErrInvalidFrame
	}

	cidLen := int(binary.BigEndian.Uint32(data[4:8]))
	if headerSize+cidLen > totalLen {
		return "", nil, ErrInvalidFrame
	}

	cid := string(data[headerSize : headerSize+cidLen])
	payload := data[headerSize+cidLen : totalLen]
	return cid, payload, nil
}

// Read reads one complete frame from r. It reads the 4-byte length prefix,
// validates it, then reads the remaining bytes and returns the whole frame
// including the prefix, ready for Decode.
func Read(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	totalLen := binary.BigEndian.Uint32(hdr[:])
	if totalLen < headerSize {
		return nil, ErrInvalidFrame
	}
	if totalLen > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	out := make([]byte, totalLen)
	copy(out[:4], hdr[:])
	if _, err := io.ReadFull(r, out[4:]); err != nil {
		return nil, err
	}
	return out, nil
}

// Write encodes and writes one frame to w.
func Write(w io.Writer, cid string, payload []byte) error {
	data, err := Encode(cid, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
