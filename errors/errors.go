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

// Package errors defines the error taxonomy shared by the messaging runtime.
package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned when a send is attempted on a client that
	// is not in the connected state.
	ErrNotConnected = errors.New("client is not connected")

	// ErrServerAlreadyStarted is returned when Start is called on a server
	// that is already running.
	ErrServerAlreadyStarted = errors.New("server is already started")

	// ErrServerNotStarted is returned when Stop is called on a server that
	// is not running.
	ErrServerNotStarted = errors.New("server is not started")

	// ErrHandlerNotFound is returned when no handler matches an inbound
	// message code and no default handler is registered.
	ErrHandlerNotFound = errors.New("no handler registered for message code")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// ConnectionError reports a connection lifecycle failure: an illegal state
// transition, a connect procedure that exhausted its retry budget, or a
// transport-level teardown problem.
type ConnectionError struct {
	// Op names the operation that failed, e.g. "connect" or "send".
	Op string
	// State is the connection state observed when the operation failed.
	State string
	// Message describes the failure.
	Message string
	// Cause holds the underlying error when there is one.
	Cause error
}

// NewConnectionError creates a ConnectionError.
func NewConnectionError(op, state, message string, cause ...error) *ConnectionError {
	e := &ConnectionError{
		Op:      op,
		State:   state,
		Message: message,
	}
	if len(cause) > 0 {
		e.Cause = cause[0]
	}
	return e
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection %s failed [state=%s]: %s: %v", e.Op, e.State, e.Message, e.Cause)
	}
	return fmt.Sprintf("connection %s failed [state=%s]: %s", e.Op, e.State, e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// TimeoutError reports that a request/response round trip did not complete
// within its bound. The connection state machine remains consistent; a late
// transport result is discarded.
type TimeoutError struct {
	// Op names the operation that timed out.
	Op string
	// Timeout is the bound that was exceeded.
	Timeout time.Duration
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(op string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Op: op, Timeout: timeout}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Op, e.Timeout)
}

// ProviderError reports a business-level failure signaled by an external
// provider after normalization. It always carries the provider's original
// error code so diagnostics survive the mapping onto the internal taxonomy.
type ProviderError struct {
	// Provider identifies the external provider.
	Provider string
	// ErrorCode is the internal code assigned during normalization.
	ErrorCode string
	// OriginalCode is the raw, unmapped code found in the provider response.
	OriginalCode string
	// Message is the human-readable error message.
	Message string
}

// NewProviderError creates a ProviderError.
func NewProviderError(provider, errorCode, originalCode, message string) *ProviderError {
	return &ProviderError{
		Provider:     provider,
		ErrorCode:    errorCode,
		OriginalCode: originalCode,
		Message:      message,
	}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s returned error [code=%s originalCode=%s]: %s",
		e.Provider, e.ErrorCode, e.OriginalCode, e.Message)
}
