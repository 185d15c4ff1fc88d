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
	"fmt"

	gerrors "github.com/tochemey/finmesh/errors"
	"github.com/tochemey/finmesh/message"
)

// Response is the immutable result of normalizing one external provider
// response. Beyond the normalized status and internal error code it retains
// the provider id, the original raw status code, the provider's own error
// message and the entire original message, so a caller needing
// provider-specific detail can still reach it.
type Response struct {
	provider     string
	status       Status
	errorCode    string
	errorMessage string
	originalCode string
	original     *message.Message
}

// Provider returns the external provider identifier.
func (r *Response) Provider() string { return r.provider }

// Status returns the normalized three-way status.
func (r *Response) Status() Status { return r.status }

// ErrorCode returns the internal (mapped) error code. It is [SuccessCode]
// for successful responses.
func (r *Response) ErrorCode() string { return r.errorCode }

// ErrorMessage returns the provider's free-text error message, empty when
// the provider sent none.
func (r *Response) ErrorMessage() string { return r.errorMessage }

// OriginalErrorCode returns the raw status value found in the provider
// response, before any mapping. Empty when the status field was absent.
func (r *Response) OriginalErrorCode() string { return r.originalCode }

// Original returns the untouched provider response message.
func (r *Response) Original() *message.Message { return r.original }

// Success reports whether the normalized status is [Success].
func (r *Response) Success() bool { return r.status == Success }

// Err fails fast on a FAILURE status: it returns a [*gerrors.ProviderError]
// carrying the provider id, the original unmapped code and the error message
// (the caller-supplied override when given, the provider's own message
// otherwise). For any other status Err returns nil.
func (r *Response) Err(overrideMessage ...string) error {
	if r.status != Failure {
		return nil
	}
	msg := r.errorMessage
	if len(overrideMessage) > 0 && overrideMessage[0] != "" {
		msg = overrideMessage[0]
	}
	return gerrors.NewProviderError(r.provider, r.errorCode, r.originalCode, msg)
}

// String renders the wrapper for logging.
func (r *Response) String() string {
	return fmt.Sprintf("NormalizedResponse(provider=%s status=%s code=%s originalCode=%s)",
		r.provider, r.status, r.errorCode, r.originalCode)
}
