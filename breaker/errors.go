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

package breaker

import (
	"errors"
	"fmt"
)

// OpenError is returned when the breaker rejects a call without invoking the
// wrapped operation. It names the breaker and the state observed at
// rejection time.
type OpenError struct {
	// Name is the breaker name.
	Name string
	// State is the breaker state that caused the rejection.
	State State
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q rejected call [state=%s]", e.Name, e.State)
}

// IsOpenError reports whether err is a breaker rejection.
func IsOpenError(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe)
}
