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

// Status is the internal three-way status domain every external provider
// vocabulary is mapped onto.
type Status int

const (
	// Success means the provider reported a successful outcome.
	Success Status = iota
	// Failure means the provider reported an error.
	Failure
	// Unknown means the provider response carried no status at all. Callers
	// must handle this case explicitly; absence is never silently treated
	// as failure.
	Unknown
)

// String returns the text representation of the status.
func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Unknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

const (
	// SuccessCode is the fixed internal code assigned to successful
	// responses.
	SuccessCode = "0000"

	// GenericFailureCode is the internal code the default fallback assigns
	// to provider codes that have no explicit mapping.
	GenericFailureCode = "9000"
)
