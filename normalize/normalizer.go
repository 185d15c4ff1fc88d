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

// Package normalize maps heterogeneous external provider response
// vocabularies onto one internal three-way status domain without losing the
// original information.
package normalize

import (
	"fmt"
	"maps"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/finmesh/internal/validation"
	"github.com/tochemey/finmesh/message"
)

// FallbackFunc decides the internal error code for a provider status code
// that is neither in the success set nor in the error-code mapping. It is a
// per-provider policy: the default maps every unmapped code onto
// [GenericFailureCode], while a pass-through provider echoes the raw code.
type FallbackFunc func(rawCode string) string

// DefaultFallback maps any unmapped provider code onto [GenericFailureCode].
func DefaultFallback(string) string { return GenericFailureCode }

// EchoFallback returns the raw provider code unchanged. It is the policy of
// providers whose vocabulary already equals the internal one.
func EchoFallback(rawCode string) string { return rawCode }

// Normalizer translates one external provider's response vocabulary into the
// internal status domain. Normalizers are immutable after construction and
// safe for concurrent use.
type Normalizer struct {
	provider     string
	statusField  string
	messageField string
	successCodes mapset.Set[string]
	codeMapping  map[string]string
	fallback     FallbackFunc
}

// Option configures a Normalizer at construction time.
type Option func(*Normalizer)

// WithStatusField sets the name of the field holding the provider's status
// code. The default is "status".
func WithStatusField(name string) Option {
	return func(n *Normalizer) { n.statusField = name }
}

// WithMessageField sets the name of the field holding the provider's
// free-text error message. The default is "errorMessage".
func WithMessageField(name string) Option {
	return func(n *Normalizer) { n.messageField = name }
}

// WithSuccessCodes sets the status-code values that mean success. Providers
// with multiple success variants list them all.
func WithSuccessCodes(codes ...string) Option {
	return func(n *Normalizer) { n.successCodes = mapset.NewSet(codes...) }
}

// WithCodeMapping sets the mapping from provider-specific non-success codes
// to internal standardized codes. Distinct provider errors may collapse onto
// one internal code. The given map is copied.
func WithCodeMapping(mapping map[string]string) Option {
	return func(n *Normalizer) { n.codeMapping = maps.Clone(mapping) }
}

// WithFallback overrides the unmapped-code policy.
func WithFallback(fn FallbackFunc) Option {
	return func(n *Normalizer) { n.fallback = fn }
}

// NewNormalizer creates a Normalizer for the given provider. Mis-registration
// is a defect, not a runtime condition: an empty provider id or status field
// fails here, never during normalization.
func NewNormalizer(provider string, opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		provider:     provider,
		statusField:  "status",
		messageField: "errorMessage",
		successCodes: mapset.NewSet[string](),
		codeMapping:  make(map[string]string),
		fallback:     DefaultFallback,
	}
	for _, opt := range opts {
		opt(n)
	}

	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("provider", n.provider)).
		AddValidator(validation.NewEmptyStringValidator("statusField", n.statusField)).
		AddValidator(validation.NewEmptyStringValidator("messageField", n.messageField)).
		AddAssertion(n.fallback != nil, "fallback function is required").
		Validate(); err != nil {
		return nil, fmt.Errorf("normalize: invalid normalizer for provider %q: %w", provider, err)
	}
	return n, nil
}

// NewPassthrough creates the Normalizer of a provider whose vocabulary
// already equals the internal one: [SuccessCode] means success and every
// other code is carried through unmapped.
func NewPassthrough(provider string, opts ...Option) (*Normalizer, error) {
	base := []Option{
		WithSuccessCodes(SuccessCode),
		WithFallback(EchoFallback),
	}
	return NewNormalizer(provider, append(base, opts...)...)
}

// Provider returns the provider identifier this normalizer serves.
func (n *Normalizer) Provider() string { return n.provider }

// Normalize maps a raw provider response onto the internal status domain.
//
// The status field is read by its configured name. A value in the success
// set yields SUCCESS with the fixed success sentinel; a mapped value yields
// FAILURE with the mapped internal code; an unmapped value yields FAILURE
// with the fallback policy's code; an absent or nil status field yields
// UNKNOWN. The original raw value and message always survive in the wrapper.
func (n *Normalizer) Normalize(msg *message.Message) *Response {
	resp := &Response{
		provider: n.provider,
		original: msg,
	}

	value, ok := msg.Get(n.statusField)
	if !ok || value == nil {
		resp.status = Unknown
		return resp
	}

	rawCode := stringify(value)
	resp.originalCode = rawCode
	resp.errorMessage = messageField(msg, n.messageField)

	switch {
	case n.successCodes.Contains(rawCode):
		resp.status = Success
		resp.errorCode = SuccessCode
	default:
		resp.status = Failure
		if mapped, found := n.codeMapping[rawCode]; found {
			resp.errorCode = mapped
		} else {
			resp.errorCode = n.fallback(rawCode)
		}
	}
	return resp
}

// messageField reads the provider error message, tolerating absence.
func messageField(msg *message.Message, name string) string {
	if value, ok := msg.Get(name); ok && value != nil {
		return stringify(value)
	}
	return ""
}

// stringify renders a dynamically typed status value as its wire text.
// Providers disagree on whether codes travel as strings or numbers.
func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
