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

import (
	"errors"
	"fmt"
	"math"
)

// ErrFieldNotFound is returned by the typed accessors when the named field
// does not exist in the message.
var ErrFieldNotFound = errors.New("message field not found")

// FieldTypeError is returned by the typed accessors when a field exists but
// holds a value of an incompatible type.
type FieldTypeError struct {
	// Field is the field name.
	Field string
	// Expected names the requested Go type.
	Expected string
	// Actual is the value found in the field.
	Actual any
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q holds %T, not %s", e.Field, e.Actual, e.Expected)
}

// GetString returns the named field as a string.
func (m *Message) GetString(name string) (string, error) {
	v, ok := m.fields[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldTypeError{Field: name, Expected: "string", Actual: v}
	}
	return s, nil
}

// GetInt64 returns the named field as an int64. Integer values of any width
// or sign are accepted; the wire codec is free to pick a narrower
// representation than the producer used.
func (m *Message) GetInt64(name string) (int64, error) {
	v, ok := m.fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, &FieldTypeError{Field: name, Expected: "int64", Actual: v}
		}
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, &FieldTypeError{Field: name, Expected: "int64", Actual: v}
		}
		return int64(n), nil
	default:
		return 0, &FieldTypeError{Field: name, Expected: "int64", Actual: v}
	}
}

// GetFloat64 returns the named field as a float64. Integer values are
// widened.
func (m *Message) GetFloat64(name string) (float64, error) {
	v, ok := m.fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		i, err := m.GetInt64(name)
		if err != nil {
			return 0, &FieldTypeError{Field: name, Expected: "float64", Actual: v}
		}
		return float64(i), nil
	}
}

// GetBool returns the named field as a bool.
func (m *Message) GetBool(name string) (bool, error) {
	v, ok := m.fields[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &FieldTypeError{Field: name, Expected: "bool", Actual: v}
	}
	return b, nil
}

// GetBytes returns the named field as a byte slice.
func (m *Message) GetBytes(name string) ([]byte, error) {
	v, ok := m.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, &FieldTypeError{Field: name, Expected: "[]byte", Actual: v}
	}
	return b, nil
}
