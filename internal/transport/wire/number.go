// Package wire holds the lenient JSON shapes shared by the HTTP API and the bulk loader.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/comparables/internal/domain"
)

// MaxInt bounds integer fields. Every backend stores them as 32-bit integers.
const MaxInt = math.MaxInt32

// Number accepts a JSON number or a numeric string. Null, empty strings and
// unparseable values decode as absent.
type Number struct {
	value float64
	set   bool
}

// NewNumber returns a present number.
func NewNumber(v float64) Number { return Number{value: v, set: true} }

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil //nolint:nilerr // malformed strings are absent values
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil //nolint:nilerr // non-numeric input is an absent value
	}
	n.value, n.set = v, true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// FloatPtr returns the value or nil when absent.
func (n Number) FloatPtr() *float64 {
	if !n.set {
		return nil
	}
	v := n.value
	return &v
}

// IntPtr truncates toward zero, so "3.9" and 3.9 both become 3.
// Values outside ±MaxInt fail with domain.ErrInvalidInput.
func (n Number) IntPtr() (*int, error) {
	if !n.set {
		return nil, nil
	}
	t := math.Trunc(n.value)
	if t > MaxInt || t < -MaxInt {
		return nil, fmt.Errorf("%v is out of range: %w", n.value, domain.ErrInvalidInput)
	}
	v := int(t)
	return &v, nil
}

// Text accepts a JSON string or number. Numeric ids arrive from spreadsheet
// exports as plain numbers.
type Text struct {
	value string
	set   bool
}

// NewText returns a present text.
func NewText(s string) Text { return Text{value: s, set: true} }

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil //nolint:nilerr // malformed strings are absent values
		}
		t.value, t.set = s, true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil //nolint:nilerr // objects, arrays and booleans are absent values
	}
	t.value, t.set = n.String(), true
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

// Ptr returns the value or nil when absent.
func (t Text) Ptr() *string {
	if !t.set {
		return nil
	}
	v := t.value
	return &v
}
