package entities

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Amount is an integer read leniently from persisted or hand-written data.
//
// Coercion policy: numbers are truncated toward zero, numeric strings are
// parsed, and anything else (missing, null, booleans, NaN, ±Inf, garbage)
// becomes 0. Decoding an Amount never fails.
type Amount int

// Int returns the amount as a plain int
func (a Amount) Int() int { return int(a) }

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(CoerceInt(raw))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		*a = 0
		return nil
	}
	*a = Amount(CoerceInt(raw))
	return nil
}

// CoerceInt applies the Amount coercion policy to an untyped value
func CoerceInt(v any) int {
	f, ok := coerceFloat(v)
	if !ok {
		return 0
	}
	return int(math.Trunc(f))
}

// AsNumber reports whether v is a real number (not a string, not NaN).
// It is stricter than CoerceInt and is used where a missing value must be an error.
func AsNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case Amount:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceFloat(v any) (float64, bool) {
	if f, ok := AsNumber(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
