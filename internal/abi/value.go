package abi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is a scalar type that may cross the library boundary.
type Kind int

const (
	// Int32 is int32_t.
	Int32 Kind = iota
	// Int64 is int64_t.
	Int64
	// Float64 is double.
	Float64
	// Bool is C99 bool.
	Bool
)

// String returns the name used in signatures, e.g. "int32".
func (k Kind) String() string {
	switch k {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CType returns the C spelling of the kind as used in the generated header.
func (k Kind) CType() string {
	switch k {
	case Int32:
		return "int32_t"
	case Int64:
		return "int64_t"
	case Float64:
		return "double"
	case Bool:
		return "bool"
	default:
		return "void"
	}
}

// Value is a tagged scalar. Integers of both widths live in I.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	B    bool
}

// Int32Value returns an Int32 value.
func Int32Value(v int32) Value { return Value{Kind: Int32, I: int64(v)} }

// Int64Value returns an Int64 value.
func Int64Value(v int64) Value { return Value{Kind: Int64, I: v} }

// Float64Value returns a Float64 value.
func Float64Value(v float64) Value { return Value{Kind: Float64, F: v} }

// BoolValue returns a Bool value.
func BoolValue(v bool) Value { return Value{Kind: Bool, B: v} }

// Int32 returns the integer payload truncated to 32 bits.
func (v Value) Int32() int32 { return int32(v.I) }

// Int64 returns the integer payload.
func (v Value) Int64() int64 { return v.I }

// Float64 returns the float payload.
func (v Value) Float64() float64 { return v.F }

// Bool returns the bool payload.
func (v Value) Bool() bool { return v.B }

// IsNaN reports whether v is a float holding NaN.
func (v Value) IsNaN() bool {
	return v.Kind == Float64 && math.IsNaN(v.F)
}

// Identical reports whether two values have the same kind and bit pattern.
// Unlike ==, NaN is identical to itself.
func (v Value) Identical(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Float64:
		return math.Float64bits(v.F) == math.Float64bits(o.F)
	case Bool:
		return v.B == o.B
	default:
		return v.I == o.I
	}
}

// String formats v the way ParseValue reads it back.
func (v Value) String() string {
	switch v.Kind {
	case Float64:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.B)
	default:
		return strconv.FormatInt(v.I, 10)
	}
}

// MarshalJSON encodes numbers as JSON numbers. NaN and infinities have no JSON
// number form and are encoded as the strings "NaN", "+Inf" and "-Inf".
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Float64:
		if math.IsNaN(v.F) || math.IsInf(v.F, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.F)
	case Bool:
		return json.Marshal(v.B)
	case Int32, Int64:
		return json.Marshal(v.I)
	default:
		return nil, fmt.Errorf("marshal value: unknown kind %d", v.Kind)
	}
}
