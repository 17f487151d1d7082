package abi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrArity is returned when the argument count does not match the symbol.
	ErrArity = errors.New("wrong number of arguments")

	// ErrArgument is returned when an argument cannot be decoded for its kind.
	ErrArgument = errors.New("invalid argument")
)

// ParseArgs decodes textual arguments for sym.
func ParseArgs(sym Symbol, raw []string) ([]Value, error) {
	if len(raw) != len(sym.Params) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, sym.Name, len(sym.Params), len(raw))
	}
	args := make([]Value, len(raw))
	for i, p := range sym.Params {
		v, err := ParseValue(p.Kind, raw[i])
		if err != nil {
			return nil, fmt.Errorf("%s argument %s: %w", sym.Name, p.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

// ParseValue decodes s as a scalar of the given kind. Floats accept "NaN",
// "Inf", "+Inf" and "-Inf".
func ParseValue(kind Kind, s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case Int32:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int32", ErrArgument, s)
		}
		return Int32Value(int32(n)), nil
	case Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int64", ErrArgument, s)
		}
		return Int64Value(n), nil
	case Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !isRangeErr(err) {
			return Value{}, fmt.Errorf("%w: %q is not a float64", ErrArgument, s)
		}
		return Float64Value(f), nil
	case Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a bool", ErrArgument, s)
		}
		return BoolValue(b), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown kind %d", ErrArgument, kind)
	}
}

// ParseFloat overflow still yields a usable ±Inf.
func isRangeErr(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)
}
