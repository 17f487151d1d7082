// Package native loads a built libffimath (or any library exporting the same
// symbols) at runtime and exposes it as an abi.Backend.
package native

import (
	"errors"
	"fmt"

	"github.com/pengelbrecht/ffimath/internal/abi"
)

// ErrUnsupported is returned by Open on platforms without dlopen.
var ErrUnsupported = errors.New("native loading is not supported on this platform")

// ErrMissingSymbols is wrapped when the library lacks one or more exports.
var ErrMissingSymbols = errors.New("missing symbols")

// funcs holds one typed function pointer per export.
type funcs struct {
	add        func(a, b int32) int32
	multiply   func(a, b int32) int32
	factorial  func(n int32) int64
	fibonacci  func(n int32) int64
	isPrime    func(n int32) bool
	gcd        func(a, b int32) int32
	lcm        func(a, b int32) int32
	circleArea func(radius float64) float64
	sqrt       func(x float64) float64
}

// targets maps each symbol name to the field it binds.
func (f *funcs) targets() map[string]any {
	return map[string]any{
		"add":         &f.add,
		"multiply":    &f.multiply,
		"factorial":   &f.factorial,
		"fibonacci":   &f.fibonacci,
		"is_prime":    &f.isPrime,
		"gcd":         &f.gcd,
		"lcm":         &f.lcm,
		"circle_area": &f.circleArea,
		"sqrt":        &f.sqrt,
	}
}

// Call invokes sym through the loaded function pointers.
func (l *Library) Call(sym abi.Symbol, args []abi.Value) (abi.Value, error) {
	if err := abi.CheckArgs(sym, args); err != nil {
		return abi.Value{}, err
	}
	f := &l.fn
	switch sym.Name {
	case "add":
		return abi.Int32Value(f.add(args[0].Int32(), args[1].Int32())), nil
	case "multiply":
		return abi.Int32Value(f.multiply(args[0].Int32(), args[1].Int32())), nil
	case "factorial":
		return abi.Int64Value(f.factorial(args[0].Int32())), nil
	case "fibonacci":
		return abi.Int64Value(f.fibonacci(args[0].Int32())), nil
	case "is_prime":
		return abi.BoolValue(f.isPrime(args[0].Int32())), nil
	case "gcd":
		return abi.Int32Value(f.gcd(args[0].Int32(), args[1].Int32())), nil
	case "lcm":
		return abi.Int32Value(f.lcm(args[0].Int32(), args[1].Int32())), nil
	case "circle_area":
		return abi.Float64Value(f.circleArea(args[0].Float64())), nil
	case "sqrt":
		return abi.Float64Value(f.sqrt(args[0].Float64())), nil
	default:
		return abi.Value{}, fmt.Errorf("%w: %s", abi.ErrUnknownSymbol, sym.Name)
	}
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}
