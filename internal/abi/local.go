package abi

import (
	"fmt"

	"github.com/pengelbrecht/ffimath/internal/calculator"
)

// Backend invokes exported functions. Implementations include the in-process
// Local backend and natively loaded libraries.
type Backend interface {
	Call(sym Symbol, args []Value) (Value, error)
}

// Local calls the Go implementation directly.
type Local struct{}

// Call dispatches sym to internal/calculator.
func (Local) Call(sym Symbol, args []Value) (Value, error) {
	if err := CheckArgs(sym, args); err != nil {
		return Value{}, err
	}
	switch sym.Name {
	case "add":
		return Int32Value(calculator.Add(args[0].Int32(), args[1].Int32())), nil
	case "multiply":
		return Int32Value(calculator.Multiply(args[0].Int32(), args[1].Int32())), nil
	case "factorial":
		return Int64Value(calculator.Factorial(args[0].Int32())), nil
	case "fibonacci":
		return Int64Value(calculator.Fibonacci(args[0].Int32())), nil
	case "is_prime":
		return BoolValue(calculator.IsPrime(args[0].Int32())), nil
	case "gcd":
		return Int32Value(calculator.GCD(args[0].Int32(), args[1].Int32())), nil
	case "lcm":
		return Int32Value(calculator.LCM(args[0].Int32(), args[1].Int32())), nil
	case "circle_area":
		return Float64Value(calculator.CircleArea(args[0].Float64())), nil
	case "sqrt":
		return Float64Value(calculator.Sqrt(args[0].Float64())), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, sym.Name)
	}
}

// CheckPreconditions reports documented quirks for the given call, such as
// factorial overflow or a negative Fibonacci index. It returns nil for calls
// with no precondition.
func CheckPreconditions(sym Symbol, args []Value) error {
	if err := CheckArgs(sym, args); err != nil {
		return err
	}
	switch sym.Name {
	case "factorial":
		return calculator.CheckFactorial(args[0].Int32())
	case "fibonacci":
		return calculator.CheckFibonacci(args[0].Int32())
	case "gcd":
		return calculator.CheckGCD(args[0].Int32(), args[1].Int32())
	case "lcm":
		return calculator.CheckLCM(args[0].Int32(), args[1].Int32())
	case "circle_area":
		return calculator.CheckCircleArea(args[0].Float64())
	case "sqrt":
		return calculator.CheckSqrt(args[0].Float64())
	}
	return nil
}

// CheckArgs verifies that args match the arity and parameter kinds of sym.
// Every Backend calls it before dispatching.
func CheckArgs(sym Symbol, args []Value) error {
	if len(args) != len(sym.Params) {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, sym.Name, len(sym.Params), len(args))
	}
	for i, p := range sym.Params {
		if args[i].Kind != p.Kind {
			return fmt.Errorf("%w: %s argument %s is %s, want %s", ErrArgument, sym.Name, p.Name, args[i].Kind, p.Kind)
		}
	}
	return nil
}
