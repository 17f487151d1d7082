package calculator

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxFactorialInput is the largest n whose factorial fits in an int64.
	MaxFactorialInput = 20

	// MaxFibonacciInput is the largest n whose Fibonacci number fits in an int64.
	MaxFibonacciInput = 92
)

// ErrPrecondition is the sentinel wrapped by every PreconditionError.
var ErrPrecondition = errors.New("precondition violated")

// PreconditionError describes an input for which a function still returns a
// value, but one the caller should not rely on.
type PreconditionError struct {
	Func   string
	Input  string
	Reason string

	// Traps is set when C and Rust builds of the function abort the process
	// on this input instead of returning a value.
	Traps bool
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s(%s): %s", e.Func, e.Input, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// CheckFactorial reports inputs whose factorial overflows int64.
func CheckFactorial(n int32) error {
	if n > MaxFactorialInput {
		return &PreconditionError{
			Func:   "factorial",
			Input:  fmt.Sprint(n),
			Reason: fmt.Sprintf("result overflows int64 for n > %d", MaxFactorialInput),
		}
	}
	return nil
}

// CheckFibonacci reports negative indexes and indexes whose term overflows int64.
func CheckFibonacci(n int32) error {
	if n < 0 {
		return &PreconditionError{
			Func:   "fibonacci",
			Input:  fmt.Sprint(n),
			Reason: "negative index is undefined",
		}
	}
	if n > MaxFibonacciInput {
		return &PreconditionError{
			Func:   "fibonacci",
			Input:  fmt.Sprint(n),
			Reason: fmt.Sprintf("result overflows int64 for n > %d", MaxFibonacciInput),
		}
	}
	return nil
}

// IsTrap reports whether err is a precondition violation that aborts native
// C or Rust builds. Such inputs must not be forwarded to a loaded library.
func IsTrap(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe) && pe.Traps
}

// CheckGCD reports operand pairs on which Euclid's algorithm divides
// math.MinInt32 by -1, and pairs whose GCD is 2^31.
func CheckGCD(a, b int32) error {
	input := fmt.Sprintf("%d, %d", a, b)
	if (a == math.MinInt32 && b == -1) || (a == -1 && b == math.MinInt32) {
		return &PreconditionError{
			Func:   "gcd",
			Input:  input,
			Reason: "remainder of MinInt32 by -1 overflows",
			Traps:  true,
		}
	}
	if (a == math.MinInt32 && (b == 0 || b == math.MinInt32)) || (a == 0 && b == math.MinInt32) {
		return &PreconditionError{
			Func:   "gcd",
			Input:  input,
			Reason: "result 2^31 does not fit int32",
		}
	}
	return nil
}

// CheckLCM reports operand pairs whose int32 product wraps.
func CheckLCM(a, b int32) error {
	p := int64(a) * int64(b)
	if p > math.MaxInt32 || p <= math.MinInt32 {
		return &PreconditionError{
			Func:   "lcm",
			Input:  fmt.Sprintf("%d, %d", a, b),
			Reason: "intermediate product does not fit int32",
		}
	}
	return nil
}

// CheckCircleArea reports negative radii, which are squared away rather than rejected.
func CheckCircleArea(radius float64) error {
	if radius < 0 {
		return &PreconditionError{
			Func:   "circle_area",
			Input:  fmt.Sprint(radius),
			Reason: "negative radius yields a positive area",
		}
	}
	return nil
}

// CheckSqrt reports negative operands, which yield NaN.
func CheckSqrt(x float64) error {
	if x < 0 {
		return &PreconditionError{
			Func:   "sqrt",
			Input:  fmt.Sprint(x),
			Reason: "negative operand yields NaN",
		}
	}
	return nil
}
