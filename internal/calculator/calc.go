// Package calculator provides the arithmetic behind the exported library.
//
// Every function is pure: no shared state, no allocation, safe for concurrent
// callers. Integer overflow wraps with Go's two's-complement semantics and is
// never reported here; see CheckFactorial and friends for the caller-side
// precondition checks.
package calculator

import "math"

// Add returns the sum of a and b, wrapping on overflow.
func Add(a, b int32) int32 {
	return a + b
}

// Multiply returns a times b, wrapping on overflow.
func Multiply(a, b int32) int32 {
	return a * b
}

// Factorial returns n! for n >= 2 and 1 otherwise.
// Results past MaxFactorialInput wrap.
func Factorial(n int32) int64 {
	if n <= 1 {
		return 1
	}
	result := int64(1)
	for i := int64(2); i <= int64(n); i++ {
		result *= i
	}
	return result
}

// Fibonacci returns the nth Fibonacci number with fib(0) = 0 and fib(1) = 1.
//
// A negative n violates the precondition: the accumulation loop never runs
// and the result is 1. Results past MaxFibonacciInput wrap.
func Fibonacci(n int32) int64 {
	switch n {
	case 0:
		return 0
	case 1:
		return 1
	}
	a, b := int64(0), int64(1)
	for i := int64(2); i <= int64(n); i++ {
		a, b = b, a+b
	}
	return b
}

// IsPrime reports whether n is prime by trial division up to floor(sqrt(n)).
func IsPrime(n int32) bool {
	if n < 2 {
		return false
	}
	// Exclusive bound, so perfect squares still test their root.
	limit := int32(math.Sqrt(float64(n))) + 1
	for i := int32(2); i < limit; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// GCD returns the greatest common divisor of a and b using Euclid's algorithm.
// The result is non-negative except for GCD(math.MinInt32, 0), whose absolute
// value does not fit in an int32. GCD(0, 0) is 0.
func GCD(a, b int32) int32 {
	for b != 0 {
		a, b = b, a%b
	}
	return abs(a)
}

// LCM returns the least common multiple of a and b, or 0 if either is 0.
// The product a*b is computed in int32 and wraps before the division.
func LCM(a, b int32) int32 {
	if a == 0 || b == 0 {
		return 0
	}
	return abs(a*b) / GCD(a, b)
}

// CircleArea returns pi * radius * radius. A negative radius is not rejected.
func CircleArea(radius float64) float64 {
	return math.Pi * radius * radius
}

// Sqrt returns the square root of x, or NaN for negative x.
func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}

func abs(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
