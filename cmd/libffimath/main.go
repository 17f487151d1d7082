//go:build cgo

// Command libffimath is the shared library entry point. Build it with
//
//	go build -buildmode=c-shared -o libffimath.so ./cmd/libffimath
//
// Every export takes and returns plain scalars and never reports errors.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import "github.com/pengelbrecht/ffimath/internal/calculator"

//export add
func add(a, b C.int32_t) C.int32_t {
	return C.int32_t(calculator.Add(int32(a), int32(b)))
}

//export multiply
func multiply(a, b C.int32_t) C.int32_t {
	return C.int32_t(calculator.Multiply(int32(a), int32(b)))
}

//export factorial
func factorial(n C.int32_t) C.int64_t {
	return C.int64_t(calculator.Factorial(int32(n)))
}

//export fibonacci
func fibonacci(n C.int32_t) C.int64_t {
	return C.int64_t(calculator.Fibonacci(int32(n)))
}

//export is_prime
func is_prime(n C.int32_t) C.bool {
	return C.bool(calculator.IsPrime(int32(n)))
}

//export gcd
func gcd(a, b C.int32_t) C.int32_t {
	return C.int32_t(calculator.GCD(int32(a), int32(b)))
}

//export lcm
func lcm(a, b C.int32_t) C.int32_t {
	return C.int32_t(calculator.LCM(int32(a), int32(b)))
}

//export circle_area
func circle_area(radius C.double) C.double {
	return C.double(calculator.CircleArea(float64(radius)))
}

//export sqrt
func sqrt(x C.double) C.double {
	return C.double(calculator.Sqrt(float64(x)))
}

// Aliases so tests, which cannot import "C", can build arguments.
type (
	cInt32  = C.int32_t
	cInt64  = C.int64_t
	cDouble = C.double
	cBool   = C.bool
)

func main() {}
