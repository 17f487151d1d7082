package conformance

import (
	"fmt"
	"math"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/calculator"
)

// Property is an algebraic law checked against a backend.
type Property struct {
	Name  string
	Check func(b abi.Backend) error
}

var sampleInts = []int32{0, 1, -1, 2, 7, 12, 18, -30, 1000, math.MaxInt32, math.MinInt32}

// DefaultProperties returns the laws every conforming backend must satisfy.
func DefaultProperties() []Property {
	return []Property{
		{Name: "add identity", Check: addIdentity},
		{Name: "add commutative", Check: commutative("add")},
		{Name: "multiply commutative", Check: commutative("multiply")},
		{Name: "gcd non-negative", Check: gcdNonNegative},
		{Name: "prime squares are composite", Check: primeSquares},
	}
}

func call(b abi.Backend, name string, args ...abi.Value) (abi.Value, error) {
	sym, err := abi.Lookup(name, "")
	if err != nil {
		return abi.Value{}, err
	}
	return b.Call(sym, args)
}

func addIdentity(b abi.Backend) error {
	for _, a := range sampleInts {
		for _, c := range sampleInts {
			sum, err := call(b, "add", abi.Int32Value(a), abi.Int32Value(c))
			if err != nil {
				return err
			}
			again, err := call(b, "add", sum, abi.Int32Value(0))
			if err != nil {
				return err
			}
			if !again.Identical(sum) {
				return fmt.Errorf("add(add(%d, %d), 0) = %v, want %v", a, c, again, sum)
			}
		}
	}
	return nil
}

func commutative(name string) func(abi.Backend) error {
	return func(b abi.Backend) error {
		for _, a := range sampleInts {
			for _, c := range sampleInts {
				x, err := call(b, name, abi.Int32Value(a), abi.Int32Value(c))
				if err != nil {
					return err
				}
				y, err := call(b, name, abi.Int32Value(c), abi.Int32Value(a))
				if err != nil {
					return err
				}
				if !x.Identical(y) {
					return fmt.Errorf("%s(%d, %d) = %v but %s(%d, %d) = %v", name, a, c, x, name, c, a, y)
				}
			}
		}
		return nil
	}
}

func gcdNonNegative(b abi.Backend) error {
	for _, a := range sampleInts {
		for _, c := range sampleInts {
			// Skips results of 2^31 and the MinInt32 % -1 pairs that abort C and Rust builds.
			if calculator.CheckGCD(a, c) != nil {
				continue
			}
			g, err := call(b, "gcd", abi.Int32Value(a), abi.Int32Value(c))
			if err != nil {
				return err
			}
			if g.Int32() < 0 {
				return fmt.Errorf("gcd(%d, %d) = %v, want non-negative", a, c, g)
			}
		}
	}
	return nil
}

func primeSquares(b abi.Backend) error {
	for _, p := range []int32{2, 3, 5, 7, 11, 13, 31, 97, 46337} {
		prime, err := call(b, "is_prime", abi.Int32Value(p))
		if err != nil {
			return err
		}
		if !prime.Bool() {
			return fmt.Errorf("is_prime(%d) = false, want true", p)
		}
		square, err := call(b, "is_prime", abi.Int32Value(p*p))
		if err != nil {
			return err
		}
		if square.Bool() {
			return fmt.Errorf("is_prime(%d) = true for the square of %d", p*p, p)
		}
	}
	return nil
}
