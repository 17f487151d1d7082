package calculator

import (
	"math"
	"sync"
	"testing"
)

func TestAdd(t *testing.T) {
	cases := []struct {
		name     string
		a, b     int32
		expected int32
	}{
		{"positive numbers", 2, 3, 5},
		{"zeros", 0, 0, 0},
		{"negative and positive", -1, 1, 0},
		{"wraps on overflow", math.MaxInt32, 1, math.MinInt32},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Add(tc.a, tc.b)
			if result != tc.expected {
				t.Errorf("Add(%d, %d) = %d, want %d", tc.a, tc.b, result, tc.expected)
			}
		})
	}
}

func TestAddIdentityAndCommutativity(t *testing.T) {
	values := []int32{0, 1, -1, 42, -1000, math.MaxInt32, math.MinInt32}
	for _, a := range values {
		for _, b := range values {
			if Add(Add(a, b), 0) != Add(a, b) {
				t.Errorf("Add(Add(%d, %d), 0) != Add(%d, %d)", a, b, a, b)
			}
			if Add(a, b) != Add(b, a) {
				t.Errorf("Add(%d, %d) != Add(%d, %d)", a, b, b, a)
			}
		}
	}
}

func TestMultiply(t *testing.T) {
	cases := []struct {
		name     string
		a, b     int32
		expected int32
	}{
		{"positive numbers", 2, 3, 6},
		{"multiply by zero", 0, 5, 0},
		{"negative and positive", -2, 3, -6},
		{"wraps on overflow", 65536, 65536, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Multiply(tc.a, tc.b)
			if result != tc.expected {
				t.Errorf("Multiply(%d, %d) = %d, want %d", tc.a, tc.b, result, tc.expected)
			}
		})
	}
}

func TestFactorial(t *testing.T) {
	cases := []struct {
		n    int32
		want int64
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{5, 120},
		{10, 3628800},
		{20, 2432902008176640000},
	}

	for _, tc := range cases {
		if got := Factorial(tc.n); got != tc.want {
			t.Errorf("Factorial(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestFibonacci(t *testing.T) {
	cases := []struct {
		n    int32
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{10, 55},
		{20, 6765},
		{92, 7540113804746346429},
		// Precondition violation: the loop never runs.
		{-5, 1},
	}

	for _, tc := range cases {
		if got := Fibonacci(tc.n); got != tc.want {
			t.Errorf("Fibonacci(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestIsPrime(t *testing.T) {
	cases := []struct {
		n    int32
		want bool
	}{
		{-7, false},
		{0, false},
		{1, false},
		{2, true},
		{3, true},
		{4, false},
		{9, false},
		{25, false},
		{49, false},
		{97, true},
		{100, false},
		{121, false},
		{7919, true},
		{math.MaxInt32, true},
	}

	for _, tc := range cases {
		if got := IsPrime(tc.n); got != tc.want {
			t.Errorf("IsPrime(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestIsPrimePerfectSquares(t *testing.T) {
	for _, p := range []int32{2, 3, 5, 7, 11, 13, 101, 46337} {
		if IsPrime(p * p) {
			t.Errorf("IsPrime(%d) = true for the square of %d", p*p, p)
		}
	}
}

func TestGCD(t *testing.T) {
	cases := []struct {
		a, b int32
		want int32
	}{
		{12, 18, 6},
		{18, 12, 6},
		{0, 5, 5},
		{5, 0, 5},
		{0, 0, 0},
		{-12, 18, 6},
		{12, -18, 6},
		{-12, -18, 6},
		{17, 13, 1},
	}

	for _, tc := range cases {
		if got := GCD(tc.a, tc.b); got != tc.want {
			t.Errorf("GCD(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestLCM(t *testing.T) {
	cases := []struct {
		a, b int32
		want int32
	}{
		{4, 6, 12},
		{0, 5, 0},
		{5, 0, 0},
		{-4, 6, 12},
		{21, 6, 42},
		{7, 7, 7},
	}

	for _, tc := range cases {
		if got := LCM(tc.a, tc.b); got != tc.want {
			t.Errorf("LCM(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCircleArea(t *testing.T) {
	if got := CircleArea(1.0); math.Abs(got-3.14159265) > 1e-6 {
		t.Errorf("CircleArea(1.0) = %v, want ~3.14159265", got)
	}
	if got := CircleArea(0.0); got != 0.0 {
		t.Errorf("CircleArea(0.0) = %v, want 0", got)
	}
	if got, want := CircleArea(-2.0), CircleArea(2.0); got != want {
		t.Errorf("CircleArea(-2.0) = %v, want %v", got, want)
	}
}

func TestSqrt(t *testing.T) {
	if got := Sqrt(4.0); got != 2.0 {
		t.Errorf("Sqrt(4.0) = %v, want 2", got)
	}
	if got := Sqrt(-1.0); !math.IsNaN(got) {
		t.Errorf("Sqrt(-1.0) = %v, want NaN", got)
	}
}

func TestConcurrentCallsAreIdentical(t *testing.T) {
	const callers = 16

	type snapshot struct {
		fact  int64
		fib   int64
		prime bool
		gcd   int32
		lcm   int32
		area  float64
	}
	take := func() snapshot {
		return snapshot{
			fact:  Factorial(15),
			fib:   Fibonacci(50),
			prime: IsPrime(7919),
			gcd:   GCD(1071, 462),
			lcm:   LCM(21, 6),
			area:  CircleArea(2.5),
		}
	}

	want := take()
	results := make([]snapshot, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = take()
		}()
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("caller %d got %+v, want %+v", i, got, want)
		}
	}
}
