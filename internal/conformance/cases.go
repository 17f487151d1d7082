// Package conformance checks a Backend against the documented behaviour of
// the exported functions: fixed input/output cases, algebraic properties, and
// a purity check that repeats every call under concurrent callers.
package conformance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pengelbrecht/ffimath/internal/abi"
)

// ErrInvalidCase is wrapped by validation failures.
var ErrInvalidCase = errors.New("invalid case")

// Case is one expected call result. Want is parsed with the symbol's result
// kind; "NaN" matches any NaN.
type Case struct {
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Args      []string `json:"args"`
	Want      string   `json:"want"`
	Tolerance *float64 `json:"tolerance,omitempty"`
}

// compiled is a Case with its symbol resolved and values decoded.
type compiled struct {
	Case
	sym  abi.Symbol
	args []abi.Value
	want abi.Value
}

func compile(c Case) (compiled, error) {
	sym, err := abi.Lookup(c.Symbol, "")
	if err != nil {
		return compiled{}, fmt.Errorf("%w %q: %w", ErrInvalidCase, c.Name, err)
	}
	args, err := abi.ParseArgs(sym, c.Args)
	if err != nil {
		return compiled{}, fmt.Errorf("%w %q: %w", ErrInvalidCase, c.Name, err)
	}
	want, err := abi.ParseValue(sym.Result, c.Want)
	if err != nil {
		return compiled{}, fmt.Errorf("%w %q: want: %w", ErrInvalidCase, c.Name, err)
	}
	if c.Tolerance != nil && (*c.Tolerance < 0 || math.IsNaN(*c.Tolerance)) {
		return compiled{}, fmt.Errorf("%w %q: tolerance must be non-negative", ErrInvalidCase, c.Name)
	}
	return compiled{Case: c, sym: sym, args: args, want: want}, nil
}

// Validate checks that every case names a known symbol with decodable values.
func Validate(cases []Case) error {
	for _, c := range cases {
		if _, err := compile(c); err != nil {
			return err
		}
	}
	return nil
}

// LoadCases reads a JSON array of cases from path and validates it.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse cases: %w", err)
	}
	for i := range cases {
		if cases[i].Name == "" {
			cases[i].Name = fmt.Sprintf("%s#%d", cases[i].Symbol, i)
		}
	}
	if err := Validate(cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func tol(v float64) *float64 { return &v }

// DefaultCases returns the documented input/output pairs for every export.
func DefaultCases() []Case {
	return []Case{
		{Name: "add positive", Symbol: "add", Args: []string{"2", "3"}, Want: "5"},
		{Name: "add negative", Symbol: "add", Args: []string{"-7", "3"}, Want: "-4"},
		{Name: "add wraps", Symbol: "add", Args: []string{"2147483647", "1"}, Want: "-2147483648"},
		{Name: "multiply", Symbol: "multiply", Args: []string{"6", "7"}, Want: "42"},
		{Name: "multiply by zero", Symbol: "multiply", Args: []string{"0", "5"}, Want: "0"},
		{Name: "multiply wraps", Symbol: "multiply", Args: []string{"65536", "65536"}, Want: "0"},
		{Name: "factorial 0", Symbol: "factorial", Args: []string{"0"}, Want: "1"},
		{Name: "factorial 1", Symbol: "factorial", Args: []string{"1"}, Want: "1"},
		{Name: "factorial 5", Symbol: "factorial", Args: []string{"5"}, Want: "120"},
		{Name: "factorial 10", Symbol: "factorial", Args: []string{"10"}, Want: "3628800"},
		{Name: "factorial 20", Symbol: "factorial", Args: []string{"20"}, Want: "2432902008176640000"},
		{Name: "fibonacci 0", Symbol: "fibonacci", Args: []string{"0"}, Want: "0"},
		{Name: "fibonacci 1", Symbol: "fibonacci", Args: []string{"1"}, Want: "1"},
		{Name: "fibonacci 10", Symbol: "fibonacci", Args: []string{"10"}, Want: "55"},
		{Name: "fibonacci 20", Symbol: "fibonacci", Args: []string{"20"}, Want: "6765"},
		{Name: "fibonacci 92", Symbol: "fibonacci", Args: []string{"92"}, Want: "7540113804746346429"},
		{Name: "is_prime 2", Symbol: "is_prime", Args: []string{"2"}, Want: "true"},
		{Name: "is_prime 1", Symbol: "is_prime", Args: []string{"1"}, Want: "false"},
		{Name: "is_prime 9", Symbol: "is_prime", Args: []string{"9"}, Want: "false"},
		{Name: "is_prime 97", Symbol: "is_prime", Args: []string{"97"}, Want: "true"},
		{Name: "is_prime 100", Symbol: "is_prime", Args: []string{"100"}, Want: "false"},
		{Name: "is_prime negative", Symbol: "is_prime", Args: []string{"-13"}, Want: "false"},
		{Name: "gcd 12 18", Symbol: "gcd", Args: []string{"12", "18"}, Want: "6"},
		{Name: "gcd 0 5", Symbol: "gcd", Args: []string{"0", "5"}, Want: "5"},
		{Name: "gcd -12 18", Symbol: "gcd", Args: []string{"-12", "18"}, Want: "6"},
		{Name: "gcd 0 0", Symbol: "gcd", Args: []string{"0", "0"}, Want: "0"},
		{Name: "lcm 4 6", Symbol: "lcm", Args: []string{"4", "6"}, Want: "12"},
		{Name: "lcm 0 5", Symbol: "lcm", Args: []string{"0", "5"}, Want: "0"},
		{Name: "circle_area 1", Symbol: "circle_area", Args: []string{"1.0"}, Want: "3.14159265", Tolerance: tol(1e-6)},
		{Name: "circle_area 0", Symbol: "circle_area", Args: []string{"0.0"}, Want: "0", Tolerance: tol(0)},
		{Name: "circle_area negative", Symbol: "circle_area", Args: []string{"-1.0"}, Want: "3.14159265", Tolerance: tol(1e-6)},
		{Name: "sqrt 4", Symbol: "sqrt", Args: []string{"4.0"}, Want: "2", Tolerance: tol(0)},
		{Name: "sqrt -1", Symbol: "sqrt", Args: []string{"-1.0"}, Want: "NaN"},
	}
}
