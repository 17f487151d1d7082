package abi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSymbol is returned when a name does not match any export.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Param is a named parameter of an exported function.
type Param struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Symbol describes one exported function.
type Symbol struct {
	Name   string  `json:"name"`
	Params []Param `json:"params"`
	Result Kind    `json:"result"`
	Doc    string  `json:"doc"`
}

// symbols is the export set in declaration order. It must match cmd/libffimath.
var symbols = []Symbol{
	{Name: "add", Params: []Param{{"a", Int32}, {"b", Int32}}, Result: Int32,
		Doc: "a + b, wrapping on overflow"},
	{Name: "multiply", Params: []Param{{"a", Int32}, {"b", Int32}}, Result: Int32,
		Doc: "a * b, wrapping on overflow"},
	{Name: "factorial", Params: []Param{{"n", Int32}}, Result: Int64,
		Doc: "n!, 1 for n <= 1, wraps for n > 20"},
	{Name: "fibonacci", Params: []Param{{"n", Int32}}, Result: Int64,
		Doc: "nth Fibonacci number, n must be in [0, 92]"},
	{Name: "is_prime", Params: []Param{{"n", Int32}}, Result: Bool,
		Doc: "trial division primality test, false for n < 2"},
	{Name: "gcd", Params: []Param{{"a", Int32}, {"b", Int32}}, Result: Int32,
		Doc: "greatest common divisor, gcd(0, 0) == 0"},
	{Name: "lcm", Params: []Param{{"a", Int32}, {"b", Int32}}, Result: Int32,
		Doc: "least common multiple, 0 if either operand is 0"},
	{Name: "circle_area", Params: []Param{{"radius", Float64}}, Result: Float64,
		Doc: "pi * radius^2, negative radius not rejected"},
	{Name: "sqrt", Params: []Param{{"x", Float64}}, Result: Float64,
		Doc: "square root, NaN for negative x"},
}

// Symbols returns the export set in declaration order.
func Symbols() []Symbol {
	out := make([]Symbol, len(symbols))
	copy(out, symbols)
	return out
}

// Lookup finds a symbol by name. If prefix is non-empty, names carrying it
// (e.g. "rust_add" with prefix "rust_") resolve as well.
func Lookup(name, prefix string) (Symbol, error) {
	bare := name
	if prefix != "" {
		bare = strings.TrimPrefix(name, prefix)
	}
	for _, s := range symbols {
		if s.Name == bare {
			return s, nil
		}
	}
	return Symbol{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, name)
}

// Signature renders the symbol in table form, e.g. "int32 add(int32, int32)".
func (s Symbol) Signature() string {
	kinds := make([]string, len(s.Params))
	for i, p := range s.Params {
		kinds[i] = p.Kind.String()
	}
	return fmt.Sprintf("%s %s(%s)", s.Result, s.Name, strings.Join(kinds, ", "))
}

// CDecl renders a C prototype for the symbol with the given name prefix.
func (s Symbol) CDecl(prefix string) string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Kind.CType() + " " + p.Name
	}
	return fmt.Sprintf("%s %s%s(%s);", s.Result.CType(), prefix, s.Name, strings.Join(params, ", "))
}

// Header renders a C header declaring every export.
func Header(prefix string) string {
	var b strings.Builder
	b.WriteString("#ifndef FFIMATH_H\n#define FFIMATH_H\n\n")
	b.WriteString("#include <stdbool.h>\n#include <stdint.h>\n\n")
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")
	for _, s := range symbols {
		fmt.Fprintf(&b, "/* %s */\n%s\n", s.Doc, s.CDecl(prefix))
	}
	b.WriteString("\n#ifdef __cplusplus\n}\n#endif\n\n#endif /* FFIMATH_H */\n")
	return b.String()
}
