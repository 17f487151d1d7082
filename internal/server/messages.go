package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pengelbrecht/ffimath/internal/abi"
)

// Message types.
const (
	TypeCall    = "call"
	TypeSymbols = "symbols"
	TypeResult  = "result"
	TypeError   = "error"
)

// Request is received from a harness.
type Request struct {
	Type   string            `json:"type"`             // "call" or "symbols"
	ID     string            `json:"id,omitempty"`     // echoed in the response, generated if empty
	Symbol string            `json:"symbol,omitempty"` // export name, prefix optional
	Args   []json.RawMessage `json:"args,omitempty"`   // numbers, booleans or strings
}

// Response is sent back for every request.
type Response struct {
	Type    string       `json:"type"` // "result", "symbols" or "error"
	ID      string       `json:"id"`
	Symbol  string       `json:"symbol,omitempty"`
	Result  *abi.Value   `json:"result,omitempty"`
	Symbols []SymbolInfo `json:"symbols,omitempty"`
	// Warning carries a precondition violation in non-strict mode.
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SymbolInfo describes one export in a symbols response.
type SymbolInfo struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Doc       string `json:"doc"`
}

// argStrings converts JSON arguments to the textual form abi.ParseArgs reads.
// Strings are unquoted so "NaN" can be passed; other values are used verbatim.
func argStrings(raw []json.RawMessage) ([]string, error) {
	out := make([]string, len(raw))
	for i, r := range raw {
		text := strings.TrimSpace(string(r))
		if strings.HasPrefix(text, `"`) {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			text = s
		}
		out[i] = text
	}
	return out, nil
}
