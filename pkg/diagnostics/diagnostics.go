// Package diagnostics defines the line-tagged error records reported by every
// phase of the interpreter.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	ELex        = "E_LEX"
	EParse      = "E_PARSE"
	ERuntime    = "E_RUNTIME"
	EBudget     = "E_BUDGET"
	ECancelled  = "E_CANCELLED"
	EDupBinding = "E_DUP_BINDING"
	EDupParam   = "E_DUP_PARAM"
	ESelfInit   = "E_SELF_INIT"
	EUnbound    = "E_UNBOUND"
	EIO         = "E_IO"
	EInternal   = "E_INTERNAL"
)

// Diagnostic represents a lexical, syntax, lint or runtime error.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line int, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Hint:    hint,
	}
}

func (d Diagnostic) String() string {
	return FormatDiagnostic(d, false)
}

// FormatDiagnostic formats a single diagnostic, either as "[line N] Error: msg"
// or as a JSON object.
func FormatDiagnostic(d Diagnostic, asJSON bool) string {
	if asJSON {
		b, _ := json.Marshal(d)
		return string(b)
	}
	var out string
	if d.Line > 0 {
		out = fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	} else {
		out = fmt.Sprintf("Error: %s", d.Message)
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics, one per line in text mode
// or as a single JSON array.
func FormatDiagnostics(diags []Diagnostic, asJSON bool) string {
	if asJSON {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, false)
	}
	return strings.Join(parts, "\n")
}
