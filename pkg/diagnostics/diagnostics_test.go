package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/lox/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EParse, "Expect expression.", 3, "")

	if d.Code != diagnostics.EParse {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EParse)
	}
	if d.Line != 3 {
		t.Errorf("got Line = %d, want 3", d.Line)
	}
}

func TestFormatDiagnosticText(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ERuntime, "Division by zero.", 7, "")

	out := diagnostics.FormatDiagnostic(d, false)
	if out != "[line 7] Error: Division by zero." {
		t.Errorf("unexpected output: %q", out)
	}
	if d.String() != out {
		t.Errorf("String() = %q, want %q", d.String(), out)
	}
}

func TestFormatDiagnosticWithoutLine(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EIO, "cannot read file: x.lox", 0, "check the path")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.HasPrefix(out, "Error: cannot read file") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "hint: check the path") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "Unexpected character: @", 1, "")
	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, `"code":"E_LEX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if !strings.Contains(out, `"line":1`) {
		t.Errorf("expected JSON line in output, got: %s", out)
	}
}

func TestFormatDiagnosticsBatch(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.ELex, "Unexpected character: @", 1, ""),
		diagnostics.MakeDiag(diagnostics.ELex, "Unterminated string.", 2, ""),
	}
	out := diagnostics.FormatDiagnostics(diags, false)
	want := "[line 1] Error: Unexpected character: @\n[line 2] Error: Unterminated string."
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}

	if got := diagnostics.FormatDiagnostics(nil, true); got != "[]" {
		t.Errorf("empty JSON batch = %q, want []", got)
	}
}
