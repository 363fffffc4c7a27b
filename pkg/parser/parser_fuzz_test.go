package parser

import (
	"testing"

	"github.com/thomasrohde/lox/pkg/lexer"
)

// FuzzParse feeds random inputs through the lexer and parser to catch panics.
// Invalid programs must surface as errors, never as a crash.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`print 1 + 2 * 3;`,
		`var a = 1; { var a = 2; print a; } print a;`,
		`fun f(n) { if (n < 2) return n; return f(n - 1) + f(n - 2); } print f(10);`,
		`for (var i = 0; i < 3; i = i + 1) print i;`,
		`for (;;) {}`,
		`while (true) { x = x or y and z; }`,
		`a = b = c;`,
		`(a) = 1;`,
		`f(1)(2)(3);`,
		`return;`,
		`{`,
		`}`,
		`fun`,
		`print`,
		`((((((((`,
		`!-!-1;`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("parser panicked on input %q: %v", input, r)
			}
		}()
		tokens, _ := lexer.Tokenize(input)
		stmts, err := Parse(tokens)
		if err != nil && stmts != nil {
			t.Fatalf("Parse returned both statements and an error for %q", input)
		}
		_, _ = ParseExpression(tokens)
	})
}
