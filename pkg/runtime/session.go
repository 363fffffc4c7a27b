package runtime

import (
	"context"
	"strings"

	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/parser"
)

// Session is an interactive evaluation context. Globals defined by one
// input stay visible to the next.
type Session struct {
	rt     *Runtime
	interp *evaluator.Interpreter
}

// NewSession starts a session with a fresh global scope.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, interp: rt.newInterpreter()}
}

// NeedsMore reports whether source is an unfinished program, such as an
// unclosed block or string, that more lines could complete.
func (s *Session) NeedsMore(source string) bool {
	tokens, diags := lexer.Tokenize(source)
	for _, d := range diags {
		if lexer.IsUnterminatedString(d) {
			return true
		}
	}
	if len(diags) > 0 {
		return false
	}
	if _, err := parser.ParseExpression(tokens); err == nil {
		return false
	}
	_, err := parser.Parse(tokens)
	return parser.IsIncomplete(err)
}

// Eval runs one REPL input. A bare expression is evaluated and its text
// returned with echo set; statements are executed for their effects.
func (s *Session) Eval(ctx context.Context, source string) (out string, echo bool, err error) {
	if strings.TrimSpace(source) == "" {
		return "", false, nil
	}
	tokens, err := s.rt.Tokenize(source)
	if err != nil {
		return "", false, err
	}
	if expr, perr := parser.ParseExpression(tokens); perr == nil {
		val, err := s.interp.Evaluate(ctx, expr)
		if err != nil {
			return "", false, err
		}
		return evaluator.Stringify(val), true, nil
	}
	stmts, err := parser.Parse(tokens)
	if err != nil {
		return "", false, parseFailure(err)
	}
	return "", false, s.interp.Execute(ctx, stmts)
}
