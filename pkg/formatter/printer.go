// Package formatter renders Lox syntax trees, either as parenthesized prefix
// expressions or back to formatted source code.
package formatter

import (
	"strings"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/lexer"
)

// Expr renders e in parenthesized prefix form, e.g. "(+ 1.0 (group 2.0))".
// Number literals always carry a decimal point.
func Expr(e ast.Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e ast.Expr) {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		b.WriteString(numberText(n.Value))
	case *ast.StringLiteral:
		b.WriteString(n.Value)
	case *ast.BoolLiteral:
		if n.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case *ast.NilLiteral:
		b.WriteString("nil")
	case *ast.Unary:
		parenthesize(b, n.Op.Lexeme, n.Operand)
	case *ast.Binary:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *ast.Logical:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *ast.Grouping:
		parenthesize(b, "group", n.Inner)
	case *ast.Variable:
		b.WriteString(n.Name.Lexeme)
	case *ast.Assign:
		b.WriteString("(= ")
		b.WriteString(n.Name.Lexeme)
		b.WriteByte(' ')
		writeExpr(b, n.Value)
		b.WriteByte(')')
	case *ast.Call:
		parenthesize(b, "call", append([]ast.Expr{n.Callee}, n.Args...)...)
	}
}

func parenthesize(b *strings.Builder, name string, exprs ...ast.Expr) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteByte(' ')
		writeExpr(b, e)
	}
	b.WriteByte(')')
}

func numberText(v float64) string {
	s := lexer.FormatNumber(v)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}
