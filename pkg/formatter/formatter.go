package formatter

import (
	"strings"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/lexer"
)

const indent = "  "

// Format pretty-prints a program back to source code.
func Format(stmts []ast.Stmt) string {
	lines := make([]string, 0, len(stmts))
	for _, s := range stmts {
		lines = append(lines, formatStmt(s, 0))
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a line comment outside of a
// string literal. Comments are not preserved by Format.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '"':
			inString = !inString
		case !inString && source[i] == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}

func pad(level int) string {
	return strings.Repeat(indent, level)
}

func formatStmt(s ast.Stmt, level int) string {
	p := pad(level)
	switch st := s.(type) {
	case *ast.ExpressionStmt:
		return p + Source(st.Expr) + ";"
	case *ast.PrintStmt:
		return p + "print " + Source(st.Expr) + ";"
	case *ast.VarStmt:
		return p + formatVar(st)
	case *ast.BlockStmt:
		return p + formatBlock(st.Statements, level)
	case *ast.IfStmt:
		out := p + "if (" + Source(st.Cond) + ")" + formatBody(st.Then, level)
		if st.Else == nil {
			return out
		}
		if _, ok := st.Then.(*ast.BlockStmt); ok {
			out += " else"
		} else {
			out += "\n" + p + "else"
		}
		if elif, ok := st.Else.(*ast.IfStmt); ok {
			return out + " " + strings.TrimPrefix(formatStmt(elif, level), p)
		}
		return out + formatBody(st.Else, level)
	case *ast.WhileStmt:
		return p + "while (" + Source(st.Cond) + ")" + formatBody(st.Body, level)
	case *ast.ForStmt:
		init := ";"
		switch in := st.Init.(type) {
		case *ast.VarStmt:
			init = formatVar(in)
		case *ast.ExpressionStmt:
			init = Source(in.Expr) + ";"
		}
		clauses := init + " " + Source(st.Cond) + ";"
		if st.Increment != nil {
			clauses += " " + Source(st.Increment)
		}
		return p + "for (" + clauses + ")" + formatBody(st.Body, level)
	case *ast.FunctionStmt:
		params := make([]string, len(st.Params))
		for i, param := range st.Params {
			params[i] = param.Lexeme
		}
		return p + "fun " + st.Name.Lexeme + "(" + strings.Join(params, ", ") + ") " + formatBlock(st.Body, level)
	case *ast.ReturnStmt:
		if st.Value == nil {
			return p + "return;"
		}
		return p + "return " + Source(st.Value) + ";"
	}
	return p
}

func formatVar(st *ast.VarStmt) string {
	if st.Initializer == nil {
		return "var " + st.Name.Lexeme + ";"
	}
	return "var " + st.Name.Lexeme + " = " + Source(st.Initializer) + ";"
}

// formatBlock renders a brace-delimited block whose closing brace sits at level.
func formatBlock(stmts []ast.Stmt, level int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, s := range stmts {
		b.WriteString(formatStmt(s, level+1))
		b.WriteByte('\n')
	}
	b.WriteString(pad(level) + "}")
	return b.String()
}

// formatBody renders the body of a control statement: blocks stay on the same
// line, single statements go on the next line one level deeper.
func formatBody(s ast.Stmt, level int) string {
	if blk, ok := s.(*ast.BlockStmt); ok {
		return " " + formatBlock(blk.Statements, level)
	}
	return "\n" + formatStmt(s, level+1)
}

// Source renders an expression as Lox source text.
func Source(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return lexer.FormatNumber(n.Value)
	case *ast.StringLiteral:
		return `"` + n.Value + `"`
	case *ast.BoolLiteral:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.NilLiteral:
		return "nil"
	case *ast.Unary:
		return n.Op.Lexeme + Source(n.Operand)
	case *ast.Binary:
		return Source(n.Left) + " " + n.Op.Lexeme + " " + Source(n.Right)
	case *ast.Logical:
		return Source(n.Left) + " " + n.Op.Lexeme + " " + Source(n.Right)
	case *ast.Grouping:
		return "(" + Source(n.Inner) + ")"
	case *ast.Variable:
		return n.Name.Lexeme
	case *ast.Assign:
		return n.Name.Lexeme + " = " + Source(n.Value)
	case *ast.Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = Source(a)
		}
		return Source(n.Callee) + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}
