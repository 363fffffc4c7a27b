package ast_test

import (
	"testing"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/lexer"
)

func TestNodeKinds(t *testing.T) {
	name := lexer.Token{Type: lexer.TokIdentifier, Lexeme: "x", Line: 4}
	nodes := []ast.Node{
		&ast.NumberLiteral{Value: 42},
		&ast.StringLiteral{Value: "hello"},
		&ast.BoolLiteral{Value: true},
		&ast.NilLiteral{},
		&ast.Variable{Name: name},
		&ast.Assign{Name: name},
		&ast.BlockStmt{},
		&ast.ForStmt{},
	}

	expected := []string{
		"NumberLiteral", "StringLiteral", "BoolLiteral", "NilLiteral",
		"Variable", "Assign", "BlockStmt", "ForStmt",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestNodeLineComesFromTokens(t *testing.T) {
	op := lexer.Token{Type: lexer.TokPlus, Lexeme: "+", Line: 9}
	bin := &ast.Binary{Left: &ast.NumberLiteral{Line: 8, Value: 1}, Op: op, Right: &ast.NumberLiteral{Line: 9, Value: 2}}
	if bin.NodeLine() != 9 {
		t.Errorf("Binary line = %d, want operator line 9", bin.NodeLine())
	}

	stmt := &ast.ExpressionStmt{Expr: bin}
	if stmt.NodeLine() != 9 {
		t.Errorf("ExpressionStmt line = %d, want 9", stmt.NodeLine())
	}
}
