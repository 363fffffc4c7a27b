// Package validator implements static checks over parsed Lox programs.
package validator

import (
	"fmt"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/lexer"
)

// scope tracks the names declared in one local block. A binding is false
// while its initializer is being checked and true once it is defined.
type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.bindings[name]; ok {
			return true
		}
	}
	return false
}

func (s *scope) hasLocal(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

type validator struct {
	diags   []diagnostics.Diagnostic
	globals map[string]bool
	scope   *scope // nil at top level
}

// Validate checks a program and returns its diagnostics in source order.
// natives names the functions predefined in the global scope.
func Validate(stmts []ast.Stmt, natives []string) []diagnostics.Diagnostic {
	v := &validator{globals: make(map[string]bool)}
	for _, name := range natives {
		v.globals[name] = true
	}
	// Globals resolve at run time, so a function body may use a global
	// declared further down the file.
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarStmt:
			v.globals[s.Name.Lexeme] = true
		case *ast.FunctionStmt:
			v.globals[s.Name.Lexeme] = true
		}
	}

	for _, stmt := range stmts {
		v.validateStmt(stmt)
	}
	return v.diags
}

func (v *validator) addDiag(code, msg string, line int, hint string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, line, hint))
}

func (v *validator) beginScope() {
	v.scope = newScope(v.scope)
}

func (v *validator) endScope() {
	v.scope = v.scope.parent
}

// declare adds name to the innermost local scope in the undefined state.
func (v *validator) declare(name lexer.Token) {
	if v.scope == nil {
		return
	}
	if v.scope.hasLocal(name.Lexeme) {
		v.addDiag(diagnostics.EDupBinding,
			fmt.Sprintf("Already a variable named '%s' in this scope.", name.Lexeme), name.Line, "")
	}
	v.scope.bindings[name.Lexeme] = false
}

func (v *validator) define(name lexer.Token) {
	if v.scope == nil {
		return
	}
	v.scope.bindings[name.Lexeme] = true
}

func (v *validator) validateBlock(stmts []ast.Stmt) {
	v.beginScope()
	defer v.endScope()
	for _, stmt := range stmts {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		v.validateExpr(s.Expr)
	case *ast.PrintStmt:
		v.validateExpr(s.Expr)
	case *ast.VarStmt:
		v.declare(s.Name)
		if s.Initializer != nil {
			v.validateExpr(s.Initializer)
		}
		v.define(s.Name)
	case *ast.BlockStmt:
		v.validateBlock(s.Statements)
	case *ast.IfStmt:
		v.validateExpr(s.Cond)
		v.validateStmt(s.Then)
		if s.Else != nil {
			v.validateStmt(s.Else)
		}
	case *ast.WhileStmt:
		v.validateExpr(s.Cond)
		v.validateStmt(s.Body)
	case *ast.ForStmt:
		v.beginScope()
		if s.Init != nil {
			v.validateStmt(s.Init)
		}
		v.validateExpr(s.Cond)
		if s.Increment != nil {
			v.validateExpr(s.Increment)
		}
		v.validateStmt(s.Body)
		v.endScope()
	case *ast.FunctionStmt:
		v.declare(s.Name)
		v.define(s.Name)
		v.validateFunction(s)
	case *ast.ReturnStmt:
		if s.Value != nil {
			v.validateExpr(s.Value)
		}
	}
}

// validateFunction checks parameters and body in one shared scope, so a
// local redeclaring a parameter is a duplicate binding.
func (v *validator) validateFunction(fn *ast.FunctionStmt) {
	v.beginScope()
	defer v.endScope()
	seen := make(map[string]bool, len(fn.Params))
	for _, param := range fn.Params {
		if seen[param.Lexeme] {
			v.addDiag(diagnostics.EDupParam,
				fmt.Sprintf("Duplicate parameter '%s' in function '%s'.", param.Lexeme, fn.Name.Lexeme), param.Line, "")
			continue
		}
		seen[param.Lexeme] = true
		v.scope.bindings[param.Lexeme] = true
	}
	for _, stmt := range fn.Body {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Variable:
		v.checkName(e.Name, true)
	case *ast.Assign:
		v.validateExpr(e.Value)
		v.checkName(e.Name, false)
	case *ast.Unary:
		v.validateExpr(e.Operand)
	case *ast.Binary:
		v.validateExpr(e.Left)
		v.validateExpr(e.Right)
	case *ast.Logical:
		v.validateExpr(e.Left)
		v.validateExpr(e.Right)
	case *ast.Grouping:
		v.validateExpr(e.Inner)
	case *ast.Call:
		v.validateExpr(e.Callee)
		for _, arg := range e.Args {
			v.validateExpr(arg)
		}
	}
}

func (v *validator) checkName(name lexer.Token, read bool) {
	if read && v.scope != nil {
		if defined, ok := v.scope.bindings[name.Lexeme]; ok && !defined {
			v.addDiag(diagnostics.ESelfInit,
				fmt.Sprintf("Can't read local variable '%s' in its own initializer.", name.Lexeme), name.Line, "")
			return
		}
	}
	if v.scope.has(name.Lexeme) || v.globals[name.Lexeme] {
		return
	}
	v.addDiag(diagnostics.EUnbound,
		fmt.Sprintf("Undefined variable '%s'.", name.Lexeme), name.Line,
		"declare it with 'var' before use")
}
