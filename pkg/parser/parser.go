// Package parser implements the Lox recursive-descent parser.
package parser

import (
	"errors"
	"strconv"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/lexer"
)

const maxArgs = 255

// ParseError is the first syntax error found in a token stream.
// AtEOF is set when the parser ran out of input, which means more source
// could still make the program valid.
type ParseError struct {
	Diag  diagnostics.Diagnostic
	AtEOF bool
}

func (e *ParseError) Error() string {
	return e.Diag.String()
}

// IsIncomplete reports whether err is a syntax error caused by input that
// ended too early, such as an unclosed block.
func IsIncomplete(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.AtEOF
}

type parser struct {
	tokens  []lexer.Token
	pos     int
	fnDepth int
}

func newParser(tokens []lexer.Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, lexer.Token{Type: lexer.TokEOF, Line: line})
	}
	return &parser{tokens: tokens}
}

// Parse parses a full program. It stops at the first syntax error.
func Parse(tokens []lexer.Token) ([]ast.Stmt, error) {
	p := newParser(tokens)
	var stmts []ast.Stmt
	for !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseExpression parses a token stream holding exactly one expression.
func ParseExpression(tokens []lexer.Token) (ast.Expr, error) {
	p := newParser(tokens)
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorAt(p.peek(), "Expect end of expression.")
	}
	return expr, nil
}

// ParseSource tokenizes and parses source. Lexical errors are all returned;
// otherwise at most one syntax diagnostic is returned.
func ParseSource(source string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	tokens, diags := lexer.Tokenize(source)
	if len(diags) > 0 {
		return nil, diags
	}
	stmts, err := Parse(tokens)
	if err != nil {
		return nil, []diagnostics.Diagnostic{diagOf(err)}
	}
	return stmts, nil
}

func diagOf(err error) diagnostics.Diagnostic {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Diag
	}
	return diagnostics.MakeDiag(diagnostics.EParse, err.Error(), 0, "")
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() lexer.Token {
	return p.tokens[p.pos-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Type == lexer.TokEOF
}

func (p *parser) check(typ lexer.TokenType) bool {
	return p.peek().Type == typ
}

func (p *parser) advance() lexer.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

// match consumes the current token when it has one of the given types.
func (p *parser) match(types ...lexer.TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(typ lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(typ) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorAt(p.peek(), msg)
}

func (p *parser) errorAt(tok lexer.Token, msg string) error {
	return &ParseError{
		Diag:  diagnostics.MakeDiag(diagnostics.EParse, msg, tok.Line, ""),
		AtEOF: tok.Type == lexer.TokEOF,
	}
}

// --- Statements ---

func (p *parser) declaration() (ast.Stmt, error) {
	switch {
	case p.match(lexer.TokVar):
		return p.varDeclaration()
	case p.match(lexer.TokFun):
		return p.function()
	default:
		return p.statement()
	}
}

func (p *parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.consume(lexer.TokIdentifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(lexer.TokEqual) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: name, Initializer: init}, nil
}

func (p *parser) function() (ast.Stmt, error) {
	name, err := p.consume(lexer.TokIdentifier, "Expect function name.")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after function name."); err != nil {
		return nil, err
	}
	var params []lexer.Token
	if !p.check(lexer.TokRightParen) {
		for {
			if len(params) >= maxArgs {
				return nil, p.errorAt(p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(lexer.TokIdentifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokLeftBrace, "Expect '{' before function body."); err != nil {
		return nil, err
	}

	p.fnDepth++
	body, err := p.block()
	p.fnDepth--
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}, nil
}

func (p *parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(lexer.TokPrint):
		return p.printStatement()
	case p.match(lexer.TokLeftBrace):
		line := p.previous().Line
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Line: line, Statements: stmts}, nil
	case p.match(lexer.TokIf):
		return p.ifStatement()
	case p.match(lexer.TokWhile):
		return p.whileStatement()
	case p.match(lexer.TokFor):
		return p.forStatement()
	case p.match(lexer.TokReturn):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *parser) printStatement() (ast.Stmt, error) {
	line := p.previous().Line
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Line: line, Expr: value}, nil
}

// block parses declarations up to and including the closing brace.
// The opening brace has already been consumed.
func (p *parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(lexer.TokRightBrace) && !p.atEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(lexer.TokRightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) ifStatement() (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Stmt
	if p.match(lexer.TokElse) {
		if elseBranch, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Line: line, Cond: cond, Then: then, Else: elseBranch}, nil
}

func (p *parser) whileStatement() (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Line: line, Cond: cond, Body: body}, nil
}

func (p *parser) forStatement() (ast.Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	switch {
	case p.match(lexer.TokSemicolon):
	case p.match(lexer.TokVar):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr = &ast.BoolLiteral{Line: p.peek().Line, Value: true}
	if !p.check(lexer.TokSemicolon) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(lexer.TokRightParen) {
		if incr, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Line: line, Init: init, Cond: cond, Increment: incr, Body: body}, nil
}

func (p *parser) returnStatement() (ast.Stmt, error) {
	keyword := p.previous()
	if p.fnDepth == 0 {
		return nil, p.errorAt(keyword, "Can't return from top-level code.")
	}
	var value ast.Expr
	if !p.check(lexer.TokSemicolon) {
		var err error
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Expr: expr}, nil
}

// --- Expressions ---

func (p *parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (ast.Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.match(lexer.TokEqual) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}
		return nil, p.errorAt(equals, "Invalid assignment target.")
	}
	return expr, nil
}

func (p *parser) or() (ast.Expr, error) {
	expr, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokOr) {
		op := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *parser) and() (ast.Expr, error) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokAnd) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &ast.Logical{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

// binaryLevel parses a left-associative chain of operands joined by any of ops.
func (p *parser) binaryLevel(next func() (ast.Expr, error), ops ...lexer.TokenType) (ast.Expr, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.Binary{Left: expr, Op: op, Right: right}
	}
	return expr, nil
}

func (p *parser) equality() (ast.Expr, error) {
	return p.binaryLevel(p.comparison, lexer.TokBangEqual, lexer.TokEqualEqual)
}

func (p *parser) comparison() (ast.Expr, error) {
	return p.binaryLevel(p.term,
		lexer.TokGreater, lexer.TokGreaterEqual, lexer.TokLess, lexer.TokLessEqual)
}

func (p *parser) term() (ast.Expr, error) {
	return p.binaryLevel(p.factor, lexer.TokMinus, lexer.TokPlus)
}

func (p *parser) factor() (ast.Expr, error) {
	return p.binaryLevel(p.unary, lexer.TokSlash, lexer.TokStar)
}

func (p *parser) unary() (ast.Expr, error) {
	if p.match(lexer.TokBang, lexer.TokMinus) {
		op := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	}
	return p.call()
}

func (p *parser) call() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokLeftParen) {
		if expr, err = p.finishCall(expr); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	var args []ast.Expr
	if !p.check(lexer.TokRightParen) {
		for {
			if len(args) >= maxArgs {
				return nil, p.errorAt(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	paren, err := p.consume(lexer.TokRightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Line: tok.Line, Value: false}, nil
	case lexer.TokTrue:
		p.advance()
		return &ast.BoolLiteral{Line: tok.Line, Value: true}, nil
	case lexer.TokNil:
		p.advance()
		return &ast.NilLiteral{Line: tok.Line}, nil
	case lexer.TokNumber:
		p.advance()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, p.errorAt(tok, "Expect number.")
		}
		return &ast.NumberLiteral{Line: tok.Line, Value: value}, nil
	case lexer.TokString:
		p.advance()
		return &ast.StringLiteral{Line: tok.Line, Value: tok.Literal}, nil
	case lexer.TokIdentifier:
		p.advance()
		return &ast.Variable{Name: tok}, nil
	case lexer.TokLeftParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokRightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Line: tok.Line, Inner: inner}, nil
	}
	return nil, p.errorAt(tok, "Expect expression.")
}
