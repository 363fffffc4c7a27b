// Package lexer implements the Lox tokenizer.
package lexer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/thomasrohde/lox/pkg/diagnostics"
)

// MsgUnterminatedString is reported for a string literal still open at the
// end of input.
const MsgUnterminatedString = "Unterminated string."

// IsUnterminatedString reports whether d is the error for a string literal
// that reached the end of input. More input may still close it.
func IsUnterminatedString(d diagnostics.Diagnostic) bool {
	return d.Code == diagnostics.ELex && d.Message == MsgUnterminatedString
}

type scanner struct {
	source []rune
	start  int
	pos    int
	line   int
	tokens []Token
	diags  []diagnostics.Diagnostic
}

func newScanner(source string) *scanner {
	return &scanner{
		source: []rune(source),
		line:   1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekNext() rune {
	if s.pos+1 >= len(s.source) {
		return 0
	}
	return s.source[s.pos+1]
}

func (s *scanner) advance() rune {
	ch := s.source[s.pos]
	s.pos++
	return ch
}

// match consumes the next character only when it equals expected.
func (s *scanner) match(expected rune) bool {
	if s.atEnd() || s.source[s.pos] != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) lexeme() string {
	return string(s.source[s.start:s.pos])
}

func (s *scanner) addToken(typ TokenType) {
	s.addLiteralToken(typ, "")
}

func (s *scanner) addLiteralToken(typ TokenType, literal string) {
	s.tokens = append(s.tokens, Token{
		Type:    typ,
		Lexeme:  s.lexeme(),
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) lexError(msg string) {
	s.diags = append(s.diags, diagnostics.MakeDiag(diagnostics.ELex, msg, s.line, ""))
}

func isAlpha(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch rune) bool {
	return isAlpha(ch) || unicode.IsDigit(ch)
}

func (s *scanner) scanToken() {
	ch := s.advance()
	switch ch {
	case '(':
		s.addToken(TokLeftParen)
	case ')':
		s.addToken(TokRightParen)
	case '{':
		s.addToken(TokLeftBrace)
	case '}':
		s.addToken(TokRightBrace)
	case ',':
		s.addToken(TokComma)
	case '.':
		s.addToken(TokDot)
	case '-':
		s.addToken(TokMinus)
	case '+':
		s.addToken(TokPlus)
	case ';':
		s.addToken(TokSemicolon)
	case '*':
		s.addToken(TokStar)
	case '!':
		if s.match('=') {
			s.addToken(TokBangEqual)
		} else {
			s.addToken(TokBang)
		}
	case '=':
		if s.match('=') {
			s.addToken(TokEqualEqual)
		} else {
			s.addToken(TokEqual)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokLessEqual)
		} else {
			s.addToken(TokLess)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokGreaterEqual)
		} else {
			s.addToken(TokGreater)
		}
	case '/':
		if s.match('/') {
			// Line comment runs to the end of the line
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.addToken(TokSlash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		default:
			s.lexError(fmt.Sprintf("Unexpected character: %c", ch))
		}
	}
}

func (s *scanner) scanString() {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.lexError(MsgUnterminatedString)
		return
	}
	s.advance() // closing "

	value := string(s.source[s.start+1 : s.pos-1])
	s.addLiteralToken(TokString, value)
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	// A fractional part needs at least one digit after the dot
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	s.addLiteralToken(TokNumber, NormalizeNumber(s.lexeme()))
}

func (s *scanner) scanIdentOrKeyword() {
	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}
	if typ, ok := keywords[s.lexeme()]; ok {
		s.addToken(typ)
		return
	}
	s.addToken(TokIdentifier)
}

// NormalizeNumber renders numeric literal text in its canonical form, which
// always contains a decimal point: "3" becomes "3.0" and "1.50" becomes "1.5".
func NormalizeNumber(text string) string {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil && !math.IsInf(value, 0) {
		return text
	}
	out := FormatNumber(value)
	if math.IsInf(value, 0) {
		out = text
	}
	if !strings.Contains(out, ".") {
		out += ".0"
	}
	return out
}

// FormatNumber renders a float64 as the shortest decimal text that round-trips,
// without exponent notation and without a trailing ".0".
func FormatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Tokenize breaks source code into a slice of tokens terminated by a single
// EOF token. Scanning never stops early: every lexical error is collected and
// returned alongside the tokens that could be recognized.
func Tokenize(source string) ([]Token, []diagnostics.Diagnostic) {
	s := newScanner(source)
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: TokEOF, Line: s.line})
	return s.tokens, s.diags
}
