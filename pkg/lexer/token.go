package lexer

import "fmt"

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Single-character tokens
	TokLeftParen  TokenType = iota // (
	TokRightParen                  // )
	TokLeftBrace                   // {
	TokRightBrace                  // }
	TokComma                       // ,
	TokDot                         // .
	TokMinus                       // -
	TokPlus                        // +
	TokSemicolon                   // ;
	TokSlash                       // /
	TokStar                        // *

	// One or two character tokens
	TokBang         // !
	TokBangEqual    // !=
	TokEqual        // =
	TokEqualEqual   // ==
	TokGreater      // >
	TokGreaterEqual // >=
	TokLess         // <
	TokLessEqual    // <=

	// Literals
	TokString
	TokNumber
	TokIdentifier

	// Keywords
	TokAnd
	TokClass
	TokElse
	TokFalse
	TokFun
	TokFor
	TokIf
	TokNil
	TokOr
	TokPrint
	TokReturn
	TokSuper
	TokThis
	TokTrue
	TokVar
	TokWhile

	TokEOF
)

var tokenNames = [...]string{
	TokLeftParen:    "LEFT_PAREN",
	TokRightParen:   "RIGHT_PAREN",
	TokLeftBrace:    "LEFT_BRACE",
	TokRightBrace:   "RIGHT_BRACE",
	TokComma:        "COMMA",
	TokDot:          "DOT",
	TokMinus:        "MINUS",
	TokPlus:         "PLUS",
	TokSemicolon:    "SEMICOLON",
	TokSlash:        "SLASH",
	TokStar:         "STAR",
	TokBang:         "BANG",
	TokBangEqual:    "BANG_EQUAL",
	TokEqual:        "EQUAL",
	TokEqualEqual:   "EQUAL_EQUAL",
	TokGreater:      "GREATER",
	TokGreaterEqual: "GREATER_EQUAL",
	TokLess:         "LESS",
	TokLessEqual:    "LESS_EQUAL",
	TokString:       "STRING",
	TokNumber:       "NUMBER",
	TokIdentifier:   "IDENTIFIER",
	TokAnd:          "AND",
	TokClass:        "CLASS",
	TokElse:         "ELSE",
	TokFalse:        "FALSE",
	TokFun:          "FUN",
	TokFor:          "FOR",
	TokIf:           "IF",
	TokNil:          "NIL",
	TokOr:           "OR",
	TokPrint:        "PRINT",
	TokReturn:       "RETURN",
	TokSuper:        "SUPER",
	TokThis:         "THIS",
	TokTrue:         "TRUE",
	TokVar:          "VAR",
	TokWhile:        "WHILE",
	TokEOF:          "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"and":    TokAnd,
	"class":  TokClass,
	"else":   TokElse,
	"false":  TokFalse,
	"for":    TokFor,
	"fun":    TokFun,
	"if":     TokIf,
	"nil":    TokNil,
	"or":     TokOr,
	"print":  TokPrint,
	"return": TokReturn,
	"super":  TokSuper,
	"this":   TokThis,
	"true":   TokTrue,
	"var":    TokVar,
	"while":  TokWhile,
}

// Token represents a single lexer token.
// Literal holds the string contents for TokString and the normalized number
// text for TokNumber; it is empty for every other type.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Line    int
}

// HasLiteral reports whether the token carries a literal payload.
func (t Token) HasLiteral() bool {
	return t.Type == TokString || t.Type == TokNumber
}

// String renders the token as "TYPE lexeme literal", using "null" when the
// token has no literal.
func (t Token) String() string {
	lit := "null"
	if t.HasLiteral() {
		lit = t.Literal
	}
	return fmt.Sprintf("%s %s %s", t.Type, t.Lexeme, lit)
}

// IsKeyword returns true if the token type is a reserved word.
func IsKeyword(t TokenType) bool {
	return t >= TokAnd && t <= TokWhile
}
