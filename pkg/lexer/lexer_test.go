package lexer

import (
	"strings"
	"testing"
)

// helper to tokenize and fail on lexical errors
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, diags := Tokenize(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected lex errors: %v", diags)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if got := tokens[0].String(); got != "EOF  null" {
		t.Errorf("EOF renders as %q", got)
	}
}

func TestPunctuationAndOperators(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "(){},.-+;*/ ! != = == < <= > >=")
	want := []TokenType{
		TokLeftParen, TokRightParen, TokLeftBrace, TokRightBrace, TokComma, TokDot,
		TokMinus, TokPlus, TokSemicolon, TokStar, TokSlash,
		TokBang, TokBangEqual, TokEqual, TokEqualEqual,
		TokLess, TokLessEqual, TokGreater, TokGreaterEqual,
	}
	got := types(tokens)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestKeywords(t *testing.T) {
	for word, typ := range keywords {
		t.Run(word, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, word)
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Type != typ {
				t.Errorf("got %s, want %s", tokens[0].Type, typ)
			}
			if !IsKeyword(tokens[0].Type) {
				t.Errorf("%s should be a keyword", tokens[0].Type)
			}
		})
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"or", TokOr},
		{"orchid", TokIdentifier},
		{"var", TokVar},
		{"variable", TokIdentifier},
		{"fun", TokFun},
		{"function", TokIdentifier},
		{"_private", TokIdentifier},
		{"snake_case2", TokIdentifier},
		{"número", TokIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.input)
			if len(tokens) != 1 || tokens[0].Type != tt.expected {
				t.Fatalf("got %v, want single %s", types(tokens), tt.expected)
			}
			if tokens[0].Lexeme != tt.input {
				t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, tt.input)
			}
		})
	}
}

func TestNumberLiteralNormalization(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"3", "3.0"},
		{"0", "0.0"},
		{"42", "42.0"},
		{"3.14", "3.14"},
		{"1.50", "1.5"},
		{"007", "7.0"},
		{"123456789012", "123456789012.0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.input)
			if len(tokens) != 1 || tokens[0].Type != TokNumber {
				t.Fatalf("expected one NUMBER, got %v", types(tokens))
			}
			if tokens[0].Literal != tt.literal {
				t.Errorf("literal = %q, want %q", tokens[0].Literal, tt.literal)
			}
			if !strings.Contains(tokens[0].Literal, ".") {
				t.Errorf("literal %q has no decimal point", tokens[0].Literal)
			}
			if tokens[0].Lexeme != tt.input {
				t.Errorf("lexeme = %q, want %q", tokens[0].Lexeme, tt.input)
			}
		})
	}
}

func TestTrailingDotIsSeparateToken(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "12.")
	got := types(tokens)
	if len(got) != 2 || got[0] != TokNumber || got[1] != TokDot {
		t.Fatalf("got %v, want [NUMBER DOT]", got)
	}
	if tokens[0].Literal != "12.0" {
		t.Errorf("literal = %q", tokens[0].Literal)
	}
}

func TestStringLiteral(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, `"hello world"`)
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	tok := tokens[0]
	if tok.Type != TokString || tok.Literal != "hello world" || tok.Lexeme != `"hello world"` {
		t.Errorf("unexpected token %+v", tok)
	}
	if got := tok.String(); got != `STRING "hello world" hello world` {
		t.Errorf("String() = %q", got)
	}
}

func TestMultiLineStringCountsLines(t *testing.T) {
	tokens := mustTokenize(t, "\"a\nb\nc\" x")
	if tokens[0].Type != TokString || tokens[0].Literal != "a\nb\nc" {
		t.Fatalf("unexpected first token %+v", tokens[0])
	}
	if tokens[0].Line != 3 {
		t.Errorf("string token line = %d, want 3", tokens[0].Line)
	}
	if tokens[1].Line != 3 {
		t.Errorf("identifier line = %d, want 3", tokens[1].Line)
	}
}

func TestIsUnterminatedStringOnlyMatchesStrings(t *testing.T) {
	_, diags := Tokenize("@")
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 error, got %d", len(diags))
	}
	if IsUnterminatedString(diags[0]) {
		t.Errorf("%q is not an unterminated string", diags[0].Message)
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens, diags := Tokenize(`"abc`)
	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 error, got %d", len(diags))
	}
	if diags[0].Message != "Unterminated string." {
		t.Errorf("message = %q", diags[0].Message)
	}
	if !IsUnterminatedString(diags[0]) {
		t.Error("IsUnterminatedString should match the unterminated string error")
	}
	for _, tok := range tokens {
		if tok.Type == TokString {
			t.Fatal("unterminated string must not produce a STRING token")
		}
	}
	if len(tokens) != 1 || tokens[0].Type != TokEOF {
		t.Errorf("expected only EOF, got %v", types(tokens))
	}
}

func TestUnexpectedCharacterContinues(t *testing.T) {
	tokens, diags := Tokenize("@")
	if len(diags) != 1 {
		t.Fatalf("expected 1 error, got %d", len(diags))
	}
	if diags[0].Message != "Unexpected character: @" || diags[0].Line != 1 {
		t.Errorf("unexpected diagnostic %+v", diags[0])
	}
	if len(tokens) != 1 || tokens[0].Type != TokEOF {
		t.Errorf("expected only EOF, got %v", types(tokens))
	}
}

func TestMultipleErrorsAreAllReported(t *testing.T) {
	tokens, diags := Tokenize("var a = 1;\n# $\nprint a;")
	if len(diags) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(diags), diags)
	}
	for _, d := range diags {
		if d.Line != 2 {
			t.Errorf("error line = %d, want 2", d.Line)
		}
	}
	got := types(tokens)
	want := []TokenType{TokVar, TokIdentifier, TokEqual, TokNumber, TokSemicolon, TokPrint, TokIdentifier, TokSemicolon, TokEOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCommentsAndLines(t *testing.T) {
	tokens := mustTokenize(t, "// header comment\nvar x; // trailing\n\nx / 2;")
	if tokens[0].Type != TokVar || tokens[0].Line != 2 {
		t.Errorf("first token %+v, want VAR on line 2", tokens[0])
	}
	var slash *Token
	for i := range tokens {
		if tokens[i].Type == TokSlash {
			slash = &tokens[i]
		}
	}
	if slash == nil || slash.Line != 4 {
		t.Errorf("expected SLASH on line 4, got %+v", slash)
	}
	eof := tokens[len(tokens)-1]
	if eof.Type != TokEOF || eof.Line != 4 {
		t.Errorf("EOF %+v, want line 4", eof)
	}
}

func TestTokenDump(t *testing.T) {
	tokens := mustTokenize(t, `var x = 3; print "hi";`)
	var lines []string
	for _, tok := range tokens {
		lines = append(lines, tok.String())
	}
	want := []string{
		"VAR var null",
		"IDENTIFIER x null",
		"EQUAL = null",
		"NUMBER 3 3.0",
		"SEMICOLON ; null",
		"PRINT print null",
		`STRING "hi" hi`,
		"SEMICOLON ; null",
		"EOF  null",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("dump mismatch:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		3:     "3",
		2.5:   "2.5",
		-1:    "-1",
		0.1:   "0.1",
		1e21:  "1000000000000000000000",
		100.0: "100",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
