package parser_test

import (
	"testing"

	"github.com/sandrolain/gobinding/pkg/parser"
	"github.com/sandrolain/gobinding/pkg/types"
)

type lexed struct {
	tok   parser.Token
	value interface{}
}

func lexAll(t *testing.T, input string) []lexed {
	t.Helper()
	l := parser.NewLexer(input)
	var out []lexed
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("Next(%q) failed: %v", input, err)
		}
		if tok == parser.EOF {
			return out
		}
		out = append(out, lexed{tok, l.Value()})
	}
}

func TestLexerOperators(t *testing.T) {
	input := ". ... , : ; ( ) [ ] { } ? ?? ! != !== = == === => & && | || + += - -= * ** *= / /= % < <= > >="
	want := []parser.Token{
		parser.Dot, parser.DotDotDot, parser.Comma, parser.Colon, parser.Semicolon,
		parser.OpenParen, parser.CloseParen, parser.OpenBracket, parser.CloseBracket,
		parser.OpenBrace, parser.CloseBrace, parser.Question, parser.QuestionQuestion,
		parser.Exclamation, parser.ExclamationEquals, parser.ExclamationEqualsEquals,
		parser.Equals, parser.EqualsEquals, parser.EqualsEqualsEquals, parser.Arrow,
		parser.Ampersand, parser.AmpersandAmpersand, parser.Bar, parser.BarBar,
		parser.Plus, parser.PlusEquals, parser.Minus, parser.MinusEquals,
		parser.Asterisk, parser.AsteriskAsterisk, parser.AsteriskEquals,
		parser.Slash, parser.SlashEquals, parser.Percent,
		parser.LessThan, parser.LessThanEquals, parser.GreaterThan, parser.GreaterThanEquals,
	}
	got := lexAll(t, input)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].tok != want[i] {
			t.Errorf("token %d = %s, want %s", i, got[i].tok, want[i])
		}
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	got := lexAll(t, "true false null undefined $this $parent typeof void in instanceof of foo $ _x café")
	want := []lexed{
		{parser.TrueKeyword, "true"}, {parser.FalseKeyword, "false"}, {parser.NullKeyword, "null"},
		{parser.UndefinedKeyword, "undefined"}, {parser.ThisScope, "$this"}, {parser.ParentScope, "$parent"},
		{parser.TypeofKeyword, "typeof"}, {parser.VoidKeyword, "void"}, {parser.InKeyword, "in"},
		{parser.InstanceOfKeyword, "instanceof"}, {parser.OfKeyword, "of"},
		{parser.Identifier, "foo"}, {parser.Identifier, "$"}, {parser.Identifier, "_x"}, {parser.Identifier, "café"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		tok   parser.Token
		value interface{}
	}{
		{"integer", "42", parser.NumericLiteral, 42.0},
		{"float", "3.25", parser.NumericLiteral, 3.25},
		{"leading dot", ".5", parser.NumericLiteral, 0.5},
		{"trailing dot", "7.", parser.NumericLiteral, 7.0},
		{"exponent", "1e3", parser.NumericLiteral, 1000.0},
		{"signed exponent", "2.5E-1", parser.NumericLiteral, 0.25},
		{"long integer", "12345678901234567890", parser.NumericLiteral, 12345678901234567890.0},
		{"single quoted", `'a\nb'`, parser.StringLiteral, "a\nb"},
		{"double quoted", `"it's"`, parser.StringLiteral, "it's"},
		{"hex and unicode", `'\x41B\u{43}'`, parser.StringLiteral, "ABC"},
		{"control escapes", `'\t\r\b\f\v\0'`, parser.StringLiteral, "\t\r\b\f\v\x00"},
		{"unknown escape", `'\q\''`, parser.StringLiteral, "q'"},
		{"astral", `'\u{1F600}'`, parser.StringLiteral, "\U0001F600"},
		{"template", "`a\\`b`", parser.TemplateTail, "a`b"},
		{"template head", "`a${", parser.TemplateContinuation, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := parser.NewLexer(tt.input)
			tok, err := l.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if tok != tt.tok {
				t.Errorf("token = %s, want %s", tok, tt.tok)
			}
			if l.Value() != tt.value {
				t.Errorf("value = %#v, want %#v", l.Value(), tt.value)
			}
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		code  types.ErrorCode
	}{
		{"@", types.ErrUnexpectedCharacter},
		{"#a", types.ErrUnexpectedCharacter},
		{"'abc", types.ErrStringNotClosed},
		{`'abc\`, types.ErrStringNotClosed},
		{"`abc", types.ErrTemplateNotClosed},
		{"1a", types.ErrInvalidLiteral},
		{"1e", types.ErrInvalidLiteral},
		{`'\x4g'`, types.ErrInvalidLiteral},
		{`'\u{}'`, types.ErrInvalidLiteral},
		{`'\u{110000}'`, types.ErrInvalidLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parser.NewLexer(tt.input).Next()
			if !types.IsCode(err, tt.code) {
				t.Errorf("Next(%q) error = %v, want %s", tt.input, err, tt.code)
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	l := parser.NewLexer("  ab + 'c'")
	var starts []int
	var texts []string
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok == parser.EOF {
			break
		}
		starts = append(starts, l.Start())
		texts = append(texts, l.Text())
	}
	wantStarts := []int{2, 5, 7}
	wantTexts := []string{"ab", "+", "'c'"}
	for i := range wantStarts {
		if starts[i] != wantStarts[i] || texts[i] != wantTexts[i] {
			t.Errorf("token %d at %d %q, want %d %q", i, starts[i], texts[i], wantStarts[i], wantTexts[i])
		}
	}
}

func TestTokenCategories(t *testing.T) {
	if !parser.Minus.Is(parser.BinaryOp) || !parser.Minus.Is(parser.UnaryOp) {
		t.Error("minus should be both binary and unary")
	}
	if !parser.OfKeyword.Is(parser.IdentifierName) || parser.OfKeyword.Is(parser.BinaryOp) {
		t.Error("of should be an identifier name and not an operator")
	}
	if !parser.CloseBrace.Is(parser.ExpressionTerminal) {
		t.Error("} should terminate an expression")
	}
	ordered := []parser.Token{
		parser.QuestionQuestion, parser.BarBar, parser.AmpersandAmpersand, parser.EqualsEqualsEquals,
		parser.LessThan, parser.Plus, parser.Asterisk, parser.AsteriskAsterisk,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Precedence() <= ordered[i-1].Precedence() {
			t.Errorf("%s should bind tighter than %s", ordered[i], ordered[i-1])
		}
	}
	if parser.InstanceOfKeyword.String() != "instanceof" || parser.EOF.String() != "end of expression" {
		t.Error("unexpected token text")
	}
}
