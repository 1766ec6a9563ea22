package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/gobinding/pkg/types"
)

const eof = -1

// Lexer converts a binding expression into a sequence of tokens.
// Scanning is driven by a table indexed by the first character of a token.
type Lexer struct {
	input  []rune
	length int
	start  int         // start of the current token
	index  int         // position of ch
	ch     rune        // current character, eof past the end
	value  interface{} // decoded value of the current token
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: []rune(input)}
	l.length = len(l.input)
	l.ch = l.at(0)
	return l
}

// Next returns the next token from the input. At the end of the input
// Next returns EOF for all subsequent calls.
func (l *Lexer) Next() (Token, error) {
	for {
		l.start = l.index
		l.value = nil
		if l.index >= l.length {
			return EOF, nil
		}
		if isWhitespace(l.ch) {
			l.nextChar()
			continue
		}
		scan := scannerFor(l.ch)
		if scan == nil {
			return 0, l.errorf(types.ErrUnexpectedCharacter, "unexpected character %q", l.ch)
		}
		return scan(l)
	}
}

// Value returns the decoded value of the last token: the name of an
// identifier or keyword, the text of a string or template chunk, or the
// float64 of a number.
func (l *Lexer) Value() interface{} {
	return l.value
}

// Text returns the source text of the last token.
func (l *Lexer) Text() string {
	return string(l.input[l.start:l.index])
}

// Start returns the character offset of the last token.
func (l *Lexer) Start() int {
	return l.start
}

// ScanTemplateTail continues a template literal after the closing brace of
// an embedded expression, which must be the last token returned.
func (l *Lexer) ScanTemplateTail() (Token, error) {
	if l.index >= l.length {
		return 0, l.errorf(types.ErrTemplateNotClosed, "unterminated template literal")
	}
	l.index--
	l.ch = l.at(l.index)
	l.start = l.index
	return l.scanTemplate()
}

func scanIdentifier(l *Lexer) (Token, error) {
	for l.nextChar(); isIDPart(l.ch); l.nextChar() {
	}
	name := l.Text()
	l.value = name
	if t, ok := keywords[name]; ok {
		return t, nil
	}
	return Identifier, nil
}

// scanNumber reads a numeric literal. Plain integers are accumulated
// directly; anything with a fraction or exponent goes through strconv.
func (l *Lexer) scanNumber(isFloat bool) (Token, error) {
	if !isFloat {
		var n int64
		digits := 0
		for ; isDigit(l.ch); l.nextChar() {
			n = n*10 + int64(l.ch-'0')
			digits++
		}
		if l.ch != '.' && l.ch != 'e' && l.ch != 'E' && digits < 16 {
			if isIDPart(l.ch) {
				return 0, l.errorf(types.ErrInvalidLiteral, "invalid numeric literal %q", l.Text()+string(l.ch))
			}
			l.value = float64(n)
			return NumericLiteral, nil
		}
	}
	if l.accept('.') {
		for isDigit(l.ch) {
			l.nextChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.nextChar()
		if !l.accept('+') {
			l.accept('-')
		}
		if !isDigit(l.ch) {
			return 0, l.errorf(types.ErrInvalidLiteral, "invalid exponent in %q", l.Text())
		}
		for isDigit(l.ch) {
			l.nextChar()
		}
	}
	if isIDPart(l.ch) {
		return 0, l.errorf(types.ErrInvalidLiteral, "invalid numeric literal %q", l.Text()+string(l.ch))
	}
	f, err := strconv.ParseFloat(l.Text(), 64)
	if err != nil {
		return 0, types.NewError(types.ErrInvalidLiteral, fmt.Sprintf("invalid numeric literal %q", l.Text()), l.start).WithCause(err)
	}
	l.value = f
	return NumericLiteral, nil
}

func (l *Lexer) scanString(quote rune) (Token, error) {
	var sb strings.Builder
	l.nextChar()
	for l.ch != quote {
		if l.index >= l.length {
			return 0, l.errorf(types.ErrStringNotClosed, "unterminated string literal")
		}
		if l.ch == '\\' {
			r, err := l.scanEscape(types.ErrStringNotClosed)
			if err != nil {
				return 0, err
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.ch)
		l.nextChar()
	}
	l.nextChar()
	l.value = sb.String()
	return StringLiteral, nil
}

// scanTemplate reads template text up to the closing backtick or the next
// ${. The current character is the opening backtick or the closing brace of
// the previous embedded expression.
func (l *Lexer) scanTemplate() (Token, error) {
	var sb strings.Builder
	l.nextChar()
	for {
		if l.index >= l.length {
			return 0, l.errorf(types.ErrTemplateNotClosed, "unterminated template literal")
		}
		switch {
		case l.ch == '`':
			l.nextChar()
			l.value = sb.String()
			return TemplateTail, nil
		case l.ch == '$' && l.peek() == '{':
			l.nextChar()
			l.nextChar()
			l.value = sb.String()
			return TemplateContinuation, nil
		case l.ch == '\\':
			r, err := l.scanEscape(types.ErrTemplateNotClosed)
			if err != nil {
				return 0, err
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(l.ch)
			l.nextChar()
		}
	}
}

// scanEscape decodes the escape sequence starting at the current backslash
// and leaves the lexer on the character after it.
func (l *Lexer) scanEscape(unterminated types.ErrorCode) (rune, error) {
	c := l.nextChar()
	if l.index >= l.length {
		return 0, l.errorf(unterminated, "unterminated escape sequence")
	}
	l.nextChar()
	switch c {
	case 'x':
		return l.scanHex(2)
	case 'u':
		if !l.accept('{') {
			return l.scanHex(4)
		}
		var r rune
		digits := 0
		for ; hexValue(l.ch) >= 0; l.nextChar() {
			r = r<<4 | rune(hexValue(l.ch))
			digits++
			if r > 0x10FFFF {
				return 0, l.errorf(types.ErrInvalidLiteral, "code point out of range")
			}
		}
		if digits == 0 || !l.accept('}') {
			return 0, l.errorf(types.ErrInvalidLiteral, "invalid unicode escape")
		}
		return r, nil
	}
	return unescapeChar(c), nil
}

func (l *Lexer) scanHex(n int) (rune, error) {
	var r rune
	for i := 0; i < n; i++ {
		v := hexValue(l.ch)
		if v < 0 {
			return 0, l.errorf(types.ErrInvalidLiteral, "invalid hexadecimal escape")
		}
		r = r<<4 | rune(v)
		l.nextChar()
	}
	return r, nil
}

func (l *Lexer) errorf(code types.ErrorCode, format string, args ...interface{}) error {
	return types.NewError(code, fmt.Sprintf(format, args...), l.index).WithToken(l.Text())
}

func (l *Lexer) at(i int) rune {
	if i < l.length {
		return l.input[i]
	}
	return eof
}

func (l *Lexer) nextChar() rune {
	if l.index < l.length {
		l.index++
	}
	l.ch = l.at(l.index)
	return l.ch
}

func (l *Lexer) peek() rune {
	return l.at(l.index + 1)
}

// accept consumes the current character if it is r.
func (l *Lexer) accept(r rune) bool {
	if l.ch == r {
		l.nextChar()
		return true
	}
	return false
}
