package parser

import "unicode"

type scanFunc func(l *Lexer) (Token, error)

// charScanners maps the first character of a token to its scanner. A nil
// entry means the character cannot start a token.
var charScanners [0xFFFF]scanFunc

// idParts marks characters allowed after the first one of an identifier.
var idParts [0xFFFF]bool

func init() {
	for c := 0; c < 0xFFFF; c++ {
		if unicode.IsLetter(rune(c)) {
			idParts[c] = true
			charScanners[c] = scanIdentifier
		}
	}
	for _, c := range "$_" {
		idParts[c] = true
		charScanners[c] = scanIdentifier
	}
	for c := '0'; c <= '9'; c++ {
		idParts[c] = true
		charScanners[c] = func(l *Lexer) (Token, error) { return l.scanNumber(false) }
	}

	charScanners['\''] = func(l *Lexer) (Token, error) { return l.scanString('\'') }
	charScanners['"'] = func(l *Lexer) (Token, error) { return l.scanString('"') }
	charScanners['`'] = func(l *Lexer) (Token, error) { return l.scanTemplate() }

	single := map[rune]Token{
		'(': OpenParen, ')': CloseParen,
		'[': OpenBracket, ']': CloseBracket,
		'{': OpenBrace, '}': CloseBrace,
		',': Comma, ':': Colon, ';': Semicolon, '%': Percent,
	}
	for c, t := range single {
		t := t
		charScanners[c] = func(l *Lexer) (Token, error) {
			l.nextChar()
			return t, nil
		}
	}

	charScanners['.'] = func(l *Lexer) (Token, error) {
		if isDigit(l.peek()) {
			return l.scanNumber(true)
		}
		l.nextChar()
		if l.ch == '.' && l.peek() == '.' {
			l.nextChar()
			l.nextChar()
			return DotDotDot, nil
		}
		return Dot, nil
	}
	charScanners['?'] = func(l *Lexer) (Token, error) {
		l.nextChar()
		if l.accept('?') {
			return QuestionQuestion, nil
		}
		return Question, nil
	}
	charScanners['!'] = func(l *Lexer) (Token, error) {
		l.nextChar()
		if !l.accept('=') {
			return Exclamation, nil
		}
		if l.accept('=') {
			return ExclamationEqualsEquals, nil
		}
		return ExclamationEquals, nil
	}
	charScanners['='] = func(l *Lexer) (Token, error) {
		l.nextChar()
		if l.accept('>') {
			return Arrow, nil
		}
		if !l.accept('=') {
			return Equals, nil
		}
		if l.accept('=') {
			return EqualsEqualsEquals, nil
		}
		return EqualsEquals, nil
	}
	charScanners['*'] = func(l *Lexer) (Token, error) {
		l.nextChar()
		switch {
		case l.accept('*'):
			return AsteriskAsterisk, nil
		case l.accept('='):
			return AsteriskEquals, nil
		}
		return Asterisk, nil
	}
	pair('&', '&', Ampersand, AmpersandAmpersand)
	pair('|', '|', Bar, BarBar)
	pair('+', '=', Plus, PlusEquals)
	pair('-', '=', Minus, MinusEquals)
	pair('/', '=', Slash, SlashEquals)
	pair('<', '=', LessThan, LessThanEquals)
	pair('>', '=', GreaterThan, GreaterThanEquals)
}

// pair registers a scanner for a one character token that becomes a
// different token when followed by second.
func pair(first, second rune, one, two Token) {
	charScanners[first] = func(l *Lexer) (Token, error) {
		l.nextChar()
		if l.accept(second) {
			return two, nil
		}
		return one, nil
	}
}

func scannerFor(ch rune) scanFunc {
	if ch >= 0 && ch < 0xFFFF {
		return charScanners[ch]
	}
	if unicode.IsLetter(ch) {
		return scanIdentifier
	}
	return nil
}

func isIDPart(ch rune) bool {
	if ch >= 0 && ch < 0xFFFF {
		return idParts[ch]
	}
	return unicode.IsLetter(ch)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0xA0, 0xFEFF:
		return true
	}
	return false
}

func hexValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

// unescapeChar maps the character after a backslash to the character it
// stands for in simple escapes.
func unescapeChar(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case '0':
		return 0
	}
	return r
}
