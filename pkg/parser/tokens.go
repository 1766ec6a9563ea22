package parser

// Token identifies a lexical token. Bits 0-3 hold the binary operator
// precedence, bits 4-10 the token id and the remaining bits the categories
// the token belongs to.
type Token uint32

const (
	precedenceMask Token = 0xF
	idShift              = 4
	idMask         Token = 0x7F << idShift
)

// Token categories.
const (
	ExpressionTerminal Token = 1 << (11 + iota)
	AccessScopeTerminal
	Closing
	Opening
	BinaryOp
	UnaryOp
	LeftHandSide
	Literal
	Keyword
	IdentifierName
	AssignOp
	Template
)

// Binary operator precedences, loosest first.
const (
	precNullish Token = 1 + iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precExponent
)

func tok(id int, bits Token) Token { return Token(id)<<idShift | bits }

// Tokens.
var (
	EOF                  = tok(0, ExpressionTerminal|AccessScopeTerminal|Closing)
	Identifier           = tok(1, IdentifierName)
	StringLiteral        = tok(2, Literal)
	NumericLiteral       = tok(3, Literal)
	TemplateTail         = tok(4, Template|LeftHandSide)
	TemplateContinuation = tok(5, Template|LeftHandSide)

	TrueKeyword       = tok(6, Literal|Keyword|IdentifierName)
	FalseKeyword      = tok(7, Literal|Keyword|IdentifierName)
	NullKeyword       = tok(8, Literal|Keyword|IdentifierName)
	UndefinedKeyword  = tok(9, Literal|Keyword|IdentifierName)
	ThisScope         = tok(10, Keyword|IdentifierName)
	ParentScope       = tok(11, Keyword|IdentifierName)
	TypeofKeyword     = tok(12, Keyword|IdentifierName|UnaryOp)
	VoidKeyword       = tok(13, Keyword|IdentifierName|UnaryOp)
	InKeyword         = tok(14, Keyword|IdentifierName|BinaryOp|precRelational)
	InstanceOfKeyword = tok(15, Keyword|IdentifierName|BinaryOp|precRelational)
	OfKeyword         = tok(16, Keyword|IdentifierName)

	Dot          = tok(17, LeftHandSide)
	DotDotDot    = tok(18, 0)
	Comma        = tok(19, ExpressionTerminal|AccessScopeTerminal)
	Colon        = tok(20, ExpressionTerminal|AccessScopeTerminal)
	Semicolon    = tok(21, ExpressionTerminal|AccessScopeTerminal)
	OpenParen    = tok(22, Opening|LeftHandSide)
	CloseParen   = tok(23, Closing|ExpressionTerminal|AccessScopeTerminal)
	OpenBracket  = tok(24, Opening|LeftHandSide)
	CloseBracket = tok(25, Closing|ExpressionTerminal|AccessScopeTerminal)
	OpenBrace    = tok(26, Opening)
	CloseBrace   = tok(27, Closing|ExpressionTerminal|AccessScopeTerminal)
	Question     = tok(28, AccessScopeTerminal)

	QuestionQuestion        = tok(29, BinaryOp|precNullish)
	Exclamation             = tok(30, UnaryOp)
	ExclamationEquals       = tok(31, BinaryOp|precEquality)
	ExclamationEqualsEquals = tok(32, BinaryOp|precEquality)
	Equals                  = tok(33, AssignOp)
	EqualsEquals            = tok(34, BinaryOp|precEquality)
	EqualsEqualsEquals      = tok(35, BinaryOp|precEquality)
	Arrow                   = tok(36, 0)
	Ampersand               = tok(37, ExpressionTerminal|AccessScopeTerminal)
	AmpersandAmpersand      = tok(38, BinaryOp|precAnd)
	Bar                     = tok(39, ExpressionTerminal|AccessScopeTerminal)
	BarBar                  = tok(40, BinaryOp|precOr)
	Plus                    = tok(41, BinaryOp|UnaryOp|precAdditive)
	PlusEquals              = tok(42, AssignOp)
	Minus                   = tok(43, BinaryOp|UnaryOp|precAdditive)
	MinusEquals             = tok(44, AssignOp)
	Asterisk                = tok(45, BinaryOp|precMultiplicative)
	AsteriskAsterisk        = tok(46, BinaryOp|precExponent)
	AsteriskEquals          = tok(47, AssignOp)
	Slash                   = tok(48, BinaryOp|precMultiplicative)
	SlashEquals             = tok(49, AssignOp)
	Percent                 = tok(50, BinaryOp|precMultiplicative)
	LessThan                = tok(51, BinaryOp|precRelational)
	LessThanEquals          = tok(52, BinaryOp|precRelational)
	GreaterThan             = tok(53, BinaryOp|precRelational)
	GreaterThanEquals       = tok(54, BinaryOp|precRelational)
)

// tokenText holds the source text of every token, indexed by id.
var tokenText = [...]string{
	"end of expression", "identifier", "string", "number", "template", "template",
	"true", "false", "null", "undefined", "$this", "$parent", "typeof", "void", "in", "instanceof", "of",
	".", "...", ",", ":", ";", "(", ")", "[", "]", "{", "}", "?",
	"??", "!", "!=", "!==", "=", "==", "===", "=>", "&", "&&", "|", "||",
	"+", "+=", "-", "-=", "*", "**", "*=", "/", "/=", "%", "<", "<=", ">", ">=",
}

var keywords = map[string]Token{
	"true":       TrueKeyword,
	"false":      FalseKeyword,
	"null":       NullKeyword,
	"undefined":  UndefinedKeyword,
	"$this":      ThisScope,
	"$parent":    ParentScope,
	"typeof":     TypeofKeyword,
	"void":       VoidKeyword,
	"in":         InKeyword,
	"instanceof": InstanceOfKeyword,
	"of":         OfKeyword,
}

// ID returns the token id.
func (t Token) ID() int { return int((t & idMask) >> idShift) }

// Precedence returns the binary operator precedence, 0 for other tokens.
func (t Token) Precedence() int { return int(t & precedenceMask) }

// Is reports whether t belongs to all categories in c.
func (t Token) Is(c Token) bool { return t&c == c }

// String returns the source text of the token.
func (t Token) String() string {
	if id := t.ID(); id < len(tokenText) {
		return tokenText[id]
	}
	return "(unknown)"
}
