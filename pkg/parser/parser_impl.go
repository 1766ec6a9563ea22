package parser

import (
	"fmt"
	"strings"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Precedence tiers passed to parse as the minimum precedence. A tier
// excludes everything looser than itself: parse(precAssign) stops before
// value converters, parse(precLeftHandSide) before any binary operator.
const (
	precVariadic = 1 + iota
	precAssign
	precConditional

	// binaryBase offsets Token.Precedence so binary operators bind tighter
	// than every tier above.
	binaryBase = precConditional

	precBinary       = binaryBase + int(precExponent) + 1
	precLeftHandSide = precBinary + 1
)

var literalKeywords = map[Token]ast.Node{
	TrueKeyword:      ast.True,
	FalseKeyword:     ast.False,
	NullKeyword:      ast.Null,
	UndefinedKeyword: ast.Undefined,
}

// Parser implements precedence climbing over the tokens of a single source.
type Parser struct {
	lexer      *Lexer
	tok        Token
	assignable bool
	depth      int
	maxDepth   int
}

// NewParser creates a parser for input.
func NewParser(input string, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{lexer: NewLexer(input), maxDepth: maxDepth}
}

// ParseExpression parses a full expression, including value converters and
// binding behaviors.
func (p *Parser) ParseExpression() (ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parse(precVariadic)
	if err != nil {
		return nil, err
	}
	if p.tok != EOF {
		return nil, p.errorf(types.ErrUnconsumedToken, "unconsumed token %s", p.lexer.Text())
	}
	return node, nil
}

// ParseInterpolation splits the input into text parts and ${} expressions.
// It returns nil when the input holds no expression.
func (p *Parser) ParseInterpolation() (*ast.Interpolation, error) {
	l := p.lexer
	var parts []string
	var exprs []ast.Node
	var sb strings.Builder
	for l.index < l.length {
		switch {
		case l.ch == '$' && l.peek() == '{':
			parts = append(parts, sb.String())
			sb.Reset()
			l.nextChar()
			l.nextChar()
			if err := p.advance(); err != nil {
				return nil, err
			}
			expr, err := p.parse(precVariadic)
			if err != nil {
				return nil, err
			}
			if p.tok != CloseBrace {
				return nil, p.errorf(types.ErrInterpolationNotDone, "unterminated interpolation, expected }")
			}
			exprs = append(exprs, expr)
		case l.ch == '\\' && l.index+1 < l.length:
			sb.WriteRune(unescapeChar(l.nextChar()))
			l.nextChar()
		default:
			sb.WriteRune(l.ch)
			l.nextChar()
		}
	}
	if len(exprs) == 0 {
		return nil, nil
	}
	parts = append(parts, sb.String())
	return &ast.Interpolation{Parts: parts, Expressions: exprs}, nil
}

// ParseForOf parses a repeater declaration of the form "target of iterable".
func (p *Parser) ParseForOf() (*ast.ForOfStatement, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	decl, err := p.parseBindingTarget()
	if err != nil {
		return nil, err
	}
	if p.tok != OfKeyword {
		return nil, p.errorf(types.ErrMissingOf, "expected 'of' after the declaration, got %s", p.tok)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	iterable, err := p.parse(precVariadic)
	if err != nil {
		return nil, err
	}
	if p.tok != EOF {
		return nil, p.errorf(types.ErrUnconsumedToken, "unconsumed token %s", p.lexer.Text())
	}
	return &ast.ForOfStatement{Declaration: decl, Iterable: iterable}, nil
}

func (p *Parser) advance() error {
	t, err := p.lexer.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) expect(t Token) error {
	if p.tok != t {
		if p.tok == EOF {
			return p.errorf(types.ErrUnexpectedEnd, "unexpected end of expression, expected %s", t)
		}
		return p.errorf(types.ErrExpectedToken, "expected %s, got %s", t, p.lexer.Text())
	}
	return p.advance()
}

func (p *Parser) errorf(code types.ErrorCode, format string, args ...interface{}) error {
	return types.NewError(code, fmt.Sprintf(format, args...), p.lexer.start).WithToken(p.lexer.Text())
}

// parse parses an expression whose operators bind at least as tightly as
// minPrec.
func (p *Parser) parse(minPrec int) (ast.Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, p.errorf(types.ErrSyntaxError, "expression nesting exceeds %d", p.maxDepth)
	}

	var result ast.Node
	if p.tok.Is(UnaryOp) {
		op := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parse(precLeftHandSide)
		if err != nil {
			return nil, err
		}
		if p.tok == AsteriskAsterisk {
			return nil, p.errorf(types.ErrSyntaxError, "unary %s before ** needs parentheses", op)
		}
		result = &ast.Unary{Operation: op.String(), Expression: operand}
		p.assignable = false
	} else {
		var scopeHead bool
		var err error
		if result, scopeHead, err = p.parsePrimary(); err != nil {
			return nil, err
		}
		if result, err = p.parseLeftHandSide(result, scopeHead); err != nil {
			return nil, err
		}
	}
	if minPrec >= precBinary {
		return result, nil
	}

	for p.tok.Is(BinaryOp) {
		op := p.tok
		prec := binaryBase + op.Precedence()
		if prec <= minPrec {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		rightMin := prec
		if op == AsteriskAsterisk {
			rightMin--
		}
		right, err := p.parse(rightMin)
		if err != nil {
			return nil, err
		}
		result = &ast.Binary{Operation: op.String(), Left: result, Right: right}
		p.assignable = false
	}
	if minPrec > precConditional {
		return result, nil
	}

	if p.tok == Question {
		if err := p.advance(); err != nil {
			return nil, err
		}
		yes, err := p.parse(precAssign)
		if err != nil {
			return nil, err
		}
		if err := p.expect(Colon); err != nil {
			return nil, err
		}
		no, err := p.parse(precAssign)
		if err != nil {
			return nil, err
		}
		result = &ast.Conditional{Condition: result, Yes: yes, No: no}
		p.assignable = false
	}
	if minPrec > precAssign {
		return result, nil
	}

	if p.tok.Is(AssignOp) {
		if !p.assignable {
			return nil, p.errorf(types.ErrNotAssignable, "left hand side of %s is not assignable", p.tok)
		}
		op := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parse(precAssign)
		if err != nil {
			return nil, err
		}
		assign := &ast.Assign{Target: result, Value: value}
		if op != Equals {
			assign.Operation = op.String()
		}
		result = assign
		p.assignable = false
	}
	if minPrec > precVariadic {
		return result, nil
	}

	for p.tok == Bar {
		name, args, err := p.parseResource("value converter")
		if err != nil {
			return nil, err
		}
		result = &ast.ValueConverter{Expression: result, Name: name, Args: args}
	}
	for p.tok == Ampersand {
		name, args, err := p.parseResource("binding behavior")
		if err != nil {
			return nil, err
		}
		result = &ast.BindingBehavior{Expression: result, Name: name, Args: args}
	}
	return result, nil
}

// parseResource reads "name:arg:arg" after a | or & token.
func (p *Parser) parseResource(what string) (string, []ast.Node, error) {
	if err := p.advance(); err != nil {
		return "", nil, err
	}
	if p.tok != Identifier {
		return "", nil, p.errorf(types.ErrExpectedToken, "expected %s name, got %s", what, p.tok)
	}
	name := p.lexer.Value().(string)
	if err := p.advance(); err != nil {
		return "", nil, err
	}
	var args []ast.Node
	for p.tok == Colon {
		if err := p.advance(); err != nil {
			return "", nil, err
		}
		arg, err := p.parse(precAssign)
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
	}
	return name, args, nil
}

// parsePrimary parses a literal, identifier, scope keyword, arrow function
// or parenthesized expression. scopeHead reports a $this or $parent chain
// head, whose member accesses resolve against the scope.
func (p *Parser) parsePrimary() (node ast.Node, scopeHead bool, err error) {
	switch t := p.tok; t {
	case ThisScope, ParentScope:
		node = ast.This
		if t == ParentScope {
			node = ast.Parent
		}
		p.assignable = false
		return node, true, p.advance()
	case Identifier:
		name := p.lexer.Value().(string)
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if p.tok == Arrow {
			node, err = p.parseArrowBody([]*ast.BindingIdentifier{{Name: name}}, false)
			return node, false, err
		}
		p.assignable = true
		return &ast.AccessScope{Name: name}, false, nil
	case TrueKeyword, FalseKeyword, NullKeyword, UndefinedKeyword:
		node = literalKeywords[t]
		p.assignable = false
		return node, false, p.advance()
	case StringLiteral:
		node = ast.EmptyString
		if s := p.lexer.Value().(string); s != "" {
			node = &ast.PrimitiveLiteral{Value: s}
		}
		p.assignable = false
		return node, false, p.advance()
	case NumericLiteral:
		node = &ast.PrimitiveLiteral{Value: p.lexer.Value()}
		p.assignable = false
		return node, false, p.advance()
	case TemplateTail, TemplateContinuation:
		node, err = p.parseTemplate(nil)
		return node, false, err
	case OpenParen:
		node, err = p.parseParenthesized()
		return node, false, err
	case OpenBracket:
		node, err = p.parseArrayLiteral()
		return node, false, err
	case OpenBrace:
		node, err = p.parseObjectLiteral()
		return node, false, err
	case OfKeyword:
		return nil, false, p.errorf(types.ErrUnexpectedOf, "unexpected keyword 'of' outside a repeater declaration")
	case EOF:
		return nil, false, p.errorf(types.ErrUnexpectedEnd, "unexpected end of expression")
	default:
		return nil, false, p.errorf(types.ErrSyntaxError, "unexpected token %s", p.lexer.Text())
	}
}

// parseLeftHandSide applies member access, keyed access, calls and tagged
// templates to result.
func (p *Parser) parseLeftHandSide(result ast.Node, scopeHead bool) (ast.Node, error) {
	for p.tok.Is(LeftHandSide) {
		switch p.tok {
		case Dot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if !p.tok.Is(IdentifierName) {
				return nil, p.errorf(types.ErrInvalidMemberAccess, "expected member name after '.', got %s", p.tok)
			}
			this, isThis := result.(*ast.AccessThis)
			if scopeHead && isThis && p.tok == ParentScope {
				result = &ast.AccessThis{Ancestor: this.Ancestor + 1}
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			name := p.lexer.Value().(string)
			if err := p.advance(); err != nil {
				return nil, err
			}
			if scopeHead && isThis {
				result = &ast.AccessScope{Name: name, Ancestor: this.Ancestor}
			} else {
				result = &ast.AccessMember{Object: result, Name: name}
			}
			p.assignable = true
		case OpenBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			key, err := p.parse(precAssign)
			if err != nil {
				return nil, err
			}
			if err := p.expect(CloseBracket); err != nil {
				return nil, err
			}
			result = &ast.AccessKeyed{Object: result, Key: key}
			p.assignable = true
		case OpenParen:
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			switch r := result.(type) {
			case *ast.AccessScope:
				result = &ast.CallScope{Name: r.Name, Args: args, Ancestor: r.Ancestor}
			case *ast.AccessMember:
				result = &ast.CallMember{Object: r.Object, Name: r.Name, Args: args}
			default:
				result = &ast.CallFunction{Func: result, Args: args}
			}
			p.assignable = false
		default:
			var err error
			if result, err = p.parseTemplate(result); err != nil {
				return nil, err
			}
		}
		scopeHead = false
	}
	return result, nil
}

func (p *Parser) parseArguments() ([]ast.Node, error) {
	if err := p.expect(OpenParen); err != nil {
		return nil, err
	}
	var args []ast.Node
	for p.tok != CloseParen {
		arg, err := p.parse(precAssign)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok != Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, p.expect(CloseParen)
}

// parseTemplate parses a template literal starting at its first chunk.
// A non-nil tag makes it a tagged template.
func (p *Parser) parseTemplate(tag ast.Node) (ast.Node, error) {
	cooked := []string{p.lexer.Value().(string)}
	var exprs []ast.Node
	for p.tok == TemplateContinuation {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parse(precAssign)
		if err != nil {
			return nil, err
		}
		if p.tok != CloseBrace {
			return nil, p.errorf(types.ErrTemplateNotClosed, "expected } to close template expression, got %s", p.tok)
		}
		exprs = append(exprs, expr)
		if p.tok, err = p.lexer.ScanTemplateTail(); err != nil {
			return nil, err
		}
		cooked = append(cooked, p.lexer.Value().(string))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	p.assignable = false
	if tag != nil {
		return &ast.TaggedTemplate{Cooked: cooked, Func: tag, Expressions: exprs}, nil
	}
	return &ast.Template{Cooked: cooked, Expressions: exprs}, nil
}

// parseParenthesized parses either an arrow function parameter list or a
// parenthesized expression. Arrow parameters are recognized by scanning
// ahead and rewinding when no => follows.
func (p *Parser) parseParenthesized() (ast.Node, error) {
	saved, savedTok := *p.lexer, p.tok
	if params, rest, ok := p.scanArrowParams(); ok {
		return p.parseArrowBody(params, rest)
	}
	*p.lexer, p.tok = saved, savedTok

	if err := p.advance(); err != nil {
		return nil, err
	}
	inner, err := p.parse(precAssign)
	if err != nil {
		return nil, err
	}
	return inner, p.expect(CloseParen)
}

// scanArrowParams consumes "(a, b, ...c) =>" and reports whether the tokens
// formed an arrow function head.
func (p *Parser) scanArrowParams() ([]*ast.BindingIdentifier, bool, bool) {
	params := []*ast.BindingIdentifier{}
	rest := false
	if p.advance() != nil {
		return nil, false, false
	}
	for p.tok != CloseParen {
		if p.tok == DotDotDot {
			rest = true
			if p.advance() != nil {
				return nil, false, false
			}
		}
		if p.tok != Identifier {
			return nil, false, false
		}
		params = append(params, &ast.BindingIdentifier{Name: p.lexer.Value().(string)})
		if p.advance() != nil {
			return nil, false, false
		}
		if p.tok == Comma && !rest {
			if p.advance() != nil {
				return nil, false, false
			}
			continue
		}
		if p.tok != CloseParen {
			return nil, false, false
		}
	}
	if p.advance() != nil || p.tok != Arrow {
		return nil, false, false
	}
	return params, rest, true
}

// parseArrowBody parses the body after =>, which must be the current token.
func (p *Parser) parseArrowBody(params []*ast.BindingIdentifier, rest bool) (ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parse(precAssign)
	if err != nil {
		return nil, err
	}
	p.assignable = false
	return &ast.ArrowFunction{Params: params, Body: body, Rest: rest}, nil
}

// parseArrayLiteral parses [a, , b]. Holes evaluate to undefined.
func (p *Parser) parseArrayLiteral() (ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var elems []ast.Node
	for p.tok != CloseBracket {
		if p.tok == Comma {
			elems = append(elems, ast.Undefined)
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		elem, err := p.parse(precAssign)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if p.tok != Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(CloseBracket); err != nil {
		return nil, err
	}
	p.assignable = false
	if len(elems) == 0 {
		return ast.EmptyArray, nil
	}
	return &ast.ArrayLiteral{Elements: elems}, nil
}

// parseObjectLiteral parses {a: 1, 'b': 2, 3: c, d}. A bare identifier key
// reads the scope variable of the same name.
func (p *Parser) parseObjectLiteral() (ast.Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var keys []string
	var values []ast.Node
	for p.tok != CloseBrace {
		key, shorthand, err := p.propertyKey()
		if err != nil {
			return nil, err
		}
		var value ast.Node
		if shorthand && (p.tok == Comma || p.tok == CloseBrace) {
			value = &ast.AccessScope{Name: key}
		} else {
			if err := p.expect(Colon); err != nil {
				return nil, err
			}
			if value, err = p.parse(precAssign); err != nil {
				return nil, err
			}
		}
		keys = append(keys, key)
		values = append(values, value)
		if p.tok != Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(CloseBrace); err != nil {
		return nil, err
	}
	p.assignable = false
	if len(keys) == 0 {
		return ast.EmptyObject, nil
	}
	return &ast.ObjectLiteral{Keys: keys, Values: values}, nil
}

// propertyKey reads an object key. shorthand reports a plain identifier,
// which may stand alone.
func (p *Parser) propertyKey() (key string, shorthand bool, err error) {
	switch {
	case p.tok.Is(IdentifierName):
		key, shorthand = p.lexer.Value().(string), p.tok == Identifier
	case p.tok == StringLiteral:
		key = p.lexer.Value().(string)
	case p.tok == NumericLiteral:
		key = ast.FormatNumber(p.lexer.Value().(float64))
	case p.tok == EOF:
		return "", false, p.errorf(types.ErrUnexpectedEnd, "unexpected end of expression, expected property name")
	default:
		return "", false, p.errorf(types.ErrExpectedToken, "expected property name, got %s", p.lexer.Text())
	}
	return key, shorthand, p.advance()
}

// parseBindingTarget parses the declaration of a repeater: an identifier or
// an array or object destructuring pattern.
func (p *Parser) parseBindingTarget() (ast.Node, error) {
	switch p.tok {
	case Identifier:
		id := &ast.BindingIdentifier{Name: p.lexer.Value().(string)}
		return id, p.advance()
	case OpenBracket:
		if err := p.advance(); err != nil {
			return nil, err
		}
		pattern := &ast.ArrayBindingPattern{}
		for p.tok != CloseBracket {
			if p.tok == Comma {
				pattern.Elements = append(pattern.Elements, ast.Undefined)
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			elem, err := p.parseBindingTarget()
			if err != nil {
				return nil, err
			}
			pattern.Elements = append(pattern.Elements, elem)
			if p.tok != Comma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return pattern, p.expect(CloseBracket)
	case OpenBrace:
		if err := p.advance(); err != nil {
			return nil, err
		}
		pattern := &ast.ObjectBindingPattern{}
		for p.tok != CloseBrace {
			key, shorthand, err := p.propertyKey()
			if err != nil {
				return nil, err
			}
			var value ast.Node
			if p.tok == Colon {
				if err := p.advance(); err != nil {
					return nil, err
				}
				if value, err = p.parseBindingTarget(); err != nil {
					return nil, err
				}
			} else if shorthand {
				value = &ast.BindingIdentifier{Name: key}
			} else {
				return nil, p.errorf(types.ErrExpectedToken, "expected : after property name %q", key)
			}
			pattern.Keys = append(pattern.Keys, key)
			pattern.Values = append(pattern.Values, value)
			if p.tok != Comma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		return pattern, p.expect(CloseBrace)
	case EOF:
		return nil, p.errorf(types.ErrUnexpectedEnd, "unexpected end of expression, expected a declaration")
	default:
		return nil, p.errorf(types.ErrInvalidBindingTarget, "invalid repeater declaration %s", p.lexer.Text())
	}
}
