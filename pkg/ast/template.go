package ast

import (
	"strings"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Template is a back-tick template literal. Cooked holds the decoded text
// parts, one more than Expressions.
type Template struct {
	base
	Cooked      []string
	Expressions []Node
}

// Kind implements Node.
func (n *Template) Kind() Kind { return KindTemplate }

// Evaluate implements Node.
func (n *Template) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	var sb strings.Builder
	sb.WriteString(n.Cooked[0])
	for i, e := range n.Expressions {
		v, err := e.Evaluate(f, s, l, c)
		if err != nil {
			return nil, err
		}
		sb.WriteString(ToString(v))
		sb.WriteString(n.Cooked[i+1])
	}
	return sb.String(), nil
}

// TaggedTemplate calls Func with the cooked strings as an array followed by
// the values of Expressions.
type TaggedTemplate struct {
	base
	Cooked      []string
	Func        Node
	Expressions []Node
}

// Kind implements Node.
func (n *TaggedTemplate) Kind() Kind { return KindTaggedTemplate }

// Evaluate implements Node.
func (n *TaggedTemplate) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	values, err := evalList(f, s, l, c, n.Expressions)
	if err != nil {
		return nil, err
	}
	fn, err := n.Func.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	if !isCallable(fn) {
		return nil, types.Errorf(types.ErrInvokeNonFunction, "template tag is not a function (%s)", TypeOf(fn))
	}
	strs := make([]interface{}, len(n.Cooked))
	for i, p := range n.Cooked {
		strs[i] = p
	}
	return invoke(fn, nil, append([]interface{}{observation.NewArray(strs...)}, values...))
}

// Interpolation is text with embedded ${} expressions, the root node of
// interpolation bindings. Parts holds one more element than Expressions.
type Interpolation struct {
	base
	Parts       []string
	Expressions []Node
}

// Kind implements Node.
func (n *Interpolation) Kind() Kind { return KindInterpolation }

// IsMulti reports whether the interpolation embeds more than one expression.
func (n *Interpolation) IsMulti() bool { return len(n.Expressions) > 1 }

// Evaluate implements Node. Undefined and null render as the empty string.
func (n *Interpolation) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	var sb strings.Builder
	sb.WriteString(n.Parts[0])
	for i, e := range n.Expressions {
		v, err := e.Evaluate(f, s, l, c)
		if err != nil {
			return nil, err
		}
		if !types.IsNullish(v) {
			sb.WriteString(ToString(v))
		}
		sb.WriteString(n.Parts[i+1])
	}
	return sb.String(), nil
}
