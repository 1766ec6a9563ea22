package ast

import "fmt"

// Visitor has one method per node kind. Type parameter T is the result type
// of the visit methods.
//
// Example usage for collecting the names an expression reads:
//
//	type names struct{ out []string }
//	func (v *names) VisitAccessScope(n *ast.AccessScope) struct{} {
//	    v.out = append(v.out, n.Name)
//	    return struct{}{}
//	}
//	// ... other methods
type Visitor[T any] interface {
	// Access
	VisitAccessThis(*AccessThis) T
	VisitAccessScope(*AccessScope) T
	VisitAccessMember(*AccessMember) T
	VisitAccessKeyed(*AccessKeyed) T

	// Calls
	VisitCallScope(*CallScope) T
	VisitCallMember(*CallMember) T
	VisitCallFunction(*CallFunction) T

	// Literals
	VisitArrayLiteral(*ArrayLiteral) T
	VisitObjectLiteral(*ObjectLiteral) T
	VisitPrimitiveLiteral(*PrimitiveLiteral) T
	VisitTemplate(*Template) T
	VisitTaggedTemplate(*TaggedTemplate) T

	// Operators
	VisitUnary(*Unary) T
	VisitBinary(*Binary) T
	VisitConditional(*Conditional) T
	VisitAssign(*Assign) T
	VisitArrowFunction(*ArrowFunction) T

	// Resources
	VisitValueConverter(*ValueConverter) T
	VisitBindingBehavior(*BindingBehavior) T

	// Binding roots and declarations
	VisitInterpolation(*Interpolation) T
	VisitForOfStatement(*ForOfStatement) T
	VisitBindingIdentifier(*BindingIdentifier) T
	VisitArrayBindingPattern(*ArrayBindingPattern) T
	VisitObjectBindingPattern(*ObjectBindingPattern) T
	VisitCustom(*Custom) T
}

// Accept dispatches to the visitor method for the kind of node.
//
// Example:
//
//	text := ast.Accept[string](node, printer)
func Accept[T any](node Node, v Visitor[T]) T {
	switch n := node.(type) {
	case *AccessThis:
		return v.VisitAccessThis(n)
	case *AccessScope:
		return v.VisitAccessScope(n)
	case *AccessMember:
		return v.VisitAccessMember(n)
	case *AccessKeyed:
		return v.VisitAccessKeyed(n)

	case *CallScope:
		return v.VisitCallScope(n)
	case *CallMember:
		return v.VisitCallMember(n)
	case *CallFunction:
		return v.VisitCallFunction(n)

	case *ArrayLiteral:
		return v.VisitArrayLiteral(n)
	case *ObjectLiteral:
		return v.VisitObjectLiteral(n)
	case *PrimitiveLiteral:
		return v.VisitPrimitiveLiteral(n)
	case *Template:
		return v.VisitTemplate(n)
	case *TaggedTemplate:
		return v.VisitTaggedTemplate(n)

	case *Unary:
		return v.VisitUnary(n)
	case *Binary:
		return v.VisitBinary(n)
	case *Conditional:
		return v.VisitConditional(n)
	case *Assign:
		return v.VisitAssign(n)
	case *ArrowFunction:
		return v.VisitArrowFunction(n)

	case *ValueConverter:
		return v.VisitValueConverter(n)
	case *BindingBehavior:
		return v.VisitBindingBehavior(n)

	case *Interpolation:
		return v.VisitInterpolation(n)
	case *ForOfStatement:
		return v.VisitForOfStatement(n)
	case *BindingIdentifier:
		return v.VisitBindingIdentifier(n)
	case *ArrayBindingPattern:
		return v.VisitArrayBindingPattern(n)
	case *ObjectBindingPattern:
		return v.VisitObjectBindingPattern(n)
	case *Custom:
		return v.VisitCustom(n)
	}
	panic(fmt.Sprintf("ast: unknown node type %T", node))
}

// Walk traverses an expression in depth-first order. For each node it calls
// fn(node); when fn returns false the children of that node are skipped.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}

// Children returns the direct child nodes of node in source order.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *AccessMember:
		return []Node{n.Object}
	case *AccessKeyed:
		return []Node{n.Object, n.Key}
	case *CallScope:
		return n.Args
	case *CallMember:
		return append([]Node{n.Object}, n.Args...)
	case *CallFunction:
		return append([]Node{n.Func}, n.Args...)
	case *ArrayLiteral:
		return n.Elements
	case *ObjectLiteral:
		return n.Values
	case *Template:
		return n.Expressions
	case *TaggedTemplate:
		return append([]Node{n.Func}, n.Expressions...)
	case *Unary:
		return []Node{n.Expression}
	case *Binary:
		return []Node{n.Left, n.Right}
	case *Conditional:
		return []Node{n.Condition, n.Yes, n.No}
	case *Assign:
		return []Node{n.Target, n.Value}
	case *ArrowFunction:
		out := make([]Node, 0, len(n.Params)+1)
		for _, p := range n.Params {
			out = append(out, p)
		}
		return append(out, n.Body)
	case *ValueConverter:
		return append([]Node{n.Expression}, n.Args...)
	case *BindingBehavior:
		return append([]Node{n.Expression}, n.Args...)
	case *Interpolation:
		return n.Expressions
	case *ForOfStatement:
		return []Node{n.Declaration, n.Iterable}
	case *ArrayBindingPattern:
		return n.Elements
	case *ObjectBindingPattern:
		return n.Values
	}
	return nil
}
