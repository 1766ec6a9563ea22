package ast

import (
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// PrimitiveLiteral is a number, string, boolean, null or undefined literal.
type PrimitiveLiteral struct {
	base
	Value interface{}
}

// Kind implements Node.
func (n *PrimitiveLiteral) Kind() Kind { return KindPrimitiveLiteral }

// Evaluate implements Node.
func (n *PrimitiveLiteral) Evaluate(types.Flags, *scope.Scope, ServiceLocator, observation.Connectable) (interface{}, error) {
	return n.Value, nil
}

// ArrayLiteral builds a new array on every evaluation.
type ArrayLiteral struct {
	base
	Elements []Node
}

// Kind implements Node.
func (n *ArrayLiteral) Kind() Kind { return KindArrayLiteral }

// Evaluate implements Node.
func (n *ArrayLiteral) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	items, err := evalList(f, s, l, c, n.Elements)
	if err != nil {
		return nil, err
	}
	return observation.NewArray(items...), nil
}

// ObjectLiteral builds a new object on every evaluation. Keys and Values
// are parallel.
type ObjectLiteral struct {
	base
	Keys   []string
	Values []Node
}

// Kind implements Node.
func (n *ObjectLiteral) Kind() Kind { return KindObjectLiteral }

// Evaluate implements Node.
func (n *ObjectLiteral) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	values, err := evalList(f, s, l, c, n.Values)
	if err != nil {
		return nil, err
	}
	kv := make([]interface{}, 0, 2*len(n.Keys))
	for i, k := range n.Keys {
		kv = append(kv, k, values[i])
	}
	return observation.ObjectOf(kv...), nil
}
