package ast

import (
	"math"
	"reflect"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// ForOfStatement is the root node of iteration bindings: declaration of
// iterable.
type ForOfStatement struct {
	base
	Declaration Node
	Iterable    Node
}

// Kind implements Node.
func (n *ForOfStatement) Kind() Kind { return KindForOfStatement }

// Evaluate implements Node. It returns the iterable.
func (n *ForOfStatement) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	return n.Iterable.Evaluate(f, s, l, c)
}

// HasBind implements Node.
func (n *ForOfStatement) HasBind() bool { return n.Iterable.HasBind() }

// Bind implements Node.
func (n *ForOfStatement) Bind(f types.Flags, s *scope.Scope, b Binding) error {
	if n.Iterable.HasBind() {
		return n.Iterable.Bind(f, s, b)
	}
	return nil
}

// Unbind implements Node.
func (n *ForOfStatement) Unbind(f types.Flags, s *scope.Scope, b Binding) error {
	if n.Iterable.HasBind() {
		return n.Iterable.Unbind(f, s, b)
	}
	return nil
}

// Declare assigns one item to the declaration in s.
func (n *ForOfStatement) Declare(f types.Flags, s *scope.Scope, l ServiceLocator, item interface{}) error {
	_, err := n.Declaration.Assign(f, s, l, item)
	return err
}

// Count returns the number of items Iterate yields for v.
func (n *ForOfStatement) Count(v interface{}) (int, error) {
	switch x := observation.Normalize(observation.Unwrap(v)).(type) {
	case nil, types.Null:
		return 0, nil
	case *observation.Array:
		return x.Len(), nil
	case *observation.Map:
		return x.Len(), nil
	case *observation.Set:
		return x.Len(), nil
	case float64:
		return countOf(x), nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), nil
	}
	return 0, types.Errorf(types.ErrNotIterable, "cannot iterate over %s", TypeOf(v))
}

// Iterate calls fn for every item of v: array elements, [key, value] map
// entries, set values, or 0..n-1 for a number n. Undefined and null yield
// nothing.
func (n *ForOfStatement) Iterate(v interface{}, fn func(i int, item interface{}) error) error {
	switch x := observation.Normalize(observation.Unwrap(v)).(type) {
	case nil, types.Null:
		return nil
	case *observation.Array:
		return eachOf(append([]interface{}(nil), x.Items()...), fn)
	case *observation.Map:
		keys := x.Keys()
		for i, k := range keys {
			if err := fn(i, observation.NewArray(k, x.Get(k))); err != nil {
				return err
			}
		}
		return nil
	case *observation.Set:
		return eachOf(x.Values(), fn)
	case float64:
		count := countOf(x)
		for i := 0; i < count; i++ {
			if err := fn(i, float64(i)); err != nil {
				return err
			}
		}
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if err := fn(i, observation.Normalize(rv.Index(i).Interface())); err != nil {
				return err
			}
		}
		return nil
	}
	return types.Errorf(types.ErrNotIterable, "cannot iterate over %s", TypeOf(v))
}

func countOf(f float64) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	return int(f)
}

func eachOf(items []interface{}, fn func(int, interface{}) error) error {
	for i, item := range items {
		if err := fn(i, item); err != nil {
			return err
		}
	}
	return nil
}

// BindingIdentifier names a variable declared by an iteration or an arrow
// function parameter.
type BindingIdentifier struct {
	base
	Name string
}

// Kind implements Node.
func (n *BindingIdentifier) Kind() Kind { return KindBindingIdentifier }

// Evaluate implements Node. It returns the name.
func (n *BindingIdentifier) Evaluate(types.Flags, *scope.Scope, ServiceLocator, observation.Connectable) (interface{}, error) {
	return n.Name, nil
}

// Assign implements Node. It defines the name on the binding context of s.
func (n *BindingIdentifier) Assign(_ types.Flags, s *scope.Scope, _ ServiceLocator, value interface{}) (interface{}, error) {
	if s == nil {
		return nil, types.Errorf(types.ErrNilScope, "scope is nil")
	}
	if !observation.IsObjectLike(s.BindingContext) {
		return nil, types.Errorf(types.ErrInvalidAssignment, "cannot declare %q without a binding context", n.Name)
	}
	if err := observation.SetProperty(s.BindingContext, n.Name, value); err != nil {
		return nil, err
	}
	return value, nil
}

// ArrayBindingPattern destructures an array: [a, b].
type ArrayBindingPattern struct {
	base
	Elements []Node
}

// Kind implements Node.
func (n *ArrayBindingPattern) Kind() Kind { return KindArrayBindingPattern }

// Evaluate implements Node.
func (n *ArrayBindingPattern) Evaluate(types.Flags, *scope.Scope, ServiceLocator, observation.Connectable) (interface{}, error) {
	return nil, nil
}

// Assign implements Node. Missing elements assign undefined.
func (n *ArrayBindingPattern) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	for i, el := range n.Elements {
		if _, err := el.Assign(f, s, l, observation.GetProperty(observation.Unwrap(value), FormatNumber(float64(i)))); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// ObjectBindingPattern destructures an object: {key: target}. Keys and
// Values are parallel.
type ObjectBindingPattern struct {
	base
	Keys   []string
	Values []Node
}

// Kind implements Node.
func (n *ObjectBindingPattern) Kind() Kind { return KindObjectBindingPattern }

// Evaluate implements Node.
func (n *ObjectBindingPattern) Evaluate(types.Flags, *scope.Scope, ServiceLocator, observation.Connectable) (interface{}, error) {
	return nil, nil
}

// Assign implements Node.
func (n *ObjectBindingPattern) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	for i, key := range n.Keys {
		if _, err := n.Values[i].Assign(f, s, l, observation.GetProperty(observation.Unwrap(value), key)); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// Custom wraps a source string that was not parsed. It evaluates to the
// string itself.
type Custom struct {
	base
	Value string
}

// Kind implements Node.
func (n *Custom) Kind() Kind { return KindCustom }

// Evaluate implements Node.
func (n *Custom) Evaluate(types.Flags, *scope.Scope, ServiceLocator, observation.Connectable) (interface{}, error) {
	return n.Value, nil
}
