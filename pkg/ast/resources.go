package ast

import (
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// ValueConverter pipes the value of Expression through the named converter:
// expression | name:arg1:arg2.
type ValueConverter struct {
	Expression Node
	Name       string
	Args       []Node
}

// Kind implements Node.
func (n *ValueConverter) Kind() Kind { return KindValueConverter }

func (n *ValueConverter) converter(l ServiceLocator) (Converter, error) {
	if l == nil {
		return nil, types.Errorf(types.ErrNoServiceLocator, "no service locator to resolve value converter %q", n.Name)
	}
	vc, ok := l.ValueConverter(n.Name)
	if !ok || vc == nil {
		return nil, types.Errorf(types.ErrConverterNotFound, "value converter %q not found", n.Name)
	}
	return vc, nil
}

// Evaluate implements Node.
func (n *ValueConverter) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	vc, err := n.converter(l)
	if err != nil {
		return nil, err
	}
	v, err := n.Expression.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	args, err := evalList(f, s, l, c, n.Args)
	if err != nil {
		return nil, err
	}
	return vc.ToView(v, args...)
}

// Assign implements Node. Converters implementing FromViewConverter
// transform the value before it is written through the expression.
func (n *ValueConverter) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	vc, err := n.converter(l)
	if err != nil {
		return nil, err
	}
	if fv, ok := vc.(FromViewConverter); ok {
		args, err := evalList(f, s, l, nil, n.Args)
		if err != nil {
			return nil, err
		}
		if value, err = fv.FromView(value, args...); err != nil {
			return nil, err
		}
	}
	return n.Expression.Assign(f, s, l, value)
}

// HasBind implements Node.
func (n *ValueConverter) HasBind() bool { return n.Expression.HasBind() }

// Bind implements Node.
func (n *ValueConverter) Bind(f types.Flags, s *scope.Scope, b Binding) error {
	if n.Expression.HasBind() {
		return n.Expression.Bind(f, s, b)
	}
	return nil
}

// Unbind implements Node.
func (n *ValueConverter) Unbind(f types.Flags, s *scope.Scope, b Binding) error {
	if n.Expression.HasBind() {
		return n.Expression.Unbind(f, s, b)
	}
	return nil
}

// BindingBehavior attaches the named behavior to the binding evaluating
// Expression: expression & name:arg1:arg2. It does not change the value.
type BindingBehavior struct {
	Expression Node
	Name       string
	Args       []Node
}

// Kind implements Node.
func (n *BindingBehavior) Kind() Kind { return KindBindingBehavior }

// Key is the slot the behavior occupies on the binding.
func (n *BindingBehavior) Key() string { return "behavior:" + n.Name }

// Evaluate implements Node.
func (n *BindingBehavior) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	return n.Expression.Evaluate(f, s, l, c)
}

// Assign implements Node.
func (n *BindingBehavior) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	return n.Expression.Assign(f, s, l, value)
}

// HasBind implements Node.
func (n *BindingBehavior) HasBind() bool { return true }

// Bind implements Node. A behavior can be attached to a binding only once.
func (n *BindingBehavior) Bind(f types.Flags, s *scope.Scope, b Binding) error {
	if n.Expression.HasBind() {
		if err := n.Expression.Bind(f, s, b); err != nil {
			return err
		}
	}
	l := b.Locator()
	if l == nil {
		return types.Errorf(types.ErrNoServiceLocator, "no service locator to resolve binding behavior %q", n.Name)
	}
	bb, ok := l.BindingBehavior(n.Name)
	if !ok || bb == nil {
		return types.Errorf(types.ErrBehaviorNotFound, "binding behavior %q not found", n.Name)
	}
	key := n.Key()
	if _, bound := b.Behavior(key); bound {
		return types.Errorf(types.ErrBehaviorAlreadyBound, "binding behavior %q already applied", n.Name)
	}
	b.SetBehavior(key, bb)
	args, err := evalList(f, s, l, nil, n.Args)
	if err != nil {
		return err
	}
	return bb.Bind(f, s, b, args...)
}

// Unbind implements Node.
func (n *BindingBehavior) Unbind(f types.Flags, s *scope.Scope, b Binding) error {
	key := n.Key()
	if bb, ok := b.Behavior(key); ok {
		err := bb.Unbind(f, s, b)
		b.SetBehavior(key, nil)
		if err != nil {
			return err
		}
	}
	if n.Expression.HasBind() {
		return n.Expression.Unbind(f, s, b)
	}
	return nil
}
