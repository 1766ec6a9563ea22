package ast

import (
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// AccessThis reads the binding context of the current scope ($this) or of an
// ancestor scope ($parent).
type AccessThis struct {
	base
	Ancestor int
}

// Kind implements Node.
func (n *AccessThis) Kind() Kind { return KindAccessThis }

// Evaluate implements Node.
func (n *AccessThis) Evaluate(_ types.Flags, s *scope.Scope, _ ServiceLocator, _ observation.Connectable) (interface{}, error) {
	if s == nil {
		return nil, types.Errorf(types.ErrNilScope, "scope is nil")
	}
	target := scope.Ancestor(s, n.Ancestor)
	if target == nil {
		return nil, nil
	}
	return target.BindingContext, nil
}

// AccessScope reads a name resolved through the scope chain.
type AccessScope struct {
	base
	Name     string
	Ancestor int
}

// Kind implements Node.
func (n *AccessScope) Kind() Kind { return KindAccessScope }

// Evaluate implements Node. Outside strict mode undefined and null read as
// the empty string.
func (n *AccessScope) Evaluate(f types.Flags, s *scope.Scope, _ ServiceLocator, c observation.Connectable) (interface{}, error) {
	obj, err := scope.Resolve(s, n.Name, n.Ancestor, f)
	if err != nil {
		return nil, err
	}
	if err := observe(c, obj, n.Name); err != nil {
		return nil, err
	}
	v := observation.GetProperty(obj, n.Name)
	if f.Has(types.FlagStrict) {
		return v, nil
	}
	if types.IsNullish(v) {
		return "", nil
	}
	return v, nil
}

// Assign implements Node.
func (n *AccessScope) Assign(f types.Flags, s *scope.Scope, _ ServiceLocator, value interface{}) (interface{}, error) {
	obj, err := scope.Resolve(s, n.Name, n.Ancestor, f)
	if err != nil {
		return nil, err
	}
	if obj == scope.Marker || !observation.IsObjectLike(obj) {
		return nil, nil
	}
	if err := observation.SetProperty(obj, n.Name, value); err != nil {
		return nil, err
	}
	return value, nil
}

// AccessMember reads Object.Name.
type AccessMember struct {
	base
	Object Node
	Name   string
}

// Kind implements Node.
func (n *AccessMember) Kind() Kind { return KindAccessMember }

// Evaluate implements Node. Outside strict mode a nullish object reads as
// the empty string.
func (n *AccessMember) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	obj, err := n.Object.Evaluate(f, s, l, leaf(f, c))
	if err != nil {
		return nil, err
	}
	if f.Has(types.FlagStrict) {
		if types.IsNullish(obj) {
			return obj, nil
		}
		if err := observe(c, obj, n.Name); err != nil {
			return nil, err
		}
		return observation.GetProperty(obj, n.Name), nil
	}
	if err := observe(c, obj, n.Name); err != nil {
		return nil, err
	}
	if !Truthy(obj) {
		return "", nil
	}
	return observation.GetProperty(obj, n.Name), nil
}

// Assign implements Node. When the object is missing, a new object holding
// the member is assigned to the object expression instead.
func (n *AccessMember) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	obj, err := n.Object.Evaluate(f, s, l, nil)
	if err != nil {
		return nil, err
	}
	if observation.IsObjectLike(obj) {
		if err := observation.SetProperty(obj, n.Name, value); err != nil {
			return nil, err
		}
		return value, nil
	}
	if _, err := n.Object.Assign(f, s, l, observation.ObjectOf(n.Name, value)); err != nil {
		return nil, err
	}
	return value, nil
}

// AccessKeyed reads Object[Key].
type AccessKeyed struct {
	base
	Object Node
	Key    Node
}

// Kind implements Node.
func (n *AccessKeyed) Kind() Kind { return KindAccessKeyed }

// Evaluate implements Node.
func (n *AccessKeyed) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	obj, err := n.Object.Evaluate(f, s, l, leaf(f, c))
	if err != nil {
		return nil, err
	}
	if !observation.IsObjectLike(obj) {
		if str, ok := obj.(string); ok {
			k, err := n.Key.Evaluate(f, s, l, leaf(f, c))
			if err != nil {
				return nil, err
			}
			return observation.GetProperty(str, keyOf(k)), nil
		}
		return nil, nil
	}
	k, err := n.Key.Evaluate(f, s, l, leaf(f, c))
	if err != nil {
		return nil, err
	}
	key := keyOf(k)
	if err := observe(c, obj, key); err != nil {
		return nil, err
	}
	return observation.GetProperty(obj, key), nil
}

// Assign implements Node.
func (n *AccessKeyed) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	obj, err := n.Object.Evaluate(f, s, l, nil)
	if err != nil {
		return nil, err
	}
	k, err := n.Key.Evaluate(f, s, l, nil)
	if err != nil {
		return nil, err
	}
	if !observation.IsObjectLike(obj) {
		return nil, types.Errorf(types.ErrInvalidAssignment,
			"cannot set property %q of %s", keyOf(k), ToString(obj))
	}
	if err := observation.SetProperty(obj, keyOf(k), value); err != nil {
		return nil, err
	}
	return value, nil
}

// CallScope calls a function resolved through the scope chain.
type CallScope struct {
	base
	Name     string
	Args     []Node
	Ancestor int
}

// Kind implements Node.
func (n *CallScope) Kind() Kind { return KindCallScope }

// Evaluate implements Node.
func (n *CallScope) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	args, err := evalList(f, s, l, c, n.Args)
	if err != nil {
		return nil, err
	}
	ctx, err := scope.Resolve(s, n.Name, n.Ancestor, f)
	if err != nil {
		return nil, err
	}
	fn, err := getFunction(f, ctx, n.Name)
	if err != nil || fn == nil {
		return nil, err
	}
	return invoke(fn, ctx, args)
}

// CallMember calls Object.Name(Args).
type CallMember struct {
	base
	Object Node
	Name   string
	Args   []Node
}

// Kind implements Node.
func (n *CallMember) Kind() Kind { return KindCallMember }

// Evaluate implements Node. Calls of collection-reading methods observe the
// whole collection.
func (n *CallMember) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	obj, err := n.Object.Evaluate(f, s, l, leaf(f, c))
	if err != nil {
		return nil, err
	}
	args, err := evalList(f, s, l, c, n.Args)
	if err != nil {
		return nil, err
	}
	fn, err := getFunction(f, obj, n.Name)
	if err != nil || fn == nil {
		return nil, err
	}
	ret, err := invoke(fn, obj, args)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if col, ok := observation.Unwrap(obj).(observation.Collection); ok && observesCollection(col, n.Name) {
			if err := c.ObserveCollection(col); err != nil {
				return nil, err
			}
		}
	}
	return ret, nil
}

// CallFunction calls the value of Func(Args) without a receiver.
type CallFunction struct {
	base
	Func Node
	Args []Node
}

// Kind implements Node.
func (n *CallFunction) Kind() Kind { return KindCallFunction }

// Evaluate implements Node.
func (n *CallFunction) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	fn, err := n.Func.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	if isCallable(fn) {
		args, err := evalList(f, s, l, c, n.Args)
		if err != nil {
			return nil, err
		}
		return invoke(fn, nil, args)
	}
	if !f.Has(types.FlagMustEvaluate) && types.IsNullish(fn) {
		return nil, nil
	}
	return nil, types.Errorf(types.ErrInvokeNonFunction, "expression is not a function (%s)", TypeOf(fn))
}

// leaf drops the connectable for intermediate reads when only leaf
// properties are observed.
func leaf(f types.Flags, c observation.Connectable) observation.Connectable {
	if f.Has(types.FlagObserveLeafOnly) {
		return nil
	}
	return c
}

func observe(c observation.Connectable, obj interface{}, key string) error {
	if c == nil || obj == scope.Marker || !observation.IsObjectLike(obj) {
		return nil
	}
	if _, ok := obj.(observation.Func); ok {
		return nil
	}
	return c.Observe(obj, key)
}

func evalList(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable, nodes []Node) ([]interface{}, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]interface{}, len(nodes))
	for i, node := range nodes {
		v, err := node.Evaluate(f, s, l, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// getFunction looks up the callable obj.name. A missing function is nil
// unless FlagMustEvaluate is set; a value that is not callable is an error.
func getFunction(f types.Flags, obj interface{}, name string) (interface{}, error) {
	var fn interface{}
	if !types.IsNullish(obj) {
		if m, ok := builtin(obj, name); ok {
			return m, nil
		}
		fn = observation.GetProperty(obj, name)
	}
	if isCallable(fn) {
		return fn, nil
	}
	if !f.Has(types.FlagMustEvaluate) && types.IsNullish(fn) {
		return nil, nil
	}
	return nil, types.Errorf(types.ErrInvokeNonFunction, "%s is not a function (%s)", name, TypeOf(fn))
}
