// Package scope implements the chain of contexts binding expressions resolve
// names against.
//
// A Scope pairs a binding context (the "this" of an expression) with an
// override context holding extra names such as loop variables. Scopes form a
// tree mirroring component nesting; a boundary scope stops name lookups and
// $parent hops from leaking into the enclosing scopes.
package scope

import (
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

// OverrideContext holds names that shadow the binding context, for example
// the $index of a repeated item. Its properties are observable.
type OverrideContext struct {
	*observation.Object
	BindingContext interface{}
}

// NewOverrideContext creates an empty override context for bindingContext.
func NewOverrideContext(bindingContext interface{}) *OverrideContext {
	return &OverrideContext{
		Object:         observation.NewObject(),
		BindingContext: bindingContext,
	}
}

// Scope is one link of a scope chain.
type Scope struct {
	Parent          *Scope
	BindingContext  interface{}
	OverrideContext *OverrideContext
	IsBoundary      bool
}

// Create creates a root scope. A nil overrideContext is replaced by an empty
// one.
func Create(bindingContext interface{}, overrideContext *OverrideContext, isBoundary bool) *Scope {
	if overrideContext == nil {
		overrideContext = NewOverrideContext(bindingContext)
	}
	return &Scope{
		BindingContext:  bindingContext,
		OverrideContext: overrideContext,
		IsBoundary:      isBoundary,
	}
}

// FromParent creates a child scope of parent.
func FromParent(parent *Scope, bindingContext interface{}) *Scope {
	return &Scope{
		Parent:          parent,
		BindingContext:  bindingContext,
		OverrideContext: NewOverrideContext(bindingContext),
	}
}

// NewBindingContext creates a binding context. keyOrObj is either a property
// name set to value, or a source whose own properties are copied: an
// *observation.Object or a map[string]interface{}.
func NewBindingContext(keyOrObj interface{}, value interface{}) *observation.Object {
	bc := observation.NewObject()
	switch src := keyOrObj.(type) {
	case nil:
	case string:
		_ = bc.Set(src, value)
	case *observation.Object:
		for _, k := range src.Keys() {
			_ = bc.Set(k, src.Get(k))
		}
	case map[string]interface{}:
		if o, ok := observation.FromValue(src).(*observation.Object); ok {
			for _, k := range o.Keys() {
				_ = bc.Set(k, o.Get(k))
			}
		}
	}
	return bc
}

type marker struct{}

// Marker is returned by Resolve instead of a context when a lookup made while
// traversing a parent scope finds nothing.
var Marker = &marker{}

// Ancestor returns the scope n hops up the chain, or nil when the chain ends
// or a boundary scope would be crossed.
func Ancestor(s *Scope, n int) *Scope {
	cur := s
	for ; n > 0 && cur != nil; n-- {
		if cur.IsBoundary {
			return nil
		}
		cur = cur.Parent
	}
	return cur
}

// Resolve returns the context expression name should be read from.
//
// With ancestor > 0 it hops that many parents and returns the override context
// of that scope if it defines name, its binding context otherwise, or nil when
// the chain is too short. With ancestor == 0 it walks up to the nearest scope
// defining name, stopping at boundaries; when nothing defines it, the
// originating scope's binding context is returned, or Marker when
// FlagTraversingParentScope is set.
func Resolve(s *Scope, name string, ancestor int, flags types.Flags) (interface{}, error) {
	if s == nil {
		return nil, types.Errorf(types.ErrNilScope, "scope is nil while resolving %q", name)
	}
	if ancestor > 0 {
		target := Ancestor(s, ancestor)
		if target == nil {
			return nil, nil
		}
		return contextOf(target, name), nil
	}

	cur := s
	for cur != nil && !cur.IsBoundary && !cur.defines(name) {
		cur = cur.Parent
	}
	if cur != nil {
		return contextOf(cur, name), nil
	}
	if flags.Has(types.FlagTraversingParentScope) {
		return Marker, nil
	}
	return s.BindingContext, nil
}

func (s *Scope) defines(name string) bool {
	if s.OverrideContext != nil && s.OverrideContext.Has(name) {
		return true
	}
	return observation.HasProperty(s.BindingContext, name)
}

func contextOf(s *Scope, name string) interface{} {
	if s.OverrideContext != nil && s.OverrideContext.Has(name) {
		return s.OverrideContext.Object
	}
	return s.BindingContext
}
