// Package ast defines the binding expression tree and its evaluator.
//
// Every expression is a tree of Node values drawn from a closed set of kinds.
// Nodes are immutable once parsed and may be shared between bindings: all
// per-evaluation state lives in the scope, the service locator and the
// connectable passed to Evaluate.
//
// # Observation
//
// When Evaluate receives a non-nil Connectable, every property read from an
// object is reported to it through Observe, and collection-reading method
// calls are reported through ObserveCollection. This is how bindings learn
// their dependencies without subscribing explicitly.
package ast

import (
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Kind identifies the kind of a Node.
type Kind uint8

// Node kinds.
const (
	KindAccessThis Kind = iota
	KindAccessScope
	KindAccessMember
	KindAccessKeyed
	KindCallScope
	KindCallMember
	KindCallFunction
	KindArrayLiteral
	KindObjectLiteral
	KindPrimitiveLiteral
	KindTemplate
	KindTaggedTemplate
	KindUnary
	KindBinary
	KindConditional
	KindAssign
	KindArrowFunction
	KindValueConverter
	KindBindingBehavior
	KindInterpolation
	KindForOfStatement
	KindBindingIdentifier
	KindArrayBindingPattern
	KindObjectBindingPattern
	KindCustom
)

var kindNames = [...]string{
	KindAccessThis:           "AccessThis",
	KindAccessScope:          "AccessScope",
	KindAccessMember:         "AccessMember",
	KindAccessKeyed:          "AccessKeyed",
	KindCallScope:            "CallScope",
	KindCallMember:           "CallMember",
	KindCallFunction:         "CallFunction",
	KindArrayLiteral:         "ArrayLiteral",
	KindObjectLiteral:        "ObjectLiteral",
	KindPrimitiveLiteral:     "PrimitiveLiteral",
	KindTemplate:             "Template",
	KindTaggedTemplate:       "TaggedTemplate",
	KindUnary:                "Unary",
	KindBinary:               "Binary",
	KindConditional:          "Conditional",
	KindAssign:               "Assign",
	KindArrowFunction:        "ArrowFunction",
	KindValueConverter:       "ValueConverter",
	KindBindingBehavior:      "BindingBehavior",
	KindInterpolation:        "Interpolation",
	KindForOfStatement:       "ForOfStatement",
	KindBindingIdentifier:    "BindingIdentifier",
	KindArrayBindingPattern:  "ArrayBindingPattern",
	KindObjectBindingPattern: "ObjectBindingPattern",
	KindCustom:               "Custom",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Node is a binding expression.
//
// Assign writes value through the expression and returns the value written.
// Nodes that cannot be assigned to return (nil, nil).
//
// HasBind reports whether the expression, or one of the expressions it
// wraps, takes part in the binding lifecycle. Bindings call Bind and Unbind
// only when it does.
type Node interface {
	Kind() Kind
	Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error)
	Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error)
	HasBind() bool
	Bind(f types.Flags, s *scope.Scope, b Binding) error
	Unbind(f types.Flags, s *scope.Scope, b Binding) error
}

// ServiceLocator resolves named resources referenced by expressions.
type ServiceLocator interface {
	ValueConverter(name string) (Converter, bool)
	BindingBehavior(name string) (Behavior, bool)
}

// Converter is a value converter: it transforms a value on its way to the
// view.
type Converter interface {
	ToView(value interface{}, args ...interface{}) (interface{}, error)
}

// FromViewConverter is implemented by converters that also transform
// values written back from the view.
type FromViewConverter interface {
	FromView(value interface{}, args ...interface{}) (interface{}, error)
}

// Behavior is a binding behavior: it hooks into the lifecycle of the binding
// it decorates.
type Behavior interface {
	Bind(f types.Flags, s *scope.Scope, b Binding, args ...interface{}) error
	Unbind(f types.Flags, s *scope.Scope, b Binding) error
}

// Binding is the part of a binding that expressions interact with while
// binding behaviors are attached.
type Binding interface {
	Locator() ServiceLocator
	// Behavior returns the behavior attached under key.
	Behavior(key string) (Behavior, bool)
	// SetBehavior attaches bb under key; a nil bb detaches it.
	SetBehavior(key string, bb Behavior)
}

// base provides the defaults shared by nodes that are not assignable and do
// not take part in binding.
type base struct{}

func (base) Assign(types.Flags, *scope.Scope, ServiceLocator, interface{}) (interface{}, error) {
	return nil, nil
}

func (base) HasBind() bool { return false }

func (base) Bind(types.Flags, *scope.Scope, Binding) error { return nil }

func (base) Unbind(types.Flags, *scope.Scope, Binding) error { return nil }

// Shared literal nodes.
var (
	True        = &PrimitiveLiteral{Value: true}
	False       = &PrimitiveLiteral{Value: false}
	Null        = &PrimitiveLiteral{Value: types.NullValue}
	Undefined   = &PrimitiveLiteral{Value: nil}
	EmptyString = &PrimitiveLiteral{Value: ""}
	EmptyArray  = &ArrayLiteral{}
	EmptyObject = &ObjectLiteral{}

	This   = &AccessThis{}
	Parent = &AccessThis{Ancestor: 1}
)
