package resources

import (
	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/binding"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// ModeOverrider is implemented by bindings whose mode a behavior may force.
type ModeOverrider interface {
	OverrideMode(m binding.Mode)
	RestoreMode()
}

// ModeBehavior forces the mode of the binding it is attached to:
// value & oneTime.
type ModeBehavior struct {
	Mode binding.Mode
}

// Bind implements ast.Behavior.
func (m ModeBehavior) Bind(_ types.Flags, _ *scope.Scope, b ast.Binding, _ ...interface{}) error {
	o, ok := b.(ModeOverrider)
	if !ok {
		return types.Errorf(types.ErrInvalidArgument, "%s behavior needs a binding with a mode", m.Mode)
	}
	o.OverrideMode(m.Mode)
	return nil
}

// Unbind implements ast.Behavior.
func (m ModeBehavior) Unbind(_ types.Flags, _ *scope.Scope, b ast.Binding) error {
	if o, ok := b.(ModeOverrider); ok {
		o.RestoreMode()
	}
	return nil
}

func standardBehaviors() map[string]ast.Behavior {
	return map[string]ast.Behavior{
		"oneTime":  ModeBehavior{Mode: binding.OneTime},
		"toView":   ModeBehavior{Mode: binding.ToView},
		"fromView": ModeBehavior{Mode: binding.FromView},
		"twoWay":   ModeBehavior{Mode: binding.TwoWay},
	}
}
