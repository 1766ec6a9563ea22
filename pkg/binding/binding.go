// Package binding connects an expression to a property of a target object.
//
// A PropertyBinding evaluates its expression against a scope and writes the
// result to the target. Depending on its mode it re-evaluates when a
// dependency read during the last evaluation changes, writes target changes
// back through the expression, or both.
package binding

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Mode selects the direction of data flow.
type Mode uint8

const (
	// OneTime evaluates once at bind time and never observes.
	OneTime Mode = 1 << iota
	// ToView keeps the target in sync with the expression.
	ToView
	// FromView writes target changes back through the expression.
	FromView
	// TwoWay combines ToView and FromView.
	TwoWay = ToView | FromView
)

var modeNames = map[Mode]string{
	OneTime:  "one-time",
	ToView:   "to-view",
	FromView: "from-view",
	TwoWay:   "two-way",
}

// String returns the mode name.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// Options configures a PropertyBinding.
type Options struct {
	// Logger receives bind, unbind and update failure records.
	Logger *slog.Logger
	// Resources resolves value converters and binding behaviors.
	Resources ast.ServiceLocator
	// Flags are passed to every evaluation.
	Flags types.Flags
}

// Option configures a PropertyBinding.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithResources sets the resource locator.
func WithResources(l ast.ServiceLocator) Option {
	return func(o *Options) {
		o.Resources = l
	}
}

// WithFlags sets the evaluation flags.
func WithFlags(f types.Flags) Option {
	return func(o *Options) {
		o.Flags = f
	}
}

// PropertyBinding binds an expression to target[property].
//
// It is the Subscriber of its own ObserverRecord: every evaluation stamps the
// observers it reads with a fresh version and drops the ones left behind, so
// a binding only listens to what its latest value depends on.
type PropertyBinding struct {
	id       string
	expr     ast.Node
	target   interface{}
	property string
	mode     Mode
	original Mode
	locator  *observation.ObserverLocator
	opts     Options
	logger   *slog.Logger

	scope          *scope.Scope
	record         *observation.ObserverRecord
	targetAccessor observation.Accessor
	targetObserver observation.Observer
	fromView       *targetSubscriber
	behaviors      map[string]ast.Behavior
	bound          bool
	updating       bool
	written        interface{}
	hasWritten     bool
	lastErr        error
}

// NewPropertyBinding creates an unbound binding.
func NewPropertyBinding(expr ast.Node, target interface{}, property string, mode Mode,
	locator *observation.ObserverLocator, opts ...Option) *PropertyBinding {
	o := Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	b := &PropertyBinding{
		id:       uuid.NewString(),
		expr:     expr,
		target:   target,
		property: property,
		mode:     mode,
		original: mode,
		locator:  locator,
		opts:     o,
	}
	b.logger = observability.EnrichLogger(o.Logger, b.id, ast.Unparse(expr))
	b.record = observation.NewObserverRecord(locator, b)
	b.fromView = &targetSubscriber{b}
	return b
}

// ID returns the unique id of the binding.
func (b *PropertyBinding) ID() string { return b.id }

// Expression returns the bound expression.
func (b *PropertyBinding) Expression() ast.Node { return b.expr }

// Mode returns the effective mode.
func (b *PropertyBinding) Mode() Mode { return b.mode }

// IsBound reports whether the binding is bound.
func (b *PropertyBinding) IsBound() bool { return b.bound }

// Dependencies returns the number of observers the binding listens to.
func (b *PropertyBinding) Dependencies() int { return b.record.Count() }

// LastError returns the last error raised while updating the target or the
// source outside of Bind.
func (b *PropertyBinding) LastError() error { return b.lastErr }

// OverrideMode replaces the mode until RestoreMode. Binding behaviors call it
// from their Bind hook, before the binding reads its mode.
func (b *PropertyBinding) OverrideMode(m Mode) { b.mode = m }

// RestoreMode reverts OverrideMode.
func (b *PropertyBinding) RestoreMode() { b.mode = b.original }

// Locator implements ast.Binding.
func (b *PropertyBinding) Locator() ast.ServiceLocator { return b.opts.Resources }

// Behavior implements ast.Binding.
func (b *PropertyBinding) Behavior(key string) (ast.Behavior, bool) {
	bb, ok := b.behaviors[key]
	return bb, ok
}

// SetBehavior implements ast.Binding.
func (b *PropertyBinding) SetBehavior(key string, bb ast.Behavior) {
	if bb == nil {
		delete(b.behaviors, key)
		return
	}
	if b.behaviors == nil {
		b.behaviors = make(map[string]ast.Behavior)
	}
	b.behaviors[key] = bb
}

// Bind connects the binding to s. Binding again to the same scope is a
// no-op; binding to another scope unbinds first.
func (b *PropertyBinding) Bind(s *scope.Scope) error {
	if s == nil {
		return types.Errorf(types.ErrNilScope, "cannot bind %s without a scope", b.property)
	}
	if b.bound {
		if b.scope == s {
			return nil
		}
		b.Unbind()
	}
	b.scope = s
	b.lastErr = nil

	if b.expr.HasBind() {
		if err := b.expr.Bind(b.opts.Flags, s, b); err != nil {
			b.release()
			return err
		}
	}

	mode := b.mode
	var err error
	if mode&FromView != 0 {
		b.targetObserver, err = b.locator.GetObserver(b.target, b.property)
		b.targetAccessor = b.targetObserver
	} else {
		b.targetAccessor, err = b.locator.GetAccessor(b.target, b.property)
	}
	if err != nil {
		b.release()
		return err
	}

	if mode&(ToView|OneTime) != 0 {
		var c observation.Connectable
		if mode&ToView != 0 {
			c = b.record
		}
		b.record.Next()
		v, err := b.expr.Evaluate(b.opts.Flags, s, b.opts.Resources, c)
		if err != nil {
			b.release()
			return err
		}
		if err := b.writeTarget(v, false); err != nil {
			b.release()
			return err
		}
	}
	if mode&FromView != 0 {
		b.targetObserver.Subscribe(b.fromView)
		if mode&ToView == 0 {
			if err := b.writeSource(b.targetObserver.GetValue()); err != nil {
				b.release()
				return err
			}
		}
	}

	b.bound = true
	observability.LogBind(b.logger, b.id, mode.String())
	return nil
}

// Unbind disconnects the binding and releases every subscription.
func (b *PropertyBinding) Unbind() {
	if !b.bound {
		return
	}
	observers := b.record.Count()
	b.bound = false
	b.release()
	observability.LogUnbind(b.logger, b.id, observers)
}

func (b *PropertyBinding) release() {
	if b.expr.HasBind() && b.scope != nil {
		if err := b.expr.Unbind(b.opts.Flags, b.scope, b); err != nil {
			b.fail(err)
		}
	}
	b.record.ClearAll()
	if b.targetObserver != nil {
		b.targetObserver.Unsubscribe(b.fromView)
	}
	b.targetObserver = nil
	b.targetAccessor = nil
	b.scope = nil
	b.written, b.hasWritten = nil, false
}

// HandleChange re-evaluates the expression after a dependency changed.
func (b *PropertyBinding) HandleChange(_, _ interface{}) {
	b.refresh(false)
}

// HandleCollectionChange re-evaluates the expression after an observed
// collection mutated. The target is written even when the collection
// identity did not change.
func (b *PropertyBinding) HandleCollectionChange(observation.Collection, *observation.IndexMap) {
	b.refresh(true)
}

// Refresh re-evaluates the expression and updates the target.
func (b *PropertyBinding) Refresh() {
	b.refresh(false)
}

func (b *PropertyBinding) refresh(force bool) {
	if !b.bound || b.mode&ToView == 0 {
		return
	}
	b.record.Next()
	v, err := b.expr.Evaluate(b.opts.Flags, b.scope, b.opts.Resources, b.record)
	b.record.Clear()
	if err != nil {
		b.fail(err)
		return
	}
	if err := b.writeTarget(v, force); err != nil {
		b.fail(err)
	}
}

func (b *PropertyBinding) writeTarget(v interface{}, force bool) error {
	b.written, b.hasWritten = v, true
	if !force && observation.SameValue(b.targetAccessor.GetValue(), v) {
		return nil
	}
	b.updating = true
	defer func() { b.updating = false }()
	return b.targetAccessor.SetValue(v)
}

// UpdateSource writes value back through the expression.
func (b *PropertyBinding) UpdateSource(value interface{}) error {
	if !b.bound {
		return types.Errorf(types.ErrInvalidAssignment, "binding of %s is not bound", b.property)
	}
	return b.writeSource(value)
}

func (b *PropertyBinding) writeSource(value interface{}) error {
	_, err := b.expr.Assign(b.opts.Flags, b.scope, b.opts.Resources, value)
	return err
}

func (b *PropertyBinding) fail(err error) {
	b.lastErr = err
	observability.LogBindingError(b.logger, b.id, err)
}

// targetSubscriber receives changes of the target property so they can be
// told apart from changes of the expression's dependencies.
type targetSubscriber struct {
	b *PropertyBinding
}

// HandleChange ignores the value the binding itself wrote to the target.
// Target notifications may be delivered by a flush after writeTarget returned,
// so the updating flag alone does not catch them.
func (t *targetSubscriber) HandleChange(newValue, _ interface{}) {
	b := t.b
	if !b.bound || b.updating {
		return
	}
	if b.hasWritten && observation.SameValue(newValue, b.written) {
		return
	}
	if err := b.writeSource(newValue); err != nil {
		b.fail(err)
	}
}
