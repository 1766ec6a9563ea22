// Package gobinding is a reactive data-binding runtime.
//
// Expressions such as "user.firstName + ' ' + user.lastName | upper" are
// parsed once, evaluated against a scope, and kept in sync with the data
// they read: every property an evaluation touches is observed, and a change
// re-evaluates exactly the bindings that depend on it.
//
// # Quick Start
//
//	// One-shot evaluation against plain Go data
//	v, err := gobinding.Evaluate("items.length > 0 ? items[0].name : 'none'", data)
//
//	// Live binding
//	rt := gobinding.New()
//	vm := observation.ObjectOf("first", "Ada", "last", "Lovelace")
//	view := observation.ObjectOf("text", "")
//	b, err := rt.Bind(scope.Create(vm, nil, false), "first + ' ' + last", view, "text", binding.ToView)
//	_ = vm.Set("first", "Augusta") // view.text is now "Augusta Lovelace"
//
// # More Information
//
//   - Parser: github.com/sandrolain/gobinding/pkg/parser
//   - Expression tree: github.com/sandrolain/gobinding/pkg/ast
//   - Observation: github.com/sandrolain/gobinding/pkg/observation
//   - Bindings: github.com/sandrolain/gobinding/pkg/binding
package gobinding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/binding"
	"github.com/sandrolain/gobinding/pkg/config"
	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/parser"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Version returns the current version of gobinding.
func Version() string {
	return "v0.1.0-dev"
}

var standardResources = resources.NewStandardRegistry()

// Runtime bundles a parser, an observer locator and a resource registry.
//
// Compile is safe for concurrent use. Everything that evaluates or binds
// shares the locator and must be confined to one goroutine, or guarded by
// the lock given to a TickerScheduler.
type Runtime struct {
	opts    Options
	flags   types.Flags
	parser  *parser.ExpressionParser
	locator *observation.ObserverLocator
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	o := Options{
		Logger:    slog.Default(),
		Metrics:   observability.NoopMetrics{},
		Spans:     observability.NoopSpanManager{},
		Config:    config.Default(),
		Resources: standardResources,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.Converters) > 0 {
		o.Resources = o.Resources.Clone()
		o.Resources.Register(o.Converters...)
	}
	cfg := o.Config
	p := parser.NewExpressionParser(
		parser.WithCacheSize(cfg.Parser.CacheSize),
		parser.WithMaxDepth(cfg.Parser.MaxDepth),
		parser.WithMetrics(o.Metrics),
	)
	lopts := []observation.Option{
		observation.WithLogger(o.Logger),
		observation.WithMetrics(o.Metrics),
		observation.WithMaxRunCount(cfg.Observation.MaxRunCount),
		observation.WithDirtyCheck(observation.DirtyCheckSettings{
			Disabled:         cfg.Observation.DirtyCheck.Disabled,
			TimeoutsPerCheck: cfg.Observation.DirtyCheck.TimeoutsPerCheck,
		}),
		observation.WithScheduler(o.Scheduler),
		observation.WithErrorHandler(o.ErrorHandler),
	}
	for _, h := range o.Hosts {
		lopts = append(lopts, observation.WithHostObserverLocator(h))
	}
	return &Runtime{
		opts:    o,
		flags:   cfg.Flags(),
		parser:  p,
		locator: observation.NewObserverLocator(lopts...),
	}
}

// Parser returns the runtime's parser.
func (r *Runtime) Parser() *parser.ExpressionParser { return r.parser }

// Locator returns the runtime's observer locator.
func (r *Runtime) Locator() *observation.ObserverLocator { return r.locator }

// Resources returns the runtime's resource registry.
func (r *Runtime) Resources() *resources.Registry { return r.opts.Resources }

// Flags returns the evaluation flags selected by the configuration.
func (r *Runtime) Flags() types.Flags { return r.flags }

// Compile parses a binding expression.
func (r *Runtime) Compile(source string) (ast.Node, error) {
	return r.CompileAs(source, parser.BindCommand)
}

// CompileAs parses source as the given binding type.
func (r *Runtime) CompileAs(source string, bt parser.BindingType) (ast.Node, error) {
	node, err := r.parser.Parse(source, bt)
	if err != nil {
		observability.LogParseError(r.opts.Logger, source, err)
		return nil, err
	}
	return node, nil
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
func (r *Runtime) MustCompile(source string) ast.Node {
	node, err := r.Compile(source)
	if err != nil {
		panic(fmt.Sprintf("gobinding: Compile(%q): %v", source, err))
	}
	return node
}

// Evaluate parses source and evaluates it once against data.
func (r *Runtime) Evaluate(source string, data interface{}) (interface{}, error) {
	return r.EvaluateContext(context.Background(), source, data)
}

// EvaluateContext is like Evaluate, traced and measured under ctx.
//
// data becomes the binding context: Go maps and slices are converted to the
// observable model, and *observation.Object values are used as they are.
// The result is in the observable model too; see observation.ToNative.
func (r *Runtime) EvaluateContext(ctx context.Context, source string, data interface{}) (result interface{}, err error) {
	ctx, span := r.opts.Spans.StartEvaluateSpan(ctx, source)
	start := time.Now()
	defer func() {
		r.opts.Metrics.RecordEvaluation(ctx, time.Since(start), err)
		r.opts.Spans.EndSpanWithError(span, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	node, err := r.Compile(source)
	if err != nil {
		return nil, err
	}
	return node.Evaluate(r.flags, r.Scope(data), r.opts.Resources, nil)
}

// Scope wraps data in a root scope.
func (r *Runtime) Scope(data interface{}) *scope.Scope {
	if data == nil {
		return scope.Create(observation.NewObject(), nil, false)
	}
	return scope.Create(observation.FromValue(data), nil, false)
}

// Bind parses source and binds it to target[property] in s.
func (r *Runtime) Bind(s *scope.Scope, source string, target interface{}, property string, mode binding.Mode) (*binding.PropertyBinding, error) {
	return r.BindContext(context.Background(), s, source, target, property, mode)
}

// BindContext is like Bind, traced under ctx.
func (r *Runtime) BindContext(ctx context.Context, s *scope.Scope, source string, target interface{},
	property string, mode binding.Mode) (b *binding.PropertyBinding, err error) {
	node, err := r.Compile(source)
	if err != nil {
		return nil, err
	}
	b = r.NewBinding(node, target, property, mode)
	ctx, span := r.opts.Spans.StartBindSpan(ctx, b.ID(), source)
	defer func() { r.opts.Spans.EndSpanWithError(span, err) }()

	if err := b.Bind(s); err != nil {
		return nil, err
	}
	r.opts.Spans.AddSpanEvent(ctx, "bound",
		attribute.String("mode", b.Mode().String()),
		attribute.Int("dependencies", b.Dependencies()),
	)
	return b, nil
}

// NewBinding creates an unbound binding of node to target[property] that
// shares the runtime's locator, resources, flags and logger.
func (r *Runtime) NewBinding(node ast.Node, target interface{}, property string, mode binding.Mode) *binding.PropertyBinding {
	return binding.NewPropertyBinding(node, target, property, mode, r.locator,
		binding.WithLogger(r.opts.Logger),
		binding.WithResources(r.opts.Resources),
		binding.WithFlags(r.flags),
	)
}

// Batch runs fn with change delivery deferred until it returns.
func (r *Runtime) Batch(fn func()) {
	r.locator.FlushQueue().Batch(fn)
}

// Effect runs fn now and again whenever something it read changes.
func (r *Runtime) Effect(fn observation.EffectFunc) (*observation.Effect, error) {
	return r.locator.Effect(fn)
}

// Compile parses a binding expression with the package default parser.
//
// Example:
//
//	expr, err := gobinding.Compile("user.name | upper")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(source string) (ast.Node, error) {
	return parser.Parse(source, parser.BindCommand)
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(source string) ast.Node {
	node, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("gobinding: Compile(%q): %v", source, err))
	}
	return node
}

// Evaluate is a convenience function that parses and evaluates an
// expression once against data with the standard resources.
//
// Example:
//
//	v, err := gobinding.Evaluate("a + b", map[string]interface{}{"a": 1, "b": 2})
func Evaluate(source string, data interface{}) (interface{}, error) {
	return New().Evaluate(source, data)
}
