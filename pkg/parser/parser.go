// Package parser turns binding expression source into ast nodes.
//
// The lexer scans with a dispatch table indexed by the first character of
// each token; the parser climbs precedence tiers from unary operators up to
// value converters and binding behaviors.
//
// # Example
//
//	node, err := parser.Parse("user.name | upper", parser.ToViewCommand)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Results are cached per category: plain expressions, interpolations and
// repeater declarations each have their own LRU cache.
package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/cache"
	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/types"
)

// DefaultMaxDepth bounds expression nesting.
const DefaultMaxDepth = 256

// BindingType tells the parser what kind of binding an expression comes
// from. The category bits select the grammar; the low byte numbers the
// binding command.
type BindingType uint32

// Categories.
const (
	None          BindingType = 0
	Interpolation BindingType = 1 << (8 + iota)
	IsIterator
	IsCustom
	IsFunction
	IsProperty
	IsCommand
)

// Commands.
const (
	BindCommand     = IsProperty | IsCommand | 1
	OneTimeCommand  = IsProperty | IsCommand | 2
	ToViewCommand   = IsProperty | IsCommand | 3
	FromViewCommand = IsProperty | IsCommand | 4
	TwoWayCommand   = IsProperty | IsCommand | 5
	ForCommand      = IsIterator | IsCommand | 6
	CallCommand     = IsFunction | IsCommand | 7
	TriggerCommand  = IsFunction | IsCommand | 8
	DelegateCommand = IsFunction | IsCommand | 9
	CustomCommand   = IsCustom | IsCommand | 10
)

// Has reports whether all bits of c are set.
func (b BindingType) Has(c BindingType) bool { return b&c == c }

// Metric categories.
const (
	categoryExpression    = "expression"
	categoryInterpolation = "interpolation"
	categoryForOf         = "for-of"
)

// Option configures an ExpressionParser.
type Option func(*Options)

// Options holds parser configuration.
type Options struct {
	// CacheSize is the capacity of each of the three caches.
	CacheSize int
	// MaxDepth limits recursion depth to prevent stack overflow.
	MaxDepth int
	// Metrics receives cache hit and miss counts.
	Metrics observability.MetricsRecorder
}

// WithCacheSize sets the capacity of each cache.
func WithCacheSize(n int) Option {
	return func(opts *Options) {
		opts.CacheSize = n
	}
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// ExpressionParser parses and caches binding expressions. It is safe for
// concurrent use.
type ExpressionParser struct {
	opts           Options
	expressions    *cache.Cache[ast.Node]
	interpolations *cache.Cache[*ast.Interpolation]
	forOfs         *cache.Cache[*ast.ForOfStatement]
}

// NewExpressionParser creates a parser with its own caches.
func NewExpressionParser(opts ...Option) *ExpressionParser {
	o := Options{
		CacheSize: cache.DefaultCapacity,
		MaxDepth:  DefaultMaxDepth,
		Metrics:   observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &ExpressionParser{
		opts:           o,
		expressions:    cache.New[ast.Node](o.CacheSize),
		interpolations: cache.New[*ast.Interpolation](o.CacheSize),
		forOfs:         cache.New[*ast.ForOfStatement](o.CacheSize),
	}
}

var defaultParser = NewExpressionParser()

// Parse parses source with the package default parser.
func Parse(source string, bindingType BindingType) (ast.Node, error) {
	return defaultParser.Parse(source, bindingType)
}

// Parse parses source according to bindingType. Interpolation sources
// without any ${} yield a nil node and no error. Custom sources are wrapped
// verbatim.
func (p *ExpressionParser) Parse(source string, bindingType BindingType) (ast.Node, error) {
	switch {
	case bindingType.Has(IsCustom):
		return &ast.Custom{Value: source}, nil
	case bindingType.Has(Interpolation):
		n, err := p.ParseInterpolation(source)
		if n == nil {
			return nil, err
		}
		return n, nil
	case bindingType.Has(IsIterator):
		n, err := p.ParseForOf(source)
		if n == nil {
			return nil, err
		}
		return n, nil
	}
	return p.ParseExpression(source, bindingType)
}

// ParseExpression parses a plain expression. An empty source is accepted
// for property and function bindings and evaluates to the empty string.
func (p *ExpressionParser) ParseExpression(source string, bindingType BindingType) (ast.Node, error) {
	if source == "" {
		if bindingType.Has(IsProperty) || bindingType.Has(IsFunction) {
			return ast.EmptyString, nil
		}
		return nil, emptyError()
	}
	return lookup(p, p.expressions, categoryExpression, source, func(ps *Parser) (ast.Node, error) {
		return ps.ParseExpression()
	})
}

// ParseInterpolation parses text containing ${} expressions.
func (p *ExpressionParser) ParseInterpolation(source string) (*ast.Interpolation, error) {
	if source == "" {
		return nil, emptyError()
	}
	return lookup(p, p.interpolations, categoryInterpolation, source, (*Parser).ParseInterpolation)
}

// ParseForOf parses a repeater declaration such as "item of items".
func (p *ExpressionParser) ParseForOf(source string) (*ast.ForOfStatement, error) {
	if source == "" {
		return nil, emptyError()
	}
	return lookup(p, p.forOfs, categoryForOf, source, (*Parser).ParseForOf)
}

// ClearCache drops every cached result.
func (p *ExpressionParser) ClearCache() {
	p.expressions.Clear()
	p.interpolations.Clear()
	p.forOfs.Clear()
}

func lookup[V any](p *ExpressionParser, c *cache.Cache[V], category, source string, parse func(*Parser) (V, error)) (V, error) {
	if v, ok := c.Get(source); ok {
		p.opts.Metrics.RecordParse(context.Background(), category, true)
		return v, nil
	}
	p.opts.Metrics.RecordParse(context.Background(), category, false)
	v, err := parse(NewParser(source, p.opts.MaxDepth))
	if err != nil {
		var e *types.Error
		if errors.As(err, &e) {
			e.Message = fmt.Sprintf("%s in expression %q", e.Message, source)
		}
		var zero V
		return zero, err
	}
	c.Set(source, v)
	return v, nil
}

func emptyError() error {
	return types.NewError(types.ErrEmptyExpression, "empty expression", 0)
}
