// Package resources provides the registry expressions resolve value
// converters and binding behaviors from, plus the standard set of both.
package resources

import (
	"sync"

	"github.com/sandrolain/gobinding/pkg/ast"
)

// ConverterFunc adapts a function to ast.Converter.
type ConverterFunc func(value interface{}, args ...interface{}) (interface{}, error)

// ToView implements ast.Converter.
func (f ConverterFunc) ToView(value interface{}, args ...interface{}) (interface{}, error) {
	return f(value, args...)
}

// TwoWayConverter pairs a to-view and a from-view function.
type TwoWayConverter struct {
	To   ConverterFunc
	From ConverterFunc
}

// ToView implements ast.Converter.
func (c TwoWayConverter) ToView(value interface{}, args ...interface{}) (interface{}, error) {
	return c.To(value, args...)
}

// FromView implements ast.FromViewConverter.
func (c TwoWayConverter) FromView(value interface{}, args ...interface{}) (interface{}, error) {
	return c.From(value, args...)
}

// ConverterDef names a converter for bulk registration.
type ConverterDef struct {
	Name      string
	Converter ast.Converter
}

// Registry maps resource names to converters and behaviors. It implements
// ast.ServiceLocator and is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]ast.Converter
	behaviors  map[string]ast.Behavior
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: make(map[string]ast.Converter),
		behaviors:  make(map[string]ast.Behavior),
	}
}

// NewStandardRegistry creates a registry holding the standard converters
// and behaviors.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for name, c := range standardConverters() {
		r.RegisterConverter(name, c)
	}
	for name, b := range standardBehaviors() {
		r.RegisterBehavior(name, b)
	}
	return r
}

// RegisterConverter adds or replaces a value converter.
func (r *Registry) RegisterConverter(name string, c ast.Converter) {
	r.mu.Lock()
	r.converters[name] = c
	r.mu.Unlock()
}

// Register adds or replaces every converter in defs.
func (r *Registry) Register(defs ...ConverterDef) {
	r.mu.Lock()
	for _, d := range defs {
		r.converters[d.Name] = d.Converter
	}
	r.mu.Unlock()
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, conv := range r.converters {
		c.converters[name] = conv
	}
	for name, b := range r.behaviors {
		c.behaviors[name] = b
	}
	return c
}

// RegisterBehavior adds or replaces a binding behavior.
func (r *Registry) RegisterBehavior(name string, b ast.Behavior) {
	r.mu.Lock()
	r.behaviors[name] = b
	r.mu.Unlock()
}

// ValueConverter implements ast.ServiceLocator.
func (r *Registry) ValueConverter(name string) (ast.Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[name]
	return c, ok
}

// BindingBehavior implements ast.ServiceLocator.
func (r *Registry) BindingBehavior(name string) (ast.Behavior, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.behaviors[name]
	return b, ok
}
