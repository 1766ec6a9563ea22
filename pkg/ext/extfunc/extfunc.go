// Package extfunc provides converters that work with function values.
package extfunc

import (
	"encoding/json"
	"sync"

	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
)

// All returns every function converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		Pipe(),
		Memoize(),
	}
}

// Pipe feeds the value through each function argument in turn:
// name | pipe:(s => s.trim()):(s => s.length).
func Pipe() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "pipe",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			for _, fn := range args {
				v, err := extutil.Call("pipe", fn, value)
				if err != nil {
					return nil, err
				}
				value = v
			}
			return value, nil
		}),
	}
}

// Memoize wraps a function so repeated calls with equal arguments return
// the first result: format | memoize. Arguments are compared by their JSON
// form, and errors are not cached.
func Memoize() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "memoize",
		Converter: resources.ConverterFunc(func(value interface{}, _ ...interface{}) (interface{}, error) {
			fn, ok := observation.Unwrap(value).(observation.Func)
			if !ok {
				return nil, extutil.Errorf("memoize", "expected a function, got %s", extutil.TypeOf(value))
			}
			return memoize(fn), nil
		}),
	}
}

func memoize(fn observation.Func) observation.Func {
	var mu sync.Mutex
	cache := make(map[string]interface{})
	return func(this interface{}, args ...interface{}) (interface{}, error) {
		native := make([]interface{}, len(args))
		for i, a := range args {
			native[i] = observation.ToNative(a)
		}
		raw, err := json.Marshal(native)
		if err != nil {
			return fn(this, args...)
		}
		key := string(raw)
		mu.Lock()
		v, hit := cache[key]
		mu.Unlock()
		if hit {
			return v, nil
		}
		v, err = fn(this, args...)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		cache[key] = v
		mu.Unlock()
		return v, nil
	}
}
