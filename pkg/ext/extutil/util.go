// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"math"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Errorf builds an invalid-argument error prefixed with the converter name.
func Errorf(name, format string, args ...interface{}) *types.Error {
	return types.Errorf(types.ErrInvalidArgument, name+": "+format, args...)
}

// Arg returns args[i], or nil when it was not supplied.
func Arg(args []interface{}, i int) interface{} {
	if i < len(args) {
		return observation.Unwrap(args[i])
	}
	return nil
}

// AsArray returns the items of an array or set value.
func AsArray(name string, v interface{}) ([]interface{}, error) {
	switch x := observation.Unwrap(v).(type) {
	case *observation.Array:
		return x.Items(), nil
	case *observation.Set:
		return x.Values(), nil
	}
	return nil, Errorf(name, "expected an array, got %s", TypeOf(v))
}

// AsObject returns v as an object.
func AsObject(name string, v interface{}) (*observation.Object, error) {
	if o, ok := observation.Unwrap(v).(*observation.Object); ok {
		return o, nil
	}
	return nil, Errorf(name, "expected an object, got %s", TypeOf(v))
}

// AsNumber returns v as a number. Numeric strings are accepted.
func AsNumber(name string, v interface{}) (float64, error) {
	n := ast.ToNumber(v)
	if math.IsNaN(n) {
		return 0, Errorf(name, "expected a number, got %s", TypeOf(v))
	}
	return n, nil
}

// AsInt is AsNumber truncated toward zero.
func AsInt(name string, v interface{}) (int, error) {
	n, err := AsNumber(name, v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// AsNumbers converts an array of numbers.
func AsNumbers(name string, v interface{}) ([]float64, error) {
	items, err := AsArray(name, v)
	if err != nil {
		return nil, err
	}
	nums := make([]float64, len(items))
	for i, item := range items {
		n, err := AsNumber(name, item)
		if err != nil {
			return nil, Errorf(name, "element %d: expected a number, got %s", i, TypeOf(item))
		}
		nums[i] = n
	}
	return nums, nil
}

// Call invokes fn with args and no receiver.
func Call(name string, fn interface{}, args ...interface{}) (interface{}, error) {
	f, ok := observation.Unwrap(fn).(observation.Func)
	if !ok {
		return nil, types.Errorf(types.ErrInvokeNonFunction, "%s: %s is not a function", name, TypeOf(fn))
	}
	return f(nil, args...)
}

// Selector resolves a key argument that is either a property name or a
// function of the item.
func Selector(name string, key interface{}) (func(item interface{}) (interface{}, error), error) {
	switch k := observation.Unwrap(key).(type) {
	case observation.Func:
		return func(item interface{}) (interface{}, error) { return k(nil, item) }, nil
	case string:
		return func(item interface{}) (interface{}, error) {
			if o, ok := observation.Unwrap(item).(*observation.Object); ok {
				return o.Get(k), nil
			}
			return nil, nil
		}, nil
	case nil:
		return func(item interface{}) (interface{}, error) { return item, nil }, nil
	}
	return nil, Errorf(name, "key must be a property name or a function, got %s", TypeOf(key))
}

// TypeOf names the type of v for error messages.
func TypeOf(v interface{}) string {
	switch observation.Normalize(observation.Unwrap(v)).(type) {
	case nil:
		return "undefined"
	case types.Null:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case *observation.Array:
		return "array"
	case *observation.Map:
		return "map"
	case *observation.Set:
		return "set"
	case observation.Func:
		return "function"
	}
	return "object"
}

// Same compares values the way set operations do.
func Same(a, b interface{}) bool {
	return observation.SameValue(
		observation.Normalize(observation.Unwrap(a)),
		observation.Normalize(observation.Unwrap(b)),
	)
}

// IndexOf returns the index of v in items, or -1.
func IndexOf(items []interface{}, v interface{}) int {
	for i, item := range items {
		if Same(item, v) {
			return i
		}
	}
	return -1
}
