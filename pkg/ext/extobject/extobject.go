// Package extobject provides value converters that reshape objects. Every
// converter returns a new object and leaves its input untouched.
package extobject

import (
	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every object converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		Keys(),
		Values(),
		Pairs(),
		FromPairs(),
		Pick(),
		Omit(),
		Merge(),
		Invert(),
		Size(),
		Rename(),
	}
}

func objectFunc(name string, fn func(o *observation.Object, args []interface{}) (interface{}, error)) resources.ConverterDef {
	return resources.ConverterDef{
		Name: name,
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			o, err := extutil.AsObject(name, value)
			if err != nil {
				return nil, err
			}
			return fn(o, args)
		}),
	}
}

// Keys returns the own property names in insertion order.
func Keys() resources.ConverterDef {
	return objectFunc("keys", func(o *observation.Object, _ []interface{}) (interface{}, error) {
		keys := o.Keys()
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return observation.NewArray(out...), nil
	})
}

// Values returns the own property values in insertion order.
func Values() resources.ConverterDef {
	return objectFunc("values", func(o *observation.Object, _ []interface{}) (interface{}, error) {
		keys := o.Keys()
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = o.Get(k)
		}
		return observation.NewArray(out...), nil
	})
}

// Pairs returns [key, value] arrays.
func Pairs() resources.ConverterDef {
	return objectFunc("pairs", func(o *observation.Object, _ []interface{}) (interface{}, error) {
		keys := o.Keys()
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = observation.NewArray(k, o.Get(k))
		}
		return observation.NewArray(out...), nil
	})
}

// FromPairs builds an object from [key, value] arrays.
func FromPairs() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "fromPairs",
		Converter: resources.ConverterFunc(func(value interface{}, _ ...interface{}) (interface{}, error) {
			items, err := extutil.AsArray("fromPairs", value)
			if err != nil {
				return nil, err
			}
			kv := make([]interface{}, 0, 2*len(items))
			for i, item := range items {
				pair, ok := observation.Unwrap(item).(*observation.Array)
				if !ok || pair.Len() == 0 {
					return nil, extutil.Errorf("fromPairs", "element %d is not a [key, value] pair", i)
				}
				kv = append(kv, ast.ToString(pair.At(0)), pair.At(1))
			}
			return build(kv), nil
		}),
	}
}

// build creates an object from key/value pairs. Later duplicates replace
// earlier values in place.
func build(kv []interface{}) *observation.Object {
	var order []string
	values := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k := kv[i].(string)
		if _, ok := values[k]; !ok {
			order = append(order, k)
		}
		values[k] = kv[i+1]
	}
	pairs := make([]interface{}, 0, 2*len(order))
	for _, k := range order {
		pairs = append(pairs, k, values[k])
	}
	return observation.ObjectOf(pairs...)
}

func keySet(args []interface{}) map[string]bool {
	set := make(map[string]bool, len(args))
	for _, a := range args {
		if arr, ok := observation.Unwrap(a).(*observation.Array); ok {
			for _, k := range arr.Items() {
				set[ast.ToString(k)] = true
			}
			continue
		}
		set[ast.ToString(a)] = true
	}
	return set
}

func filter(o *observation.Object, keep func(k string) bool) *observation.Object {
	var kv []interface{}
	for _, k := range o.Keys() {
		if keep(k) {
			kv = append(kv, k, o.Get(k))
		}
	}
	return observation.ObjectOf(kv...)
}

// Pick keeps the named properties: user | pick:'id':'name'. Arguments may
// also be arrays of names.
func Pick() resources.ConverterDef {
	return objectFunc("pick", func(o *observation.Object, args []interface{}) (interface{}, error) {
		set := keySet(args)
		return filter(o, func(k string) bool { return set[k] }), nil
	})
}

// Omit drops the named properties.
func Omit() resources.ConverterDef {
	return objectFunc("omit", func(o *observation.Object, args []interface{}) (interface{}, error) {
		set := keySet(args)
		return filter(o, func(k string) bool { return !set[k] }), nil
	})
}

// Merge deep-merges the arguments into a copy of the value. Nested objects
// merge recursively and everything else is replaced.
func Merge() resources.ConverterDef {
	return objectFunc("merge", func(o *observation.Object, args []interface{}) (interface{}, error) {
		out := o
		for i := range args {
			v := extutil.Arg(args, i)
			if types.IsNullish(v) {
				continue
			}
			src, err := extutil.AsObject("merge", v)
			if err != nil {
				return nil, err
			}
			out = merge(out, src)
		}
		return filter(out, func(string) bool { return true }), nil
	})
}

func merge(dst, src *observation.Object) *observation.Object {
	var kv []interface{}
	for _, k := range dst.Keys() {
		v := dst.Get(k)
		if src.HasOwn(k) {
			v = mergeValue(v, src.Get(k))
		}
		kv = append(kv, k, v)
	}
	for _, k := range src.Keys() {
		if !dst.HasOwn(k) {
			kv = append(kv, k, src.Get(k))
		}
	}
	return observation.ObjectOf(kv...)
}

func mergeValue(dst, src interface{}) interface{} {
	d, dok := observation.Unwrap(dst).(*observation.Object)
	s, sok := observation.Unwrap(src).(*observation.Object)
	if dok && sok {
		return merge(d, s)
	}
	return src
}

// Invert swaps keys and values. Values are converted to strings.
func Invert() resources.ConverterDef {
	return objectFunc("invert", func(o *observation.Object, _ []interface{}) (interface{}, error) {
		kv := make([]interface{}, 0, 2*o.Len())
		for _, k := range o.Keys() {
			kv = append(kv, ast.ToString(o.Get(k)), k)
		}
		return build(kv), nil
	})
}

// Size counts the own properties.
func Size() resources.ConverterDef {
	return objectFunc("size", func(o *observation.Object, _ []interface{}) (interface{}, error) {
		return float64(o.Len()), nil
	})
}

// Rename is value | rename:from:to. The renamed property keeps its place.
func Rename() resources.ConverterDef {
	return objectFunc("rename", func(o *observation.Object, args []interface{}) (interface{}, error) {
		from := ast.ToString(extutil.Arg(args, 0))
		to := ast.ToString(extutil.Arg(args, 1))
		kv := make([]interface{}, 0, 2*o.Len())
		for _, k := range o.Keys() {
			name := k
			if k == from {
				name = to
			}
			kv = append(kv, name, o.Get(k))
		}
		return build(kv), nil
	})
}
