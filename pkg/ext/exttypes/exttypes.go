// Package exttypes provides type predicates and fallback converters.
package exttypes

import (
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every type converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		predicate("isString", "string"),
		predicate("isNumber", "number"),
		predicate("isBoolean", "boolean"),
		predicate("isArray", "array"),
		predicate("isObject", "object"),
		predicate("isNull", "null"),
		predicate("isFunction", "function"),
		predicate("isUndefined", "undefined"),
		IsEmpty(),
		TypeOf(),
		Default(),
		Identity(),
	}
}

func predicate(name, typ string) resources.ConverterDef {
	return resources.ConverterDef{
		Name: name,
		Converter: resources.ConverterFunc(func(value interface{}, _ ...interface{}) (interface{}, error) {
			return extutil.TypeOf(value) == typ, nil
		}),
	}
}

// TypeOf names the type of the value: undefined, null, string, number,
// boolean, array, map, set, function or object.
func TypeOf() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "typeOf",
		Converter: resources.ConverterFunc(func(value interface{}, _ ...interface{}) (interface{}, error) {
			return extutil.TypeOf(value), nil
		}),
	}
}

// IsEmpty is true for nullish values, empty strings and empty collections.
func IsEmpty() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "isEmpty",
		Converter: resources.ConverterFunc(func(value interface{}, _ ...interface{}) (interface{}, error) {
			switch v := observation.Unwrap(value).(type) {
			case nil, types.Null:
				return true, nil
			case string:
				return v == "", nil
			case *observation.Array:
				return v.Len() == 0, nil
			case *observation.Object:
				return v.Len() == 0, nil
			case *observation.Map:
				return v.Len() == 0, nil
			case *observation.Set:
				return v.Len() == 0, nil
			}
			return false, nil
		}),
	}
}

// Default replaces nullish values: name | default:'anonymous'. Writes from
// the view pass through.
func Default() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "default",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return extutil.Arg(args, 0), nil
			}
			return value, nil
		}),
	}
}

// Identity returns the value unchanged in both directions.
func Identity() resources.ConverterDef {
	same := func(value interface{}, _ ...interface{}) (interface{}, error) { return value, nil }
	return resources.ConverterDef{
		Name:      "identity",
		Converter: resources.TwoWayConverter{To: same, From: same},
	}
}
