// Package extarray provides array value converters: slicing, set
// operations and keyed aggregation.
//
// Keyed converters take either a property name or a function of the item:
//
//	orders | groupBy:'status'
//	orders | sumBy:(o => o.qty * o.price)
package extarray

import (
	"math"
	"sort"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every array converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		First(),
		Last(),
		Take(),
		Skip(),
		Flatten(),
		Chunk(),
		Window(),
		Unique(),
		Union(),
		Intersection(),
		Difference(),
		Range(),
		SortBy(),
		GroupBy(),
		CountBy(),
		SumBy(),
		MinBy(),
		MaxBy(),
	}
}

// arrayFunc adapts fn to a converter over array values. Nullish values
// pass through.
func arrayFunc(name string, fn func(items []interface{}, args []interface{}) (interface{}, error)) resources.ConverterDef {
	return resources.ConverterDef{
		Name: name,
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			items, err := extutil.AsArray(name, value)
			if err != nil {
				return nil, err
			}
			return fn(items, args)
		}),
	}
}

func newArray(items []interface{}) *observation.Array {
	out := make([]interface{}, len(items))
	copy(out, items)
	return observation.NewArray(out...)
}

func count(name string, args []interface{}, i int) (int, error) {
	n, err := extutil.AsInt(name, extutil.Arg(args, i))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, extutil.Errorf(name, "count must not be negative")
	}
	return n, nil
}

// First returns the first item, or undefined for an empty array.
func First() resources.ConverterDef {
	return arrayFunc("first", func(items []interface{}, _ []interface{}) (interface{}, error) {
		if len(items) == 0 {
			return nil, nil
		}
		return items[0], nil
	})
}

// Last returns the last item, or undefined for an empty array.
func Last() resources.ConverterDef {
	return arrayFunc("last", func(items []interface{}, _ []interface{}) (interface{}, error) {
		if len(items) == 0 {
			return nil, nil
		}
		return items[len(items)-1], nil
	})
}

// Take is items | take:n.
func Take() resources.ConverterDef {
	return arrayFunc("take", func(items []interface{}, args []interface{}) (interface{}, error) {
		n, err := count("take", args, 0)
		if err != nil {
			return nil, err
		}
		if n > len(items) {
			n = len(items)
		}
		return newArray(items[:n]), nil
	})
}

// Skip is items | skip:n.
func Skip() resources.ConverterDef {
	return arrayFunc("skip", func(items []interface{}, args []interface{}) (interface{}, error) {
		n, err := count("skip", args, 0)
		if err != nil {
			return nil, err
		}
		if n > len(items) {
			n = len(items)
		}
		return newArray(items[n:]), nil
	})
}

// Flatten is items | flatten[:depth]. The depth defaults to 1.
func Flatten() resources.ConverterDef {
	return arrayFunc("flatten", func(items []interface{}, args []interface{}) (interface{}, error) {
		depth := 1
		if extutil.Arg(args, 0) != nil {
			var err error
			if depth, err = count("flatten", args, 0); err != nil {
				return nil, err
			}
		}
		return observation.NewArray(flatten(items, depth)...), nil
	})
}

func flatten(items []interface{}, depth int) []interface{} {
	var out []interface{}
	for _, item := range items {
		if a, ok := observation.Unwrap(item).(*observation.Array); ok && depth > 0 {
			out = append(out, flatten(a.Items(), depth-1)...)
			continue
		}
		out = append(out, item)
	}
	return out
}

// Chunk is items | chunk:size.
func Chunk() resources.ConverterDef {
	return arrayFunc("chunk", func(items []interface{}, args []interface{}) (interface{}, error) {
		size, err := count("chunk", args, 0)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return nil, extutil.Errorf("chunk", "size must be positive")
		}
		var chunks []interface{}
		for i := 0; i < len(items); i += size {
			end := i + size
			if end > len(items) {
				end = len(items)
			}
			chunks = append(chunks, newArray(items[i:end]))
		}
		return observation.NewArray(chunks...), nil
	})
}

// Window is items | window:size[:step]. Incomplete trailing windows are
// dropped. The step defaults to 1.
func Window() resources.ConverterDef {
	return arrayFunc("window", func(items []interface{}, args []interface{}) (interface{}, error) {
		size, err := count("window", args, 0)
		if err != nil {
			return nil, err
		}
		step := 1
		if extutil.Arg(args, 1) != nil {
			if step, err = count("window", args, 1); err != nil {
				return nil, err
			}
		}
		if size == 0 || step == 0 {
			return nil, extutil.Errorf("window", "size and step must be positive")
		}
		var out []interface{}
		for i := 0; i+size <= len(items); i += step {
			out = append(out, newArray(items[i:i+size]))
		}
		return observation.NewArray(out...), nil
	})
}

func unique(items []interface{}) []interface{} {
	var out []interface{}
	for _, item := range items {
		if extutil.IndexOf(out, item) < 0 {
			out = append(out, item)
		}
	}
	return out
}

// Unique drops repeated items, keeping the first.
func Unique() resources.ConverterDef {
	return arrayFunc("unique", func(items []interface{}, _ []interface{}) (interface{}, error) {
		return observation.NewArray(unique(items)...), nil
	})
}

func other(name string, args []interface{}) ([]interface{}, error) {
	v := extutil.Arg(args, 0)
	if types.IsNullish(v) {
		return nil, nil
	}
	return extutil.AsArray(name, v)
}

// Union is items | union:other.
func Union() resources.ConverterDef {
	return arrayFunc("union", func(items []interface{}, args []interface{}) (interface{}, error) {
		o, err := other("union", args)
		if err != nil {
			return nil, err
		}
		all := append(append([]interface{}{}, items...), o...)
		return observation.NewArray(unique(all)...), nil
	})
}

// Intersection is items | intersection:other.
func Intersection() resources.ConverterDef {
	return arrayFunc("intersection", func(items []interface{}, args []interface{}) (interface{}, error) {
		o, err := other("intersection", args)
		if err != nil {
			return nil, err
		}
		var out []interface{}
		for _, item := range unique(items) {
			if extutil.IndexOf(o, item) >= 0 {
				out = append(out, item)
			}
		}
		return observation.NewArray(out...), nil
	})
}

// Difference is items | difference:other, the items not in other.
func Difference() resources.ConverterDef {
	return arrayFunc("difference", func(items []interface{}, args []interface{}) (interface{}, error) {
		o, err := other("difference", args)
		if err != nil {
			return nil, err
		}
		var out []interface{}
		for _, item := range unique(items) {
			if extutil.IndexOf(o, item) < 0 {
				out = append(out, item)
			}
		}
		return observation.NewArray(out...), nil
	})
}

// Range turns a count into [0, 1, ..., n-1]: 3 | range. An optional
// argument sets the start and a second one the step.
func Range() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "range",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			n, err := extutil.AsInt("range", value)
			if err != nil {
				return nil, err
			}
			start, step := 0.0, 1.0
			if v := extutil.Arg(args, 0); v != nil {
				if start, err = extutil.AsNumber("range", v); err != nil {
					return nil, err
				}
			}
			if v := extutil.Arg(args, 1); v != nil {
				if step, err = extutil.AsNumber("range", v); err != nil {
					return nil, err
				}
			}
			if n < 0 || n > 1<<20 {
				return nil, extutil.Errorf("range", "count %d out of range", n)
			}
			out := make([]interface{}, n)
			for i := range out {
				out[i] = start + float64(i)*step
			}
			return observation.NewArray(out...), nil
		}),
	}
}

type keyed struct {
	item interface{}
	key  interface{}
}

func keys(name string, items []interface{}, args []interface{}) ([]keyed, error) {
	sel, err := extutil.Selector(name, extutil.Arg(args, 0))
	if err != nil {
		return nil, err
	}
	out := make([]keyed, len(items))
	for i, item := range items {
		k, err := sel(item)
		if err != nil {
			return nil, err
		}
		out[i] = keyed{item: item, key: observation.Unwrap(k)}
	}
	return out, nil
}

// SortBy is items | sortBy:key[:'desc']. Numbers sort numerically, other
// keys by their string form, and undefined keys last. The sort is stable.
func SortBy() resources.ConverterDef {
	return arrayFunc("sortBy", func(items []interface{}, args []interface{}) (interface{}, error) {
		ks, err := keys("sortBy", items, args)
		if err != nil {
			return nil, err
		}
		desc := ast.ToString(extutil.Arg(args, 1)) == "desc"
		sort.SliceStable(ks, func(i, j int) bool {
			c := compare(ks[i].key, ks[j].key)
			if desc {
				return c > 0
			}
			return c < 0
		})
		out := make([]interface{}, len(ks))
		for i, k := range ks {
			out[i] = k.item
		}
		return observation.NewArray(out...), nil
	})
}

func compare(a, b interface{}) int {
	an, bn := types.IsNullish(a), types.IsNullish(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	fa, aok := observation.Normalize(a).(float64)
	fb, bok := observation.Normalize(b).(float64)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := ast.ToString(a), ast.ToString(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// groups buckets items by the string form of their key, in order of first
// appearance.
func groups(name string, items []interface{}, args []interface{}) ([]string, map[string][]interface{}, error) {
	ks, err := keys(name, items, args)
	if err != nil {
		return nil, nil, err
	}
	var order []string
	buckets := make(map[string][]interface{})
	for _, k := range ks {
		key := ast.ToString(k.key)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], k.item)
	}
	return order, buckets, nil
}

// GroupBy returns an object mapping each key to the array of its items.
func GroupBy() resources.ConverterDef {
	return arrayFunc("groupBy", func(items []interface{}, args []interface{}) (interface{}, error) {
		order, buckets, err := groups("groupBy", items, args)
		if err != nil {
			return nil, err
		}
		kv := make([]interface{}, 0, 2*len(order))
		for _, k := range order {
			kv = append(kv, k, observation.NewArray(buckets[k]...))
		}
		return observation.ObjectOf(kv...), nil
	})
}

// CountBy returns an object mapping each key to the number of its items.
func CountBy() resources.ConverterDef {
	return arrayFunc("countBy", func(items []interface{}, args []interface{}) (interface{}, error) {
		order, buckets, err := groups("countBy", items, args)
		if err != nil {
			return nil, err
		}
		kv := make([]interface{}, 0, 2*len(order))
		for _, k := range order {
			kv = append(kv, k, float64(len(buckets[k])))
		}
		return observation.ObjectOf(kv...), nil
	})
}

// SumBy adds up the keys of all items.
func SumBy() resources.ConverterDef {
	return arrayFunc("sumBy", func(items []interface{}, args []interface{}) (interface{}, error) {
		ks, err := keys("sumBy", items, args)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for _, k := range ks {
			n, err := extutil.AsNumber("sumBy", k.key)
			if err != nil {
				return nil, err
			}
			sum += n
		}
		return sum, nil
	})
}

func extreme(name string, better func(a, b float64) bool) resources.ConverterDef {
	return arrayFunc(name, func(items []interface{}, args []interface{}) (interface{}, error) {
		ks, err := keys(name, items, args)
		if err != nil {
			return nil, err
		}
		var best interface{}
		bestKey, found := math.NaN(), false
		for _, k := range ks {
			n, err := extutil.AsNumber(name, k.key)
			if err != nil {
				return nil, err
			}
			if !found || better(n, bestKey) {
				best, bestKey, found = k.item, n, true
			}
		}
		return best, nil
	})
}

// MinBy returns the first item with the smallest key.
func MinBy() resources.ConverterDef {
	return extreme("minBy", func(a, b float64) bool { return a < b })
}

// MaxBy returns the first item with the largest key.
func MaxBy() resources.ConverterDef {
	return extreme("maxBy", func(a, b float64) bool { return a > b })
}
