package ast

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

type method func(this interface{}, args []interface{}) (interface{}, error)

// arrayReads are the array methods whose result depends on every element.
// Calling one of them observes the whole array.
var arrayReads = map[string]bool{
	"at": true, "map": true, "filter": true, "includes": true, "indexOf": true,
	"lastIndexOf": true, "findIndex": true, "find": true, "flat": true,
	"flatMap": true, "join": true, "reduce": true, "reduceRight": true,
	"slice": true, "every": true, "some": true, "sort": true,
}

var keyedReads = map[string]bool{
	"get": true, "has": true, "keys": true, "values": true, "entries": true, "forEach": true,
}

func observesCollection(c observation.Collection, name string) bool {
	switch c.CollectionKind() {
	case observation.KindArray:
		return arrayReads[name]
	default:
		return keyedReads[name]
	}
}

var (
	arrayMethods  map[string]method
	stringMethods map[string]method
	mapMethods    map[string]method
	setMethods    map[string]method
	numberMethods map[string]method
)

func init() {
	arrayMethods = map[string]method{
		"at":          arrayAt,
		"concat":      arrayConcat,
		"every":       arrayEvery,
		"filter":      arrayFilter,
		"find":        arrayFind,
		"findIndex":   arrayFindIndex,
		"flat":        arrayFlat,
		"flatMap":     arrayFlatMap,
		"forEach":     arrayForEach,
		"includes":    arrayIncludes,
		"indexOf":     arrayIndexOf,
		"join":        arrayJoin,
		"lastIndexOf": arrayLastIndexOf,
		"map":         arrayMap,
		"pop":         arrayPop,
		"push":        arrayPush,
		"reduce":      arrayReduce,
		"reduceRight": arrayReduceRight,
		"reverse":     arrayReverse,
		"shift":       arrayShift,
		"slice":       arraySlice,
		"some":        arraySome,
		"sort":        arraySort,
		"splice":      arraySplice,
		"unshift":     arrayUnshift,
	}
	stringMethods = map[string]method{
		"charAt":      stringCharAt,
		"endsWith":    stringEndsWith,
		"includes":    stringIncludes,
		"indexOf":     stringIndexOf,
		"padEnd":      stringPadEnd,
		"padStart":    stringPadStart,
		"repeat":      stringRepeat,
		"replace":     stringReplace,
		"slice":       stringSlice,
		"split":       stringSplit,
		"startsWith":  stringStartsWith,
		"substring":   stringSubstring,
		"toLowerCase": stringFunc(strings.ToLower),
		"toString":    stringFunc(func(s string) string { return s }),
		"toUpperCase": stringFunc(strings.ToUpper),
		"trim":        stringFunc(strings.TrimSpace),
		"trimEnd":     stringFunc(func(s string) string { return strings.TrimRight(s, " \t\n\r\v\f") }),
		"trimStart":   stringFunc(func(s string) string { return strings.TrimLeft(s, " \t\n\r\v\f") }),
	}
	mapMethods = map[string]method{
		"clear":   mapClear,
		"delete":  mapDelete,
		"entries": mapEntries,
		"forEach": mapForEach,
		"get":     mapGet,
		"has":     mapHas,
		"keys":    mapKeys,
		"set":     mapSet,
		"values":  mapValues,
	}
	setMethods = map[string]method{
		"add":     setAdd,
		"clear":   setClear,
		"delete":  setDelete,
		"forEach": setForEach,
		"has":     setHas,
		"values":  setValues,
		"keys":    setValues,
	}
	numberMethods = map[string]method{
		"toFixed":  numberToFixed,
		"toString": numberToString,
	}
}

// builtin returns the built-in method name of obj, bound to obj.
func builtin(obj interface{}, name string) (observation.Func, bool) {
	raw := observation.Normalize(observation.Unwrap(obj))
	var table map[string]method
	switch raw.(type) {
	case *observation.Array:
		table = arrayMethods
	case string:
		table = stringMethods
	case *observation.Map:
		table = mapMethods
	case *observation.Set:
		table = setMethods
	case float64:
		table = numberMethods
	default:
		return nil, false
	}
	m, ok := table[name]
	if !ok {
		return nil, false
	}
	return func(_ interface{}, args ...interface{}) (interface{}, error) {
		return m(raw, args)
	}, true
}

func arg(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// intArg converts args[i] to an integer index, def when missing.
func intArg(args []interface{}, i, def int) int {
	v := arg(args, i)
	if v == nil {
		return def
	}
	n := ToNumber(v)
	switch {
	case math.IsNaN(n):
		return 0
	case math.IsInf(n, 1) || n > math.MaxInt32:
		return math.MaxInt32
	case math.IsInf(n, -1) || n < math.MinInt32:
		return math.MinInt32
	}
	return int(n)
}

// relIndex resolves a possibly negative index against length, clamped to
// [0, length].
func relIndex(i, length int) int {
	if i < 0 {
		i += length
		if i < 0 {
			return 0
		}
	}
	if i > length {
		return length
	}
	return i
}

func callback(args []interface{}) (interface{}, error) {
	fn := arg(args, 0)
	if !isCallable(fn) {
		return nil, types.Errorf(types.ErrInvokeNonFunction, "%s is not a function", ToString(fn))
	}
	return fn, nil
}

// eachItem calls fn(item, index, array) for every element, stopping when
// stop reports true for the result.
func eachItem(a *observation.Array, args []interface{}, stop func(i int, item, ret interface{}) bool) error {
	fn, err := callback(args)
	if err != nil {
		return err
	}
	items := append([]interface{}(nil), a.Items()...)
	for i, item := range items {
		ret, err := invoke(fn, nil, []interface{}{item, float64(i), a})
		if err != nil {
			return err
		}
		if stop != nil && stop(i, item, ret) {
			return nil
		}
	}
	return nil
}

func arrayAt(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	i := intArg(args, 0, 0)
	if i < 0 {
		i += a.Len()
	}
	return a.At(i), nil
}

func arrayConcat(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	out := append([]interface{}(nil), a.Items()...)
	for _, v := range args {
		if other, ok := observation.Unwrap(v).(*observation.Array); ok {
			out = append(out, other.Items()...)
			continue
		}
		out = append(out, v)
	}
	return observation.NewArray(out...), nil
}

func arrayEvery(this interface{}, args []interface{}) (interface{}, error) {
	result := true
	err := eachItem(this.(*observation.Array), args, func(_ int, _, ret interface{}) bool {
		if !Truthy(ret) {
			result = false
			return true
		}
		return false
	})
	return result, err
}

func arraySome(this interface{}, args []interface{}) (interface{}, error) {
	result := false
	err := eachItem(this.(*observation.Array), args, func(_ int, _, ret interface{}) bool {
		if Truthy(ret) {
			result = true
			return true
		}
		return false
	})
	return result, err
}

func arrayFilter(this interface{}, args []interface{}) (interface{}, error) {
	var out []interface{}
	err := eachItem(this.(*observation.Array), args, func(_ int, item, ret interface{}) bool {
		if Truthy(ret) {
			out = append(out, item)
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	return observation.NewArray(out...), nil
}

func arrayFind(this interface{}, args []interface{}) (interface{}, error) {
	var found interface{}
	err := eachItem(this.(*observation.Array), args, func(_ int, item, ret interface{}) bool {
		if Truthy(ret) {
			found = item
			return true
		}
		return false
	})
	return found, err
}

func arrayFindIndex(this interface{}, args []interface{}) (interface{}, error) {
	found := -1
	err := eachItem(this.(*observation.Array), args, func(i int, _, ret interface{}) bool {
		if Truthy(ret) {
			found = i
			return true
		}
		return false
	})
	return float64(found), err
}

func arrayForEach(this interface{}, args []interface{}) (interface{}, error) {
	return nil, eachItem(this.(*observation.Array), args, nil)
}

func arrayMap(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	out := make([]interface{}, 0, a.Len())
	err := eachItem(a, args, func(_ int, _, ret interface{}) bool {
		out = append(out, ret)
		return false
	})
	if err != nil {
		return nil, err
	}
	return observation.NewArray(out...), nil
}

func flatten(items []interface{}, depth int, out []interface{}) []interface{} {
	for _, item := range items {
		if inner, ok := observation.Unwrap(item).(*observation.Array); ok && depth > 0 {
			out = flatten(inner.Items(), depth-1, out)
			continue
		}
		out = append(out, item)
	}
	return out
}

func arrayFlat(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	return observation.NewArray(flatten(a.Items(), intArg(args, 0, 1), nil)...), nil
}

func arrayFlatMap(this interface{}, args []interface{}) (interface{}, error) {
	mapped, err := arrayMap(this, args)
	if err != nil {
		return nil, err
	}
	return observation.NewArray(flatten(mapped.(*observation.Array).Items(), 1, nil)...), nil
}

func arrayIncludes(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	target := arg(args, 0)
	for _, item := range a.Items()[relIndex(intArg(args, 1, 0), a.Len()):] {
		if observation.SameValue(observation.Unwrap(item), observation.Unwrap(target)) {
			return true, nil
		}
	}
	return false, nil
}

func arrayIndexOf(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	target := arg(args, 0)
	items := a.Items()
	for i := relIndex(intArg(args, 1, 0), len(items)); i < len(items); i++ {
		if StrictEqual(items[i], target) {
			return float64(i), nil
		}
	}
	return float64(-1), nil
}

func arrayLastIndexOf(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	target := arg(args, 0)
	items := a.Items()
	from := len(items) - 1
	if len(args) > 1 {
		from = intArg(args, 1, from)
		if from < 0 {
			from += len(items)
		}
		if from >= len(items) {
			from = len(items) - 1
		}
	}
	for i := from; i >= 0; i-- {
		if StrictEqual(items[i], target) {
			return float64(i), nil
		}
	}
	return float64(-1), nil
}

func arrayJoin(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	sep := ","
	if v := arg(args, 0); v != nil {
		sep = ToString(v)
	}
	parts := make([]string, a.Len())
	for i, item := range a.Items() {
		if !types.IsNullish(item) {
			parts[i] = ToString(item)
		}
	}
	return strings.Join(parts, sep), nil
}

func reduce(a *observation.Array, args []interface{}, reverse bool) (interface{}, error) {
	fn, err := callback(args)
	if err != nil {
		return nil, err
	}
	items := append([]interface{}(nil), a.Items()...)
	order := make([]int, len(items))
	for i := range order {
		if reverse {
			order[i] = len(items) - 1 - i
		} else {
			order[i] = i
		}
	}
	var acc interface{}
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(order) == 0 {
			return nil, types.Errorf(types.ErrInvalidCollectionCall, "reduce of empty array with no initial value")
		}
		acc = items[order[0]]
		order = order[1:]
	}
	for _, i := range order {
		acc, err = invoke(fn, nil, []interface{}{acc, items[i], float64(i), a})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func arrayReduce(this interface{}, args []interface{}) (interface{}, error) {
	return reduce(this.(*observation.Array), args, false)
}

func arrayReduceRight(this interface{}, args []interface{}) (interface{}, error) {
	return reduce(this.(*observation.Array), args, true)
}

func arraySlice(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	n := a.Len()
	start := relIndex(intArg(args, 0, 0), n)
	end := relIndex(intArg(args, 1, n), n)
	if end < start {
		end = start
	}
	return observation.NewArray(append([]interface{}(nil), a.Items()[start:end]...)...), nil
}

func arraySort(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	fn := arg(args, 0)
	if fn == nil {
		return a.Sort(nil), nil
	}
	if !isCallable(fn) {
		return nil, types.Errorf(types.ErrInvalidCollectionCall, "sort comparator must be a function")
	}
	var firstErr error
	a.Sort(func(x, y interface{}) int {
		if firstErr != nil {
			return 0
		}
		ret, err := invoke(fn, nil, []interface{}{x, y})
		if err != nil {
			firstErr = err
			return 0
		}
		n := ToNumber(ret)
		switch {
		case n < 0:
			return -1
		case n > 0:
			return 1
		}
		return 0
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return a, nil
}

func arrayPush(this interface{}, args []interface{}) (interface{}, error) {
	return float64(this.(*observation.Array).Push(args...)), nil
}

func arrayPop(this interface{}, _ []interface{}) (interface{}, error) {
	return this.(*observation.Array).Pop(), nil
}

func arrayShift(this interface{}, _ []interface{}) (interface{}, error) {
	return this.(*observation.Array).Shift(), nil
}

func arrayUnshift(this interface{}, args []interface{}) (interface{}, error) {
	return float64(this.(*observation.Array).Unshift(args...)), nil
}

func arraySplice(this interface{}, args []interface{}) (interface{}, error) {
	a := this.(*observation.Array)
	start := intArg(args, 0, 0)
	count := a.Len()
	if len(args) > 1 {
		count = intArg(args, 1, 0)
		if count < 0 {
			count = 0
		}
	}
	var values []interface{}
	if len(args) > 2 {
		values = args[2:]
	}
	return a.Splice(start, count, values...), nil
}

func arrayReverse(this interface{}, _ []interface{}) (interface{}, error) {
	return this.(*observation.Array).Reverse(), nil
}

func stringFunc(fn func(string) string) method {
	return func(this interface{}, _ []interface{}) (interface{}, error) {
		return fn(this.(string)), nil
	}
}

func stringCharAt(this interface{}, args []interface{}) (interface{}, error) {
	r := []rune(this.(string))
	i := intArg(args, 0, 0)
	if i < 0 || i >= len(r) {
		return "", nil
	}
	return string(r[i]), nil
}

func stringIncludes(this interface{}, args []interface{}) (interface{}, error) {
	return strings.Contains(this.(string), ToString(arg(args, 0))), nil
}

func stringStartsWith(this interface{}, args []interface{}) (interface{}, error) {
	return strings.HasPrefix(this.(string), ToString(arg(args, 0))), nil
}

func stringEndsWith(this interface{}, args []interface{}) (interface{}, error) {
	return strings.HasSuffix(this.(string), ToString(arg(args, 0))), nil
}

func stringIndexOf(this interface{}, args []interface{}) (interface{}, error) {
	s := this.(string)
	i := strings.Index(s, ToString(arg(args, 0)))
	if i < 0 {
		return float64(-1), nil
	}
	return float64(utf8.RuneCountInString(s[:i])), nil
}

func stringSlice(this interface{}, args []interface{}) (interface{}, error) {
	r := []rune(this.(string))
	start := relIndex(intArg(args, 0, 0), len(r))
	end := relIndex(intArg(args, 1, len(r)), len(r))
	if end < start {
		return "", nil
	}
	return string(r[start:end]), nil
}

func stringSubstring(this interface{}, args []interface{}) (interface{}, error) {
	r := []rune(this.(string))
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i > len(r) {
			return len(r)
		}
		return i
	}
	start := clamp(intArg(args, 0, 0))
	end := clamp(intArg(args, 1, len(r)))
	if start > end {
		start, end = end, start
	}
	return string(r[start:end]), nil
}

func stringSplit(this interface{}, args []interface{}) (interface{}, error) {
	s := this.(string)
	sep := arg(args, 0)
	if sep == nil {
		return observation.NewArray(s), nil
	}
	parts := strings.Split(s, ToString(sep))
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return observation.NewArray(out...), nil
}

func stringReplace(this interface{}, args []interface{}) (interface{}, error) {
	return strings.Replace(this.(string), ToString(arg(args, 0)), ToString(arg(args, 1)), 1), nil
}

func stringRepeat(this interface{}, args []interface{}) (interface{}, error) {
	n := intArg(args, 0, 0)
	if n < 0 {
		return nil, types.Errorf(types.ErrInvalidArgument, "invalid repeat count %d", n)
	}
	return strings.Repeat(this.(string), n), nil
}

func pad(s string, args []interface{}, start bool) string {
	width := intArg(args, 0, 0)
	fill := " "
	if v := arg(args, 1); v != nil {
		fill = ToString(v)
	}
	missing := width - utf8.RuneCountInString(s)
	if missing <= 0 || fill == "" {
		return s
	}
	padding := []rune(strings.Repeat(fill, missing/utf8.RuneCountInString(fill)+1))[:missing]
	if start {
		return string(padding) + s
	}
	return s + string(padding)
}

func stringPadStart(this interface{}, args []interface{}) (interface{}, error) {
	return pad(this.(string), args, true), nil
}

func stringPadEnd(this interface{}, args []interface{}) (interface{}, error) {
	return pad(this.(string), args, false), nil
}

func mapGet(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Map).Get(arg(args, 0)), nil
}

func mapHas(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Map).Has(arg(args, 0)), nil
}

func mapSet(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Map).Set(arg(args, 0), arg(args, 1)), nil
}

func mapDelete(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Map).Delete(arg(args, 0)), nil
}

func mapClear(this interface{}, _ []interface{}) (interface{}, error) {
	this.(*observation.Map).Clear()
	return nil, nil
}

func mapKeys(this interface{}, _ []interface{}) (interface{}, error) {
	return observation.NewArray(this.(*observation.Map).Keys()...), nil
}

func mapValues(this interface{}, _ []interface{}) (interface{}, error) {
	m := this.(*observation.Map)
	keys := m.Keys()
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = m.Get(k)
	}
	return observation.NewArray(out...), nil
}

func mapEntries(this interface{}, _ []interface{}) (interface{}, error) {
	m := this.(*observation.Map)
	keys := m.Keys()
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		out[i] = observation.NewArray(k, m.Get(k))
	}
	return observation.NewArray(out...), nil
}

func mapForEach(this interface{}, args []interface{}) (interface{}, error) {
	fn, err := callback(args)
	if err != nil {
		return nil, err
	}
	m := this.(*observation.Map)
	for _, k := range m.Keys() {
		if _, err := invoke(fn, nil, []interface{}{m.Get(k), k, m}); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func setAdd(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Set).Add(arg(args, 0)), nil
}

func setHas(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Set).Has(arg(args, 0)), nil
}

func setDelete(this interface{}, args []interface{}) (interface{}, error) {
	return this.(*observation.Set).Delete(arg(args, 0)), nil
}

func setClear(this interface{}, _ []interface{}) (interface{}, error) {
	this.(*observation.Set).Clear()
	return nil, nil
}

func setValues(this interface{}, _ []interface{}) (interface{}, error) {
	return observation.NewArray(this.(*observation.Set).Values()...), nil
}

func setForEach(this interface{}, args []interface{}) (interface{}, error) {
	fn, err := callback(args)
	if err != nil {
		return nil, err
	}
	s := this.(*observation.Set)
	for _, v := range s.Values() {
		if _, err := invoke(fn, nil, []interface{}{v, v, s}); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func numberToFixed(this interface{}, args []interface{}) (interface{}, error) {
	digits := intArg(args, 0, 0)
	if digits < 0 || digits > 100 {
		return nil, types.Errorf(types.ErrInvalidArgument, "toFixed() digits argument must be between 0 and 100")
	}
	f := this.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f), nil
	}
	return strconv.FormatFloat(f, 'f', digits, 64), nil
}

func numberToString(this interface{}, args []interface{}) (interface{}, error) {
	f := this.(float64)
	radix := intArg(args, 0, 10)
	if radix == 10 || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return FormatNumber(f), nil
	}
	if radix < 2 || radix > 36 {
		return nil, types.Errorf(types.ErrInvalidArgument, "toString() radix must be between 2 and 36")
	}
	return strconv.FormatInt(int64(f), radix), nil
}
