package observation

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/sandrolain/gobinding/pkg/types"
)

// identity is a stable handle for a reference value, used as a side-table key.
type identity struct {
	typ reflect.Type
	ptr uintptr
}

// identityOf returns the identity handle of a reference value
// (pointer, map, slice, func or chan). Other values return themselves.
func identityOf(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return identity{typ: rv.Type(), ptr: rv.Pointer()}
	}
	return v
}

func isComparable(v interface{}) bool {
	if v == nil {
		return true
	}
	t := reflect.TypeOf(v)
	if !t.Comparable() {
		return false
	}
	// Structs and arrays may hold interfaces with non-comparable dynamic values.
	switch t.Kind() {
	case reflect.Struct, reflect.Array, reflect.Interface:
		return comparableValue(reflect.ValueOf(v))
	}
	return true
}

func comparableValue(rv reflect.Value) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = rv.Interface() == rv.Interface()
	return true
}

// SameValue reports whether a and b are the same value: NaN equals NaN and
// reference values compare by identity.
func SameValue(a, b interface{}) bool {
	if fa, ok := a.(float64); ok {
		fb, ok := b.(float64)
		if !ok {
			return false
		}
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if isComparable(a) && isComparable(b) {
		return a == b
	}
	return identityOf(a) == identityOf(b)
}

// toFloat converts any Go numeric value to float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Normalize converts Go numerics to float64 and leaves other values untouched.
func Normalize(v interface{}) interface{} {
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

// ArrayIndex parses key as a canonical array index.
func ArrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsObjectLike reports whether v can carry properties (everything except
// undefined, null and primitives).
func IsObjectLike(v interface{}) bool {
	switch v.(type) {
	case nil, types.Null, bool, float64, string:
		return false
	case *Object, *Array, *Map, *Set, Func, *ObjectProxy, *ArrayProxy, *MapProxy, *SetProxy:
		return true
	}
	if _, ok := toFloat(v); ok {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Pointer, reflect.Struct, reflect.Slice, reflect.Func:
		return true
	}
	return false
}

// GetProperty reads key from obj. Unknown keys and non-object receivers read
// as undefined (nil).
func GetProperty(obj interface{}, key string) interface{} {
	switch o := obj.(type) {
	case nil, types.Null:
		return nil
	case *Object:
		return o.Get(key)
	case *ObjectProxy:
		return o.Get(key)
	case *Array:
		if key == "length" {
			return float64(o.Len())
		}
		if i, ok := ArrayIndex(key); ok {
			return o.At(i)
		}
		return nil
	case *ArrayProxy:
		return GetProperty(o.raw, key)
	case *Map:
		if key == "size" {
			return float64(o.Len())
		}
		return nil
	case *Set:
		if key == "size" {
			return float64(o.Len())
		}
		return nil
	case string:
		if key == "length" {
			return float64(len([]rune(o)))
		}
		if i, ok := ArrayIndex(key); ok {
			r := []rune(o)
			if i < len(r) {
				return string(r[i])
			}
		}
		return nil
	case map[string]interface{}:
		return Normalize(o[key])
	}
	return getReflect(reflect.ValueOf(obj), key)
}

// SetProperty writes key on obj.
func SetProperty(obj interface{}, key string, value interface{}) error {
	switch o := obj.(type) {
	case *Object:
		return o.Set(key, value)
	case *ObjectProxy:
		return o.Set(key, value)
	case *Array:
		if key == "length" {
			n, _ := toFloat(value)
			o.SetLength(int(n))
			return nil
		}
		if i, ok := ArrayIndex(key); ok {
			o.SetAt(i, value)
			return nil
		}
	case *ArrayProxy:
		return SetProperty(o.raw, key, Unwrap(value))
	case map[string]interface{}:
		o[key] = value
		return nil
	}
	if setReflect(reflect.ValueOf(obj), key, value) {
		return nil
	}
	return types.Errorf(types.ErrNotObjectProperty, "cannot set property %q on %T", key, obj)
}

// HasProperty reports whether obj has an own or inherited property key.
func HasProperty(obj interface{}, key string) bool {
	switch o := obj.(type) {
	case nil, types.Null:
		return false
	case *Object:
		return o.Has(key)
	case *ObjectProxy:
		return o.raw.Has(key)
	case *Array:
		if key == "length" {
			return true
		}
		i, ok := ArrayIndex(key)
		return ok && i < o.Len()
	case *ArrayProxy:
		return HasProperty(o.raw, key)
	case *Map:
		return key == "size"
	case *Set:
		return key == "size"
	case map[string]interface{}:
		_, ok := o[key]
		return ok
	}
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		return rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).IsValid()
	case reflect.Struct:
		_, ok := structField(rv.Type(), key)
		if ok {
			return true
		}
	}
	return reflect.ValueOf(obj).MethodByName(key).IsValid()
}

// structField finds an exported field by name or by its json tag.
func structField(t reflect.Type, key string) (int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Name == key {
			return i, true
		}
		if tag := f.Tag.Get("json"); tag != "" {
			if name, _, _ := strings.Cut(tag, ","); name == key {
				return i, true
			}
		}
	}
	return 0, false
}

func getReflect(rv reflect.Value, key string) interface{} {
	orig := rv
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(kt))
		if !v.IsValid() {
			return nil
		}
		return Normalize(v.Interface())
	case reflect.Struct:
		if i, ok := structField(rv.Type(), key); ok {
			return Normalize(rv.Field(i).Interface())
		}
	case reflect.Slice, reflect.Array:
		if key == "length" {
			return float64(rv.Len())
		}
		if i, ok := ArrayIndex(key); ok && i < rv.Len() {
			return Normalize(rv.Index(i).Interface())
		}
		return nil
	}
	if m := orig.MethodByName(key); m.IsValid() {
		return m.Interface()
	}
	return nil
}

func setReflect(rv reflect.Value, key string, value interface{}) bool {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return false
		}
		v, ok := convertTo(value, rv.Type().Elem())
		if !ok {
			return false
		}
		rv.SetMapIndex(reflect.ValueOf(key).Convert(kt), v)
		return true
	case reflect.Struct:
		i, ok := structField(rv.Type(), key)
		if !ok || !rv.Field(i).CanSet() {
			return false
		}
		v, ok := convertTo(value, rv.Field(i).Type())
		if !ok {
			return false
		}
		rv.Field(i).Set(v)
		return true
	}
	return false
}

func convertTo(value interface{}, t reflect.Type) (reflect.Value, bool) {
	if value == nil {
		return reflect.Zero(t), true
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, true
	}
	if v.Type().ConvertibleTo(t) {
		switch t.Kind() {
		case reflect.String:
			if v.Kind() != reflect.String {
				return reflect.Value{}, false
			}
		}
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}

// FromValue converts plain Go data (as produced by encoding/json or yaml.v3)
// into observable values: maps become *Object, slices become *Array and
// numbers become float64. Observable values are returned unchanged.
func FromValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return types.NullValue
	case *Object, *Array, *Map, *Set, Func, types.Null, string, bool, float64:
		return v
	case map[string]interface{}:
		o := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.setRaw(k, FromValue(x[k]))
		}
		return o
	case map[interface{}]interface{}:
		o := NewObject()
		keys := make([]string, 0, len(x))
		vals := make(map[string]interface{}, len(x))
		for k, val := range x {
			ks := keyString(k)
			keys = append(keys, ks)
			vals[ks] = val
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.setRaw(k, FromValue(vals[k]))
		}
		return o
	case []interface{}:
		items := make([]interface{}, len(x))
		for i, item := range x {
			items[i] = FromValue(item)
		}
		return NewArray(items...)
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return v
}

// ToNative converts observable values back to plain Go data suitable for
// encoding: *Object and *Map become map[string]interface{}, *Array and *Set
// become []interface{}, and null becomes nil.
func ToNative(v interface{}) interface{} {
	switch x := Unwrap(v).(type) {
	case types.Null:
		return nil
	case *Object:
		m := make(map[string]interface{}, x.Len())
		for _, k := range x.keys {
			m[k] = ToNative(x.Get(k))
		}
		return m
	case *Array:
		out := make([]interface{}, x.Len())
		for i, item := range x.items {
			out[i] = ToNative(item)
		}
		return out
	case *Map:
		m := make(map[string]interface{}, x.Len())
		for _, k := range x.keys {
			m[keyString(k)] = ToNative(x.values[k])
		}
		return m
	case *Set:
		out := make([]interface{}, x.Len())
		for i, item := range x.items {
			out[i] = ToNative(item)
		}
		return out
	case Func:
		return nil
	}
	return v
}

func keyString(k interface{}) string {
	switch x := k.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	if f, ok := toFloat(k); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return reflect.TypeOf(k).String()
}
