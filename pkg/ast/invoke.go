package ast

import (
	"reflect"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func isCallable(v interface{}) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(observation.Func); ok {
		return true
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

// invoke calls fn with this as receiver. Plain Go functions are called by
// reflection: arguments are converted to the parameter types and a trailing
// error result is returned as the call error.
func invoke(fn interface{}, this interface{}, args []interface{}) (interface{}, error) {
	if f, ok := fn.(observation.Func); ok {
		return f(this, args...)
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, types.Errorf(types.ErrInvokeNonFunction, "%s is not a function", TypeOf(fn))
	}
	in, err := reflectArgs(rv.Type(), args)
	if err != nil {
		return nil, err
	}
	out := rv.Call(in)
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if rv.Type().Out(0) == errorType {
			if e, _ := out[0].Interface().(error); e != nil {
				return nil, e
			}
			return nil, nil
		}
		return observation.Normalize(out[0].Interface()), nil
	default:
		last := out[len(out)-1]
		if rv.Type().Out(len(out)-1) == errorType {
			if e, _ := last.Interface().(error); e != nil {
				return nil, e
			}
		}
		return observation.Normalize(out[0].Interface()), nil
	}
}

func reflectArgs(t reflect.Type, args []interface{}) ([]reflect.Value, error) {
	n := t.NumIn()
	fixed := n
	if t.IsVariadic() {
		fixed = n - 1
	}
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < fixed; i++ {
		var arg interface{}
		if i < len(args) {
			arg = args[i]
		}
		v, err := convertArg(arg, t.In(i))
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	if t.IsVariadic() {
		elem := t.In(n - 1).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convertArg(args[i], elem)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
		}
	}
	return in, nil
}

func convertArg(arg interface{}, t reflect.Type) (reflect.Value, error) {
	if types.IsNullish(arg) {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if f, ok := arg.(float64); ok {
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return reflect.ValueOf(f).Convert(t), nil
		}
	}
	if t.Kind() == reflect.String {
		return reflect.ValueOf(ToString(arg)).Convert(t), nil
	}
	if native := observation.ToNative(arg); native != nil && reflect.TypeOf(native).AssignableTo(t) {
		return reflect.ValueOf(native), nil
	}
	return reflect.Value{}, types.Errorf(types.ErrInvalidArgument,
		"cannot pass %s as %s", TypeOf(arg), t)
}
