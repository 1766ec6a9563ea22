package ast

import (
	"math"
	"testing"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    interface{}
		want bool
	}{
		{"undefined", nil, false},
		{"null", types.NullValue, false},
		{"zero", 0.0, false},
		{"nan", math.NaN(), false},
		{"empty string", "", false},
		{"false", false, false},
		{"number", 2.0, true},
		{"int", 3, true},
		{"string", "0", true},
		{"empty array", observation.NewArray(), true},
		{"empty object", observation.NewObject(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		v    interface{}
		want float64
	}{
		{"null", types.NullValue, 0},
		{"true", true, 1},
		{"empty string", "", 0},
		{"spaces", "  12 ", 12},
		{"float", "1.5e2", 150},
		{"hex", "0x1F", 31},
		{"binary", "0b101", 5},
		{"infinity", "-Infinity", math.Inf(-1)},
		{"single element array", observation.NewArray(7.0), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToNumber(tt.v); got != tt.want {
				t.Errorf("ToNumber(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}

	for _, v := range []interface{}{nil, "abc", "1_000", "inf", observation.NewObject(), observation.NewArray(1.0, 2.0)} {
		if got := ToNumber(v); !math.IsNaN(got) {
			t.Errorf("ToNumber(%v) = %v, want NaN", v, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-42, "-42"},
		{0.1, "0.1"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e21, "1e+21"},
		{123456789012345680000, "123456789012345680000"},
		{0.000001, "0.000001"},
		{0.0000001, "1e-7"},
		{1.5e-10, "1.5e-10"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		v    interface{}
		want string
	}{
		{"undefined", nil, "undefined"},
		{"null", types.NullValue, "null"},
		{"bool", true, "true"},
		{"int", 5, "5"},
		{"array", observation.NewArray(1.0, nil, "a"), "1,,a"},
		{"object", observation.NewObject(), "[object Object]"},
		{"map", observation.NewMap(), "[object Map]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToString(tt.v); got != tt.want {
				t.Errorf("ToString = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEquality(t *testing.T) {
	obj := observation.NewObject()
	tests := []struct {
		name   string
		a, b   interface{}
		loose  bool
		strict bool
	}{
		{"same number", 1.0, 1.0, true, true},
		{"int and float", 1, 1.0, true, true},
		{"number and string", 1.0, "1", true, false},
		{"bool and number", true, 1.0, true, false},
		{"null and undefined", types.NullValue, nil, true, false},
		{"null and zero", types.NullValue, 0.0, false, false},
		{"nan", math.NaN(), math.NaN(), false, false},
		{"same object", obj, obj, true, true},
		{"different objects", obj, observation.NewObject(), false, false},
		{"array and string", observation.NewArray(1.0, 2.0), "1,2", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooseEqual(tt.a, tt.b); got != tt.loose {
				t.Errorf("LooseEqual = %v, want %v", got, tt.loose)
			}
			if got := StrictEqual(tt.a, tt.b); got != tt.strict {
				t.Errorf("StrictEqual = %v, want %v", got, tt.strict)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	fn := observation.Func(func(interface{}, ...interface{}) (interface{}, error) { return nil, nil })
	tests := []struct {
		v    interface{}
		want string
	}{
		{nil, "undefined"},
		{types.NullValue, "object"},
		{1.0, "number"},
		{"", "string"},
		{false, "boolean"},
		{fn, "function"},
		{func() {}, "function"},
		{observation.NewArray(), "object"},
	}
	for _, tt := range tests {
		if got := TypeOf(tt.v); got != tt.want {
			t.Errorf("TypeOf(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestLooseAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b interface{}
		want interface{}
	}{
		{"numbers", 1.0, 2.0, 3.0},
		{"strings", "a", "b", "ab"},
		{"number and undefined", 1.0, nil, 1.0},
		{"undefined and number", nil, 2.0, 2.0},
		{"string and null", "a", types.NullValue, "a"},
		{"zero and empty string", 0.0, "", 0.0},
		{"both undefined", nil, nil, math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := looseAdd(tt.a, tt.b)
			if w, ok := tt.want.(float64); ok && math.IsNaN(w) {
				if g, ok := got.(float64); !ok || !math.IsNaN(g) {
					t.Errorf("looseAdd = %v, want NaN", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("looseAdd = %#v, want %#v", got, tt.want)
			}
		})
	}
}
