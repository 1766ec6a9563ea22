package ast

import (
	"math"
	"strconv"
	"strings"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Truthy reports whether v counts as true in a condition.
func Truthy(v interface{}) bool {
	switch x := observation.Normalize(v).(type) {
	case nil, types.Null:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	}
	return true
}

// ToNumber converts v to a number the way arithmetic operators do.
func ToNumber(v interface{}) float64 {
	switch x := observation.Normalize(observation.Unwrap(v)).(type) {
	case nil:
		return math.NaN()
	case types.Null:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		return parseNumber(x)
	case *observation.Array:
		return parseNumber(ToString(x))
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	// ParseFloat accepts forms such as "inf", "0x1p3" and "1_000" that are not
	// numeric strings here.
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString converts v to a string the way string concatenation does.
func ToString(v interface{}) string {
	switch x := observation.Normalize(observation.Unwrap(v)).(type) {
	case nil:
		return "undefined"
	case types.Null:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatNumber(x)
	case *observation.Array:
		parts := make([]string, x.Len())
		for i, item := range x.Items() {
			if !types.IsNullish(item) {
				parts[i] = ToString(item)
			}
		}
		return strings.Join(parts, ",")
	case *observation.Object:
		return "[object Object]"
	case *observation.Map:
		return "[object Map]"
	case *observation.Set:
		return "[object Set]"
	case observation.Func:
		return "function () { [native code] }"
	case interface{ String() string }:
		return x.String()
	}
	return "[object Object]"
}

// FormatNumber formats f with the shortest representation that round-trips,
// using exponent notation only for very large or very small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	// Shortest digits d.ddd and decimal exponent e, value = 0.dddd * 10^n.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expPart, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mant, ".", "", 1)
	k := len(digits)
	n := exp + 1

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}
	e := n - 1
	expSign := "+"
	if e < 0 {
		expSign = "-"
		e = -e
	}
	out := digits[:1]
	if k > 1 {
		out += "." + digits[1:]
	}
	return sign + out + "e" + expSign + strconv.Itoa(e)
}

// TypeOf returns the typeof name of v.
func TypeOf(v interface{}) string {
	switch observation.Normalize(observation.Unwrap(v)).(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case observation.Func:
		return "function"
	}
	if isCallable(v) {
		return "function"
	}
	return "object"
}

// StrictEqual implements ===.
func StrictEqual(a, b interface{}) bool {
	a, b = observation.Normalize(observation.Unwrap(a)), observation.Normalize(observation.Unwrap(b))
	if fa, ok := a.(float64); ok {
		fb, ok := b.(float64)
		return ok && fa == fb
	}
	return observation.SameValue(a, b)
}

// LooseEqual implements ==.
func LooseEqual(a, b interface{}) bool {
	a, b = observation.Normalize(observation.Unwrap(a)), observation.Normalize(observation.Unwrap(b))
	if types.IsNullish(a) || types.IsNullish(b) {
		return types.IsNullish(a) && types.IsNullish(b)
	}
	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x == y
		case string, bool:
			return x == ToNumber(y)
		}
		if !isPrimitive(b) {
			return LooseEqual(x, toPrimitive(b))
		}
	case string:
		switch y := b.(type) {
		case string:
			return x == y
		case float64, bool:
			return ToNumber(x) == ToNumber(y)
		}
		if !isPrimitive(b) {
			return x == toPrimitive(b)
		}
	case bool:
		return LooseEqual(ToNumber(x), b)
	default:
		if isPrimitive(b) {
			return LooseEqual(b, a)
		}
	}
	return StrictEqual(a, b)
}

func isPrimitive(v interface{}) bool {
	switch v.(type) {
	case nil, types.Null, bool, float64, string:
		return true
	}
	return false
}

// toPrimitive converts an object to the primitive used in comparisons.
func toPrimitive(v interface{}) interface{} {
	if isPrimitive(v) {
		return v
	}
	return ToString(v)
}

// compare orders a and b for the relational operators. ok is false when the
// operands are not ordered (a NaN is involved).
func compare(a, b interface{}) (c int, ok bool) {
	pa := toPrimitive(observation.Normalize(observation.Unwrap(a)))
	pb := toPrimitive(observation.Normalize(observation.Unwrap(b)))
	if sa, isStr := pa.(string); isStr {
		if sb, isStr := pb.(string); isStr {
			return strings.Compare(sa, sb), true
		}
	}
	x, y := ToNumber(pa), ToNumber(pb)
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return 0, false
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

// add implements + between two already evaluated operands.
func add(a, b interface{}) interface{} {
	pa := toPrimitive(observation.Normalize(observation.Unwrap(a)))
	pb := toPrimitive(observation.Normalize(observation.Unwrap(b)))
	_, sa := pa.(string)
	_, sb := pb.(string)
	if sa || sb {
		return ToString(pa) + ToString(pb)
	}
	return ToNumber(pa) + ToNumber(pb)
}

// looseAdd is + outside strict mode: when one operand is falsy, a number on
// either side makes the falsy side count as 0, otherwise a string on either
// side makes it count as the empty string.
func looseAdd(a, b interface{}) interface{} {
	a, b = observation.Normalize(a), observation.Normalize(b)
	if !Truthy(a) || !Truthy(b) {
		_, na := a.(float64)
		_, nb := b.(float64)
		if na || nb {
			return add(orDefault(a, 0.0), orDefault(b, 0.0))
		}
		_, sa := a.(string)
		_, sb := b.(string)
		if sa || sb {
			return add(orDefault(a, ""), orDefault(b, ""))
		}
	}
	return add(a, b)
}

func orDefault(v, def interface{}) interface{} {
	if Truthy(v) {
		return v
	}
	return def
}

// keyOf converts an evaluated key to a property name.
func keyOf(v interface{}) string {
	switch x := observation.Normalize(v).(type) {
	case string:
		return x
	case float64:
		return FormatNumber(x)
	}
	return ToString(v)
}
