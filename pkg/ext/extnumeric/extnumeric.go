// Package extnumeric provides numeric and statistical value converters.
package extnumeric

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every numeric converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		Number(),
		Round(),
		Fixed(),
		Sign(),
		Trunc(),
		Clamp(),
		Log(),
		Median(),
		Variance(),
		Stddev(),
		Percentile(),
		Mode(),
	}
}

func unary(name string, fn func(n float64, args []interface{}) (interface{}, error)) resources.ConverterDef {
	return resources.ConverterDef{
		Name: name,
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			n, err := extutil.AsNumber(name, value)
			if err != nil {
				return nil, err
			}
			return fn(n, args)
		}),
	}
}

func digits(name string, args []interface{}) (int, error) {
	v := extutil.Arg(args, 0)
	if v == nil {
		return 0, nil
	}
	d, err := extutil.AsInt(name, v)
	if err != nil {
		return 0, err
	}
	if d < 0 || d > 20 {
		return 0, extutil.Errorf(name, "digits must be between 0 and 20")
	}
	return d, nil
}

// Number shows a number as text and parses text typed into the view back
// into a number. Empty input reads as null.
func Number() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "number",
		Converter: resources.TwoWayConverter{
			To: func(value interface{}, _ ...interface{}) (interface{}, error) {
				if types.IsNullish(value) {
					return "", nil
				}
				return ast.ToString(value), nil
			},
			From: func(value interface{}, _ ...interface{}) (interface{}, error) {
				s := strings.TrimSpace(ast.ToString(value))
				if types.IsNullish(value) || s == "" {
					return types.NullValue, nil
				}
				n, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return nil, extutil.Errorf("number", "%q is not a number", s)
				}
				return n, nil
			},
		},
	}
}

// Round is value | round[:digits], rounding half away from zero.
func Round() resources.ConverterDef {
	return unary("round", func(n float64, args []interface{}) (interface{}, error) {
		d, err := digits("round", args)
		if err != nil {
			return nil, err
		}
		p := math.Pow10(d)
		return math.Round(n*p) / p, nil
	})
}

// Fixed formats with a fixed number of decimals: price | fixed:2.
func Fixed() resources.ConverterDef {
	return unary("fixed", func(n float64, args []interface{}) (interface{}, error) {
		d, err := digits("fixed", args)
		if err != nil {
			return nil, err
		}
		return strconv.FormatFloat(n, 'f', d, 64), nil
	})
}

// Sign returns -1, 0 or 1.
func Sign() resources.ConverterDef {
	return unary("sign", func(n float64, _ []interface{}) (interface{}, error) {
		switch {
		case n < 0:
			return float64(-1), nil
		case n > 0:
			return float64(1), nil
		}
		return float64(0), nil
	})
}

// Trunc truncates toward zero.
func Trunc() resources.ConverterDef {
	return unary("trunc", func(n float64, _ []interface{}) (interface{}, error) {
		return math.Trunc(n), nil
	})
}

// Clamp is value | clamp:min:max.
func Clamp() resources.ConverterDef {
	return unary("clamp", func(n float64, args []interface{}) (interface{}, error) {
		lo, err := extutil.AsNumber("clamp", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		hi, err := extutil.AsNumber("clamp", extutil.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		if lo > hi {
			return nil, extutil.Errorf("clamp", "min %v is greater than max %v", lo, hi)
		}
		return math.Min(math.Max(n, lo), hi), nil
	})
}

// Log is value | log[:base]. Without a base it is the natural logarithm.
func Log() resources.ConverterDef {
	return unary("log", func(n float64, args []interface{}) (interface{}, error) {
		if n <= 0 {
			return nil, extutil.Errorf("log", "argument must be positive")
		}
		v := extutil.Arg(args, 0)
		if v == nil {
			return math.Log(n), nil
		}
		base, err := extutil.AsNumber("log", v)
		if err != nil {
			return nil, err
		}
		if base <= 0 || base == 1 {
			return nil, extutil.Errorf("log", "base must be positive and not 1")
		}
		return math.Log(n) / math.Log(base), nil
	})
}

// aggregate applies fn to an array of numbers. Empty arrays give undefined.
func aggregate(name string, fn func(nums []float64, args []interface{}) (interface{}, error)) resources.ConverterDef {
	return resources.ConverterDef{
		Name: name,
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return nil, nil
			}
			nums, err := extutil.AsNumbers(name, value)
			if err != nil {
				return nil, err
			}
			if len(nums) == 0 {
				return nil, nil
			}
			return fn(nums, args)
		}),
	}
}

func sorted(nums []float64) []float64 {
	out := make([]float64, len(nums))
	copy(out, nums)
	sort.Float64s(out)
	return out
}

// Median of an array of numbers.
func Median() resources.ConverterDef {
	return aggregate("median", func(nums []float64, _ []interface{}) (interface{}, error) {
		s := sorted(nums)
		mid := len(s) / 2
		if len(s)%2 == 0 {
			return (s[mid-1] + s[mid]) / 2, nil
		}
		return s[mid], nil
	})
}

func variance(nums []float64) float64 {
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	mean := sum / float64(len(nums))
	v := 0.0
	for _, n := range nums {
		d := n - mean
		v += d * d
	}
	return v / float64(len(nums))
}

// Variance is the population variance.
func Variance() resources.ConverterDef {
	return aggregate("variance", func(nums []float64, _ []interface{}) (interface{}, error) {
		return variance(nums), nil
	})
}

// Stddev is the population standard deviation.
func Stddev() resources.ConverterDef {
	return aggregate("stddev", func(nums []float64, _ []interface{}) (interface{}, error) {
		return math.Sqrt(variance(nums)), nil
	})
}

// Percentile is values | percentile:p with p in [0, 100], interpolating
// linearly between ranks.
func Percentile() resources.ConverterDef {
	return aggregate("percentile", func(nums []float64, args []interface{}) (interface{}, error) {
		p, err := extutil.AsNumber("percentile", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if p < 0 || p > 100 {
			return nil, extutil.Errorf("percentile", "p must be between 0 and 100")
		}
		s := sorted(nums)
		idx := p / 100 * float64(len(s)-1)
		lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
		if lo == hi {
			return s[lo], nil
		}
		frac := idx - float64(lo)
		return s[lo]*(1-frac) + s[hi]*frac, nil
	})
}

// Mode returns the most frequent number, or an array of them in order of
// first appearance when several tie.
func Mode() resources.ConverterDef {
	return aggregate("mode", func(nums []float64, _ []interface{}) (interface{}, error) {
		counts := make(map[float64]int, len(nums))
		best := 0
		for _, n := range nums {
			counts[n]++
			if counts[n] > best {
				best = counts[n]
			}
		}
		var modes []interface{}
		for _, n := range nums {
			if counts[n] == best {
				modes = append(modes, n)
				counts[n] = -1
			}
		}
		if len(modes) == 1 {
			return modes[0], nil
		}
		return observation.NewArray(modes...), nil
	})
}
