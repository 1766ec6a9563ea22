// Package extdatetime provides date and time value converters.
//
// Dates are milliseconds since the Unix epoch. Converters also accept RFC
// 3339 strings as input.
package extdatetime

import (
	"math"
	"strings"
	"time"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every date converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		Date(),
		DateAdd(),
		DateDiff(),
		DateComponents(),
		DateStartOf(),
		DateEndOf(),
	}
}

// layouts maps layout names accepted by the date converter to Go layouts.
var layouts = map[string]string{
	"":         time.RFC3339,
	"rfc3339":  time.RFC3339,
	"date":     time.DateOnly,
	"time":     time.TimeOnly,
	"datetime": time.DateTime,
	"kitchen":  time.Kitchen,
}

func toTime(name string, v interface{}) (time.Time, error) {
	if s, ok := observation.Normalize(observation.Unwrap(v)).(string); ok {
		for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, extutil.Errorf(name, "cannot parse %q as a date", s)
	}
	ms, err := extutil.AsNumber(name, v)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func toMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func location(name string, v interface{}) (*time.Location, error) {
	if types.IsNullish(v) {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(ast.ToString(v))
	if err != nil {
		return nil, extutil.Errorf(name, "invalid timezone %q", ast.ToString(v)).WithCause(err)
	}
	return loc, nil
}

func dateFunc(name string, fn func(t time.Time, args []interface{}) (interface{}, error)) resources.ConverterDef {
	return resources.ConverterDef{
		Name: name,
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			t, err := toTime(name, value)
			if err != nil {
				return nil, err
			}
			return fn(t, args)
		}),
	}
}

// Date formats a date: created | date[:layout[:timezone]]. The layout is
// one of rfc3339, date, time, datetime or kitchen, or a Go reference
// layout. Writes from the view parse with the same layout back to
// milliseconds.
func Date() resources.ConverterDef {
	layoutOf := func(args []interface{}) string {
		l := ast.ToString(extutil.Arg(args, 0))
		if extutil.Arg(args, 0) == nil {
			l = ""
		}
		if std, ok := layouts[strings.ToLower(l)]; ok {
			return std
		}
		return l
	}
	to := dateFunc("date", func(t time.Time, args []interface{}) (interface{}, error) {
		loc, err := location("date", extutil.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		return t.In(loc).Format(layoutOf(args)), nil
	})
	from := func(value interface{}, args ...interface{}) (interface{}, error) {
		s := strings.TrimSpace(ast.ToString(value))
		if types.IsNullish(value) || s == "" {
			return types.NullValue, nil
		}
		loc, err := location("date", extutil.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation(layoutOf(args), s, loc)
		if err != nil {
			return nil, extutil.Errorf("date", "cannot parse %q", s).WithCause(err)
		}
		return toMillis(t), nil
	}
	return resources.ConverterDef{
		Name:      "date",
		Converter: resources.TwoWayConverter{To: to.Converter.ToView, From: from},
	}
}

// DateAdd is date | dateAdd:amount:unit. Units are year, month, day, hour,
// minute, second and millisecond.
func DateAdd() resources.ConverterDef {
	return dateFunc("dateAdd", func(t time.Time, args []interface{}) (interface{}, error) {
		n, err := extutil.AsInt("dateAdd", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(ast.ToString(extutil.Arg(args, 1))) {
		case "year":
			t = t.AddDate(n, 0, 0)
		case "month":
			t = t.AddDate(0, n, 0)
		case "day":
			t = t.AddDate(0, 0, n)
		case "hour":
			t = t.Add(time.Duration(n) * time.Hour)
		case "minute":
			t = t.Add(time.Duration(n) * time.Minute)
		case "second":
			t = t.Add(time.Duration(n) * time.Second)
		case "millisecond":
			t = t.Add(time.Duration(n) * time.Millisecond)
		default:
			return nil, extutil.Errorf("dateAdd", "unsupported unit %q", ast.ToString(extutil.Arg(args, 1)))
		}
		return toMillis(t), nil
	})
}

// DateDiff is from | dateDiff:to:unit, the whole units from from to to.
func DateDiff() resources.ConverterDef {
	return dateFunc("dateDiff", func(from time.Time, args []interface{}) (interface{}, error) {
		to, err := toTime("dateDiff", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		d := to.Sub(from)
		switch strings.ToLower(ast.ToString(extutil.Arg(args, 1))) {
		case "millisecond":
			return float64(d.Milliseconds()), nil
		case "second":
			return math.Trunc(d.Seconds()), nil
		case "minute":
			return math.Trunc(d.Minutes()), nil
		case "hour":
			return math.Trunc(d.Hours()), nil
		case "day":
			return math.Trunc(d.Hours() / 24), nil
		case "month":
			return float64(months(from, to)), nil
		case "year":
			return float64(months(from, to) / 12), nil
		}
		return nil, extutil.Errorf("dateDiff", "unsupported unit %q", ast.ToString(extutil.Arg(args, 1)))
	})
}

// months counts whole calendar months from a to b.
func months(a, b time.Time) int {
	if b.Before(a) {
		return -months(b, a)
	}
	n := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if a.AddDate(0, n, 0).After(b) {
		n--
	}
	return n
}

// DateComponents splits a date into an object of year, month, day, hour,
// minute, second, millisecond and weekday (0 is Sunday), optionally in a
// timezone.
func DateComponents() resources.ConverterDef {
	return dateFunc("dateComponents", func(t time.Time, args []interface{}) (interface{}, error) {
		loc, err := location("dateComponents", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		t = t.In(loc)
		return observation.ObjectOf(
			"year", float64(t.Year()),
			"month", float64(t.Month()),
			"day", float64(t.Day()),
			"hour", float64(t.Hour()),
			"minute", float64(t.Minute()),
			"second", float64(t.Second()),
			"millisecond", float64(t.Nanosecond()/int(time.Millisecond)),
			"weekday", float64(t.Weekday()),
		), nil
	})
}

func startOf(name string, t time.Time, unit interface{}) (time.Time, error) {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	switch strings.ToLower(ast.ToString(unit)) {
	case "year":
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), nil
	case "month":
		return time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC), nil
	case "day":
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), nil
	case "hour":
		return time.Date(y, mo, d, h, 0, 0, 0, time.UTC), nil
	case "minute":
		return time.Date(y, mo, d, h, mi, 0, 0, time.UTC), nil
	case "second":
		return time.Date(y, mo, d, h, mi, s, 0, time.UTC), nil
	}
	return time.Time{}, extutil.Errorf(name, "unsupported unit %q", ast.ToString(unit))
}

func next(t time.Time, unit string) time.Time {
	switch strings.ToLower(unit) {
	case "year":
		return t.AddDate(1, 0, 0)
	case "month":
		return t.AddDate(0, 1, 0)
	case "day":
		return t.AddDate(0, 0, 1)
	case "hour":
		return t.Add(time.Hour)
	case "minute":
		return t.Add(time.Minute)
	}
	return t.Add(time.Second)
}

// DateStartOf truncates to the start of a unit in UTC: date | dateStartOf:'month'.
func DateStartOf() resources.ConverterDef {
	return dateFunc("dateStartOf", func(t time.Time, args []interface{}) (interface{}, error) {
		s, err := startOf("dateStartOf", t, extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return toMillis(s), nil
	})
}

// DateEndOf returns the last millisecond of a unit in UTC.
func DateEndOf() resources.ConverterDef {
	return dateFunc("dateEndOf", func(t time.Time, args []interface{}) (interface{}, error) {
		unit := extutil.Arg(args, 0)
		s, err := startOf("dateEndOf", t, unit)
		if err != nil {
			return nil, err
		}
		return toMillis(next(s, ast.ToString(unit))) - 1, nil
	})
}
