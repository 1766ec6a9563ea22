// Package extstring provides string value converters beyond the standard
// set. Register them with gobinding.WithConverters or through ext.All.
package extstring

import (
	"strings"
	"unicode"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every string converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		StartsWith(),
		EndsWith(),
		IndexOf(),
		Capitalize(),
		TitleCase(),
		CamelCase(),
		SnakeCase(),
		KebabCase(),
		Repeat(),
		Truncate(),
		Trim(),
		Words(),
		Template(),
	}
}

// stringFunc converts a string converter into a ConverterFunc. Nullish
// values pass through unchanged.
func stringFunc(fn func(s string, args []interface{}) (interface{}, error)) resources.ConverterFunc {
	return func(value interface{}, args ...interface{}) (interface{}, error) {
		if types.IsNullish(value) {
			return value, nil
		}
		return fn(ast.ToString(value), args)
	}
}

func def(name string, fn func(s string, args []interface{}) (interface{}, error)) resources.ConverterDef {
	return resources.ConverterDef{Name: name, Converter: stringFunc(fn)}
}

// StartsWith is value | startsWith:prefix.
func StartsWith() resources.ConverterDef {
	return def("startsWith", func(s string, args []interface{}) (interface{}, error) {
		return strings.HasPrefix(s, ast.ToString(extutil.Arg(args, 0))), nil
	})
}

// EndsWith is value | endsWith:suffix.
func EndsWith() resources.ConverterDef {
	return def("endsWith", func(s string, args []interface{}) (interface{}, error) {
		return strings.HasSuffix(s, ast.ToString(extutil.Arg(args, 0))), nil
	})
}

// IndexOf is value | indexOf:search[:start]. Returns -1 when not found.
// Indices count runes.
func IndexOf() resources.ConverterDef {
	return def("indexOf", func(s string, args []interface{}) (interface{}, error) {
		search := []rune(ast.ToString(extutil.Arg(args, 0)))
		runes := []rune(s)
		start := 0
		if v := extutil.Arg(args, 1); v != nil {
			n, err := extutil.AsInt("indexOf", v)
			if err != nil {
				return nil, err
			}
			if n > 0 {
				start = n
			}
		}
		for i := start; i+len(search) <= len(runes); i++ {
			if string(runes[i:i+len(search)]) == string(search) {
				return float64(i), nil
			}
		}
		return float64(-1), nil
	})
}

// Capitalize uppercases the first rune and lowercases the rest.
func Capitalize() resources.ConverterDef {
	return def("capitalize", func(s string, _ []interface{}) (interface{}, error) {
		return capitalize(s), nil
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// TitleCase capitalizes every whitespace separated word.
func TitleCase() resources.ConverterDef {
	return def("titleCase", func(s string, _ []interface{}) (interface{}, error) {
		var b strings.Builder
		start := true
		for _, r := range s {
			switch {
			case unicode.IsSpace(r):
				start = true
				b.WriteRune(r)
			case start:
				start = false
				b.WriteRune(unicode.ToUpper(r))
			default:
				b.WriteRune(unicode.ToLower(r))
			}
		}
		return b.String(), nil
	})
}

// splitWords splits camelCase, snake_case, kebab-case and spaced text.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

// CamelCase converts to camelCase.
func CamelCase() resources.ConverterDef {
	return def("camelCase", func(s string, _ []interface{}) (interface{}, error) {
		words := splitWords(s)
		if len(words) == 0 {
			return "", nil
		}
		var b strings.Builder
		b.WriteString(strings.ToLower(words[0]))
		for _, w := range words[1:] {
			b.WriteString(capitalize(w))
		}
		return b.String(), nil
	})
}

func joinLower(s, sep string) string {
	words := splitWords(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}

// SnakeCase converts to snake_case.
func SnakeCase() resources.ConverterDef {
	return def("snakeCase", func(s string, _ []interface{}) (interface{}, error) {
		return joinLower(s, "_"), nil
	})
}

// KebabCase converts to kebab-case.
func KebabCase() resources.ConverterDef {
	return def("kebabCase", func(s string, _ []interface{}) (interface{}, error) {
		return joinLower(s, "-"), nil
	})
}

// Repeat is value | repeat:n.
func Repeat() resources.ConverterDef {
	return def("repeat", func(s string, args []interface{}) (interface{}, error) {
		n, err := extutil.AsInt("repeat", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, extutil.Errorf("repeat", "count must not be negative")
		}
		return strings.Repeat(s, n), nil
	})
}

// Truncate is value | truncate:n[:suffix]. The suffix defaults to an
// ellipsis and is counted in n.
func Truncate() resources.ConverterDef {
	return def("truncate", func(s string, args []interface{}) (interface{}, error) {
		n, err := extutil.AsInt("truncate", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		suffix := []rune("…")
		if v := extutil.Arg(args, 1); v != nil {
			suffix = []rune(ast.ToString(v))
		}
		runes := []rune(s)
		if n < 0 || len(runes) <= n {
			return s, nil
		}
		keep := n - len(suffix)
		if keep < 0 {
			keep = 0
		}
		return string(runes[:keep]) + string(suffix), nil
	})
}

// Trim removes surrounding whitespace, or the runes given as argument.
// It converts in both directions, so two-way inputs store trimmed text.
func Trim() resources.ConverterDef {
	trim := stringFunc(func(s string, args []interface{}) (interface{}, error) {
		if v := extutil.Arg(args, 0); v != nil {
			return strings.Trim(s, ast.ToString(v)), nil
		}
		return strings.TrimSpace(s), nil
	})
	return resources.ConverterDef{
		Name:      "trim",
		Converter: resources.TwoWayConverter{To: trim, From: trim},
	}
}

// Words splits on whitespace into an array.
func Words() resources.ConverterDef {
	return def("words", func(s string, _ []interface{}) (interface{}, error) {
		parts := strings.Fields(s)
		items := make([]interface{}, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		return observation.NewArray(items...), nil
	})
}

// Template replaces {{key}} placeholders with properties of the argument:
// 'Hi {{name}}' | template:user. Unknown keys are left in place.
func Template() resources.ConverterDef {
	return def("template", func(s string, args []interface{}) (interface{}, error) {
		bindings, err := extutil.AsObject("template", extutil.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		for {
			open := strings.Index(s, "{{")
			if open < 0 {
				break
			}
			end := strings.Index(s[open+2:], "}}")
			if end < 0 {
				break
			}
			key := strings.TrimSpace(s[open+2 : open+2+end])
			b.WriteString(s[:open])
			if bindings.Has(key) {
				b.WriteString(ast.ToString(bindings.Get(key)))
			} else {
				b.WriteString(s[open : open+4+end])
			}
			s = s[open+4+end:]
		}
		b.WriteString(s)
		return b.String(), nil
	})
}
