package resources

import (
	"strings"
	"sync"

	"github.com/coregx/coregex"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/types"
)

func standardConverters() map[string]ast.Converter {
	return map[string]ast.Converter{
		"upper":   caseConverter{to: strings.ToUpper},
		"lower":   caseConverter{to: strings.ToLower},
		"matches": ConverterFunc(matches),
		"replace": ConverterFunc(replace),
	}
}

// caseConverter maps strings through to. Nullish values pass unchanged.
type caseConverter struct {
	to func(string) string
}

func (c caseConverter) ToView(value interface{}, _ ...interface{}) (interface{}, error) {
	if types.IsNullish(value) {
		return value, nil
	}
	return c.to(ast.ToString(value)), nil
}

// patterns caches compiled regular expressions by source.
var patterns sync.Map

func compile(pattern string) (*coregex.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*coregex.Regexp), nil
	}
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, types.Errorf(types.ErrInvalidArgument, "invalid pattern %q", pattern).WithCause(err)
	}
	actual, _ := patterns.LoadOrStore(pattern, re)
	return actual.(*coregex.Regexp), nil
}

func patternArg(name string, args []interface{}, i int) (string, error) {
	if i >= len(args) {
		return "", types.Errorf(types.ErrInvalidArgument, "%s expects argument %d", name, i+1)
	}
	return ast.ToString(args[i]), nil
}

// matches reports whether the value contains a match of the pattern:
// value | matches:'^[a-z]+$'.
func matches(value interface{}, args ...interface{}) (interface{}, error) {
	p, err := patternArg("matches", args, 0)
	if err != nil {
		return nil, err
	}
	re, err := compile(p)
	if err != nil {
		return nil, err
	}
	if types.IsNullish(value) {
		return false, nil
	}
	return re.MatchString(ast.ToString(value)), nil
}

// replace substitutes every match of the pattern:
// value | replace:'\\s+':' '.
func replace(value interface{}, args ...interface{}) (interface{}, error) {
	p, err := patternArg("replace", args, 0)
	if err != nil {
		return nil, err
	}
	repl, err := patternArg("replace", args, 1)
	if err != nil {
		return nil, err
	}
	re, err := compile(p)
	if err != nil {
		return nil, err
	}
	if types.IsNullish(value) {
		return value, nil
	}
	return re.ReplaceAllString(ast.ToString(value), repl), nil
}
