// Package extformat provides converters between values and text formats:
// JSON, YAML and CSV. The JSON and YAML converters work in both
// directions, so a text area can edit structured data:
//
//	<textarea value.bind="settings | yaml">
package extformat

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every format converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		JSON(),
		YAML(),
		CSV(),
		ToCSV(),
	}
}

// JSON is value | json[:indent]. Object keys are written sorted. Text
// written from the view is parsed back into observable values.
func JSON() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "json",
		Converter: resources.TwoWayConverter{
			To: func(value interface{}, args ...interface{}) (interface{}, error) {
				if value == nil {
					return nil, nil
				}
				native := observation.ToNative(value)
				var out []byte
				var err error
				if indent := extutil.Arg(args, 0); indent != nil {
					out, err = json.MarshalIndent(native, "", indentString(indent))
				} else {
					out, err = json.Marshal(native)
				}
				if err != nil {
					return nil, extutil.Errorf("json", "cannot encode value").WithCause(err)
				}
				return string(out), nil
			},
			From: func(value interface{}, _ ...interface{}) (interface{}, error) {
				if types.IsNullish(value) {
					return value, nil
				}
				var v interface{}
				if err := json.Unmarshal([]byte(ast.ToString(value)), &v); err != nil {
					return nil, extutil.Errorf("json", "invalid JSON").WithCause(err)
				}
				return observation.FromValue(v), nil
			},
		},
	}
}

// indentString accepts a width or a literal indent.
func indentString(v interface{}) string {
	if n, ok := observation.Normalize(v).(float64); ok {
		return strings.Repeat(" ", int(n))
	}
	return ast.ToString(v)
}

// YAML is value | yaml. Object keys keep their order. Text written from
// the view is parsed back into observable values.
func YAML() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "yaml",
		Converter: resources.TwoWayConverter{
			To: func(value interface{}, _ ...interface{}) (interface{}, error) {
				if value == nil {
					return nil, nil
				}
				out, err := yaml.Marshal(toNode(value))
				if err != nil {
					return nil, extutil.Errorf("yaml", "cannot encode value").WithCause(err)
				}
				return string(out), nil
			},
			From: func(value interface{}, _ ...interface{}) (interface{}, error) {
				if types.IsNullish(value) {
					return value, nil
				}
				var v interface{}
				if err := yaml.Unmarshal([]byte(ast.ToString(value)), &v); err != nil {
					return nil, extutil.Errorf("yaml", "invalid YAML").WithCause(err)
				}
				return observation.FromValue(v), nil
			},
		},
	}
}

// toNode builds a YAML node tree that keeps object key order.
func toNode(v interface{}) *yaml.Node {
	switch x := observation.Unwrap(v).(type) {
	case *observation.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.Keys() {
			n.Content = append(n.Content, scalar("!!str", k), toNode(x.Get(k)))
		}
		return n
	case *observation.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x.Items() {
			n.Content = append(n.Content, toNode(item))
		}
		return n
	case *observation.Set:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range x.Values() {
			n.Content = append(n.Content, toNode(item))
		}
		return n
	case *observation.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.Keys() {
			n.Content = append(n.Content, scalar("!!str", ast.ToString(k)), toNode(x.Get(k)))
		}
		return n
	}
	switch x := observation.Normalize(observation.Unwrap(v)).(type) {
	case nil, types.Null, observation.Func:
		return scalar("!!null", "null")
	case string:
		return scalar("!!str", x)
	case bool:
		return scalar("!!bool", ast.ToString(x))
	case float64:
		if x == float64(int64(x)) {
			return scalar("!!int", ast.ToString(x))
		}
		return scalar("!!float", ast.ToString(x))
	}
	return scalar("!!str", ast.ToString(v))
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// CSV parses text with a header row into an array of objects:
// text | csv[:separator]. Short rows are padded with empty strings.
func CSV() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "csv",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			r := csv.NewReader(strings.NewReader(ast.ToString(value)))
			r.TrimLeadingSpace = true
			r.FieldsPerRecord = -1
			if sep := extutil.Arg(args, 0); sep != nil {
				s := []rune(ast.ToString(sep))
				if len(s) != 1 {
					return nil, extutil.Errorf("csv", "separator must be one character")
				}
				r.Comma = s[0]
			}
			records, err := r.ReadAll()
			if err != nil {
				return nil, extutil.Errorf("csv", "parse error").WithCause(err)
			}
			if len(records) == 0 {
				return observation.NewArray(), nil
			}
			headers := records[0]
			rows := make([]interface{}, 0, len(records)-1)
			for _, rec := range records[1:] {
				kv := make([]interface{}, 0, 2*len(headers))
				for i, h := range headers {
					cell := ""
					if i < len(rec) {
						cell = rec[i]
					}
					kv = append(kv, h, cell)
				}
				rows = append(rows, observation.ObjectOf(kv...))
			}
			return observation.NewArray(rows...), nil
		}),
	}
}

// ToCSV writes an array of objects as CSV with a header row:
// rows | toCSV[:columns]. Without columns the keys of the first object are
// used in order.
func ToCSV() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "toCSV",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			items, err := extutil.AsArray("toCSV", value)
			if err != nil {
				return nil, err
			}
			rows := make([]*observation.Object, len(items))
			for i, item := range items {
				if rows[i], err = extutil.AsObject("toCSV", item); err != nil {
					return nil, err
				}
			}
			var columns []string
			if cols := extutil.Arg(args, 0); cols != nil {
				names, err := extutil.AsArray("toCSV", cols)
				if err != nil {
					return nil, err
				}
				for _, c := range names {
					columns = append(columns, ast.ToString(c))
				}
			} else if len(rows) > 0 {
				columns = rows[0].Keys()
			}
			if len(columns) == 0 {
				return "", nil
			}

			var buf bytes.Buffer
			w := csv.NewWriter(&buf)
			if err := w.Write(columns); err != nil {
				return nil, extutil.Errorf("toCSV", "write failed").WithCause(err)
			}
			for _, row := range rows {
				rec := make([]string, len(columns))
				for i, c := range columns {
					if v := row.Get(c); !types.IsNullish(v) {
						rec[i] = ast.ToString(v)
					}
				}
				if err := w.Write(rec); err != nil {
					return nil, extutil.Errorf("toCSV", "write failed").WithCause(err)
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return nil, extutil.Errorf("toCSV", "write failed").WithCause(err)
			}
			return buf.String(), nil
		}),
	}
}
