//go:build wasip1

// Command gobinding-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "expression": "<binding expression>", "data": <any JSON value>,
//	          "type": "bind" | "interpolation" | "custom" }
//	stdout: { "result": <any JSON value>, "unparsed": "<normalized source>" }  on success
//	        { "error": "<message>", "code": "<error code>" }                  on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o gobinding.wasm ./cmd/wasm/wasi/
//
// All converters under pkg/ext are registered.
//
// Usage with wasmtime CLI:
//
//	echo '{"expression":"name | upper","data":{"name":"Alice"}}' | wasmtime gobinding.wasm
package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/gobinding"
	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/parser"
	"github.com/sandrolain/gobinding/pkg/types"
)

type request struct {
	Expression string      `json:"expression"`
	Data       interface{} `json:"data"`
	Type       string      `json:"type"`
}

type response struct {
	Result   interface{} `json:"result,omitempty"`
	Unparsed string      `json:"unparsed,omitempty"`
	Error    string      `json:"error,omitempty"`
	Code     string      `json:"code,omitempty"`
}

var bindingTypes = map[string]parser.BindingType{
	"":              parser.BindCommand,
	"bind":          parser.BindCommand,
	"interpolation": parser.Interpolation,
	"custom":        parser.CustomCommand,
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func fail(err error) {
	r := response{Error: err.Error()}
	var e *types.Error
	if errors.As(err, &e) {
		r.Code = string(e.Code)
	}
	writeResponse(r, 1)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}
	bt, ok := bindingTypes[req.Type]
	if !ok {
		writeResponse(response{Error: "unknown binding type " + req.Type}, 1)
	}

	rt := gobinding.New(ext.WithAll())
	node, err := rt.CompileAs(req.Expression, bt)
	if err != nil {
		fail(err)
	}
	if node == nil {
		writeResponse(response{Result: req.Expression, Unparsed: req.Expression}, 0)
	}
	result, err := node.Evaluate(rt.Flags(), rt.Scope(req.Data), rt.Resources(), nil)
	if err != nil {
		fail(err)
	}

	writeResponse(response{Result: observation.ToNative(result), Unparsed: ast.Unparse(node)}, 0)
}
