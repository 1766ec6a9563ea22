//go:build js && wasm

// Command gobinding-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `gobinding` object with the following API:
//
//	gobinding.version()                     → string
//	gobinding.eval(expression, dataJSON)    → resultJSON  (throws on error)
//	gobinding.compile(expression)           → { unparsed, eval(dataJSON) → resultJSON }  (throws on error)
//
// All converters under pkg/ext are registered.
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o gobinding.wasm ./cmd/wasm/js/
//
// Usage in the browser:
//
//	<script src="wasm_exec.js"></script>
//	<script>
//	  const go = new Go()
//	  WebAssembly.instantiateStreaming(fetch('gobinding.wasm'), go.importObject)
//	    .then(r => {
//	      go.run(r.instance)
//	      console.log(JSON.parse(gobinding.eval('name | upper', '{"name":"Ada"}')))
//	    })
//	</script>
package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/gobinding"
	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext"
	"github.com/sandrolain/gobinding/pkg/observation"
)

var rt = gobinding.New(ext.WithAll())

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	panic(js.Global().Get("Error").New(msg))
}

func decode(what, dataJSON string) interface{} {
	if dataJSON == "" {
		return nil
	}
	var data interface{}
	if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
		jsThrow(fmt.Sprintf("%s: invalid data JSON: %v", what, err))
	}
	return data
}

func evaluate(what string, node ast.Node, dataJSON string) string {
	result, err := node.Evaluate(rt.Flags(), rt.Scope(decode(what, dataJSON)), rt.Resources(), nil)
	if err != nil {
		jsThrow(fmt.Sprintf("%s: %v", what, err))
	}
	if result == nil {
		return "null"
	}
	out, err := json.Marshal(observation.ToNative(result))
	if err != nil {
		jsThrow(fmt.Sprintf("%s: marshal result: %v", what, err))
	}
	return string(out)
}

// jsEval implements gobinding.eval(expression, dataJSON) → resultJSON.
func jsEval(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("gobinding.eval requires an expression (string) and optional data (JSON string)")
	}
	node, err := rt.Compile(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("gobinding.eval: %v", err))
	}
	dataJSON := ""
	if len(args) > 1 {
		dataJSON = args[1].String()
	}
	return evaluate("gobinding.eval", node, dataJSON)
}

// jsCompile implements gobinding.compile(expression) → { unparsed, eval(dataJSON) }.
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("gobinding.compile requires 1 argument: expression (string)")
	}
	node, err := rt.Compile(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("gobinding.compile: %v", err))
	}

	evalFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		dataJSON := ""
		if len(innerArgs) > 0 {
			dataJSON = innerArgs[0].String()
		}
		return evaluate("compiled.eval", node, dataJSON)
	})

	return js.ValueOf(map[string]interface{}{
		"unparsed": ast.Unparse(node),
		"eval":     evalFn,
	})
}

func main() {
	api := map[string]interface{}{
		"eval":    js.FuncOf(jsEval),
		"compile": js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return gobinding.Version()
		}),
	}
	js.Global().Set("gobinding", js.ValueOf(api))

	// Block forever — the JS event loop owns execution from here.
	select {}
}
