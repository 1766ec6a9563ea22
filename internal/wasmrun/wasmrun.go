// Package wasmrun runs the WASI build of gobinding in-process through wazero.
//
// Every Evaluate call instantiates a fresh module from the compiled binary,
// writes one JSON request to its stdin and decodes one JSON response from
// its stdout, the protocol of cmd/wasm/wasi.
package wasmrun

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// Request is the input of one evaluation.
type Request struct {
	Expression string      `json:"expression"`
	Data       interface{} `json:"data,omitempty"`
	Type       string      `json:"type,omitempty"`
}

// Response is the output of one evaluation. Error and Code are set when the
// module exited with a failure.
type Response struct {
	Result   interface{} `json:"result,omitempty"`
	Unparsed string      `json:"unparsed,omitempty"`
	Error    string      `json:"error,omitempty"`
	Code     string      `json:"code,omitempty"`
}

// Runner holds a compiled module.
type Runner struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// New compiles wasm. Cancelling ctx aborts running modules.
func New(ctx context.Context, wasm []byte) (*Runner, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}
	return &Runner{runtime: rt, compiled: compiled}, nil
}

// NewFromFile compiles the module stored at path.
func NewFromFile(ctx context.Context, path string) (*Runner, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return New(ctx, wasm)
}

// Evaluate runs one request.
func (r *Runner) Evaluate(ctx context.Context, req Request) (Response, error) {
	in, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode request: %w", err)
	}
	var stdout, stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := r.runtime.InstantiateModule(ctx, r.compiled, cfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	exitCode := uint32(0)
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		return Response{}, fmt.Errorf("run module: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("decode response (exit code %d, stderr %q): %w", exitCode, stderr.String(), err)
	}
	if exitCode != 0 && resp.Error == "" {
		resp.Error = fmt.Sprintf("module exited with code %d", exitCode)
	}
	return resp, nil
}

// Close releases the runtime and the compiled module.
func (r *Runner) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}
