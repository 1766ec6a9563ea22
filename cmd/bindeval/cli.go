package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gobinding"
	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/binding"
	"github.com/sandrolain/gobinding/pkg/config"
	"github.com/sandrolain/gobinding/pkg/ext"
	"github.com/sandrolain/gobinding/pkg/observability"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/parser"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

const (
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

var bindingTypes = map[string]parser.BindingType{
	"bind":          parser.BindCommand,
	"interpolation": parser.Interpolation,
	"for":           parser.ForCommand,
	"custom":        parser.CustomCommand,
}

type cli struct {
	opts   options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	color  bool
}

func newCLI(opts options, stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		opts:   opts,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		color:  isTerminal(stderr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *cli) execute() error {
	cfg := config.Default()
	if c.opts.config != "" {
		var err error
		if cfg, err = config.FromFile(c.opts.config); err != nil {
			return err
		}
	}
	if c.opts.logLevel != "" {
		cfg.Logging.Level = c.opts.logLevel
	}
	logger := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{
		Level: observability.ParseLevel(cfg.Logging.Level),
	}))
	rt := gobinding.New(gobinding.WithConfig(cfg), gobinding.WithLogger(logger), ext.WithAll())

	bt, ok := bindingTypes[c.opts.bindingType]
	if !ok {
		return fmt.Errorf("unknown binding type %q", c.opts.bindingType)
	}
	node, err := rt.CompileAs(c.opts.expression, bt)
	if err != nil {
		return err
	}
	if node == nil {
		// Interpolation without placeholders: the text is its own value.
		node = &ast.PrimitiveLiteral{Value: c.opts.expression}
	}
	if c.opts.showAST {
		fmt.Fprintf(c.stdout, "%s\t%s\n", node.Kind(), ast.Unparse(node))
		return nil
	}

	data, err := c.loadData()
	if err != nil {
		return err
	}
	s := rt.Scope(data)
	if len(c.opts.sets) == 0 {
		v, err := node.Evaluate(rt.Flags(), s, rt.Resources(), nil)
		if err != nil {
			return err
		}
		return c.print(v)
	}
	return c.watch(rt, node, s)
}

// watch binds node, applies every assignment in turn and prints the bound
// value after each one.
func (c *cli) watch(rt *gobinding.Runtime, node ast.Node, s *scope.Scope) error {
	if node.Kind() == ast.KindForOfStatement {
		return errors.New("for-of declarations cannot be watched")
	}
	out := observation.ObjectOf("value", nil)
	b := rt.NewBinding(node, out, "value", binding.ToView)
	if err := b.Bind(s); err != nil {
		return err
	}
	defer b.Unbind()
	if err := c.print(out.Get("value")); err != nil {
		return err
	}

	for _, set := range c.opts.sets {
		key, raw, _ := strings.Cut(set, "=")
		var v interface{}
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		target, err := rt.Compile(key)
		if err != nil {
			return err
		}
		if _, err := target.Assign(rt.Flags(), s, rt.Resources(), observation.FromValue(v)); err != nil {
			return err
		}
		if err := b.LastError(); err != nil {
			return err
		}
		if err := c.print(out.Get("value")); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) loadData() (interface{}, error) {
	var raw []byte
	var err error
	switch c.opts.data {
	case "":
		return nil, nil
	case "-":
		raw, err = io.ReadAll(c.stdin)
	default:
		raw, err = os.ReadFile(c.opts.data)
	}
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	var data interface{}
	if strings.ToLower(filepath.Ext(c.opts.data)) == ".json" {
		err = json.Unmarshal(raw, &data)
	} else {
		err = yaml.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	return data, nil
}

func (c *cli) print(v interface{}) error {
	if v == nil {
		_, err := fmt.Fprintln(c.stdout, "undefined")
		return err
	}
	out, err := json.Marshal(observation.ToNative(v))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, string(out))
	return err
}

func (c *cli) printError(err error) {
	msg := err.Error()
	var e *types.Error
	if !errors.As(err, &e) {
		msg = "error: " + msg
	}
	if c.color {
		msg = colorRed + msg + colorReset
	}
	fmt.Fprintln(c.stderr, msg)
}
