package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

var errHelp = flag.ErrHelp

type options struct {
	expression  string
	data        string
	config      string
	bindingType string
	logLevel    string
	sets        []string
	showAST     bool
}

// setList collects repeated -set flags.
type setList []string

func (s *setList) String() string { return strings.Join(*s, ",") }

func (s *setList) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	var sets setList
	fs := flag.NewFlagSet("bindeval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.data, "data", "", "context document (.yaml, .yml, .json or - for stdin)")
	fs.StringVar(&o.config, "config", "", "runtime configuration file")
	fs.StringVar(&o.bindingType, "type", "bind", "binding type: bind, interpolation, for or custom")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.Var(&sets, "set", "assignment key=value applied after binding (repeatable)")
	fs.BoolVar(&o.showAST, "ast", false, "print the normalized expression and node kind")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: bindeval [flags] <expression>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one expression is required")
	}
	o.expression = fs.Arg(0)
	o.sets = sets
	return o, nil
}
