// Command bindeval parses and evaluates binding expressions from the shell.
//
// Usage:
//
//	bindeval [flags] <expression>
//
// The expression is evaluated against a context loaded from -data (YAML or
// JSON, "-" for stdin) and the result is printed as JSON. With -set, the
// expression is bound instead and every assignment prints the new value:
//
//	bindeval -data vm.yaml -set first=Augusta -set 'items=[1,2]' "first + ' ' + items.length"
//
// Flags:
//
//	-data file     context document (.yaml, .yml, .json or -)
//	-config file   runtime configuration (.yaml, .yml or .json)
//	-type kind     bind, interpolation, for or custom (default bind)
//	-set k=v       assignment applied after binding; v is a YAML value
//	-ast           print the normalized expression and node kind instead
//	-log-level l   debug, info, warn or error (default warn)
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == errHelp {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	c := newCLI(opts, stdin, stdout, stderr)
	if err := c.execute(); err != nil {
		c.printError(err)
		return exitError
	}
	return exitOK
}
