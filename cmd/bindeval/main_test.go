package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEvaluateWithoutData(t *testing.T) {
	code, out, _ := runCLI(t, "", "1 + 2 * 3")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "7\n", out)

	code, out, _ = runCLI(t, "", "missing")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "undefined\n", out)
}

func TestEvaluateYAMLData(t *testing.T) {
	data := writeFile(t, "vm.yaml", "user:\n  name: ada\nitems: [1, 2, 3]\n")
	code, out, _ := runCLI(t, "", "-data", data, "{name: user.name | upper, count: items.length}")
	assert.Equal(t, exitOK, code)
	assert.JSONEq(t, `{"name":"ADA","count":3}`, out)
}

func TestEvaluateStdinJSON(t *testing.T) {
	code, out, _ := runCLI(t, `{"items":[3,1,2]}`, "-data", "-", "items.filter(x => x > 1)")
	assert.Equal(t, exitOK, code)
	assert.JSONEq(t, `[3,2]`, out)
}

func TestInterpolationType(t *testing.T) {
	data := writeFile(t, "vm.json", `{"name":"Ada"}`)
	code, out, _ := runCLI(t, "", "-type", "interpolation", "-data", data, "Hello ${name}!")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "\"Hello Ada!\"\n", out)

	code, out, _ = runCLI(t, "", "-type", "interpolation", "plain text")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "\"plain text\"\n", out)
}

func TestShowAST(t *testing.T) {
	code, out, _ := runCLI(t, "", "-ast", "a ? b : c")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Conditional\t(a ? b : c)\n", out)
}

func TestWatch(t *testing.T) {
	data := writeFile(t, "vm.yaml", "first: Ada\nlast: Lovelace\n")
	code, out, stderr := runCLI(t, "", "-data", data, "-set", "first=Augusta", "-set", "last=King",
		"first + ' ' + last")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "\"Ada Lovelace\"\n\"Augusta Lovelace\"\n\"Augusta King\"\n", out)
}

func TestWatchCollection(t *testing.T) {
	data := writeFile(t, "vm.yaml", "items: [a]\n")
	code, out, stderr := runCLI(t, "", "-data", data, "-set", "items=[a, b]", "items.join('+')")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "\"a\"\n\"a+b\"\n", out)
}

func TestErrors(t *testing.T) {
	code, _, stderr := runCLI(t, "", "a +")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "P0206")

	code, _, stderr = runCLI(t, "", "-type", "nope", "a")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "unknown binding type")

	code, _, _ = runCLI(t, "")
	assert.Equal(t, exitUsage, code)

	code, _, _ = runCLI(t, "", "-set", "novalue", "a")
	assert.Equal(t, exitUsage, code)

	code, _, stderr = runCLI(t, "", "-data", "/does/not/exist.yaml", "a")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "read data")

	cfg := writeFile(t, "bad.yaml", "parser: {cache_size: -1}\n")
	code, _, _ = runCLI(t, "", "-config", cfg, "a")
	assert.Equal(t, exitError, code)
}

func TestExtensionConverters(t *testing.T) {
	data := writeFile(t, "vm.yaml", "orders:\n  - {s: a, q: 2}\n  - {s: b, q: 1}\n  - {s: a, q: 3}\n")
	code, out, stderr := runCLI(t, "", "-data", data, "orders | sumBy:'q'")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "6\n", out)

	code, out, stderr = runCLI(t, "", "'user name' | camelCase")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, "\"userName\"\n", out)
}
