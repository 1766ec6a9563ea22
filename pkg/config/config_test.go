package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gobinding/pkg/config"
	"github.com/sandrolain/gobinding/pkg/types"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 256, c.Parser.CacheSize)
	assert.Equal(t, 10, c.Observation.MaxRunCount)
	assert.Equal(t, 25, c.Observation.DirtyCheck.TimeoutsPerCheck)
	assert.Equal(t, 16*time.Millisecond, c.Observation.DirtyCheck.Interval.Std())
	assert.Equal(t, types.FlagNone, c.Flags())
}

func TestFromYAML(t *testing.T) {
	c, err := config.FromYAML([]byte(`
parser:
  cache_size: 32
observation:
  dirty_check:
    disabled: true
    interval: 1.5
evaluation:
  strict: true
  observe_leaf_only: true
logging:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 32, c.Parser.CacheSize)
	assert.Equal(t, 256, c.Parser.MaxDepth, "missing keys keep defaults")
	assert.Equal(t, 10, c.Observation.MaxRunCount)
	assert.True(t, c.Observation.DirtyCheck.Disabled)
	assert.Equal(t, 1500*time.Millisecond, c.Observation.DirtyCheck.Interval.Std())
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Flags().Has(types.FlagStrict|types.FlagObserveLeafOnly))
}

func TestEvaluationFlags(t *testing.T) {
	c, err := config.FromYAML([]byte(`
evaluation:
  must_evaluate: true
  traverse_parent_scope: true
`))
	require.NoError(t, err)
	assert.Equal(t, types.FlagMustEvaluate|types.FlagTraversingParentScope, c.Flags())
}

func TestFromJSON(t *testing.T) {
	c, err := config.FromJSON([]byte(`{
		"observation": {"max_run_count": 3, "dirty_check": {"interval": "50ms"}},
		"evaluation": {"strict": true}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Observation.MaxRunCount)
	assert.Equal(t, 50*time.Millisecond, c.Observation.DirtyCheck.Interval.Std())
	assert.Equal(t, types.FlagStrict, c.Flags())
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "parser: [1"},
		{"zero cache", "parser: {cache_size: 0}"},
		{"negative run count", "observation: {max_run_count: -1}"},
		{"bad interval", "observation: {dirty_check: {interval: soon}}"},
		{"bad level", "logging: {level: loud}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromYAML([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := config.FromJSON([]byte(`{"observation": {"dirty_check": {"interval": true}}}`))
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "runtime.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("parser:\n  cache_size: 8\n"), 0o600))
	c, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 8, c.Parser.CacheSize)

	jsonPath := filepath.Join(dir, "runtime.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"parser": {"max_depth": 16}}`), 0o600))
	c, err = config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 16, c.Parser.MaxDepth)

	_, err = config.FromFile(filepath.Join(dir, "runtime.toml"))
	assert.Error(t, err)

	txtPath := filepath.Join(dir, "runtime.txt")
	require.NoError(t, os.WriteFile(txtPath, nil, 0o600))
	_, err = config.FromFile(txtPath)
	assert.ErrorContains(t, err, "unsupported")
}
