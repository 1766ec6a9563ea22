// Package config loads runtime configuration from YAML or JSON.
//
// Keys missing from a document keep their Default value:
//
//	parser:
//	  cache_size: 512
//	observation:
//	  max_run_count: 10
//	  dirty_check:
//	    timeouts_per_check: 25
//	    interval: 16ms
//	evaluation:
//	  strict: true
//	logging:
//	  level: debug
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gobinding/pkg/types"
)

// Config is the runtime configuration.
type Config struct {
	Parser      ParserConfig      `yaml:"parser" json:"parser"`
	Observation ObservationConfig `yaml:"observation" json:"observation"`
	Evaluation  EvaluationConfig  `yaml:"evaluation" json:"evaluation"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// ParserConfig configures the expression parser.
type ParserConfig struct {
	// CacheSize is the capacity of each parse cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
	// MaxDepth bounds expression nesting.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

// ObservationConfig configures the observer locator.
type ObservationConfig struct {
	// MaxRunCount caps computed and effect re-runs within one flush.
	MaxRunCount int              `yaml:"max_run_count" json:"max_run_count"`
	DirtyCheck  DirtyCheckConfig `yaml:"dirty_check" json:"dirty_check"`
}

// DirtyCheckConfig configures polling of properties that cannot be
// intercepted.
type DirtyCheckConfig struct {
	Disabled         bool     `yaml:"disabled" json:"disabled"`
	TimeoutsPerCheck int      `yaml:"timeouts_per_check" json:"timeouts_per_check"`
	Interval         Duration `yaml:"interval" json:"interval"`
}

// EvaluationConfig selects evaluation flags.
type EvaluationConfig struct {
	// Strict keeps null and undefined operands of + instead of treating
	// them as empty strings.
	Strict bool `yaml:"strict" json:"strict"`
	// ObserveLeafOnly records only the last member of each access chain.
	ObserveLeafOnly bool `yaml:"observe_leaf_only" json:"observe_leaf_only"`
	// MustEvaluate makes calling an undefined or null function an error
	// instead of yielding undefined.
	MustEvaluate bool `yaml:"must_evaluate" json:"must_evaluate"`
	// TraverseParentScope resolves names that no scope in the chain defines
	// to no context: reads yield undefined and assignments are dropped
	// instead of creating a property on the local binding context.
	TraverseParentScope bool `yaml:"traverse_parent_scope" json:"traverse_parent_scope"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Parser: ParserConfig{
			CacheSize: 256,
			MaxDepth:  256,
		},
		Observation: ObservationConfig{
			MaxRunCount: 10,
			DirtyCheck: DirtyCheckConfig{
				TimeoutsPerCheck: 25,
				Interval:         Duration(16 * time.Millisecond),
			},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Flags returns the evaluation flags selected by the configuration.
func (c Config) Flags() types.Flags {
	f := types.FlagNone
	if c.Evaluation.Strict {
		f |= types.FlagStrict
	}
	if c.Evaluation.ObserveLeafOnly {
		f |= types.FlagObserveLeafOnly
	}
	if c.Evaluation.MustEvaluate {
		f |= types.FlagMustEvaluate
	}
	if c.Evaluation.TraverseParentScope {
		f |= types.FlagTraversingParentScope
	}
	return f
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	switch {
	case c.Parser.CacheSize <= 0:
		return fmt.Errorf("parser.cache_size must be positive, got %d", c.Parser.CacheSize)
	case c.Parser.MaxDepth <= 0:
		return fmt.Errorf("parser.max_depth must be positive, got %d", c.Parser.MaxDepth)
	case c.Observation.MaxRunCount <= 0:
		return fmt.Errorf("observation.max_run_count must be positive, got %d", c.Observation.MaxRunCount)
	case c.Observation.DirtyCheck.TimeoutsPerCheck <= 0:
		return fmt.Errorf("observation.dirty_check.timeouts_per_check must be positive, got %d",
			c.Observation.DirtyCheck.TimeoutsPerCheck)
	case c.Observation.DirtyCheck.Interval < 0:
		return fmt.Errorf("observation.dirty_check.interval must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

// FromFile loads configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data over the defaults.
func FromYAML(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return c, c.Validate()
}

// FromJSON parses JSON data over the defaults.
func FromJSON(data []byte) (Config, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return c, c.Validate()
}

// Duration is a time.Duration written either as a Go duration string
// ("16ms") or as a number of seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if value.Tag == "!!str" {
		if err := value.Decode(&s); err != nil {
			return err
		}
		return d.parse(s)
	}
	var secs float64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		return d.parse(val)
	case float64:
		*d = Duration(val * float64(time.Second))
		return nil
	}
	return fmt.Errorf("invalid duration %s", data)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}
