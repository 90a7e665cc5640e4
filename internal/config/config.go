// Package config loads the YAML configuration of the formskema command:
// message language, logging, reader limits, HTTP address and the per-field
// rule set.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/internal/logging"
	"github.com/reoring/formskema/rules"
	"github.com/reoring/formskema/source"
)

// Config is the root of the configuration file.
type Config struct {
	Language string       `mapstructure:"language"`
	Log      LogConfig    `mapstructure:"log"`
	Source   SourceConfig `mapstructure:"source"`
	Server   ServerConfig `mapstructure:"server"`
	// ReplaceDefaultRules drops the built-in non-blank rule so only Rules
	// apply.
	ReplaceDefaultRules bool                    `mapstructure:"replace_default_rules"`
	Rules               map[string][]RuleConfig `mapstructure:"rules"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SourceConfig struct {
	MaxDepth      int    `mapstructure:"max_depth"`
	MaxBytes      int64  `mapstructure:"max_bytes"`
	DuplicateKeys string `mapstructure:"duplicate_keys"` // "error" or "ignore"
	MaxNodes      int    `mapstructure:"max_nodes"`      // YAML alias expansion cap; 0 derives one from the body size
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RuleConfig declares one rule for a field. Which parameters apply depends
// on Type.
type RuleConfig struct {
	Type    string   `mapstructure:"type"`    // non_blank, min_length, max_length, pattern, email, one_of
	Min     int      `mapstructure:"min"`     // min_length
	Max     int      `mapstructure:"max"`     // max_length
	Pattern string   `mapstructure:"pattern"` // pattern
	Values  []string `mapstructure:"values"`  // one_of
	// WhenNotBlank skips the rule for blank values, leaving those to the
	// non-blank rule.
	WhenNotBlank bool `mapstructure:"when_not_blank"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Language: "en",
		Log:      LogConfig{Level: "info"},
		Source:   SourceConfig{MaxDepth: 32, MaxBytes: 1 << 20, DuplicateKeys: "error"},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML bytes on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the decoder cannot.
func (c Config) Validate() error {
	switch c.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("language: unsupported %q (want en or ja)", c.Language)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := c.duplicatePolicy(); err != nil {
		return err
	}
	if c.Source.MaxDepth < 0 || c.Source.MaxBytes < 0 || c.Source.MaxNodes < 0 {
		return fmt.Errorf("source: limits must not be negative")
	}
	_, err := c.RuleSet()
	return err
}

// SourceOptions projects the reader limits.
func (c Config) SourceOptions() source.Options {
	dup, _ := c.duplicatePolicy()
	return source.Options{MaxDepth: c.Source.MaxDepth, MaxBytes: c.Source.MaxBytes, DuplicateKeys: dup, MaxNodes: c.Source.MaxNodes}
}

func (c Config) duplicatePolicy() (source.DuplicatePolicy, error) {
	switch strings.ToLower(c.Source.DuplicateKeys) {
	case "", "error":
		return source.DuplicateError, nil
	case "ignore":
		return source.DuplicateIgnore, nil
	}
	return source.DuplicateError, fmt.Errorf("source.duplicate_keys: unsupported %q (want error or ignore)", c.Source.DuplicateKeys)
}

// RuleSet compiles the configured rules, starting from the defaults unless
// ReplaceDefaultRules is set.
func (c Config) RuleSet() (formskema.RuleSet, error) {
	rs := formskema.DefaultRules()
	if c.ReplaceDefaultRules {
		rs = formskema.RuleSet{}
	}
	schema := formskema.FormSchema()
	for path, rcs := range c.Rules {
		if !schema.Has(formskema.ParsePath(path)) {
			return nil, fmt.Errorf("rules: unknown field %q", path)
		}
		for i, rc := range rcs {
			r, err := rc.compile()
			if err != nil {
				return nil, fmt.Errorf("rules.%s[%d]: %w", path, i, err)
			}
			rs[path] = append(rs[path], r)
		}
	}
	return rs, nil
}

// Validator builds a validator from RuleSet.
func (c Config) Validator() (*formskema.Validator, error) {
	rs, err := c.RuleSet()
	if err != nil {
		return nil, err
	}
	return formskema.NewValidator(formskema.WithRules(rs)), nil
}

func (rc RuleConfig) compile() (formskema.Rule, error) {
	var r formskema.Rule
	switch rc.Type {
	case "non_blank":
		r = formskema.NonBlank()
	case "min_length":
		if rc.Min <= 0 {
			return nil, fmt.Errorf("min_length: min must be positive")
		}
		r = rules.MinLength(rc.Min)
	case "max_length":
		if rc.Max <= 0 {
			return nil, fmt.Errorf("max_length: max must be positive")
		}
		r = rules.MaxLength(rc.Max)
	case "pattern":
		p, err := rules.Pattern(rc.Pattern)
		if err != nil {
			return nil, err
		}
		r = p
	case "email":
		r = rules.Email()
	case "one_of":
		if len(rc.Values) == 0 {
			return nil, fmt.Errorf("one_of: values must not be empty")
		}
		r = rules.OneOf(rc.Values...)
	default:
		return nil, fmt.Errorf("unknown rule type %q", rc.Type)
	}
	if rc.WhenNotBlank {
		r = rules.If(rules.NotBlank).Then(r)
	}
	return r, nil
}
