package config

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dshills/smartcommits/internal/secerr"
	"gopkg.in/yaml.v3"
)

// Providers is the set of accepted api.provider values.
var Providers = []string{"groq", "openrouter", "cohere"}

// Bounds for the validated integer fields.
const (
	MinTimeout     = 1
	MaxTimeout     = 300
	MinMaxChars    = 10
	MaxMaxChars    = 500
	MinMaxDiffSize = 100
	MaxMaxDiffSize = 50000
	MinRetries     = 0
	MaxRetries     = 10
)

var defaultModels = map[string]string{
	"groq":       "llama3-70b-8192",
	"openrouter": "meta-llama/llama-3.3-70b-instruct",
	"cohere":     "command-r",
}

var modelPattern = regexp.MustCompile(`^[A-Za-z0-9._:/\-]{1,100}$`)

// Config is the validated, typed configuration.
type Config struct {
	API        APIConfig        `yaml:"api" json:"api"`
	Commit     CommitConfig     `yaml:"commit" json:"commit"`
	Processing ProcessingConfig `yaml:"processing" json:"processing"`
	Security   SecurityConfig   `yaml:"security" json:"security"`
	Debug      DebugConfig      `yaml:"debug" json:"debug"`
}

// APIConfig selects and tunes the LLM provider.
type APIConfig struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	Timeout    int    `yaml:"timeout" json:"timeout"`
	MaxRetries int    `yaml:"max_retries" json:"max_retries"`
	VerifySSL  bool   `yaml:"verify_ssl" json:"verify_ssl"`
}

// CommitConfig shapes generated messages.
type CommitConfig struct {
	MaxChars int      `yaml:"max_chars" json:"max_chars"`
	Types    []string `yaml:"types" json:"types"`
}

// ProcessingConfig bounds the diff sent to the provider.
type ProcessingConfig struct {
	MaxDiffSize     int      `yaml:"max_diff_size" json:"max_diff_size"`
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns"`
}

// SecurityConfig toggles the input and log safeguards.
type SecurityConfig struct {
	ValidateInputs bool `yaml:"validate_inputs" json:"validate_inputs"`
	SanitizeLogs   bool `yaml:"sanitize_logs" json:"sanitize_logs"`
	MaxLogSize     int  `yaml:"max_log_size" json:"max_log_size"`
}

// DebugConfig enables diagnostic output.
type DebugConfig struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	SaveRequests bool `yaml:"save_requests" json:"save_requests"`
}

// DefaultMap returns a fresh copy of the built-in configuration floor.
func DefaultMap() map[string]any {
	return map[string]any{
		"api": map[string]any{
			"provider":    "groq",
			"timeout":     30,
			"max_retries": 3,
			"verify_ssl":  true,
		},
		"commit": map[string]any{
			"max_chars": 72,
			"types": []any{
				"feat", "fix", "docs", "style", "refactor", "perf",
				"test", "build", "ci", "chore", "revert",
			},
		},
		"processing": map[string]any{
			"max_diff_size": 4000,
			"exclude_patterns": []any{
				"*.key", "*.pem", "*.p12", "*.env*", "secrets/*",
				"*.log", "*.tmp", "node_modules/**", ".git/**",
			},
		},
		"security": map[string]any{
			"validate_inputs": true,
			"sanitize_logs":   true,
			"max_log_size":    10485760,
		},
		"debug": map[string]any{
			"enabled":       false,
			"save_requests": false,
		},
	}
}

// Default returns the typed form of DefaultMap.
func Default() Config {
	cfg, err := decode(DefaultMap())
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults do not decode: %v", err))
	}
	return cfg
}

// Model returns the configured model or the provider's default.
func (c Config) Model() string {
	if c.API.Model != "" {
		return c.API.Model
	}
	return defaultModels[c.API.Provider]
}

// DefaultModel returns the model used for provider when api.model is unset.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Validate checks every bounded field of a merged configuration map.
func Validate(m map[string]any) error {
	api, err := section(m, "api")
	if err != nil {
		return err
	}
	provider, _ := api["provider"].(string)
	if !slices.Contains(Providers, provider) {
		return invalid("invalid API provider, must be one of: %s", strings.Join(Providers, ", "))
	}
	if err := intField(api, "api.timeout", "timeout", 30, MinTimeout, MaxTimeout); err != nil {
		return err
	}
	if err := intField(api, "api.max_retries", "max_retries", 3, MinRetries, MaxRetries); err != nil {
		return err
	}
	if err := boolField(api, "api.verify_ssl", "verify_ssl"); err != nil {
		return err
	}
	if v, ok := api["model"]; ok && v != nil {
		s, isStr := v.(string)
		if !isStr || !modelPattern.MatchString(s) {
			return invalid("api.model must be a model identifier")
		}
	}

	commit, err := section(m, "commit")
	if err != nil {
		return err
	}
	if err := intField(commit, "commit.max_chars", "max_chars", 72, MinMaxChars, MaxMaxChars); err != nil {
		return err
	}
	if v, ok := commit["types"]; ok {
		types, err := stringList(v)
		if err != nil || len(types) == 0 {
			return invalid("commit.types must be a non-empty list of strings")
		}
	}

	proc, err := section(m, "processing")
	if err != nil {
		return err
	}
	if err := intField(proc, "processing.max_diff_size", "max_diff_size", 4000, MinMaxDiffSize, MaxMaxDiffSize); err != nil {
		return err
	}
	if v, ok := proc["exclude_patterns"]; ok {
		patterns, err := stringList(v)
		if err != nil {
			return invalid("processing.exclude_patterns must be a list of strings")
		}
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return invalid("processing.exclude_patterns contains an invalid glob")
			}
		}
	}

	sec, err := section(m, "security")
	if err != nil {
		return err
	}
	for _, k := range []string{"validate_inputs", "sanitize_logs"} {
		if err := boolField(sec, "security."+k, k); err != nil {
			return err
		}
	}
	if err := intField(sec, "security.max_log_size", "max_log_size", 0, 0, 1<<30); err != nil {
		return err
	}

	dbg, err := section(m, "debug")
	if err != nil {
		return err
	}
	for _, k := range []string{"enabled", "save_requests"} {
		if err := boolField(dbg, "debug."+k, k); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return secerr.New(secerr.CategoryConfigInvalid, fmt.Sprintf(format, args...))
}

// section returns m[name] as a mapping. A missing section is treated as empty.
func section(m map[string]any, name string) (map[string]any, error) {
	v, ok := m[name]
	if !ok {
		return map[string]any{}, nil
	}
	sec, ok := v.(map[string]any)
	if !ok {
		return nil, invalid("%s must be a mapping", name)
	}
	return sec, nil
}

func intField(sec map[string]any, label, key string, def, lo, hi int) error {
	n := def
	if v, ok := sec[key]; ok {
		i, isInt := asInt(v)
		if !isInt {
			return invalid("%s must be an integer between %d and %d", label, lo, hi)
		}
		n = i
	}
	if n < lo || n > hi {
		return invalid("%s must be between %d and %d", label, lo, hi)
	}
	return nil
}

func boolField(sec map[string]any, label, key string) error {
	v, ok := sec[key]
	if !ok {
		return nil
	}
	if _, isBool := v.(bool); !isBool {
		return invalid("%s must be true or false", label)
	}
	return nil
}

// asInt accepts the integer types yaml.v3 produces; floats and strings are
// not integers.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func stringList(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("not a string")
		}
		out = append(out, s)
	}
	return out, nil
}

// decode converts a validated map into Config through a YAML round-trip.
func decode(m map[string]any) (Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
