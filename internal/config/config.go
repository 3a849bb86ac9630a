// Package config loads unfriction settings from defaults, an optional YAML
// config file, UNFRICTION_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/unfriction/internal/rewrite"
)

// ErrUnknownBackend is returned for a backend name that has no rewriter.
var ErrUnknownBackend = errors.New("unknown backend")

// EnvPrefix prefixes every environment variable, e.g. UNFRICTION_DB.
const EnvPrefix = "UNFRICTION"

// Backend names.
const (
	Azure      = "azure"
	OpenRouter = "openrouter"
	Ollama     = "ollama"
	Gemini     = "gemini"
)

var knownBackends = []string{Azure, OpenRouter, Ollama, Gemini}

type Config struct {
	// Backend is a comma-separated fallback list of rewriters.
	Backend    string `mapstructure:"backend"`
	DB         string `mapstructure:"db"`
	NoCache    bool   `mapstructure:"no_cache"`
	PolicyFile string `mapstructure:"policy_file"`
	// Language is the expected input language; empty disables the guard.
	Language string   `mapstructure:"language"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Rewriter Rewriter `mapstructure:"rewriter"`

	Azure      rewrite.Config `mapstructure:"azure"`
	OpenRouter rewrite.Config `mapstructure:"openrouter"`
	Ollama     rewrite.Config `mapstructure:"ollama"`
	Gemini     rewrite.Config `mapstructure:"gemini"`
}

type Pipeline struct {
	EnsureTerminal bool `mapstructure:"ensure_terminal"`
	ContextWords   int  `mapstructure:"context_words"`
}

// Rewriter holds settings shared by every backend unless the backend
// section overrides them.
type Rewriter struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RatePerMin int           `mapstructure:"rate_per_min"`
}

// Flags maps config keys to the command-line flags that override them.
var Flags = map[string]string{
	"backend":                  "backend",
	"db":                       "db",
	"no_cache":                 "no-cache",
	"policy_file":              "policy",
	"language":                 "language",
	"pipeline.ensure_terminal": "ensure-terminal",
}

var backendKeys = []string{
	"api_key", "endpoint", "model", "deployment", "api_version",
	"timeout", "max_retries", "rate_per_min", "temperature", "max_tokens",
}

// conventional provider variables accepted besides UNFRICTION_*.
var providerEnv = map[string]string{
	"azure.api_key":      "AZURE_OPENAI_API_KEY",
	"azure.endpoint":     "AZURE_OPENAI_ENDPOINT",
	"openrouter.api_key": "OPENROUTER_API_KEY",
	"gemini.api_key":     "GEMINI_API_KEY",
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("backend", OpenRouter)
	v.SetDefault("db", "./data/unfriction.db")
	v.SetDefault("no_cache", false)
	v.SetDefault("policy_file", "")
	v.SetDefault("language", "en")
	v.SetDefault("pipeline.ensure_terminal", true)
	v.SetDefault("pipeline.context_words", 0)
	v.SetDefault("rewriter.timeout", 60*time.Second)
	v.SetDefault("rewriter.max_retries", 3)
	v.SetDefault("rewriter.rate_per_min", 0)
	for _, b := range knownBackends {
		for _, k := range backendKeys {
			v.SetDefault(b+"."+k, nil)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range providerEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}

	return v
}

// Load reads configuration into a Config. configFile may be empty, in which
// case unfriction.yaml is looked up in the working directory and in
// $HOME/.config/unfriction and is optional. flags may be nil.
func Load(v *viper.Viper, configFile string, flags *pflag.FlagSet) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("unfriction")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/unfriction")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range Flags {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Backends returns the configured backend names in fallback order.
func (c *Config) Backends() ([]string, error) {
	var out []string
	for _, name := range strings.Split(c.Backend, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if !known(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no backend configured", ErrUnknownBackend)
	}
	return out, nil
}

// BackendConfig returns the settings of backend name with the shared
// rewriter settings filled in where the backend leaves them unset.
func (c *Config) BackendConfig(name string) (rewrite.Config, error) {
	var bc rewrite.Config
	switch name {
	case Azure:
		bc = c.Azure
	case OpenRouter:
		bc = c.OpenRouter
	case Ollama:
		bc = c.Ollama
	case Gemini:
		bc = c.Gemini
	default:
		return bc, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}

	if bc.Timeout == 0 {
		bc.Timeout = c.Rewriter.Timeout
	}
	if bc.MaxRetries == 0 {
		bc.MaxRetries = c.Rewriter.MaxRetries
	}
	if bc.RatePerMin == 0 {
		bc.RatePerMin = c.Rewriter.RatePerMin
	}
	return bc, nil
}

func known(name string) bool {
	for _, b := range knownBackends {
		if b == name {
			return true
		}
	}
	return false
}
