// Package rewrite defines the Rewriter capability and its LLM backends.
//
// A Rewriter proposes a category-specific rewrite of one unit of text. It
// owns retries, rate limiting and timeouts; when it gives up it returns an
// error wrapping ErrNoRewrite (or an empty string), which the pipeline
// treats exactly like a declined rewrite.
package rewrite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/valpere/unfriction/internal/friction"
)

var (
	// ErrNoRewrite means the backend produced no usable text.
	ErrNoRewrite = errors.New("no rewrite produced")
	// ErrMissingKey means the backend is not configured with credentials.
	ErrMissingKey = errors.New("api key required")
)

// Request is one rewrite request.
type Request struct {
	Category friction.Category
	// Text is the text to rewrite.
	Text string
	// Original is the stage input; set on escalated retries.
	Original string
	// Context is the policy context key.
	Context string
	// Preceding is the tail of the already processed text.
	Preceding string
	// Attempt counts from 1.
	Attempt  int
	Escalate bool
	// Matches is the number of friction markers in Text.
	Matches int
}

// Rewriter proposes rewrites.
type Rewriter interface {
	Name() string
	Rewrite(ctx context.Context, req Request) (string, error)
}

// Config configures an LLM backend.
type Config struct {
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Endpoint    string        `mapstructure:"endpoint" json:"endpoint"`
	Model       string        `mapstructure:"model" json:"model"`
	Deployment  string        `mapstructure:"deployment" json:"deployment"`
	APIVersion  string        `mapstructure:"api_version" json:"api_version"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries" json:"max_retries"`
	RatePerMin  int           `mapstructure:"rate_per_min" json:"rate_per_min"`
	Temperature float32       `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" json:"max_tokens"`
}

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 3
	defaultTemperature = 0.3
	defaultMaxTokens   = 150
)

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	return c
}

// maxTokensFor grows the completion budget for long or multi-marker units.
func maxTokensFor(req Request, base int) int {
	n := base
	if req.Matches > 1 {
		n = base * 2
	}
	if need := len(req.Text) / 2; need > n {
		n = need
	}
	return n
}

// Func adapts a function to the Rewriter interface.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Rewrite(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Static rewrites by literal substitution per category. It backs offline
// runs and tests.
type Static struct {
	Replacements map[friction.Category]map[string]string
}

func (s *Static) Name() string { return "static" }

// Rewrite replaces every configured phrase of req.Category in req.Text.
// Phrases are applied longest first.
func (s *Static) Rewrite(_ context.Context, req Request) (string, error) {
	repl := s.Replacements[req.Category]
	if len(repl) == 0 {
		return "", ErrNoRewrite
	}
	keys := make([]string, 0, len(repl))
	for k := range repl {
		keys = append(keys, k)
	}
	sortByLenDesc(keys)

	out := req.Text
	for _, k := range keys {
		out = strings.ReplaceAll(out, k, repl[k])
	}
	return out, nil
}

func sortByLenDesc(keys []string) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && (len(keys[j]) > len(keys[j-1]) || (len(keys[j]) == len(keys[j-1]) && keys[j] < keys[j-1])); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}
