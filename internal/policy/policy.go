// Package policy holds the per-category rewrite instructions handed to the
// rewriter. Built-in defaults are embedded; a YAML file can override any
// category/context pair.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/valpere/unfriction/internal/friction"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Example is a sample rewrite shown to the rewriter.
type Example struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Template is the instruction for one category/context pair. Prompt carries
// a {text} placeholder; escalation prompts also use {original}.
type Template struct {
	Prompt  string  `yaml:"prompt" json:"prompt"`
	Example Example `yaml:"example,omitempty" json:"example,omitempty"`
}

// Category is the policy of one friction category.
type Category struct {
	Contexts   map[string]Template `yaml:"contexts"`
	Escalation string              `yaml:"escalation,omitempty"`
}

// Set is a complete policy.
type Set struct {
	Categories map[friction.Category]Category `yaml:"categories"`
}

// Default returns a fresh copy of the built-in policy.
func Default() *Set {
	s, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("policy: invalid embedded defaults: %v", err))
	}
	return s
}

// Parse decodes a policy document.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	for cat := range s.Categories {
		if !cat.Valid() {
			return nil, fmt.Errorf("unknown category %q", cat)
		}
	}
	if s.Categories == nil {
		s.Categories = make(map[friction.Category]Category)
	}
	return &s, nil
}

// Load reads the policy file at path and overlays it on the defaults. A
// missing file yields the defaults.
func Load(path string) (*Set, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	s.Merge(override)
	return s, nil
}

// Merge copies every template and escalation of other into s.
func (s *Set) Merge(other *Set) {
	for cat, pol := range other.Categories {
		for ctx, tmpl := range pol.Contexts {
			s.Put(cat, ctx, tmpl)
		}
		if pol.Escalation != "" {
			cp := s.Categories[cat]
			cp.Escalation = pol.Escalation
			s.Categories[cat] = cp
		}
	}
}

// Put sets the template for a category/context pair.
func (s *Set) Put(cat friction.Category, ctx string, tmpl Template) {
	if s.Categories == nil {
		s.Categories = make(map[friction.Category]Category)
	}
	cp := s.Categories[cat]
	if cp.Contexts == nil {
		cp.Contexts = make(map[string]Template)
	}
	cp.Contexts[ctx] = tmpl
	s.Categories[cat] = cp
}

// Template returns the template for cat and ctx, falling back to the
// category's default context.
func (s *Set) Template(cat friction.Category, ctx string) (Template, bool) {
	pol, ok := s.Categories[cat]
	if !ok {
		return Template{}, false
	}
	if t, ok := pol.Contexts[ctx]; ok {
		return t, true
	}
	t, ok := pol.Contexts[friction.ContextDefault]
	return t, ok
}

// Contexts lists the context keys defined for cat, sorted.
func (s *Set) Contexts(cat friction.Category) []string {
	var keys []string
	for k := range s.Categories[cat].Contexts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save writes s to path as YAML.
func (s *Set) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write policy file: %w", err)
	}
	return nil
}

// Prompt is the input to Render.
type Prompt struct {
	Category  friction.Category
	Context   string
	Text      string
	Original  string
	Preceding string
	Escalate  bool
	Hint      string
}

// Render builds the instruction for one rewrite request.
func (s *Set) Render(p Prompt) (string, error) {
	var body string
	if p.Escalate {
		body = s.Categories[p.Category].Escalation
	}
	var example Example
	if body == "" {
		tmpl, ok := s.Template(p.Category, p.Context)
		if !ok {
			return "", fmt.Errorf("no template for %s/%s", p.Category, p.Context)
		}
		body, example = tmpl.Prompt, tmpl.Example
	}

	original := p.Original
	if original == "" {
		original = p.Text
	}
	out := strings.NewReplacer("{text}", p.Text, "{original}", original).Replace(body)

	var b strings.Builder
	b.WriteString(strings.TrimSpace(out))
	if example.From != "" && example.To != "" {
		fmt.Fprintf(&b, "\n\nExample:\nFrom: %s\nTo: %s", example.From, example.To)
	}
	if p.Preceding != "" {
		fmt.Fprintf(&b, "\n\nPreceding text, for reference only (do not rewrite it): %s", p.Preceding)
	}
	if p.Hint != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Hint)
	}
	return b.String(), nil
}
