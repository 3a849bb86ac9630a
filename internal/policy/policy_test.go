package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/unfriction/internal/friction"
)

func TestDefault_CoversEveryCategory(t *testing.T) {
	s := Default()
	for _, cat := range friction.Categories {
		tmpl, ok := s.Template(cat, friction.ContextDefault)
		require.True(t, ok, "missing default template for %s", cat)
		assert.Contains(t, tmpl.Prompt, "{text}")
	}
	assert.Contains(t, s.Categories[friction.Negation].Escalation, "{original}")
}

func TestTemplate_FallsBackToDefaultContext(t *testing.T) {
	s := Default()
	got, ok := s.Template(friction.Modal, "no-such-context")
	require.True(t, ok)
	want, _ := s.Template(friction.Modal, friction.ContextDefault)
	assert.Equal(t, want, got)
}

func TestTemplate_DistinctPerCategory(t *testing.T) {
	s := Default()
	c, _ := s.Template(friction.Contrastive, friction.ContextDefault)
	n, _ := s.Template(friction.Negation, friction.ContextDefault)
	assert.NotEqual(t, c.Prompt, n.Prompt)
}

func TestParse_UnknownCategory(t *testing.T) {
	_, err := Parse([]byte("categories:\n  sarcasm:\n    contexts: {}\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_OverridesOneContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	doc := `categories:
  contrastive:
    contexts:
      default:
        prompt: "Swap the contrast in: {text}"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	tmpl, _ := s.Template(friction.Contrastive, friction.ContextDefault)
	assert.Equal(t, "Swap the contrast in: {text}", tmpl.Prompt)

	_, ok := s.Template(friction.Contrastive, friction.ContextCorrelative)
	assert.True(t, ok, "contexts not named in the file keep their defaults")
	_, ok = s.Template(friction.Negation, friction.ContextCannot)
	assert.True(t, ok)
}

func TestSave_ThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	s := Default()
	s.Put(friction.Negation, "custom", Template{Prompt: "Be kind: {text}"})
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	tmpl, ok := loaded.Template(friction.Negation, "custom")
	require.True(t, ok)
	assert.Equal(t, "Be kind: {text}", tmpl.Prompt)
}

func TestRender(t *testing.T) {
	s := Default()
	out, err := s.Render(Prompt{
		Category:  friction.Contrastive,
		Context:   friction.ContextDefault,
		Text:      "I tried, but failed.",
		Preceding: "Earlier words.",
		Hint:      "Keep [PH0] markers.",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Text: I tried, but failed.")
	assert.Contains(t, out, "Example:")
	assert.Contains(t, out, "Earlier words.")
	assert.True(t, strings.HasSuffix(out, "Keep [PH0] markers."))
	assert.NotContains(t, out, "{text}")
}

func TestRender_Escalation(t *testing.T) {
	s := Default()
	out, err := s.Render(Prompt{
		Category: friction.Negation,
		Text:     "I am not ready.",
		Original: "I can't do it, I am not ready.",
		Escalate: true,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "ORIGINAL: I can't do it, I am not ready.")
	assert.Contains(t, out, "CURRENT (NEEDS REVISION): I am not ready.")
}

func TestRender_EscalationFallsBackToTemplate(t *testing.T) {
	s := Default()
	out, err := s.Render(Prompt{Category: friction.Modal, Context: friction.ContextModerate, Text: "You should go.", Escalate: true})
	require.NoError(t, err)
	assert.Contains(t, out, "You should go.")
}

func TestRender_UnknownCategory(t *testing.T) {
	_, err := (&Set{}).Render(Prompt{Category: friction.Modal, Text: "x"})
	assert.Error(t, err)
}
