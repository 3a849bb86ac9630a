package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/orchestrator"
)

func sampleResult() *orchestrator.Result {
	c := orchestrator.Change{
		Category:    friction.Contrastive,
		Original:    "It works, but it is slow | sometimes.",
		Rewritten:   "It works, and it is slow | sometimes.",
		Explanation: `Replaced "contrastive" type friction language`,
	}
	return &orchestrator.Result{
		Text:            c.Rewritten,
		Changes:         []orchestrator.Change{c},
		Transformations: orchestrator.Derive(c),
		Highlighted:     `It works, <span class="highlight-change" title="Original: but">and</span> it is slow | sometimes.`,
		HasHighlight:    true,
		Diagnostics:     orchestrator.Diagnostics{Units: 1, ResidualFlags: 2},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown("Report", sampleResult())

	assert.True(t, strings.HasPrefix(md, "# Report\n"))
	assert.Contains(t, md, "| Units | 1 |")
	assert.Contains(t, md, "| Residual friction | 2 |")
	assert.Contains(t, md, `| 1 | contrastive | It works, but it is slow \| sometimes. |`)
	assert.Contains(t, md, "## Transformations")
	assert.Contains(t, md, "| contrastive | `but` | but | and |")
}

func TestMarkdown_NoChanges(t *testing.T) {
	md := Markdown("Report", &orchestrator.Result{Text: "Fine."})

	assert.Contains(t, md, "No friction language was rewritten.")
	assert.NotContains(t, md, "## Transformations")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "-", cell("  "))
	assert.Equal(t, `a \| b c`, cell("a | b\nc"))
}

func TestToHTML(t *testing.T) {
	out := ToHTML([]byte("# Title\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestHTML(t *testing.T) {
	out := HTML("Run <1>", sampleResult())

	assert.Contains(t, out, "<title>Run &lt;1&gt;</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, `<div class="highlighted">It works, <span class="highlight-change"`)
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestHTML_WithoutHighlight(t *testing.T) {
	res := sampleResult()
	res.HasHighlight = false

	assert.NotContains(t, HTML("Report", res), `class="highlighted"`)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("Report", sampleResult(), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}
