// Package report renders the changes of a rewrite run as a Markdown
// document, and from there as HTML or styled terminal output.
package report

import (
	"fmt"
	"strings"

	"github.com/valpere/unfriction/internal/orchestrator"
)

// Markdown builds the change report for res.
func Markdown(title string, res *orchestrator.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)

	d := res.Diagnostics
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Units | %d |\n", d.Units)
	fmt.Fprintf(&b, "| Changes | %d |\n", len(res.Changes))
	fmt.Fprintf(&b, "| Rewriter failures | %d |\n", d.RewriterFailures)
	fmt.Fprintf(&b, "| Drift rejections | %d |\n", d.DriftRejections)
	fmt.Fprintf(&b, "| Residual friction | %d |\n", d.ResidualFlags)
	fmt.Fprintf(&b, "| Exempted | %d |\n", d.Exempted)
	fmt.Fprintf(&b, "| Suppressed duplicates | %d |\n", d.Suppressed)
	fmt.Fprintf(&b, "| Skipped (language) | %d |\n", d.LanguageSkips)
	b.WriteString("\n")

	b.WriteString("## Changes\n\n")
	if len(res.Changes) == 0 {
		b.WriteString("No friction language was rewritten.\n")
		return b.String()
	}
	b.WriteString("| # | Category | Original | Rewritten |\n|---|---|---|---|\n")
	for i, c := range res.Changes {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, c.Category, cell(c.Original), cell(c.Rewritten))
	}
	b.WriteString("\n")

	if len(res.Transformations) > 0 {
		b.WriteString("## Transformations\n\n")
		b.WriteString("| Category | Pattern | From | To | Context |\n|---|---|---|---|---|\n")
		for _, t := range res.Transformations {
			fmt.Fprintf(&b, "| %s | `%s` | %s | %s | %s |\n",
				t.Category, t.Pattern, cell(t.OriginalPhrase), cell(t.ReplacementPhrase), cell(t.Context))
		}
		b.WriteString("\n")
	}

	return b.String()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// cell makes text safe inside a Markdown table cell.
func cell(text string) string {
	text = cellEscaper.Replace(strings.TrimSpace(text))
	if text == "" {
		return "-"
	}
	return text
}
