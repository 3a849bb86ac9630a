package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/valpere/unfriction/internal/orchestrator"
)

const pageStyle = `body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.6em; vertical-align: top; }
.highlighted { white-space: pre-wrap; line-height: 1.6; }
.highlight-change { background: #fff3b0; }
.highlight-add { background: #c8f7c5; }`

// ToHTML converts Markdown to an HTML fragment.
func ToHTML(md []byte) string {
	opts := mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	}
	renderer := mdhtml.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

// HTML renders a standalone HTML page for res. When res carries highlighted
// output it is included verbatim after the report tables.
func HTML(title string, res *orchestrator.Result) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n", html.EscapeString(title), pageStyle)
	b.WriteString(ToHTML([]byte(Markdown(title, res))))
	if res.HasHighlight {
		b.WriteString("<h2>Highlighted output</h2>\n<div class=\"highlighted\">")
		b.WriteString(res.Highlighted)
		b.WriteString("</div>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// Terminal renders the Markdown report for a terminal of the given width.
func Terminal(title string, res *orchestrator.Result, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(Markdown(title, res))
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
