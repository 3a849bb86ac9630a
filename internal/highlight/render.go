package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// HTML renders marked spans as <span> elements with the highlight-change and
// highlight-add classes.
type HTML struct{}

func (HTML) Plain(text string) string { return textEscaper.Replace(text) }

func (HTML) Changed(original, text string) string {
	return `<span class="highlight-change" title="Original: ` + attrEscaper.Replace(original) + `">` +
		textEscaper.Replace(text) + `</span>`
}

func (HTML) Inserted(text string) string {
	return `<span class="highlight-add">` + textEscaper.Replace(text) + `</span>`
}

// Terminal renders marked spans with ANSI styles.
type Terminal struct {
	ChangeStyle   lipgloss.Style
	InsertStyle   lipgloss.Style
	OriginalStyle lipgloss.Style
	// ShowOriginal appends the replaced text after a changed span.
	ShowOriginal bool
}

// NewTerminal returns the default terminal styles: yellow for changed
// spans, green for inserted ones.
func NewTerminal(showOriginal bool) Terminal {
	return Terminal{
		ChangeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		InsertStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		OriginalStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
		ShowOriginal:  showOriginal,
	}
}

func (t Terminal) Plain(text string) string { return text }

func (t Terminal) Changed(original, text string) string {
	out := t.ChangeStyle.Render(text)
	if t.ShowOriginal {
		out += " " + t.OriginalStyle.Render("["+original+"]")
	}
	return out
}

func (t Terminal) Inserted(text string) string { return t.InsertStyle.Render(text) }
