// Package placeholder shields content the rewriter must not touch (markup,
// code, URLs, e-mail addresses and user-protected phrases) by replacing it
// with numbered markers ([PH0], [PH1], …) before rewriting. Restore puts the
// originals back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// fenced code blocks: ```...``` (non-greedy, may span lines)
	reFencedCode = regexp.MustCompile("(?s)```.*?```")

	// inline code spans: `...`
	reInlineCode = regexp.MustCompile("`[^`]+`")

	reURL   = regexp.MustCompile(`\bhttps?://[^\s<>"]+[^\s<>".,;:!?)]`)
	reEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// HTML/XML tags: opening, closing, and self-closing
	reHTMLTag = regexp.MustCompile(`<[^>]+>`)

	rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Protector replaces protected content with markers. The zero value protects
// markup only.
type Protector struct {
	phrases *regexp.Regexp
}

// New returns a Protector that additionally shields every phrase in terms,
// matched case-insensitively on word boundaries.
func New(terms []string) *Protector {
	var quoted []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return &Protector{}
	}
	// longest first so overlapping phrases protect the widest span
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return &Protector{phrases: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)}
}

// Protect replaces protected spans with [PH0], [PH1], … in the order the
// passes run and returns the captured originals for Restore.
func (p *Protector) Protect(text string) (string, []string) {
	var markers []string

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(markers))
		markers = append(markers, match)
		return id
	}

	// fenced first (longest match), then inline code, links, tags, phrases
	text = reFencedCode.ReplaceAllStringFunc(text, replace)
	text = reInlineCode.ReplaceAllStringFunc(text, replace)
	text = reURL.ReplaceAllStringFunc(text, replace)
	text = reEmail.ReplaceAllStringFunc(text, replace)
	text = reHTMLTag.ReplaceAllStringFunc(text, replace)
	if p != nil && p.phrases != nil {
		text = p.phrases.ReplaceAllStringFunc(text, replace)
	}

	return text, markers
}

// Protect shields markup only.
func Protect(text string) (string, []string) {
	return (*Protector)(nil).Protect(text)
}

// Restore substitutes [PHn] markers in text back with the originals captured
// by Protect. Unrecognised indices leave the placeholder as-is.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// InstructionHint returns a sentence to append to a rewrite prompt so the
// model leaves markers intact.
func InstructionHint() string {
	return "Keep every [PHn] marker exactly as it appears; do not rewrite, move or remove it."
}

// Validate returns the indices of markers missing from text.
func Validate(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
