package orchestrator

import (
	"strings"

	"github.com/valpere/unfriction/internal/align"
	"github.com/valpere/unfriction/internal/friction"
)

// transformationContextChars is how much original text a Transformation
// carries on each side of the edit before widening to word boundaries.
const transformationContextChars = 30

// Derive splits a Change into phrase-level transformations, one per
// non-equal span of the token alignment between Original and Rewritten.
func Derive(c Change) []Transformation {
	a, b := align.Tokenize(c.Original), align.Tokenize(c.Rewritten)
	aSpans, bSpans := align.Spans(c.Original), align.Spans(c.Rewritten)

	var out []Transformation
	for _, op := range align.Ops(a, b) {
		if op.Kind == align.Equal {
			continue
		}

		start, end := len(c.Original), len(c.Original)
		if op.I1 < len(aSpans) {
			start, end = aSpans[op.I1][0], aSpans[op.I1][0]
		}
		if op.I2 > op.I1 {
			end = aSpans[op.I2-1][1]
		}
		replacement := ""
		if op.J2 > op.J1 {
			replacement = c.Rewritten[bSpans[op.J1][0]:bSpans[op.J2-1][1]]
		}
		phrase := c.Original[start:end]

		pattern := friction.PatternFor(phrase, c.Category)
		if pattern == "" {
			pattern = string(c.Category)
		}
		out = append(out, Transformation{
			Category:          c.Category,
			Pattern:           pattern,
			OriginalPhrase:    phrase,
			ReplacementPhrase: replacement,
			Context:           excerpt(c.Original, start, end, transformationContextChars),
		})
	}
	return out
}

// excerpt returns text around [start, end) widened by width bytes and then
// to the nearest spaces, marking truncated sides with "...".
func excerpt(text string, start, end, width int) string {
	left := start - width
	if left <= 0 {
		left = 0
	} else {
		for left > 0 && text[left-1] != ' ' {
			left--
		}
	}
	right := end + width
	if right >= len(text) {
		right = len(text)
	} else {
		for right < len(text) && text[right] != ' ' {
			right++
		}
	}

	out := strings.TrimSpace(text[left:right])
	if left > 0 {
		out = "..." + out
	}
	if right < len(text) {
		out += "..."
	}
	return out
}
