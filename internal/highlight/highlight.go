// Package highlight marks what a rewrite changed in a paragraph.
//
// Spans that are new in the processed text are marked as inserted, spans
// that replaced original text are marked as changed and carry the original.
// Deletions are not shown. Differences that only reorder clauses, change
// chunk boundaries or touch punctuation stay unmarked.
package highlight

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/valpere/unfriction/internal/align"
)

// Renderer formats the spans of a highlighted paragraph.
type Renderer interface {
	Plain(text string) string
	Changed(original, text string) string
	Inserted(text string) string
}

var (
	spaceBeforePunc = regexp.MustCompile(`\s+([,.;:?!])`)
	digitGroupRe    = regexp.MustCompile(`(\d)\s*,\s*(\d{3})\b`)
	wsRe            = regexp.MustCompile(`\s+`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// Highlight returns processed as HTML with changed and inserted spans
// marked against original.
func Highlight(original, processed string) string {
	return Render(original, processed, HTML{})
}

// Render highlights one paragraph with r.
func Render(original, processed string, r Renderer) string {
	if strings.TrimSpace(original) == strings.TrimSpace(processed) {
		return fixSpacing(r.Plain(processed))
	}

	a, b := align.Tokenize(original), align.Tokenize(processed)
	aSpans, bSpans := align.Spans(original), align.Spans(processed)
	exact := exactMatches(original, processed)

	var sb strings.Builder
	pos := 0
	for _, op := range align.Ops(a, b) {
		if op.J2 <= op.J1 {
			continue
		}
		start, end := bSpans[op.J1][0], bSpans[op.J2-1][1]
		sb.WriteString(r.Plain(processed[pos:start]))
		text := processed[start:end]

		switch {
		case op.Kind == align.Equal || exact[normalize(text)]:
			sb.WriteString(r.Plain(text))
		case op.Kind == align.Replace:
			orig := original[aSpans[op.I1][0]:aSpans[op.I2-1][1]]
			if sameWords(orig, text) {
				sb.WriteString(r.Plain(text))
			} else {
				sb.WriteString(r.Changed(orig, text))
			}
		case op.Kind == align.Insert:
			if punctuationOnly(b[op.J1:op.J2]) {
				sb.WriteString(r.Plain(text))
			} else {
				sb.WriteString(r.Inserted(text))
			}
		}
		pos = end
	}
	sb.WriteString(r.Plain(processed[pos:]))

	return fixSpacing(sb.String())
}

// Document highlights text paragraph by paragraph. When the paragraph
// counts differ the whole text is treated as one paragraph.
func Document(original, processed string, r Renderer) string {
	origLines := strings.Split(original, "\n")
	procLines := strings.Split(processed, "\n")
	if len(origLines) != len(procLines) {
		return Render(original, processed, r)
	}
	out := make([]string, len(procLines))
	for i := range procLines {
		out[i] = Render(origLines[i], procLines[i], r)
	}
	return strings.Join(out, "\n")
}

// exactMatches builds the set of normalized chunks that occur, whole or
// contained, on both sides. Chunks are cut once at sentence punctuation and
// once at commas.
func exactMatches(original, processed string) map[string]bool {
	set := make(map[string]bool)
	o, p := normalize(original), normalize(processed)
	for _, split := range []func(string) []string{sentenceChunks, commaChunks} {
		for _, oc := range split(o) {
			for _, pc := range split(p) {
				if oc == pc || strings.Contains(oc, pc) || strings.Contains(pc, oc) {
					set[oc] = true
					set[pc] = true
				}
			}
		}
	}
	return set
}

func sentenceChunks(s string) []string {
	return chunks(sentenceSplitRe.Split(s, -1))
}

func commaChunks(s string) []string {
	return chunks(strings.Split(s, ","))
}

func chunks(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(strings.ToLower(s), " "))
}

// sameWords reports whether a and b differ only in case or punctuation.
func sameWords(a, b string) bool {
	wa, wb := words(a), words(b)
	if len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if wa[i] != wb[i] {
			return false
		}
	}
	return true
}

func words(s string) []string {
	var out []string
	for _, tok := range align.Tokenize(strings.ToLower(s)) {
		if isWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func punctuationOnly(tokens []string) bool {
	for _, tok := range tokens {
		if isWord(tok) {
			return false
		}
	}
	return true
}

func isWord(tok string) bool {
	return strings.IndexFunc(tok, func(r rune) bool {
		return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

func fixSpacing(s string) string {
	s = spaceBeforePunc.ReplaceAllString(s, "$1")
	return digitGroupRe.ReplaceAllString(s, "$1,$2")
}
