// Package segment splits text into ordered, deduplicated sentence-like units.
//
// Several independent passes propose candidate units (a statistical sentence
// splitter, a negative-idiom scan, a short-clause scan and a list of literal
// phrases). All candidates are collected with their offsets and a single
// resolution pass removes duplicates, so the passes never need to know about
// each other.
package segment

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// fallbackMinChars is the length above which a single-unit result from the
	// primary splitter is treated as a failure.
	fallbackMinChars = 150

	// dedupWindow is the maximum offset distance between duplicate candidates.
	dedupWindow = 5

	// similarityThreshold bounds both the Jaccard and the subset test.
	similarityThreshold = 0.8

	// longUnitWords is the word count above which a unit is split further.
	longUnitWords = 30
)

// Unit is a span of the normalized text.
type Unit struct {
	Text   string
	Offset int
}

// Splitter is a primary sentence-boundary splitter.
type Splitter interface {
	Split(text string) []string
}

// Segmenter splits text into units. The zero value is not usable; call New.
type Segmenter struct {
	primary Splitter
}

// New returns a Segmenter backed by the Punkt sentence tokenizer. If the
// tokenizer cannot be loaded the boundary-protected regex splitter is used.
func New() *Segmenter {
	if ps, err := newPunktSplitter(); err == nil {
		return &Segmenter{primary: ps}
	}
	return &Segmenter{primary: RegexSplitter{}}
}

// NewWithSplitter returns a Segmenter using s as its primary splitter.
func NewWithSplitter(s Splitter) *Segmenter {
	return &Segmenter{primary: s}
}

// NormalizeQuotes replaces directional quotation marks with straight ones.
func NormalizeQuotes(text string) string {
	return quoteReplacer.Replace(text)
}

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
)

// Parse returns the unit texts of text in order.
func (s *Segmenter) Parse(text string) []string {
	units := s.Units(text)
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}

// Units returns the units of text with their offsets in the quote-normalized
// text. It never fails: non-empty input always yields at least one unit.
func (s *Segmenter) Units(text string) []Unit {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	norm := NormalizeQuotes(text)

	var cands []Unit
	cands = append(cands, s.primaryUnits(norm)...)
	cands = append(cands, negativeIdioms(norm)...)
	cands = append(cands, shortClauses(norm)...)
	cands = append(cands, literalPhrases(norm)...)

	units := resolve(cands)

	var out []Unit
	for _, u := range units {
		out = append(out, splitLong(u)...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })

	if len(out) == 0 {
		return []Unit{{Text: strings.TrimSpace(norm), Offset: strings.Index(norm, strings.TrimSpace(norm))}}
	}
	return out
}

// primaryUnits runs the primary splitter, falling back to the regex splitter
// when the primary collapses a long punctuated text into one unit. Offsets
// are located with a moving cursor so repeated sentences get distinct
// positions.
func (s *Segmenter) primaryUnits(text string) []Unit {
	parts := s.primary.Split(text)
	if len(parts) <= 1 && len(text) > fallbackMinChars && strings.ContainsAny(text, ".!?") {
		parts = RegexSplitter{}.Split(text)
	}

	var out []Unit
	cursor := 0
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.Index(text[cursor:], part)
		if idx < 0 {
			if idx = strings.Index(text, part); idx < 0 {
				idx = cursor
			}
		} else {
			idx += cursor
			cursor = idx + len(part)
		}
		out = append(out, Unit{Text: part, Offset: idx})
	}
	return out
}

// resolve deduplicates candidates. Candidates are visited by offset, longer
// first on ties. A candidate is dropped when its span lies inside an already
// kept unit, or when it duplicates a kept unit that starts within
// dedupWindow characters; in the latter case the longer of the two is kept.
func resolve(cands []Unit) []Unit {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Offset != cands[j].Offset {
			return cands[i].Offset < cands[j].Offset
		}
		return len(cands[i].Text) > len(cands[j].Text)
	})

	var kept []Unit
	for _, c := range cands {
		if c.Text == "" {
			continue
		}
		dup := false
		for i, k := range kept {
			if contains(k, c) {
				dup = true
				break
			}
			if abs(k.Offset-c.Offset) > dedupWindow || !similar(k.Text, c.Text) {
				continue
			}
			dup = true
			if len(c.Text) > len(k.Text) {
				kept[i] = c
			}
			break
		}
		if !dup {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Offset < kept[j].Offset })
	return kept
}

func contains(outer, inner Unit) bool {
	return outer.Offset <= inner.Offset &&
		inner.Offset+len(inner.Text) <= outer.Offset+len(outer.Text)
}

// similar reports whether two candidate texts are duplicates: Jaccard
// similarity of their lowercase word sets above the threshold, direct
// substring containment, or one word set being a large subset of the other.
func similar(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb || strings.Contains(la, lb) || strings.Contains(lb, la) {
		return true
	}
	wa, wb := wordSet(la), wordSet(lb)
	if len(wa) == 0 || len(wb) == 0 {
		return false
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if float64(inter)/float64(union) > similarityThreshold {
		return true
	}
	return subset(wa, wb, inter) || subset(wb, wa, inter)
}

// subset reports whether at least 80% of small's words appear in large.
// A set much larger than its counterpart is never treated as a subset.
func subset(small, large map[string]struct{}, inter int) bool {
	if len(small) > len(large)+5 {
		return false
	}
	return float64(inter)/float64(len(small)) >= similarityThreshold
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
