package friction

import (
	"fmt"
	"sort"
	"strings"
)

// pointContextChars is how much surrounding text a Point carries on each side.
const pointContextChars = 20

// Point is a friction marker located in a document, with a suggestion for
// the author. Scan produces points without rewriting anything.
type Point struct {
	Category   Category `json:"category"`
	PatternID  string   `json:"pattern_id"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Original   string   `json:"original"`
	Suggestion string   `json:"suggestion"`
	Context    string   `json:"context"`
}

var suggestions = map[Category]string{
	Contrastive: `Consider "and" or "at the same time" instead of %q.`,
	Modal:       `Consider an invitational form ("might", "can", "it may help to") instead of %q.`,
	Negation:    `Consider stating what is present or possible instead of %q.`,
}

// Scan returns every friction marker in text across all categories, ordered
// by position. Negation markers inside exempt short responses are skipped.
// Overlapping negation matches are collapsed to the widest one.
func Scan(text string) []Point {
	var points []Point
	for _, cat := range Categories {
		if cat == Negation && IsExemptResponse(text) {
			continue
		}
		for _, m := range collapse(Matches(text, cat)) {
			points = append(points, Point{
				Category:   cat,
				PatternID:  m.PatternID,
				Start:      m.Start,
				End:        m.End,
				Original:   m.Text,
				Suggestion: fmt.Sprintf(suggestions[cat], strings.ToLower(m.Text)),
				Context:    surrounding(text, m.Start, m.End),
			})
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Start < points[j].Start })
	return points
}

// collapse drops matches contained inside a wider match.
func collapse(ms []Match) []Match {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Start != ms[j].Start {
			return ms[i].Start < ms[j].Start
		}
		return ms[i].End > ms[j].End
	})
	var out []Match
	for _, m := range ms {
		if n := len(out); n > 0 && m.End <= out[n-1].End {
			continue
		}
		out = append(out, m)
	}
	return out
}

func surrounding(text string, start, end int) string {
	from := start - pointContextChars
	if from < 0 {
		from = 0
	}
	to := end + pointContextChars
	if to > len(text) {
		to = len(text)
	}
	// keep byte offsets on rune boundaries
	for from > 0 && !isBoundary(text, from) {
		from--
	}
	for to < len(text) && !isBoundary(text, to) {
		to++
	}
	return strings.TrimSpace(text[from:to])
}

func isBoundary(s string, i int) bool {
	return i == 0 || i == len(s) || s[i]&0xC0 != 0x80
}
