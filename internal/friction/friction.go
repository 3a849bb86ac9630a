// Package friction detects friction language: contrastive, modal-obligation
// and negation markers. All functions are stateless and safe for concurrent
// use.
package friction

import (
	"regexp"
	"sort"
)

// Category is one of the fixed friction categories.
type Category string

const (
	Contrastive Category = "contrastive"
	Modal       Category = "modal"
	Negation    Category = "negation"
)

// Categories lists the categories in pipeline order.
var Categories = []Category{Contrastive, Modal, Negation}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Contrastive, Modal, Negation:
		return true
	}
	return false
}

// Match is a single marker occurrence in a text.
type Match struct {
	Category  Category
	PatternID string
	Start     int
	End       int
	Text      string
}

type pattern struct {
	id string
	re *regexp.Regexp
}

func p(id, expr string) pattern {
	return pattern{id: id, re: regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`)}
}

var patterns = map[Category][]pattern{
	Contrastive: {
		p("but", `but`),
		p("yet", `yet`),
	},
	Modal: {
		p("should", `should`),
		p("shouldnt", `shouldn'?t`),
		p("could", `could`),
		p("couldnt", `couldn'?t`),
		p("would", `would`),
		p("wouldnt", `wouldn'?t`),
		p("we_need_to", `we need to`),
	},
	Negation: {
		p("not", `not`),
		p("never", `never`),
		p("without", `without`),
		p("no", `no`),
		p("none", `none`),
		p("nobody", `nobody`),
		p("nothing", `nothing`),
		p("nowhere", `nowhere`),
		p("contraction", `isn't|aren't|wasn't|weren't|hasn't|haven't|hadn't|doesn't|don't|didn't|won't|wouldn't|can't|couldn't|shouldn't|mightn't|mustn't|needn't|ain't`),
		p("full_form", `(?:is|are|was|were|has|have|had|do|does|did|will|would|can|could|should|might|must|may) not`),
		p("cannot", `cannot`),
		p("soft", `unable|impossible|difficult to|lack of|fail(?:ing|ed|s) to|hardly|rarely|scarcely|seldom`),
	},
}

// Matches returns every marker of category found in text, ordered by start
// offset. Overlapping patterns (e.g. "not" inside "is not") each produce a
// match.
func Matches(text string, category Category) []Match {
	var out []Match
	for _, pat := range patterns[category] {
		for _, loc := range pat.re.FindAllStringIndex(text, -1) {
			out = append(out, Match{
				Category:  category,
				PatternID: pat.id,
				Start:     loc[0],
				End:       loc[1],
				Text:      text[loc[0]:loc[1]],
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Count returns the number of category markers in text.
func Count(text string, category Category) int {
	n := 0
	for _, pat := range patterns[category] {
		n += len(pat.re.FindAllStringIndex(text, -1))
	}
	return n
}

// Has reports whether text contains at least one category marker.
func Has(text string, category Category) bool {
	for _, pat := range patterns[category] {
		if pat.re.MatchString(text) {
			return true
		}
	}
	return false
}

// PatternFor returns the id of the first pattern of category matching text,
// or "" when none does.
func PatternFor(text string, category Category) string {
	m := Matches(text, category)
	if len(m) == 0 {
		return ""
	}
	return m[0].PatternID
}
