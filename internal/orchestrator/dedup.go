package orchestrator

import (
	"regexp"
	"strings"

	"github.com/valpere/unfriction/internal/align"
)

// duplicateRatio is the token similarity above which two units are
// near-duplicates.
const duplicateRatio = 0.8

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

type entry struct {
	text    string
	key     string
	changes []Change
}

// paragraph collects the output units of one paragraph.
type paragraph struct {
	entries []entry
}

// add appends a unit unless it is a near-duplicate of one already added. A
// unit that strictly contains an earlier one replaces it, dropping the
// earlier unit's changes. It reports whether text was kept and whether an
// earlier unit was dropped for it.
func (p *paragraph) add(text string, changes []Change) (kept, replaced bool) {
	key := normalizeUnit(text)
	for i, e := range p.entries {
		if !nearDuplicate(key, e.key) {
			continue
		}
		if len(key) > len(e.key) && containsWords(key, e.key) {
			p.entries[i] = entry{text: text, key: key, changes: changes}
			return true, true
		}
		return false, false
	}
	p.entries = append(p.entries, entry{text: text, key: key, changes: changes})
	return true, false
}

func (p *paragraph) text() string {
	parts := make([]string, len(p.entries))
	for i, e := range p.entries {
		parts[i] = e.text
	}
	return strings.Join(parts, " ")
}

func (p *paragraph) changes() []Change {
	var out []Change
	for _, e := range p.entries {
		out = append(out, e.changes...)
	}
	return out
}

func normalizeUnit(s string) string {
	s = nonWordRe.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// nearDuplicate compares two normalized units: equality, containment in
// either direction, or a token LCS ratio above duplicateRatio.
func nearDuplicate(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	if a == b || containsWords(a, b) || containsWords(b, a) {
		return true
	}
	return align.Ratio(strings.Fields(a), strings.Fields(b)) > duplicateRatio
}

// containsWords reports whether inner occurs in outer on word boundaries.
func containsWords(outer, inner string) bool {
	return strings.Contains(" "+outer+" ", " "+inner+" ")
}
