package segment

import (
	"regexp"
	"strings"
)

var (
	conjunctionRe = regexp.MustCompile(`(?i)\s+(and|but)\s+`)
	subordinateRe = regexp.MustCompile(`(?i),\s+(which|who|when|where|because|although|since)\s+`)
)

// splitLong splits a unit of more than longUnitWords words that contains a
// coordinating conjunction or a semicolon. Semicolons win over conjunctions,
// conjunctions over subordinate-clause markers.
func splitLong(u Unit) []Unit {
	if len(strings.Fields(u.Text)) <= longUnitWords {
		return []Unit{u}
	}
	lower := strings.ToLower(u.Text)
	hasSemicolon := strings.Contains(u.Text, ";")
	if !hasSemicolon && !strings.Contains(lower, " and ") && !strings.Contains(lower, " but ") {
		return []Unit{u}
	}

	if hasSemicolon {
		if parts := splitSemicolons(u); len(parts) > 1 {
			return parts
		}
	}
	if parts := splitOnMarker(u, conjunctionRe); len(parts) > 1 {
		return parts
	}
	if parts := splitOnMarker(u, subordinateRe); len(parts) > 1 {
		return parts
	}
	return []Unit{u}
}

func splitSemicolons(u Unit) []Unit {
	var out []Unit
	pos := 0
	for _, raw := range strings.Split(u.Text, ";") {
		piece := strings.TrimSpace(raw)
		if piece != "" {
			lead := strings.Index(raw, piece)
			out = append(out, Unit{Text: capitalize(piece), Offset: u.Offset + pos + lead})
		}
		pos += len(raw) + 1
	}
	return out
}

// splitOnMarker cuts u before every match of re. The marker captured by the
// first group is re-attached, capitalized, to the piece that follows it.
func splitOnMarker(u Unit, re *regexp.Regexp) []Unit {
	locs := re.FindAllStringSubmatchIndex(u.Text, -1)
	if len(locs) == 0 {
		return nil
	}

	var out []Unit
	if head := strings.TrimSpace(u.Text[:locs[0][0]]); head != "" {
		out = append(out, Unit{Text: head, Offset: u.Offset + strings.Index(u.Text, head)})
	}
	for k, loc := range locs {
		end := len(u.Text)
		if k+1 < len(locs) {
			end = locs[k+1][0]
		}
		marker := capitalize(strings.ToLower(u.Text[loc[2]:loc[3]]))
		piece := marker
		if rest := strings.TrimSpace(u.Text[loc[1]:end]); rest != "" {
			piece += " " + rest
		}
		out = append(out, Unit{Text: piece, Offset: u.Offset + loc[2]})
	}
	return out
}
