package segment

import (
	"strings"
)

// DefaultContextWords is the default number of words extracted by
// ExtractContext for use as a sliding-window context.
const DefaultContextWords = 25

// ExtractContext returns the last wordCount words of text, joined by a single
// space. It gives the rewriter the text that precedes the unit being
// rewritten. If wordCount ≤ 0, DefaultContextWords is used.
func ExtractContext(text string, wordCount int) string {
	if wordCount <= 0 {
		wordCount = DefaultContextWords
	}
	words := strings.Fields(text)
	if len(words) <= wordCount {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-wordCount:], " ")
}

// EnsureTerminal appends a period to every non-blank line that does not end
// in terminal punctuation, so fragments such as list items become units of
// their own. Blank lines and line structure are preserved.
func EnsureTerminal(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if strings.ContainsAny(trimmed[len(trimmed)-1:], `.!?:;"')`) {
			continue
		}
		lines[i] = trimmed + "." + line[len(trimmed):]
	}
	return strings.Join(lines, "\n")
}
