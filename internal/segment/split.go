package segment

import (
	"regexp"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	punktOnce sync.Once
	punktTok  *sentences.DefaultSentenceTokenizer
	punktErr  error
)

// punktSplitter wraps the Punkt tokenizer trained on English text.
type punktSplitter struct {
	tok *sentences.DefaultSentenceTokenizer
}

func newPunktSplitter() (*punktSplitter, error) {
	punktOnce.Do(func() {
		punktTok, punktErr = english.NewSentenceTokenizer(nil)
	})
	if punktErr != nil {
		return nil, punktErr
	}
	return &punktSplitter{tok: punktTok}, nil
}

func (p *punktSplitter) Split(text string) []string {
	var out []string
	for _, s := range p.tok.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// abbreviations never end a sentence.
var abbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "etc", "i.e", "e.g",
	"a.m", "p.m", "fig", "vs", "inc", "ltd", "co", "corp", "dept",
}

// dotMask stands in for a protected period while splitting.
const dotMask = "\uE000"

var (
	abbrevRe   = regexp.MustCompile(`(?i)\b(?:` + abbrevAlternation() + `)\.`)
	boundaryRe = regexp.MustCompile(`[.!?]\s+[A-Z]`)
)

func abbrevAlternation() string {
	quoted := make([]string, len(abbreviations))
	for i, a := range abbreviations {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return strings.Join(quoted, "|")
}

// RegexSplitter splits after terminal punctuation followed by whitespace and
// a capital letter, ignoring periods that end a known abbreviation.
type RegexSplitter struct{}

func (RegexSplitter) Split(text string) []string {
	masked := abbrevRe.ReplaceAllStringFunc(text, func(m string) string {
		return m[:len(m)-1] + dotMask
	})

	var out []string
	start := 0
	for _, loc := range boundaryRe.FindAllStringIndex(masked, -1) {
		cut := loc[0] + 1
		if piece := strings.TrimSpace(masked[start:cut]); piece != "" {
			out = append(out, piece)
		}
		start = cut
	}
	if piece := strings.TrimSpace(masked[start:]); piece != "" {
		out = append(out, piece)
	}

	for i := range out {
		out[i] = strings.ReplaceAll(out[i], dotMask, ".")
	}
	return out
}

var (
	// negativeIdiomRe finds sentence-initial negative statements, which the
	// primary splitter tends to merge into a neighbour.
	negativeIdiomRe = regexp.MustCompile(`(?i)(?:^|\.\s+)(?:No|Not|I don'?t|I can'?t|I won'?t|I haven'?t|I'?m not|It'?s not|There'?s no|There is no)[^.!?]*?[.!?]`)
	leadingDotRe    = regexp.MustCompile(`^\.\s+`)

	// shortClauseRe finds capitalized clauses of at least two words ending in
	// terminal punctuation.
	shortClauseRe = regexp.MustCompile(`\b[A-Z][^.!?]*?\s[^.!?]*?[.!?]`)
)

// problematicPhrases are short fragments the scans above are known to miss.
var problematicPhrases = []string{
	"Not what I wanted.",
	"I didn't get it done.",
	"So, I am not going to be smiling",
	"These are not things I normally do.",
	"I don't know how",
	"I am not there.",
	"No, I'm not.",
	"No.",
	"Nothing.",
}

func negativeIdioms(text string) []Unit {
	var out []Unit
	for _, loc := range negativeIdiomRe.FindAllStringIndex(text, -1) {
		m := text[loc[0]:loc[1]]
		start := loc[0]
		if lead := leadingDotRe.FindString(m); lead != "" {
			m = m[len(lead):]
			start += len(lead)
		}
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, Unit{Text: m, Offset: start})
		}
	}
	return out
}

func shortClauses(text string) []Unit {
	var out []Unit
	for _, loc := range shortClauseRe.FindAllStringIndex(text, -1) {
		out = append(out, Unit{Text: text[loc[0]:loc[1]], Offset: loc[0]})
	}
	return out
}

func literalPhrases(text string) []Unit {
	var out []Unit
	for _, phrase := range problematicPhrases {
		if idx := strings.Index(text, phrase); idx >= 0 {
			out = append(out, Unit{Text: phrase, Offset: idx})
		}
	}
	return out
}
