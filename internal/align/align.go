// Package align tokenizes text into word and punctuation tokens and computes
// a minimal edit script between two token sequences.
//
// The edit script is a longest-common-subsequence alignment: tokens are
// mapped to single runes and diffed with diffmatchpatch, so every distinct
// token compares as one unit.
package align

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// tokenRe matches a word (letters, digits, underscore, with inner
// apostrophes or hyphens) or any single non-space character.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['-][\p{L}\p{N}_]+)*|\S`)

// Tokenize splits text into word tokens and standalone punctuation tokens.
func Tokenize(text string) []string {
	return tokenRe.FindAllString(text, -1)
}

// Spans returns the byte offsets [start, end) of every token of text, in
// the order Tokenize returns them.
func Spans(text string) [][]int {
	return tokenRe.FindAllStringIndex(text, -1)
}

// Kind is the type of an aligned span.
type Kind int

const (
	Equal Kind = iota
	Replace
	Delete
	Insert
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Replace:
		return "replace"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	}
	return "unknown"
}

// Op describes how a[I1:I2] maps onto b[J1:J2].
type Op struct {
	Kind   Kind
	I1, I2 int
	J1, J2 int
}

// Ops returns the edit script turning a into b. Adjacent deletions and
// insertions are merged into a single Replace op.
func Ops(a, b []string) []Op {
	ra, rb := encode(a, b)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(ra, rb, false)

	var ops []Op
	i, j := 0, 0
	del, ins := 0, 0

	flush := func() {
		switch {
		case del > 0 && ins > 0:
			ops = append(ops, Op{Kind: Replace, I1: i, I2: i + del, J1: j, J2: j + ins})
		case del > 0:
			ops = append(ops, Op{Kind: Delete, I1: i, I2: i + del, J1: j, J2: j})
		case ins > 0:
			ops = append(ops, Op{Kind: Insert, I1: i, I2: i, J1: j, J2: j + ins})
		}
		i += del
		j += ins
		del, ins = 0, 0
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		if n == 0 {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			del += n
		case diffmatchpatch.DiffInsert:
			ins += n
		case diffmatchpatch.DiffEqual:
			flush()
			ops = append(ops, Op{Kind: Equal, I1: i, I2: i + n, J1: j, J2: j + n})
			i += n
			j += n
		}
	}
	flush()

	return ops
}

// Ratio returns 2*M/T where M is the number of tokens in equal spans and T
// the total token count of both sequences. Two empty sequences have ratio 1.
func Ratio(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, op := range Ops(a, b) {
		if op.Kind == Equal {
			matched += op.I2 - op.I1
		}
	}
	return 2.0 * float64(matched) / float64(total)
}

// Join renders a token slice back to text with single spaces.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

// encode maps every distinct token to a rune so the character differ treats
// tokens atomically. Surrogate code points are skipped since they do not
// survive the string conversions inside diffmatchpatch.
func encode(a, b []string) ([]rune, []rune) {
	dict := make(map[string]rune, len(a)+len(b))
	next := rune(1)

	conv := func(tokens []string) []rune {
		out := make([]rune, len(tokens))
		for k, tok := range tokens {
			r, ok := dict[tok]
			if !ok {
				if next >= 0xD800 && next <= 0xDFFF {
					next = 0xE000
				}
				r = next
				dict[tok] = r
				next++
			}
			out[k] = r
		}
		return out
	}

	return conv(a), conv(b)
}
