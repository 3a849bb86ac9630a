// Package gate decides whether a proposed rewrite of a unit is kept.
//
// A rewrite is rejected wholesale when it touches too many tokens of the
// original relative to the drift budget of its category. There is no partial
// acceptance: the caller either gets the candidate or the original back.
package gate

import (
	"github.com/valpere/unfriction/internal/align"
	"github.com/valpere/unfriction/internal/friction"
)

// minGatedTokens is the original token count at or below which every
// rewrite is accepted; drift ratios on tiny units are meaningless.
const minGatedTokens = 5

// Bucket groups match counts for the threshold lookup.
type Bucket int

const (
	Single Bucket = iota
	Multiple
)

// BucketOf returns the bucket for a stage's match count.
func BucketOf(matchCount int) Bucket {
	if matchCount > 1 {
		return Multiple
	}
	return Single
}

type key struct {
	category friction.Category
	bucket   Bucket
}

// thresholds is the maximum tolerated drift ratio per category and bucket.
var thresholds = map[key]float64{
	{friction.Contrastive, Single}:   0.2,
	{friction.Contrastive, Multiple}: 0.2,
	{friction.Modal, Single}:         0.3,
	{friction.Modal, Multiple}:       0.4,
	{friction.Negation, Single}:      0.3,
	{friction.Negation, Multiple}:    0.4,
}

// Threshold returns the drift budget for category at matchCount. Unknown
// categories get the strictest budget.
func Threshold(category friction.Category, matchCount int) float64 {
	if t, ok := thresholds[key{category, BucketOf(matchCount)}]; ok {
		return t
	}
	return thresholds[key{friction.Contrastive, Single}]
}

// Decision is the outcome of evaluating one candidate.
type Decision struct {
	Accepted  bool
	Changed   int
	Total     int
	Ratio     float64
	Threshold float64
}

// Evaluate measures the drift of candidate against original without
// deciding what text to return.
func Evaluate(original, candidate string, matchCount int, category friction.Category) Decision {
	d := Decision{Threshold: Threshold(category, matchCount)}
	if candidate == original {
		d.Accepted = true
		return d
	}

	a, b := align.Tokenize(original), align.Tokenize(candidate)
	d.Total = len(a)
	d.Changed = Changed(align.Ops(a, b))
	if d.Total > 0 {
		d.Ratio = float64(d.Changed) / float64(d.Total)
	}
	d.Accepted = d.Total <= minGatedTokens || d.Ratio <= d.Threshold
	return d
}

// Accept returns candidate when its drift from original is within budget,
// and original otherwise. An empty candidate is never accepted.
func Accept(original, candidate string, matchCount int, category friction.Category) string {
	if candidate == "" {
		return original
	}
	if Evaluate(original, candidate, matchCount, category).Accepted {
		return candidate
	}
	return original
}

// Changed counts the original tokens an edit script touches. Replaced and
// deleted spans count their original tokens; a pure insertion touches one
// position of the original.
func Changed(ops []align.Op) int {
	n := 0
	for _, op := range ops {
		switch op.Kind {
		case align.Replace, align.Delete:
			n += op.I2 - op.I1
		case align.Insert:
			n++
		}
	}
	return n
}
