package friction

import (
	"regexp"
	"strings"
)

// exemptResponseRes match short yes/no answers. A bare "No." carries a
// negation marker but is a complete response, not friction.
var exemptResponseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:yes|no)[.?!]?$`),
	regexp.MustCompile(`(?i)^(?:yes|no),`),
	regexp.MustCompile(`(?i)^(?:answer|response|replied|response is|answer is):\s*["']?no["']?[.?]?$`),
	regexp.MustCompile(`(?i)^(?:answer|response|replied|the answer)(?:\s+(?:is|was))?\s+["']?no["']?[.?]?$`),
}

// IsExemptResponse reports whether text is a standalone yes/no response that
// the negation stage leaves alone.
func IsExemptResponse(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, re := range exemptResponseRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var correlativeRe = regexp.MustCompile(`(?i)\bnot\s+(?:just|only)\b.*\bbut\b`)

// IsCorrelative reports whether text contains a "not just/only ... but"
// construction. Its "not" belongs to the contrastive pair and is rewritten
// by the contrastive stage, so the negation stage skips it.
func IsCorrelative(text string) bool {
	return correlativeRe.MatchString(text)
}

// Policy context keys.
const (
	ContextDefault     = "default"
	ContextCorrelative = "correlative"

	ContextHigh     = "high"
	ContextModerate = "moderate"
	ContextLow      = "low"
	ContextSpecial  = "special"

	ContextCannot     = "cannot"
	ContextNothing    = "nothing"
	ContextAbility    = "ability"
	ContextState      = "state"
	ContextDeterminer = "determiner"
	ContextComplex    = "complex"
)

var (
	modalHighRe     = regexp.MustCompile(`(?i)\b(?:must|have to|has to|need to|needs to|required to)\b`)
	modalModerateRe = regexp.MustCompile(`(?i)\b(?:should|shouldn'?t|ought to)\b`)
	modalLowRe      = regexp.MustCompile(`(?i)\b(?:could|couldn'?t|might|may)\b`)
	modalSpecialRe  = regexp.MustCompile(`(?i)\b(?:would|wouldn'?t)\b`)

	negCannotRe     = regexp.MustCompile(`(?i)\bcannot\b`)
	negNothingRe    = regexp.MustCompile(`(?i)\bnothing\b`)
	negAbilityRe    = regexp.MustCompile(`(?i)\b(?:can't|couldn't|unable|can not|could not)\b`)
	negStateRe      = regexp.MustCompile(`(?i)\b(?:is|are|was|were|am)\s+not\b|\b(?:isn't|aren't|wasn't|weren't|i'm not)\b`)
	negDeterminerRe = regexp.MustCompile(`(?i)\bno\s+[a-z]+`)
)

// Context picks the policy context key for a category given the text being
// rewritten. Distinct contexts let the rewriter receive a more specific
// instruction; the result is opaque to the pipeline.
func Context(text string, category Category) string {
	switch category {
	case Contrastive:
		if IsCorrelative(text) {
			return ContextCorrelative
		}
	case Modal:
		switch {
		case modalHighRe.MatchString(text):
			return ContextHigh
		case modalModerateRe.MatchString(text):
			return ContextModerate
		case modalLowRe.MatchString(text):
			return ContextLow
		case modalSpecialRe.MatchString(text):
			return ContextSpecial
		}
	case Negation:
		if Count(text, Negation) >= 3 {
			return ContextComplex
		}
		switch {
		case negCannotRe.MatchString(text):
			return ContextCannot
		case negNothingRe.MatchString(text):
			return ContextNothing
		case negAbilityRe.MatchString(text):
			return ContextAbility
		case negStateRe.MatchString(text):
			return ContextState
		case negDeterminerRe.MatchString(text):
			return ContextDeterminer
		}
	}
	return ContextDefault
}
