// Package postprocess removes common LLM artifacts from rewriter output.
//
// It is applied to the raw text returned by every LLM-backed rewriter
// (Azure OpenAI, OpenRouter, Ollama, Gemini) before the candidate reaches
// the gate.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// Normalize is Clean followed by FixSpacing.
func Normalize(text string) string {
	return FixSpacing(Clean(text))
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// RE2 has no backreferences, so each tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match lead-ins that models prepend to the rewritten text.
// Each is anchored to the start and requires a colon.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [rewritten|revised|transformed] text:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:rewritten |revised |transformed |updated )?(?:text|sentence|version)\s*:`),
	// "[Rewritten|Revised] [text|sentence]:" and "Output:" / "To:"
	regexp.MustCompile(`(?i)^(?:(?:the )?(?:rewritten|revised|transformed)(?: text| sentence| version)?|output|to)\s*:`),
	// "Sure / Certainly / Of course[,] here is [the] text:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the)? (?:rewritten |revised |transformed )?(?:text|sentence|version)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them. Supported pairs: "…" '…' «…» “…” ‘…’.
// Text with inner quotes of the same kind is left alone, since the outer
// pair is then part of the sentence.
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		inner := string(runes[1 : n-1])
		if strings.ContainsRune(inner, first) || strings.ContainsRune(inner, last) {
			return text
		}
		return strings.TrimSpace(inner)
	}
	return text
}

// --- Spacing ---

var (
	digitGroupRe    = regexp.MustCompile(`(\d)[ \t\x{00A0}]*,[ \t\x{00A0}]*(\d{3})\b`)
	spaceBeforePunc = regexp.MustCompile(`[ \t\x{00A0}]+([.,;:?!])`)
	spaceAfterOpen  = regexp.MustCompile(`([(\[{])[ \t]+`)
	spaceBeforeShut = regexp.MustCompile(`[ \t]+([)\]}])`)
	multiSpaceRe    = regexp.MustCompile(`[ \t]{2,}`)
)

// FixSpacing strips whitespace before clause punctuation, tightens brackets,
// collapses runs of spaces and rejoins digit groups ("10 , 000" → "10,000").
// Line breaks are left alone.
func FixSpacing(text string) string {
	if text == "" {
		return text
	}
	text = digitGroupRe.ReplaceAllString(text, "$1,$2")
	text = spaceBeforePunc.ReplaceAllString(text, "$1")
	text = spaceAfterOpen.ReplaceAllString(text, "$1")
	text = spaceBeforeShut.ReplaceAllString(text, "$1")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	return text
}
