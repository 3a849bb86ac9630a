// Package language guards the pipeline against non-English input and
// rewriter output that drifted into another language.
package language

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lingua "github.com/pemistahl/lingua-go"
)

// minDetectLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and pass.
const minDetectLength = 20

// ErrWrongLanguage is returned by Check when the detected language differs
// from the expected one.
var ErrWrongLanguage = errors.New("unexpected language")

// Guard checks that text is written in the expected language.
// The underlying detector is expensive to build; it is created on first use
// and the Guard should be reused.
type Guard struct {
	expected string

	once     sync.Once
	detector lingua.LanguageDetector
}

// New returns a Guard for the ISO 639-1 code expected ("en" when empty).
func New(expected string) *Guard {
	if expected == "" {
		expected = "en"
	}
	return &Guard{expected: strings.ToLower(expected)}
}

func (g *Guard) det() lingua.LanguageDetector {
	g.once.Do(func() {
		g.detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return g.detector
}

// Detect returns the most likely language of text.
func (g *Guard) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return g.det().DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (g *Guard) DetectISO(text string) (string, bool) {
	lang, ok := g.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Check returns nil when text appears to be in the expected language.
//
// Blank text, short texts (fewer than minDetectLength runes) and texts whose
// language cannot be determined pass. A mismatch wraps ErrWrongLanguage and
// names both codes.
func (g *Guard) Check(text string) error {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minDetectLength {
		return nil
	}
	detected, ok := g.DetectISO(text)
	if !ok {
		return nil
	}
	if detected != g.expected {
		return fmt.Errorf("%w: expected %s but detected %s", ErrWrongLanguage, g.expected, detected)
	}
	return nil
}

// Accepts reports whether Check passes.
func (g *Guard) Accepts(text string) bool {
	return g.Check(text) == nil
}
