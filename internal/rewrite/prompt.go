package rewrite

import (
	"strings"

	"github.com/valpere/unfriction/internal/placeholder"
	"github.com/valpere/unfriction/internal/policy"
)

// SystemPrompt is sent as the system message by chat-style backends.
const SystemPrompt = `You are a specialized language transformation assistant. You rewrite text to remove one kind of friction language while keeping everything else verbatim.
Only respond with the rewritten text, nothing else. No explanations, no quotes, no labels.
Keep the same meaning, tense, person and punctuation style. Do not add new facts. If nothing needs to change, return the text unchanged.`

// Prompter renders the user message for a request.
type Prompter struct {
	Policy *policy.Set
}

// NewPrompter returns a Prompter over set, or the built-in policy when set
// is nil.
func NewPrompter(set *policy.Set) *Prompter {
	if set == nil {
		set = policy.Default()
	}
	return &Prompter{Policy: set}
}

// Render builds the user message for req.
func (p *Prompter) Render(req Request) (string, error) {
	hint := ""
	if strings.Contains(req.Text, "[PH") {
		hint = placeholder.InstructionHint()
	}
	return p.Policy.Render(policy.Prompt{
		Category:  req.Category,
		Context:   req.Context,
		Text:      req.Text,
		Original:  req.Original,
		Preceding: req.Preceding,
		Escalate:  req.Escalate,
		Hint:      hint,
	})
}
