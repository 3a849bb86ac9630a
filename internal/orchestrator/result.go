package orchestrator

import (
	"fmt"

	"github.com/valpere/unfriction/internal/friction"
)

// Change records one accepted rewrite of a unit for one category.
type Change struct {
	Category    friction.Category `json:"category"`
	Original    string            `json:"original"`
	Rewritten   string            `json:"rewritten"`
	Explanation string            `json:"explanation"`
}

func newChange(cat friction.Category, original, rewritten string) Change {
	return Change{
		Category:    cat,
		Original:    original,
		Rewritten:   rewritten,
		Explanation: fmt.Sprintf("Replaced %q type friction language", string(cat)),
	}
}

// Transformation is a phrase-level view of a Change, for reporting.
type Transformation struct {
	Category          friction.Category `json:"category"`
	Pattern           string            `json:"pattern"`
	OriginalPhrase    string            `json:"original_phrase"`
	ReplacementPhrase string            `json:"replacement_phrase"`
	Context           string            `json:"context"`
}

// Diagnostics counts the non-fatal events of one Process call.
type Diagnostics struct {
	Units            int `json:"units"`
	RewriterFailures int `json:"rewriter_failures"`
	DriftRejections  int `json:"drift_rejections"`
	ResidualFlags    int `json:"residual_flags"`
	Exempted         int `json:"exempted"`
	Suppressed       int `json:"suppressed"`
	LanguageSkips    int `json:"language_skips"`
}

// Result is the outcome of one Process call.
type Result struct {
	Text            string           `json:"text"`
	Changes         []Change         `json:"changes"`
	Transformations []Transformation `json:"transformations"`
	Highlighted     string           `json:"highlighted,omitempty"`
	HasHighlight    bool             `json:"has_highlight"`
	Diagnostics     Diagnostics      `json:"diagnostics"`
}
