package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/rewrite"
	"github.com/valpere/unfriction/internal/segment"
)

const e2eInput = "You shouldn't ignore the signs, but you can't fix them overnight."

func e2eRewriter() *rewrite.Static {
	return &rewrite.Static{Replacements: map[friction.Category]map[string]string{
		friction.Contrastive: {"but": "and at the same time"},
		friction.Modal:       {"shouldn't": "might not"},
		friction.Negation:    {"can't": "are still working to"},
	}}
}

// countingRewriter records every request it receives.
type countingRewriter struct {
	fn       func(req rewrite.Request) (string, error)
	requests []rewrite.Request
}

func (c *countingRewriter) Name() string { return "counting" }

func (c *countingRewriter) Rewrite(_ context.Context, req rewrite.Request) (string, error) {
	c.requests = append(c.requests, req)
	if c.fn == nil {
		return "", rewrite.ErrNoRewrite
	}
	return c.fn(req)
}

func newTestOrchestrator(r rewrite.Rewriter, cfg Config) *Orchestrator {
	return New(segment.NewWithSplitter(segment.RegexSplitter{}), r, cfg)
}

func categories(changes []Change) []friction.Category {
	out := make([]friction.Category, len(changes))
	for i, c := range changes {
		out[i] = c.Category
	}
	return out
}

func TestProcess_EndToEnd(t *testing.T) {
	o := newTestOrchestrator(e2eRewriter(), Config{})

	res := o.Process(context.Background(), e2eInput, false)

	assert.Equal(t, "You might not ignore the signs, and at the same time you are still working to fix them overnight.", res.Text)
	require.Len(t, res.Changes, 3)
	assert.Equal(t, []friction.Category{friction.Contrastive, friction.Modal, friction.Negation}, categories(res.Changes))
	assert.Equal(t, e2eInput, res.Changes[0].Original)
	assert.Equal(t, res.Changes[0].Rewritten, res.Changes[1].Original)
	assert.Equal(t, res.Changes[1].Rewritten, res.Changes[2].Original)
	assert.Equal(t, res.Text, res.Changes[2].Rewritten)
	assert.Equal(t, `Replaced "negation" type friction language`, res.Changes[2].Explanation)

	assert.False(t, res.HasHighlight)
	assert.Empty(t, res.Highlighted)
	assert.Equal(t, 1, res.Diagnostics.Units)
	assert.Equal(t, 1, res.Diagnostics.ResidualFlags)
}

func TestProcess_EndToEndHighlight(t *testing.T) {
	o := newTestOrchestrator(e2eRewriter(), Config{})

	res := o.Process(context.Background(), e2eInput, true)

	assert.True(t, res.HasHighlight)
	assert.Equal(t, 3, strings.Count(res.Highlighted, `class="highlight-change"`))
	assert.Contains(t, res.Highlighted, `title="Original: but"`)
}

func TestProcess_EndToEndTransformations(t *testing.T) {
	o := newTestOrchestrator(e2eRewriter(), Config{})

	res := o.Process(context.Background(), e2eInput, false)

	require.Len(t, res.Transformations, 3)
	assert.Equal(t, Transformation{
		Category:          friction.Contrastive,
		Pattern:           "but",
		OriginalPhrase:    "but",
		ReplacementPhrase: "and at the same time",
		Context:           e2eInput,
	}, res.Transformations[0])
	assert.Equal(t, "shouldnt", res.Transformations[1].Pattern)
	assert.Equal(t, "might not", res.Transformations[1].ReplacementPhrase)
	assert.Equal(t, "contraction", res.Transformations[2].Pattern)
	assert.Equal(t, "can't", res.Transformations[2].OriginalPhrase)
}

func TestProcess_StandaloneNo(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) { return "Yes.", nil }}
	o := newTestOrchestrator(rw, Config{})

	require.True(t, friction.Has("No.", friction.Negation))
	res := o.Process(context.Background(), "No.", true)

	assert.Equal(t, "No.", res.Text)
	assert.Empty(t, res.Changes)
	assert.Empty(t, rw.requests)
	assert.Equal(t, "No.", res.Highlighted)
	assert.Equal(t, 1, res.Diagnostics.Exempted)
}

func TestProcess_NoFrictionIsUnchanged(t *testing.T) {
	rw := &countingRewriter{}
	o := newTestOrchestrator(rw, Config{})
	text := "The sun is warm today.  We walked to the lake."

	res := o.Process(context.Background(), text, false)

	assert.Equal(t, text, res.Text)
	assert.Empty(t, res.Changes)
	assert.Empty(t, rw.requests)
}

func TestProcess_EmptyInput(t *testing.T) {
	o := newTestOrchestrator(&countingRewriter{}, Config{})

	for _, in := range []string{"", "   ", "\n\n"} {
		res := o.Process(context.Background(), in, true)
		assert.Equal(t, in, res.Text)
		assert.Empty(t, res.Changes)
	}
}

func TestProcess_RewriterFailureKeepsText(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return "", errors.New("timeout")
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "You should rest.", false)

	assert.Equal(t, "You should rest.", res.Text)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 1, res.Diagnostics.RewriterFailures)
}

func TestProcess_DriftRejected(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return "Let's wrap everything up before the weekend arrives.", nil
	}}
	o := newTestOrchestrator(rw, Config{})
	text := "We should probably finish the report by Friday."

	res := o.Process(context.Background(), text, false)

	assert.Equal(t, text, res.Text)
	assert.Empty(t, res.Changes)
	assert.Equal(t, 1, res.Diagnostics.DriftRejections)
}

func TestProcess_ResidualRetryResolves(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		if req.Escalate {
			return "I can go.", nil
		}
		return "I cannot go.", nil
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "I can't go.", false)

	assert.Equal(t, "I can go.", res.Text)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "I can't go.", res.Changes[0].Original)
	assert.Equal(t, "I can go.", res.Changes[0].Rewritten)

	require.Len(t, rw.requests, 2)
	assert.False(t, rw.requests[0].Escalate)
	assert.True(t, rw.requests[1].Escalate)
	assert.Equal(t, 2, rw.requests[1].Attempt)
	assert.Equal(t, "I cannot go.", rw.requests[1].Text)
	assert.Equal(t, "I can't go.", rw.requests[1].Original)
	assert.Zero(t, res.Diagnostics.ResidualFlags)
}

func TestProcess_ResidualRetryCeiling(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return "I cannot go.", nil
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "I can't go.", false)

	assert.Equal(t, "I cannot go.", res.Text)
	assert.Len(t, rw.requests, 3)
	assert.Equal(t, 1, res.Diagnostics.ResidualFlags)
}

func TestProcess_FailedRetryKeepsLatestAccepted(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		if req.Escalate {
			return "", rewrite.ErrNoRewrite
		}
		return "I cannot go.", nil
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "I can't go.", false)

	assert.Equal(t, "I cannot go.", res.Text)
	assert.Len(t, rw.requests, 2)
	assert.Equal(t, 1, res.Diagnostics.RewriterFailures)
}

func TestProcess_CorrelativeSkipsNegation(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return "", rewrite.ErrNoRewrite
	}}
	o := newTestOrchestrator(rw, Config{})

	o.Process(context.Background(), "It is not just fast but cheap.", false)

	require.Len(t, rw.requests, 1)
	assert.Equal(t, friction.Contrastive, rw.requests[0].Category)
	assert.Equal(t, friction.ContextCorrelative, rw.requests[0].Context)
}

func TestProcess_DuplicateUnitsSuppressed(t *testing.T) {
	rw := &rewrite.Static{Replacements: map[friction.Category]map[string]string{
		friction.Modal: {"should": "might"},
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "You should rest. You should rest.", false)

	assert.Equal(t, "You might rest.", res.Text)
	assert.Len(t, res.Changes, 1)
	assert.Equal(t, 1, res.Diagnostics.Suppressed)
}

func TestProcess_LongerUnitReplacesContainedOne(t *testing.T) {
	rw := &rewrite.Static{Replacements: map[friction.Category]map[string]string{
		friction.Modal: {"should": "might"},
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "You should rest. You should rest now and then.", false)

	assert.Equal(t, "You might rest now and then.", res.Text)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "You should rest now and then.", res.Changes[0].Original)
}

func TestProcess_PreservesParagraphs(t *testing.T) {
	rw := &rewrite.Static{Replacements: map[friction.Category]map[string]string{
		friction.Modal: {"should": "might"},
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "You should rest.\n\nThe sun is warm.\n", true)

	assert.Equal(t, "You might rest.\n\nThe sun is warm.\n", res.Text)
	assert.Equal(t, 4, len(strings.Split(res.Highlighted, "\n")))
}

func TestProcess_ProtectsMarkup(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return strings.Replace(req.Text, "should", "might", 1), nil
	}}
	o := newTestOrchestrator(rw, Config{})

	res := o.Process(context.Background(), "You should read https://example.com/docs today.", false)

	assert.Equal(t, "You might read https://example.com/docs today.", res.Text)
	require.Len(t, rw.requests, 1)
	assert.Contains(t, rw.requests[0].Text, "[PH0]")
	assert.NotContains(t, rw.requests[0].Text, "example.com")
}

func TestProcess_DroppedPlaceholderIsFailure(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return "You might read it today.", nil
	}}
	o := newTestOrchestrator(rw, Config{})
	text := "You should read https://example.com/docs today."

	res := o.Process(context.Background(), text, false)

	assert.Equal(t, text, res.Text)
	assert.Equal(t, 1, res.Diagnostics.RewriterFailures)
}

type keywordGuard string

func (g keywordGuard) Accepts(text string) bool { return !strings.Contains(text, string(g)) }

func TestProcess_LanguageGuard(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return "Bonjour, you might rest.", nil
	}}
	o := newTestOrchestrator(rw, Config{Guard: keywordGuard("Bonjour")})

	res := o.Process(context.Background(), "Bonjour, mais non.\nYou should rest.", false)

	assert.Equal(t, "Bonjour, mais non.\nYou should rest.", res.Text)
	assert.Equal(t, 1, res.Diagnostics.LanguageSkips)
	assert.Equal(t, 1, res.Diagnostics.RewriterFailures)
	assert.Len(t, rw.requests, 1)
}

func TestProcess_PrecedingContext(t *testing.T) {
	rw := &countingRewriter{fn: func(req rewrite.Request) (string, error) {
		return strings.Replace(req.Text, "should", "might", 1), nil
	}}
	o := newTestOrchestrator(rw, Config{})

	o.Process(context.Background(), "The sun is warm. You should rest.", false)

	require.Len(t, rw.requests, 1)
	assert.Equal(t, "The sun is warm.", rw.requests[0].Preceding)
}

func TestProcess_CancelledContext(t *testing.T) {
	rw := &countingRewriter{}
	o := newTestOrchestrator(rw, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.Process(ctx, e2eInput, false)

	assert.Equal(t, e2eInput, res.Text)
	assert.Empty(t, rw.requests)
}

func TestProcess_NoStateAcrossCalls(t *testing.T) {
	o := newTestOrchestrator(e2eRewriter(), Config{})

	first := o.Process(context.Background(), e2eInput, false)
	second := o.Process(context.Background(), "The sun is warm.", false)

	assert.Len(t, first.Changes, 3)
	assert.Empty(t, second.Changes)
	assert.Zero(t, second.Diagnostics.ResidualFlags)
}

func TestDerive_ContextTruncation(t *testing.T) {
	c := newChange(friction.Contrastive,
		"In the early spring of that long year we planned the trip, but the weather turned against us in every possible way.",
		"In the early spring of that long year we planned the trip, and the weather turned against us in every possible way.")

	ts := Derive(c)

	require.Len(t, ts, 1)
	assert.Equal(t, "but", ts[0].OriginalPhrase)
	assert.Equal(t, "and", ts[0].ReplacementPhrase)
	assert.True(t, strings.HasPrefix(ts[0].Context, "...long year"))
	assert.True(t, strings.HasSuffix(ts[0].Context, "..."))
	assert.Contains(t, ts[0].Context, "we planned the trip, but the weather")
}

func TestNearDuplicate(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"you might rest", "you might rest", true},
		{"you might rest", "you might rest now and then", true},
		{"no", "i know nothing", false},
		{"the cat sat on the mat today", "the cat sat on the mat yesterday", true},
		{"the sun is warm", "we walked to the lake", false},
	}
	for _, tt := range tests {
		if got := nearDuplicate(normalizeUnit(tt.a), normalizeUnit(tt.b)); got != tt.want {
			t.Errorf("nearDuplicate(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
