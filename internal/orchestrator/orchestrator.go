// Package orchestrator runs the rewrite pipeline over a document.
//
// Each paragraph is segmented into units and every unit passes through the
// contrastive, modal and negation stages in that order. A stage only calls
// the rewriter when the detector finds a marker, and only keeps a rewrite
// the gate accepts. Surviving units are deduplicated and joined back into
// the paragraph.
package orchestrator

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/highlight"
	"github.com/valpere/unfriction/internal/placeholder"
	"github.com/valpere/unfriction/internal/rewrite"
	"github.com/valpere/unfriction/internal/segment"
)

// Stages is the fixed processing order.
var Stages = []friction.Category{friction.Contrastive, friction.Modal, friction.Negation}

// Guard rejects text in an unexpected language. language.Guard implements it.
type Guard interface {
	Accepts(text string) bool
}

type Config struct {
	Logger *zap.Logger
	// Protector shields markup and protected phrases from the rewriter.
	// Nil protects markup only.
	Protector *placeholder.Protector
	// Guard skips non-English paragraphs and drops candidates that drifted
	// into another language. Nil disables the check.
	Guard Guard
	// EnsureTerminal terminates unpunctuated lines before segmenting.
	EnsureTerminal bool
	// ContextWords is the size of the preceding-text window sent with each
	// request; 0 uses segment.DefaultContextWords, negative disables it.
	ContextWords int
}

type Orchestrator struct {
	segmenter *segment.Segmenter
	rewriter  rewrite.Rewriter
	config    Config
	logger    *zap.Logger
}

func New(segmenter *segment.Segmenter, rewriter rewrite.Rewriter, config Config) *Orchestrator {
	if segmenter == nil {
		segmenter = segment.New()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		segmenter: segmenter,
		rewriter:  rewriter,
		config:    config,
		logger:    logger,
	}
}

// run holds the accumulators of one Process call.
type run struct {
	diag     Diagnostics
	previous strings.Builder
}

// Process rewrites text and returns the result. It never fails: rewriter
// errors, gate rejections and residual markers degrade to keeping the
// pre-stage text and are counted in Diagnostics. A cancelled ctx stops
// further rewriter calls and the remaining units are kept as they are.
func (o *Orchestrator) Process(ctx context.Context, text string, withHighlight bool) *Result {
	res := &Result{Text: text}
	if strings.TrimSpace(text) == "" {
		return res
	}

	input := text
	if o.config.EnsureTerminal {
		input = segment.EnsureTerminal(text)
	}

	r := &run{}
	origParas := strings.Split(text, "\n")
	paras := strings.Split(input, "\n")
	outParas := make([]string, len(paras))
	var hl []string

	for i, para := range paras {
		out, changes := o.processParagraph(ctx, r, origParas[i], para)
		outParas[i] = out
		res.Changes = append(res.Changes, changes...)
		if withHighlight {
			hl = append(hl, highlight.Highlight(origParas[i], out))
		}
	}

	res.Text = strings.Join(outParas, "\n")
	for _, c := range res.Changes {
		res.Transformations = append(res.Transformations, Derive(c)...)
	}
	if withHighlight {
		res.Highlighted = strings.Join(hl, "\n")
		res.HasHighlight = true
	}
	res.Diagnostics = r.diag

	o.logger.Info("processed text",
		zap.Int("paragraphs", len(paras)),
		zap.Int("units", r.diag.Units),
		zap.Int("changes", len(res.Changes)),
		zap.Int("rewriter_failures", r.diag.RewriterFailures),
		zap.Int("drift_rejections", r.diag.DriftRejections),
		zap.Int("residual_flags", r.diag.ResidualFlags))
	return res
}

// processParagraph returns the rewritten paragraph and its changes. para is
// orig after optional terminal punctuation. Blank, unchanged and non-English
// paragraphs are returned verbatim as orig.
func (o *Orchestrator) processParagraph(ctx context.Context, r *run, orig, para string) (string, []Change) {
	if strings.TrimSpace(para) == "" {
		return orig, nil
	}
	if o.config.Guard != nil && !o.config.Guard.Accepts(para) {
		r.diag.LanguageSkips++
		o.logger.Debug("skipping paragraph in another language")
		return orig, nil
	}

	units := o.segmenter.Units(para)
	p := &paragraph{}
	for _, u := range units {
		r.diag.Units++
		out, changes := o.processUnit(ctx, r, u.Text)
		kept, replaced := p.add(out, changes)
		if !kept || replaced {
			r.diag.Suppressed++
			o.logger.Debug("suppressed near-duplicate unit", zap.String("unit", out), zap.Bool("replaced", replaced))
		}
		if !kept {
			continue
		}
		r.previous.WriteString(out)
		r.previous.WriteByte(' ')
	}

	changes := p.changes()
	if len(changes) == 0 {
		return orig, nil
	}
	return p.text(), changes
}

// processUnit runs the stages over one unit.
func (o *Orchestrator) processUnit(ctx context.Context, r *run, unit string) (string, []Change) {
	current := unit
	var changes []Change

	for _, cat := range Stages {
		if ctx.Err() != nil {
			break
		}
		if !friction.Has(current, cat) {
			continue
		}
		if cat == friction.Negation && (friction.IsExemptResponse(current) || friction.IsCorrelative(current)) {
			r.diag.Exempted++
			continue
		}

		out := o.runStage(ctx, r, cat, current)
		if out != current {
			changes = append(changes, newChange(cat, current, out))
			current = out
		}
	}
	return current, changes
}

func (o *Orchestrator) preceding(r *run) string {
	if o.config.ContextWords < 0 {
		return ""
	}
	return segment.ExtractContext(r.previous.String(), o.config.ContextWords)
}
