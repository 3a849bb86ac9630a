package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/valpere/unfriction/internal/friction"
	"github.com/valpere/unfriction/internal/gate"
	"github.com/valpere/unfriction/internal/placeholder"
	"github.com/valpere/unfriction/internal/rewrite"
)

// runStage rewrites input for one category and returns the accepted text,
// or input when nothing was accepted. Negation runs the residual retry
// machine: a marker left in the accepted text triggers an escalated
// rewrite, gated against the stage input, up to gate.MaxAttempts.
func (o *Orchestrator) runStage(ctx context.Context, r *run, cat friction.Category, input string) string {
	matches := friction.Count(input, cat)
	req := rewrite.Request{
		Category:  cat,
		Text:      input,
		Context:   friction.Context(input, cat),
		Preceding: o.preceding(r),
		Attempt:   1,
		Matches:   matches,
	}

	accepted, ok := o.attempt(ctx, r, req, input, matches)
	if !ok {
		return input
	}
	if cat != friction.Negation {
		return accepted
	}

	retry := gate.NewRetry()
	for {
		state := retry.Observe(true, friction.Has(accepted, cat))
		if state == gate.GivenUp {
			r.diag.ResidualFlags++
			o.logger.Debug("residual negation after retries",
				zap.Int("attempts", retry.Attempts()), zap.String("text", accepted))
		}
		if !retry.Next() {
			break
		}

		req.Text = accepted
		req.Original = input
		req.Context = friction.Context(accepted, cat)
		req.Attempt = retry.Attempts()
		req.Escalate = true
		req.Matches = friction.Count(accepted, cat)

		next, ok := o.attempt(ctx, r, req, input, matches)
		if !ok {
			retry.Observe(false, true)
			r.diag.ResidualFlags++
			break
		}
		accepted = next
	}
	return accepted
}

// attempt makes one rewriter call and gates the candidate against original.
// It reports false when the rewriter produced nothing usable or the gate
// rejected the candidate.
func (o *Orchestrator) attempt(ctx context.Context, r *run, req rewrite.Request, original string, matches int) (string, bool) {
	if ctx.Err() != nil || o.rewriter == nil {
		return "", false
	}

	protected, markers := o.config.Protector.Protect(req.Text)
	if len(markers) > 0 {
		req.Text = protected
		if req.Original != "" {
			req.Original, _ = o.config.Protector.Protect(req.Original)
		}
	}

	candidate, err := o.rewriter.Rewrite(ctx, req)
	if err != nil || candidate == "" {
		r.diag.RewriterFailures++
		o.logger.Debug("rewriter produced no rewrite",
			zap.String("category", string(req.Category)),
			zap.Int("attempt", req.Attempt),
			zap.Error(err))
		return "", false
	}

	if len(markers) > 0 {
		if missing := placeholder.Validate(candidate, markers); len(missing) > 0 {
			r.diag.RewriterFailures++
			o.logger.Debug("rewrite dropped protected content", zap.Ints("missing", missing))
			return "", false
		}
		candidate = placeholder.Restore(candidate, markers)
	}

	if o.config.Guard != nil && !o.config.Guard.Accepts(candidate) {
		r.diag.RewriterFailures++
		o.logger.Debug("rewrite is not in the expected language", zap.String("candidate", candidate))
		return "", false
	}

	d := gate.Evaluate(original, candidate, matches, req.Category)
	if !d.Accepted {
		r.diag.DriftRejections++
		o.logger.Debug("gate rejected rewrite",
			zap.String("category", string(req.Category)),
			zap.Int("changed", d.Changed),
			zap.Int("total", d.Total),
			zap.Float64("ratio", d.Ratio),
			zap.Float64("threshold", d.Threshold))
		return "", false
	}
	return candidate, true
}
