package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Chain tries each rewriter in order and returns the first non-empty result.
type Chain struct {
	rewriters []Rewriter
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, rewriters ...Rewriter) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{rewriters: rewriters, logger: logger}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.rewriters))
	for i, r := range c.rewriters {
		names[i] = r.Name()
	}
	return strings.Join(names, ",")
}

func (c *Chain) Rewrite(ctx context.Context, req Request) (string, error) {
	var errs []error
	for _, r := range c.rewriters {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := r.Rewrite(ctx, req)
		if err == nil && out != "" {
			return out, nil
		}
		if err == nil {
			err = ErrNoRewrite
		}
		c.logger.Debug("rewriter failed, trying next", zap.String("rewriter", r.Name()), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	if len(errs) == 0 {
		return "", ErrNoRewrite
	}
	return "", fmt.Errorf("%w: all rewriters failed: %w", ErrNoRewrite, errors.Join(errs...))
}
