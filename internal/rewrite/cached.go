package rewrite

import (
	"context"

	"go.uber.org/zap"
)

// Cache stores rewrites keyed by backend, category, policy context and
// input text. store.Store implements it.
type Cache interface {
	Lookup(ctx context.Context, backend string, req Request) (string, bool, error)
	Save(ctx context.Context, backend string, req Request, output string) error
}

// Cached wraps a Rewriter with a Cache. Escalated retries bypass the cache
// because their prompt depends on the stage input.
type Cached struct {
	next   Rewriter
	cache  Cache
	logger *zap.Logger
}

func NewCached(next Rewriter, cache Cache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, cache: cache, logger: logger}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Rewrite(ctx context.Context, req Request) (string, error) {
	if req.Escalate {
		return c.next.Rewrite(ctx, req)
	}
	out, ok, err := c.cache.Lookup(ctx, c.next.Name(), req)
	if err != nil {
		c.logger.Warn("cache lookup failed", zap.Error(err))
	} else if ok {
		c.logger.Debug("cache hit", zap.String("category", string(req.Category)))
		return out, nil
	}

	out, err = c.next.Rewrite(ctx, req)
	if err != nil || out == "" {
		return out, err
	}
	if err := c.cache.Save(ctx, c.next.Name(), req, out); err != nil {
		c.logger.Warn("cache save failed", zap.Error(err))
	}
	return out, nil
}
