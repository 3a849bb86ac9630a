package rewrite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBackoff = 500 * time.Millisecond

// transport sends HTTP requests with rate limiting and bounded retries on
// network errors, 429 and 5xx responses.
type transport struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func newTransport(cfg Config, logger *zap.Logger) *transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMin)), 1)
	}
	return &transport{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		backoff:    defaultBackoff,
		logger:     logger,
	}
}

// do calls build for every attempt, since a request body can be read once.
// The caller closes the returned body.
func (t *transport) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, t.delay(attempt, lastErr)); err != nil {
				return nil, err
			}
		}
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := t.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			t.logger.Debug("request failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		if !retryable(resp.StatusCode) {
			return resp, nil
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = &statusError{code: resp.StatusCode, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		t.logger.Debug("retryable status", zap.Int("attempt", attempt+1), zap.Int("status", resp.StatusCode))
	}
	return nil, fmt.Errorf("%w: giving up after %d attempts: %v", ErrNoRewrite, t.maxRetries+1, lastErr)
}

func (t *transport) delay(attempt int, lastErr error) time.Duration {
	if se, ok := lastErr.(*statusError); ok && se.retryAfter > 0 {
		return se.retryAfter
	}
	return t.backoff << (attempt - 1)
}

type statusError struct {
	code       int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API returned status %d", e.code)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
