package routes

import (
	"context"
	"time"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/domain"
	"pontual-runner/internal/logx"
)

type gateway interface {
	ListAssignable(context.Context) ([]domain.Route, error)
	Get(context.Context, int64) (*domain.Route, error)
	Assign(context.Context, int64, int64) (*domain.Route, error)
	ListForDriver(context.Context, int64) ([]domain.Route, error)
}

type counter interface {
	Inc()
}

// RetryConfig describes the Retrying gateway behaviour.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrying decorates a routes gateway with bounded exponential backoff.
// Only transport-level failures are retried: remote rejections and not-found
// are terminal for the operation.
type Retrying struct {
	next    gateway
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetrying wraps next with retry behaviour. Returns nil when next is nil.
func NewRetrying(next gateway, logger logx.Logger, retries counter, cfg RetryConfig) *Retrying {
	if next == nil {
		return nil
	}
	return &Retrying{next: next, logger: logger, retries: retries, cfg: cfg}
}

// ListAssignable retries ListAssignable on transport errors.
func (g *Retrying) ListAssignable(ctx context.Context) ([]domain.Route, error) {
	return retry(ctx, g, "ListAssignable", func() ([]domain.Route, error) {
		return g.next.ListAssignable(ctx)
	})
}

// Get retries Get on transport errors.
func (g *Retrying) Get(ctx context.Context, id int64) (*domain.Route, error) {
	return retry(ctx, g, "Get", func() (*domain.Route, error) {
		return g.next.Get(ctx, id)
	})
}

// Assign retries Assign on transport errors. The backend call is tolerant of
// duplicates, so re-submitting after a lost response is safe.
func (g *Retrying) Assign(ctx context.Context, routeID, driverID int64) (*domain.Route, error) {
	return retry(ctx, g, "Assign", func() (*domain.Route, error) {
		return g.next.Assign(ctx, routeID, driverID)
	})
}

// ListForDriver retries ListForDriver on transport errors.
func (g *Retrying) ListForDriver(ctx context.Context, driverID int64) ([]domain.Route, error) {
	return retry(ctx, g, "ListForDriver", func() ([]domain.Route, error) {
		return g.next.ListForDriver(ctx, driverID)
	})
}

func retry[T any](ctx context.Context, g *Retrying, method string, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		res, err := call()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !apperr.IsTransport(err) {
			break
		}
		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.Warn("routes gateway retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return zero, lastErr
}

// backoff computes the retry delay for the given attempt.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
