package miq

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/olusolaa/miq-converge/internal/core/ports"
)

const (
	defaultRateLimitRPS = 10
	minRateLimitRPS     = 0.1
	maxRateLimitRPS     = 100
)

// Limiter paces requests to the API. Waits are FIFO so request order is
// preserved.
type Limiter struct {
	limiter *rate.Limiter
	logger  ports.Logger
}

func NewLimiter(rps float64, burst int, logger ports.Logger) *Limiter {
	limitValue := rps
	if rps < minRateLimitRPS || rps > maxRateLimitRPS {
		logger.Warnf(context.Background(), "Invalid API rate limit configured (%g), using default %d RPS. Valid range: %g-%d.",
			rps, defaultRateLimitRPS, minRateLimitRPS, maxRateLimitRPS)
		limitValue = defaultRateLimitRPS
	}
	if burst < 1 {
		burst = 1
	}
	logger.Debugf(context.Background(), "Initializing API rate limiter: %g RPS, burst %d", limitValue, burst)
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(limitValue), burst), logger: logger}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			l.logger.Warnf(ctx, "Error waiting for API rate limiter: %v", err)
		}
		return err
	}
	return nil
}
