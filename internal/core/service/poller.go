package service

import (
	"context"
	"time"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

const (
	DefaultPollIterations = 10
	DefaultPollInterval   = 5 * time.Second
)

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ValidationPoller waits for the remote side to re-validate the
// authentications touched by a mutation.
type ValidationPoller struct {
	fetcher    *Fetcher
	logger     ports.Logger
	iterations int
	interval   time.Duration
	wait       WaitFunc
}

type PollerOption func(*ValidationPoller)

func WithPollBudget(iterations int, interval time.Duration) PollerOption {
	return func(p *ValidationPoller) {
		if iterations > 0 {
			p.iterations = iterations
		}
		if interval >= 0 {
			p.interval = interval
		}
	}
}

func WithWaitFunc(wait WaitFunc) PollerOption {
	return func(p *ValidationPoller) {
		if wait != nil {
			p.wait = wait
		}
	}
}

func NewValidationPoller(fetcher *Fetcher, logger ports.Logger, opts ...PollerOption) *ValidationPoller {
	p := &ValidationPoller{
		fetcher:    fetcher,
		logger:     logger,
		iterations: DefaultPollIterations,
		interval:   DefaultPollInterval,
		wait:       sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll compares each watched authtype's (last_valid_on, last_invalid_on)
// pair against before. An authtype whose pair changed has completed. When
// all have completed the outcome is Valid, or Invalid if any status is not
// Valid. When the budget runs out first the outcome is TimedOut with
// partial details. The error is non-nil only for transport failures and
// cancellation.
func (p *ValidationPoller) Poll(ctx context.Context, providerID string, before map[string]domain.AuthenticationStatus, authtypes []string) (domain.ValidationReport, error) {
	report := domain.ValidationReport{Outcome: domain.ValidationTimedOut}

	for i := 0; i < p.iterations; i++ {
		current, err := p.fetcher.AuthValidationDetails(ctx, providerID)
		if err != nil {
			return report, err
		}

		done := true
		outcome := domain.ValidationValid
		details := make(map[string]domain.AuthValidationDetail, len(authtypes))
		for _, t := range authtypes {
			now := current[t]
			if before[t].ValidationStamp() == now.ValidationStamp() {
				details[t] = domain.AuthValidationDetail{Completed: false}
				done = false
				continue
			}
			details[t] = domain.AuthValidationDetail{
				Completed:     true,
				Status:        now.Status,
				StatusDetails: now.StatusDetails,
			}
			if now.Status != domain.AuthStatusValid {
				outcome = domain.ValidationInvalid
			}
		}
		report.Details = details

		if done {
			report.Outcome = outcome
			p.logger.Debugf(ctx, "Authentication validation of provider %s finished after %d polls: %s", providerID, i+1, outcome)
			return report, nil
		}

		p.logger.Debugf(ctx, "Authentication validation of provider %s pending for %v (poll %d/%d)",
			providerID, report.Pending(), i+1, p.iterations)
		if err := p.wait(ctx, p.interval); err != nil {
			return report, errors.WrapAs(err, errors.CodeInternal, "authentication validation wait interrupted")
		}
	}

	p.logger.Warnf(ctx, "Authentication validation of provider %s timed out, pending: %v", providerID, report.Pending())
	return report, nil
}
