package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

// ReconcileEngine runs every selected desired-state entry through its
// reconciler, one at a time, in document order per kind.
type ReconcileEngine struct {
	registry        *ComponentRegistry
	reporter        ports.Reporter
	logger          ports.Logger
	desired         *config.DesiredState
	kinds           []domain.ReconcileKind
	continueOnError bool
	now             func() time.Time
}

type EngineOption func(*ReconcileEngine)

// WithTeardownOrder processes kinds in reverse, so assignments and
// attributes are removed before the providers and users they reference.
func WithTeardownOrder() EngineOption {
	return func(e *ReconcileEngine) {
		e.kinds = domain.TeardownOrder(e.kinds)
	}
}

func NewReconcileEngine(
	registry *ComponentRegistry,
	reporter ports.Reporter,
	logger ports.Logger,
	appConfig *config.Config,
	opts ...EngineOption,
) (*ReconcileEngine, error) {
	if registry == nil {
		return nil, errors.New(errors.CodeInternal, "component registry cannot be nil")
	}
	if reporter == nil {
		return nil, errors.New(errors.CodeInternal, "reporter cannot be nil")
	}
	if appConfig == nil {
		return nil, errors.New(errors.CodeConfigValidation, "configuration cannot be nil")
	}

	e := &ReconcileEngine{
		registry:        registry,
		reporter:        reporter,
		logger:          logger,
		desired:         &appConfig.Desired,
		kinds:           appConfig.Settings.SelectedKinds(),
		continueOnError: appConfig.Settings.ContinueOnError,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run reconciles and reports. Per-entry failures are recorded in the
// summary; the returned error is reserved for cancellation, wiring and
// reporting failures.
func (e *ReconcileEngine) Run(ctx context.Context) (domain.Summary, error) {
	summary := domain.Summary{RunID: uuid.NewString(), StartedAt: e.now()}
	log := e.logger.WithFields(map[string]any{"run_id": summary.RunID})

	if e.desired.IsEmpty() {
		return summary, errors.NewUserFacing(errors.CodeConfigValidation, "no desired state entries to reconcile",
			"Define providers, alerts, users, custom_attributes, tag_assignments or policy_assignments in the desired state document.")
	}
	log.Infof(ctx, "Starting reconcile run for kinds %v", e.kinds)

	runErr := e.reconcileAll(ctx, log, &summary)

	changed, unchanged, failed := summary.Counts()
	log.Infof(ctx, "Reconcile run finished: %d changed, %d unchanged, %d failed", changed, unchanged, failed)

	if len(summary.Results) > 0 {
		if err := e.reporter.Report(ctx, summary); err != nil {
			if runErr != nil {
				log.Errorf(ctx, err, "failed to report partial results after error")
				return summary, runErr
			}
			return summary, errors.Wrap(err, errors.CodeInternal, "failed to generate final report")
		}
	}
	return summary, runErr
}

func (e *ReconcileEngine) reconcileAll(ctx context.Context, log ports.Logger, summary *domain.Summary) error {
	for _, kind := range e.kinds {
		specs := e.desired.Specs(kind)
		if len(specs) == 0 {
			continue
		}
		reconciler, err := e.registry.GetReconciler(kind)
		if err != nil {
			return err
		}
		log.Debugf(ctx, "Reconciling %d %s entries", len(specs), kind)

		for _, spec := range specs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			res := e.reconcileOne(ctx, log, reconciler, spec)
			summary.Results = append(summary.Results, res)

			if res.Failed() {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if !e.continueOnError {
					log.Warnf(ctx, "Stopping after failure of %s %q", kind, spec.Identity())
					return nil
				}
			}
		}
	}
	return nil
}

func (e *ReconcileEngine) reconcileOne(ctx context.Context, log ports.Logger, reconciler ports.Reconciler, spec domain.Spec) domain.Result {
	entryLog := log.WithFields(map[string]any{
		"kind":  spec.Kind().String(),
		"name":  spec.Identity(),
		"state": string(spec.DesiredState()),
	})
	entryLog.Debugf(ctx, "Reconciling entry")

	start := e.now()
	res, err := reconciler.Reconcile(ctx, spec)
	res.Duration = e.now().Sub(start)
	if res.Kind == "" {
		res.Kind = spec.Kind()
	}
	if res.Name == "" {
		res.Name = spec.Identity()
	}

	if err != nil {
		res.Err = err
		msg, _, _ := errors.GetUserFacingMessage(err)
		res.Message = msg
		entryLog.Errorf(ctx, err, "Reconcile failed")
		return res
	}
	entryLog.Infof(ctx, "%s (changed=%t)", res.Message, res.Changed)
	return res
}
