package app

import (
	"context"
	"fmt"

	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

// Application runs the reconcile engine once.
type Application struct {
	Engine ports.ReconcileEngine
	Logger ports.Logger
}

func NewApplication(engine ports.ReconcileEngine, logger ports.Logger) *Application {
	return &Application{
		Engine: engine,
		Logger: logger,
	}
}

// Run executes the engine and turns failed entries into an error so the
// process exits non-zero.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.Infof(ctx, "Starting reconcile...")

	summary, err := a.Engine.Run(ctx)
	if err != nil {
		a.Logger.Errorf(ctx, err, "Reconcile failed")
		return err
	}

	changed, _, failed := summary.Counts()
	if failed > 0 {
		return errors.NewUserFacing(errors.CodeReconcileFailed,
			fmt.Sprintf("%d of %d entries failed to converge", failed, len(summary.Results)),
			"See the report above for the failing entries.")
	}

	a.Logger.Infof(ctx, "Reconcile completed successfully (%d changed)", changed)
	return nil
}
