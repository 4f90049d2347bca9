package ports

import (
	"context"

	"github.com/olusolaa/miq-converge/internal/core/domain"
)

//go:generate mockery --name ReconcileEngine --output ./mocks --outpkg mocks --case underscore
type ReconcileEngine interface {
	Run(ctx context.Context) (domain.Summary, error)
}

// Reconciler converges one kind of desired-state entry against the remote
// platform. Implementations receive only specs whose Kind matches theirs.
//
//go:generate mockery --name Reconciler --output ./mocks --outpkg mocks --case underscore
type Reconciler interface {
	Kind() domain.ReconcileKind
	Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error)
}
