package service

import (
	"fmt"
	"sync"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

type ComponentRegistry struct {
	mu          sync.RWMutex
	reconcilers map[domain.ReconcileKind]ports.Reconciler
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		reconcilers: make(map[domain.ReconcileKind]ports.Reconciler),
	}
}

func (r *ComponentRegistry) RegisterReconciler(reconciler ports.Reconciler) error {
	if reconciler == nil {
		return errors.New(errors.CodeInternal, "attempted to register nil reconciler")
	}
	kind := reconciler.Kind()
	if kind == "" {
		return errors.New(errors.CodeInternal, "reconciler kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reconcilers[kind]; exists {
		return errors.New(errors.CodeInternal, fmt.Sprintf("reconciler for kind '%s' already registered", kind))
	}
	r.reconcilers[kind] = reconciler
	return nil
}

func (r *ComponentRegistry) GetReconciler(kind domain.ReconcileKind) (ports.Reconciler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reconciler, exists := r.reconcilers[kind]
	if !exists {
		return nil, errors.New(errors.CodeNotImplemented, fmt.Sprintf("reconciler for kind '%s' not implemented", kind))
	}
	return reconciler, nil
}
