package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
	"github.com/olusolaa/miq-converge/pkg/compare"
)

// assignAction maps a desired state onto the remote assign verb.
func assignAction(state domain.State) string {
	if state == domain.StateAbsent {
		return "unassign"
	}
	return "assign"
}

type TagAssignmentReconciler struct {
	client  ports.APIClient
	locator *Locator
	fetcher *Fetcher
	logger  ports.Logger
}

func NewTagAssignmentReconciler(client ports.APIClient, locator *Locator, fetcher *Fetcher, logger ports.Logger) *TagAssignmentReconciler {
	return &TagAssignmentReconciler{client: client, locator: locator, fetcher: fetcher, logger: logger}
}

func (r *TagAssignmentReconciler) Kind() domain.ReconcileKind {
	return domain.KindTagAssignment
}

func (r *TagAssignmentReconciler) Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	t, ok := spec.(*config.TagAssignmentSpec)
	if !ok {
		return domain.Result{}, errors.Newf(errors.CodeInternal, "tag assignment reconciler received %T", spec)
	}
	res := domain.Result{Kind: domain.KindTagAssignment, Name: t.Identity()}
	action := assignAction(t.State)

	collection, ok := domain.TagResourceCollection(t.Resource)
	if !ok {
		return res, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported tag resource %q", t.Resource), "")
	}
	resourceID, found, err := r.locator.FindByName(ctx, collection, t.ResourceName)
	if err != nil {
		return res, err
	}
	if !found {
		return res, errors.NewUserFacing(errors.CodeLookupFailed,
			fmt.Sprintf("Failed to %s tag: %s %s does not exist in manageiq", action, t.ResourceName, t.Resource), "")
	}
	res.ID = resourceID

	assigned, err := r.fetcher.AssignedTags(ctx, collection, resourceID)
	if err != nil {
		return res, err
	}
	paths := make([]string, 0, len(t.Tags))
	byPath := make(map[string]domain.Tag, len(t.Tags))
	for _, tag := range t.Tags {
		paths = append(paths, tag.Path())
		byPath[tag.Path()] = tag
	}
	pendingPaths := compare.Missing(paths, assigned)
	if t.State == domain.StateAbsent {
		unassigned := make(map[string]struct{}, len(pendingPaths))
		for _, p := range pendingPaths {
			unassigned[p] = struct{}{}
		}
		pendingPaths = compare.Missing(paths, unassigned)
	}
	pending := make([]domain.Tag, 0, len(pendingPaths))
	for _, p := range pendingPaths {
		pending = append(pending, byPath[p])
	}
	if len(pending) == 0 {
		res.Message = fmt.Sprintf("tags already %sed, nothing to do", action)
		return res, nil
	}

	var resp struct {
		Results []struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"results"`
	}
	path := collection + "/" + resourceID + "/tags"
	if err := r.client.Post(ctx, path, action, map[string]any{"resources": pending}, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("Failed to %s tag", action))
	}
	for _, result := range resp.Results {
		if !result.Success {
			return res, errors.NewUserFacing(errors.CodeRemoteRejected,
				fmt.Sprintf("Failed to %s: %s", action, result.Message), "")
		}
		res.Changed = true
	}
	res.Message = fmt.Sprintf("Successfully %sed tags", action)
	r.logger.Infof(ctx, "%d tags %sed on %s %s", len(pending), action, t.Resource, t.ResourceName)
	return res, nil
}
