package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

type PolicyAssignmentReconciler struct {
	client  ports.APIClient
	locator *Locator
	fetcher *Fetcher
	logger  ports.Logger
}

func NewPolicyAssignmentReconciler(client ports.APIClient, locator *Locator, fetcher *Fetcher, logger ports.Logger) *PolicyAssignmentReconciler {
	return &PolicyAssignmentReconciler{client: client, locator: locator, fetcher: fetcher, logger: logger}
}

func (r *PolicyAssignmentReconciler) Kind() domain.ReconcileKind {
	return domain.KindPolicyAssignment
}

func (r *PolicyAssignmentReconciler) Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	p, ok := spec.(*config.PolicyAssignmentSpec)
	if !ok {
		return domain.Result{}, errors.Newf(errors.CodeInternal, "policy assignment reconciler received %T", spec)
	}
	res := domain.Result{Kind: domain.KindPolicyAssignment, Name: p.Identity()}
	action := assignAction(p.State)

	entityCollection, ok := domain.PolicyEntityCollection(p.Entity)
	if !ok {
		return res, errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported policy entity %q", p.Entity), "")
	}
	resourceCollection, ok := domain.PolicyResourceCollection(p.Resource)
	if !ok {
		return res, errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported policy resource %q", p.Resource), "")
	}

	entityID, found, err := r.locator.FindByName(ctx, entityCollection, p.EntityName)
	if err != nil {
		return res, err
	}
	if !found {
		return res, errors.NewUserFacing(errors.CodeLookupFailed,
			fmt.Sprintf("Failed to %s %s: %s does not exist in manageiq", action, p.Entity, p.EntityName), "")
	}
	resourceID, found, err := r.locator.FindByName(ctx, resourceCollection, p.ResourceName)
	if err != nil {
		return res, err
	}
	if !found {
		return res, errors.NewUserFacing(errors.CodeLookupFailed,
			fmt.Sprintf("Failed to %s %s: %s %s does not exist in manageiq", action, p.Entity, p.ResourceName, p.Resource), "")
	}
	res.ID = resourceID

	assigned, err := r.fetcher.AssignedPolicies(ctx, resourceCollection, resourceID, entityCollection)
	if err != nil {
		return res, err
	}
	_, isAssigned := assigned[entityID]
	if isAssigned != (p.State == domain.StateAbsent) {
		res.Message = fmt.Sprintf("%s %s already %sed", p.EntityName, p.Entity, action)
		return res, nil
	}

	var resp struct {
		Results []struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"results"`
	}
	href := r.client.BaseURL() + "/" + entityCollection + "/" + entityID
	path := resourceCollection + "/" + resourceID + "/" + entityCollection
	if err := r.client.Post(ctx, path, action, map[string]any{"resource": map[string]any{"href": href}}, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("Failed to %s", action))
	}
	if len(resp.Results) == 0 {
		return res, errors.New(errors.CodeMalformedResponse, fmt.Sprintf("Failed to %s: response carries no results", action))
	}
	if !resp.Results[0].Success {
		return res, errors.NewUserFacing(errors.CodeRemoteRejected,
			fmt.Sprintf("Failed to %s: %s", action, resp.Results[0].Message), "")
	}
	res.Changed = true
	res.Message = resp.Results[0].Message
	r.logger.Infof(ctx, "%s %s %sed on %s %s", p.Entity, p.EntityName, action, p.Resource, p.ResourceName)
	return res, nil
}
