package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

type AlertReconciler struct {
	client  ports.APIClient
	fetcher *Fetcher
	logger  ports.Logger
}

func NewAlertReconciler(client ports.APIClient, fetcher *Fetcher, logger ports.Logger) *AlertReconciler {
	return &AlertReconciler{client: client, fetcher: fetcher, logger: logger}
}

func (r *AlertReconciler) Kind() domain.ReconcileKind {
	return domain.KindAlert
}

func (r *AlertReconciler) Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	a, ok := spec.(*config.AlertSpec)
	if !ok {
		return domain.Result{}, errors.Newf(errors.CodeInternal, "alert reconciler received %T", spec)
	}
	res := domain.Result{Kind: domain.KindAlert, Name: a.Description}

	id, found, err := r.find(ctx, a.Description)
	if err != nil {
		return res, err
	}
	res.ID = id

	if a.State == domain.StateAbsent {
		if !found {
			res.Message = fmt.Sprintf("Alert %s does not exist in manageiq", a.Description)
			return res, nil
		}
		return r.delete(ctx, res)
	}
	if !found {
		return r.create(ctx, a, res)
	}
	return r.updateIfRequired(ctx, a, res)
}

// find scans the alert definitions for an exact description match.
func (r *AlertReconciler) find(ctx context.Context, description string) (string, bool, error) {
	alerts, err := r.fetcher.Alerts(ctx)
	if err != nil {
		return "", false, err
	}
	for _, alert := range alerts {
		if d, _ := alert["description"].(string); d == description {
			return IDString(alert["id"]), true, nil
		}
	}
	return "", false, nil
}

func alertResource(a *config.AlertSpec) map[string]any {
	return map[string]any{
		"description": a.Description,
		"expression":  a.Expression,
		"db":          a.DB,
		"options":     a.Options,
		"enabled":     a.Enabled,
	}
}

func (r *AlertReconciler) create(ctx context.Context, a *config.AlertSpec, res domain.Result) (domain.Result, error) {
	var resp createResponse
	payload := map[string]any{"resource": alertResource(a)}
	if err := r.client.Post(ctx, domain.CollectionAlertDefinitions, "create", payload, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("failed to create alert %s", a.Description))
	}
	if len(resp.Results) > 0 {
		res.ID = IDString(resp.Results[0]["id"])
	}
	res.Changed = true
	res.Message = fmt.Sprintf("Successfully created alert %s: %v", a.Description, resp.Results)
	r.logger.Infof(ctx, "Created alert %q (id %s)", a.Description, res.ID)
	return res, nil
}

func (r *AlertReconciler) updateIfRequired(ctx context.Context, a *config.AlertSpec, res domain.Result) (domain.Result, error) {
	current, err := r.fetcher.Alert(ctx, res.ID)
	if err != nil {
		return res, err
	}

	desired := AlertAttributes{Expression: a.Expression, Options: a.Options, Enabled: a.Enabled}
	if a.DB != "" {
		desired.DB = domain.StringPtr(a.DB)
	}
	diffs := AlertDifferences(desired, current)
	if len(diffs) == 0 {
		res.Message = fmt.Sprintf("Alert %s already exist, no need for updates", a.Description)
		return res, nil
	}

	r.logger.Debugf(ctx, "Alert %q differs in %v", a.Description, diffs)
	var resp map[string]any
	payload := map[string]any{"resource": alertResource(a)}
	if err := r.client.Post(ctx, domain.CollectionAlertDefinitions+"/"+res.ID, "edit", payload, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("failed to update alert %s", a.Description))
	}
	res.Changed = true
	res.Message = fmt.Sprintf("Successfully updated alert %s: %v", a.Description, resp)
	return res, nil
}

func (r *AlertReconciler) delete(ctx context.Context, res domain.Result) (domain.Result, error) {
	var resp map[string]any
	if err := r.client.Post(ctx, domain.CollectionAlertDefinitions+"/"+res.ID, "delete", nil, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("failed to delete alert %s", res.Name))
	}
	res.Changed = true
	res.Message, _ = resp["message"].(string)
	return res, nil
}
