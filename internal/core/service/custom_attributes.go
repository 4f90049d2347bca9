package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

type CustomAttributesReconciler struct {
	client  ports.APIClient
	locator *Locator
	fetcher *Fetcher
	logger  ports.Logger
}

func NewCustomAttributesReconciler(client ports.APIClient, locator *Locator, fetcher *Fetcher, logger ports.Logger) *CustomAttributesReconciler {
	return &CustomAttributesReconciler{client: client, locator: locator, fetcher: fetcher, logger: logger}
}

func (r *CustomAttributesReconciler) Kind() domain.ReconcileKind {
	return domain.KindCustomAttributes
}

func (r *CustomAttributesReconciler) Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	c, ok := spec.(*config.CustomAttributesSpec)
	if !ok {
		return domain.Result{}, errors.Newf(errors.CodeInternal, "custom attributes reconciler received %T", spec)
	}
	res := domain.Result{Kind: domain.KindCustomAttributes, Name: c.Identity()}

	collection, ok := domain.CustomAttributeCollection(c.EntityType)
	if !ok {
		return res, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("unsupported custom attribute entity type %q", c.EntityType), "")
	}

	verb := "set"
	if c.State == domain.StateAbsent {
		verb = "delete"
	}
	entityID, found, err := r.locator.FindByName(ctx, collection, c.EntityName)
	if err != nil {
		return res, err
	}
	if !found {
		return res, errors.NewUserFacing(errors.CodeLookupFailed,
			fmt.Sprintf("Failed to %s the custom attributes. %s %s does not exist", verb, c.EntityType, c.EntityName), "")
	}
	res.ID = entityID

	existing, err := r.fetcher.CustomAttributes(ctx, collection, entityID)
	if err != nil {
		return res, err
	}
	byKey := make(map[string]domain.CustomAttribute, len(existing))
	for _, ca := range existing {
		byKey[ca.Key()] = ca
	}

	path := collection + "/" + entityID + "/custom_attributes"
	if c.State == domain.StateAbsent {
		return r.delete(ctx, c, path, byKey, res)
	}
	return r.addOrUpdate(ctx, c, path, byKey, res)
}

func (r *CustomAttributesReconciler) addOrUpdate(ctx context.Context, c *config.CustomAttributesSpec, path string, existing map[string]domain.CustomAttribute, res domain.Result) (domain.Result, error) {
	updates := domain.NewChangeset()

	for _, want := range c.Attributes {
		ca := domain.CustomAttribute{Name: want.Name, Value: want.Value, Section: want.Section}
		current, ok := existing[ca.Key()]
		switch {
		case !ok:
			results, err := r.post(ctx, path, "add", []any{ca})
			if err != nil {
				return res, errors.Wrap(err, errors.CodeTransport, "Failed to add the custom attributes")
			}
			updates.Added[ca.Key()] = results
		case current.Value != ca.Value:
			edit := map[string]any{"name": ca.Name, "href": current.Href, "value": ca.Value}
			results, err := r.post(ctx, path, "edit", []any{edit})
			if err != nil {
				return res, errors.Wrap(err, errors.CodeTransport,
					fmt.Sprintf("Failed to update the custom attribute %s", ca.Name))
			}
			updates.Updated[ca.Key()] = results
		}
	}

	res.Updates = updates
	if updates.IsEmpty() {
		res.Message = fmt.Sprintf("The custom attributes already exist on %s %s", c.EntityName, c.EntityType)
		return res, nil
	}
	res.Changed = true
	res.Message = fmt.Sprintf("Successfully set the custom attributes to %s %s", c.EntityName, c.EntityType)
	r.logger.Infof(ctx, "Custom attributes of %s %s changed: %v", c.EntityType, c.EntityName, updates.ChangedKeys())
	return res, nil
}

func (r *CustomAttributesReconciler) delete(ctx context.Context, c *config.CustomAttributesSpec, path string, existing map[string]domain.CustomAttribute, res domain.Result) (domain.Result, error) {
	var deleted []any
	for _, want := range c.Attributes {
		ca := domain.CustomAttribute{Name: want.Name, Section: want.Section}
		current, ok := existing[ca.Key()]
		if !ok {
			continue
		}
		results, err := r.post(ctx, path, "delete", []any{map[string]any{"name": ca.Name, "href": current.Href}})
		if err != nil {
			return res, errors.Wrap(err, errors.CodeTransport,
				fmt.Sprintf("Failed to delete the custom attribute %s", ca.Name))
		}
		deleted = append(deleted, results...)
	}
	res.Changed = len(deleted) > 0
	res.Message = fmt.Sprintf("Successfully deleted the following custom attributes from %s %s: %v",
		c.EntityName, c.EntityType, deleted)
	return res, nil
}

type actionResults struct {
	Results []any `json:"results"`
}

func (r *CustomAttributesReconciler) post(ctx context.Context, path, action string, resources []any) ([]any, error) {
	var resp actionResults
	if err := r.client.Post(ctx, path, action, map[string]any{"resources": resources}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
