package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports"
	"github.com/olusolaa/miq-converge/internal/errors"
)

type UserReconciler struct {
	client  ports.APIClient
	locator *Locator
	logger  ports.Logger
}

func NewUserReconciler(client ports.APIClient, locator *Locator, logger ports.Logger) *UserReconciler {
	return &UserReconciler{client: client, locator: locator, logger: logger}
}

func (r *UserReconciler) Kind() domain.ReconcileKind {
	return domain.KindUser
}

func (r *UserReconciler) Reconcile(ctx context.Context, spec domain.Spec) (domain.Result, error) {
	u, ok := spec.(*config.UserSpec)
	if !ok {
		return domain.Result{}, errors.Newf(errors.CodeInternal, "user reconciler received %T", spec)
	}
	if u.State == domain.StateAbsent {
		return r.delete(ctx, u.UserID)
	}
	return r.createOrUpdate(ctx, u)
}

func (r *UserReconciler) createOrUpdate(ctx context.Context, u *config.UserSpec) (domain.Result, error) {
	res := domain.Result{Kind: domain.KindUser, Name: u.UserID}

	groupID, found, err := r.locator.FindID(ctx, domain.CollectionGroups, "description", u.Group)
	if err != nil {
		return res, err
	}
	if !found {
		return res, errors.NewUserFacing(errors.CodeLookupFailed,
			fmt.Sprintf("Failed to create user %s: group %s does not exist in manageiq", u.UserID, u.Group),
			"Create the group first or fix the group description.")
	}

	current, exists, err := r.locator.Find(ctx, domain.CollectionUsers, "userid", u.UserID)
	if err != nil {
		return res, err
	}
	resource := userResource(u, groupID)

	if !exists {
		var resp createResponse
		if err := r.client.Post(ctx, domain.CollectionUsers, "create", map[string]any{"resource": resource}, &resp); err != nil {
			return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("Failed to create user %s", u.UserID))
		}
		if len(resp.Results) > 0 {
			res.ID = IDString(resp.Results[0]["id"])
		}
		res.Changed = true
		res.Message = fmt.Sprintf("Successfully created the user %s: %v", u.UserID, resp.Results)
		r.logger.Infof(ctx, "Created user %s in group %s", u.UserID, u.Group)
		return res, nil
	}

	res.ID = IDString(current["id"])
	diffs := UserDifferences(current, u.Name, groupID, u.Email)
	if len(diffs) == 0 {
		res.Message = fmt.Sprintf("User %s already exist, no need for updates", u.UserID)
		return res, nil
	}

	r.logger.Debugf(ctx, "User %s differs in %v", u.UserID, diffs)
	var resp map[string]any
	if err := r.client.Post(ctx, domain.CollectionUsers+"/"+res.ID, "edit", map[string]any{"resource": resource}, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("Failed to update user %s", u.UserID))
	}
	res.Changed = true
	res.Message = fmt.Sprintf("Successfully updated the user %s: %v", u.UserID, resp)
	return res, nil
}

func userResource(u *config.UserSpec, groupID string) map[string]any {
	resource := map[string]any{
		"userid":   u.UserID,
		"name":     u.Name,
		"password": u.Password,
		"group":    map[string]any{"id": groupID},
		"email":    nil,
	}
	if u.Email != "" {
		resource["email"] = u.Email
	}
	return resource
}

func (r *UserReconciler) delete(ctx context.Context, userID string) (domain.Result, error) {
	res := domain.Result{Kind: domain.KindUser, Name: userID}

	id, found, err := r.locator.FindID(ctx, domain.CollectionUsers, "userid", userID)
	if err != nil {
		return res, err
	}
	if !found {
		res.Message = fmt.Sprintf("User %s does not exist in manageiq", userID)
		return res, nil
	}
	res.ID = id

	var resp map[string]any
	if err := r.client.Post(ctx, domain.CollectionUsers+"/"+id, "delete", nil, &resp); err != nil {
		return res, errors.Wrap(err, errors.CodeTransport, fmt.Sprintf("Failed to delete user %s", userID))
	}
	res.Changed = true
	res.Message, _ = resp["message"].(string)
	return res, nil
}
