package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/config"
	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

const profilesBody = `{"resources":[{"id":"11","name":"OpenSCAP"}]}`

func policySpec(state domain.State) *config.PolicyAssignmentSpec {
	return &config.PolicyAssignmentSpec{
		Entity:       "policy profile",
		EntityName:   "OpenSCAP",
		Resource:     "vm",
		ResourceName: "web01",
		State:        state,
	}
}

func newPolicyReconciler(t *testing.T, client *mocks.APIClient) *PolicyAssignmentReconciler {
	logger := mocks.NewLogger(t)
	return NewPolicyAssignmentReconciler(client, NewLocator(client, logger), NewFetcher(client, logger), logger)
}

func TestPolicyAssignmentReconciler_Assign(t *testing.T) {
	client := mocks.NewAPIClient(t)
	expectList(client, "policy_profiles", profilesBody)
	expectList(client, "vms", vmBody)
	expectGet(client, "vms/3/policy_profiles", noResourcesBody)
	client.On("BaseURL").Return("https://miq.example.com/api")
	expectPost(client, "vms/3/policy_profiles", "assign",
		`{"results":[{"success":true,"message":"Assigning Policy Profile: id:'11' description:'OpenSCAP'"}]}`)

	res, err := newPolicyReconciler(t, client).Reconcile(context.Background(), policySpec(domain.StatePresent))
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Assigning Policy Profile: id:'11' description:'OpenSCAP'", res.Message)
	assert.Equal(t,
		map[string]any{"resource": map[string]any{"href": "https://miq.example.com/api/policy_profiles/11"}},
		payloadOf(client, "assign"))
}

func TestPolicyAssignmentReconciler_NoOp(t *testing.T) {
	tests := []struct {
		name     string
		state    domain.State
		assigned string
		wantMsg  string
	}{
		{"already assigned", domain.StatePresent, `{"resources":[{"id":11}]}`, "OpenSCAP policy profile already assigned"},
		{"already unassigned", domain.StateAbsent, noResourcesBody, "OpenSCAP policy profile already unassigned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewAPIClient(t)
			expectList(client, "policy_profiles", profilesBody)
			expectList(client, "vms", vmBody)
			expectGet(client, "vms/3/policy_profiles", tt.assigned)

			res, err := newPolicyReconciler(t, client).Reconcile(context.Background(), policySpec(tt.state))
			require.NoError(t, err)
			assert.False(t, res.Changed)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.True(t, assertNoPost(client))
		})
	}
}

func TestPolicyAssignmentReconciler_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(client *mocks.APIClient)
		wantCode apperrors.Code
		wantMsg  string
	}{
		{
			name: "missing entity",
			setup: func(client *mocks.APIClient) {
				expectList(client, "policy_profiles", noResourcesBody)
			},
			wantCode: apperrors.CodeLookupFailed,
			wantMsg:  "Failed to unassign policy profile: OpenSCAP does not exist in manageiq",
		},
		{
			name: "missing resource",
			setup: func(client *mocks.APIClient) {
				expectList(client, "policy_profiles", profilesBody)
				expectList(client, "vms", noResourcesBody)
			},
			wantCode: apperrors.CodeLookupFailed,
			wantMsg:  "Failed to unassign policy profile: web01 vm does not exist in manageiq",
		},
		{
			name: "remote rejects",
			setup: func(client *mocks.APIClient) {
				expectList(client, "policy_profiles", profilesBody)
				expectList(client, "vms", vmBody)
				expectGet(client, "vms/3/policy_profiles", `{"resources":[{"id":"11"}]}`)
				client.On("BaseURL").Return("https://miq.example.com/api")
				expectPost(client, "vms/3/policy_profiles", "unassign", `{"results":[{"success":false,"message":"not allowed"}]}`)
			},
			wantCode: apperrors.CodeRemoteRejected,
			wantMsg:  "Failed to unassign: not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := mocks.NewAPIClient(t)
			tt.setup(client)

			_, err := newPolicyReconciler(t, client).Reconcile(ctx, policySpec(domain.StateAbsent))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			msg, _, _ := apperrors.GetUserFacingMessage(err)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
