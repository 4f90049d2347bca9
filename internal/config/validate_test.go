package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Connection.URL = "https://miq.example.com"
	cfg.Connection.Username = "admin"
	cfg.Connection.Password = "smartvm"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		desired DesiredState
		wantErr string
	}{
		{
			name: "openshift gets its default port",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "ocp", Type: domain.ProviderOpenshiftOrigin, Hostname: "ocp.example.com", Token: "t"},
			}},
		},
		{
			name: "hawkular datawarehouse gets its default port",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "dwh", Type: domain.ProviderHawkularDatawarehouse, Hostname: "h", Token: "t"},
			}},
		},
		{
			name: "unknown monitoring role",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "ocp", Type: domain.ProviderOpenshiftOrigin, Hostname: "h", Token: "t",
					Monitoring: "grafana", MonitoringHostname: "m", MonitoringPort: 443},
			}},
			wantErr: "allowed: hawkular, prometheus",
		},
		{
			name: "absent entries need only their identity",
			desired: DesiredState{
				Providers: []ProviderSpec{{Name: "ocp", Type: domain.ProviderOvirt, State: domain.StateAbsent}},
				Alerts:    []AlertSpec{{Description: "cpu", State: domain.StateAbsent}},
				Users:     []UserSpec{{UserID: "alice", State: domain.StateAbsent}},
			},
		},
		{
			name: "ovirt without credentials",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "rhv", Type: domain.ProviderOvirt, Hostname: "rhv.example.com"},
			}},
			wantErr: "required_for_type",
		},
		{
			name: "amazon key without secret",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "aws", Type: domain.ProviderAmazon, Region: "us-east-1", AccessKeyID: "AKIA"},
			}},
			wantErr: "paired_with_secret",
		},
		{
			name: "amazon without region",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "aws", Type: domain.ProviderAmazon},
			}},
			wantErr: "Region",
		},
		{
			name: "unknown provider type",
			desired: DesiredState{Providers: []ProviderSpec{
				{Name: "x", Type: "vmware"},
			}},
			wantErr: "provider_type",
		},
		{
			name: "present user without group",
			desired: DesiredState{Users: []UserSpec{
				{UserID: "alice", Name: "Alice", Password: "pw"},
			}},
			wantErr: "Group",
		},
		{
			name: "unknown tag resource",
			desired: DesiredState{TagAssignments: []TagAssignmentSpec{
				{Resource: "spaceship", ResourceName: "x", Tags: []domain.Tag{{Category: "env", Name: "prod"}}},
			}},
			wantErr: "'tag_resource' validation (value: 'spaceship'); allowed: blueprint, category, cluster",
		},
		{
			name: "policy on unknown resource",
			desired: DesiredState{PolicyAssignments: []PolicyAssignmentSpec{
				{Entity: "policy", EntityName: "p", Resource: "spaceship", ResourceName: "x"},
			}},
			wantErr: "policy_resource",
		},
		{
			name: "custom attributes without attributes",
			desired: DesiredState{CustomAttributes: []CustomAttributesSpec{
				{EntityType: "vm", EntityName: "web01"},
			}},
			wantErr: "Attributes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Desired = tt.desired

			err := Validate(context.Background(), cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigValidation, apperrors.GetCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Desired = DesiredState{
		Providers: []ProviderSpec{{Name: "ocp", Type: domain.ProviderOpenshiftEnterprise, Hostname: "h", Token: "t"}},
		CustomAttributes: []CustomAttributesSpec{
			{EntityType: "provider", EntityName: "ocp", Attributes: []CustomAttributeSpec{{Name: "owner", Value: "ops"}}},
		},
	}
	require.NoError(t, Validate(context.Background(), cfg))

	p := cfg.Desired.Providers[0]
	assert.Equal(t, domain.StatePresent, p.State)
	assert.Equal(t, domain.OpenshiftDefaultPort, p.Port)
	assert.True(t, p.ShouldValidate())
	assert.True(t, p.VerifiesSSL())
	assert.Equal(t, domain.DefaultCustomAttributeSection, cfg.Desired.CustomAttributes[0].Attributes[0].Section)
}

func TestValidateDesired_TokenProviderPort(t *testing.T) {
	d := &DesiredState{Providers: []ProviderSpec{
		{Name: "dwh", Type: domain.ProviderHawkularDatawarehouse, Hostname: "h", Token: "t"},
		{Name: "rhv", Type: domain.ProviderOvirt, Hostname: "rhv", Username: "u", Password: "p"},
	}}
	require.NoError(t, ValidateDesired(context.Background(), d))
	assert.Equal(t, domain.OpenshiftDefaultPort, d.Providers[0].Port)
	assert.Zero(t, d.Providers[1].Port, "ovirt keeps the remote default")
}

func TestValidate_Connection(t *testing.T) {
	cfg := validConfig()
	cfg.Connection.URL = "not a url"
	cfg.Settings.Reporter = "xml"

	err := Validate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Connection.URL")
	assert.Contains(t, err.Error(), "Settings.Reporter")
}

func TestDesiredState_ForceState(t *testing.T) {
	d := DesiredState{
		Providers: []ProviderSpec{{Name: "ocp", Type: domain.ProviderAmazon}},
		Users:     []UserSpec{{UserID: "alice"}},
	}
	assert.True(t, d.HasProviderType(domain.ProviderAmazon))

	d.ForceState(domain.StateAbsent)
	assert.Equal(t, domain.StateAbsent, d.Providers[0].State)
	assert.Equal(t, domain.StateAbsent, d.Users[0].State)
	assert.False(t, d.HasProviderType(domain.ProviderAmazon))
}
