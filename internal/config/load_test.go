package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDesiredYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, d *DesiredState)
	}{
		{
			name: "bare document",
			content: `
providers:
  - name: ocp
    type: " OpenShift-Origin "
    state: PRESENT
    hostname: ocp.example.com
    token: t
alerts:
  - description: Node CPU
    db: ContainerNode
    expression: {eval_method: dwh_generic, mode: internal}
    options: {notifications: {delay_next_evaluation: 600}}
`,
			check: func(t *testing.T, d *DesiredState) {
				require.Len(t, d.Providers, 1)
				assert.Equal(t, domain.ProviderOpenshiftOrigin, d.Providers[0].Type)
				assert.Equal(t, domain.StatePresent, d.Providers[0].State)
				require.Len(t, d.Alerts, 1)
				assert.Equal(t, "dwh_generic", d.Alerts[0].Expression["eval_method"])
			},
		},
		{
			name: "desired section keeps key case",
			content: `
connection:
  url: https://miq.example.com
desired:
  alerts:
    - description: Heap
      db: MiddlewareServer
      expression: {mw_operator: ">", value_mw_greater_than: 50}
      options: {notifications: {}}
`,
			check: func(t *testing.T, d *DesiredState) {
				require.Len(t, d.Alerts, 1)
				assert.Contains(t, d.Alerts[0].Expression, "value_mw_greater_than")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := LoadDesiredYAML(writeYAML(t, tt.content))
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

func TestLoadDesiredYAML_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode apperrors.Code
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantCode: apperrors.CodeDesiredReadError,
		},
		{
			name:     "invalid yaml",
			path:     func(t *testing.T) string { return writeYAML(t, "users: [") },
			wantCode: apperrors.CodeDesiredParse,
		},
		{
			name:     "unknown key",
			path:     func(t *testing.T) string { return writeYAML(t, "users:\n  - userid: a\n    nickname: b\n") },
			wantCode: apperrors.CodeDesiredParse,
		},
		{
			name:     "desired is not a mapping",
			path:     func(t *testing.T) string { return writeYAML(t, "desired: [1, 2]\n") },
			wantCode: apperrors.CodeDesiredParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDesiredYAML(tt.path(t))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
		})
	}
}

func TestLoadDesiredSection_Missing(t *testing.T) {
	d, err := LoadDesiredSection(writeYAML(t, "connection:\n  url: https://miq.example.com\n"))
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.Set("settings.kinds", "user,alert")
	v.Set("settings.validation.interval", "2s")
	v.Set("connection.url", "https://miq.example.com")
	v.Set("connection.rate_limit", 5)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "alert"}, cfg.Settings.Kinds)
	assert.Equal(t, 2*time.Second, cfg.Settings.Validation.Interval)
	assert.Equal(t, 10, cfg.Settings.Validation.Iterations)
	assert.Equal(t, 5.0, cfg.Connection.RateLimit)
	assert.True(t, cfg.Connection.VerifySSL)
	assert.Equal(t, []domain.ReconcileKind{domain.KindAlert, domain.KindUser}, cfg.Settings.SelectedKinds())
}
