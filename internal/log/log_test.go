package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	ctx := context.Background()
	logger.Debugf(ctx, "hidden")
	logger.WithFields(map[string]any{"provider": "ocp", "password": "hunter2"}).Infof(ctx, "created %s", "ocp")
	logger.Errorf(ctx, apperrors.New(apperrors.CodeLookupFailed, "zone missing"), "reconcile failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"created ocp"`)
	assert.Contains(t, out, `"provider":"ocp"`)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, `"error_code":"LOOKUP_FAILED"`)
	assert.Contains(t, out, `"error":"zone missing"`)
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"level", Config{Level: "verbose"}},
		{"format", Config{Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLogger(tt.cfg)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigValidation, apperrors.GetCode(err))
		})
	}
}
