package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	"github.com/olusolaa/miq-converge/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

func TestApplication_Run(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		summary  domain.Summary
		runErr   error
		wantCode apperrors.Code
	}{
		{
			name: "all entries converged",
			summary: domain.Summary{Results: []domain.Result{
				{Kind: domain.KindUser, Name: "alice", Changed: true},
				{Kind: domain.KindAlert, Name: "cpu"},
			}},
		},
		{
			name: "failed entry turns into error",
			summary: domain.Summary{Results: []domain.Result{
				{Kind: domain.KindUser, Name: "alice", Err: apperrors.New(apperrors.CodeLookupFailed, "group missing")},
			}},
			wantCode: apperrors.CodeReconcileFailed,
		},
		{
			name:     "engine error is returned as is",
			runErr:   apperrors.New(apperrors.CodeConfigValidation, "empty"),
			wantCode: apperrors.CodeConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mocks.NewReconcileEngine(t)
			engine.On("Run", mock.Anything).Return(tt.summary, tt.runErr).Once()

			application := NewApplication(engine, mocks.NewLogger(t))
			err := application.Run(ctx)

			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
		})
	}
}
