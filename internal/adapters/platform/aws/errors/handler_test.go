package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/errors"
)

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestHandleAWSError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		ctx            context.Context
		expectedCode   errors.Code
		wantUserFacing bool
	}{
		{
			name:         "nil error",
			err:          nil,
			ctx:          context.Background(),
			expectedCode: errors.CodeInternal,
		},
		{
			name:         "context canceled",
			err:          fmt.Errorf("some error"),
			ctx:          canceledContext(),
			expectedCode: errors.CodeCloudCredentials,
		},
		{
			name:         "direct context canceled",
			err:          context.Canceled,
			ctx:          context.Background(),
			expectedCode: errors.CodeCloudCredentials,
		},
		{
			name:           "smithy auth error",
			err:            &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "bad token"},
			ctx:            context.Background(),
			expectedCode:   errors.CodeCloudCredentials,
			wantUserFacing: true,
		},
		{
			name:           "auth error by message",
			err:            fmt.Errorf("operation error STS: AccessDenied: nope"),
			ctx:            context.Background(),
			expectedCode:   errors.CodeCloudCredentials,
			wantUserFacing: true,
		},
		{
			name:         "other api error",
			err:          &smithy.GenericAPIError{Code: "Throttling", Message: "slow down"},
			ctx:          context.Background(),
			expectedCode: errors.CodeCloudCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleAWSError(tt.ctx, "sts", "GetCallerIdentity", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.expectedCode, errors.GetCode(err))
			_, _, userFacing := errors.GetUserFacingMessage(err)
			assert.Equal(t, tt.wantUserFacing, userFacing)
		})
	}
}

func TestIsAuthErrorCode(t *testing.T) {
	assert.True(t, isAuthErrorCode("AuthFailure"))
	assert.True(t, isAuthErrorCode("ExpiredToken"))
	assert.False(t, isAuthErrorCode("Throttling"))
	assert.False(t, isAuthErrorCode(""))
}
