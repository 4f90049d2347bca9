package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/olusolaa/miq-converge/internal/errors"
)

var authErrorCodes = []string{
	"AuthFailure",
	"UnauthorizedOperation",
	"AccessDenied",
	"InvalidClientTokenId",
	"SignatureDoesNotMatch",
	"ExpiredToken",
}

// HandleAWSError maps an AWS SDK error onto an application error. service
// and operation only feed the message.
func HandleAWSError(ctx context.Context, service, operation string, err error) error {
	if err == nil {
		return errors.New(errors.CodeInternal, fmt.Sprintf("unexpected nil error in AWS error handler for %s", service))
	}

	if ctx.Err() != nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return errors.WrapAs(err, errors.CodeCloudCredentials,
			fmt.Sprintf("context canceled during AWS %s %s call", service, operation))
	}

	if isAuthError(err) {
		return errors.WrapUserFacing(err, errors.CodeCloudCredentials,
			fmt.Sprintf("AWS rejected the credentials during %s %s", service, operation),
			"Check access_key_id and secret_access_key, or the AWS profile in use.")
	}

	return errors.WrapAs(err, errors.CodeCloudCredentials,
		fmt.Sprintf("AWS %s %s failed", service, operation))
}

func isAuthError(err error) bool {
	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) && apiErr != nil {
		return isAuthErrorCode(apiErr.ErrorCode())
	}
	msg := err.Error()
	for _, code := range authErrorCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

func isAuthErrorCode(code string) bool {
	for _, c := range authErrorCodes {
		if code == c {
			return true
		}
	}
	return false
}
