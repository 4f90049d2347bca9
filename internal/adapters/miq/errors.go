package miq

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"

	"github.com/olusolaa/miq-converge/internal/errors"
)

// apiErrorBody is the error envelope the API returns on failure.
type apiErrorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
		Klass   string `json:"klass"`
	} `json:"error"`
}

// statusError maps a non-2xx response onto an application error. The body
// text is always kept so the caller can surface the server's explanation.
func statusError(method, path string, status int, body []byte) error {
	text := string(body)
	var envelope apiErrorBody
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		text = envelope.Error.Message
	}
	msg := fmt.Sprintf("HTTP %d - %s", status, text)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewUserFacing(errors.CodeRemoteAuth,
			fmt.Sprintf("%s %s rejected the credentials: %s", method, path, msg),
			"Check connection.username and connection.password.")
	default:
		return errors.New(errors.CodeTransport, fmt.Sprintf("%s %s failed: %s", method, path, msg))
	}
}

// transportError classifies failures that happen before a response is read.
func transportError(ctx context.Context, method, path string, err error) error {
	if ctx.Err() != nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return errors.WrapAs(err, errors.CodeTransport, fmt.Sprintf("%s %s cancelled", method, path))
	}
	return errors.WrapAs(err, errors.CodeTransport, fmt.Sprintf("%s %s failed", method, path))
}
