package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type AppError struct {
	Code            Code
	Message         string
	InternalDetails string
	IsUserFacing    bool
	SuggestedAction string
	WrappedError    error
	StackTrace      string
}

func (e *AppError) Error() string {
	if e.WrappedError != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.WrappedError)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.WrappedError
}

func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StackTrace: string(debug.Stack()),
	}
}

func Newf(code Code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func NewUserFacing(code Code, message string, suggestion string) *AppError {
	return &AppError{
		Code:            code,
		Message:         message,
		IsUserFacing:    true,
		SuggestedAction: suggestion,
		StackTrace:      string(debug.Stack()),
	}
}

// Wrap returns err unchanged when it already carries an AppError so the
// innermost code survives propagation through the reconcilers.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	return &AppError{
		Code:         code,
		Message:      message,
		WrappedError: err,
		StackTrace:   string(debug.Stack()),
	}
}

// WrapAs always produces a new AppError with the given code, keeping err in
// the chain. Used where a step must re-classify a lower-level failure.
func WrapAs(err error, code Code, message string) *AppError {
	if err == nil {
		return nil
	}
	stack := string(debug.Stack())
	var appErr *AppError
	if errors.As(err, &appErr) {
		stack = appErr.StackTrace
	}
	return &AppError{
		Code:         code,
		Message:      message,
		WrappedError: err,
		StackTrace:   stack,
	}
}

func WrapUserFacing(err error, code Code, message string, suggestion string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:            code,
			Message:         message,
			InternalDetails: appErr.Error(),
			IsUserFacing:    true,
			SuggestedAction: suggestion,
			WrappedError:    err,
			StackTrace:      appErr.StackTrace,
		}
	}

	return &AppError{
		Code:            code,
		Message:         message,
		WrappedError:    err,
		IsUserFacing:    true,
		SuggestedAction: suggestion,
		StackTrace:      string(debug.Stack()),
	}
}

func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.WrappedError
	}
	return false
}

func GetUserFacingMessage(err error) (string, string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.IsUserFacing {
			return appErr.Message, appErr.SuggestedAction, true
		}
		nextErr := errors.Unwrap(appErr)
		for nextErr != nil {
			if errors.As(nextErr, &appErr) {
				if appErr.IsUserFacing {
					return appErr.Message, appErr.SuggestedAction, true
				}
				nextErr = errors.Unwrap(appErr)
			} else {
				break
			}
		}
		return appErr.Error(), "", false
	}
	return "An unexpected error occurred.", "Check logs for more details.", false
}
