package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsInnermostAppError(t *testing.T) {
	inner := New(CodeLookupFailed, "zone missing")
	wrapped := Wrap(inner, CodeTransport, "outer")
	assert.Same(t, inner, wrapped)

	plain := Wrap(errors.New("boom"), CodeTransport, "request failed")
	assert.Equal(t, CodeTransport, GetCode(plain))
	assert.Equal(t, "[TRANSPORT_ERROR] request failed: boom", plain.Error())

	assert.Nil(t, Wrap(nil, CodeTransport, "x"))
}

func TestWrapAs_Reclassifies(t *testing.T) {
	err := WrapAs(context.Canceled, CodeCloudCredentials, "cancelled")
	assert.Equal(t, CodeCloudCredentials, GetCode(err))
	assert.ErrorIs(t, err, context.Canceled)

	inner := New(CodeTransport, "HTTP 500")
	outer := WrapAs(inner, CodeMalformedResponse, "decode")
	assert.True(t, Is(outer, CodeMalformedResponse))
	assert.True(t, Is(outer, CodeTransport))
	assert.False(t, Is(outer, CodeLookupFailed))
	assert.Equal(t, inner.StackTrace, outer.StackTrace)
}

func TestGetUserFacingMessage(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantMsg        string
		wantSuggestion string
		wantUser       bool
	}{
		{
			name:           "user facing",
			err:            NewUserFacing(CodeLookupFailed, "zone east does not exist", "Create the zone."),
			wantMsg:        "zone east does not exist",
			wantSuggestion: "Create the zone.",
			wantUser:       true,
		},
		{
			name:     "user facing deeper in the chain",
			err:      WrapAs(NewUserFacing(CodeRemoteAuth, "HTTP 401 - denied", ""), CodeTransport, "get failed"),
			wantMsg:  "HTTP 401 - denied",
			wantUser: true,
		},
		{
			name:    "internal",
			err:     New(CodeInternal, "bug"),
			wantMsg: "[INTERNAL_ERROR] bug",
		},
		{
			name:           "foreign error",
			err:            errors.New("x"),
			wantMsg:        "An unexpected error occurred.",
			wantSuggestion: "Check logs for more details.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, suggestion, user := GetUserFacingMessage(tt.err)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantSuggestion, suggestion)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestWrapUserFacing(t *testing.T) {
	inner := New(CodeTransport, "HTTP 500")
	err := WrapUserFacing(inner, CodeDesiredReadError, "cannot read", "Check the path.")
	assert.True(t, err.IsUserFacing)
	assert.Equal(t, "[TRANSPORT_ERROR] HTTP 500", err.InternalDetails)
	assert.Nil(t, WrapUserFacing(nil, CodeInternal, "x", ""))
}
