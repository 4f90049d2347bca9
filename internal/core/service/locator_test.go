package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/core/ports/mocks"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
)

func TestLocator_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match over the listing", func(t *testing.T) {
		client := mocks.NewAPIClient(t)
		expectList(client, "providers", `{"resources":[{"id":"1","name":"production"},{"id":2,"name":"prod"}]}`)

		locator := NewLocator(client, mocks.NewLogger(t))
		id, found, err := locator.FindByName(ctx, "providers", "prod")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "2", id)
	})

	t.Run("names with quotes match verbatim", func(t *testing.T) {
		client := mocks.NewAPIClient(t)
		expectList(client, "vms", `{"resources":[{"id":"8","name":"bob's vm"},{"id":"9","name":"bob"}]}`)

		locator := NewLocator(client, mocks.NewLogger(t))
		id, found, err := locator.FindByName(ctx, "vms", "bob's vm")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "8", id)
	})

	t.Run("miss is not an error", func(t *testing.T) {
		client := mocks.NewAPIClient(t)
		expectList(client, "users", `{"resources":[]}`)

		locator := NewLocator(client, mocks.NewLogger(t))
		r, found, err := locator.Find(ctx, "users", "userid", "alice")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, r)
	})

	t.Run("transport failure", func(t *testing.T) {
		client := mocks.NewAPIClient(t)
		client.On("List", mock.Anything, "zones", mock.Anything).
			Return(nil, apperrors.New(apperrors.CodeTransport, "HTTP 500 - boom")).Once()

		locator := NewLocator(client, mocks.NewLogger(t))
		_, _, err := locator.FindByName(ctx, "zones", "default")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeTransport, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "HTTP 500 - boom")
	})

	t.Run("resource without id", func(t *testing.T) {
		client := mocks.NewAPIClient(t)
		expectList(client, "groups", `{"resources":[{"description":"admins"}]}`)

		locator := NewLocator(client, mocks.NewLogger(t))
		_, found, err := locator.FindID(ctx, "groups", "description", "admins")
		require.Error(t, err)
		assert.False(t, found)
		assert.Equal(t, apperrors.CodeMalformedResponse, apperrors.GetCode(err))
	})
}

func TestIDString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"42", "42"},
		{float64(42), "42"},
		{float64(1e15), "1000000000000000"},
		{7, "7"},
		{int64(9), "9"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IDString(tt.in), "input %#v", tt.in)
	}
}
