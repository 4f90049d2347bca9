package json

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/miq-converge/internal/core/domain"
	apperrors "github.com/olusolaa/miq-converge/internal/errors"
	"github.com/olusolaa/miq-converge/internal/log"
)

func TestReport_ResultContract(t *testing.T) {
	r, err := NewReporter(Config{}, log.Discard())
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	r.WithWriter(buf)

	summary := domain.Summary{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Results: []domain.Result{
			{Kind: domain.KindProvider, Name: "ocp", ID: "7", Changed: true, Message: "deleting", TaskID: "42", Duration: 1500 * time.Millisecond},
			{Kind: domain.KindProvider, Name: "rhv", ID: "8", Message: "Failed to delete rhv provider", APIError: map[string]any{"success": false, "message": "in use"}},
			{Kind: domain.KindUser, Name: "jdoe", Err: apperrors.New(apperrors.CodeTransport, "HTTP 500 - boom")},
		},
	}
	require.NoError(t, r.Report(context.Background(), summary))

	var got map[string]any
	require.NoError(t, codec.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, map[string]any{"total": 3.0, "changed": 1.0, "unchanged": 1.0, "failed": 1.0}, got["summary"])

	results := got["results"].([]any)
	require.Len(t, results, 3)

	first := results[0].(map[string]any)
	assert.Equal(t, true, first["changed"])
	assert.Equal(t, "deleting", first["msg"])
	assert.Equal(t, "42", first["task_id"])
	assert.Equal(t, 1500.0, first["duration_ms"])
	assert.Equal(t, false, first["failed"])

	second := results[1].(map[string]any)
	assert.Equal(t, false, second["changed"])
	assert.Equal(t, map[string]any{"success": false, "message": "in use"}, second["api_error"])

	third := results[2].(map[string]any)
	assert.Equal(t, true, third["failed"])
	assert.Equal(t, "TRANSPORT_ERROR", third["error_code"])
	assert.Contains(t, third["error"], "HTTP 500 - boom")
}

func TestReport_CreateCarriesNullUpdates(t *testing.T) {
	r, err := NewReporter(Config{}, log.Discard())
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	r.WithWriter(buf)

	updates := domain.NewChangeset()
	updates.Updated["default"] = domain.EndpointAttributes{Port: domain.IntPtr(8444)}
	summary := domain.Summary{
		RunID: "run-2",
		Results: []domain.Result{
			{Kind: domain.KindProvider, Name: "ocp", ID: "5", Changed: true, Message: "Successfully created ocp provider"},
			{Kind: domain.KindProvider, Name: "rhv", ID: "6", Changed: true, Message: "Successful update of rhv provider", Updates: updates},
		},
	}
	require.NoError(t, r.Report(context.Background(), summary))

	var got map[string]any
	require.NoError(t, codec.Unmarshal(buf.Bytes(), &got))
	results := got["results"].([]any)
	require.Len(t, results, 2)

	created := results[0].(map[string]any)
	value, present := created["updates"]
	assert.True(t, present, "creates report updates explicitly")
	assert.Nil(t, value)

	updated := results[1].(map[string]any)["updates"].(map[string]any)
	assert.Equal(t, map[string]any{"default": map[string]any{"port": 8444.0}}, updated["Updated"])
}
