package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name    string
		desired any
		actual  any
		want    bool
	}{
		{"both nil", nil, nil, true},
		{"one nil", nil, "x", false},
		{"int and float", 600, float64(600), true},
		{"numeric string", "600", 600, true},
		{"different numbers", 1, 2, false},
		{"bool and string", true, "true", true},
		{"strings", "a", "a", true},
		{"number strings stay strings", "1.0", "1", false},
		{"nested maps", map[string]any{"a": map[string]any{"b": 1}}, map[string]any{"a": map[string]any{"b": 1.0}}, true},
		{"map key missing", map[string]any{"a": 1}, map[string]any{"b": 1}, false},
		{"lists", []any{1, "x"}, []any{1.0, "x"}, true},
		{"list length", []any{1}, []any{1, 2}, false},
		{"incompatible types", map[string]any{}, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.desired, tt.actual))
		})
	}
}

func TestDropNulls(t *testing.T) {
	assert.Nil(t, DropNulls(nil))
	assert.Equal(t, map[string]any{"a": 1}, DropNulls(map[string]any{"a": 1, "b": nil}))
}

func TestDifferingKeys(t *testing.T) {
	got := DifferingKeys(
		map[string]any{"a": 1, "b": "x", "c": true},
		map[string]any{"a": 1.0, "b": "y", "d": 1},
	)
	assert.Equal(t, []string{"b", "c", "d"}, got)
}

func TestMissing(t *testing.T) {
	have := map[string]struct{}{"x": {}}
	assert.Equal(t, []string{"y", "z"}, Missing([]string{"x", "y", "z"}, have))
	assert.Nil(t, Missing([]string{"x"}, have))
}
