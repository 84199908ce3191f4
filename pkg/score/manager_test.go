package score

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openManager(t *testing.T) *Manager {
	t.Helper()

	m, err := Open(filepath.Join(t.TempDir(), "lem.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m
}

func TestValidate(t *testing.T) {
	m := openManager(t)
	require.NoError(t, m.Define(Definition{Name: "severity", Pattern: "^[LMH]$", Example: "H"}))
	require.NoError(t, m.Define(Definition{Name: "impact", Pattern: `\d`}))

	tests := []struct {
		name    string
		dim     string
		value   string
		wantErr interface{}
	}{
		{name: "accepted", dim: "severity", value: "H"},
		{name: "rejected", dim: "severity", value: "X", wantErr: &ValidationError{}},
		{name: "partial match", dim: "impact", value: "10", wantErr: &ValidationError{}},
		{name: "full match", dim: "impact", value: "7"},
		{name: "undefined", dim: "exploitability", value: "H", wantErr: &UnknownDimensionError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Validate(tt.dim, tt.value)
			switch want := tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *ValidationError:
				assert.True(t, errors.As(err, &want), "got %v", err)
			case *UnknownDimensionError:
				assert.True(t, errors.As(err, &want), "got %v", err)
			}
		})
	}
}

func TestDefine(t *testing.T) {
	m := openManager(t)

	require.NoError(t, m.Define(Definition{Name: "severity", Pattern: "[LMH]"}))

	err := m.Define(Definition{Name: "severity", Pattern: "[0-9]"})
	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup), "got %v", err)

	pattern, err := m.Pattern("severity")
	require.NoError(t, err)
	assert.Equal(t, "[LMH]", pattern)

	assert.Error(t, m.Define(Definition{Name: "broken", Pattern: "("}))
	assert.Error(t, m.Define(Definition{Name: "empty", Pattern: ""}))

	var invalid *ValidationError
	err = m.Define(Definition{Name: "level", Pattern: "[0-9]", Example: "high"})
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestUpdateRemove(t *testing.T) {
	m := openManager(t)
	require.NoError(t, m.Define(Definition{Name: "severity", Pattern: "[LMH]"}))

	require.NoError(t, m.Update(Definition{Name: "severity", Pattern: "[LMHC]", Example: "C"}))
	assert.NoError(t, m.Validate("severity", "C"))

	var unknown *UnknownDimensionError
	err := m.Update(Definition{Name: "impact", Pattern: "[0-9]"})
	assert.True(t, errors.As(err, &unknown), "got %v", err)

	require.NoError(t, m.Remove("severity"))
	err = m.Remove("severity")
	assert.True(t, errors.As(err, &unknown), "got %v", err)
}

func TestList(t *testing.T) {
	m := openManager(t)

	defs, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, defs)

	require.NoError(t, m.Define(Definition{Name: "severity", Pattern: "[LMH]", Example: "L"}))
	require.NoError(t, m.Define(Definition{Name: "impact", Pattern: "[0-9]"}))

	defs, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []*Definition{
		{Name: "impact", Pattern: "[0-9]"},
		{Name: "severity", Pattern: "[LMH]", Example: "L"},
	}, defs)
}

func TestSuggestion(t *testing.T) {
	m := openManager(t)
	require.NoError(t, m.Define(Definition{Name: "severity", Pattern: "[LMH]"}))

	err := m.Validate("severty", "H")
	var unknown *UnknownDimensionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "severity", unknown.Suggestion)
	assert.Contains(t, err.Error(), "did you mean severity")

	err = m.Validate("exploitability", "H")
	require.True(t, errors.As(err, &unknown))
	assert.Empty(t, unknown.Suggestion)
}
