package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	sq, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Backend{
		"file":   NewFileBackend(t.TempDir()),
		"sqlite": sq,
	}
}

func TestBackend_RoundTrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Save(SlotChatHistory, []byte(`[{"text":"hi","isUser":true}]`)))

			data, err := b.Load(SlotChatHistory)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"text":"hi","isUser":true}]`, string(data))
		})
	}
}

func TestBackend_MissingSlot(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Load("neverWritten")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBackend_Overwrite(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Save(SlotRecipes, []byte(`"old"`)))
			require.NoError(t, b.Save(SlotRecipes, []byte(`"new"`)))

			data, err := b.Load(SlotRecipes)
			require.NoError(t, err)
			assert.Equal(t, `"new"`, string(data))
		})
	}
}

func TestBackend_Delete(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.Save(SlotAPIKey, []byte(`"secret"`)))
			require.NoError(t, b.Delete(SlotAPIKey))

			_, err := b.Load(SlotAPIKey)
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting again is a no-op.
			assert.NoError(t, b.Delete(SlotAPIKey))
		})
	}
}

func TestFileBackend_RejectsTraversal(t *testing.T) {
	b := NewFileBackend(t.TempDir())
	assert.Error(t, b.Save("../escape", []byte("x")))
}
