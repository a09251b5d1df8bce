package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souschef/internal/storage"
)

func TestStore_AppendRoundTrip(t *testing.T) {
	backend := storage.NewFileBackend(t.TempDir())

	store := NewStore(backend, nil)
	for i := 0; i < 5; i++ {
		store.Append(Message{Text: fmt.Sprintf("turn %d", i), IsUser: i%2 == 0})
	}

	// A fresh store over the same backend must see the same sequence in
	// the same order.
	reloaded := NewStore(backend, nil)
	require.Equal(t, 5, reloaded.Len())
	for i, msg := range reloaded.All() {
		assert.Equal(t, fmt.Sprintf("turn %d", i), msg.Text)
		assert.Equal(t, i%2 == 0, msg.IsUser)
	}
}

func TestStore_Clear(t *testing.T) {
	backend := storage.NewFileBackend(t.TempDir())

	store := NewStore(backend, nil)
	store.Append(Message{Text: "hello", IsUser: true})
	store.Append(Message{Text: "hi there", IsUser: false})
	store.Clear()

	assert.Empty(t, store.All())

	// Clear persists: the empty state survives a reload.
	reloaded := NewStore(backend, nil)
	assert.Empty(t, reloaded.All())
}

func TestStore_AllReturnsCopy(t *testing.T) {
	store := NewStore(storage.NewFileBackend(t.TempDir()), nil)
	store.Append(Message{Text: "original", IsUser: true})

	view := store.All()
	view[0].Text = "mutated"

	assert.Equal(t, "original", store.All()[0].Text)
}

func TestStore_CorruptSlotYieldsEmpty(t *testing.T) {
	backend := storage.NewFileBackend(t.TempDir())
	require.NoError(t, backend.Save(storage.SlotChatHistory, []byte("not json")))

	store := NewStore(backend, nil)
	assert.Empty(t, store.All())
}
