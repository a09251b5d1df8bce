// Package storage persists application state as opaque serialized documents
// under named slots. Two backends are provided: flat JSON files in the
// souschef dot-directory, and a single-table SQLite database.
package storage

import "errors"

// Well-known slot names shared by the chat and recipe stores.
const (
	SlotChatHistory = "chatHistory"
	SlotAPIKey      = "geminiApiKey"
	SlotRecipes     = "recipes"
)

// ErrNotFound is returned when a slot has never been written.
var ErrNotFound = errors.New("storage: slot not found")

// Backend is a key-value persistence target for serialized slots.
// Implementations must be safe for use by a single writer; souschef
// mutates state from one goroutine at a time.
type Backend interface {
	// Load returns the raw contents of a slot, or ErrNotFound.
	Load(slot string) ([]byte, error)

	// Save replaces the slot contents atomically from the caller's
	// point of view (a later Load sees the full new value or the old one).
	Save(slot string, data []byte) error

	// Delete removes a slot. Deleting a missing slot is not an error.
	Delete(slot string) error
}
