package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores each slot as one JSON document in a directory,
// e.g. .souschef/chatHistory.json.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a file backend rooted at dir. The directory is
// created lazily on first Save.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Dir returns the backing directory.
func (f *FileBackend) Dir() string {
	return f.dir
}

func (f *FileBackend) path(slot string) (string, error) {
	// Slot names are internal constants, but keep path traversal out anyway.
	if slot == "" || strings.ContainsAny(slot, `/\`) || strings.Contains(slot, "..") {
		return "", fmt.Errorf("storage: invalid slot name %q", slot)
	}
	return filepath.Join(f.dir, slot+".json"), nil
}

// Load reads the slot file.
func (f *FileBackend) Load(slot string) ([]byte, error) {
	path, err := f.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read slot %s: %w", slot, err)
	}
	return data, nil
}

// Save writes the slot file via a temp file + rename so readers never
// observe a partial write.
func (f *FileBackend) Save(slot string, data []byte) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("storage: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, "."+slot+"-*")
	if err != nil {
		return fmt.Errorf("storage: write slot %s: %w", slot, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: write slot %s: %w", slot, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: write slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes the slot file if present.
func (f *FileBackend) Delete(slot string) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete slot %s: %w", slot, err)
	}
	return nil
}
