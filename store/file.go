package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// File is a Store persisted as a single JSON object on disk. Every write
// rewrites the file through a temporary file and an atomic rename.
type File struct {
	path   string
	mu     sync.RWMutex
	data   map[string]string
	closed atomic.Bool
}

var _ Store = (*File)(nil)

// OpenFile loads the store at path, creating parent directories as needed.
// A missing file is treated as an empty store.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, NewConfigError("store.path", "path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, NewConnectionError("mkdir", path, err)
	}

	f := &File{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, NewConnectionError("read", path, err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, NewConnectionError("decode", path, err)
	}
	return f, nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

// Get retrieves the value stored under key.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// Set stores value under key and flushes the file.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	if f.closed.Load() {
		return ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = string(value)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return NewOperationError("set", key, err)
	}
	return nil
}

// Delete removes key and flushes the file.
func (f *File) Delete(_ context.Context, key string) error {
	if f.closed.Load() {
		return ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	if !had {
		return nil
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = prev
		return NewOperationError("delete", key, err)
	}
	return nil
}

// Close marks the store closed. The file is already durable after each write.
func (f *File) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// flush must be called with mu held.
func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".plantify-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
