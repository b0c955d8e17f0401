package local

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage is the byte-level primitive the local backend writes through:
// get/set/remove of an opaque string value by key. Encoding and decoding
// are the store's responsibility, and a single Get or Set is atomic.
type Storage interface {
	// Get returns the value stored under key. The boolean reports whether
	// the key exists.
	Get(key string) (string, bool, error)

	// Set stores the value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes the key. Removing a missing key is not an error.
	Remove(key string) error
}

// FileStorage persists each key as a file under a directory, writing
// through a temp file and rename so a crash never leaves a torn value.
type FileStorage struct {
	mu  sync.Mutex
	dir string
}

// NewFileStorage creates the directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return string(data), true, nil
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// MemoryStorage is an in-memory Storage, primarily for tests.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
