package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

// FileStore keeps one JSON document per namespace under a base directory.
// Every write rewrites the namespace file through a temporary file and an
// atomic rename, so a crash leaves either the old or the new document.
type FileStore struct {
	basePath string

	mu     sync.Mutex
	cache  map[string]map[string]string
	closed bool
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed store rooted at basePath, creating the directory if needed
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create kv directory %s: %w", basePath, err)
	}
	return &FileStore{
		basePath: basePath,
		cache:    make(map[string]map[string]string),
	}, nil
}

func (f *FileStore) filePath(namespace string) string {
	return filepath.Join(f.basePath, namespace+".json")
}

// load returns the namespace document, reading it from disk on first use.
// Must be called with f.mu held.
func (f *FileStore) load(namespace string) (map[string]string, error) {
	if ns, ok := f.cache[namespace]; ok {
		return ns, nil
	}

	// #nosec G304 -- path is built from the base path and a validated namespace
	data, err := os.ReadFile(f.filePath(namespace))
	if err != nil {
		if os.IsNotExist(err) {
			ns := make(map[string]string)
			f.cache[namespace] = ns
			return ns, nil
		}
		return nil, fmt.Errorf("failed to read namespace '%s': %w", namespace, err)
	}

	ns := make(map[string]string)
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal namespace '%s': %w", namespace, err)
	}
	f.cache[namespace] = ns
	return ns, nil
}

// save writes the namespace document. Must be called with f.mu held.
func (f *FileStore) save(namespace string, ns map[string]string) error {
	data, err := json.MarshalIndent(ns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal namespace '%s': %w", namespace, err)
	}

	filePath := f.filePath(namespace)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary file for namespace '%s': %w", namespace, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file for namespace '%s': %w", namespace, err)
	}
	return nil
}

// Get returns the value for key
func (f *FileStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", false, ErrClosed
	}

	ns, err := f.load(namespace)
	if err != nil {
		return "", false, err
	}
	v, ok := ns[key]
	return v, ok, nil
}

// Set stores value under key and persists the namespace
func (f *FileStore) Set(_ context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	ns, err := f.load(namespace)
	if err != nil {
		return err
	}
	updated := make(map[string]string, len(ns)+1)
	for k, v := range ns {
		updated[k] = v
	}
	updated[key] = value

	if err := f.save(namespace, updated); err != nil {
		return err
	}
	f.cache[namespace] = updated
	return nil
}

// Delete removes key and persists the namespace
func (f *FileStore) Delete(_ context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	ns, err := f.load(namespace)
	if err != nil {
		return err
	}
	if _, ok := ns[key]; !ok {
		return nil
	}
	updated := make(map[string]string, len(ns))
	for k, v := range ns {
		if k != key {
			updated[k] = v
		}
	}

	if err := f.save(namespace, updated); err != nil {
		return err
	}
	f.cache[namespace] = updated
	return nil
}

// Keys returns the sorted keys in namespace
func (f *FileStore) Keys(_ context.Context, namespace string) ([]string, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}

	ns, err := f.load(namespace)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close drops the in-memory cache
func (f *FileStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cache = nil
	return nil
}
