// Package storage provides the durable client-side key/value store that
// holds the session token and the persisted application state.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/harrylevesque/emailforms/internal/logging"
)

// Well-known keys.
const (
	KeyToken    = "token"
	KeyAppState = "appState"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("storage: key not found")
	// ErrCorrupt is returned by Get when the stored data cannot be
	// decrypted or parsed. The next write starts from an empty store.
	ErrCorrupt = errors.New("storage: corrupt data")
)

// KV is string-valued durable storage scoped to one client.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the KV for backend. key is only used by the file backend;
// a nil key stores plaintext. log may be nil.
func Open(backend, path string, key []byte, log *logging.Logger) (KV, error) {
	switch backend {
	case BackendFile, "":
		return NewFileKV(path, key, WithLogger(log))
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryKV keeps values in process memory only.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
