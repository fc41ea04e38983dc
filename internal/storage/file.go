package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/crypto"
	"github.com/harrylevesque/emailforms/internal/logging"
)

// FileKV stores all keys in one JSON object on disk, optionally sealed
// with AES-GCM. A file that cannot be read back is moved aside to
// <path>.corrupt on the next write.
type FileKV struct {
	filePath string
	key      []byte
	log      *logging.Logger
	mu       sync.Mutex
}

type FileOption func(*FileKV)

// WithLogger reports discarded storage files to l.
func WithLogger(l *logging.Logger) FileOption {
	return func(s *FileKV) {
		if l != nil {
			s.log = l
		}
	}
}

// DefaultPath returns ~/.emailforms/storage.json.
func DefaultPath() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, ".emailforms", "storage.json")
}

// NewFileKV opens (or lazily creates) the store at path. When key is
// non-nil the file is encrypted with a key derived from it.
func NewFileKV(path string, key []byte, opts ...FileOption) (*FileKV, error) {
	if path == "" {
		path = DefaultPath()
	}
	s := &FileKV{filePath: path, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if key != nil {
		derived, err := crypto.DeriveStorageKey(key, path)
		if err != nil {
			return nil, fmt.Errorf("deriving storage key: %w", err)
		}
		s.key = derived
	}
	return s, nil
}

func (s *FileKV) Path() string { return s.filePath }

func (s *FileKV) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileKV) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// load reads the whole file. A missing file is an empty store.
func (s *FileKV) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("reading storage: %w", err)
	}
	if s.key != nil {
		data, err = crypto.Open(s.key, data)
		if err != nil {
			return nil, fmt.Errorf("decrypting storage: %w: %w", ErrCorrupt, err)
		}
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing storage: %w: %w", ErrCorrupt, err)
	}
	return values, nil
}

// loadForWrite is load, except that a corrupt file is moved aside and
// replaced by an empty store.
func (s *FileKV) loadForWrite() (map[string]string, error) {
	values, err := s.load()
	if !errors.Is(err, ErrCorrupt) {
		return values, err
	}
	aside := s.filePath + ".corrupt"
	if rerr := os.Rename(s.filePath, aside); rerr != nil {
		return nil, fmt.Errorf("moving corrupt storage aside: %w", rerr)
	}
	s.log.Warn("Discarded unreadable storage file", zap.String("path", s.filePath), zap.String("moved_to", aside), zap.Error(err))
	return make(map[string]string), nil
}

func (s *FileKV) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if s.key != nil {
		data, err = crypto.Seal(s.key, data)
		if err != nil {
			return fmt.Errorf("encrypting storage: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing storage: %w", err)
	}
	return os.Rename(tmp, s.filePath)
}
