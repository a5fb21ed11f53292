package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorrupt is returned by a Store whose slot holds unreadable data.
var ErrCorrupt = errors.New("cart data is corrupt")

// Store is the key/value slot a cart is persisted in.
type Store interface {
	Load() ([]Line, error)
	Save(lines []Line) error
	Clear() error
}

// FileStore keeps the cart as a JSON document in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cart. A missing file is an empty cart.
func (s *FileStore) Load() ([]Line, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cart file: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return lines, nil
}

// Save replaces the cart file atomically.
func (s *FileStore) Save(lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cart directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cart-*.json")
	if err != nil {
		return fmt.Errorf("failed to create cart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}

// Clear deletes the cart file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cart file: %w", err)
	}
	return nil
}

// MemoryStore keeps the cart in memory.
type MemoryStore struct {
	mu    sync.Mutex
	lines []Line
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out, nil
}

func (s *MemoryStore) Save(lines []Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append([]Line(nil), lines...)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	return nil
}
