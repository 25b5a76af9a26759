// Package auth stores the backend bearer token on disk, the terminal
// counterpart of the browser's local storage. The token is opaque here; the
// backend decides when it expires.
package auth

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds the bearer token for the configured backend. It satisfies
// client.TokenSource.
type Store struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewStore manages the token file at path. Call Load before first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the token from disk. A missing file is not an error, it just
// means nobody is logged in.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.token = strings.TrimSpace(string(data))
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Save persists a new token and makes it current.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear logs out: the token file is removed and the in-memory token dropped.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
