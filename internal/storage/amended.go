package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ErrNoAmended is returned when no amended contract has been generated yet.
var ErrNoAmended = errors.New("no amended contract available")

// AmendedSlot persists the most recently generated amended contract. It is a
// single system-wide slot: a new save replaces the previous file, and
// concurrent uploads racing to set it leave only the last writer retrievable.
// Single-tenant demo semantics, accepted as a design limitation.
type AmendedSlot struct {
	dir  string
	mu   sync.Mutex
	path string
}

// NewAmendedSlot returns a slot that writes amended contracts under dir.
func NewAmendedSlot(dir string) *AmendedSlot {
	return &AmendedSlot{dir: dir}
}

// Save writes text as the new amended contract and returns its path. The
// previous file, if any, is removed.
func (s *AmendedSlot) Save(text string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create amended dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("amended_contract_%s.txt", uuid.NewString()))
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return "", fmt.Errorf("write amended contract: %w", err)
	}

	s.mu.Lock()
	prev := s.path
	s.path = path
	s.mu.Unlock()

	if prev != "" {
		_ = os.Remove(prev)
	}
	return path, nil
}

// Latest returns the path of the most recent amended contract, or ErrNoAmended
// when none exists.
func (s *AmendedSlot) Latest() (string, error) {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return "", ErrNoAmended
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrNoAmended
	}
	return path, nil
}
