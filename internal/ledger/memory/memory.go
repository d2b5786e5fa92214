package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"controle/internal/core"
	"controle/internal/ledger"
	"controle/internal/ledger/csvfile"
)

type Store struct {
	mu    sync.Mutex
	items core.Ledger
}

var _ ledger.Store = (*Store)(nil)

func New(seed ...core.Entry) *Store {
	return &Store{items: append(core.Ledger{}, seed...)}
}

// NewFromFile seeds the store from a ledger CSV if one exists. Nothing is
// ever written back.
func NewFromFile(path string) *Store {
	if _, err := os.Stat(path); err != nil {
		return New()
	}
	l, err := csvfile.New(path).Load(context.Background())
	if err != nil {
		return New()
	}
	return New(l...)
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Load returns a copy of the stored entries.
func (s *Store) Load(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(core.Ledger{}, s.items...), nil
}
