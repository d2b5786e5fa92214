// Package csvfile keeps the ledger in a flat CSV file with the columns
// Date, Type, Description, Amount. The whole file is reloaded on every
// Load and rewritten on every Append.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"controle/internal/core"
	"controle/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	path string
}

var _ ledger.Store = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full ledger, creating an empty file with a header row
// when none exists yet.
func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Append adds e and rewrites the ledger file.
func (s *Store) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	entries = append(entries, e)
	if err := s.write(entries); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Entry appended to ledger file",
		"path", s.path,
		"date", e.Date.ISO(),
		"type", e.Kind.String(),
		"amount_cents", e.Amount.Cents,
		"rows", len(entries))
	return fmt.Sprintf("csv:%d", len(entries)), nil
}

func (s *Store) load(ctx context.Context) (core.Ledger, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.InfoContext(ctx, "Ledger file missing, creating empty ledger", "path", s.path)
		if err := s.write(nil); err != nil {
			return nil, err
		}
		return core.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()
	return read(ctx, f)
}

func read(ctx context.Context, r io.Reader) (core.Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	entries := core.Ledger{}
	cols := ledger.DefaultColumns
	first := true
	dropped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ledger file: %w", err)
		}
		if first {
			first = false
			if c, ok := ledger.ColumnsFromHeader(row); ok {
				cols = c
				continue
			}
		}
		e, ok := ledger.ParseRow(row, cols)
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, e)
	}
	if dropped > 0 {
		slog.DebugContext(ctx, "Dropped malformed ledger rows", "dropped", dropped, "kept", len(entries))
	}
	return entries, nil
}

// write replaces the ledger file atomically via a temp file in the same
// directory.
func (s *Store) write(entries core.Ledger) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(ledger.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write(ledger.FormatRow(e)); err != nil {
			tmp.Close()
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
