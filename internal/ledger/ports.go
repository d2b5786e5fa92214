// Package ledger defines the persistence port for the ledger and the
// header/row conventions shared by tabular backends.
package ledger

import (
	"context"

	"controle/internal/core"
)

// Store persists the ledger. Implementations are append-only: there is
// no update or delete path. Load always returns the full ledger in
// insertion order.
type Store interface {
	// Load returns every stored entry. A backend with no data yet
	// returns an empty ledger, creating its backing resource if needed.
	Load(ctx context.Context) (core.Ledger, error)

	// Append validates and persists e, returning a backend-specific
	// reference to the new row.
	Append(ctx context.Context, e core.Entry) (rowRef string, err error)
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}
