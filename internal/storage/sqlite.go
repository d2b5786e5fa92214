package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"controle/internal/core"
	"controle/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.Store
func (r *SQLiteRepository) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (entry_date, kind, description, amount_cents) VALUES (?, ?, ?, ?)`,
		e.Date.ISO(), kindToDB(e.Kind), e.Description, e.Amount.Cents)
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read entry id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"type", e.Kind.String(),
		"date", e.Date.ISO())

	return strconv.FormatInt(id, 10), nil
}

// Load implements ledger.Store
func (r *SQLiteRepository) Load(ctx context.Context) (core.Ledger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry_date, kind, description, amount_cents FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := core.Ledger{}
	for rows.Next() {
		var (
			date, kind, desc string
			cents            int64
		)
		if err := rows.Scan(&date, &kind, &desc, &cents); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			slog.DebugContext(ctx, "Skipping entry with invalid date", "date", date, "error", err)
			continue
		}
		k, err := kindFromDB(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, core.Entry{Date: d, Kind: k, Description: desc, Amount: core.Money{Cents: cents}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
