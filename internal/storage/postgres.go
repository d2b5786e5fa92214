package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"controle/internal/core"
	"controle/internal/ledger"

	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*PostgresRepository)(nil)

func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunPostgresMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

func (p *PostgresRepository) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresRepository) Append(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	const query = `INSERT INTO entries (entry_date, kind, description, amount_cents)
	VALUES ($1, $2, $3, $4) RETURNING id`

	var id int64
	if err := p.db.QueryRowContext(ctx, query, e.Date.Time, kindToDB(e.Kind), e.Description, e.Amount.Cents).Scan(&id); err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}
	slog.InfoContext(ctx, "Entry saved to PostgreSQL",
		"id", id,
		"amount_cents", e.Amount.Cents,
		"type", e.Kind.String(),
		"date", e.Date.ISO())
	return strconv.FormatInt(id, 10), nil
}

func (p *PostgresRepository) Load(ctx context.Context) (core.Ledger, error) {
	const query = `SELECT entry_date, kind, description, amount_cents FROM entries ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := core.Ledger{}
	for rows.Next() {
		var (
			date       time.Time
			kind, desc string
			cents      int64
		)
		if err := rows.Scan(&date, &kind, &desc, &cents); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		k, err := kindFromDB(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, core.Entry{
			Date:        core.NewDate(date.Year(), int(date.Month()), date.Day()),
			Kind:        k,
			Description: desc,
			Amount:      core.Money{Cents: cents},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
