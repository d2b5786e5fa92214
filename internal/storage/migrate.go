package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// dialect ties a database/sql driver to its migrate driver and schema files.
type dialect struct {
	sqlDriver string
	dir       string
	instance  func(*sql.DB) (database.Driver, error)
}

var (
	sqliteDialect = dialect{
		sqlDriver: "sqlite",
		dir:       "migrations/sqlite",
		instance: func(db *sql.DB) (database.Driver, error) {
			return sqlite.WithInstance(db, &sqlite.Config{})
		},
	}
	postgresDialect = dialect{
		sqlDriver: "postgres",
		dir:       "migrations/postgres",
		instance: func(db *sql.DB) (database.Driver, error) {
			return postgres.WithInstance(db, &postgres.Config{})
		},
	}
)

// RunMigrations brings the SQLite file at dbPath to the latest schema.
func RunMigrations(dbPath string) error {
	return sqliteDialect.migrate(dbPath)
}

// RunPostgresMigrations brings the database at dsn to the latest schema.
func RunPostgresMigrations(dsn string) error {
	return postgresDialect.migrate(dsn)
}

// migrate applies pending migrations over a dedicated connection.
func (d dialect) migrate(source string) error {
	db, err := sql.Open(d.sqlDriver, source)
	if err != nil {
		return fmt.Errorf("open %s for migrations: %w", d.sqlDriver, err)
	}
	defer db.Close()

	driver, err := d.instance(db)
	if err != nil {
		return fmt.Errorf("%s migration driver: %w", d.sqlDriver, err)
	}
	files, err := iofs.New(migrationsFS, d.dir)
	if err != nil {
		return fmt.Errorf("read embedded migrations %s: %w", d.dir, err)
	}
	m, err := migrate.NewWithInstance("iofs", files, d.sqlDriver, driver)
	if err != nil {
		return fmt.Errorf("prepare migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", d.sqlDriver, err)
	}
	return nil
}
