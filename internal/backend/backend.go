// Package backend builds the ledger store and the event transport selected
// by configuration.
package backend

import (
	"context"
	"fmt"

	"controle/internal/config"
	"controle/internal/events"
	"controle/internal/ledger"
	"controle/internal/ledger/sheets"
)

// CleanupFunc releases resources held by a created component.
type CleanupFunc func() error

func noCleanup() error { return nil }

// StoreType names a ledger storage backend.
type StoreType string

const (
	CSVBackend      StoreType = "csv"
	MemoryBackend   StoreType = "memory"
	SQLiteBackend   StoreType = "sqlite"
	PostgresBackend StoreType = "postgres"
	SheetsBackend   StoreType = "sheets"
)

func (t StoreType) String() string {
	return string(t)
}

func (t StoreType) IsValid() bool {
	switch t {
	case CSVBackend, MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	}
	return false
}

// StoreConfig holds everything needed to open one store.
type StoreConfig struct {
	Type         StoreType
	LedgerFile   string
	SQLiteDBPath string
	PostgresDSN  string
	Sheets       sheets.Config
}

// StoreResult is a ready store and its cleanup.
type StoreResult struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Consumer delivers EntryRecorded messages until its context is done.
type Consumer interface {
	Consume(ctx context.Context, handler events.Handler) error
}

// FromAppConfig returns the primary store configuration.
func FromAppConfig(cfg *config.Config) (StoreConfig, error) {
	if cfg == nil {
		return StoreConfig{}, fmt.Errorf("app config is nil")
	}
	return storeConfig(cfg, StoreType(cfg.DataBackend), cfg.LedgerFile)
}

// MirrorFromAppConfig returns the store the worker copies entries into.
func MirrorFromAppConfig(cfg *config.Config) (StoreConfig, error) {
	if cfg == nil {
		return StoreConfig{}, fmt.Errorf("app config is nil")
	}
	return storeConfig(cfg, StoreType(cfg.MirrorBackend), cfg.MirrorFile)
}

func storeConfig(cfg *config.Config, t StoreType, file string) (StoreConfig, error) {
	if !t.IsValid() {
		return StoreConfig{}, fmt.Errorf("invalid backend type in config: %s", t)
	}
	return StoreConfig{
		Type:         t,
		LedgerFile:   file,
		SQLiteDBPath: cfg.SQLiteDBPath,
		PostgresDSN:  cfg.PostgresDSN,
		Sheets: sheets.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		},
	}, nil
}
