package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"controle/internal/core"
	"controle/internal/events"
	"controle/internal/ledger"
	"controle/internal/report"
)

// LedgerService records entries and builds period reports. The store is
// the source of truth; the publisher only notifies mirrors.
type LedgerService struct {
	store     ledger.Store
	publisher events.Publisher
}

// NewLedgerService wires a store and an optional publisher. A nil publisher
// disables notifications.
func NewLedgerService(store ledger.Store, publisher events.Publisher) *LedgerService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &LedgerService{store: store, publisher: publisher}
}

// Record validates and appends e, then publishes EntryRecorded. A publish
// failure is logged and does not fail the call: the entry is already stored.
func (s *LedgerService) Record(ctx context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	ref, err := s.store.Append(ctx, e)
	if err != nil {
		return "", fmt.Errorf("append entry: %w", err)
	}

	ev := events.NewEntryRecorded(e, ref)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry recorded message",
			"event_id", ev.ID,
			"ref", ref,
			"error", err)
	}
	return ref, nil
}

// Report reloads the whole ledger and aggregates it for p.
func (s *LedgerService) Report(ctx context.Context, p core.Period) (report.Report, error) {
	if err := p.Validate(); err != nil {
		return report.Report{}, err
	}
	l, err := s.store.Load(ctx)
	if err != nil {
		return report.Report{}, fmt.Errorf("load ledger: %w", err)
	}
	return report.Build(l, p), nil
}

// Periods lists the months that have at least one entry.
func (s *LedgerService) Periods(ctx context.Context) ([]core.Period, error) {
	l, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return report.Periods(l), nil
}

// Years lists the years that have at least one entry.
func (s *LedgerService) Years(ctx context.Context) ([]int, error) {
	l, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return report.Years(l), nil
}

// Ping checks that the store can be read.
func (s *LedgerService) Ping(ctx context.Context) error {
	_, err := s.store.Load(ctx)
	return err
}

// Close releases the store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(ledger.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
