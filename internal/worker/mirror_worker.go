// Package worker copies recorded entries into a secondary store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"controle/internal/cache"
	"controle/internal/events"
	"controle/internal/ledger"
)

const (
	seenCapacity = 10000
	seenTTL      = 24 * time.Hour
)

// MirrorWorker appends every EntryRecorded message to target. Brokers deliver
// at least once, so message ids already mirrored are remembered and skipped.
type MirrorWorker struct {
	target ledger.Store
	seen   *cache.LRU[string]
}

func NewMirrorWorker(target ledger.Store) *MirrorWorker {
	return &MirrorWorker{
		target: target,
		seen:   cache.NewLRU[string](seenCapacity, seenTTL),
	}
}

// Seen exposes the dedupe cache so the caller can register it for cleanup.
func (w *MirrorWorker) Seen() cache.Cleaner {
	return w.seen
}

// Handle mirrors one message. Invalid messages are dropped without error;
// a failing target returns an error so the broker redelivers.
func (w *MirrorWorker) Handle(ctx context.Context, ev events.EntryRecorded) error {
	id := ev.ID.String()
	if !w.seen.Add(id, ev.Ref) {
		slog.InfoContext(ctx, "Skipping already mirrored entry", "event_id", id, "ref", ev.Ref)
		return nil
	}

	e, err := ev.Entry()
	if err != nil {
		slog.WarnContext(ctx, "Dropping invalid entry message", "event_id", id, "error", err)
		return nil
	}

	ref, err := w.target.Append(ctx, e)
	if err != nil {
		w.seen.Delete(id)
		return fmt.Errorf("mirror entry %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Mirrored entry",
		"event_id", id,
		"source_ref", ev.Ref,
		"mirror_ref", ref)
	return nil
}
