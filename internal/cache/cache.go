// Package cache provides a size- and age-bounded LRU map and a janitor that
// evicts expired items in the background.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner is implemented by caches with expiring items.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans every registered cache until its context is
// cancelled.
type Janitor struct {
	caches   []Cleaner
	interval time.Duration
}

func NewJanitor(interval time.Duration, caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches, interval: interval}
}

// Run blocks until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.sweep(); n > 0 {
				slog.DebugContext(ctx, "Evicted expired cache items", "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (j *Janitor) sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}
