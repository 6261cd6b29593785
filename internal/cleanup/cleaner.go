package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/intecsystems/nda-survey/internal/storage"
)

// Cleaner handles periodic removal of stale draft surveys. Submitted
// and reviewed surveys are never touched.
type Cleaner struct {
	repo      storage.Repository
	interval  time.Duration
	retention time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(repo storage.Repository, interval, retention time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	return &Cleaner{
		repo:      repo,
		interval:  interval,
		retention: retention,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("draft cleanup worker started", "interval", c.interval, "retention", c.retention)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("draft cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// cleanup deletes draft surveys older than the retention window
func (c *Cleaner) cleanup(ctx context.Context) {
	slog.Debug("running draft cleanup cycle")

	cutoff := time.Now().Add(-c.retention)
	deleted, err := c.repo.DeleteStaleDrafts(ctx, cutoff)
	if err != nil {
		slog.Error("failed to delete stale drafts", "error", err)
		return
	}

	if deleted > 0 {
		slog.Info("stale drafts deleted", "count", deleted, "cutoff", cutoff)
	}
}
