package storage

import (
	"context"
	"log/slog"
	"time"
)

// RetentionWorker periodically prunes journal rows older than the retention
// window.
type RetentionWorker struct {
	storage   *Storage
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewRetentionWorker(storage *Storage, retention, interval time.Duration) *RetentionWorker {
	return &RetentionWorker{
		storage:   storage,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

func (rw *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	slog.Info("Starting retention worker", "interval", rw.interval, "retention", rw.retention)

	for {
		select {
		case <-ticker.C:
			if _, err := rw.Prune(); err != nil {
				slog.Error("Error during journal pruning", "error", err)
			}
		case <-ctx.Done():
			slog.Info("Retention worker stopped")
			return
		}
	}
}

func (rw *RetentionWorker) Prune() (int64, error) {
	cutoff := rw.now().Add(-rw.retention)

	n, err := rw.storage.DeleteActionsBefore(cutoff)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		slog.Info("Pruned journal", "deleted", n, "cutoff", cutoff)
	}
	return n, nil
}
