package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"enrollhub/internal/model"
)

// CleanupWorker purges stale checkout placeholders. Every checkout visit
// reserves an INIT payment row to hold its order identifier; abandoned
// checkouts leave those rows behind forever unless something sweeps them.
type CleanupWorker struct {
	db        *sql.DB
	interval  time.Duration
	maxAge    time.Duration
	batchSize int
}

func NewCleanupWorker(db *sql.DB) *CleanupWorker {
	return &CleanupWorker{
		db:        db,
		interval:  time.Hour,
		maxAge:    24 * time.Hour,
		batchSize: 100,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	slog.Info("starting placeholder cleanup worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				slog.Error("placeholder sweep failed", "error", err)
			}
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) error {
	res, err := w.db.ExecContext(ctx, `
		DELETE FROM payments
		WHERE id IN (
			SELECT id FROM payments
			WHERE status = $1 AND created_at < $2
			ORDER BY created_at ASC
			LIMIT $3
		)
	`, model.StatusInit, time.Now().Add(-w.maxAge), w.batchSize)
	if err != nil {
		return fmt.Errorf("delete stale placeholders: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if deleted > 0 {
		slog.Info("purged stale checkout placeholders", "count", deleted)
	}
	return nil
}
