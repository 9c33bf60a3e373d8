package background

import (
	"context"
	"log/slog"
	"time"
)

// StaleRecordStore is the ledger surface the cleanup loop needs.
type StaleRecordStore interface {
	ResetStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupManager periodically resets login records whose lockout window has
// long expired. The ledger already expires windows lazily on read; this loop
// keeps counters from lingering on accounts that never log in again.
type CleanupManager struct {
	records  StaleRecordStore
	logger   *slog.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager. maxAge is how old a
// failed-attempt timestamp must be before its record is reset.
func NewCleanupManager(records StaleRecordStore, logger *slog.Logger, interval, maxAge time.Duration) *CleanupManager {
	return &CleanupManager{
		records:  records,
		logger:   logger,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-cm.maxAge)
	rowsReset, err := cm.records.ResetStale(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to reset stale login records", slog.Any("error", err))
		return
	}

	if rowsReset > 0 {
		cm.logger.Info("stale login record cleanup completed", slog.Int64("rows_reset", rowsReset))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
