package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/logger"
	repo "taskmanager/internal/repository"
	"taskmanager/internal/service"

	"go.uber.org/zap"
)

const defaultSweepInterval = 5 * time.Minute

// SweepWorker is the reconciliation sweep for orphaned tasks. Account
// deletion removes tasks first and the user second without a cross-store
// transaction, so a crash in between can leave tasks whose owner is gone.
// The sweep deletes them on an interval.
type SweepWorker struct {
	tasks    service.TaskRepository
	users    service.UserRepository
	interval time.Duration
}

func NewSweepWorker(tasks service.TaskRepository, users service.UserRepository, interval time.Duration) *SweepWorker {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SweepWorker{
		tasks:    tasks,
		users:    users,
		interval: interval,
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: orphan sweep started", zap.Time("started_at", time.Now()))
			if _, err := w.Sweep(ctx); err != nil {
				logger.Warn("Worker: orphan sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Worker: orphan sweep stopping")
			return
		}
	}
}

// Sweep runs one pass and returns how many orphaned tasks were removed. It
// is also usable as a one-shot maintenance operation.
func (w *SweepWorker) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()

	owners, err := w.tasks.OwnerIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing task owners: %w", err)
	}

	var removed int64
	for _, ownerID := range owners {
		_, err := w.users.GetByID(ctx, ownerID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return removed, fmt.Errorf("checking owner %s: %w", ownerID.String(), err)
		}

		n, err := w.tasks.DeleteByOwner(ctx, ownerID)
		if err != nil {
			logger.Warn("Worker: failed to remove orphaned tasks",
				zap.String("owner_id", ownerID.String()),
				zap.Error(err))
			continue
		}
		removed += n
	}

	logger.Info("Worker: orphan sweep finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("owners_checked", len(owners)),
		zap.Int64("tasks_removed", removed),
	)
	return removed, nil
}
