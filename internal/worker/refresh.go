package worker

import (
	"context"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
)

type ActivitySource interface {
	RecentActivity(ctx context.Context) ([]models.CommitRecord, error)
	Username() string
}

// RefreshWorker keeps the response cache warm by running the aggregation on
// a fixed interval, so widget requests are mostly served from fresh entries.
type RefreshWorker struct {
	service  ActivitySource
	interval time.Duration
}

func NewRefreshWorker(service ActivitySource, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		service:  service,
		interval: interval,
	}
}

func (w *RefreshWorker) Refresh(ctx context.Context) {
	commits, err := w.service.RecentActivity(ctx)
	if err != nil {
		logger.Error("refresh for %s failed: %v", w.service.Username(), err)
		return
	}
	logger.Info("successfully refreshed activity for %s (%d commits)", w.service.Username(), len(commits))
}

func (w *RefreshWorker) Run(ctx context.Context) {
	w.Refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Refresh(ctx)

		case <-ctx.Done():
			logger.Info("stopping refresh worker")
			return
		}
	}
}
