package handler

import (
	"context"

	"github.com/KOFI-GYIMAH/github-activity/internal/github"
	"github.com/KOFI-GYIMAH/github-activity/internal/models"
)

type APIResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ActivityProvider interface {
	RecentActivity(ctx context.Context) ([]models.CommitRecord, error)
	Username() string
}

type RateLimitReporter interface {
	RateLimit() github.RateLimitStatus
}

type RefreshPublisher interface {
	PublishRefreshRequest(ctx context.Context, username string) error
}

type Refresher interface {
	Refresh(ctx context.Context)
}
