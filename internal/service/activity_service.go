package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type activityRepository interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLogRecord, error)
}

// ActivityService exposes the audit trail to administrators.
type ActivityService struct {
	repo     activityRepository
	maxLimit int
	logger   *zap.Logger
}

// NewActivityService constructs an ActivityService. maxLimit caps how many
// entries a single listing can return.
func NewActivityService(repo activityRepository, maxLimit int, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &ActivityService{repo: repo, maxLimit: maxLimit, logger: logger}
}

// List returns audit entries newest first, capped at the configured limit.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLogRecord, error) {
	if filter.Limit <= 0 || filter.Limit > s.maxLimit {
		filter.Limit = s.maxLimit
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity logs")
	}
	return entries, nil
}
