package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type parentRepository interface {
	ListChildren(ctx context.Context, parentID string) ([]models.ParentChildRecord, error)
	Linked(ctx context.Context, parentID, studentID string) (bool, error)
	Create(ctx context.Context, link *models.ParentStudent) error
	Delete(ctx context.Context, id string) error
}

// ParentService manages parent-to-student links and the parent dashboard.
type ParentService struct {
	repo      parentRepository
	users     userRepository
	students  studentReader
	activity  activityWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParentService constructs a ParentService.
func NewParentService(repo parentRepository, users userRepository, students studentReader, activity activityWriter, validate *validator.Validate, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ParentService{repo: repo, users: users, students: students, activity: activity, validator: validate, logger: logger}
}

// ListChildren returns the students linked to a parent account, archived
// ones included so parents keep historical visibility.
func (s *ParentService) ListChildren(ctx context.Context, parentID string) ([]models.ParentChildRecord, error) {
	children, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	return children, nil
}

// CanView reports whether a parent account is linked to the given student.
func (s *ParentService) CanView(ctx context.Context, parentID, studentID string) (bool, error) {
	linked, err := s.repo.Linked(ctx, parentID, studentID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check parent link")
	}
	return linked, nil
}

// Link connects a parent account to a student record.
func (s *ParentService) Link(ctx context.Context, actorID string, req models.ParentLinkRequest) (*models.ParentStudent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid link payload")
	}

	parent, err := s.users.FindByID(ctx, req.ParentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent account")
	}
	if parent.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "account does not have the parent role")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	linked, err := s.repo.Linked(ctx, req.ParentID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check parent link")
	}
	if linked {
		return nil, appErrors.Clone(appErrors.ErrConflict, "parent is already linked to this student")
	}

	link := &models.ParentStudent{
		ParentID:     req.ParentID,
		StudentID:    req.StudentID,
		Relationship: req.Relationship,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parent link")
	}

	s.record(ctx, actorID, models.ActivityActionCreate, link.ID, "Linked parent "+parent.Email+" to student")
	return link, nil
}

// Unlink removes a parent-student link.
func (s *ParentService) Unlink(ctx context.Context, actorID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete parent link")
	}
	s.record(ctx, actorID, models.ActivityActionDelete, id, "Removed parent link")
	return nil
}

func (s *ParentService) record(ctx context.Context, actorID, action, entityID, details string) {
	if s.activity == nil || actorID == "" {
		return
	}
	if err := s.activity.Insert(ctx, &models.ActivityLog{
		UserID:     actorID,
		Action:     action,
		EntityType: "parent_student",
		EntityID:   entityID,
		Details:    details,
	}); err != nil {
		s.logger.Warn("failed to record activity log", zap.String("action", action), zap.Error(err))
	}
}
