package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// GradeService manages quarterly grade encoding.
type GradeService struct {
	repo      gradeRepository
	students  studentReader
	activity  activityWriter
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, students studentReader, activity activityWriter, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, students: students, activity: activity, cache: cache, validator: validate, logger: logger}
}

// List returns grade records matching the filter, newest encoded first.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	grades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Create encodes a new grade entry for a student. The acting teacher is
// recorded as the encoder.
func (s *GradeService) Create(ctx context.Context, teacherID string, req models.GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !req.Quarter.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quarter must be one of 1st, 2nd, 3rd, 4th")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	grade := &models.Grade{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		TeacherID:  teacherID,
		Quarter:    req.Quarter,
		GradeValue: req.Grade,
		Remarks:    req.Remarks,
		SchoolYear: req.SchoolYear,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}

	s.record(ctx, teacherID, models.ActivityActionCreate, grade.ID,
		fmt.Sprintf("Encoded %s quarter grade %.2f for %s", grade.Quarter, grade.GradeValue, student.StudentNo))
	s.invalidateSummary(ctx, grade.StudentID)
	return grade, nil
}

// Update corrects an existing grade entry.
func (s *GradeService) Update(ctx context.Context, teacherID, id string, req models.GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !req.Quarter.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "quarter must be one of 1st, 2nd, 3rd, 4th")
	}

	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}

	grade.StudentID = req.StudentID
	grade.SubjectID = req.SubjectID
	grade.Quarter = req.Quarter
	grade.GradeValue = req.Grade
	grade.Remarks = req.Remarks
	grade.SchoolYear = req.SchoolYear
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}

	s.record(ctx, teacherID, models.ActivityActionUpdate, grade.ID,
		fmt.Sprintf("Corrected %s quarter grade to %.2f", grade.Quarter, grade.GradeValue))
	s.invalidateSummary(ctx, grade.StudentID)
	return grade, nil
}

func (s *GradeService) record(ctx context.Context, actorID, action, entityID, details string) {
	if s.activity == nil || actorID == "" {
		return
	}
	if err := s.activity.Insert(ctx, &models.ActivityLog{
		UserID:     actorID,
		Action:     action,
		EntityType: "grade",
		EntityID:   entityID,
		Details:    details,
	}); err != nil {
		s.logger.Warn("failed to record activity log", zap.String("action", action), zap.Error(err))
	}
}

func (s *GradeService) invalidateSummary(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "summary:student:"+studentID); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.String("student_id", studentID), zap.Error(err))
	}
}
