package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, att *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// AttendanceService manages attendance recording.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentReader
	activity  activityWriter
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, students studentReader, activity activityWriter, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, students: students, activity: activity, cache: cache, validator: validate, logger: logger}
}

// List returns attendance records matching the filter, newest date first.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Create records attendance for a student. Every successful insert is
// paired with an audit entry written afterwards.
func (s *AttendanceService) Create(ctx context.Context, teacherID string, req models.AttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of present, absent, late, excused")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	att := &models.Attendance{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		TeacherID: teacherID,
		Date:      date,
		Status:    req.Status,
		Remarks:   req.Remarks,
	}
	if err := s.repo.Create(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
	}

	s.record(ctx, teacherID, models.ActivityActionCreate, att.ID,
		fmt.Sprintf("Marked %s %s on %s", student.StudentNo, att.Status, req.Date))
	s.invalidateSummary(ctx, att.StudentID)
	return att, nil
}

// Delete removes a mistaken attendance row. Admins may delete any row,
// teachers only rows they recorded themselves.
func (s *AttendanceService) Delete(ctx context.Context, actorID string, role models.UserRole, id string) error {
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	if role != models.RoleAdmin && att.TeacherID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "attendance can only be deleted by the teacher who recorded it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}

	s.record(ctx, actorID, models.ActivityActionDelete, id,
		fmt.Sprintf("Removed attendance dated %s", att.Date.Format(dateLayout)))
	s.invalidateSummary(ctx, att.StudentID)
	return nil
}

func (s *AttendanceService) record(ctx context.Context, actorID, action, entityID, details string) {
	if s.activity == nil || actorID == "" {
		return
	}
	if err := s.activity.Insert(ctx, &models.ActivityLog{
		UserID:     actorID,
		Action:     action,
		EntityType: "attendance",
		EntityID:   entityID,
		Details:    details,
	}); err != nil {
		s.logger.Warn("failed to record activity log", zap.String("action", action), zap.Error(err))
	}
}

func (s *AttendanceService) invalidateSummary(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "summary:student:"+studentID); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.String("student_id", studentID), zap.Error(err))
	}
}
