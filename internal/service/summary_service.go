package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

const recentEntriesLimit = 20

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type gradeLister interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// SummaryService computes the per-student dashboard aggregates.
type SummaryService struct {
	students   studentReader
	grades     gradeLister
	attendance attendanceLister
	cache      summaryCache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewSummaryService constructs a SummaryService. cache may be nil to
// disable caching.
func NewSummaryService(students studentReader, grades gradeLister, attendance attendanceLister, cache summaryCache, cacheTTL time.Duration, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{students: students, grades: grades, attendance: attendance, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Get returns the dashboard summary for a student. The average grade is
// the mean of every grade value rounded to two decimals, the attendance
// rate is present rows over all rows as a percentage rounded to one
// decimal. Both are zero when no underlying rows exist.
func (s *SummaryService) Get(ctx context.Context, studentID string) (*models.StudentSummary, error) {
	cacheKey := "summary:student:" + studentID
	if s.cache != nil {
		var cached models.StudentSummary
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("summary cache read failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	grades, err := s.grades.List(ctx, models.GradeFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	attendance, err := s.attendance.List(ctx, models.AttendanceFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	summary := &models.StudentSummary{
		Student:          *student,
		AverageGrade:     averageGrade(grades),
		AttendanceRate:   attendanceRate(attendance),
		SubjectCount:     distinctSubjects(grades),
		RecentGrades:     head(grades, recentEntriesLimit),
		RecentAttendance: head(attendance, recentEntriesLimit),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("summary cache write failed", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return summary, nil
}

// averageGrade computes the arithmetic mean rounded to two decimals, zero
// when no grades exist.
func averageGrade(grades []models.GradeRecord) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.GradeValue
	}
	return math.Round(sum/float64(len(grades))*100) / 100
}

// attendanceRate computes present rows over all rows as a percentage
// rounded to one decimal, zero when no rows exist.
func attendanceRate(records []models.AttendanceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, a := range records {
		if a.Status == models.AttendancePresent {
			present++
		}
	}
	return math.Round(float64(present)/float64(len(records))*100*10) / 10
}

func distinctSubjects(grades []models.GradeRecord) int {
	seen := make(map[string]struct{}, len(grades))
	for _, g := range grades {
		seen[g.SubjectID] = struct{}{}
	}
	return len(seen)
}

func head[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
