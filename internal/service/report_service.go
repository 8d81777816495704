package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
	"github.com/ddelizo/sis-api/pkg/export"
)

// Fixed attachment names for report downloads.
const (
	StudentsReportFilename   = "students_report.csv"
	GradesReportFilename     = "grades_report.csv"
	AttendanceReportFilename = "attendance_report.csv"
)

// ReportLimits caps how many attendance rows each role may pull into a
// report.
type ReportLimits struct {
	AttendanceAdmin   int
	AttendanceTeacher int
	AttendanceStudent int
}

type studentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// ReportService builds tabular report datasets and renders them as CSV or
// PDF downloads.
type ReportService struct {
	students   studentLister
	grades     gradeLister
	attendance attendanceLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	cache      summaryCache
	cacheTTL   time.Duration
	limits     ReportLimits
	logger     *zap.Logger
}

// NewReportService constructs a ReportService. cache may be nil to
// disable dataset caching.
func NewReportService(students studentLister, grades gradeLister, attendance attendanceLister, csv *export.CSVExporter, pdf *export.PDFExporter, cache summaryCache, cacheTTL time.Duration, limits ReportLimits, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.AttendanceAdmin <= 0 {
		limits.AttendanceAdmin = 100
	}
	if limits.AttendanceTeacher <= 0 {
		limits.AttendanceTeacher = 50
	}
	if limits.AttendanceStudent <= 0 {
		limits.AttendanceStudent = 20
	}
	return &ReportService{students: students, grades: grades, attendance: attendance, csv: csv, pdf: pdf, cache: cache, cacheTTL: cacheTTL, limits: limits, logger: logger}
}

// StudentsDataset builds the tabular students report. An empty status
// filter includes archived students.
func (s *ReportService) StudentsDataset(ctx context.Context, filter models.StudentFilter) (export.Dataset, error) {
	filter.Page = 1
	if filter.PageSize <= 0 {
		filter.PageSize = 100
	}

	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	key := fmt.Sprintf("report:students:%s:%s:%d", status, strings.ToLower(filter.Search), filter.PageSize)
	return s.cachedDataset(ctx, key, func() (export.Dataset, error) {
		return s.buildStudentsDataset(ctx, filter)
	})
}

func (s *ReportService) buildStudentsDataset(ctx context.Context, filter models.StudentFilter) (export.Dataset, error) {
	students, _, err := s.students.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for report")
	}

	dataset := export.Dataset{
		Headers: []string{"Student No", "Name", "Grade Level", "Section", "Status", "Enrollment Date"},
		Rows:    make([][]string, 0, len(students)),
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, []string{
			st.StudentNo,
			st.FullName(),
			st.GradeLevel,
			st.Section,
			string(st.Status),
			st.EnrollmentDate.Format("2006-01-02"),
		})
	}
	return dataset, nil
}

// GradesDataset builds the tabular grades report.
func (s *ReportService) GradesDataset(ctx context.Context, filter models.GradeFilter) (export.Dataset, error) {
	key := fmt.Sprintf("report:grades:%s:%s:%s:%s:%d", filter.StudentID, filter.SubjectID, filter.TeacherID, filter.SchoolYear, filter.Limit)
	return s.cachedDataset(ctx, key, func() (export.Dataset, error) {
		return s.buildGradesDataset(ctx, filter)
	})
}

func (s *ReportService) buildGradesDataset(ctx context.Context, filter models.GradeFilter) (export.Dataset, error) {
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades for report")
	}

	dataset := export.Dataset{
		Headers: []string{"Student No", "Student", "Subject", "Quarter", "Grade", "School Year", "Teacher", "Remarks"},
		Rows:    make([][]string, 0, len(grades)),
	}
	for _, g := range grades {
		dataset.Rows = append(dataset.Rows, []string{
			g.StudentNo,
			g.StudentName,
			g.SubjectName,
			string(g.Quarter),
			fmt.Sprintf("%.2f", g.GradeValue),
			g.SchoolYear,
			g.TeacherName,
			g.Remarks,
		})
	}
	return dataset, nil
}

// AttendanceDataset builds the tabular attendance report. The row cap
// depends on the requesting role.
func (s *ReportService) AttendanceDataset(ctx context.Context, role models.UserRole, filter models.AttendanceFilter) (export.Dataset, error) {
	limit := s.attendanceLimit(role)
	if filter.Limit <= 0 || filter.Limit > limit {
		filter.Limit = limit
	}

	key := fmt.Sprintf("report:attendance:%s:%s:%s:%s:%s:%d",
		filter.StudentID, filter.TeacherID, filter.SubjectID,
		formatDatePtr(filter.DateFrom), formatDatePtr(filter.DateTo), filter.Limit)
	return s.cachedDataset(ctx, key, func() (export.Dataset, error) {
		return s.buildAttendanceDataset(ctx, filter)
	})
}

func (s *ReportService) buildAttendanceDataset(ctx context.Context, filter models.AttendanceFilter) (export.Dataset, error) {
	records, err := s.attendance.List(ctx, filter)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance for report")
	}

	dataset := export.Dataset{
		Headers: []string{"Student No", "Student", "Subject", "Date", "Status", "Remarks"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, a := range records {
		dataset.Rows = append(dataset.Rows, []string{
			a.StudentNo,
			a.StudentName,
			a.SubjectName,
			a.Date.Format("2006-01-02"),
			string(a.Status),
			a.Remarks,
		})
	}
	return dataset, nil
}

// RenderCSV encodes the dataset as CSV bytes: one header row followed by
// one row per record.
func (s *ReportService) RenderCSV(dataset export.Dataset) ([]byte, error) {
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// RenderPDF encodes the dataset as a tabular PDF with the given title.
func (s *ReportService) RenderPDF(dataset export.Dataset, title string) ([]byte, error) {
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

// cachedDataset serves the dataset from redis when a fresh copy exists,
// rebuilding and re-caching it otherwise. Short TTLs keep reports close
// to live data without hammering the joins on repeat downloads.
func (s *ReportService) cachedDataset(ctx context.Context, key string, build func() (export.Dataset, error)) (export.Dataset, error) {
	if s.cache != nil {
		var cached export.Dataset
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	dataset, err := build()
	if err != nil {
		return export.Dataset{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, dataset, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return dataset, nil
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func (s *ReportService) attendanceLimit(role models.UserRole) int {
	switch role {
	case models.RoleAdmin:
		return s.limits.AttendanceAdmin
	case models.RoleTeacher:
		return s.limits.AttendanceTeacher
	default:
		return s.limits.AttendanceStudent
	}
}
