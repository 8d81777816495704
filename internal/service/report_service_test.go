package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	"github.com/ddelizo/sis-api/pkg/export"
)

type mockStudentLister struct {
	students []models.Student
	listErr  error
}

func (m *mockStudentLister) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.students, len(m.students), nil
}

func newReportService(students *mockStudentLister, grades *mockGradeLister, attendance *mockAttendanceLister) *ReportService {
	return NewReportService(students, grades, attendance, export.NewCSVExporter(), export.NewPDFExporter(), nil, 0, ReportLimits{}, zap.NewNop())
}

func TestReportServiceStudentsDatasetCSV(t *testing.T) {
	students := &mockStudentLister{students: []models.Student{
		{StudentNo: "2024-0001", FirstName: "Juan", LastName: "Cruz", GradeLevel: "10", Section: "A", Status: models.StudentStatusActive, EnrollmentDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
		{StudentNo: "2024-0002", FirstName: "Maria", LastName: "Santos", GradeLevel: "10", Section: "B", Status: models.StudentStatusArchived, EnrollmentDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
	}}
	svc := newReportService(students, &mockGradeLister{}, &mockAttendanceLister{})

	dataset, err := svc.StudentsDataset(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 2)

	payload, err := svc.RenderCSV(dataset)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student No,Name,Grade Level,Section,Status,Enrollment Date", lines[0])
	assert.Contains(t, lines[1], "2024-0001")
	assert.Contains(t, lines[2], "archived")
}

func TestReportServiceCSVQuotesCommas(t *testing.T) {
	grades := &mockGradeLister{grades: []models.GradeRecord{
		{
			Grade:       models.Grade{Quarter: models.QuarterFirst, GradeValue: 91.5, SchoolYear: "2024-2025", Remarks: "late submission, excused"},
			StudentNo:   "2024-0001",
			StudentName: "Juan Cruz",
			SubjectName: "Math",
			TeacherName: "T. Reyes",
		},
	}}
	svc := newReportService(&mockStudentLister{}, grades, &mockAttendanceLister{})

	dataset, err := svc.GradesDataset(context.Background(), models.GradeFilter{})
	require.NoError(t, err)

	payload, err := svc.RenderCSV(dataset)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"late submission, excused"`)
	assert.Contains(t, string(payload), "91.50")
}

func TestReportServiceAttendanceLimitByRole(t *testing.T) {
	tests := []struct {
		role  models.UserRole
		limit int
	}{
		{models.RoleAdmin, 100},
		{models.RoleTeacher, 50},
		{models.RoleStudent, 20},
		{models.RoleParent, 20},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			attendance := &mockAttendanceLister{}
			svc := newReportService(&mockStudentLister{}, &mockGradeLister{}, attendance)

			_, err := svc.AttendanceDataset(context.Background(), tc.role, models.AttendanceFilter{})
			require.NoError(t, err)
			assert.Equal(t, tc.limit, attendance.lastFilter.Limit)
		})
	}
}

func TestReportServiceAttendanceCapsRequestedLimit(t *testing.T) {
	attendance := &mockAttendanceLister{}
	svc := newReportService(&mockStudentLister{}, &mockGradeLister{}, attendance)

	_, err := svc.AttendanceDataset(context.Background(), models.RoleTeacher, models.AttendanceFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, attendance.lastFilter.Limit)

	_, err = svc.AttendanceDataset(context.Background(), models.RoleTeacher, models.AttendanceFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, attendance.lastFilter.Limit)
}

func TestReportServiceCachesStudentsDataset(t *testing.T) {
	students := &mockStudentLister{students: []models.Student{
		{StudentNo: "2024-0001", FirstName: "Juan", LastName: "Cruz", Status: models.StudentStatusActive},
	}}
	cache := &mockSummaryCache{}
	svc := NewReportService(students, &mockGradeLister{}, &mockAttendanceLister{}, export.NewCSVExporter(), export.NewPDFExporter(), cache, time.Minute, ReportLimits{}, zap.NewNop())

	first, err := svc.StudentsDataset(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	assert.Equal(t, 1, cache.sets)

	// the second read must be served from the cache
	students.listErr = assert.AnError
	second, err := svc.StudentsDataset(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, 1, cache.sets)
}

func TestReportServiceCacheKeyedByFilter(t *testing.T) {
	students := &mockStudentLister{}
	cache := &mockSummaryCache{}
	svc := NewReportService(students, &mockGradeLister{}, &mockAttendanceLister{}, export.NewCSVExporter(), export.NewPDFExporter(), cache, time.Minute, ReportLimits{}, zap.NewNop())

	_, err := svc.StudentsDataset(context.Background(), models.StudentFilter{})
	require.NoError(t, err)

	archived := models.StudentStatusArchived
	_, err = svc.StudentsDataset(context.Background(), models.StudentFilter{Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestReportServiceRenderPDF(t *testing.T) {
	attendance := &mockAttendanceLister{records: []models.AttendanceRecord{
		{
			Attendance:  models.Attendance{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Status: models.AttendancePresent},
			StudentNo:   "2024-0001",
			StudentName: "Juan Cruz",
			SubjectName: "Math",
		},
	}}
	svc := newReportService(&mockStudentLister{}, &mockGradeLister{}, attendance)

	dataset, err := svc.AttendanceDataset(context.Background(), models.RoleAdmin, models.AttendanceFilter{})
	require.NoError(t, err)

	payload, err := svc.RenderPDF(dataset, "Attendance Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
