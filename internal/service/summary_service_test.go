package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	st, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

type mockGradeLister struct {
	grades  []models.GradeRecord
	listErr error
}

func (m *mockGradeLister) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.grades, nil
}

type mockAttendanceLister struct {
	records    []models.AttendanceRecord
	listErr    error
	lastFilter models.AttendanceFilter
}

func (m *mockAttendanceLister) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

type mockSummaryCache struct {
	store  map[string][]byte
	getErr error
	sets   int
}

func (m *mockSummaryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockSummaryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = raw
	m.sets++
	return nil
}

func gradeRecords(subjectIDs []string, values ...float64) []models.GradeRecord {
	out := make([]models.GradeRecord, len(values))
	for i, v := range values {
		out[i] = models.GradeRecord{Grade: models.Grade{SubjectID: subjectIDs[i%len(subjectIDs)], GradeValue: v}}
	}
	return out
}

func attendanceRecords(statuses ...models.AttendanceStatus) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, len(statuses))
	for i, st := range statuses {
		out[i] = models.AttendanceRecord{Attendance: models.Attendance{Status: st}}
	}
	return out
}

func TestSummaryServiceGetComputesAggregates(t *testing.T) {
	students := &mockStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", StudentNo: "2024-0001", FirstName: "Juan", LastName: "Cruz"},
	}}
	grades := &mockGradeLister{grades: gradeRecords([]string{"math", "science", "math"}, 85, 86, 86)}
	attendance := &mockAttendanceLister{records: attendanceRecords(
		models.AttendancePresent, models.AttendancePresent, models.AttendanceAbsent,
	)}
	cache := &mockSummaryCache{}
	svc := NewSummaryService(students, grades, attendance, cache, time.Minute, zap.NewNop())

	summary, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)

	// mean of 85, 86, 86 is 85.666..., rounded to two decimals
	assert.Equal(t, 85.67, summary.AverageGrade)
	// 2 of 3 present, rounded to one decimal
	assert.Equal(t, 66.7, summary.AttendanceRate)
	assert.Equal(t, 2, summary.SubjectCount)
	assert.Equal(t, 1, cache.sets)
}

func TestSummaryServiceGetZeroOnEmpty(t *testing.T) {
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	svc := NewSummaryService(students, &mockGradeLister{}, &mockAttendanceLister{}, nil, time.Minute, zap.NewNop())

	summary, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Zero(t, summary.AverageGrade)
	assert.Zero(t, summary.AttendanceRate)
	assert.Zero(t, summary.SubjectCount)
}

func TestSummaryServiceGetCapsRecentEntries(t *testing.T) {
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	grades := &mockGradeLister{}
	for i := 0; i < 30; i++ {
		grades.grades = append(grades.grades, models.GradeRecord{Grade: models.Grade{SubjectID: "math", GradeValue: 80}})
	}
	attendance := &mockAttendanceLister{records: attendanceRecords(models.AttendancePresent)}
	svc := NewSummaryService(students, grades, attendance, nil, time.Minute, zap.NewNop())

	summary, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, summary.RecentGrades, 20)
	assert.Len(t, summary.RecentAttendance, 1)
}

func TestSummaryServiceGetServesFromCache(t *testing.T) {
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	grades := &mockGradeLister{grades: gradeRecords([]string{"math"}, 90)}
	attendance := &mockAttendanceLister{}
	cache := &mockSummaryCache{}
	svc := NewSummaryService(students, grades, attendance, cache, time.Minute, zap.NewNop())

	first, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)

	// the second read must not hit the grade lister again
	grades.listErr = assert.AnError
	second, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, first.AverageGrade, second.AverageGrade)
}

func TestSummaryServiceGetUnknownStudent(t *testing.T) {
	svc := NewSummaryService(&mockStudentReader{}, &mockGradeLister{}, &mockAttendanceLister{}, nil, time.Minute, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
