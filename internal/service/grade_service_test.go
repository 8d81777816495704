package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type mockGradeRepo struct {
	grades  map[string]*models.Grade
	created []*models.Grade
	updated []*models.Grade
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	return nil, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	g, ok := m.grades[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *g
	return &clone, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	grade.ID = "g1"
	m.created = append(m.created, grade)
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.updated = append(m.updated, grade)
	return nil
}

func validGradeRequest() models.GradeRequest {
	return models.GradeRequest{
		StudentID:  "s1",
		SubjectID:  "math",
		Quarter:    models.QuarterFirst,
		Grade:      91.5,
		SchoolYear: "2024-2025",
	}
}

func newGradeService(repo *mockGradeRepo, students *mockStudentReader, activity *mockActivityLog, cache *mockCacheInvalidator) *GradeService {
	return NewGradeService(repo, students, activity, cache, validator.New(), zap.NewNop())
}

func TestGradeServiceCreate(t *testing.T) {
	repo := &mockGradeRepo{}
	students := &mockStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", StudentNo: "2024-0001"},
	}}
	activity := &mockActivityLog{}
	cache := &mockCacheInvalidator{}
	svc := newGradeService(repo, students, activity, cache)

	grade, err := svc.Create(context.Background(), "t1", validGradeRequest())
	require.NoError(t, err)
	assert.Equal(t, "t1", grade.TeacherID)
	require.Len(t, repo.created, 1)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionCreate, activity.entries[0].Action)
	assert.Equal(t, "grade", activity.entries[0].EntityType)
	assert.Contains(t, activity.entries[0].Details, "91.50")
	assert.Contains(t, activity.entries[0].Details, "2024-0001")
	assert.Equal(t, []string{"summary:student:s1"}, cache.patterns)
}

func TestGradeServiceCreateInvalidQuarter(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{}, &mockStudentReader{}, &mockActivityLog{}, &mockCacheInvalidator{})

	req := validGradeRequest()
	req.Quarter = models.Quarter("5th")
	_, err := svc.Create(context.Background(), "t1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceCreateOutOfRange(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{}, &mockStudentReader{}, &mockActivityLog{}, &mockCacheInvalidator{})

	req := validGradeRequest()
	req.Grade = 120
	_, err := svc.Create(context.Background(), "t1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceCreateUnknownStudent(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{}, &mockStudentReader{}, &mockActivityLog{}, &mockCacheInvalidator{})

	_, err := svc.Create(context.Background(), "t1", validGradeRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGradeServiceUpdate(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]*models.Grade{
		"g1": {ID: "g1", StudentID: "s1", SubjectID: "math", Quarter: models.QuarterFirst, GradeValue: 85},
	}}
	activity := &mockActivityLog{}
	cache := &mockCacheInvalidator{}
	svc := newGradeService(repo, &mockStudentReader{}, activity, cache)

	req := validGradeRequest()
	req.Grade = 88
	grade, err := svc.Update(context.Background(), "t1", "g1", req)
	require.NoError(t, err)
	assert.Equal(t, 88.0, grade.GradeValue)
	require.Len(t, repo.updated, 1)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionUpdate, activity.entries[0].Action)
	assert.Equal(t, []string{"summary:student:s1"}, cache.patterns)
}
