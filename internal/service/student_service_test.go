package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type mockStudentRepo struct {
	students    map[string]*models.Student
	byUserID    map[string]*models.Student
	takenNos    map[string]bool
	created     []*models.Student
	updated     []*models.Student
	archivedIDs []string
	deletedIDs  []string
	listFilter  models.StudentFilter
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.listFilter = filter
	out := make([]models.Student, 0, len(m.students))
	for _, st := range m.students {
		out = append(out, *st)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	st, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *st
	return &clone, nil
}

func (m *mockStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	st, ok := m.byUserID[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (m *mockStudentRepo) ExistsByStudentNo(ctx context.Context, studentNo, excludeID string) (bool, error) {
	return m.takenNos[studentNo], nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.ID = "generated"
	m.created = append(m.created, student)
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.updated = append(m.updated, student)
	return nil
}

func (m *mockStudentRepo) Archive(ctx context.Context, id string) error {
	m.archivedIDs = append(m.archivedIDs, id)
	if st, ok := m.students[id]; ok {
		st.Status = models.StudentStatusArchived
	}
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	delete(m.students, id)
	return nil
}

type mockCacheInvalidator struct {
	patterns []string
}

func (m *mockCacheInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func validStudentRequest() models.StudentRequest {
	return models.StudentRequest{
		StudentNo:      "2024-0001",
		FirstName:      "Juan",
		LastName:       "Cruz",
		BirthDate:      "2010-03-15",
		Gender:         "male",
		GradeLevel:     "10",
		Section:        "A",
		EnrollmentDate: "2024-06-03",
	}
}

func newStudentService(repo *mockStudentRepo, activity *mockActivityLog, cache *mockCacheInvalidator) *StudentService {
	return NewStudentService(repo, activity, cache, validator.New(), zap.NewNop())
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	activity := &mockActivityLog{}
	svc := newStudentService(repo, activity, &mockCacheInvalidator{})

	student, err := svc.Create(context.Background(), "admin1", validStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, time.Date(2010, 3, 15, 0, 0, 0, 0, time.UTC), student.BirthDate)
	require.Len(t, repo.created, 1)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionCreate, activity.entries[0].Action)
	assert.Equal(t, "student", activity.entries[0].EntityType)
}

func TestStudentServiceCreateDuplicateStudentNo(t *testing.T) {
	repo := &mockStudentRepo{takenNos: map[string]bool{"2024-0001": true}}
	svc := newStudentService(repo, &mockActivityLog{}, &mockCacheInvalidator{})

	_, err := svc.Create(context.Background(), "admin1", validStudentRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestStudentServiceCreateRejectsBadDate(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, &mockActivityLog{}, &mockCacheInvalidator{})

	req := validStudentRequest()
	req.BirthDate = "15-03-2010"
	_, err := svc.Create(context.Background(), "admin1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceArchive(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", StudentNo: "2024-0001", Status: models.StudentStatusActive},
	}}
	activity := &mockActivityLog{}
	cache := &mockCacheInvalidator{}
	svc := newStudentService(repo, activity, cache)

	student, err := svc.Archive(context.Background(), "admin1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusArchived, student.Status)
	assert.Equal(t, []string{"s1"}, repo.archivedIDs)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionArchive, activity.entries[0].Action)
	assert.Equal(t, []string{"summary:student:s1"}, cache.patterns)
}

func TestStudentServiceArchiveAlreadyArchived(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", Status: models.StudentStatusArchived},
	}}
	svc := newStudentService(repo, &mockActivityLog{}, &mockCacheInvalidator{})

	_, err := svc.Archive(context.Background(), "admin1", "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.archivedIDs)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", StudentNo: "2024-0001", Status: models.StudentStatusActive},
	}}
	activity := &mockActivityLog{}
	cache := &mockCacheInvalidator{}
	svc := newStudentService(repo, activity, cache)

	err := svc.Delete(context.Background(), "admin1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, repo.deletedIDs)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionDelete, activity.entries[0].Action)
	assert.Contains(t, activity.entries[0].Details, "2024-0001")
	assert.Equal(t, []string{"summary:student:s1"}, cache.patterns)
}

func TestStudentServiceDeleteNotFound(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := newStudentService(repo, &mockActivityLog{}, &mockCacheInvalidator{})

	err := svc.Delete(context.Background(), "admin1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deletedIDs)
}

func TestStudentServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, &mockActivityLog{}, &mockCacheInvalidator{})

	bad := models.StudentStatus("expelled")
	_, _, err := svc.List(context.Background(), models.StudentFilter{Status: &bad})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceListPassesStatusThrough(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.Student{
		"s1": {ID: "s1", Status: models.StudentStatusArchived},
	}}
	svc := newStudentService(repo, &mockActivityLog{}, &mockCacheInvalidator{})

	archived := models.StudentStatusArchived
	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Status: &archived})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	require.NotNil(t, repo.listFilter.Status)
	assert.Equal(t, archived, *repo.listFilter.Status)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{}, &mockActivityLog{}, &mockCacheInvalidator{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
