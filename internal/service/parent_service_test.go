package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type mockParentRepo struct {
	children   []models.ParentChildRecord
	links      map[string]bool
	created    []*models.ParentStudent
	deletedIDs []string
}

func (m *mockParentRepo) ListChildren(ctx context.Context, parentID string) ([]models.ParentChildRecord, error) {
	return m.children, nil
}

func (m *mockParentRepo) Linked(ctx context.Context, parentID, studentID string) (bool, error) {
	return m.links[parentID+"/"+studentID], nil
}

func (m *mockParentRepo) Create(ctx context.Context, link *models.ParentStudent) error {
	link.ID = "link1"
	m.created = append(m.created, link)
	return nil
}

func (m *mockParentRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func newParentService(repo *mockParentRepo, users *mockUserRepo, students *mockStudentReader, activity *mockActivityLog) *ParentService {
	return NewParentService(repo, users, students, activity, validator.New(), zap.NewNop())
}

func TestParentServiceLink(t *testing.T) {
	repo := &mockParentRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"p1": {ID: "p1", Email: "parent@school.com", Role: models.RoleParent},
	}}
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	activity := &mockActivityLog{}
	svc := newParentService(repo, users, students, activity)

	link, err := svc.Link(context.Background(), "admin1", models.ParentLinkRequest{
		ParentID: "p1", StudentID: "s1", Relationship: "mother",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", link.ParentID)
	assert.Equal(t, "s1", link.StudentID)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "parent_student", activity.entries[0].EntityType)
}

func TestParentServiceLinkRejectsNonParentRole(t *testing.T) {
	users := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleTeacher},
	}}
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	svc := newParentService(&mockParentRepo{}, users, students, &mockActivityLog{})

	_, err := svc.Link(context.Background(), "admin1", models.ParentLinkRequest{
		ParentID: "u1", StudentID: "s1", Relationship: "father",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestParentServiceLinkAlreadyLinked(t *testing.T) {
	repo := &mockParentRepo{links: map[string]bool{"p1/s1": true}}
	users := &mockUserRepo{users: map[string]*models.User{
		"p1": {ID: "p1", Role: models.RoleParent},
	}}
	students := &mockStudentReader{students: map[string]*models.Student{"s1": {ID: "s1"}}}
	svc := newParentService(repo, users, students, &mockActivityLog{})

	_, err := svc.Link(context.Background(), "admin1", models.ParentLinkRequest{
		ParentID: "p1", StudentID: "s1", Relationship: "mother",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestParentServiceLinkUnknownStudent(t *testing.T) {
	users := &mockUserRepo{users: map[string]*models.User{
		"p1": {ID: "p1", Role: models.RoleParent},
	}}
	svc := newParentService(&mockParentRepo{}, users, &mockStudentReader{}, &mockActivityLog{})

	_, err := svc.Link(context.Background(), "admin1", models.ParentLinkRequest{
		ParentID: "p1", StudentID: "missing", Relationship: "mother",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestParentServiceCanView(t *testing.T) {
	repo := &mockParentRepo{links: map[string]bool{"p1/s1": true}}
	svc := newParentService(repo, &mockUserRepo{}, &mockStudentReader{}, &mockActivityLog{})

	ok, err := svc.CanView(context.Background(), "p1", "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanView(context.Background(), "p1", "s2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParentServiceUnlink(t *testing.T) {
	repo := &mockParentRepo{}
	activity := &mockActivityLog{}
	svc := newParentService(repo, &mockUserRepo{}, &mockStudentReader{}, activity)

	err := svc.Unlink(context.Background(), "admin1", "link1")
	require.NoError(t, err)
	assert.Equal(t, []string{"link1"}, repo.deletedIDs)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionDelete, activity.entries[0].Action)
}
