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

type mockSubjectRepo struct {
	subjects   map[string]*models.Subject
	takenCodes map[string]bool
	created    []*models.Subject
	deletedIDs []string
}

func (m *mockSubjectRepo) List(ctx context.Context) ([]models.Subject, error) {
	out := make([]models.Subject, 0, len(m.subjects))
	for _, s := range m.subjects {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	s, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (m *mockSubjectRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	return m.takenCodes[code], nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	subject.ID = "sub1"
	m.created = append(m.created, subject)
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := &mockSubjectRepo{}
	activity := &mockActivityLog{}
	svc := NewSubjectService(repo, activity, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), "admin1", models.SubjectRequest{
		Code: "MATH10", Name: "Mathematics 10",
	})
	require.NoError(t, err)
	assert.Equal(t, "MATH10", subject.Code)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, "subject", activity.entries[0].EntityType)
}

func TestSubjectServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockSubjectRepo{takenCodes: map[string]bool{"MATH10": true}}
	svc := NewSubjectService(repo, &mockActivityLog{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "admin1", models.SubjectRequest{
		Code: "MATH10", Name: "Mathematics 10",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestSubjectServiceDelete(t *testing.T) {
	repo := &mockSubjectRepo{subjects: map[string]*models.Subject{
		"sub1": {ID: "sub1", Code: "MATH10"},
	}}
	activity := &mockActivityLog{}
	svc := NewSubjectService(repo, activity, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "admin1", "sub1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub1"}, repo.deletedIDs)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionDelete, activity.entries[0].Action)
}

func TestSubjectServiceDeleteNotFound(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, &mockActivityLog{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "admin1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
