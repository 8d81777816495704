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
	"golang.org/x/crypto/bcrypt"

	"github.com/ddelizo/sis-api/internal/models"
	appErrors "github.com/ddelizo/sis-api/pkg/errors"
)

type mockUserRepo struct {
	users         map[string]*models.User
	takenEmails   map[string]bool
	created       []*models.User
	deletedIDs    []string
	revokedUserID string
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return m.takenEmails[email], nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "generated"
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedUserID = userID
	return nil
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	repo := &mockUserRepo{}
	activity := &mockActivityLog{}
	svc := NewUserService(repo, activity, validator.New(), zap.NewNop())

	user, err := svc.Create(context.Background(), "admin1", models.CreateUserRequest{
		Email:    "teacher@school.com",
		Password: "secret123",
		FullName: "T. Reyes",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	require.Len(t, activity.entries, 1)
	assert.Equal(t, "user", activity.entries[0].EntityType)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{takenEmails: map[string]bool{"teacher@school.com": true}}
	svc := NewUserService(repo, &mockActivityLog{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "admin1", models.CreateUserRequest{
		Email:    "teacher@school.com",
		Password: "secret123",
		FullName: "T. Reyes",
		Role:     models.RoleTeacher,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestUserServiceCreateUnknownRole(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, &mockActivityLog{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "admin1", models.CreateUserRequest{
		Email:    "x@school.com",
		Password: "secret123",
		FullName: "X",
		Role:     models.UserRole("principal"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceDeleteRevokesSessions(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "teacher@school.com", Role: models.RoleTeacher},
	}}
	activity := &mockActivityLog{}
	svc := NewUserService(repo, activity, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "admin1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", repo.revokedUserID)
	assert.Equal(t, []string{"u1"}, repo.deletedIDs)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityActionDelete, activity.entries[0].Action)
}

func TestUserServiceListPagination(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {ID: "u1"}, "u2": {ID: "u2"},
	}}
	svc := NewUserService(repo, &mockActivityLog{}, validator.New(), zap.NewNop())

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}
