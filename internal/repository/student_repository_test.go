package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddelizo/sis-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return sqlxDB, mock, func() { sqlxDB.Close() }
}

func studentRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "student_no", "first_name", "middle_name", "last_name",
		"birth_date", "gender", "address", "contact_number", "email",
		"grade_level", "section", "enrollment_date", "status", "created_at", "updated_at",
	}).AddRow(
		"s1", "u1", "2024-0001", "Juan", "", "Cruz",
		now, "male", "", "", "juan@school.com",
		"10", "A", now, "active", now, now,
	)
}

func TestStudentRepositoryListWithStatus(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students WHERE 1=1 AND status = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.StudentStatusArchived).
		WillReturnRows(studentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND status = $1")).
		WithArgs(models.StudentStatusArchived).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	repo := NewStudentRepository(db)
	archived := models.StudentStatusArchived
	students, total, err := repo.List(context.Background(), models.StudentFilter{Status: &archived})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "2024-0001", students[0].StudentNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + " FROM students WHERE 1=1 AND (LOWER(student_no) LIKE $1 OR LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1 OR LOWER(email) LIKE $1) ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("%juan%").
		WillReturnRows(studentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%juan%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	repo := NewStudentRepository(db)
	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Juan"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(studentRows())

	repo := NewStudentRepository(db)
	student, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO students").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), "2024-0001", "Juan", "", "Cruz",
			sqlmock.AnyArg(), "male", "", "", "juan@school.com",
			"10", "A", sqlmock.AnyArg(), "active", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewStudentRepository(db)
	userID := "u1"
	student := &models.Student{
		UserID:     &userID,
		StudentNo:  "2024-0001",
		FirstName:  "Juan",
		LastName:   "Cruz",
		Gender:     "male",
		Email:      "juan@school.com",
		GradeLevel: "10",
		Section:    "A",
		Status:     models.StudentStatusActive,
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryArchive(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", models.StudentStatusArchived, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewStudentRepository(db)
	err := repo.Archive(context.Background(), "s1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewStudentRepository(db)
	err := repo.Delete(context.Background(), "s1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentNo(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_no = $1 LIMIT 1")).
		WithArgs("2024-0001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_no = $1 LIMIT 1")).
		WithArgs("2024-0002").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	repo := NewStudentRepository(db)
	taken, err := repo.ExistsByStudentNo(context.Background(), "2024-0001", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.ExistsByStudentNo(context.Background(), "2024-0002", "")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
