package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ddelizo/sis-api/internal/models"
)

// GradeRepository manages persistence for quarterly grade entries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeSelect = `SELECT g.id, g.student_id, g.subject_id, g.teacher_id, g.quarter, g.grade, g.remarks, g.school_year, g.encoded_at, g.updated_at,
        s.first_name || ' ' || s.last_name AS student_name, s.student_no, sub.name AS subject_name, u.full_name AS teacher_name
        FROM grades g
        JOIN students s ON s.id = g.student_id
        JOIN subjects sub ON sub.id = g.subject_id
        JOIN users u ON u.id = g.teacher_id`

// List returns grade records with joined student, subject and teacher names
// so callers avoid per-row follow-up fetches. Ordered by encoded_at desc.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	base := gradeSelect
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("g.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("g.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.SchoolYear != "" {
		conditions = append(conditions, fmt.Sprintf("g.school_year = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}

	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}
	base += " ORDER BY g.encoded_at DESC"
	if filter.Limit > 0 {
		base += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var grades []models.GradeRecord
	if err := r.db.SelectContext(ctx, &grades, base, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// FindByID fetches a grade entry by ID.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	const query = `SELECT id, student_id, subject_id, teacher_id, quarter, grade, remarks, school_year, encoded_at, updated_at FROM grades WHERE id = $1 LIMIT 1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade by id: %w", err)
	}
	return &grade, nil
}

// Create inserts a new grade entry.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.EncodedAt.IsZero() {
		grade.EncodedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, subject_id, teacher_id, quarter, grade, remarks, school_year, encoded_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :teacher_id, :quarter, :grade, :remarks, :school_year, :encoded_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies an existing grade entry and stamps updated_at.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET student_id = :student_id, subject_id = :subject_id, quarter = :quarter, grade = :grade, remarks = :remarks, school_year = :school_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes a grade entry permanently.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM grades WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}
