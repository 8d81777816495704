package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ddelizo/sis-api/internal/models"
)

// ParentRepository manages parent-to-student relationships.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository constructs a ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// ListChildren returns the students linked to a parent account.
func (r *ParentRepository) ListChildren(ctx context.Context, parentUserID string) ([]models.ParentChildRecord, error) {
	const query = `SELECT ps.id, ps.parent_id, ps.student_id, ps.relationship, ps.created_at,
        s.student_no, s.first_name || ' ' || s.last_name AS student_name, s.grade_level, s.section, s.status AS student_status
        FROM parent_students ps
        JOIN students s ON s.id = ps.student_id
        WHERE ps.parent_id = $1
        ORDER BY s.last_name ASC`
	var children []models.ParentChildRecord
	if err := r.db.SelectContext(ctx, &children, query, parentUserID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return children, nil
}

// Linked reports whether a parent account is linked to the given student.
func (r *ParentRepository) Linked(ctx context.Context, parentUserID, studentID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM parent_students WHERE parent_id = $1 AND student_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, parentUserID, studentID); err != nil {
		return false, fmt.Errorf("check parent link: %w", err)
	}
	return count > 0, nil
}

// Create links a parent account to a student.
func (r *ParentRepository) Create(ctx context.Context, link *models.ParentStudent) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO parent_students (id, parent_id, student_id, relationship, created_at)
        VALUES (:id, :parent_id, :student_id, :relationship, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create parent link: %w", err)
	}
	return nil
}

// Delete removes a parent-student link.
func (r *ParentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM parent_students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete parent link: %w", err)
	}
	return nil
}
