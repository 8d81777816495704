package models

import "time"

// ParentStudent links a parent user to a student with a free-form
// relationship label (e.g. "mother").
type ParentStudent struct {
	ID           string    `db:"id" json:"id"`
	ParentID     string    `db:"parent_id" json:"parent_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Relationship string    `db:"relationship" json:"relationship"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ParentLinkRequest is the payload for linking a parent account to a student.
type ParentLinkRequest struct {
	ParentID     string `json:"parent_id" validate:"required"`
	StudentID    string `json:"student_id" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
}

// ParentChildRecord joins the linked student for the parent dashboard.
type ParentChildRecord struct {
	ParentStudent
	StudentNo     string        `db:"student_no" json:"student_no"`
	StudentName   string        `db:"student_name" json:"student_name"`
	GradeLevel    string        `db:"grade_level" json:"grade_level"`
	Section       string        `db:"section" json:"section"`
	StudentStatus StudentStatus `db:"student_status" json:"student_status"`
}
