package models

import "time"

// StudentStatus marks whether a student is enrolled or soft-deleted.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusArchived StudentStatus = "archived"
)

// Valid reports whether the status is a supported value.
func (s StudentStatus) Valid() bool {
	return s == StudentStatusActive || s == StudentStatusArchived
}

// Student represents a learner registered in the institution. UserID links
// the record to a login account when the student has one.
type Student struct {
	ID             string        `db:"id" json:"id"`
	UserID         *string       `db:"user_id" json:"user_id,omitempty"`
	StudentNo      string        `db:"student_no" json:"student_no"`
	FirstName      string        `db:"first_name" json:"first_name"`
	MiddleName     string        `db:"middle_name" json:"middle_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	BirthDate      time.Time     `db:"birth_date" json:"birth_date"`
	Gender         string        `db:"gender" json:"gender"`
	Address        string        `db:"address" json:"address"`
	ContactNumber  string        `db:"contact_number" json:"contact_number"`
	Email          string        `db:"email" json:"email"`
	GradeLevel     string        `db:"grade_level" json:"grade_level"`
	Section        string        `db:"section" json:"section"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display and audit details.
func (s Student) FullName() string {
	name := s.FirstName
	if s.MiddleName != "" {
		name += " " + s.MiddleName
	}
	if s.LastName != "" {
		name += " " + s.LastName
	}
	return name
}

// StudentRequest is the payload for creating or updating a student record.
type StudentRequest struct {
	UserID         *string `json:"user_id,omitempty"`
	StudentNo      string  `json:"student_no" validate:"required"`
	FirstName      string  `json:"first_name" validate:"required"`
	MiddleName     string  `json:"middle_name"`
	LastName       string  `json:"last_name" validate:"required"`
	BirthDate      string  `json:"birth_date" validate:"required"`
	Gender         string  `json:"gender" validate:"required,oneof=male female"`
	Address        string  `json:"address"`
	ContactNumber  string  `json:"contact_number"`
	Email          string  `json:"email" validate:"omitempty,email"`
	GradeLevel     string  `json:"grade_level" validate:"required"`
	Section        string  `json:"section" validate:"required"`
	EnrollmentDate string  `json:"enrollment_date" validate:"required"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    *StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
