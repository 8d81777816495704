package models

import "time"

// Quarter is one of four fixed grading periods in a school year.
type Quarter string

const (
	QuarterFirst  Quarter = "1st"
	QuarterSecond Quarter = "2nd"
	QuarterThird  Quarter = "3rd"
	QuarterFourth Quarter = "4th"
)

// Valid reports whether the quarter is a supported value.
func (q Quarter) Valid() bool {
	switch q {
	case QuarterFirst, QuarterSecond, QuarterThird, QuarterFourth:
		return true
	default:
		return false
	}
}

// Grade represents a quarterly grade entry recorded by a teacher.
type Grade struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	SubjectID  string    `db:"subject_id" json:"subject_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	Quarter    Quarter   `db:"quarter" json:"quarter"`
	GradeValue float64   `db:"grade" json:"grade"`
	Remarks    string    `db:"remarks" json:"remarks"`
	SchoolYear string    `db:"school_year" json:"school_year"`
	EncodedAt  time.Time `db:"encoded_at" json:"encoded_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// GradeRecord is the joined projection used by list views and reports.
type GradeRecord struct {
	Grade
	StudentName string `db:"student_name" json:"student_name"`
	StudentNo   string `db:"student_no" json:"student_no"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// GradeRequest is the payload for encoding or correcting a grade entry.
type GradeRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	SubjectID  string  `json:"subject_id" validate:"required"`
	Quarter    Quarter `json:"quarter" validate:"required"`
	Grade      float64 `json:"grade" validate:"required,gte=0,lte=100"`
	Remarks    string  `json:"remarks"`
	SchoolYear string  `json:"school_year" validate:"required"`
}

// GradeFilter scopes grade listing queries.
type GradeFilter struct {
	StudentID  string
	TeacherID  string
	SubjectID  string
	SchoolYear string
	Limit      int
}
