package models

// StudentSummary aggregates the student dashboard figures. AverageGrade is
// the arithmetic mean of all grade values rounded to two decimals, or 0 when
// no grades exist. AttendanceRate is present-count over total rows times 100
// rounded to one decimal, or 0 when no records exist.
type StudentSummary struct {
	Student          Student            `json:"student"`
	AverageGrade     float64            `json:"average_grade"`
	AttendanceRate   float64            `json:"attendance_rate"`
	SubjectCount     int                `json:"subject_count"`
	RecentGrades     []GradeRecord      `json:"recent_grades"`
	RecentAttendance []AttendanceRecord `json:"recent_attendance"`
}
