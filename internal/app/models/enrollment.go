package models

import "time"

// Enrollment links a student to a course with progress tracking.
// Uniqueness per (student_id, course_id) is enforced by the schema.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	CourseID   int64            `json:"courseId" db:"course_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	Progress   int              `json:"progress" db:"progress"`
	EnrolledAt time.Time        `json:"enrolledAt" db:"enrolled_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`

	CourseName string `json:"courseName,omitempty"` // joined, no db tag
}
