package models

// RoleType identifies the kind of authenticated principal
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleStudent RoleType = "STUDENT"
)

// EnrollmentStatus is the lifecycle state of a course enrollment
type EnrollmentStatus string

const (
	EnrollmentEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentInProgress EnrollmentStatus = "in_progress"
	EnrollmentCompleted  EnrollmentStatus = "completed"
	EnrollmentDropped    EnrollmentStatus = "dropped"
)

// ValidEnrollmentStatus reports whether s is a known enrollment status.
func ValidEnrollmentStatus(s EnrollmentStatus) bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentInProgress, EnrollmentCompleted, EnrollmentDropped:
		return true
	}
	return false
}
