package dto

import (
	"time"

	"github.com/mertcakir/coursereg/internal/app/models"
)

// EnrollmentResponse is the public view of a single enrollment
type EnrollmentResponse struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"courseId"`
	CourseName string    `json:"courseName"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	EnrolledAt time.Time `json:"enrolledAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FromEnrollment converts a model to its response DTO
func FromEnrollment(e *models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         e.ID,
		CourseID:   e.CourseID,
		CourseName: e.CourseName,
		Status:     string(e.Status),
		Progress:   e.Progress,
		EnrolledAt: e.EnrolledAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// UpdateEnrollmentRequest updates the status and/or progress of an enrollment
type UpdateEnrollmentRequest struct {
	Status   *string `json:"status" binding:"omitempty,oneof=enrolled in_progress completed dropped"`
	Progress *int    `json:"progress" binding:"omitempty,gte=0,lte=100"`
}
