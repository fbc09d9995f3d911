package dto

import (
	"github.com/mertcakir/coursereg/internal/app/models"
)

// CourseResponse is the public view of a catalog course
type CourseResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Price       float64 `json:"price"`
}

// FromCourse converts a model to its response DTO
func FromCourse(c *models.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Duration:    c.Duration,
		Price:       c.Price,
	}
}

// CourseListResponse wraps the course catalog
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
}
