package services

import (
	"context"

	"github.com/mertcakir/coursereg/internal/app/models"
)

// CourseService exposes the course catalog
type CourseService struct {
	courseStore CourseStore
}

// NewCourseService creates a new CourseService
func NewCourseService(courseStore CourseStore) *CourseService {
	return &CourseService{courseStore: courseStore}
}

// ListActive returns the active course catalog
func (s *CourseService) ListActive(ctx context.Context) ([]models.Course, error) {
	return s.courseStore.GetActive(ctx)
}
