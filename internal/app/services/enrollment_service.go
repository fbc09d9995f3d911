package services

import (
	"context"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// EnrollmentService handles enrollment queries and progress updates
type EnrollmentService struct {
	enrollmentStore EnrollmentStore
	studentStore    StudentStore
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(enrollmentStore EnrollmentStore, studentStore StudentStore) *EnrollmentService {
	return &EnrollmentService{
		enrollmentStore: enrollmentStore,
		studentStore:    studentStore,
	}
}

// GetByStudent retrieves all enrollments of a student.
// The student must exist; an empty enrollment list is not an error.
func (s *EnrollmentService) GetByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	if _, err := s.studentStore.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.enrollmentStore.GetByStudent(ctx, studentID)
}

// Update changes the status and/or progress of an enrollment
func (s *EnrollmentService) Update(ctx context.Context, id int64, req *dto.UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if req.Status == nil && req.Progress == nil {
		return nil, apperrors.NewBadRequestError("no fields to update")
	}

	var status *models.EnrollmentStatus
	if req.Status != nil {
		st := models.EnrollmentStatus(*req.Status)
		if !models.ValidEnrollmentStatus(st) {
			return nil, apperrors.ErrInvalidEnrollStatus
		}
		status = &st
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return nil, apperrors.ErrInvalidProgress
	}

	if err := s.enrollmentStore.Update(ctx, id, status, req.Progress); err != nil {
		return nil, err
	}

	updated, err := s.enrollmentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("enrollmentID", id).Msg("Enrollment progress updated")
	return updated, nil
}
