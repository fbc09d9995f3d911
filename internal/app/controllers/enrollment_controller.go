package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/app/services"
	"github.com/mertcakir/coursereg/internal/middleware"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
)

// EnrollmentController handles enrollment endpoints
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// GetByStudent handles GET /api/students/:id/enrollments.
// Admins can read any student's enrollments; a student only their own.
func (c *EnrollmentController) GetByStudent(ctx *gin.Context) {
	studentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if middleware.RoleType(ctx) != string(models.RoleAdmin) {
		principalID, _ := middleware.PrincipalID(ctx)
		if principalID != studentID {
			middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
			return
		}
	}

	enrollments, err := c.enrollmentService.GetByStudent(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		items = append(items, dto.FromEnrollment(&enrollments[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items))
}

// Update handles PUT /api/enrollments/:id (admin)
func (c *EnrollmentController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	enrollment, err := c.enrollmentService.Update(ctx, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromEnrollment(enrollment)))
}
