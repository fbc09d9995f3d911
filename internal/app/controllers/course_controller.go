package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/app/services"
	"github.com/mertcakir/coursereg/internal/middleware"
)

// CourseController handles course catalog endpoints
type CourseController struct {
	courseService *services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// List handles GET /api/courses
func (c *CourseController) List(ctx *gin.Context) {
	courses, err := c.courseService.ListActive(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, dto.FromCourse(&courses[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CourseListResponse{Courses: items}))
}
