package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/app/services"
	"github.com/mertcakir/coursereg/internal/middleware"
	"github.com/mertcakir/coursereg/internal/pkg/helpers"
)

// StudentController handles registration and student management endpoints
type StudentController struct {
	studentService *services.StudentService
	authService    *services.AuthService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService, authService *services.AuthService) *StudentController {
	return &StudentController{
		studentService: studentService,
		authService:    authService,
	}
}

// Register handles POST /api/register (multipart form)
func (c *StudentController) Register(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	// Optional upload; a missing file part is fine.
	picture, err := ctx.FormFile("profilePicture")
	if err != nil && err != http.ErrMissingFile {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidFile, "Invalid profile picture upload").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.Register(ctx, &req, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromStudent(student)))
}

// List handles GET /api/students
func (c *StudentController) List(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	params := dto.StudentListParams{
		Page:      page,
		Size:      size,
		Search:    ctx.Query("search"),
		SortBy:    ctx.Query("sortBy"),
		SortOrder: ctx.DefaultQuery("sortOrder", "asc"),
	}

	students, pagination, err := c.studentService.List(ctx, params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, dto.FromStudent(&students[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: pagination,
	}))
}

// Get handles GET /api/students/:id
func (c *StudentController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromStudent(student)))
}

// Update handles PUT /api/students/:id (partial multipart patch).
// Only form fields present in the request are applied.
func (c *StudentController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	req, err := bindStudentPatch(ctx)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid update data").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	picture, err := ctx.FormFile("profilePicture")
	if err != nil && err != http.ErrMissingFile {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidFile, "Invalid profile picture upload").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	adminID, _ := middleware.PrincipalID(ctx)
	student, err := c.studentService.Update(ctx, adminID, id, req, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromStudent(student)))
}

// Delete handles DELETE /api/students/:id
func (c *StudentController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	adminID, _ := middleware.PrincipalID(ctx)
	if err := c.studentService.Delete(ctx, adminID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse("Student deleted"))
}

// ExportCSV handles GET /api/students/export/csv
func (c *StudentController) ExportCSV(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.studentService.ExportCSV(ctx, &buf, ctx.Query("search")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("students-%s.csv", time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportPDF handles GET /api/students/export/pdf
func (c *StudentController) ExportPDF(ctx *gin.Context) {
	var buf bytes.Buffer
	if err := c.studentService.ExportPDF(ctx, &buf, ctx.Query("search")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filename := fmt.Sprintf("students-%s.pdf", time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// AuditHistory handles GET /api/students/:id/audit
func (c *StudentController) AuditHistory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	entries, err := c.studentService.AuditHistory(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(entries))
}

// Profile handles GET /api/profile for the authenticated principal
func (c *StudentController) Profile(ctx *gin.Context) {
	principalID, ok := middleware.PrincipalID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	profile, err := c.authService.Profile(ctx, principalID, middleware.RoleType(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile))
}

// bindStudentPatch reads the partial multipart update form. A field is only
// applied when its key is present in the request.
func bindStudentPatch(ctx *gin.Context) (*dto.UpdateStudentRequest, error) {
	req := &dto.UpdateStudentRequest{}

	if v, ok := ctx.GetPostForm("firstName"); ok {
		req.FirstName = &v
	}
	if v, ok := ctx.GetPostForm("lastName"); ok {
		req.LastName = &v
	}
	if v, ok := ctx.GetPostForm("email"); ok {
		req.Email = &v
	}
	if v, ok := ctx.GetPostForm("phone"); ok {
		req.Phone = &v
	}
	if v, ok := ctx.GetPostForm("age"); ok {
		age, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("age must be a number")
		}
		req.Age = &age
	}
	if v, ok := ctx.GetPostForm("education"); ok {
		req.Education = &v
	}
	if v, ok := ctx.GetPostForm("experience"); ok {
		req.Experience = &v
	}
	if v, ok := ctx.GetPostForm("motivation"); ok {
		req.Motivation = &v
	}
	if courses, ok := ctx.GetPostFormArray("courses"); ok {
		req.Courses = dto.NormalizeCourses(courses)
	}
	if v, ok := ctx.GetPostForm("isActive"); ok {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("isActive must be a boolean")
		}
		req.IsActive = &active
	}

	return req, nil
}

// parseIDParam parses a numeric path parameter, writing a 400 on failure.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid ID").
			WithDetails("ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
