package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/auth"
	"github.com/mertcakir/coursereg/internal/pkg/export"
	"github.com/mertcakir/coursereg/internal/pkg/filestorage"
	"github.com/mertcakir/coursereg/internal/pkg/helpers"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// StudentService handles registration and student record management
type StudentService struct {
	studentStore    StudentStore
	courseStore     CourseStore
	enrollmentStore EnrollmentStore
	auditStore      AuditStore
	storage         filestorage.FileStorage
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentStore StudentStore,
	courseStore CourseStore,
	enrollmentStore EnrollmentStore,
	auditStore AuditStore,
	storage filestorage.FileStorage,
) *StudentService {
	return &StudentService{
		studentStore:    studentStore,
		courseStore:     courseStore,
		enrollmentStore: enrollmentStore,
		auditStore:      auditStore,
		storage:         storage,
	}
}

// Register creates a new student account from the registration form.
// The email is pre-checked for a fast conflict response; the unique
// constraint still backstops concurrent registrations. If anything fails
// after the profile picture was stored, the file is removed again.
func (s *StudentService) Register(ctx context.Context, req *dto.RegisterStudentRequest, picture *multipart.FileHeader) (*models.Student, error) {
	exists, err := s.studentStore.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	picturePath, err := s.storage.SaveProfilePicture(picture)
	if err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.removeFile(picturePath)
		return nil, err
	}

	student := &models.Student{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   passwordHash,
		Age:        req.Age,
		Education:  req.Education,
		Experience: req.Experience,
		Motivation: req.Motivation,
		Courses:    dto.NormalizeCourses(req.Courses),
	}
	if picturePath != "" {
		student.ProfilePicture = &picturePath
	}

	if err := s.studentStore.Create(ctx, student); err != nil {
		s.removeFile(picturePath)
		return nil, err
	}

	s.enrollKnownCourses(ctx, student)

	logger.Info().Int64("studentID", student.ID).Str("email", student.Email).Msg("Student registered")
	return student, nil
}

// enrollKnownCourses creates enrollment rows for the course names that match
// the active catalog. Unknown names are kept in the student's selection but
// produce no enrollment. Best effort: failures are logged only.
func (s *StudentService) enrollKnownCourses(ctx context.Context, student *models.Student) {
	if len(student.Courses) == 0 {
		return
	}

	courses, err := s.courseStore.GetByNames(ctx, student.Courses)
	if err != nil {
		logger.Warn().Err(err).Int64("studentID", student.ID).Msg("Failed to resolve course selection")
		return
	}

	for i := range courses {
		enrollment := &models.Enrollment{
			StudentID: student.ID,
			CourseID:  courses[i].ID,
			Status:    models.EnrollmentEnrolled,
			Progress:  0,
		}
		if err := s.enrollmentStore.Create(ctx, enrollment); err != nil && !errors.Is(err, apperrors.ErrAlreadyEnrolled) {
			logger.Warn().Err(err).
				Int64("studentID", student.ID).
				Int64("courseID", courses[i].ID).
				Msg("Failed to create enrollment")
		}
	}
}

// List retrieves a page of students with optional search and sorting
func (s *StudentService) List(ctx context.Context, params dto.StudentListParams) ([]models.Student, dto.PaginationInfo, error) {
	students, totalItems, err := s.studentStore.List(ctx, params)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return students, helpers.NewPaginationInfo(totalItems, params.Page, params.Size), nil
}

// Get retrieves a single student by ID
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentStore.GetByID(ctx, id)
}

// Update applies a partial patch to a student record on behalf of an admin.
// A changed email is re-checked for uniqueness and a new picture is validated
// and stored before the record is touched; the old file is removed only after
// the update succeeded.
func (s *StudentService) Update(ctx context.Context, adminID, id int64, req *dto.UpdateStudentRequest, picture *multipart.FileHeader) (*models.Student, error) {
	existing, err := s.studentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != existing.Email {
		exists, err := s.studentStore.EmailExists(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}

	var newPicturePath *string
	if picture != nil {
		path, err := s.storage.SaveProfilePicture(picture)
		if err != nil {
			return nil, err
		}
		newPicturePath = &path
	}

	if req.Empty() && newPicturePath == nil {
		return nil, apperrors.NewBadRequestError("no fields to update")
	}

	if err := s.studentStore.Update(ctx, id, req, newPicturePath); err != nil {
		if newPicturePath != nil {
			s.removeFile(*newPicturePath)
		}
		return nil, err
	}

	if newPicturePath != nil && existing.ProfilePicture != nil {
		s.removeFile(*existing.ProfilePicture)
	}

	updated, err := s.studentStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	action := models.AuditActionUpdate
	if req.IsActive != nil && !*req.IsActive && existing.IsActive {
		action = models.AuditActionDeactivate
	}
	s.recordAudit(ctx, adminID, action, id, existing, updated)

	logger.Info().Int64("studentID", id).Int64("adminID", adminID).Str("action", action).Msg("Student record updated")
	return updated, nil
}

// Delete permanently removes a student record on behalf of an admin.
// The stored profile picture is removed best effort afterwards.
func (s *StudentService) Delete(ctx context.Context, adminID, id int64) error {
	existing, err := s.studentStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.studentStore.Delete(ctx, id); err != nil {
		return err
	}

	if existing.ProfilePicture != nil {
		s.removeFile(*existing.ProfilePicture)
	}

	s.recordAudit(ctx, adminID, models.AuditActionDelete, id, existing, nil)

	logger.Info().Int64("studentID", id).Int64("adminID", adminID).Msg("Student record deleted")
	return nil
}

// ExportCSV writes the (optionally searched) student set as CSV
func (s *StudentService) ExportCSV(ctx context.Context, w io.Writer, search string) error {
	students, err := s.studentStore.ListAll(ctx, search)
	if err != nil {
		return err
	}
	return export.StudentsCSV(w, students)
}

// ExportPDF writes the (optionally searched) student set as a PDF report
func (s *StudentService) ExportPDF(ctx context.Context, w io.Writer, search string) error {
	students, err := s.studentStore.ListAll(ctx, search)
	if err != nil {
		return err
	}
	return export.StudentsPDF(w, students)
}

// AuditHistory returns the audit trail for a student record, newest first.
// Entries survive the record's deletion, so existence is not checked.
func (s *StudentService) AuditHistory(ctx context.Context, id int64) ([]models.AuditEntry, error) {
	return s.auditStore.ListByRecord(ctx, "students", id)
}

func (s *StudentService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := s.storage.DeleteFile(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to remove stored file")
	}
}

// recordAudit writes an audit entry best effort; audit failures never fail
// the admin operation itself.
func (s *StudentService) recordAudit(ctx context.Context, adminID int64, action string, recordID int64, oldRecord, newRecord *models.Student) {
	entry := &models.AuditEntry{
		AdminID:   adminID,
		Action:    action,
		TableName: "students",
		RecordID:  recordID,
	}
	if oldRecord != nil {
		if b, err := json.Marshal(oldRecord); err == nil {
			entry.OldValue = b
		}
	}
	if newRecord != nil {
		if b, err := json.Marshal(newRecord); err == nil {
			entry.NewValue = b
		}
	}

	if err := s.auditStore.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).
			Str("action", action).
			Int64("recordID", recordID).
			Msg("Failed to write audit entry")
	}
}
