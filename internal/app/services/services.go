// Package services contains the business logic layer. Repositories are
// consumed through narrow interfaces so the services can be tested with
// in-memory fakes.
package services

import (
	"context"
	"time"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/app/repositories"
	"github.com/mertcakir/coursereg/internal/pkg/auth"
	"github.com/mertcakir/coursereg/internal/pkg/filestorage"
)

// StudentStore defines the student persistence operations the services need
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	List(ctx context.Context, params dto.StudentListParams) ([]models.Student, int64, error)
	ListAll(ctx context.Context, search string) ([]models.Student, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest, profilePicture *string) error
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

// AdminStore defines the admin persistence operations the services need
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

// CourseStore defines the course catalog persistence operations
type CourseStore interface {
	GetActive(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetByNames(ctx context.Context, names []string) ([]models.Course, error)
}

// EnrollmentStore defines the enrollment persistence operations
type EnrollmentStore interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	Update(ctx context.Context, id int64, status *models.EnrollmentStatus, progress *int) error
}

// TokenStore defines the refresh token persistence operations
type TokenStore interface {
	CreateToken(ctx context.Context, token string, principalID int64, principalRole string, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, string, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllPrincipalTokens(ctx context.Context, principalID int64, principalRole string) error
}

// PasswordResetStore defines the reset token persistence operations
type PasswordResetStore interface {
	CreateToken(ctx context.Context, token string, studentID int64, expiryDate time.Time) error
	ConsumeToken(ctx context.Context, token string) (int64, error)
}

// AuditStore defines the audit log persistence operations
type AuditStore interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	ListByRecord(ctx context.Context, tableName string, recordID int64) ([]models.AuditEntry, error)
}

// Services holds all the service instances
type Services struct {
	AuthService       *AuthService
	StudentService    *StudentService
	CourseService     *CourseService
	EnrollmentService *EnrollmentService
}

// NewServices initializes all services from the repository container
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, storage filestorage.FileStorage) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.StudentRepository,
			repos.AdminRepository,
			repos.TokenRepository,
			repos.PasswordResetRepository,
			jwtService,
		),
		StudentService: NewStudentService(
			repos.StudentRepository,
			repos.CourseRepository,
			repos.EnrollmentRepository,
			repos.AuditRepository,
			storage,
		),
		CourseService: NewCourseService(repos.CourseRepository),
		EnrollmentService: NewEnrollmentService(
			repos.EnrollmentRepository,
			repos.StudentRepository,
		),
	}
}
