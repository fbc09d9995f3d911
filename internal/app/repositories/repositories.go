package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository       *StudentRepository
	AdminRepository         *AdminRepository
	CourseRepository        *CourseRepository
	EnrollmentRepository    *EnrollmentRepository
	TokenRepository         *TokenRepository
	PasswordResetRepository *PasswordResetRepository
	AuditRepository         *AuditRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		StudentRepository:       NewStudentRepository(db),
		AdminRepository:         NewAdminRepository(db),
		CourseRepository:        NewCourseRepository(db),
		EnrollmentRepository:    NewEnrollmentRepository(db),
		TokenRepository:         NewTokenRepository(db),
		PasswordResetRepository: NewPasswordResetRepository(db),
		AuditRepository:         NewAuditRepository(db),
	}
}
