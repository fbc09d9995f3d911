package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/dberrors"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// EnrollmentRepository handles enrollment database operations
type EnrollmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new enrollment for a student and course.
// A duplicate (student, course) pair is mapped to ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	sqlQuery, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "course_id", "status", "progress").
		Values(enrollment.StudentID, enrollment.CourseID, enrollment.Status, enrollment.Progress).
		Suffix("RETURNING id, enrolled_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create enrollment SQL")
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	err = r.db.QueryRow(ctx, sqlQuery, args...).
		Scan(&enrollment.ID, &enrollment.EnrolledAt, &enrollment.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "enrollments_student_course_key") {
			return apperrors.ErrAlreadyEnrolled
		}
		logger.Error().Err(err).
			Int64("studentID", enrollment.StudentID).
			Int64("courseID", enrollment.CourseID).
			Msg("Error executing create enrollment query")
		return fmt.Errorf("error inserting enrollment: %w", err)
	}

	logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Int64("studentID", enrollment.StudentID).
		Int64("courseID", enrollment.CourseID).
		Msg("Enrollment created")
	return nil
}

// GetByStudent retrieves all enrollments of a student joined with course names
func (r *EnrollmentRepository) GetByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	sqlQuery, args, err := r.sb.Select(
		"e.id", "e.student_id", "e.course_id", "e.status", "e.progress",
		"e.enrolled_at", "e.updated_at", "c.name AS course_name",
	).
		From("enrollments e").
		Join("courses c ON e.course_id = c.id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("e.enrolled_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing get enrollments query")
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.CourseID, &e.Status, &e.Progress,
			&e.EnrolledAt, &e.UpdatedAt, &e.CourseName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}
	return enrollments, nil
}

// GetByID retrieves a single enrollment joined with its course name
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sqlQuery, args, err := r.sb.Select(
		"e.id", "e.student_id", "e.course_id", "e.status", "e.progress",
		"e.enrolled_at", "e.updated_at", "c.name AS course_name",
	).
		From("enrollments e").
		Join("courses c ON e.course_id = c.id").
		Where(squirrel.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	var e models.Enrollment
	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(
		&e.ID, &e.StudentID, &e.CourseID, &e.Status, &e.Progress,
		&e.EnrolledAt, &e.UpdatedAt, &e.CourseName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error querying enrollment ID=%d: %w", id, err)
	}
	return &e, nil
}

// Update changes the status and/or progress of an enrollment
func (r *EnrollmentRepository) Update(ctx context.Context, id int64, status *models.EnrollmentStatus, progress *int) error {
	setMap := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if status != nil {
		setMap["status"] = *status
	}
	if progress != nil {
		setMap["progress"] = *progress
	}

	sqlQuery, args, err := r.sb.Update("enrollments").
		SetMap(setMap).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update enrollment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.ErrInvalidProgress
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error executing update enrollment query")
		return fmt.Errorf("error updating enrollment ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("enrollmentID", id).Msg("Attempted to update non-existent enrollment")
		return apperrors.ErrEnrollmentNotFound
	}

	logger.Info().Int64("enrollmentID", id).Msg("Enrollment updated")
	return nil
}
