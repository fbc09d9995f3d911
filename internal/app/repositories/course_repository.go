package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// CourseRepository handles course catalog database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetActive retrieves all active catalog courses ordered by name
func (r *CourseRepository) GetActive(ctx context.Context) ([]models.Course, error) {
	sqlQuery, args, err := r.sb.Select(
		"id", "name", "description", "duration", "price", "is_active", "created_at",
	).
		From("courses").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get active courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get active courses query")
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		err := rows.Scan(
			&course.ID, &course.Name, &course.Description, &course.Duration,
			&course.Price, &course.IsActive, &course.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sqlQuery, args, err := r.sb.Select(
		"id", "name", "description", "duration", "price", "is_active", "created_at",
	).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	var course models.Course
	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(
		&course.ID, &course.Name, &course.Description, &course.Duration,
		&course.Price, &course.IsActive, &course.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error querying course ID=%d: %w", id, err)
	}
	return &course, nil
}

// GetByNames retrieves active courses matching the given names.
// Used to validate a registration's course selection against the catalog.
func (r *CourseRepository) GetByNames(ctx context.Context, names []string) ([]models.Course, error) {
	if len(names) == 0 {
		return []models.Course{}, nil
	}

	sqlQuery, args, err := r.sb.Select(
		"id", "name", "description", "duration", "price", "is_active", "created_at",
	).
		From("courses").
		Where(squirrel.Eq{"name": names, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get courses by names query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get courses by names query")
		return nil, fmt.Errorf("failed to query courses by names: %w", err)
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		err := rows.Scan(
			&course.ID, &course.Name, &course.Description, &course.Duration,
			&course.Price, &course.IsActive, &course.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, nil
}
