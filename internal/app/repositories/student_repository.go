package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/dberrors"
	"github.com/mertcakir/coursereg/internal/pkg/helpers"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

var studentColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "password",
	"age", "education", "experience", "motivation", "courses",
	"profile_picture", "is_active", "last_login_at", "created_at", "updated_at",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanStudent(row pgx.Row, s *models.Student) error {
	return row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Password,
		&s.Age, &s.Education, &s.Experience, &s.Motivation, &s.Courses,
		&s.ProfilePicture, &s.IsActive, &s.LastLoginAt, &s.CreatedAt, &s.UpdatedAt,
	)
}

// Create inserts a new student and fills in the generated ID.
// A unique violation on the email column is mapped to ErrEmailAlreadyExists.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sqlQuery, args, err := r.sb.Insert("students").
		Columns(
			"first_name", "last_name", "email", "phone", "password",
			"age", "education", "experience", "motivation", "courses", "profile_picture",
		).
		Values(
			student.FirstName, student.LastName, student.Email, student.Phone, student.Password,
			student.Age, student.Education, student.Experience, student.Motivation,
			student.Courses, student.ProfilePicture,
		).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sqlQuery, args...).
		Scan(&student.ID, &student.IsActive, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create student query")
		return fmt.Errorf("error inserting student: %w", err)
	}

	logger.Info().Int64("studentID", student.ID).Str("email", student.Email).Msg("Student created")
	return nil
}

// EmailExists checks if a student with the given email already exists
func (r *StudentRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sqlQuery, args, err := r.sb.Select("1").
		From("students").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		logger.Error().Err(err).Str("email", email).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email existence: %w", err)
	}
	return true, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sqlQuery, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var student models.Student
	if err := scanStudent(r.db.QueryRow(ctx, sqlQuery, args...), &student); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error querying student ID=%d: %w", id, err)
	}
	return &student, nil
}

// GetByEmail retrieves a student by email address
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	sqlQuery, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student by email query: %w", err)
	}

	var student models.Student
	if err := scanStudent(r.db.QueryRow(ctx, sqlQuery, args...), &student); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning student row by email")
		return nil, fmt.Errorf("error querying student by email: %w", err)
	}
	return &student, nil
}

// List retrieves students with pagination, optional search and sorting.
// Search matches first name, last name and email case-insensitively.
func (r *StudentRepository) List(ctx context.Context, params dto.StudentListParams) ([]models.Student, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(params.Page, params.Size)

	baseSelect := r.sb.Select(studentColumns...).From("students")
	countSelect := r.sb.Select("COUNT(*)").From("students")

	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + search + "%"
		cond := squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"email": pattern},
		}
		baseSelect = baseSelect.Where(cond)
		countSelect = countSelect.Where(cond)
	}

	countSql, countArgs, err := countSelect.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count students query")
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	if totalItems == 0 {
		return []models.Student{}, 0, nil
	}

	sortColumn := mapStudentSortField(params.SortBy)
	sortOrder := "ASC"
	if strings.EqualFold(params.SortOrder, "desc") {
		sortOrder = "DESC"
	}

	baseSelect = baseSelect.OrderBy(fmt.Sprintf("%s %s", sortColumn, sortOrder)).
		Limit(uint64(limit)).
		Offset(offset)

	querySql, queryArgs, err := baseSelect.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := make([]models.Student, 0, limit)
	for rows.Next() {
		var student models.Student
		if err := scanStudent(rows, &student); err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, 0, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student rows: %w", err)
	}

	logger.Info().
		Int("page", params.Page).
		Int("pageSize", params.Size).
		Int64("totalItems", totalItems).
		Int("returnedItems", len(students)).
		Msg("Fetched students")
	return students, totalItems, nil
}

// ListAll retrieves every student ordered by creation time, for exports.
// An optional search term narrows the set the same way List does.
func (r *StudentRepository) ListAll(ctx context.Context, search string) ([]models.Student, error) {
	sel := r.sb.Select(studentColumns...).
		From("students").
		OrderBy("created_at ASC")

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		sel = sel.Where(squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	sqlQuery, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list all students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list all students query")
		return nil, fmt.Errorf("failed to query all students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var student models.Student
		if err := scanStudent(rows, &student); err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// Update applies a partial patch to a student record.
// Only non-nil fields of the request are written.
func (r *StudentRepository) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest, profilePicture *string) error {
	setMap := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if req.FirstName != nil {
		setMap["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		setMap["last_name"] = *req.LastName
	}
	if req.Email != nil {
		setMap["email"] = *req.Email
	}
	if req.Phone != nil {
		setMap["phone"] = *req.Phone
	}
	if req.Age != nil {
		setMap["age"] = *req.Age
	}
	if req.Education != nil {
		setMap["education"] = *req.Education
	}
	if req.Experience != nil {
		setMap["experience"] = *req.Experience
	}
	if req.Motivation != nil {
		setMap["motivation"] = *req.Motivation
	}
	if req.Courses != nil {
		setMap["courses"] = req.Courses
	}
	if req.IsActive != nil {
		setMap["is_active"] = *req.IsActive
	}
	if profilePicture != nil {
		setMap["profile_picture"] = *profilePicture
	}

	sqlQuery, args, err := r.sb.Update("students").
		SetMap(setMap).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error building update student SQL")
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing update student query")
		return fmt.Errorf("error updating student ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("studentID", id).Msg("Attempted to update non-existent student")
		return apperrors.ErrStudentNotFound
	}

	logger.Info().Int64("studentID", id).Msg("Student updated")
	return nil
}

// Delete permanently removes a student record.
// Enrollments are removed by the schema's ON DELETE CASCADE.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sqlQuery, args, err := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("studentID", id).Msg("Attempted to delete non-existent student")
		return apperrors.ErrStudentNotFound
	}

	logger.Info().Int64("studentID", id).Msg("Student deleted")
	return nil
}

// UpdatePassword replaces a student's password hash
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	sqlQuery, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"password":   passwordHash,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating student password")
		return fmt.Errorf("error updating password for student ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// UpdateLastLogin stamps the student's last successful login time
func (r *StudentRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sqlQuery, args, err := r.sb.Update("students").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlQuery, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating student last login")
		return fmt.Errorf("error updating last login for student ID=%d: %w", id, err)
	}
	return nil
}

// mapStudentSortField maps API sort field names to database column names.
// Prevents SQL injection by using a predefined map.
func mapStudentSortField(field string) string {
	switch field {
	case "firstName", "first_name":
		return "first_name"
	case "lastName", "last_name":
		return "last_name"
	case "email":
		return "email"
	case "age":
		return "age"
	case "createdAt", "created_at":
		return "created_at"
	default:
		return "created_at"
	}
}
