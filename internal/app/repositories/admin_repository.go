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
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// AdminRepository handles admin account database operations
type AdminRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByEmail retrieves an admin by email address
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	sqlQuery, args, err := r.sb.Select(
		"id", "name", "email", "password", "role", "is_active", "last_login_at", "created_at",
	).
		From("admins").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin by email query: %w", err)
	}

	var admin models.Admin
	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(
		&admin.ID, &admin.Name, &admin.Email, &admin.Password,
		&admin.Role, &admin.IsActive, &admin.LastLoginAt, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Admin account not found")
		}
		logger.Error().Err(err).Str("email", email).Msg("Error scanning admin row by email")
		return nil, fmt.Errorf("error querying admin by email: %w", err)
	}
	return &admin, nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	sqlQuery, args, err := r.sb.Select(
		"id", "name", "email", "password", "role", "is_active", "last_login_at", "created_at",
	).
		From("admins").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}

	var admin models.Admin
	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(
		&admin.ID, &admin.Name, &admin.Email, &admin.Password,
		&admin.Role, &admin.IsActive, &admin.LastLoginAt, &admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Admin account not found")
		}
		logger.Error().Err(err).Int64("adminID", id).Msg("Error scanning admin row")
		return nil, fmt.Errorf("error querying admin ID=%d: %w", id, err)
	}
	return &admin, nil
}

// UpdateLastLogin stamps the admin's last successful login time
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	sqlQuery, args, err := r.sb.Update("admins").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update admin last login query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlQuery, args...); err != nil {
		logger.Error().Err(err).Int64("adminID", id).Msg("Error updating admin last login")
		return fmt.Errorf("error updating last login for admin ID=%d: %w", id, err)
	}
	return nil
}
