package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// PasswordResetRepository handles password reset token database operations
type PasswordResetRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a new password reset token for a student
func (r *PasswordResetRepository) CreateToken(ctx context.Context, token string, studentID int64, expiryDate time.Time) error {
	sqlQuery, args, err := r.sb.Insert("password_resets").
		Columns("token", "student_id", "expiry_date", "used", "created_at").
		Values(token, studentID, expiryDate, false, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlQuery, args...); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error creating password reset token")
		return fmt.Errorf("error creating reset token: %w", err)
	}
	return nil
}

// ConsumeToken marks a reset token used and returns the student it belongs
// to. The update is a single conditional statement, so of two concurrent
// consumers of the same token exactly one succeeds; the loser gets a typed
// error telling it why the token was not consumable.
func (r *PasswordResetRepository) ConsumeToken(ctx context.Context, token string) (int64, error) {
	sqlQuery, args, err := r.sb.Update("password_resets").
		Set("used", true).
		Where(squirrel.Eq{"token": token, "used": false}).
		Where(squirrel.Gt{"expiry_date": time.Now()}).
		Suffix("RETURNING student_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build consume reset token query: %w", err)
	}

	var studentID int64
	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(&studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.classifyUnconsumable(ctx, token)
		}
		logger.Error().Err(err).Msg("Error consuming reset token")
		return 0, fmt.Errorf("error consuming reset token: %w", err)
	}
	return studentID, nil
}

// classifyUnconsumable explains why the conditional consume matched no row.
func (r *PasswordResetRepository) classifyUnconsumable(ctx context.Context, token string) error {
	sqlQuery, args, err := r.sb.Select("used").
		From("password_resets").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build get reset token query: %w", err)
	}

	var used bool
	if err := r.db.QueryRow(ctx, sqlQuery, args...).Scan(&used); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrInvalidResetToken
		}
		logger.Error().Err(err).Msg("Error scanning reset token row")
		return fmt.Errorf("error retrieving reset token: %w", err)
	}

	if used {
		return apperrors.ErrResetTokenUsed
	}
	return apperrors.ErrInvalidResetToken // exists and unused, so it expired
}

// CleanupExpiredTokens removes expired and used reset tokens
func (r *PasswordResetRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	sqlQuery, args, err := r.sb.Delete("password_resets").
		Where(squirrel.Or{
			squirrel.Lt{"expiry_date": time.Now()},
			squirrel.Eq{"used": true},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup reset tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up reset tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
