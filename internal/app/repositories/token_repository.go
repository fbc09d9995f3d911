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
	"github.com/mertcakir/coursereg/internal/pkg/dberrors"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

// TokenRepository handles refresh token database operations.
// Tokens are opaque values stored alongside the principal they were
// issued to and the role the principal held at issue time.
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateToken stores a new refresh token for a principal
func (r *TokenRepository) CreateToken(ctx context.Context, token string, principalID int64, principalRole string, expiryDate time.Time) error {
	sqlQuery, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "principal_id", "principal_role", "expiry_date", "is_revoked", "created_at").
		Values(token, principalID, principalRole, expiryDate, false, time.Now()).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create token SQL")
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	_, err = r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "refresh_tokens_token_key") {
			logger.Warn().Msg("Attempted to create duplicate refresh token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("principalID", principalID).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// GetTokenByValue retrieves an active token's principal and role.
// Revoked and expired tokens return typed errors.
func (r *TokenRepository) GetTokenByValue(ctx context.Context, token string) (int64, string, error) {
	var principalID int64
	var principalRole string
	var expiryDate time.Time
	var isRevoked bool

	sqlQuery, args, err := r.sb.Select("principal_id", "principal_role", "expiry_date", "is_revoked").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, "", fmt.Errorf("failed to build get token query: %w", err)
	}

	err = r.db.QueryRow(ctx, sqlQuery, args...).Scan(&principalID, &principalRole, &expiryDate, &isRevoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning token row")
		return 0, "", fmt.Errorf("error retrieving token: %w", err)
	}

	if isRevoked {
		return 0, "", apperrors.ErrTokenRevoked
	}
	if expiryDate.Before(time.Now()) {
		return 0, "", apperrors.ErrTokenExpired
	}

	return principalID, principalRole, nil
}

// RevokeToken revokes a single active token. The update is conditional on
// the token not being revoked yet, so of two concurrent revocations exactly
// one succeeds; a token that is missing or already revoked returns
// ErrTokenRevoked.
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	sqlQuery, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"token": token, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing revoke token query")
		return fmt.Errorf("error revoking token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenRevoked
	}
	return nil
}

// RevokeAllPrincipalTokens revokes every active token of a principal
func (r *TokenRepository) RevokeAllPrincipalTokens(ctx context.Context, principalID int64, principalRole string) error {
	sqlQuery, args, err := r.sb.Update("refresh_tokens").
		Set("is_revoked", true).
		Where(squirrel.Eq{"principal_id": principalID, "principal_role": principalRole, "is_revoked": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke principal tokens query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sqlQuery, args...); err != nil {
		// It is fine if the principal had no active tokens.
		logger.Error().Err(err).Int64("principalID", principalID).Msg("Error revoking principal tokens")
		return fmt.Errorf("error revoking principal tokens: %w", err)
	}
	return nil
}

// CleanupExpiredTokens removes expired tokens and old revoked tokens
func (r *TokenRepository) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	thirtyDaysAgo := time.Now().Add(-30 * 24 * time.Hour)
	now := time.Now()

	sqlQuery, args, err := r.sb.Delete("refresh_tokens").
		Where(squirrel.Or{
			squirrel.Lt{"expiry_date": now},
			squirrel.And{
				squirrel.Eq{"is_revoked": true},
				squirrel.Lt{"created_at": thirtyDaysAgo},
			},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlQuery, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup tokens query")
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}

	deletedCount := cmdTag.RowsAffected()
	logger.Info().Int64("deletedCount", deletedCount).Msg("Cleaned up expired refresh tokens")
	return deletedCount, nil
}
