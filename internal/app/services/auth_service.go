package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/app/models/dto"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/auth"
	"github.com/mertcakir/coursereg/internal/pkg/logger"
)

const resetTokenTTL = time.Hour

// AuthService handles login, token refresh and password reset flows
type AuthService struct {
	studentStore StudentStore
	adminStore   AdminStore
	tokenStore   TokenStore
	resetStore   PasswordResetStore
	jwtService   *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(
	studentStore StudentStore,
	adminStore AdminStore,
	tokenStore TokenStore,
	resetStore PasswordResetStore,
	jwtService *auth.JWTService,
) *AuthService {
	return &AuthService{
		studentStore: studentStore,
		adminStore:   adminStore,
		tokenStore:   tokenStore,
		resetStore:   resetStore,
		jwtService:   jwtService,
	}
}

// LoginStudent authenticates a student by email and password.
// Unknown email and wrong password both return ErrInvalidCredentials; the
// missing-account path still runs a bcrypt compare so response timing is
// comparable for both.
func (s *AuthService) LoginStudent(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	student, err := s.studentStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			auth.CheckDummyPassword(password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(student.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !student.IsActive {
		// Indistinguishable from a bad password, so a disabled account
		// cannot be probed from the login endpoint.
		logger.Info().Int64("studentID", student.ID).Msg("Login attempt on disabled student account")
		return nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, student.ID, student.Email, string(models.RoleStudent))
	if err != nil {
		return nil, err
	}

	if err := s.studentStore.UpdateLastLogin(ctx, student.ID); err != nil {
		logger.Warn().Err(err).Int64("studentID", student.ID).Msg("Failed to update student last login")
	}

	logger.Info().Int64("studentID", student.ID).Msg("Student logged in")
	return tokens, nil
}

// LoginAdmin authenticates an admin by email and password
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	admin, err := s.adminStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			auth.CheckDummyPassword(password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(admin.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !admin.IsActive {
		logger.Info().Int64("adminID", admin.ID).Msg("Login attempt on disabled admin account")
		return nil, apperrors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, admin.ID, admin.Email, string(models.RoleAdmin))
	if err != nil {
		return nil, err
	}

	if err := s.adminStore.UpdateLastLogin(ctx, admin.ID); err != nil {
		logger.Warn().Err(err).Int64("adminID", admin.ID).Msg("Failed to update admin last login")
	}

	logger.Info().Int64("adminID", admin.ID).Msg("Admin logged in")
	return tokens, nil
}

// RefreshTokens exchanges a valid refresh token for a new token pair.
// The presented token is revoked so each refresh token is single-use.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	principalID, principalRole, err := s.tokenStore.GetTokenByValue(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	var email string
	var active bool
	switch principalRole {
	case string(models.RoleAdmin):
		admin, err := s.adminStore.GetByID(ctx, principalID)
		if err != nil {
			return nil, apperrors.ErrTokenInvalid
		}
		email, active = admin.Email, admin.IsActive
	default:
		student, err := s.studentStore.GetByID(ctx, principalID)
		if err != nil {
			return nil, apperrors.ErrTokenInvalid
		}
		email, active = student.Email, student.IsActive
	}
	if !active {
		return nil, apperrors.ErrAccountDisabled
	}

	// Revoking is the serialization point: of two concurrent refreshes with
	// the same token only the one that flips is_revoked gets a new pair.
	if err := s.tokenStore.RevokeToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, principalID, email, principalRole)
}

// ForgotPassword starts the reset flow for a student account.
// It always succeeds from the caller's perspective so account existence
// cannot be probed. The token is logged; there is no mail delivery.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	student, err := s.studentStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			logger.Info().Str("email", email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.New().String()
	if err := s.resetStore.CreateToken(ctx, token, student.ID, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	logger.Info().
		Int64("studentID", student.ID).
		Str("resetToken", token).
		Msg("Password reset token issued")
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
// All of the student's refresh tokens are revoked afterwards.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	studentID, err := s.resetStore.ConsumeToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.studentStore.UpdatePassword(ctx, studentID, hash); err != nil {
		return err
	}

	if err := s.tokenStore.RevokeAllPrincipalTokens(ctx, studentID, string(models.RoleStudent)); err != nil {
		logger.Warn().Err(err).Int64("studentID", studentID).Msg("Failed to revoke refresh tokens after password reset")
	}

	logger.Info().Int64("studentID", studentID).Msg("Password reset completed")
	return nil
}

// Profile returns the authenticated principal's own record.
func (s *AuthService) Profile(ctx context.Context, principalID int64, roleType string) (interface{}, error) {
	if roleType == string(models.RoleAdmin) {
		return s.adminStore.GetByID(ctx, principalID)
	}

	student, err := s.studentStore.GetByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromStudent(student)
	return &resp, nil
}

func (s *AuthService) issueTokens(ctx context.Context, principalID int64, email, roleType string) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(principalID, email, roleType)
	if err != nil {
		return nil, err
	}

	err = s.tokenStore.CreateToken(ctx, refreshToken, principalID, roleType, s.jwtService.GetRefreshTokenExpiry())
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(expiresIn),
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int64(refreshExpiresIn),
	}, nil
}
