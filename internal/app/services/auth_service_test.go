package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/pkg/apperrors"
	"github.com/mertcakir/coursereg/internal/pkg/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "coursereg-test",
	})
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeStudentStore, *fakeAdminStore, *fakeTokenStore, *fakeResetStore) {
	t.Helper()

	students := newFakeStudentStore()
	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	students.students[1] = &models.Student{
		ID: 1, FirstName: "Ayse", LastName: "Yilmaz",
		Email: "ayse@example.com", Password: hash, IsActive: true,
	}
	students.nextID = 2

	admins := &fakeAdminStore{admins: map[int64]*models.Admin{
		2: {ID: 2, Name: "Admin", Email: "admin@example.com", Password: hash, IsActive: true},
	}}

	tokens := newFakeTokenStore()
	resets := newFakeResetStore()
	svc := NewAuthService(students, admins, tokens, resets, newTestJWTService())
	return svc, students, admins, tokens, resets
}

func TestLoginStudent(t *testing.T) {
	svc, _, _, tokens, _ := newAuthFixture(t)

	resp, err := svc.LoginStudent(context.Background(), "ayse@example.com", "correct-password")
	if err != nil {
		t.Fatalf("LoginStudent: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected both tokens in the response")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", resp.TokenType)
	}
	if _, ok := tokens.tokens[resp.RefreshToken]; !ok {
		t.Error("refresh token should be persisted")
	}
}

func TestLoginStudentWrongPassword(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.LoginStudent(context.Background(), "ayse@example.com", "wrong")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginStudentUnknownEmailSameError(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, unknownErr := svc.LoginStudent(context.Background(), "nobody@example.com", "whatever")
	_, wrongErr := svc.LoginStudent(context.Background(), "ayse@example.com", "wrong")
	if !errors.Is(unknownErr, apperrors.ErrInvalidCredentials) || !errors.Is(wrongErr, apperrors.ErrInvalidCredentials) {
		t.Fatalf("both failure paths must return the same error; got %v and %v", unknownErr, wrongErr)
	}
}

func TestLoginDisabledStudent(t *testing.T) {
	svc, students, _, _, _ := newAuthFixture(t)
	students.students[1].IsActive = false

	// A disabled account looks exactly like a bad password at the login
	// endpoint so account state cannot be enumerated.
	_, err := svc.LoginStudent(context.Background(), "ayse@example.com", "correct-password")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshDisabledStudent(t *testing.T) {
	svc, students, _, _, _ := newAuthFixture(t)

	first, err := svc.LoginStudent(context.Background(), "ayse@example.com", "correct-password")
	if err != nil {
		t.Fatalf("LoginStudent: %v", err)
	}
	students.students[1].IsActive = false

	_, err = svc.RefreshTokens(context.Background(), first.RefreshToken)
	if !errors.Is(err, apperrors.ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestLoginAdmin(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	resp, err := svc.LoginAdmin(context.Background(), "admin@example.com", "correct-password")
	if err != nil {
		t.Fatalf("LoginAdmin: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected access token")
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	first, err := svc.LoginStudent(context.Background(), "ayse@example.com", "correct-password")
	if err != nil {
		t.Fatalf("LoginStudent: %v", err)
	}

	second, err := svc.RefreshTokens(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("refresh token should rotate")
	}

	// The first token is now revoked and cannot be replayed.
	if _, err := svc.RefreshTokens(context.Background(), first.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked on replay, got %v", err)
	}
}

func TestRefreshConcurrentLoserGetsNoTokens(t *testing.T) {
	svc, _, _, tokens, _ := newAuthFixture(t)

	first, err := svc.LoginStudent(context.Background(), "ayse@example.com", "correct-password")
	if err != nil {
		t.Fatalf("LoginStudent: %v", err)
	}

	// Another refresh with the same token wins the revocation between our
	// read of the token and our attempt to revoke it.
	tokens.afterGet = func() {
		tokens.afterGet = nil
		tok := tokens.tokens[first.RefreshToken]
		tok.revoked = true
		tokens.tokens[first.RefreshToken] = tok
	}

	if _, err := svc.RefreshTokens(context.Background(), first.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked for the losing refresh, got %v", err)
	}
	if len(tokens.tokens) != 1 {
		t.Errorf("losing refresh must not issue a new token pair, have %d tokens", len(tokens.tokens))
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture(t)

	_, err := svc.RefreshTokens(context.Background(), "no-such-token")
	if !errors.Is(err, apperrors.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, students, _, _, resets := newAuthFixture(t)

	if err := svc.ForgotPassword(context.Background(), "ayse@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(resets.tokens) != 1 {
		t.Fatalf("expected 1 reset token, got %d", len(resets.tokens))
	}
	var token string
	for k := range resets.tokens {
		token = k
	}

	if err := svc.ResetPassword(context.Background(), token, "new-password-123"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if !auth.CheckPassword(students.students[1].Password, "new-password-123") {
		t.Error("password was not updated")
	}

	// Single use.
	if err := svc.ResetPassword(context.Background(), token, "another"); !errors.Is(err, apperrors.ErrResetTokenUsed) {
		t.Errorf("expected ErrResetTokenUsed, got %v", err)
	}
}

func TestForgotPasswordUnknownEmailSucceeds(t *testing.T) {
	svc, _, _, _, resets := newAuthFixture(t)

	if err := svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("ForgotPassword must not reveal account existence, got %v", err)
	}
	if len(resets.tokens) != 0 {
		t.Error("no token should be issued for unknown accounts")
	}
}
