package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Newsroom/internal/auth"
	dom "Newsroom/internal/domain"
	"Newsroom/internal/repo"

	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrPasswordMismatch: new password and its confirmation differ.
	ErrPasswordMismatch = errors.New("new passwords do not match")
	// ErrIncorrectPassword: the supplied current password does not verify.
	ErrIncorrectPassword = errors.New("current password is incorrect")
)

// AuthService verifies credentials and changes passwords.
type AuthService struct {
	repo repo.UserRepo
}

// NewAuthService returns a new AuthService.
func NewAuthService(repo repo.UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

// Authenticate checks username and password; returns the user id if valid.
// An unknown username still pays for a full hash verification so its rejection
// time matches a known username with a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		auth.VerifyDummy(password)
		return 0, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			auth.VerifyDummy(password)
			return 0, ErrInvalidCredentials
		}
		return 0, fmt.Errorf("lookup user: %w", err)
	}
	ok, err := auth.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return 0, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return 0, ErrInvalidCredentials
	}
	return u.ID, nil
}

// GetUser returns the user for a resolved session.
func (s *AuthService) GetUser(ctx context.Context, id int64) (dom.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangePassword replaces the user's password after checking the current one.
// Other live sessions for the user stay valid; only the hash changes.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, newPassword, newPasswordCheck string) error {
	if newPassword != newPasswordCheck {
		return ErrPasswordMismatch
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	ok, err := auth.VerifyPassword(current, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrIncorrectPassword
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
