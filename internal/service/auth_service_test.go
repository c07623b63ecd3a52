package service

import (
	"context"
	"errors"
	"testing"

	"Newsroom/internal/auth"
	dom "Newsroom/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	user dom.User
	err  error
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	if f.err != nil {
		return dom.User{}, f.err
	}
	if username != f.user.Username {
		return dom.User{}, pgx.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	if f.err != nil {
		return dom.User{}, f.err
	}
	if id != f.user.ID {
		return dom.User{}, pgx.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	if f.err != nil {
		return f.err
	}
	f.user.PasswordHash = passwordHash
	return nil
}

func seededRepo(t *testing.T, password string) *fakeUserRepo {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &fakeUserRepo{user: dom.User{ID: 7, Username: "admin", PasswordHash: hash}}
}

func TestAuthenticate_Success(t *testing.T) {
	svc := NewAuthService(seededRepo(t, "hunter2"))

	userID, err := svc.Authenticate(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := NewAuthService(seededRepo(t, "hunter2"))

	_, err := svc.Authenticate(context.Background(), "admin", "hunter3")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUsername(t *testing.T) {
	svc := NewAuthService(seededRepo(t, "hunter2"))

	_, err := svc.Authenticate(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_EmptyCredentials(t *testing.T) {
	svc := NewAuthService(seededRepo(t, "hunter2"))

	_, err := svc.Authenticate(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_StoreFailureIsNotInvalidCredentials(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{err: errors.New("connection refused")})

	_, err := svc.Authenticate(context.Background(), "admin", "hunter2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword_MismatchLeavesHashUnchanged(t *testing.T) {
	repo := seededRepo(t, "hunter2")
	before := repo.user.PasswordHash
	svc := NewAuthService(repo)

	err := svc.ChangePassword(context.Background(), 7, "hunter2", "new-one", "new-two")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, before, repo.user.PasswordHash)
}

func TestChangePassword_WrongCurrentLeavesHashUnchanged(t *testing.T) {
	repo := seededRepo(t, "hunter2")
	before := repo.user.PasswordHash
	svc := NewAuthService(repo)

	err := svc.ChangePassword(context.Background(), 7, "not-hunter2", "new-pass", "new-pass")
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	assert.Equal(t, before, repo.user.PasswordHash)
}

func TestChangePassword_Success(t *testing.T) {
	repo := seededRepo(t, "hunter2")
	svc := NewAuthService(repo)

	err := svc.ChangePassword(context.Background(), 7, "hunter2", "new-pass", "new-pass")
	require.NoError(t, err)

	// Old password no longer works, new one does.
	_, err = svc.Authenticate(context.Background(), "admin", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	userID, err := svc.Authenticate(context.Background(), "admin", "new-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}
