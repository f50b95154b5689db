package services

import (
	"context"
	"errors"
	"testing"

	"aerosafety/rbo/internal/db/repositories"
	gormModels "aerosafety/rbo/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUsers struct {
	users map[string]*gormModels.User
	err   error
}

func (s *stubUsers) GetByUsername(_ context.Context, username string) (*gormModels.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Authenticate(t *testing.T) {
	users := &stubUsers{users: map[string]*gormModels.User{
		"inspector": {Username: "inspector", PasswordHash: mustHash(t, "hangar-door-42"), IsActive: true},
	}}
	admin := BootstrapAdmin{Username: "admin", PasswordHash: mustHash(t, "correct horse")}
	svc := NewAuthService(users, admin, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     string
		wantErr  error
	}{
		{"bootstrap admin", "admin", "correct horse", "admin", nil},
		{"bootstrap admin wrong password", "admin", "wrong", "", ErrInvalidCredentials},
		{"stored user", " inspector ", "hangar-door-42", "inspector", nil},
		{"stored user wrong password", "inspector", "hangar-door-43", "", ErrInvalidCredentials},
		{"unknown user", "nobody", "whatever", "", ErrInvalidCredentials},
		{"empty password", "inspector", "", "", ErrInvalidCredentials},
		{"empty username", "", "x", "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthService_StoreFailureIsNotInvalidCredentials(t *testing.T) {
	svc := NewAuthService(&stubUsers{err: errors.New("connection refused")}, BootstrapAdmin{}, nil)

	_, err := svc.Authenticate(context.Background(), "inspector", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_NoUserStore(t *testing.T) {
	svc := NewAuthService(nil, BootstrapAdmin{}, nil)

	_, err := svc.Authenticate(context.Background(), "admin", "admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.True(t, repositories.IsValidationError(err))

	hash, err := HashPassword("long-enough-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("long-enough-password")))
}
