package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"aerosafety/rbo/internal/db/repositories"
	gormModels "aerosafety/rbo/internal/models/gorm"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserLookup finds active dashboard users
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*gormModels.User, error)
}

// BootstrapAdmin is an optional account taken from configuration
type BootstrapAdmin struct {
	Username     string
	PasswordHash string
}

// AuthService checks dashboard credentials against bcrypt hashes
type AuthService struct {
	users  UserLookup
	admin  BootstrapAdmin
	logger *zap.Logger
}

// NewAuthService creates the credential checker. users may be nil when
// only the bootstrap admin is configured.
func NewAuthService(users UserLookup, admin BootstrapAdmin, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, admin: admin, logger: logger}
}

// Authenticate returns the canonical username on success
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	if s.admin.Username != "" &&
		subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1 {
		if bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) == nil {
			return s.admin.Username, nil
		}
		return "", ErrInvalidCredentials
	}

	if s.users == nil {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		s.logger.Error("user lookup failed", zap.String("username", username), zap.Error(err))
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return user.Username, nil
}

// HashPassword produces a bcrypt hash suitable for the users table
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", repositories.NewValidationError("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
