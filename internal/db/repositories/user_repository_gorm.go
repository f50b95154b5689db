package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "aerosafety/rbo/internal/models/gorm"

	"gorm.io/gorm"
)

type UserRepositoryGORM struct {
	db *gorm.DB
}

// NewUserRepositoryGORM creates a new GORM-based user repository
func NewUserRepositoryGORM(db *gorm.DB) *UserRepositoryGORM {
	return &UserRepositoryGORM{db: db}
}

// GetByUsername retrieves an active user by username
func (r *UserRepositoryGORM) GetByUsername(ctx context.Context, username string) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).
		Where("username = ? AND is_active = ?", username, true).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// Upsert creates the user or replaces its password hash and reactivates it
func (r *UserRepositoryGORM) Upsert(ctx context.Context, username, passwordHash string) (*gormModels.User, error) {
	var user gormModels.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = gormModels.User{Username: username, PasswordHash: passwordHash, IsActive: true}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		user.PasswordHash = passwordHash
		user.IsActive = true
		return tx.Save(&user).Error
	})

	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return &user, nil
}
