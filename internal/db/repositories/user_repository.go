package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// UserRepository is the sqlx variant used by the admin seeding tool,
// which talks to Postgres directly without the GORM stack.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db}
}

// UserRow mirrors the users table for sqlx scans
type UserRow struct {
	ID       uint64 `db:"id"`
	Username string `db:"username"`
	IsActive bool   `db:"is_active"`
}

// UpsertAdmin inserts the user or, when it exists, replaces its password hash.
// Returns the row and whether it was newly created.
func (r *UserRepository) UpsertAdmin(ctx context.Context, username, passwordHash string) (*UserRow, bool, error) {
	query := `
		INSERT INTO users (
			username,
			password_hash,
			is_active,
			created_at,
			updated_at
		)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING id, username, is_active, (xmax = 0) AS inserted;
	`

	var row struct {
		UserRow
		Inserted bool `db:"inserted"`
	}
	if err := r.db.QueryRowxContext(ctx, query, username, passwordHash).StructScan(&row); err != nil {
		return nil, false, err
	}

	return &row.UserRow, row.Inserted, nil
}

// CountUsers returns the number of rows in users
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}
