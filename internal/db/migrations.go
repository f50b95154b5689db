package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	gormModels "aerosafety/rbo/internal/models/gorm"

	"gorm.io/gorm"
)

// Migration is one forward-only schema step
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB) error
}

// Migrations is the ordered schema history of the operators database.
// Append new steps; never edit an applied one.
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create_operators",
		Up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&gormModels.Operator{})
		},
	},
	{
		Version: 2,
		Name:    "create_users",
		Up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&gormModels.User{})
		},
	},
	{
		Version: 3,
		Name:    "operators_findings_index",
		Up: func(tx *gorm.DB) error {
			return tx.Exec("CREATE INDEX IF NOT EXISTS idx_operators_findings_count ON operators (findings_count)").Error
		},
	},
}

// SchemaVersion returns the highest applied migration version, 0 for a fresh database
func SchemaVersion(ctx context.Context, db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&gormModels.SchemaMigration{}) {
		return 0, nil
	}

	var version int
	err := db.WithContext(ctx).
		Model(&gormModels.SchemaMigration{}).
		Select("COALESCE(MAX(version), 0)").
		Row().
		Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every pending migration, each in its own transaction,
// and returns the versions it applied.
func Migrate(ctx context.Context, db *gorm.DB, migrations []Migration) ([]int, error) {
	if err := db.WithContext(ctx).AutoMigrate(&gormModels.SchemaMigration{}); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Version == sorted[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", sorted[i].Version)
		}
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return nil, err
	}

	var applied []int
	for _, m := range sorted {
		if m.Version <= current {
			continue
		}

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&gormModels.SchemaMigration{Version: m.Version, Name: m.Name}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}

		applied = append(applied, m.Version)
	}

	return applied, nil
}

// Reset drops every table this service owns and re-runs all migrations
func Reset(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Migrator().DropTable(
		&gormModels.Operator{},
		&gormModels.User{},
		&gormModels.SchemaMigration{},
	)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	_, err = Migrate(ctx, db, Migrations)
	return err
}

// ErrSchemaAhead is returned when the database is newer than this binary
var ErrSchemaAhead = errors.New("database schema is newer than this build")

// CheckSchema fails when the database carries migrations this build does not know
func CheckSchema(ctx context.Context, db *gorm.DB) error {
	version, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	latest := 0
	for _, m := range Migrations {
		if m.Version > latest {
			latest = m.Version
		}
	}

	if version > latest {
		return fmt.Errorf("%w: database at %d, build knows %d", ErrSchemaAhead, version, latest)
	}
	return nil
}
