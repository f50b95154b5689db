package repositories

import (
	"context"
	"errors"
	"fmt"

	gormModels "aerosafety/rbo/internal/models/gorm"

	"gorm.io/gorm"
)

// OperatorRepositoryGORM stores operators in Postgres or SQLite through GORM
type OperatorRepositoryGORM struct {
	db *gorm.DB
}

var _ OperatorRepository = (*OperatorRepositoryGORM)(nil)

// NewOperatorRepositoryGORM creates a new GORM-based operator repository
func NewOperatorRepositoryGORM(db *gorm.DB) *OperatorRepositoryGORM {
	return &OperatorRepositoryGORM{db: db}
}

// Create inserts the operator; the database assigns the id
func (r *OperatorRepositoryGORM) Create(ctx context.Context, op *gormModels.Operator) (*gormModels.Operator, error) {
	record := *op
	record.ID = 0

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}

	return &record, nil
}

// List returns every operator in the requested order
func (r *OperatorRepositoryGORM) List(ctx context.Context, order OrderBy) ([]gormModels.Operator, error) {
	ops := make([]gormModels.Operator, 0)

	q := r.db.WithContext(ctx)
	switch order {
	case OrderIDDesc:
		q = q.Order("id DESC")
	default:
		q = q.Order("evaluation_date DESC").Order("id DESC")
	}

	if err := q.Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	return ops, nil
}

// Get retrieves an operator by id
func (r *OperatorRepositoryGORM) Get(ctx context.Context, id uint64) (*gormModels.Operator, error) {
	var op gormModels.Operator

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&op).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to fetch operator: %w", err)
	}

	return &op, nil
}

// Update replaces every mutable field of an operator in a single transaction
func (r *OperatorRepositoryGORM) Update(ctx context.Context, id uint64, op *gormModels.Operator) (*gormModels.Operator, error) {
	var updated gormModels.Operator

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&gormModels.Operator{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"name":            op.Name,
				"evaluation_date": op.EvaluationDate,
				"probability":     op.Probability,
				"severity":        op.Severity,
				"aircraft_count":  op.AircraftCount,
				"monthly_flights": op.MonthlyFlights,
				"station_count":   op.StationCount,
				"inspector":       op.Inspector,
				"findings_count":  op.FindingsCount,
				"risk_tier":       op.RiskTier,
				"risk_policy":     op.RiskPolicy,
			})

		if result.Error != nil {
			return fmt.Errorf("failed to update operator: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrOperatorNotFound
		}

		return tx.Where("id = ?", id).First(&updated).Error
	})

	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// UpdateTier is a single conditional UPDATE, so a concurrent edit either
// lands first and makes the WHERE miss, or lands after and overwrites the tier.
func (r *OperatorRepositoryGORM) UpdateTier(ctx context.Context, seen *gormModels.Operator, tier, policy string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&gormModels.Operator{}).
		Where("id = ?", seen.ID)
	for _, f := range numericFields {
		q = q.Where(fmt.Sprintf("%s = ?", f), valueOf(seen, f))
	}

	result := q.Updates(map[string]interface{}{
		"risk_tier":   tier,
		"risk_policy": policy,
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update operator tier: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Delete removes an operator; an absent id reports ErrOperatorNotFound
func (r *OperatorRepositoryGORM) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&gormModels.Operator{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete operator: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOperatorNotFound
	}

	return nil
}

// Average returns the mean of a numeric field, 0 for an empty table
func (r *OperatorRepositoryGORM) Average(ctx context.Context, field Field) (float64, error) {
	if _, err := ParseField(string(field)); err != nil {
		return 0, err
	}

	var avg float64
	err := r.db.WithContext(ctx).
		Model(&gormModels.Operator{}).
		Select(fmt.Sprintf("COALESCE(AVG(CAST(%s AS DOUBLE PRECISION)), 0)", field)).
		Row().
		Scan(&avg)

	if err != nil {
		return 0, fmt.Errorf("failed to average %s: %w", field, err)
	}

	return avg, nil
}

// Top returns the n operators with the largest field value; ties keep insertion order
func (r *OperatorRepositoryGORM) Top(ctx context.Context, field Field, n int) ([]gormModels.Operator, error) {
	if _, err := ParseField(string(field)); err != nil {
		return nil, err
	}

	ops := make([]gormModels.Operator, 0)
	if n <= 0 {
		return ops, nil
	}

	err := r.db.WithContext(ctx).
		Order(fmt.Sprintf("%s DESC", field)).
		Order("id ASC").
		Limit(n).
		Find(&ops).Error

	if err != nil {
		return nil, fmt.Errorf("failed to fetch top operators by %s: %w", field, err)
	}

	return ops, nil
}

// Count returns the number of operators
func (r *OperatorRepositoryGORM) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Operator{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count operators: %w", err)
	}
	return total, nil
}

// CountByTier returns the number of operators per stored risk tier
func (r *OperatorRepositoryGORM) CountByTier(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		RiskTier string
		Total    int64
	}

	err := r.db.WithContext(ctx).
		Model(&gormModels.Operator{}).
		Select("risk_tier, COUNT(*) AS total").
		Group("risk_tier").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("failed to count operators by tier: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.RiskTier] = row.Total
	}
	return counts, nil
}
