package repositories

import (
	"context"
	"errors"
	"time"

	"aerosafety/rbo/internal/metrics"
	gormModels "aerosafety/rbo/internal/models/gorm"
)

// InstrumentedOperatorRepository records query counts and latency around any backend
type InstrumentedOperatorRepository struct {
	next    OperatorRepository
	metrics *metrics.MetricsRegistry
}

var _ OperatorRepository = (*InstrumentedOperatorRepository)(nil)

func NewInstrumentedOperatorRepository(next OperatorRepository, m *metrics.MetricsRegistry) *InstrumentedOperatorRepository {
	return &InstrumentedOperatorRepository{next: next, metrics: m}
}

func (r *InstrumentedOperatorRepository) observe(queryType string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, ErrOperatorNotFound):
		outcome = "not_found"
	case IsValidationError(err):
		outcome = "invalid"
	case err != nil:
		outcome = "error"
	}

	r.metrics.DBQueriesTotal.WithLabelValues(queryType, outcome).Inc()
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}

func (r *InstrumentedOperatorRepository) Create(ctx context.Context, op *gormModels.Operator) (*gormModels.Operator, error) {
	start := time.Now()
	out, err := r.next.Create(ctx, op)
	r.observe("create", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) List(ctx context.Context, order OrderBy) ([]gormModels.Operator, error) {
	start := time.Now()
	out, err := r.next.List(ctx, order)
	r.observe("list", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) Get(ctx context.Context, id uint64) (*gormModels.Operator, error) {
	start := time.Now()
	out, err := r.next.Get(ctx, id)
	r.observe("get", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) Update(ctx context.Context, id uint64, op *gormModels.Operator) (*gormModels.Operator, error) {
	start := time.Now()
	out, err := r.next.Update(ctx, id, op)
	r.observe("update", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) UpdateTier(ctx context.Context, seen *gormModels.Operator, tier, policy string) (bool, error) {
	start := time.Now()
	out, err := r.next.UpdateTier(ctx, seen, tier, policy)
	r.observe("update_tier", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) Delete(ctx context.Context, id uint64) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}

func (r *InstrumentedOperatorRepository) Average(ctx context.Context, field Field) (float64, error) {
	start := time.Now()
	out, err := r.next.Average(ctx, field)
	r.observe("average", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) Top(ctx context.Context, field Field, n int) ([]gormModels.Operator, error) {
	start := time.Now()
	out, err := r.next.Top(ctx, field, n)
	r.observe("top", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) Count(ctx context.Context) (int64, error) {
	start := time.Now()
	out, err := r.next.Count(ctx)
	r.observe("count", start, err)
	return out, err
}

func (r *InstrumentedOperatorRepository) CountByTier(ctx context.Context) (map[string]int64, error) {
	start := time.Now()
	out, err := r.next.CountByTier(ctx)
	r.observe("count_by_tier", start, err)
	return out, err
}
