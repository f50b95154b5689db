package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	gormModels "aerosafety/rbo/internal/models/gorm"
)

// OperatorRepositoryMemory keeps operators in process memory.
// Used for local runs without a database and as the reference backend in tests.
type OperatorRepositoryMemory struct {
	mu     sync.RWMutex
	nextID uint64
	ops    map[uint64]gormModels.Operator
	now    func() time.Time
}

var _ OperatorRepository = (*OperatorRepositoryMemory)(nil)

func NewOperatorRepositoryMemory() *OperatorRepositoryMemory {
	return &OperatorRepositoryMemory{
		ops: make(map[uint64]gormModels.Operator),
		now: time.Now,
	}
}

func (r *OperatorRepositoryMemory) Create(_ context.Context, op *gormModels.Operator) (*gormModels.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	record := *op
	record.ID = r.nextID
	record.CreatedAt = r.now()
	record.UpdatedAt = record.CreatedAt
	r.ops[record.ID] = record

	return &record, nil
}

func (r *OperatorRepositoryMemory) List(_ context.Context, order OrderBy) ([]gormModels.Operator, error) {
	ops := r.snapshot()

	switch order {
	case OrderIDDesc:
		sort.Slice(ops, func(i, j int) bool { return ops[i].ID > ops[j].ID })
	default:
		sort.Slice(ops, func(i, j int) bool {
			if !ops[i].EvaluationDate.Equal(ops[j].EvaluationDate) {
				return ops[i].EvaluationDate.After(ops[j].EvaluationDate)
			}
			return ops[i].ID > ops[j].ID
		})
	}

	return ops, nil
}

func (r *OperatorRepositoryMemory) Get(_ context.Context, id uint64) (*gormModels.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.ops[id]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	return &op, nil
}

func (r *OperatorRepositoryMemory) Update(_ context.Context, id uint64, op *gormModels.Operator) (*gormModels.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ops[id]
	if !ok {
		return nil, ErrOperatorNotFound
	}

	record := *op
	record.ID = id
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.now()
	r.ops[id] = record

	return &record, nil
}

func (r *OperatorRepositoryMemory) UpdateTier(_ context.Context, seen *gormModels.Operator, tier, policy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.ops[seen.ID]
	if !ok || !sameInputs(&existing, seen) {
		return false, nil
	}

	existing.RiskTier = tier
	existing.RiskPolicy = policy
	existing.UpdatedAt = r.now()
	r.ops[seen.ID] = existing

	return true, nil
}

func (r *OperatorRepositoryMemory) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ops[id]; !ok {
		return ErrOperatorNotFound
	}
	delete(r.ops, id)
	return nil
}

func (r *OperatorRepositoryMemory) Average(_ context.Context, field Field) (float64, error) {
	if _, err := ParseField(string(field)); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.ops) == 0 {
		return 0, nil
	}

	sum := 0
	for _, op := range r.ops {
		sum += valueOf(&op, field)
	}
	return float64(sum) / float64(len(r.ops)), nil
}

func (r *OperatorRepositoryMemory) Top(_ context.Context, field Field, n int) ([]gormModels.Operator, error) {
	if _, err := ParseField(string(field)); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []gormModels.Operator{}, nil
	}

	ops := r.snapshot()
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	sort.SliceStable(ops, func(i, j int) bool {
		return valueOf(&ops[i], field) > valueOf(&ops[j], field)
	})

	if len(ops) > n {
		ops = ops[:n]
	}
	return ops, nil
}

func (r *OperatorRepositoryMemory) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.ops)), nil
}

func (r *OperatorRepositoryMemory) CountByTier(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, op := range r.ops {
		counts[op.RiskTier]++
	}
	return counts, nil
}

// snapshot copies every record out from under the lock
func (r *OperatorRepositoryMemory) snapshot() []gormModels.Operator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]gormModels.Operator, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	return ops
}
