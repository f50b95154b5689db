package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/metrics"
	"aerosafety/rbo/internal/models/dtos/requests"
	"aerosafety/rbo/internal/models/dtos/responses"
	gormModels "aerosafety/rbo/internal/models/gorm"
	"aerosafety/rbo/internal/risk"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// DateLayout is the wire format of evaluation dates
const DateLayout = "2006-01-02"

const (
	summaryCachePrefix = "operators:summary:"
	summaryCacheTTL    = 30 * time.Second
)

// OperatorService validates operator input, classifies it with the active
// policy and persists it through the repository.
type OperatorService struct {
	repo     repositories.OperatorRepository
	policy   risk.Policy
	validate *validator.Validate
	metrics  *metrics.MetricsRegistry
	cache    common.Cache
	// writes bumps on every successful write; summaries are cached per value
	writes atomic.Uint64
	logger *zap.Logger
}

// NewOperatorService creates a new operator service. m may be nil.
func NewOperatorService(
	repo repositories.OperatorRepository,
	policy risk.Policy,
	m *metrics.MetricsRegistry,
	logger *zap.Logger,
) *OperatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OperatorService{
		repo:     repo,
		policy:   policy,
		validate: NewValidator(),
		metrics:  m,
		logger:   logger,
	}
}

// NewValidator returns a validator that reports fields by their json names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// WithSummaryCache memoises Summary until the next write or summaryCacheTTL
func (s *OperatorService) WithSummaryCache(c common.Cache) *OperatorService {
	s.cache = c
	return s
}

// Policy returns the active classification policy
func (s *OperatorService) Policy() risk.Policy {
	return s.policy
}

// Register validates, classifies and stores a new operator
func (s *OperatorService) Register(ctx context.Context, in requests.OperatorInput) (*gormModels.Operator, error) {
	op, err := s.buildOperator(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("failed to register operator: %w", err)
	}

	s.logger.Info("operator registered",
		zap.Uint64("id", created.ID),
		zap.String("name", created.Name),
		zap.String("tier", created.RiskTier),
	)
	s.refreshTierGauge(ctx)

	return created, nil
}

// Update replaces an operator's fields and recomputes its tier
func (s *OperatorService) Update(ctx context.Context, id uint64, in requests.OperatorInput) (*gormModels.Operator, error) {
	op, err := s.buildOperator(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, op)
	if err != nil {
		return nil, fmt.Errorf("failed to update operator %d: %w", id, err)
	}

	s.logger.Info("operator updated",
		zap.Uint64("id", updated.ID),
		zap.String("tier", updated.RiskTier),
	)
	s.refreshTierGauge(ctx)

	return updated, nil
}

// Delete removes an operator
func (s *OperatorService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete operator %d: %w", id, err)
	}

	s.logger.Info("operator deleted", zap.Uint64("id", id))
	s.refreshTierGauge(ctx)
	return nil
}

func (s *OperatorService) Get(ctx context.Context, id uint64) (*gormModels.Operator, error) {
	op, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator %d: %w", id, err)
	}
	return op, nil
}

func (s *OperatorService) List(ctx context.Context, order repositories.OrderBy) ([]gormModels.Operator, error) {
	ops, err := s.repo.List(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return ops, nil
}

// Average returns the mean of a whitelisted numeric field
func (s *OperatorService) Average(ctx context.Context, field string) (*responses.AverageResponse, error) {
	f, err := repositories.ParseField(field)
	if err != nil {
		return nil, err
	}

	avg, err := s.repo.Average(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to average operators: %w", err)
	}

	return &responses.AverageResponse{Field: string(f), Average: avg}, nil
}

// Top returns the n operators with the largest value of field
func (s *OperatorService) Top(ctx context.Context, field string, n int) ([]gormModels.Operator, error) {
	f, err := repositories.ParseField(field)
	if err != nil {
		return nil, err
	}

	ops, err := s.repo.Top(ctx, f, n)
	if err != nil {
		return nil, fmt.Errorf("failed to rank operators: %w", err)
	}
	return ops, nil
}

// Summary aggregates the stored operators for the dashboard header
func (s *OperatorService) Summary(ctx context.Context) (*responses.SummaryResponse, error) {
	if s.cache == nil {
		return s.summarise(ctx)
	}
	// a summary computed across a write lands under the old key and is never read
	key := summaryCachePrefix + strconv.FormatUint(s.writes.Load(), 10)
	return common.GetOrSet(s.cache, key, summaryCacheTTL, func() (*responses.SummaryResponse, error) {
		return s.summarise(ctx)
	})
}

func (s *OperatorService) summarise(ctx context.Context) (*responses.SummaryResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise operators: %w", err)
	}

	byTier, err := s.repo.CountByTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise operators: %w", err)
	}

	avgFindings, err := s.repo.Average(ctx, repositories.FieldFindingsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise operators: %w", err)
	}

	return &responses.SummaryResponse{
		Total:           total,
		ByTier:          byTier,
		AverageFindings: avgFindings,
		Policy:          s.policy.Name(),
	}, nil
}

// Reclassify recomputes every stored tier that the active policy would
// label differently, returning the number of records rewritten. Only the
// tier columns are written, so concurrent edits are never reverted.
func (s *OperatorService) Reclassify(ctx context.Context) (int, error) {
	ops, err := s.repo.List(ctx, repositories.OrderIDDesc)
	if err != nil {
		return 0, fmt.Errorf("failed to load operators for reclassification: %w", err)
	}

	changed := 0
	for i := range ops {
		op := ops[i]
		a := s.classify(&op)
		if op.RiskTier == string(a.Tier) && op.RiskPolicy == a.Policy {
			continue
		}

		// a record edited or deleted since List stamped its own tier
		written, err := s.repo.UpdateTier(ctx, &op, string(a.Tier), a.Policy)
		if err != nil {
			return changed, fmt.Errorf("failed to reclassify operator %d: %w", op.ID, err)
		}
		if written {
			changed++
		}
	}

	if changed > 0 {
		s.logger.Info("operators reclassified",
			zap.String("policy", s.policy.Name()),
			zap.Int("changed", changed),
			zap.Int("total", len(ops)),
		)
	}
	s.refreshTierGauge(ctx)

	return changed, nil
}

// Assess classifies a stored operator with the active policy
func (s *OperatorService) Assess(op *gormModels.Operator) risk.Assessment {
	return s.policy.Classify(op.RiskInputs())
}

// View converts an operator into its API representation. Color and cadence
// follow the stored tier so a row never mixes two classifications.
func (s *OperatorService) View(op *gormModels.Operator) responses.OperatorResponse {
	a := s.Assess(op).WithStoredTier(op.RiskTier)
	return responses.OperatorResponse{
		ID:             op.ID,
		Name:           op.Name,
		EvaluationDate: op.EvaluationDate.UTC().Format(DateLayout),
		Probability:    op.Probability,
		Severity:       op.Severity,
		AircraftCount:  op.AircraftCount,
		MonthlyFlights: op.MonthlyFlights,
		StationCount:   op.StationCount,
		Inspector:      op.Inspector,
		FindingsCount:  op.FindingsCount,
		RiskTier:       string(a.Tier),
		RiskPolicy:     op.RiskPolicy,
		Color:          a.Color,
		Cadence:        a.Cadence,
		SMSScore:       a.SMSScore,
		Score:          a.Score.String(),
		UpdatedAt:      op.UpdatedAt,
	}
}

// Views converts a slice of operators
func (s *OperatorService) Views(ops []gormModels.Operator) []responses.OperatorResponse {
	out := make([]responses.OperatorResponse, 0, len(ops))
	for i := range ops {
		out = append(out, s.View(&ops[i]))
	}
	return out
}

// buildOperator validates input and produces a classified record
func (s *OperatorService) buildOperator(in requests.OperatorInput) (*gormModels.Operator, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Inspector = strings.TrimSpace(in.Inspector)
	in.EvaluationDate = strings.TrimSpace(in.EvaluationDate)

	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}

	date, err := time.ParseInLocation(DateLayout, in.EvaluationDate, time.UTC)
	if err != nil {
		return nil, repositories.NewValidationError("evaluation_date", "must be a date in YYYY-MM-DD format")
	}

	inspector := in.Inspector
	if inspector == "" {
		inspector = gormModels.DefaultInspector
	}

	op := &gormModels.Operator{
		Name:           in.Name,
		EvaluationDate: date,
		Probability:    requests.IntOrZero(in.Probability),
		Severity:       requests.IntOrZero(in.Severity),
		AircraftCount:  requests.IntOrZero(in.AircraftCount),
		MonthlyFlights: requests.IntOrZero(in.MonthlyFlights),
		StationCount:   requests.IntOrZero(in.StationCount),
		Inspector:      inspector,
		FindingsCount:  requests.IntOrZero(in.FindingsCount),
	}

	a := s.classify(op)
	op.RiskTier = string(a.Tier)
	op.RiskPolicy = a.Policy

	return op, nil
}

func (s *OperatorService) classify(op *gormModels.Operator) risk.Assessment {
	a := s.Assess(op)
	if s.metrics != nil {
		s.metrics.ClassificationsTotal.WithLabelValues(a.Policy, string(a.Tier)).Inc()
	}
	return a
}

// refreshTierGauge runs after every write, so it also retires the cached summary
func (s *OperatorService) refreshTierGauge(ctx context.Context) {
	s.writes.Add(1)
	if s.metrics == nil {
		return
	}

	counts, err := s.repo.CountByTier(ctx)
	if err != nil {
		s.logger.Warn("failed to refresh tier gauge", zap.Error(err))
		return
	}

	s.metrics.OperatorsByTier.Reset()
	for tier, n := range counts {
		s.metrics.OperatorsByTier.WithLabelValues(tier).Set(float64(n))
	}
}

// toValidationError reduces validator output to the first offending field
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return repositories.NewValidationError("input", err.Error())
	}

	fe := verrs[0]
	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "datetime":
		reason = "must be a date in YYYY-MM-DD format"
	case "min":
		reason = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			reason = fmt.Sprintf("must be at most %s characters", fe.Param())
		} else {
			reason = fmt.Sprintf("must be at most %s", fe.Param())
		}
	default:
		reason = fmt.Sprintf("failed %s validation", fe.Tag())
	}

	return repositories.NewValidationError(fe.Field(), reason)
}
