package repositories

import (
	"context"
	"fmt"
	"strings"

	gormModels "aerosafety/rbo/internal/models/gorm"
)

// OrderBy selects the ordering of List
type OrderBy string

const (
	OrderDateDesc OrderBy = "date_desc"
	OrderIDDesc   OrderBy = "id_desc"
)

// ParseOrderBy accepts "date_desc", "id_desc" or an empty string (date_desc)
func ParseOrderBy(s string) (OrderBy, error) {
	switch OrderBy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderDateDesc:
		return OrderDateDesc, nil
	case OrderIDDesc:
		return OrderIDDesc, nil
	}
	return "", NewValidationError("order", fmt.Sprintf("unsupported ordering %q", s))
}

// Field is a numeric operator column usable in aggregates
type Field string

const (
	FieldProbability    Field = "probability"
	FieldSeverity       Field = "severity"
	FieldAircraftCount  Field = "aircraft_count"
	FieldMonthlyFlights Field = "monthly_flights"
	FieldStationCount   Field = "station_count"
	FieldFindingsCount  Field = "findings_count"
)

var numericFields = []Field{
	FieldProbability,
	FieldSeverity,
	FieldAircraftCount,
	FieldMonthlyFlights,
	FieldStationCount,
	FieldFindingsCount,
}

// ParseField validates a field name against the numeric column whitelist
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range numericFields {
		if f == known {
			return f, nil
		}
	}
	return "", NewValidationError("field", fmt.Sprintf("%q is not a numeric operator field", s))
}

// valueOf reads a numeric field from an operator
func valueOf(op *gormModels.Operator, f Field) int {
	switch f {
	case FieldProbability:
		return op.Probability
	case FieldSeverity:
		return op.Severity
	case FieldAircraftCount:
		return op.AircraftCount
	case FieldMonthlyFlights:
		return op.MonthlyFlights
	case FieldStationCount:
		return op.StationCount
	case FieldFindingsCount:
		return op.FindingsCount
	}
	return 0
}

// sameInputs reports whether two records carry the same classification inputs
func sameInputs(a, b *gormModels.Operator) bool {
	for _, f := range numericFields {
		if valueOf(a, f) != valueOf(b, f) {
			return false
		}
	}
	return true
}

// OperatorRepository is the persistence boundary for operators.
// Any backend (relational, in-memory) satisfies it.
type OperatorRepository interface {
	Create(ctx context.Context, op *gormModels.Operator) (*gormModels.Operator, error)
	List(ctx context.Context, order OrderBy) ([]gormModels.Operator, error)
	Get(ctx context.Context, id uint64) (*gormModels.Operator, error)
	Update(ctx context.Context, id uint64, op *gormModels.Operator) (*gormModels.Operator, error)
	// UpdateTier writes only risk_tier and risk_policy, and only while the
	// stored inputs still match seen. It reports whether a row was written;
	// a record edited or deleted since it was read is left alone.
	UpdateTier(ctx context.Context, seen *gormModels.Operator, tier, policy string) (bool, error)
	Delete(ctx context.Context, id uint64) error
	Average(ctx context.Context, field Field) (float64, error)
	Top(ctx context.Context, field Field, n int) ([]gormModels.Operator, error)
	Count(ctx context.Context) (int64, error)
	CountByTier(ctx context.Context) (map[string]int64, error)
}
