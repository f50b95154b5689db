package gorm

import (
	"time"

	"aerosafety/rbo/internal/risk"
)

// DefaultInspector is stored when no inspector is assigned
const DefaultInspector = "unassigned"

// Operator is an airline or aviation entity under safety oversight
type Operator struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string    `gorm:"column:name;type:varchar(200);not null"`
	EvaluationDate time.Time `gorm:"column:evaluation_date;index:idx_operators_evaluation_date"`
	Probability    int       `gorm:"column:probability;not null;default:0"`
	Severity       int       `gorm:"column:severity;not null;default:0"`
	AircraftCount  int       `gorm:"column:aircraft_count;not null;default:0"`
	MonthlyFlights int       `gorm:"column:monthly_flights;not null;default:0"`
	StationCount   int       `gorm:"column:station_count;not null;default:0"`
	Inspector      string    `gorm:"column:inspector;type:varchar(120);not null;default:'unassigned'"`
	FindingsCount  int       `gorm:"column:findings_count;not null;default:0"`
	RiskTier       string    `gorm:"column:risk_tier;type:varchar(32);index:idx_operators_risk_tier"`
	RiskPolicy     string    `gorm:"column:risk_policy;type:varchar(32)"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Operator) TableName() string {
	return "operators"
}

// RiskInputs maps the stored metrics onto classifier inputs
func (o *Operator) RiskInputs() risk.Inputs {
	return risk.Inputs{
		Probability:    o.Probability,
		Severity:       o.Severity,
		Aircraft:       o.AircraftCount,
		MonthlyFlights: o.MonthlyFlights,
		Stations:       o.StationCount,
		Findings:       o.FindingsCount,
	}
}
