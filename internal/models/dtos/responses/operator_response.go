package responses

import (
	"time"

	"aerosafety/rbo/internal/risk"
)

// OperatorResponse is an operator record with its derived display fields
type OperatorResponse struct {
	ID             uint64       `json:"id"`
	Name           string       `json:"name"`
	EvaluationDate string       `json:"evaluation_date"`
	Probability    int          `json:"probability"`
	Severity       int          `json:"severity"`
	AircraftCount  int          `json:"aircraft_count"`
	MonthlyFlights int          `json:"monthly_flights"`
	StationCount   int          `json:"station_count"`
	Inspector      string       `json:"inspector"`
	FindingsCount  int          `json:"findings_count"`
	RiskTier       string       `json:"risk_tier"`
	RiskPolicy     string       `json:"risk_policy"`
	Color          string       `json:"color"`
	Cadence        risk.Cadence `json:"cadence"`
	SMSScore       int          `json:"sms_score"`
	Score          string       `json:"score"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type AverageResponse struct {
	Field   string  `json:"field"`
	Average float64 `json:"average"`
}

type TopResponse struct {
	Field     string             `json:"field"`
	N         int                `json:"n"`
	Operators []OperatorResponse `json:"operators"`
}

// SummaryResponse backs the dashboard header and /stats/summary
type SummaryResponse struct {
	Total           int64            `json:"total"`
	ByTier          map[string]int64 `json:"by_tier"`
	AverageFindings float64          `json:"average_findings"`
	Policy          string           `json:"policy"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PolicyResponse struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
