package requests

// OperatorInput is the caller-supplied part of an operator, shared by the
// HTML form and the JSON API. Nil metrics are treated as 0.
type OperatorInput struct {
	Name           string `json:"name" validate:"required,max=200"`
	EvaluationDate string `json:"evaluation_date" validate:"required,datetime=2006-01-02"`
	Probability    *int   `json:"probability" validate:"omitempty,min=1,max=5"`
	Severity       *int   `json:"severity" validate:"omitempty,min=1,max=5"`
	AircraftCount  *int   `json:"aircraft_count" validate:"omitempty,min=0"`
	MonthlyFlights *int   `json:"monthly_flights" validate:"omitempty,min=0"`
	StationCount   *int   `json:"station_count" validate:"omitempty,min=0"`
	Inspector      string `json:"inspector" validate:"max=120"`
	FindingsCount  *int   `json:"findings_count" validate:"omitempty,min=0"`
}

// LoginRequest is the body of POST /api/v1/auth/token
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ClassifyRequest runs a policy over ad-hoc inputs
type ClassifyRequest struct {
	Policy         string `json:"policy"`
	Probability    *int   `json:"probability"`
	Severity       *int   `json:"severity"`
	AircraftCount  *int   `json:"aircraft_count"`
	MonthlyFlights *int   `json:"monthly_flights"`
	StationCount   *int   `json:"station_count"`
	FindingsCount  *int   `json:"findings_count"`
}

// IntOrZero dereferences an optional metric
func IntOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
