package entities

import "time"

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status        string                   `json:"status"`
	Services      map[string]ServiceStatus `json:"services"`
	SchemaVersion int                      `json:"schema_version"`
	RiskPolicy    string                   `json:"risk_policy"`
	UpSince       time.Time                `json:"up_since"`
	Uptime        string                   `json:"uptime"`
}
