package api

import (
	"errors"
	"net/http"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/models/dtos/requests"
	"aerosafety/rbo/internal/models/dtos/responses"
	"aerosafety/rbo/internal/risk"
)

// ListPolicies handles GET /api/v1/risk/policies
func (h *Handlers) ListPolicies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		active := h.deps.Services.Operators.Policy().Name()

		names := risk.Policies()
		out := make([]responses.PolicyResponse, 0, len(names))
		for _, name := range names {
			out = append(out, responses.PolicyResponse{Name: name, Active: name == active})
		}

		common.RespondSuccess(w, initTime, "Policies fetched", out)
	}
}

// Classify handles POST /api/v1/risk/classify. Nothing is stored.
func (h *Handlers) Classify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req requests.ClassifyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondServiceError(w, r, initTime, err, "decode classification")
			return
		}

		policy := h.deps.Services.Operators.Policy()
		if req.Policy != "" {
			p, err := risk.PolicyByName(req.Policy)
			if err != nil {
				if errors.Is(err, risk.ErrUnknownPolicy) {
					common.RespondError(w, initTime, err, "Unknown policy", http.StatusBadRequest)
					return
				}
				respondServiceError(w, r, initTime, err, "resolve policy")
				return
			}
			policy = p
		}

		assessment := policy.Classify(risk.Inputs{
			Probability:    requests.IntOrZero(req.Probability),
			Severity:       requests.IntOrZero(req.Severity),
			Aircraft:       requests.IntOrZero(req.AircraftCount),
			MonthlyFlights: requests.IntOrZero(req.MonthlyFlights),
			Stations:       requests.IntOrZero(req.StationCount),
			Findings:       requests.IntOrZero(req.FindingsCount),
		})

		common.RespondSuccess(w, initTime, "Classification computed", assessment)
	}
}
