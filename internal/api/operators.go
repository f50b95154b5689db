package api

import (
	"net/http"
	"strconv"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/models/dtos/requests"
	"aerosafety/rbo/internal/models/dtos/responses"

	"github.com/go-chi/chi/v5"
)

const defaultTopN = 5

// ListOperators handles GET /api/v1/operators?order=date_desc|id_desc
func (h *Handlers) ListOperators() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		order, err := repositories.ParseOrderBy(r.URL.Query().Get("order"))
		if err != nil {
			respondServiceError(w, r, initTime, err, "list operators")
			return
		}

		ops, err := h.deps.Services.Operators.List(r.Context(), order)
		if err != nil {
			respondServiceError(w, r, initTime, err, "list operators")
			return
		}

		common.RespondSuccess(w, initTime, "Operators fetched", h.deps.Services.Operators.Views(ops))
	}
}

// CreateOperator handles POST /api/v1/operators
func (h *Handlers) CreateOperator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var in requests.OperatorInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondServiceError(w, r, initTime, err, "decode operator")
			return
		}

		op, err := h.deps.Services.Operators.Register(r.Context(), in)
		if err != nil {
			respondServiceError(w, r, initTime, err, "register operator")
			return
		}

		common.RespondSuccess(w, initTime, "Operator registered", h.deps.Services.Operators.View(op), http.StatusCreated)
	}
}

// GetOperator handles GET /api/v1/operators/{id}
func (h *Handlers) GetOperator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := common.ParseID(chi.URLParam(r, "id"))
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgInvalidOperatorID, http.StatusBadRequest)
			return
		}

		op, err := h.deps.Services.Operators.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, r, initTime, err, "get operator")
			return
		}

		common.RespondSuccess(w, initTime, "Operator fetched", h.deps.Services.Operators.View(op))
	}
}

// UpdateOperator handles PUT /api/v1/operators/{id}
func (h *Handlers) UpdateOperator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := common.ParseID(chi.URLParam(r, "id"))
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgInvalidOperatorID, http.StatusBadRequest)
			return
		}

		var in requests.OperatorInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondServiceError(w, r, initTime, err, "decode operator")
			return
		}

		op, err := h.deps.Services.Operators.Update(r.Context(), id, in)
		if err != nil {
			respondServiceError(w, r, initTime, err, "update operator")
			return
		}

		common.RespondSuccess(w, initTime, "Operator updated", h.deps.Services.Operators.View(op))
	}
}

// DeleteOperator handles DELETE /api/v1/operators/{id}
func (h *Handlers) DeleteOperator() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := common.ParseID(chi.URLParam(r, "id"))
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgInvalidOperatorID, http.StatusBadRequest)
			return
		}

		if err := h.deps.Services.Operators.Delete(r.Context(), id); err != nil {
			respondServiceError(w, r, initTime, err, "delete operator")
			return
		}

		common.RespondSuccess(w, initTime, "Operator deleted", map[string]uint64{"id": id})
	}
}

// AverageStat handles GET /api/v1/operators/stats/average?field=
func (h *Handlers) AverageStat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		avg, err := h.deps.Services.Operators.Average(r.Context(), r.URL.Query().Get("field"))
		if err != nil {
			respondServiceError(w, r, initTime, err, "average operators")
			return
		}

		common.RespondSuccess(w, initTime, "Average computed", avg)
	}
}

// TopStat handles GET /api/v1/operators/stats/top?field=&n=
func (h *Handlers) TopStat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		field := r.URL.Query().Get("field")

		n := defaultTopN
		if raw := r.URL.Query().Get("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				respondServiceError(w, r, initTime, repositories.NewValidationError("n", "must be an integer"), "rank operators")
				return
			}
			n = parsed
		}

		ops, err := h.deps.Services.Operators.Top(r.Context(), field, n)
		if err != nil {
			respondServiceError(w, r, initTime, err, "rank operators")
			return
		}

		common.RespondSuccess(w, initTime, "Top operators fetched", responses.TopResponse{
			Field:     field,
			N:         n,
			Operators: h.deps.Services.Operators.Views(ops),
		})
	}
}

// SummaryStat handles GET /api/v1/operators/stats/summary
func (h *Handlers) SummaryStat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		summary, err := h.deps.Services.Operators.Summary(r.Context())
		if err != nil {
			respondServiceError(w, r, initTime, err, "summarise operators")
			return
		}

		common.RespondSuccess(w, initTime, "Summary computed", summary)
	}
}
