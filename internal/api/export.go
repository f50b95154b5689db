package api

import (
	"net/http"
	"strconv"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/export"
	"aerosafety/rbo/internal/logging"
)

// ExportWorkbook handles GET /export and GET /api/v1/export.xlsx
func (h *Handlers) ExportWorkbook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		svc := h.deps.Services.Operators

		ops, err := svc.List(r.Context(), repositories.OrderDateDesc)
		if err != nil {
			h.recordExport("error")
			respondServiceError(w, r, initTime, err, "load operators for export")
			return
		}

		data, err := export.WriteWorkbook(export.BuildRows(ops, svc.Policy()))
		if err != nil {
			h.recordExport("error")
			logging.Error("failed to build workbook", "error", err)
			common.RespondError(w, initTime, nil, constants.MsgExportFailed, http.StatusInternalServerError)
			return
		}

		h.recordExport("ok")
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func (h *Handlers) recordExport(outcome string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.ExportsTotal.WithLabelValues(outcome).Inc()
	}
}
