package ui

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"aerosafety/rbo/internal/auth"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/services"

	"github.com/go-chi/chi/v5"
)

// DashboardHandler serves the operator table and its forms
type DashboardHandler struct {
	operators *services.OperatorService
	now       func() time.Time
}

func NewDashboardHandler(operators *services.OperatorService) *DashboardHandler {
	return &DashboardHandler{operators: operators, now: time.Now}
}

// Index handles GET /
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.renderIndex(w, r, http.StatusOK, emptyForm(h.now()), q.Get("notice"), q.Get("error"))
}

func (h *DashboardHandler) renderIndex(w http.ResponseWriter, r *http.Request, status int, form OperatorForm, notice, errMsg string) {
	ops, err := h.operators.List(r.Context(), repositories.OrderDateDesc)
	if err != nil {
		h.fail(w, r, err, "list operators")
		return
	}

	summary, err := h.operators.Summary(r.Context())
	if err != nil {
		h.fail(w, r, err, "summarise operators")
		return
	}

	data := map[string]interface{}{
		"PageTitle": "Operators",
		"Username":  auth.Username(r.Context()),
		"Operators": h.operators.Views(ops),
		"Summary":   summary,
		"Form":      form,
		"Notice":    notice,
		"Error":     errMsg,
	}
	RenderTemplate(w, status, "dashboard/index.html", data)
}

// Register handles POST /operators
func (h *DashboardHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := formFromValues(r.PostForm)

	in, err := form.Input()
	if err == nil {
		_, err = h.operators.Register(r.Context(), in)
	}
	if err != nil {
		if repositories.IsValidationError(err) {
			h.renderIndex(w, r, http.StatusBadRequest, form, "", err.Error())
			return
		}
		h.fail(w, r, err, "register operator")
		return
	}

	redirectWith(w, r, "/", "notice", "Operator "+form.Name+" registered")
}

// Edit handles GET /operators/{id}/edit
func (h *DashboardHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		redirectWith(w, r, "/", "error", "Operator not found")
		return
	}

	op, err := h.operators.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			redirectWith(w, r, "/", "error", "Operator not found")
			return
		}
		h.fail(w, r, err, "load operator")
		return
	}

	h.renderEdit(w, r, http.StatusOK, id, formFromOperator(op), "")
}

func (h *DashboardHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, id uint64, form OperatorForm, errMsg string) {
	RenderTemplate(w, status, "operators/edit.html", map[string]interface{}{
		"PageTitle":  "Edit operator",
		"Username":   auth.Username(r.Context()),
		"OperatorID": id,
		"Form":       form,
		"Error":      errMsg,
	})
}

// Update handles POST /operators/{id}
func (h *DashboardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		redirectWith(w, r, "/", "error", "Operator not found")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := formFromValues(r.PostForm)

	in, err := form.Input()
	if err == nil {
		_, err = h.operators.Update(r.Context(), id, in)
	}
	switch {
	case err == nil:
		redirectWith(w, r, "/", "notice", "Operator "+form.Name+" updated")
	case errors.Is(err, repositories.ErrOperatorNotFound):
		redirectWith(w, r, "/", "error", "Operator not found")
	case repositories.IsValidationError(err):
		h.renderEdit(w, r, http.StatusBadRequest, id, form, err.Error())
	default:
		h.fail(w, r, err, "update operator")
	}
}

// Delete handles POST /operators/{id}/delete. Deleting an absent id is a no-op.
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	err := h.operators.Delete(r.Context(), id)
	switch {
	case err == nil:
		redirectWith(w, r, "/", "notice", "Operator deleted")
	case errors.Is(err, repositories.ErrOperatorNotFound):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		h.fail(w, r, err, "delete operator")
	}
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	logging.Error("dashboard failed to "+action,
		"error", err,
		"request_id", auth.GetRequestID(r.Context()),
		"username", auth.Username(r.Context()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	http.Redirect(w, r, path+"?"+url.Values{key: {msg}}.Encode(), http.StatusSeeOther)
}
