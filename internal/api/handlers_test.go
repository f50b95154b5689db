package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aerosafety/rbo/internal/config"
	"aerosafety/rbo/internal/db"
	"aerosafety/rbo/internal/export"
	"aerosafety/rbo/internal/metrics"
	"aerosafety/rbo/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupDeps(t *testing.T) *Dependencies {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = db.Migrate(context.Background(), gdb, db.Migrations)
	require.NoError(t, err)

	v := viper.New()
	config.SetDefaults(v)
	v.Set("db.driver", "sqlite")
	v.Set("jwt.secret", "0123456789abcdef0123456789abcdef")
	cfg := config.FromViper(v)

	hash, err := services.HashPassword("correct-horse-battery")
	require.NoError(t, err)
	cfg.Admin.Username = "admin"
	cfg.Admin.PasswordHash = hash

	deps, err := InitDependencies(cfg, gdb, nil, metrics.NewMetricsRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	return deps
}

func testRouter(h *Handlers, deps *Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthCheck", HealthCheckHandler(deps))
	r.Post("/auth/token", h.IssueToken())
	r.Get("/export.xlsx", h.ExportWorkbook())
	r.Get("/risk/policies", h.ListPolicies())
	r.Post("/risk/classify", h.Classify())
	r.Route("/operators", func(r chi.Router) {
		r.Get("/", h.ListOperators())
		r.Post("/", h.CreateOperator())
		r.Get("/stats/average", h.AverageStat())
		r.Get("/stats/top", h.TopStat())
		r.Get("/stats/summary", h.SummaryStat())
		r.Get("/{id}", h.GetOperator())
		r.Put("/{id}", h.UpdateOperator())
		r.Delete("/{id}", h.DeleteOperator())
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func operatorBody(name string, p, s int) map[string]any {
	return map[string]any{
		"name":            name,
		"evaluation_date": "2024-03-15",
		"probability":     p,
		"severity":        s,
		"aircraft_count":  4,
		"monthly_flights": 60,
		"station_count":   2,
		"findings_count":  1,
	}
}

func TestOperatorCRUD(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	rec, env := do(t, r, http.MethodPost, "/operators/", operatorBody("Andes Air", 3, 4))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "ok", env.Status)

	var created struct {
		ID       uint64 `json:"id"`
		RiskTier string `json:"risk_tier"`
		Color    string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotZero(t, created.ID)
	// sms 12 -> 2.4, exposure 1+1+0 = 2, total 4.4
	assert.Equal(t, "Medium", created.RiskTier)

	rec, _ = do(t, r, http.MethodGet, "/operators/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, r, http.MethodPut, "/operators/1", operatorBody("Andes Air", 5, 5))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Very High", created.RiskTier)

	rec, env = do(t, r, http.MethodGet, "/operators/?order=id_desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	rec, _ = do(t, r, http.MethodDelete, "/operators/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, r, http.MethodDelete, "/operators/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestOperatorErrors(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		code   int
	}{
		{"bad id", http.MethodGet, "/operators/abc", nil, http.StatusBadRequest},
		{"missing id", http.MethodGet, "/operators/99", nil, http.StatusNotFound},
		{"update missing", http.MethodPut, "/operators/99", operatorBody("X", 1, 1), http.StatusNotFound},
		{"probability out of range", http.MethodPost, "/operators/", operatorBody("X", 9, 1), http.StatusBadRequest},
		{"unknown json field", http.MethodPost, "/operators/", map[string]any{"name": "X", "evaluation_date": "2024-01-01", "color": "red"}, http.StatusBadRequest},
		{"bad order", http.MethodGet, "/operators/?order=name", nil, http.StatusBadRequest},
		{"unknown average field", http.MethodGet, "/operators/stats/average?field=name", nil, http.StatusBadRequest},
		{"non-integer n", http.MethodGet, "/operators/stats/top?field=severity&n=x", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, "error", env.Status)
		})
	}
}

func TestStats(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	for i, sev := range []int{2, 5, 5} {
		body := operatorBody([]string{"A", "B", "C"}[i], 1, sev)
		rec, _ := do(t, r, http.MethodPost, "/operators/", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	_, env := do(t, r, http.MethodGet, "/operators/stats/average?field=severity", nil)
	var avg struct {
		Average float64 `json:"average"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avg))
	assert.InDelta(t, 4.0, avg.Average, 1e-9)

	_, env = do(t, r, http.MethodGet, "/operators/stats/top?field=severity&n=2", nil)
	var top struct {
		Operators []struct {
			Name string `json:"name"`
		} `json:"operators"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &top))
	require.Len(t, top.Operators, 2)
	assert.Equal(t, "B", top.Operators[0].Name)
	assert.Equal(t, "C", top.Operators[1].Name)

	_, env = do(t, r, http.MethodGet, "/operators/stats/summary", nil)
	var summary struct {
		Total  int64  `json:"total"`
		Policy string `json:"policy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.EqualValues(t, 3, summary.Total)
	assert.Equal(t, "exposure", summary.Policy)
}

func TestIssueToken(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	rec, _ := do(t, r, http.MethodPost, "/auth/token", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := do(t, r, http.MethodPost, "/auth/token", map[string]string{"username": "admin", "password": "correct-horse-battery"})
	require.Equal(t, http.StatusOK, rec.Code)

	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	claims, err := deps.Services.Tokens.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.LoginAttemptsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.LoginAttemptsTotal.WithLabelValues("accepted")))
}

func TestRiskEndpoints(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	_, env := do(t, r, http.MethodGet, "/risk/policies", nil)
	var policies []struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &policies))
	require.Len(t, policies, 3)
	assert.True(t, policies[0].Active)

	_, env = do(t, r, http.MethodPost, "/risk/classify", map[string]any{"policy": "findings", "findings_count": 11})
	var assessment struct {
		Tier  string `json:"tier"`
		Color string `json:"color"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &assessment))
	assert.Equal(t, "Critical", assessment.Tier)
	assert.Equal(t, "#e74c3c", assessment.Color)

	rec, _ := do(t, r, http.MethodPost, "/risk/classify", map[string]any{"policy": "astrology"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportWorkbook(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	rec, _ := do(t, r, http.MethodPost, "/operators/", operatorBody("Andes Air", 3, 4))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), export.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Andes Air", rows[1][0])
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.ExportsTotal.WithLabelValues("ok")))
}

func TestHealthCheck(t *testing.T) {
	deps := setupDeps(t)
	r := testRouter(NewHandlers(deps), deps)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status        string `json:"status"`
		SchemaVersion int    `json:"schema_version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 3, body.SchemaVersion)
}
