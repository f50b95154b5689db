package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"aerosafety/rbo/internal/db"
	"aerosafety/rbo/internal/models/entities"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)

		// Check database
		dbStatus := "ok"
		dbDetails := deps.Config.DB.Driver + " connected"
		schemaVersion := 0
		if sqlDB, err := deps.DB.DB(); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		} else if v, err := db.SchemaVersion(ctx, deps.DB); err == nil {
			schemaVersion = v
		}
		services["database"] = entities.ServiceStatus{
			Status:  dbStatus,
			Details: dbDetails,
		}

		if deps.Redis != nil {
			redisStatus := "ok"
			redisDetails := "Redis Connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "down"
				redisDetails = err.Error()
			}
			services["redis"] = entities.ServiceStatus{
				Status:  redisStatus,
				Details: redisDetails,
			}
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services:      services,
			Status:        overallStatus,
			SchemaVersion: schemaVersion,
			RiskPolicy:    deps.Services.Operators.Policy().Name(),
			UpSince:       deps.UpSince,
			Uptime:        time.Since(deps.UpSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
