package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aerosafety/rbo/internal/api"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/config"
	"aerosafety/rbo/internal/db"
	"aerosafety/rbo/internal/jobs"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/metrics"
	"aerosafety/rbo/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if err := run(cfg); err != nil {
		logging.Error("server exited with error", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logging.Info("RBO starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DB.Driver,
		"session_backend", cfg.Session.Backend,
		"risk_policy", cfg.Risk.Policy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenORM(cfg.DB, cfg.AppEnv)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	if err := db.CheckSchema(ctx, gdb); err != nil {
		return err
	}
	applied, err := db.Migrate(ctx, gdb, db.Migrations)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logging.Info("Applied schema migrations", "versions", applied)
	}

	var rdb *redis.Client
	if cfg.Session.Backend == "redis" {
		rdb, err = common.NewRedisClient(ctx, cfg.Redis, logging.Named("redis"))
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(cfg, gdb, rdb, metricsReg)
	if err != nil {
		return err
	}

	if cfg.Risk.ReclassifyOnStartup {
		changed, err := deps.Services.Operators.Reclassify(ctx)
		if err != nil {
			return err
		}
		logging.Info("Risk tiers checked against active policy", "policy", cfg.Risk.Policy, "reclassified", changed)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.RegisterRoutes(deps, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Risk.ReclassifyInterval > 0 {
		job := jobs.NewReclassifyJob(deps.Services.Operators, logging.Named("reclassify"))
		g.Go(func() error {
			return job.RunScheduled(gctx, cfg.Risk.ReclassifyInterval)
		})
	}

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
