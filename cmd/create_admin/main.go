// Command create_admin seeds or resets a dashboard user.
//
//	RBO_ADMIN_PASSWORD=... create_admin -username admin
//	create_admin -reset        # drop and recreate every table first
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"aerosafety/rbo/internal/config"
	"aerosafety/rbo/internal/db"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/services"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	username := flag.String("username", "admin", "dashboard username to create or update")
	reset := flag.Bool("reset", false, "drop and recreate the schema before seeding (destroys all operators)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()

	password := os.Getenv("RBO_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("RBO_ADMIN_PASSWORD must be set")
	}

	hash, err := services.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gdb, err := db.OpenORM(cfg.DB, cfg.AppEnv)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close(gdb)

	if *reset {
		if err := db.Reset(ctx, gdb); err != nil {
			log.Fatalf("reset schema: %v", err)
		}
		logging.Warn("Schema reset", "driver", cfg.DB.Driver)
	} else if _, err := db.Migrate(ctx, gdb, db.Migrations); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Postgres goes through sqlx so the upsert is a single statement
	if cfg.DB.Driver == "postgres" {
		conn, err := db.ConnectPostgres(ctx, cfg.DB.PostgresDSN(), 10)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer conn.Close()

		row, inserted, err := repositories.NewUserRepository(conn).UpsertAdmin(ctx, *username, hash)
		if err != nil {
			log.Fatalf("upsert user: %v", err)
		}
		report(row.Username, row.ID, inserted)

		if n, err := repositories.NewUserRepository(conn).CountUsers(ctx); err == nil {
			logging.Info("Dashboard users on record", "count", n)
		}
		return
	}

	user, err := repositories.NewUserRepositoryGORM(gdb).Upsert(ctx, *username, hash)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}
	report(user.Username, user.ID, false)
}

func report(username string, id uint64, inserted bool) {
	action := "updated"
	if inserted {
		action = "created"
	}
	logging.Info("Dashboard user "+action, "username", username, "id", id)
	fmt.Printf("User %q %s (id %d)\n", username, action, id)
}
