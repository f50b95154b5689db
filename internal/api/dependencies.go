package api

import (
	"crypto/rand"
	"fmt"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/config"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/metrics"
	"aerosafety/rbo/internal/risk"
	"aerosafety/rbo/internal/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Repositories struct {
	Operators repositories.OperatorRepository
	Users     *repositories.UserRepositoryGORM
}

type Services struct {
	Operators *services.OperatorService
	Auth      *services.AuthService
	Sessions  *common.SessionService
	Tokens    *common.TokenService
}

type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Metrics  *metrics.MetricsRegistry
	Repo     *Repositories
	Services *Services
	UpSince  time.Time
}

// InitDependencies wires repositories and services. rdb may be nil when the
// memory session backend is configured.
func InitDependencies(cfg *config.Config, gdb *gorm.DB, rdb *redis.Client, m *metrics.MetricsRegistry) (*Dependencies, error) {
	policy, err := risk.PolicyByName(cfg.Risk.Policy)
	if err != nil {
		return nil, err
	}

	repos := &Repositories{
		Operators: repositories.NewInstrumentedOperatorRepository(repositories.NewOperatorRepositoryGORM(gdb), m),
		Users:     repositories.NewUserRepositoryGORM(gdb),
	}

	var store common.SessionStore
	switch cfg.Session.Backend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("session backend redis requires a redis client")
		}
		store = common.NewRedisSessionStore(rdb)
	default:
		store = common.NewMemorySessionStore(10 * time.Minute)
	}

	secret := []byte(cfg.JWT.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		logging.Warn("jwt.secret not set; generated an ephemeral key, API tokens will not survive a restart")
	}

	svcs := &Services{
		Operators: services.NewOperatorService(repos.Operators, policy, m, logging.Named("operators")).
			WithSummaryCache(common.NewCacheService(time.Minute, 5*time.Minute)),
		Auth: services.NewAuthService(repos.Users, services.BootstrapAdmin{
			Username:     cfg.Admin.Username,
			PasswordHash: cfg.Admin.PasswordHash,
		}, logging.Named("auth")),
		Sessions: common.NewSessionService(store, cfg.Session.TTL, logging.Named("sessions")),
		Tokens:   common.NewTokenService(secret, cfg.JWT.TTL),
	}

	return &Dependencies{
		Config:   cfg,
		DB:       gdb,
		Redis:    rdb,
		Metrics:  m,
		Repo:     repos,
		Services: svcs,
		UpSince:  time.Now(),
	}, nil
}
