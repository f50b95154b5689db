package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"aerosafety/rbo/internal/risk"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Every key can be set through an
// RBO_-prefixed environment variable (e.g. RBO_DB_DRIVER) or a config file.
type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string
	// TrustedProxies lists addresses or CIDRs allowed to set X-Forwarded-For
	TrustedProxies []string

	DB       DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Risk     RiskConfig
	Login    LoginConfig
	CORS     CORSConfig
	Shutdown time.Duration
}

type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	URL      string // full DSN, wins over the parts below
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file
	MaxOpen  int
	MaxIdle  int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SessionConfig struct {
	Backend      string // redis | memory
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// AdminConfig is an optional bootstrap account checked alongside the users table
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt
}

type RiskConfig struct {
	Policy              string
	ReclassifyOnStartup bool
	ReclassifyInterval  time.Duration // 0 disables the scheduled pass
}

type LoginConfig struct {
	RatePerSecond  float64
	Burst          int
	WhitelistedIPs []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout", "15s")
	v.SetDefault("trusted_proxies", []string{})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "rbo")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "rbo")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "rbo.db")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.cookie_name", "rbo_session")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "1h")

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password_hash", "")

	v.SetDefault("risk.policy", risk.PolicyExposure)
	v.SetDefault("risk.reclassify_on_startup", true)
	v.SetDefault("risk.reclassify_interval", "1h")

	v.SetDefault("login.rate_per_second", 0.2)
	v.SetDefault("login.burst", 5)
	v.SetDefault("login.whitelisted_ips", []string{})

	v.SetDefault("cors.allowed_origins", []string{"https://*", "http://localhost:8080"})
}

// Load reads configuration from the optional file at path and the environment
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("RBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppEnv:         v.GetString("app_env"),
		LogLevel:       v.GetString("log_level"),
		HTTPAddr:       v.GetString("http_addr"),
		TrustedProxies: v.GetStringSlice("trusted_proxies"),
		Shutdown:       v.GetDuration("shutdown_timeout"),
		DB: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("db.driver")),
			URL:      v.GetString("db.url"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
			Path:     v.GetString("db.path"),
			MaxOpen:  v.GetInt("db.max_open"),
			MaxIdle:  v.GetInt("db.max_idle"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: SessionConfig{
			Backend:      strings.ToLower(v.GetString("session.backend")),
			TTL:          v.GetDuration("session.ttl"),
			CookieName:   v.GetString("session.cookie_name"),
			CookieSecure: v.GetBool("session.cookie_secure"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("admin.username"),
			PasswordHash: v.GetString("admin.password_hash"),
		},
		Risk: RiskConfig{
			Policy:              v.GetString("risk.policy"),
			ReclassifyOnStartup: v.GetBool("risk.reclassify_on_startup"),
			ReclassifyInterval:  v.GetDuration("risk.reclassify_interval"),
		},
		Login: LoginConfig{
			RatePerSecond:  v.GetFloat64("login.rate_per_second"),
			Burst:          v.GetInt("login.burst"),
			WhitelistedIPs: v.GetStringSlice("login.whitelisted_ips"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
	}
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("db.driver must be postgres or sqlite, got %q", c.DB.Driver))
	}

	switch c.Session.Backend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("session.backend must be redis or memory, got %q", c.Session.Backend))
	}

	if _, err := risk.PolicyByName(c.Risk.Policy); err != nil {
		errs = append(errs, err)
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt.ttl must be positive"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	if c.Risk.ReclassifyInterval < 0 {
		errs = append(errs, errors.New("risk.reclassify_interval must not be negative"))
	}

	if c.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, errors.New("jwt.secret must be at least 32 bytes in production"))
		}
		if !c.Session.CookieSecure {
			errs = append(errs, errors.New("session.cookie_secure must be enabled in production"))
		}
	}

	if (c.Admin.Username == "") != (c.Admin.PasswordHash == "") {
		errs = append(errs, errors.New("admin.username and admin.password_hash must be set together"))
	}

	return errors.Join(errs...)
}

// PostgresDSN builds the Postgres connection string
func (d DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// RedisAddr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
