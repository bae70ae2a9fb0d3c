package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers for the key-value persistence surface.
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Lifecycle    LifecycleConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"darshan-pass-service"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	Timezone              string `env:"APP_TIMEZONE" envDefault:"Asia/Kolkata"`

	location *time.Location
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"STORE_SQLITE_PATH" envDefault:"data/darshan.db"`
	KeyPrefix  string `env:"STORE_KEY_PREFIX"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"POSTGRES_DSN"`
	MaxConns       int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"POSTGRES_CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"POSTGRES_CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters and the two fixed role credentials.
type AuthConfig struct {
	JWTSecret             string `env:"AUTH_JWT_SECRET" envDefault:"dev-secret"`
	AccessTokenTTLMinutes int    `env:"AUTH_ACCESS_TOKEN_TTL_MINUTES" envDefault:"720"`
	BcryptCost            int    `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	TrusteeIdentity       string `env:"AUTH_TRUSTEE_IDENTITY" envDefault:"trusteelogin@app.com"`
	TrusteeCredential     string `env:"AUTH_TRUSTEE_CREDENTIAL" envDefault:"TRUST45332784"`
	ProIdentity           string `env:"AUTH_PRO_IDENTITY" envDefault:"proteamlogin@app.com"`
	ProCredential         string `env:"AUTH_PRO_CREDENTIAL" envDefault:"PRO4517084"`
	// EchoExpectedCredentials puts the expected identity and credential into login errors.
	// Leaks the secret; disable outside demos.
	EchoExpectedCredentials bool `env:"AUTH_ECHO_EXPECTED_CREDENTIALS" envDefault:"true"`
}

// LifecycleConfig tunes request handling.
type LifecycleConfig struct {
	EntryGate             string `env:"REQUEST_ENTRY_GATE" envDefault:"C"`
	MaxAdvanceDays        int    `env:"REQUEST_MAX_ADVANCE_DAYS" envDefault:"2"`
	StrictDeleteOwnership bool   `env:"REQUEST_STRICT_DELETE_OWNERSHIP" envDefault:"false"`
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string `env:"NOTIFY_EMAIL_FROM" envDefault:"noreply@example.com"`
	WebhookURL string `env:"NOTIFY_WEBHOOK_URL"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverRedis, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.Store.Driver)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.App.location = loc

	if cfg.Lifecycle.MaxAdvanceDays < 0 {
		return nil, fmt.Errorf("invalid REQUEST_MAX_ADVANCE_DAYS %d", cfg.Lifecycle.MaxAdvanceDays)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location is where calendar days are evaluated. Defaults to UTC before Load.
func (a AppConfig) Location() *time.Location {
	if a.location == nil {
		return time.UTC
	}
	return a.location
}

// WithLocation returns a copy of a using loc.
func (a AppConfig) WithLocation(loc *time.Location) AppConfig {
	a.location = loc
	return a
}

// IsDevelopment reports whether the service runs in development mode.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}
