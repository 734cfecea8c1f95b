package common

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `envPrefix:"DB_"`
	Pipeline PipelineConfig `envPrefix:"PIPELINE_"`
	Authz    AuthzConfig    `envPrefix:"AUTHZ_"`
	Audit    AuditConfig    `envPrefix:"AUDIT_"`
	Watch    WatchConfig    `envPrefix:"WATCH_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
	Server   ServerConfig   `envPrefix:"GRPC_"`
	Log      LogConfig      `envPrefix:"LOG_"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `env:"DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	DSN              string        `env:"URL"`
	MaxConns         int32         `env:"MAX_CONNS" envDefault:"20" validate:"gt=0"`
	MinConns         int32         `env:"MIN_CONNS" envDefault:"2"`
	MaxConnLifetime  time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime  time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DialTimeout      time.Duration `env:"DIAL_TIMEOUT" envDefault:"3s"`
	StatementTimeout time.Duration `env:"STATEMENT_TIMEOUT" envDefault:"0s"`
}

// PipelineConfig holds bulk pipeline tuning
type PipelineConfig struct {
	BatchSize      int    `env:"BATCH_SIZE" envDefault:"100" validate:"gt=0"`
	MaxRows        int    `env:"MAX_ROWS" envDefault:"5000" validate:"gt=0"`
	ResultsDir     string `env:"RESULTS_DIR" envDefault:"./results" validate:"required"`
	ReportFormat   string `env:"REPORT_FORMAT" envDefault:"csv" validate:"oneof=csv xlsx"`
	PhoneRegion    string `env:"PHONE_REGION" envDefault:"ZA" validate:"len=2"`
	MatchStrategy  string `env:"MATCH_STRATEGY" envDefault:"exclusive" validate:"oneof=exclusive independent"`
	DictionaryPath string `env:"DICTIONARY_PATH"`
}

// AuthzConfig holds role policy configuration
type AuthzConfig struct {
	PolicyPath string `env:"POLICY_PATH"`
}

// AuditConfig holds audit sink configuration
type AuditConfig struct {
	NATSURL string `env:"NATS_URL"`
	Subject string `env:"SUBJECT" envDefault:"hr.audit"`
}

// WatchConfig holds inbox watcher configuration
type WatchConfig struct {
	InboxDir string        `env:"INBOX_DIR" envDefault:"./inbox"`
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"2s"`
	Workers  int           `env:"WORKERS" envDefault:"1" validate:"gt=0"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10m"`
	AdminID  int64         `env:"ADMIN_ID"` // admin the watcher runs uploads as
	Force    bool          `env:"FORCE"`
}

// MetricsConfig holds the prometheus listener address
type MetricsConfig struct {
	Addr string `env:"ADDR"`
}

// ServerConfig holds the hrbulkd gRPC listener
type ServerConfig struct {
	Addr    string `env:"ADDR" envDefault:":8080" validate:"required"`
	AdminID int64  `env:"ADMIN_ID"` // fallback caller when a request carries no admin_id
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format string `env:"FORMAT" envDefault:"json" validate:"oneof=json text"`
}

// LoadConfig loads .env files (when present) and then environment variables.
// Variables already set in the process environment win over .env values.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", f, err)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "failed to load .env files", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "failed to parse environment", err)
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return NewAppError("CONFIG_ERROR", err.Error(), ErrInvalidInput)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	return nil
}
