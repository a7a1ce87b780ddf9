package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings. Values come from an optional YAML file,
// overridden by COURTSIDE_* environment variables (.env is loaded first when
// present).
type Config struct {
	Env  string `yaml:"env" validate:"oneof=development production"`
	Addr string `yaml:"addr" validate:"required"`

	DBPath string `yaml:"db_path" validate:"required"`

	AdminEmail    string `yaml:"admin_email" validate:"required,email"`
	AdminPassword string `yaml:"admin_password" validate:"required,min=12"`

	// Booking behavior
	HoldTTLMinutes     int `yaml:"hold_ttl_minutes" validate:"gt=0"`
	SweepIntervalSecs  int `yaml:"sweep_interval_secs" validate:"gt=0"`
	GenerateAheadDays  int `yaml:"generate_ahead_days" validate:"gt=0,lte=180"`
	SessionPriceCents  int `yaml:"session_price_cents" validate:"gt=0"`

	// Email (Resend). Empty key selects the noop sender.
	ResendKey  string `yaml:"resend_key"`
	EmailFrom  string `yaml:"email_from" validate:"required"`
	EmailReply string `yaml:"email_reply" validate:"required"`

	// CSRF secret, 64 hex chars. Required in production.
	CSRFKey string `yaml:"csrf_key"`
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Env:               "development",
		Addr:              ":8080",
		DBPath:            "courtside.db",
		AdminEmail:        "admin@courtsideacademy.nz",
		AdminPassword:     "Drop shot boast",
		HoldTTLMinutes:    20,
		SweepIntervalSecs: 60,
		GenerateAheadDays: 30,
		SessionPriceCents: 6500,
		EmailFrom:         "Courtside Academy <noreply@courtsideacademy.nz>",
		EmailReply:        "info@courtsideacademy.nz",
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides, then validation.
// PRE: path is "" or points to a readable YAML file
// POST: Returns a validated Config or an error
func Load(path string) (Config, error) {
	// Missing .env is fine; explicit settings still apply.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Env == "production" && cfg.CSRFKey == "" {
		return Config{}, fmt.Errorf("COURTSIDE_CSRF_KEY is required in production")
	}
	return cfg, nil
}

// HoldTTL returns the pending-hold lifetime as a duration.
func (c Config) HoldTTL() time.Duration {
	return time.Duration(c.HoldTTLMinutes) * time.Minute
}

// SweepInterval returns the expiry sweep cadence as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSecs) * time.Second
}

func applyEnv(cfg *Config) {
	setString(&cfg.Env, "COURTSIDE_ENV")
	setString(&cfg.Addr, "COURTSIDE_ADDR")
	setString(&cfg.DBPath, "COURTSIDE_DB_PATH")
	setString(&cfg.AdminEmail, "COURTSIDE_ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "COURTSIDE_ADMIN_PASSWORD")
	setString(&cfg.ResendKey, "COURTSIDE_RESEND_KEY")
	setString(&cfg.EmailFrom, "COURTSIDE_EMAIL_FROM")
	setString(&cfg.EmailReply, "COURTSIDE_EMAIL_REPLY")
	setString(&cfg.CSRFKey, "COURTSIDE_CSRF_KEY")
	setInt(&cfg.HoldTTLMinutes, "COURTSIDE_HOLD_TTL_MINUTES")
	setInt(&cfg.SweepIntervalSecs, "COURTSIDE_SWEEP_INTERVAL_SECS")
	setInt(&cfg.GenerateAheadDays, "COURTSIDE_GENERATE_AHEAD_DAYS")
	setInt(&cfg.SessionPriceCents, "COURTSIDE_SESSION_PRICE_CENTS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
