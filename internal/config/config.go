package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StatusValidationStrict     = "strict"
	StatusValidationPermissive = "permissive"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	DBSchema    string `mapstructure:"DB_SCHEMA"`

	RedisURL        string        `mapstructure:"REDIS_URL"`
	SlotCacheTTL    time.Duration `mapstructure:"SLOT_CACHE_TTL"`
	SlotCachePrefix string        `mapstructure:"SLOT_CACHE_PREFIX"`

	CORSOrigins    []string `mapstructure:"-"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	OTLPEndpoint   string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRate float64 `mapstructure:"OTEL_SAMPLE_RATE"`

	DayStart         string `mapstructure:"SCHEDULING_DAY_START"`
	DayEnd           string `mapstructure:"SCHEDULING_DAY_END"`
	SlotMinutes      int    `mapstructure:"SCHEDULING_SLOT_MINUTES"`
	BookingGuard     bool   `mapstructure:"SCHEDULING_BOOKING_GUARD"`
	ReleaseCancelled bool   `mapstructure:"SCHEDULING_RELEASE_CANCELLED"`
	StatusValidation string `mapstructure:"STATUS_VALIDATION"`
	BcryptCost       int    `mapstructure:"BCRYPT_COST"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA",
	"REDIS_URL", "SLOT_CACHE_TTL", "SLOT_CACHE_PREFIX",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT", "REQUEST_TIMEOUT",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLE_RATE",
	"SCHEDULING_DAY_START", "SCHEDULING_DAY_END", "SCHEDULING_SLOT_MINUTES",
	"SCHEDULING_BOOKING_GUARD", "SCHEDULING_RELEASE_CANCELLED", "STATUS_VALIDATION",
	"BCRYPT_COST",
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("SLOT_CACHE_TTL", "5m")
	v.SetDefault("SLOT_CACHE_PREFIX", "hms:slots")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("OTEL_SAMPLE_RATE", 1.0)
	v.SetDefault("SCHEDULING_DAY_START", "09:00")
	v.SetDefault("SCHEDULING_DAY_END", "17:00")
	v.SetDefault("SCHEDULING_SLOT_MINUTES", 30)
	v.SetDefault("SCHEDULING_BOOKING_GUARD", true)
	v.SetDefault("SCHEDULING_RELEASE_CANCELLED", false)
	v.SetDefault("STATUS_VALIDATION", StatusValidationStrict)
	v.SetDefault("BCRYPT_COST", 10)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StrictStatus reports whether doctor and appointment statuses are validated
// against their enums and transition table.
func (c *Config) StrictStatus() bool {
	return c.StatusValidation != StatusValidationPermissive
}

// Validate checks values that Load cannot default.
func (c *Config) Validate() error {
	if c.StatusValidation != StatusValidationStrict && c.StatusValidation != StatusValidationPermissive {
		return fmt.Errorf("STATUS_VALIDATION must be %q or %q, got %q",
			StatusValidationStrict, StatusValidationPermissive, c.StatusValidation)
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("SCHEDULING_SLOT_MINUTES must be positive, got %d", c.SlotMinutes)
	}
	start, err := time.Parse("15:04", c.DayStart)
	if err != nil {
		return fmt.Errorf("SCHEDULING_DAY_START: %w", err)
	}
	end, err := time.Parse("15:04", c.DayEnd)
	if err != nil {
		return fmt.Errorf("SCHEDULING_DAY_END: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("SCHEDULING_DAY_END (%s) must be after SCHEDULING_DAY_START (%s)", c.DayEnd, c.DayStart)
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0 and 1, got %v", c.OTelSampleRate)
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must name the front-end origin")
	}
	return nil
}
