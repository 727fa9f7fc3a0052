package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string `env:"APP_ENV" validate:"required"`

	HTTPAddr string `env:"HTTP_ADDR" validate:"required"`

	// Database
	DBDriver       string `env:"DB_DRIVER" validate:"required,oneof=pgx postgres mysql sqlite3"`
	DatabaseURL    string `env:"DATABASE_URL" validate:"required"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" validate:"gte=1"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`

	// 0 leaves the deadline to the request context
	ReportQueryTimeout time.Duration `env:"REPORT_QUERY_TIMEOUT" validate:"gte=0"`

	// Redis result cache (disabled unless both are set)
	RedisURL       string        `env:"REDIS_URL"`
	ReportCacheTTL time.Duration `env:"REPORT_CACHE_TTL" validate:"gte=0"`

	// RabbitMQ (empty url = audit events stay local)
	RabbitURL      string `env:"RABBIT_URL"`
	RabbitExchange string `env:"RABBIT_EXCHANGE" validate:"required"`

	// Events waiting for the background publisher; overflow is dropped
	EventQueueSize int `env:"EVENT_QUEUE_SIZE" validate:"gte=1"`

	// Optional bearer auth on /api/reports
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" validate:"min=1"`

	// Rate limiting
	RLEnabled bool          `env:"RL_ENABLED"`
	RLLimit   int           `env:"RL_LIMIT" validate:"gte=1"`
	RLWindow  time.Duration `env:"RL_WINDOW" validate:"gt=0"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=json console"`

	HTTPReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" validate:"gt=0"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" validate:"gt=0"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" validate:"gt=0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = httpAddr()

	cfg.DBDriver = getEnv("DB_DRIVER", "pgx")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", 20)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", 10)

	cfg.ReportQueryTimeout = getDuration("REPORT_QUERY_TIMEOUT", 0)

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.ReportCacheTTL = getDuration("REPORT_CACHE_TTL", 0)

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "reports.events")
	cfg.EventQueueSize = getInt("EVENT_QUEUE_SIZE", 256)

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "")

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getInt("RL_LIMIT", 100)
	cfg.RLWindow = getDuration("RL_WINDOW", time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 20*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("missing DATABASE_URL")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, translate(err)
	}

	return cfg, nil
}

// CacheEnabled reports whether report results should be read through Redis.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != "" && c.ReportCacheTTL > 0
}

// httpAddr prefers HTTP_ADDR and falls back to a bare SERVER_PORT.
func httpAddr() string {
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		return v
	}
	if p := strings.TrimSpace(os.Getenv("SERVER_PORT")); p != "" {
		return ":" + strings.TrimPrefix(p, ":")
	}
	return ":3000"
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
