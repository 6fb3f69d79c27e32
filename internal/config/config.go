package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the discovery service.
type Config struct {
	DB        DBConfig
	Redis     RedisConfig
	TMDB      TMDBConfig
	LLM       LLMConfig
	RateLimit RateLimitConfig
	Port      string
	LogLevel  string

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string

	// StrategyTimeout bounds every catalog strategy of a recommendation request.
	StrategyTimeout time.Duration

	// AdminToken guards the admin routes. Empty accepts any bearer token.
	AdminToken string
}

// DBConfig holds PostgreSQL configuration for the genre catalog.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey    string
	BaseURL   string
	Language  string
	NetworkID int
	CacheTTL  time.Duration
	Timeout   time.Duration
	RateLimit float64
}

// LLMConfig holds the chat-completion endpoint configuration.
// Any OpenAI-compatible endpoint works; the default points at Groq.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether an API key is configured.
func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}

// RateLimitConfig bounds recommendation requests per client IP.
type RateLimitConfig struct {
	Max           int
	WindowSeconds int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_discovery"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		TMDB: TMDBConfig{
			APIKey:    getEnv("TMDB_API_KEY", ""),
			BaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			Language:  getEnv("TMDB_LANGUAGE", "en-US"),
			NetworkID: getEnvInt("TMDB_NETWORK_ID", 213),
			CacheTTL:  time.Duration(getEnvInt("TMDB_CACHE_TTL_SECONDS", 3600)) * time.Second,
			Timeout:   time.Duration(getEnvInt("TMDB_TIMEOUT_SECONDS", 10)) * time.Second,
			RateLimit: float64(getEnvInt("TMDB_RATE_LIMIT_RPS", 40)),
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLM_API_KEY", getEnv("GROQ_API_KEY", "")),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:   getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
			Timeout: time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Max:           getEnvInt("RATE_LIMIT_MAX", 30),
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Port:            getEnv("SERVER_PORT", "8080"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		StrategyTimeout: time.Duration(getEnvInt("STRATEGY_TIMEOUT_SECONDS", 8)) * time.Second,
		AdminToken:      getEnv("ADMIN_TOKEN", ""),
	}

	if cfg.TMDB.APIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
