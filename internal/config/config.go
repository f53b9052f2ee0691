package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"league-platform/internal/token"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	JWTAlgorithm            token.Algorithm
	JWTSecret               string
	JWTPrivateKeyPath       string
	JWTPublicKeyPath        string
	JWTKeyID                string
	MagicLinkURL            string
	CORSOrigins             []string
	RateLimitRPM            int
	AuthRateLimitRPM        int
	LogLevel                slog.Level
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	algorithm, err := token.ParseAlgorithm(strings.ToUpper(getEnv("JWT_ALGORITHM", string(token.HS256))))
	if err != nil {
		return nil, fmt.Errorf("JWT_ALGORITHM: %w", err)
	}

	logLevel, err := ParseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              getInt32("DB_MAX_CONNS", 10),
		DBMinConns:              getInt32("DB_MIN_CONNS", 2),
		JWTAlgorithm:            algorithm,
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTPrivateKeyPath:       strings.TrimSpace(os.Getenv("JWT_PRIVATE_KEY_PATH")),
		JWTPublicKeyPath:        strings.TrimSpace(os.Getenv("JWT_PUBLIC_KEY_PATH")),
		JWTKeyID:                strings.TrimSpace(os.Getenv("JWT_KEY_ID")),
		MagicLinkURL:            getEnv("MAGIC_LINK_URL", "http://localhost:3000/auth/verify"),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 10),
		LogLevel:                logLevel,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings the server cannot start without. Absent key
// material is reported by the token codec, not here.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// KeyMaterialMissing reports whether the selected algorithm has nothing to
// sign with.
func (c *Config) KeyMaterialMissing() bool {
	switch c.JWTAlgorithm {
	case token.RS256:
		return c.JWTPrivateKeyPath == ""
	default:
		return c.JWTSecret == ""
	}
}

func ParseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt32(key string, fallback int32) int32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}

	return int32(v)
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
