package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	StoreDriver string // Optional: storage driver (sqlite, memory) (default: sqlite)

	DatabaseFile string // Optional: path to SQLite database file (default: ./regain.db)
	PepperFile   string // Optional: path to file containing the token digest pepper (default: ./pepper)
	RedisAddr    string // Optional: Redis address for cross-replica rate limiting (default: in-memory limiter)

	GrantIssuer string        // Optional: issuer claim on recovery grants (default: regain)
	GrantTTL    time.Duration // Optional: recovery grant lifetime (default: 10m)

	TokenTTL   time.Duration // Optional: recovery token lifetime (default: 15m)
	SessionTTL time.Duration // Optional: recovery session lifetime (default: 30m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 10m)

	PublicRequestsPerMinute int // Token-bucket cap for diagnostic endpoints (default: 60)
}

func LoadConfig() Config {
	return Config{
		StoreDriver:  getEnvOrDefault("REGAIN_STORE_DRIVER", "sqlite"),
		DatabaseFile: getEnvOrDefault("REGAIN_DATABASE_FILE", "regain.db"),
		PepperFile:   getEnvOrDefault("REGAIN_PEPPER_FILE", "pepper"),
		RedisAddr:    os.Getenv("REGAIN_REDIS_ADDR"),

		GrantIssuer: getEnvOrDefault("REGAIN_GRANT_ISSUER", "regain"),
		GrantTTL:    getEnvDurationOrDefault("REGAIN_GRANT_TTL", 10*time.Minute),

		TokenTTL:   getEnvDurationOrDefault("REGAIN_TOKEN_TTL", 15*time.Minute),
		SessionTTL: getEnvDurationOrDefault("REGAIN_SESSION_TTL", 30*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),

		PublicRequestsPerMinute: getEnvIntOrDefault("REGAIN_PUBLIC_RPM", 60),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Accept duration syntax ("15m", "90s") or plain integer minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
