package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	DBPath        string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration
	LogLevel      string
	LogFormat     string
	LogFile       string

	cacheTTLRaw string
}

// Load reads configuration from the environment. Variables in a .env file in
// the working directory are applied first without overriding ones already set.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "stayhaven.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		LogFile:       getEnv("LOG_FILE", ""),
		cacheTTLRaw:   getEnv("CACHE_TTL", "60s"),
	}
	cfg.CacheTTL, _ = time.ParseDuration(cfg.cacheTTLRaw)
	return cfg
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if d, err := time.ParseDuration(c.cacheTTLRaw); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL %q is not a positive duration", c.cacheTTLRaw))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.LogFormat))
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
