package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded from the environment with
// an optional .env file on top.
type Config struct {
	HTTPAddr      string
	EngineAddress string
	MinDuration   time.Duration
	MaxDuration   time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":9000"),
		EngineAddress: getenv("ENGINE_ADDRESS", "auction-engine"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
	}

	var err error
	if cfg.MinDuration, err = getduration("AUCTION_MIN_DURATION", time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxDuration, err = getduration("AUCTION_MAX_DURATION", 30*24*time.Hour); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN builds the connection string for the settlement archive.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// ArchiveEnabled reports whether a settlement archive database is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DBHost != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return d, nil
}
