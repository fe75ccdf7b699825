// Package config holds runtime settings for the CyberWise core. Values come
// from defaults overlaid with environment variables; a .env file in the
// working directory is honored when present.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// DataDir hosts the account collection and the session cache record.
	DataDir string
	// DatabaseDSN locates the SQLite kv store (vault entries + cipher key).
	DatabaseDSN string

	// Reputation-check collaborator settings.
	ReputationBaseURL string
	ReputationAPIKey  string
	ReputationTimeout time.Duration
	// ReputationRPS caps outbound reputation lookups per second.
	ReputationRPS float64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "./data"
	c.DatabaseDSN = ""
	c.ReputationBaseURL = "https://www.ipqualityscore.com/api/json"
	c.ReputationAPIKey = ""
	c.ReputationTimeout = 10 * time.Second
	c.ReputationRPS = 1
}

// Load constructs a Config: defaults, then .env (if present), then process
// environment. Later sources take precedence.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg.DataDir = getEnv("CYBERWISE_DATA_DIR", cfg.DataDir)
	cfg.DatabaseDSN = getEnv("CYBERWISE_DATABASE_DSN", cfg.DatabaseDSN)
	cfg.ReputationBaseURL = getEnv("CYBERWISE_REPUTATION_BASE_URL", cfg.ReputationBaseURL)
	cfg.ReputationAPIKey = getEnv("CYBERWISE_REPUTATION_API_KEY", cfg.ReputationAPIKey)

	if v := os.Getenv("CYBERWISE_REPUTATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReputationTimeout = d
		}
	}
	if v := os.Getenv("CYBERWISE_REPUTATION_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.ReputationRPS = f
		}
	}

	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "file:" + filepath.Join(cfg.DataDir, "cyberwise.db")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
