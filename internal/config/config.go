package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Postgres connection
	DatabaseURL string
	DBDebug     bool

	// Auth
	APIKey string

	// Where the external converter writes rendered documents. Relative
	// rendition paths are resolved against this directory.
	ProcessedDir string

	// Largest source markup the engine will read.
	MaxSourceBytes int64
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDebug:     envBool("DB_DEBUG", false),

		APIKey: os.Getenv("DOCSTRUCT_API_KEY"),

		ProcessedDir: envOr("PROCESSED_DIR", "./storage/processed"),

		MaxSourceBytes: envInt64("MAX_SOURCE_BYTES", 52428800), // 50MB
	}

	if cfg.MaxSourceBytes <= 0 {
		cfg.MaxSourceBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOCSTRUCT_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
