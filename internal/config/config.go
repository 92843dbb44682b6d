package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the chat service.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	RedisURL    string

	// HistoryLimit bounds the initial history page served to clients.
	HistoryLimit int

	// Worker knobs for the background mention recorder.
	WorkerConcurrency int
}

// Load reads configuration from environment variables. In development it
// loads from a .env file if present; in production it panics on missing
// required URLs.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		HistoryLimit:      getEnvInt("CHAT_HISTORY_LIMIT", 50),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),
	}

	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			panic("DATABASE_URL is required in production")
		}
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
