// Package config resolves external endpoints from the environment. A .env
// file is honored when present; every consumer receives an explicit struct,
// nothing at module level holds credentials or connections.
package config

import (
	"os"

	"github.com/joho/godotenv"

	"newscrawl/internal/storage"
)

// Config carries the sink endpoints for one run.
type Config struct {
	MongoURI string
	MongoDB  string
	Postgres storage.PostgresConfig
}

// Load reads the environment, falling back to local-development defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI: getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "news"),
		Postgres: storage.PostgresConfig{
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenv("POSTGRES_PORT", "5432"),
			User:     getenv("POSTGRES_USER", "postgres"),
			Password: getenv("POSTGRES_PASSWORD", ""),
			DBName:   getenv("POSTGRES_DB", "news"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
