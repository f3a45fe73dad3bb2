package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds environment-driven configuration.
type Config struct {
	Database struct {
		URL  string // e.g., mongodb://localhost:27017
		Name string // default: timetrack
	}
	HTTP struct {
		Port        int    // default: 8000
		AllowOrigin string // CORS Access-Control-Allow-Origin, default: *
	}
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	cfg.Database.Name = os.Getenv("DATABASE_NAME")
	if cfg.Database.Name == "" {
		cfg.Database.Name = "timetrack"
	}

	cfg.HTTP.Port = 8000
	if p := os.Getenv("PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 || v > 65535 {
			return cfg, errors.New("PORT must be a valid port number")
		}
		cfg.HTTP.Port = v
	}

	cfg.HTTP.AllowOrigin = os.Getenv("CORS_ALLOW_ORIGIN")
	if cfg.HTTP.AllowOrigin == "" {
		cfg.HTTP.AllowOrigin = "*"
	}

	return cfg, nil
}
