// Package config loads client configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the client needs to talk to the booking API.
type Config struct {
	// APIBaseURL is the backend base URL, no trailing slash.
	APIBaseURL string
	// ConfigDir holds the secret store and other per-user state.
	ConfigDir string
	// HTTPTimeout bounds every request issued by the gateway.
	HTTPTimeout time.Duration
	// AppScheme is the deep-link scheme used for payment return URLs.
	AppScheme string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present and never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  getEnv("TOURBOOK_API_URL", "http://localhost:5000"),
		ConfigDir:   getEnv("TOURBOOK_CONFIG_DIR", defaultConfigDir()),
		HTTPTimeout: getDuration("TOURBOOK_HTTP_TIMEOUT", 30*time.Second),
		AppScheme:   getEnv("TOURBOOK_APP_SCHEME", "tourbook"),
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("config: TOURBOOK_API_URL is empty")
	}
	return cfg, nil
}

func defaultConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "tourbook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tourbook")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
