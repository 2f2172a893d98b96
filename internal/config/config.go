package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the process configuration, read from the environment once at
// startup.
type Config struct {
	Env             string
	ListenAddr      string
	DatabaseURL     string
	CatalogPath     string
	RescanMode      string
	RescanInterval  time.Duration
	TrimInterval    time.Duration
	RefreshInterval time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// Load reads the environment. A missing DATABASE_URL is reported as an
// error value so callers can decide whether to fall back to the in-memory
// store; it is not fatal here.
func Load() (Config, error) {
	cfg := Config{
		Env:             getenv("APP_ENV", "development"),
		ListenAddr:      getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CatalogPath:     os.Getenv("CATALOG_PATH"),
		RescanMode:      getenv("RESCAN_MODE", "fetch"),
		RescanInterval:  getenvDuration("RESCAN_INTERVAL", 5*time.Minute),
		TrimInterval:    getenvDuration("TRIM_INTERVAL", 10*time.Minute),
		RefreshInterval: getenvDuration("REFRESH_INTERVAL", time.Hour),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}
