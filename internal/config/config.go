// Package config reads server settings from the environment.
// A .env file, if present, is loaded into the environment first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

const devSessionSecret = "dev_secret_change_me"

// Config holds every knob the server and CLI read.
type Config struct {
	Port          string
	LogLevel      string
	LogFormat     string // "json" or "console"
	Store         string // StoreMemory or StoreSQLite
	DBPath        string
	SessionSecret string // signs session tokens and seals stored state
	SessionTTL    time.Duration
	ClientOrigin  string
	CookieName    string
	Production    bool
}

// Load reads .env (if any), then the environment, applying defaults.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		Store:         getEnv("STORE", StoreMemory),
		DBPath:        getEnv("DB_PATH", "./data/cowsbulls.db"),
		SessionSecret: getEnv("SESSION_SECRET", devSessionSecret),
		SessionTTL:    time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		CookieName:    getEnv("COOKIE_NAME", "cowsbulls_session"),
		Production:    os.Getenv("NODE_ENV") == "production",
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StoreMemory, StoreSQLite)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.Production && c.SessionSecret == devSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as an int, falling back to def when unset or malformed.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
