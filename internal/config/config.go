// Package config reads the service settings from the environment. A .env
// file in the working directory is loaded by cmd/server before Load runs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port string

	// DatabaseURL is empty when no Postgres is configured; the server then
	// runs with the in-memory catalog and lobby store.
	DatabaseURL string

	RedisAddr string
	RedisDB   int

	CatalogCacheTTL  time.Duration
	LobbyEventsQueue string
	CatalogSeed      string

	LogLevel  string
	LogFormat string

	// TokenTTL of zero means tokens never expire.
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration

	HistorianBatchSize  int
	HistorianFlushDelay time.Duration
}

// Load reads the configuration from environment variables.
//   - PORT (default "8080")
//   - DATABASE_URL, or PG_HOST/PG_PORT/POSTGRES_USER/POSTGRES_PASSWORD/PG_DATABASE
//   - REDIS_ADDR (empty disables Redis), REDIS_DB (default 0)
//   - CATALOG_CACHE_TTL (default 5m), LOBBY_EVENTS_QUEUE (default "lobby_events")
//   - CATALOG_SEED, path to a JSON catalog for the in-memory catalog
//   - LOG_LEVEL (default "info"), LOG_FORMAT ("text" or "json")
//   - TOKEN_EXPIRE_TIME ("never" or a duration, default 24h)
//   - SHUTDOWN_TIMEOUT (default 10s)
//   - HISTORIAN_BATCH_SIZE (default 20), HISTORIAN_FLUSH_MS (default 500)
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      databaseURL(),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		LobbyEventsQueue: getEnv("LOBBY_EVENTS_QUEUE", "lobby_events"),
		CatalogSeed:      os.Getenv("CATALOG_SEED"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "text")),

		HistorianBatchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}

	var err error
	if cfg.CatalogCacheTTL, err = getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	switch exp := strings.ToLower(os.Getenv("TOKEN_EXPIRE_TIME")); exp {
	case "never":
		cfg.TokenTTL = 0
	case "":
		cfg.TokenTTL = 24 * time.Hour
	default:
		d, err := time.ParseDuration(exp)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_EXPIRE_TIME %q", exp)
		}
		cfg.TokenTTL = d
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q, want text or json", cfg.LogFormat)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// databaseURL prefers DATABASE_URL and otherwise builds a connection string
// from the PG_* variables when a host is set.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:   host + ":" + getEnv("PG_PORT", "5432"),
		Path:   "/" + os.Getenv("PG_DATABASE"),
	}
	return u.String()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}
