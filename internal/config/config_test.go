package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DATABASE_URL", "PG_HOST", "PG_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD",
	"PG_DATABASE", "REDIS_ADDR", "REDIS_DB", "CATALOG_CACHE_TTL", "LOBBY_EVENTS_QUEUE",
	"CATALOG_SEED", "LOG_LEVEL", "LOG_FORMAT", "TOKEN_EXPIRE_TIME", "SHUTDOWN_TIMEOUT",
	"HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "lobby_events", cfg.LobbyEventsQueue)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.HistorianFlushDelay)
}

func TestLoadBuildsPostgresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "lobby")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	t.Setenv("PG_DATABASE", "lobbyfinder")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://lobby:p%40ss@db:5432/lobbyfinder", cfg.DatabaseURL)

	t.Setenv("DATABASE_URL", "postgres://other/db")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://other/db", cfg.DatabaseURL)
}

func TestLoadTokenExpiry(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.TokenTTL)

	t.Setenv("TOKEN_EXPIRE_TIME", "90m")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)

	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "ten")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("LOG_FORMAT", "xml")
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("REDIS_DB", "x")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.RedisDB)
}

func TestSetupLogger(t *testing.T) {
	logger, err := SetupLogger(Config{LogLevel: "debug", LogFormat: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = SetupLogger(Config{LogLevel: "loud"})
	assert.Error(t, err)

	// leave the shared logger as other tests expect it
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(&logrus.TextFormatter{})
}
