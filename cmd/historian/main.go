// cmd/historian drains the lobby event queue in Redis into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/cache"
	"github.com/jason-s-yu/lobbyfinder/internal/config"
	"github.com/jason-s-yu/lobbyfinder/internal/database"
	"github.com/jason-s-yu/lobbyfinder/internal/historian"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger, err := config.SetupLogger(cfg)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	if cfg.DatabaseURL == "" || cfg.RedisAddr == "" {
		logger.Fatal("historian needs both DATABASE_URL (or PG_HOST) and REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	h := historian.New(rdb, database.NewEventLog(pool), cfg.LobbyEventsQueue, logger, historian.Options{
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlushDelay,
	})
	if err := h.Run(ctx); err != nil {
		logger.Errorf("historian: %v", err)
	}
}
