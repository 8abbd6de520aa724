// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/auth"
	"github.com/jason-s-yu/lobbyfinder/internal/cache"
	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/config"
	"github.com/jason-s-yu/lobbyfinder/internal/database"
	"github.com/jason-s-yu/lobbyfinder/internal/handlers"
	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
	"github.com/jason-s-yu/lobbyfinder/internal/lobbycard"
	"github.com/jason-s-yu/lobbyfinder/internal/routes"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger, err := config.SetupLogger(cfg)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}

	// init auth keys
	if err := auth.Init(cfg.TokenTTL); err != nil {
		logger.Fatalf("auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		cat     catalog.Catalog
		repo    lobby.Repository
		history handlers.LobbyHistory
	)
	checks := map[string]handlers.HealthCheck{}

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		if cfg.CatalogSeed != "" {
			seed, err := catalog.LoadSeedFile(cfg.CatalogSeed)
			if err != nil {
				logger.Fatalf("catalog seed: %v", err)
			}
			if err := database.SeedCatalog(ctx, pool, seed); err != nil {
				logger.Fatalf("catalog seed: %v", err)
			}
			logger.Infof("seeded catalog from %s", cfg.CatalogSeed)
		}
		cat = database.NewCatalog(pool)
		repo = database.NewLobbyRepository(pool)
		history = database.NewEventLog(pool)
		checks["postgres"] = pool.Ping
	} else {
		seed := catalog.Seed{}
		if cfg.CatalogSeed != "" {
			if seed, err = catalog.LoadSeedFile(cfg.CatalogSeed); err != nil {
				logger.Fatalf("catalog seed: %v", err)
			}
		}
		cat = catalog.NewMemory(seed)
		repo = lobby.NewStore()
		logger.Warn("no database configured, lobbies are kept in memory")
	}

	feed := lobby.NewFeed(32)
	decks := lobbycard.NewDecks(lobbycard.DefaultViewerIdle)
	publishers := []lobby.Publisher{feed, handlers.DeckSync{Decks: decks}}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		cat = cachedCatalog(ctx, cat, rdb, cfg.CatalogCacheTTL, cfg.CatalogSeed != "", logger)
		publishers = append(publishers, cache.NewEventQueue(rdb, cfg.LobbyEventsQueue))
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	svc := lobby.NewService(repo, cat, logger, publishers...)
	router := routes.New(routes.Deps{
		Logger:  logger,
		Catalog: cat,
		Lobbies: handlers.NewLobbyServer(svc, decks, feed, logger),
		Checks:  checks,
		Version: version,
		History: history,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// hijacked websocket connections are not tracked by Shutdown
	server.RegisterOnShutdown(feed.Close)

	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()
	logger.Infof("Running on %s", cfg.Addr())

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("failed to serve: %v", err)
		}
		return
	case <-ctx.Done():
		logger.Info("terminating")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// cachedCatalog wraps cat with the Redis read-through cache. When the
// catalog was just seeded, entries cached by an earlier run are dropped.
func cachedCatalog(ctx context.Context, cat catalog.Catalog, rdb *redis.Client, ttl time.Duration, seeded bool, logger *logrus.Logger) catalog.Catalog {
	cc := cache.NewCatalogCache(cat, rdb, ttl, logger)
	if seeded {
		if err := cc.Flush(ctx); err != nil {
			logger.Warnf("flush catalog cache after seeding: %v", err)
		}
	}
	return cc
}
