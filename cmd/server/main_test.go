package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

func TestCachedCatalogDropsStaleEntriesAfterSeeding(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ctx := context.Background()

	old := catalog.NewMemory(catalog.Seed{Games: []models.Game{{ID: 1, Name: "Valorant"}}})
	_, err := cachedCatalog(ctx, old, rdb, time.Hour, false, logger).GetGame(ctx, 1)
	require.NoError(t, err)

	reseeded := catalog.NewMemory(catalog.Seed{Games: []models.Game{{ID: 1, Name: "VALORANT"}}})

	// without a reseed the cached copy is still served
	g, err := cachedCatalog(ctx, reseeded, rdb, time.Hour, false, logger).GetGame(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Valorant", g.Name)

	g, err = cachedCatalog(ctx, reseeded, rdb, time.Hour, true, logger).GetGame(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "VALORANT", g.Name)
}
