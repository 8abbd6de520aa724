// Package catalog defines read access to the games, platforms, distributors
// and rank ladders lobbies are built from.
package catalog

import (
	"context"
	"errors"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// ErrNotFound is returned when a catalog record does not exist.
var ErrNotFound = errors.New("catalog record not found")

// GameFilter narrows ListGames. Zero values match everything.
type GameFilter struct {
	PlatformID    int64  `json:"platformId,omitempty"`
	DistributorID int64  `json:"distributorId,omitempty"`
	Query         string `json:"q,omitempty"`
}

// Catalog is the read side of the game catalog. Lists are ordered by name,
// except ranks which are ordered by tier.
type Catalog interface {
	ListGames(ctx context.Context, f GameFilter) ([]models.Game, error)
	GetGame(ctx context.Context, id int64) (*models.Game, error)

	ListPlatforms(ctx context.Context) ([]models.Platform, error)
	GetPlatform(ctx context.Context, id int64) (*models.Platform, error)

	ListDistributors(ctx context.Context) ([]models.Distributor, error)
	GetDistributor(ctx context.Context, id int64) (*models.Distributor, error)

	ListGameRanks(ctx context.Context, gameID int64) ([]models.GameRank, error)
	ListAllGameRanks(ctx context.Context) ([]models.GameRank, error)
}
