package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// Seed is the on-disk shape of a catalog snapshot.
type Seed struct {
	Games        []models.Game        `json:"games"`
	Platforms    []models.Platform    `json:"platforms"`
	Distributors []models.Distributor `json:"distributors"`
	Ranks        []models.GameRank    `json:"ranks"`
}

// Memory is a Catalog held entirely in memory, used for local development
// and tests. The snapshot is never modified after NewMemory, so reads need
// no locking.
type Memory struct {
	seed Seed
}

// NewMemory returns a catalog serving the given snapshot.
func NewMemory(seed Seed) *Memory {
	return &Memory{seed: seed}
}

// LoadSeedFile reads a JSON snapshot from path.
func LoadSeedFile(path string) (Seed, error) {
	var seed Seed
	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("read catalog seed: %w", err)
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("decode catalog seed %s: %w", path, err)
	}
	return seed, nil
}

func (m *Memory) ListGames(_ context.Context, f GameFilter) ([]models.Game, error) {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.Game{}
	for _, g := range m.seed.Games {
		if f.DistributorID != 0 && g.DistributorID != f.DistributorID {
			continue
		}
		if f.PlatformID != 0 && !containsID(g.PlatformIDs, f.PlatformID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(g.Name), q) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetGame(_ context.Context, id int64) (*models.Game, error) {
	for _, g := range m.seed.Games {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListPlatforms(_ context.Context) ([]models.Platform, error) {
	out := append([]models.Platform{}, m.seed.Platforms...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetPlatform(_ context.Context, id int64) (*models.Platform, error) {
	for _, p := range m.seed.Platforms {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListDistributors(_ context.Context) ([]models.Distributor, error) {
	out := append([]models.Distributor{}, m.seed.Distributors...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetDistributor(_ context.Context, id int64) (*models.Distributor, error) {
	for _, d := range m.seed.Distributors {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

// ListGameRanks returns ErrNotFound for an unknown game, and an empty list
// for a known game without a ladder.
func (m *Memory) ListGameRanks(ctx context.Context, gameID int64) ([]models.GameRank, error) {
	if _, err := m.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	out := []models.GameRank{}
	for _, r := range m.seed.Ranks {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	sortRanks(out)
	return out, nil
}

func (m *Memory) ListAllGameRanks(_ context.Context) ([]models.GameRank, error) {
	out := append([]models.GameRank{}, m.seed.Ranks...)
	sortRanks(out)
	return out, nil
}

func sortRanks(ranks []models.GameRank) {
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].GameID != ranks[j].GameID {
			return ranks[i].GameID < ranks[j].GameID
		}
		return ranks[i].Tier < ranks[j].Tier
	})
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
