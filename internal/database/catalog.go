package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/lobbyfinder/internal/catalog"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// Catalog serves catalog.Catalog from Postgres.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog returns a Postgres-backed catalog.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

const selectGames = `
	SELECT g.id, g.name, g.slug, g.icon, g.logo,
	       COALESCE(g.distributor_id, 0),
	       COALESCE(array_agg(gp.platform_id ORDER BY gp.platform_id)
	                FILTER (WHERE gp.platform_id IS NOT NULL), '{}')
	  FROM games g
	  LEFT JOIN game_platforms gp ON gp.game_id = g.id
`

func scanGame(row pgx.Row) (models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.Name, &g.Slug, &g.Icon, &g.Logo, &g.DistributorID, &g.PlatformIDs)
	return g, err
}

func (c *Catalog) ListGames(ctx context.Context, f catalog.GameFilter) ([]models.Game, error) {
	q := selectGames + `
	 WHERE ($1::bigint = 0 OR g.distributor_id = $1)
	   AND ($2::bigint = 0 OR EXISTS (
	         SELECT 1 FROM game_platforms p WHERE p.game_id = g.id AND p.platform_id = $2))
	   AND ($3::text = '' OR g.name ILIKE '%' || $3 || '%')
	 GROUP BY g.id
	 ORDER BY g.name
	`
	rows, err := c.pool.Query(ctx, q, f.DistributorID, f.PlatformID, f.Query)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (c *Catalog) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	g, err := scanGame(c.pool.QueryRow(ctx, selectGames+` WHERE g.id = $1 GROUP BY g.id`, id))
	if err != nil {
		return nil, notFound("game", id, err)
	}
	return &g, nil
}

func (c *Catalog) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, name, slug, icon FROM platforms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query platforms: %w", err)
	}
	defer rows.Close()

	platforms := []models.Platform{}
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Icon); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func (c *Catalog) GetPlatform(ctx context.Context, id int64) (*models.Platform, error) {
	var p models.Platform
	err := c.pool.QueryRow(ctx, `SELECT id, name, slug, icon FROM platforms WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Icon)
	if err != nil {
		return nil, notFound("platform", id, err)
	}
	return &p, nil
}

func (c *Catalog) ListDistributors(ctx context.Context) ([]models.Distributor, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, name, slug, website, logo FROM distributors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query distributors: %w", err)
	}
	defer rows.Close()

	distributors := []models.Distributor{}
	for rows.Next() {
		var d models.Distributor
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.Website, &d.Logo); err != nil {
			return nil, fmt.Errorf("scan distributor: %w", err)
		}
		distributors = append(distributors, d)
	}
	return distributors, rows.Err()
}

func (c *Catalog) GetDistributor(ctx context.Context, id int64) (*models.Distributor, error) {
	var d models.Distributor
	err := c.pool.QueryRow(ctx, `SELECT id, name, slug, website, logo FROM distributors WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Slug, &d.Website, &d.Logo)
	if err != nil {
		return nil, notFound("distributor", id, err)
	}
	return &d, nil
}

// ListGameRanks returns ErrNotFound for an unknown game.
func (c *Catalog) ListGameRanks(ctx context.Context, gameID int64) ([]models.GameRank, error) {
	var exists bool
	if err := c.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, gameID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check game %d: %w", gameID, err)
	}
	if !exists {
		return nil, catalog.ErrNotFound
	}
	return c.queryRanks(ctx, `
		SELECT id, game_id, name, tier, icon FROM game_ranks
		 WHERE game_id = $1 ORDER BY tier`, gameID)
}

func (c *Catalog) ListAllGameRanks(ctx context.Context) ([]models.GameRank, error) {
	return c.queryRanks(ctx, `SELECT id, game_id, name, tier, icon FROM game_ranks ORDER BY game_id, tier`)
}

func (c *Catalog) queryRanks(ctx context.Context, q string, args ...any) ([]models.GameRank, error) {
	rows, err := c.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query game ranks: %w", err)
	}
	defer rows.Close()

	ranks := []models.GameRank{}
	for rows.Next() {
		var r models.GameRank
		if err := rows.Scan(&r.ID, &r.GameID, &r.Name, &r.Tier, &r.Icon); err != nil {
			return nil, fmt.Errorf("scan game rank: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// SeedCatalog upserts a catalog snapshot, keeping the snapshot's ids.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool, seed catalog.Seed) error {
	return pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, d := range seed.Distributors {
			_, err := tx.Exec(ctx, `
				INSERT INTO distributors (id, name, slug, website, logo) VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET name = $2, slug = $3, website = $4, logo = $5`,
				d.ID, d.Name, d.Slug, d.Website, d.Logo)
			if err != nil {
				return fmt.Errorf("upsert distributor %d: %w", d.ID, err)
			}
		}
		for _, p := range seed.Platforms {
			_, err := tx.Exec(ctx, `
				INSERT INTO platforms (id, name, slug, icon) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET name = $2, slug = $3, icon = $4`,
				p.ID, p.Name, p.Slug, p.Icon)
			if err != nil {
				return fmt.Errorf("upsert platform %d: %w", p.ID, err)
			}
		}
		for _, g := range seed.Games {
			var distributor *int64
			if g.DistributorID != 0 {
				distributor = &g.DistributorID
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO games (id, name, slug, icon, logo, distributor_id) VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET name = $2, slug = $3, icon = $4, logo = $5, distributor_id = $6`,
				g.ID, g.Name, g.Slug, g.Icon, g.Logo, distributor)
			if err != nil {
				return fmt.Errorf("upsert game %d: %w", g.ID, err)
			}
			for _, pid := range g.PlatformIDs {
				_, err := tx.Exec(ctx, `
					INSERT INTO game_platforms (game_id, platform_id) VALUES ($1, $2)
					ON CONFLICT DO NOTHING`, g.ID, pid)
				if err != nil {
					return fmt.Errorf("link game %d to platform %d: %w", g.ID, pid, err)
				}
			}
		}
		for _, r := range seed.Ranks {
			_, err := tx.Exec(ctx, `
				INSERT INTO game_ranks (id, game_id, name, tier, icon) VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (id) DO UPDATE SET game_id = $2, name = $3, tier = $4, icon = $5`,
				r.ID, r.GameID, r.Name, r.Tier, r.Icon)
			if err != nil {
				return fmt.Errorf("upsert rank %d: %w", r.ID, err)
			}
		}
		// explicit ids leave the serial sequences behind
		for _, table := range []string{"distributors", "platforms", "games", "game_ranks"} {
			q := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), GREATEST((SELECT MAX(id) FROM %[1]s), 1))`, table)
			if _, err := tx.Exec(ctx, q); err != nil {
				return fmt.Errorf("reset %s sequence: %w", table, err)
			}
		}
		return nil
	})
}

func notFound(kind string, id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}
	return fmt.Errorf("get %s %d: %w", kind, id, err)
}
