package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/lobbyfinder/internal/lobby"
	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// foreign_key_violation
const pgForeignKeyViolation = "23503"

// LobbyRepository stores lobbies in Postgres. The roster lives in a JSONB
// column so a seat change is a single row update.
type LobbyRepository struct {
	pool *pgxpool.Pool
}

// NewLobbyRepository returns a Postgres-backed lobby.Repository.
func NewLobbyRepository(pool *pgxpool.Pool) *LobbyRepository {
	return &LobbyRepository{pool: pool}
}

const selectLobby = `
	SELECT id, game_id, game_name, game_icon, game_logo,
	       owner_id, owner_username, owner_avatar,
	       players, max_size, mode, region, min_rank, max_rank,
	       is_mic_required, type, status, note, tags, passcode_hash, created_at
	  FROM lobbies
`

func scanLobby(row pgx.Row) (*models.Lobby, error) {
	var (
		l       models.Lobby
		players []byte
	)
	err := row.Scan(
		&l.ID, &l.Game.ID, &l.Game.Name, &l.Game.Icon, &l.Game.Logo,
		&l.Owner.ID, &l.Owner.Username, &l.Owner.Avatar,
		&players, &l.MaxSize, &l.Mode, &l.Region, &l.MinRank, &l.MaxRank,
		&l.IsMicRequired, &l.Type, &l.Status, &l.Note, &l.Tags, &l.PasscodeHash, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(players, &l.Players); err != nil {
		return nil, fmt.Errorf("decode players of lobby %d: %w", l.ID, err)
	}
	l.CurrentSize = len(l.Players)
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

func encodePlayers(players []models.Player) ([]byte, error) {
	if players == nil {
		players = []models.Player{}
	}
	return json.Marshal(players)
}

// Create inserts l and sets its ID.
func (r *LobbyRepository) Create(ctx context.Context, l *models.Lobby) error {
	players, err := encodePlayers(l.Players)
	if err != nil {
		return fmt.Errorf("encode players: %w", err)
	}
	q := `
	INSERT INTO lobbies (
		game_id, game_name, game_icon, game_logo,
		owner_id, owner_username, owner_avatar,
		players, current_size, max_size, mode, region, min_rank, max_rank,
		is_mic_required, type, status, note, tags, passcode_hash, created_at
	)
	VALUES ($1, $2, $3, $4,
	        $5, $6, $7,
	        $8, $9, $10, $11, $12, $13, $14,
	        $15, $16, $17, $18, $19, $20, $21)
	RETURNING id
	`
	err = pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q,
			l.Game.ID, l.Game.Name, l.Game.Icon, l.Game.Logo,
			l.Owner.ID, l.Owner.Username, l.Owner.Avatar,
			players, len(l.Players), l.MaxSize, l.Mode, l.Region, l.MinRank, l.MaxRank,
			l.IsMicRequired, l.Type, l.Status, l.Note, l.Tags, l.PasscodeHash, l.CreatedAt,
		).Scan(&l.ID)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: unknown game %d", lobby.ErrInvalid, l.Game.ID)
	}
	if err != nil {
		return fmt.Errorf("insert lobby: %w", err)
	}
	l.CurrentSize = len(l.Players)
	return nil
}

// Get fetches a lobby by ID.
func (r *LobbyRepository) Get(ctx context.Context, id int64) (*models.Lobby, error) {
	l, err := scanLobby(r.pool.QueryRow(ctx, selectLobby+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lobby.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lobby %d: %w", id, err)
	}
	return l, nil
}

// List returns matching lobbies, newest first.
func (r *LobbyRepository) List(ctx context.Context, f lobby.Filter) ([]models.Lobby, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.GameID != 0 {
		add("game_id = $%d", f.GameID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Region != "" {
		add("region = $%d", f.Region)
	}
	if f.Mode != "" {
		add("mode = $%d", f.Mode)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.JoinableOnly {
		where = append(where, "status = 'waiting'", "current_size < max_size")
	}

	q := selectLobby
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query lobbies: %w", err)
	}
	defer rows.Close()

	lobbies := []models.Lobby{}
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lobby: %w", err)
		}
		lobbies = append(lobbies, *l)
	}
	return lobbies, rows.Err()
}

// Mutate locks the row, applies fn and writes the result back in the same
// transaction.
func (r *LobbyRepository) Mutate(ctx context.Context, id int64, fn func(l *models.Lobby) error) (*models.Lobby, error) {
	var out *models.Lobby
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		l, err := scanLobby(tx.QueryRow(ctx, selectLobby+` WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return lobby.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock lobby %d: %w", id, err)
		}
		if err := fn(l); err != nil {
			return err
		}
		l.ID = id
		l.CurrentSize = len(l.Players)

		players, err := encodePlayers(l.Players)
		if err != nil {
			return fmt.Errorf("encode players: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE lobbies SET
				players = $2, current_size = $3, max_size = $4, mode = $5, region = $6,
				min_rank = $7, max_rank = $8, is_mic_required = $9, status = $10,
				note = $11, tags = $12
			WHERE id = $1`,
			id, players, l.CurrentSize, l.MaxSize, l.Mode, l.Region,
			l.MinRank, l.MaxRank, l.IsMicRequired, l.Status,
			l.Note, l.Tags,
		)
		if err != nil {
			return fmt.Errorf("update lobby %d: %w", id, err)
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a lobby row by ID.
func (r *LobbyRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lobbies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lobby %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return lobby.ErrNotFound
	}
	return nil
}
