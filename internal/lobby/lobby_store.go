// internal/lobby/lobby_store.go
package lobby

import (
	"context"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// Store keeps lobbies in memory. It provides thread-safe access for a single
// server instance and is used when no database is configured.
type Store struct {
	mu      sync.Mutex              // Protects access to the lobbies map and nextID.
	lobbies map[int64]*models.Lobby // Map of lobby ID to stored lobby.
	nextID  int64
}

// NewStore initializes and returns an empty Store.
func NewStore() *Store {
	return &Store{
		lobbies: make(map[int64]*models.Lobby),
	}
}

// Create assigns the next ID and stores a copy of l.
func (s *Store) Create(_ context.Context, l *models.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	l.ID = s.nextID
	l.CurrentSize = len(l.Players)
	s.lobbies[l.ID] = l.Clone()
	log.Debugf("LobbyStore: added lobby %d.", l.ID)
	return nil
}

// Get retrieves a copy of a lobby by ID.
func (s *Store) Get(_ context.Context, id int64) (*models.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

// List returns copies of the matching lobbies, newest first.
func (s *Store) List(_ context.Context, f Filter) ([]models.Lobby, error) {
	s.mu.Lock()
	out := make([]models.Lobby, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		if f.Match(l) {
			out = append(out, *l.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Mutate runs fn on a copy under the store lock and swaps it in on success.
func (s *Store) Mutate(_ context.Context, id int64, fn func(l *models.Lobby) error) (*models.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.CurrentSize = len(next.Players)
	s.lobbies[id] = next
	return next.Clone(), nil
}

// Delete removes a lobby by its ID.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[id]; !exists {
		log.Warnf("LobbyStore: attempted to delete non-existent lobby %d.", id)
		return ErrNotFound
	}
	delete(s.lobbies, id)
	log.Debugf("LobbyStore: deleted lobby %d.", id)
	return nil
}
