// Package lobby owns the lobby lifecycle: creation, seats, ownership rules,
// and the events other parts of the system react to.
package lobby

import (
	"context"
	"errors"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

var (
	ErrNotFound         = errors.New("lobby not found")
	ErrNotJoinable      = errors.New("lobby is not joinable")
	ErrAlreadyJoined    = errors.New("user already joined this lobby")
	ErrNotMember        = errors.New("user is not in this lobby")
	ErrNotOwner         = errors.New("only the lobby owner can do this")
	ErrOwnerCannotLeave = errors.New("lobby owner cannot leave, delete the lobby instead")
	ErrBadPasscode      = errors.New("wrong lobby passcode")
	ErrInvalid          = errors.New("invalid lobby request")
)

// Filter narrows List. Zero values match everything.
type Filter struct {
	GameID       int64
	Status       models.LobbyStatus
	Region       string
	Mode         string
	Type         models.LobbyType
	JoinableOnly bool
	Limit        int
}

// Match reports whether l passes the filter. Limit is not considered.
func (f Filter) Match(l *models.Lobby) bool {
	if f.GameID != 0 && l.Game.ID != f.GameID {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Region != "" && l.Region != f.Region {
		return false
	}
	if f.Mode != "" && l.Mode != f.Mode {
		return false
	}
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.JoinableOnly && !l.IsJoinable() {
		return false
	}
	return true
}

// Repository persists lobbies. Implementations keep CurrentSize equal to
// len(Players) on every write and return copies the caller may modify.
type Repository interface {
	// Create stores l and assigns its ID.
	Create(ctx context.Context, l *models.Lobby) error
	Get(ctx context.Context, id int64) (*models.Lobby, error)
	// List returns matching lobbies, newest first.
	List(ctx context.Context, f Filter) ([]models.Lobby, error)
	// Mutate applies fn to the stored lobby atomically. When fn returns an
	// error nothing is written and the error is returned unchanged.
	Mutate(ctx context.Context, id int64, fn func(l *models.Lobby) error) (*models.Lobby, error)
	Delete(ctx context.Context, id int64) error
}
