// internal/models/lobby.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LobbyStatus is the lifecycle state of a lobby as shown to browsers.
type LobbyStatus string

const (
	StatusWaiting LobbyStatus = "waiting"
	StatusInGame  LobbyStatus = "in-game"
	StatusFull    LobbyStatus = "full"
)

// LobbyType controls who may join without a passcode.
type LobbyType string

const (
	LobbyPublic  LobbyType = "public"
	LobbyPrivate LobbyType = "private"
)

// Valid reports whether t is one of the known lobby types.
func (t LobbyType) Valid() bool {
	return t == LobbyPublic || t == LobbyPrivate
}

// LobbyGame is the slice of catalog game data embedded in a lobby.
type LobbyGame struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
	Logo string `json:"logo,omitempty"`
}

// LobbyOwner identifies the user who created the lobby.
type LobbyOwner struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
}

// Player is one seat in a lobby roster. ID is the player's user id as a string.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Level    *int   `json:"level,omitempty"`
	Rank     string `json:"rank,omitempty"`
}

// Lobby is the read-only view model handed to browsers and the lobby card.
// Players are kept in join order and CurrentSize always equals len(Players)
// once the lobby has passed through a repository.
type Lobby struct {
	ID            int64       `json:"id"`
	Game          LobbyGame   `json:"game"`
	Owner         LobbyOwner  `json:"owner"`
	Players       []Player    `json:"players,omitempty"`
	Mode          string      `json:"mode"`
	Region        string      `json:"region"`
	CurrentSize   int         `json:"currentSize"`
	MaxSize       int         `json:"maxSize"`
	MinRank       string      `json:"minRank"`
	MaxRank       string      `json:"maxRank"`
	IsMicRequired bool        `json:"isMicRequired"`
	Type          LobbyType   `json:"type"`
	Status        LobbyStatus `json:"status"`
	Note          string      `json:"note,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	Tags          []string    `json:"tags,omitempty"`

	// PasscodeHash is the argon2id hash guarding private lobbies.
	PasscodeHash string `json:"-"`
}

// IsJoinable reports whether the lobby accepts new players right now.
func (l *Lobby) IsJoinable() bool {
	return l.Status == StatusWaiting && l.CurrentSize < l.MaxSize
}

// HasPlayer reports whether userID already holds a seat.
func (l *Lobby) HasPlayer(userID string) bool {
	for _, p := range l.Players {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand lobbies across goroutines.
func (l *Lobby) Clone() *Lobby {
	c := *l
	if l.Players != nil {
		c.Players = make([]Player, len(l.Players))
		for i, p := range l.Players {
			c.Players[i] = p
			if p.Level != nil {
				lvl := *p.Level
				c.Players[i].Level = &lvl
			}
		}
	}
	if l.Tags != nil {
		c.Tags = append([]string(nil), l.Tags...)
	}
	return &c
}
