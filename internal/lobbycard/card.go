// Package lobbycard turns a lobby view model into the card browsers render,
// and raises join/edit/delete intents for the lobby it shows.
package lobbycard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// ErrNotJoinable is returned by Card.Join when the join button is disabled.
var ErrNotJoinable = errors.New("lobby is not joinable")

// Intents receives the actions a user takes on a card. Calls are
// fire-and-forget: the card never looks at what the receiver does with them.
type Intents interface {
	OnJoin(lobbyID int64)
	OnEdit(lobbyID int64)
	OnDelete(lobbyID int64)
}

// IntentFuncs adapts plain functions to Intents. Nil fields are no-ops.
type IntentFuncs struct {
	Join   func(lobbyID int64)
	Edit   func(lobbyID int64)
	Delete func(lobbyID int64)
}

func (f IntentFuncs) OnJoin(id int64) {
	if f.Join != nil {
		f.Join(id)
	}
}

func (f IntentFuncs) OnEdit(id int64) {
	if f.Edit != nil {
		f.Edit(id)
	}
}

func (f IntentFuncs) OnDelete(id int64) {
	if f.Delete != nil {
		f.Delete(id)
	}
}

// Card is one mounted lobby card. The only state it owns is whether the game
// icon failed to load; everything else is derived from the lobby on Render.
type Card struct {
	mu      sync.Mutex
	lobby   *models.Lobby
	intents Intents

	iconFailed bool
	failedIcon string
}

// New mounts a card for lobby. A nil intents receiver ignores all actions.
func New(lobby *models.Lobby, intents Intents) *Card {
	if intents == nil {
		intents = IntentFuncs{}
	}
	return &Card{lobby: lobby.Clone(), intents: intents}
}

// SetLobby replaces the lobby shown by the card. The icon fallback stays
// latched only while the icon URL is unchanged.
func (c *Card) SetLobby(lobby *models.Lobby) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.iconFailed && c.failedIcon != lobby.Game.Icon {
		c.iconFailed = false
		c.failedIcon = ""
	}
	c.lobby = lobby.Clone()
}

// Lobby returns a copy of the lobby currently shown.
func (c *Card) Lobby() *models.Lobby {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobby.Clone()
}

// IconFailed records that the current game icon could not be loaded. The
// card shows the name glyph from then on and never retries that URL.
func (c *Card) IconFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iconFailed = true
	c.failedIcon = c.lobby.Game.Icon
}

// Render derives the card view at the given instant.
func (c *Card) Render(now time.Time) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.lobby
	showGlyph := c.iconFailed || l.Game.Icon == ""

	v := View{
		LobbyID: l.ID,
		Game: GameView{
			Name:      l.Game.Name,
			Glyph:     Glyph(l.Game.Name),
			ShowGlyph: showGlyph,
		},
		ModeRegion:  l.Mode + " • " + l.Region,
		StatusColor: StatusColorFor(l.Status),
		Owner: OwnerView{
			Username:  l.Owner.Username,
			AvatarURL: l.Owner.Avatar,
			Initial:   Glyph(l.Owner.Username),
		},
		Roster:    rosterFor(l),
		RankRange: l.MinRank + " - " + l.MaxRank,
		VoiceChat: l.IsMicRequired,
		Note:      l.Note,
		Age:       FormatTimeAgo(l.CreatedAt, now),
		Action:    actionFor(l),
	}
	if !showGlyph {
		v.Game.IconURL = l.Game.Icon
	}
	v.Tags, v.TagOverflow = tagsFor(l.Tags)
	return v
}

// Join raises OnJoin when the lobby is joinable. Otherwise the button is
// disabled and the intent is never raised.
func (c *Card) Join() error {
	c.mu.Lock()
	joinable := c.lobby.IsJoinable()
	id := c.lobby.ID
	c.mu.Unlock()

	if !joinable {
		return ErrNotJoinable
	}
	c.intents.OnJoin(id)
	return nil
}

// Edit raises OnEdit for the card's lobby.
func (c *Card) Edit() {
	c.mu.Lock()
	id := c.lobby.ID
	c.mu.Unlock()
	c.intents.OnEdit(id)
}

// Delete raises OnDelete for the card's lobby.
func (c *Card) Delete() {
	c.mu.Lock()
	id := c.lobby.ID
	c.mu.Unlock()
	c.intents.OnDelete(id)
}

func rosterFor(l *models.Lobby) RosterView {
	r := RosterView{Count: fmt.Sprintf("%d/%d", l.CurrentSize, l.MaxSize)}
	if len(l.Players) == 0 {
		r.Empty = true
		r.Message = EmptyRosterMessage
		return r
	}

	shown := l.Players
	if len(shown) > MaxPlayerTiles {
		shown = shown[:MaxPlayerTiles]
		r.Overflow = fmt.Sprintf("+%d more players", len(l.Players)-MaxPlayerTiles)
	}
	r.Tiles = make([]PlayerTile, len(shown))
	for i, p := range shown {
		r.Tiles[i] = PlayerTile{
			ID:        p.ID,
			Username:  p.Username,
			AvatarURL: p.Avatar,
			Initial:   Glyph(p.Username),
		}
	}
	return r
}

func tagsFor(tags []string) ([]string, string) {
	if len(tags) <= MaxTags {
		return tags, ""
	}
	return tags[:MaxTags], fmt.Sprintf("+%d", len(tags)-MaxTags)
}
