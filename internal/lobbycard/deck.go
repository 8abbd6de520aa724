package lobbycard

import (
	"sync"
	"time"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// Deck holds the mounted cards of a lobby listing, keyed by lobby id, so
// per-card state survives between renders of the same lobby.
type Deck struct {
	mu    sync.Mutex
	cards map[int64]*Card
}

// NewDeck returns an empty deck.
func NewDeck() *Deck {
	return &Deck{cards: make(map[int64]*Card)}
}

// Sync mounts a card for every lobby not yet shown and pushes the newest
// lobby data into existing cards. Cards are never unmounted by Sync because a
// filtered listing does not mean a lobby is gone; use Unmount for that.
func (d *Deck) Sync(lobbies []models.Lobby) []*Card {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*Card, 0, len(lobbies))
	for i := range lobbies {
		l := &lobbies[i]
		c, ok := d.cards[l.ID]
		if ok {
			c.SetLobby(l)
		} else {
			c = New(l, nil)
			d.cards[l.ID] = c
		}
		out = append(out, c)
	}
	return out
}

// Update pushes new data into a mounted card, mounting it if needed.
func (d *Deck) Update(l *models.Lobby) *Card {
	cards := d.Sync([]models.Lobby{*l})
	return cards[0]
}

// Card returns the mounted card for id.
func (d *Deck) Card(id int64) (*Card, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.cards[id]
	return c, ok
}

// MarkIconFailed latches the icon fallback for a mounted card. It reports
// false when no card is mounted for id.
func (d *Deck) MarkIconFailed(id int64) bool {
	c, ok := d.Card(id)
	if !ok {
		return false
	}
	c.IconFailed()
	return true
}

// Unmount drops the card for id, forgetting its icon state.
func (d *Deck) Unmount(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cards, id)
}

// Len returns the number of mounted cards.
func (d *Deck) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards)
}

// Render renders every card at now, in the order given.
func Render(cards []*Card, now time.Time) []View {
	views := make([]View, len(cards))
	for i, c := range cards {
		views[i] = c.Render(now)
	}
	return views
}
