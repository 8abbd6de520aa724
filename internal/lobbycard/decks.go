package lobbycard

import (
	"sync"
	"time"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// DefaultViewerIdle is how long a viewer's deck survives without a request.
const DefaultViewerIdle = 30 * time.Minute

type viewerDeck struct {
	deck *Deck
	seen time.Time
}

// Decks keeps one Deck per viewer. Card state such as a failed icon belongs
// to the viewer that saw it and is never shown to anyone else.
type Decks struct {
	mu        sync.Mutex
	decks     map[string]*viewerDeck
	idle      time.Duration
	lastSweep time.Time

	// Now is the clock used for idle expiry.
	Now func() time.Time
}

// NewDecks returns an empty set of viewer decks. Decks idle for longer than
// idle are dropped; zero means DefaultViewerIdle.
func NewDecks(idle time.Duration) *Decks {
	if idle <= 0 {
		idle = DefaultViewerIdle
	}
	return &Decks{
		decks: make(map[string]*viewerDeck),
		idle:  idle,
		Now:   time.Now,
	}
}

// For returns the deck of viewer, creating it on first use.
func (d *Decks) For(viewer string) *Deck {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.Now()
	d.sweep(now)
	vd, ok := d.decks[viewer]
	if !ok {
		vd = &viewerDeck{deck: NewDeck()}
		d.decks[viewer] = vd
	}
	vd.seen = now
	return vd.deck
}

// sweep drops idle decks, at most once per half idle period. Caller holds mu.
func (d *Decks) sweep(now time.Time) {
	if now.Sub(d.lastSweep) < d.idle/2 {
		return
	}
	d.lastSweep = now
	for viewer, vd := range d.decks {
		if now.Sub(vd.seen) > d.idle {
			delete(d.decks, viewer)
		}
	}
}

func (d *Decks) all() []*Deck {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Deck, 0, len(d.decks))
	for _, vd := range d.decks {
		out = append(out, vd.deck)
	}
	return out
}

// Refresh pushes new lobby data into every viewer's mounted card for it.
// Viewers without that card mounted are left alone.
func (d *Decks) Refresh(l *models.Lobby) {
	for _, deck := range d.all() {
		if _, ok := deck.Card(l.ID); ok {
			deck.Update(l)
		}
	}
}

// Unmount drops the card for id from every viewer's deck.
func (d *Decks) Unmount(id int64) {
	for _, deck := range d.all() {
		deck.Unmount(id)
	}
}

// Viewers returns the number of live viewer decks.
func (d *Decks) Viewers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.decks)
}
