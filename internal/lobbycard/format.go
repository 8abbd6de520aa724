package lobbycard

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jason-s-yu/lobbyfinder/internal/models"
)

// StatusColor is the color of the status dot on a card.
type StatusColor string

const (
	ColorGreen  StatusColor = "green"
	ColorYellow StatusColor = "yellow"
	ColorRed    StatusColor = "red"
	ColorGray   StatusColor = "gray"
)

// StatusColorFor maps a lobby status to its dot color. Unknown statuses get
// gray so newer servers can add states without breaking older cards.
func StatusColorFor(status models.LobbyStatus) StatusColor {
	switch status {
	case models.StatusWaiting:
		return ColorGreen
	case models.StatusInGame:
		return ColorYellow
	case models.StatusFull:
		return ColorRed
	default:
		return ColorGray
	}
}

// FormatTimeAgo renders the age of createdAt relative to now in whole
// minutes, hours or days. Future timestamps read "Just now".
func FormatTimeAgo(createdAt, now time.Time) string {
	diff := now.Sub(createdAt)
	if diff < time.Minute {
		return "Just now"
	}
	minutes := int64(diff / time.Minute)
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh ago", minutes/60)
	default:
		return fmt.Sprintf("%dd ago", minutes/1440)
	}
}

// Glyph returns the first character of s, or "?" for an empty string.
func Glyph(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return "?"
	}
	return string(r)
}
