package lobbycard

import "github.com/jason-s-yu/lobbyfinder/internal/models"

const (
	// MaxPlayerTiles is how many roster entries the card shows individually.
	MaxPlayerTiles = 4
	// MaxTags is how many tag badges the card shows before collapsing.
	MaxTags = 3

	EmptyRosterMessage = "No players joined yet"

	LabelJoin   = "Join Lobby"
	LabelFull   = "Full"
	LabelInGame = "In Game"
)

// View is everything a card displays, fully derived from one lobby at one
// instant. Templates and JSON clients read it without further logic.
type View struct {
	LobbyID int64 `json:"lobbyId"`

	Game        GameView    `json:"game"`
	ModeRegion  string      `json:"modeRegion"`
	StatusColor StatusColor `json:"statusColor"`
	Owner       OwnerView   `json:"owner"`

	Roster RosterView `json:"roster"`

	RankRange string `json:"rankRange"`
	VoiceChat bool   `json:"voiceChat"`

	Note        string   `json:"note,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	TagOverflow string   `json:"tagOverflow,omitempty"`

	Age    string     `json:"age"`
	Action ActionView `json:"action"`
}

// GameView is the game identity block. When ShowGlyph is set the icon
// failed to load and Glyph replaces it.
type GameView struct {
	Name      string `json:"name"`
	IconURL   string `json:"iconUrl,omitempty"`
	Glyph     string `json:"glyph"`
	ShowGlyph bool   `json:"showGlyph"`
}

// OwnerView is the decorative owner block.
type OwnerView struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Initial   string `json:"initial"`
}

// PlayerTile is one rendered roster entry.
type PlayerTile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Initial   string `json:"initial"`
}

// RosterView is the player section. Empty is true iff Tiles is empty.
type RosterView struct {
	Count    string       `json:"count"`
	Tiles    []PlayerTile `json:"tiles,omitempty"`
	Overflow string       `json:"overflow,omitempty"`
	Empty    bool         `json:"empty"`
	Message  string       `json:"message,omitempty"`
}

// ActionView is the footer button.
type ActionView struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

func actionFor(l *models.Lobby) ActionView {
	if l.IsJoinable() {
		return ActionView{Label: LabelJoin, Enabled: true}
	}
	if l.Status == models.StatusFull {
		return ActionView{Label: LabelFull}
	}
	return ActionView{Label: LabelInGame}
}
