package models

// Game is a catalog entry users can host lobbies for.
type Game struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Icon          string  `json:"icon"`
	Logo          string  `json:"logo,omitempty"`
	DistributorID int64   `json:"distributorId"`
	PlatformIDs   []int64 `json:"platformIds"`
}

// Platform is a device family a game runs on (PC, PlayStation, ...).
type Platform struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon,omitempty"`
}

// Distributor publishes or sells games (Steam, Riot, ...).
type Distributor struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Website string `json:"website,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// GameRank is one tier of a game's competitive ladder. Lower Tier values are
// weaker ranks.
type GameRank struct {
	ID     int64  `json:"id"`
	GameID int64  `json:"gameId"`
	Name   string `json:"name"`
	Tier   int    `json:"tier"`
	Icon   string `json:"icon,omitempty"`
}
