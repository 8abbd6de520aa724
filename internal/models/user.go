package models

import "github.com/google/uuid"

// User is a guest identity carried in the session token.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
}

// AsPlayer converts the user into a roster entry.
func (u User) AsPlayer() Player {
	return Player{
		ID:       u.ID.String(),
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
