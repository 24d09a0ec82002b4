package models

import "time"

// Privacy controls how a room is listed and joined.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
	PrivacyHidden  Privacy = "hidden"
)

// Valid reports whether p is one of the known privacy levels.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyHidden:
		return true
	}
	return false
}

// Room is a chat room descriptor. The ID is a slug derived from the display
// name; the message log itself lives in the MessageStore keyed by ID.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Privacy   Privacy   `json:"privacy"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
