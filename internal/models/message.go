package models

import "time"

// DeletedPlaceholder replaces the body of a soft-deleted message on every
// read path. The stored text is never exposed again once a message is marked.
const DeletedPlaceholder = "[Message deleted]"

// Message is a single chat message as stored in a room's log.
type Message struct {
	ID     string    `json:"id"` // 16 lowercase hex chars, unique, immutable
	RoomID string    `json:"room_id"`
	Time   time.Time `json:"time"`
	User   string    `json:"user"`
	Text   string    `json:"text"` // HTML-escaped before storage
	GifURL string    `json:"gif_url,omitempty"`
}

// VisibleMessage is a message as seen by a reader, with the deletion overlay
// already applied. Deleted messages carry the placeholder text only.
type VisibleMessage struct {
	Message
	Deleted bool `json:"deleted,omitempty"`
}
