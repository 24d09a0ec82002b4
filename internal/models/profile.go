package models

import "time"

// Known theme and layout names. Rendering is entirely client-side; the
// server only remembers the preference and falls back to the default when
// asked to store an unknown value.
var (
	Themes = map[string]bool{
		"dark": true, "matrix": true, "cyberpunk": true, "ocean": true,
		"sunset": true, "forest": true, "midnight": true, "synthwave": true,
	}
	Layouts = map[string]bool{
		"compact": true, "modern": true, "bubbles": true, "minimal": true,
	}
)

const (
	DefaultTheme  = "dark"
	DefaultLayout = "modern"
)

// Profile holds a user's cosmetic preferences.
type Profile struct {
	Avatar string    `json:"avatar,omitempty"`
	Theme  string    `json:"theme"`
	Layout string    `json:"layout"`
	Joined time.Time `json:"joined"`
}

// GifRecord remembers a GIF URL shared through the send-gif endpoint.
type GifRecord struct {
	ID       string    `json:"id"` // ULID
	URL      string    `json:"url"`
	Uploader string    `json:"uploader"`
	SharedAt time.Time `json:"shared_at"`
}
