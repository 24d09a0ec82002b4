package models

import "time"

// Geo is an approximate geolocation resolved from a client IP. Lookups fail
// open: an unreachable resolver yields the "Unknown" placeholders.
type Geo struct {
	Country string  `json:"country"`
	City    string  `json:"city"`
	ISP     string  `json:"isp"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// UnknownGeo is the fail-open placeholder used when a lookup errors out.
func UnknownGeo() Geo {
	return Geo{Country: "Unknown", City: "Unknown", ISP: "Unknown"}
}

// LocalGeo is returned for loopback and RFC 1918 addresses without any
// network round trip.
func LocalGeo() Geo {
	return Geo{Country: "Local", City: "Local Network", ISP: "Private"}
}

// PresenceRecord tracks one username's live state. LastSeen and TypingSince
// only ever move forward; readers apply the typing TTL themselves.
type PresenceRecord struct {
	Username    string    `json:"username"`
	LastSeen    time.Time `json:"last_seen"`
	IP          string    `json:"ip"`
	Geo         Geo       `json:"geo"`
	Room        string    `json:"room"`
	UserAgent   string    `json:"user_agent"`
	TypingSince time.Time `json:"-"` // zero when not typing
	TypingRoom  string    `json:"-"`
}

// RoomUser is the public projection of a presence record for room listings.
type RoomUser struct {
	Username string `json:"username"`
	Geo      Geo    `json:"geo"`
}
