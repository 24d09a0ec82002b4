package models

import "time"

// TargetKind discriminates the two moderation keyspaces. IP and username
// entries are independent; handlers must carry the kind explicitly instead
// of sniffing the identifier.
type TargetKind string

const (
	TargetIP   TargetKind = "ip"
	TargetUser TargetKind = "user"
)

// Valid reports whether k names a known keyspace.
func (k TargetKind) Valid() bool {
	return k == TargetIP || k == TargetUser
}

// EffectAction is a moderator-applied visual disruption.
type EffectAction string

const (
	EffectBlack  EffectAction = "black"
	EffectColor  EffectAction = "color"
	EffectBlink  EffectAction = "blink"
	EffectInvert EffectAction = "invert"
)

// Valid reports whether a names a known screen effect.
func (a EffectAction) Valid() bool {
	switch a {
	case EffectBlack, EffectColor, EffectBlink, EffectInvert:
		return true
	}
	return false
}

// Effect is a transient screen effect keyed by IP or username. A zero
// ExpiresAt means the effect never expires on its own.
type Effect struct {
	Action    EffectAction `json:"action"`
	Color     string       `json:"color"`
	AppliedBy string       `json:"applied_by"`
	AppliedAt time.Time    `json:"applied_at"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
}

// Remaining returns the whole seconds left before expiry, or 0 for an
// effect with no expiry.
func (e Effect) Remaining(now time.Time) int {
	if e.ExpiresAt.IsZero() {
		return 0
	}
	left := e.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return int(left.Seconds())
}

// Expired reports whether the effect's expiry has passed.
func (e Effect) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// ModerationState is the three-way result of the per-poll moderation check.
// Exactly one of the cases holds: banned, active effect, or neither.
type ModerationState struct {
	Banned bool
	Effect *Effect
}
