package store

import (
	"sync"
	"time"

	"github.com/alexander-datskov/chat67/internal/models"
)

// ModerationOverlay holds the ban sets and timed screen effects. A given
// identifier is never both banned and holding an effect in the same
// keyspace: banning clears the effect, and SetEffect refuses banned keys.
type ModerationOverlay struct {
	mu          sync.Mutex
	bannedIPs   map[string]struct{}
	bannedUsers map[string]struct{}
	ipEffects   map[string]models.Effect
	userEffects map[string]models.Effect
}

// NewModerationOverlay returns an empty overlay.
func NewModerationOverlay() *ModerationOverlay {
	return &ModerationOverlay{
		bannedIPs:   make(map[string]struct{}),
		bannedUsers: make(map[string]struct{}),
		ipEffects:   make(map[string]models.Effect),
		userEffects: make(map[string]models.Effect),
	}
}

// IsBanned reports whether either the IP or the username is banned.
func (m *ModerationOverlay) IsBanned(ip, username string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bannedIPs[ip]; ok && ip != "" {
		return true
	}
	if _, ok := m.bannedUsers[username]; ok && username != "" {
		return true
	}
	return false
}

// Ban adds an identifier to the matching ban set. Any pending effect for
// the same key is cleared: a ban supersedes an effect.
func (m *ModerationOverlay) Ban(kind models.TargetKind, identifier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case models.TargetIP:
		m.bannedIPs[identifier] = struct{}{}
		delete(m.ipEffects, identifier)
	case models.TargetUser:
		m.bannedUsers[identifier] = struct{}{}
		delete(m.userEffects, identifier)
	}
}

// Unban removes an identifier from the matching ban set and drops any
// leftover effect for the same key.
func (m *ModerationOverlay) Unban(kind models.TargetKind, identifier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case models.TargetIP:
		delete(m.bannedIPs, identifier)
		delete(m.ipEffects, identifier)
	case models.TargetUser:
		delete(m.bannedUsers, identifier)
		delete(m.userEffects, identifier)
	}
}

// MassUnban clears all four maps.
func (m *ModerationOverlay) MassUnban() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bannedIPs = make(map[string]struct{})
	m.bannedUsers = make(map[string]struct{})
	m.ipEffects = make(map[string]models.Effect)
	m.userEffects = make(map[string]models.Effect)
}

// SetEffect stores a screen effect for an identifier. durationSeconds of 0
// means no expiry. Returns false without storing when the identifier is
// currently banned, since the ban already supersedes any effect.
func (m *ModerationOverlay) SetEffect(kind models.TargetKind, identifier string, action models.EffectAction, color, appliedBy string, durationSeconds int, now time.Time) bool {
	effect := models.Effect{
		Action:    action,
		Color:     color,
		AppliedBy: appliedBy,
		AppliedAt: now,
	}
	if durationSeconds > 0 {
		effect.ExpiresAt = now.Add(time.Duration(durationSeconds) * time.Second)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case models.TargetIP:
		if _, banned := m.bannedIPs[identifier]; banned {
			return false
		}
		m.ipEffects[identifier] = effect
	case models.TargetUser:
		if _, banned := m.bannedUsers[identifier]; banned {
			return false
		}
		m.userEffects[identifier] = effect
	default:
		return false
	}
	return true
}

// ClearEffect removes a stored effect.
func (m *ModerationOverlay) ClearEffect(kind models.TargetKind, identifier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case models.TargetIP:
		delete(m.ipEffects, identifier)
	case models.TargetUser:
		delete(m.userEffects, identifier)
	}
}

// Check evaluates the poll-time moderation contract for one caller:
// banned beats effect, and the IP-keyed effect is checked before the
// username-keyed one. Expired effects are removed on the way through.
func (m *ModerationOverlay) Check(ip, username string, now time.Time) models.ModerationState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bannedIPs[ip]; ok && ip != "" {
		return models.ModerationState{Banned: true}
	}
	if _, ok := m.bannedUsers[username]; ok && username != "" {
		return models.ModerationState{Banned: true}
	}

	if ip != "" {
		if effect, ok := m.ipEffects[ip]; ok {
			if effect.Expired(now) {
				delete(m.ipEffects, ip)
			} else {
				e := effect
				return models.ModerationState{Effect: &e}
			}
		}
	}
	if username != "" {
		if effect, ok := m.userEffects[username]; ok {
			if effect.Expired(now) {
				delete(m.userEffects, username)
			} else {
				e := effect
				return models.ModerationState{Effect: &e}
			}
		}
	}
	return models.ModerationState{}
}

// CurrentEffect returns the active effect for a caller without the ban
// check, lazily expiring on the way through. IP-keyed wins when both exist.
func (m *ModerationOverlay) CurrentEffect(ip, username string, now time.Time) (models.Effect, bool) {
	state := m.Check(ip, username, now)
	if state.Banned || state.Effect == nil {
		return models.Effect{}, false
	}
	return *state.Effect, true
}

// SweepExpired drops every expired effect from both maps and returns how
// many were removed. Idempotent with the lazy expiry in Check; the
// background sweeper runs this for keys nobody is polling.
func (m *ModerationOverlay) SweepExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, effect := range m.ipEffects {
		if effect.Expired(now) {
			delete(m.ipEffects, key)
			removed++
		}
	}
	for key, effect := range m.userEffects {
		if effect.Expired(now) {
			delete(m.userEffects, key)
			removed++
		}
	}
	return removed
}

// BannedIPs returns a snapshot of the banned IP set.
func (m *ModerationOverlay) BannedIPs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.bannedIPs))
	for ip := range m.bannedIPs {
		out = append(out, ip)
	}
	return out
}

// BannedUsers returns a snapshot of the banned username set.
func (m *ModerationOverlay) BannedUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.bannedUsers))
	for user := range m.bannedUsers {
		out = append(out, user)
	}
	return out
}

// ActiveEffects returns a "key: action" summary of both effect maps.
func (m *ModerationOverlay) ActiveEffects() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.ipEffects)+len(m.userEffects))
	for ip, effect := range m.ipEffects {
		out[ip] = string(effect.Action)
	}
	for user, effect := range m.userEffects {
		out[user] = string(effect.Action)
	}
	return out
}
