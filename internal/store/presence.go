package store

import (
	"sync"
	"time"

	"github.com/alexander-datskov/chat67/internal/models"
)

// TypingTTL is how long a typing flag stays visible without being refreshed.
// Writers only record the timestamp; readers apply the TTL, so no explicit
// "stop typing" call is needed for correctness.
const TypingTTL = 3 * time.Second

// PresenceTracker keeps one record per username: last activity, current
// room, connection metadata, and typing state. LastSeen is monotonic; a
// delayed heartbeat can never rewind a newer one.
type PresenceTracker struct {
	mu    sync.RWMutex
	users map[string]*models.PresenceRecord
}

// NewPresenceTracker returns an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{users: make(map[string]*models.PresenceRecord)}
}

// Touch creates or refreshes a presence record. Geo and user agent are
// captured on first sight only; later touches just advance lastSeen and
// move the user between rooms.
func (t *PresenceTracker) Touch(username, ip, room, userAgent string, geo models.Geo, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.users[username]
	if !ok {
		t.users[username] = &models.PresenceRecord{
			Username:  username,
			LastSeen:  now,
			IP:        ip,
			Geo:       geo,
			Room:      room,
			UserAgent: userAgent,
		}
		return
	}
	if now.After(rec.LastSeen) {
		rec.LastSeen = now
	}
	if room != "" {
		rec.Room = room
	}
	if ip != "" {
		rec.IP = ip
	}
}

// SetTyping records or clears the typing flag. Setting only moves the
// timestamp forward; clearing zeroes it. Unknown usernames are ignored.
func (t *PresenceTracker) SetTyping(username, room string, isTyping bool, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.users[username]
	if !ok {
		return
	}
	if !isTyping {
		rec.TypingSince = time.Time{}
		rec.TypingRoom = ""
		return
	}
	if now.After(rec.TypingSince) {
		rec.TypingSince = now
	}
	rec.TypingRoom = room
}

// ListInRoom returns the users currently placed in a room.
func (t *PresenceTracker) ListInRoom(room string) []models.RoomUser {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.RoomUser, 0)
	for _, rec := range t.users {
		if rec.Room == room {
			out = append(out, models.RoomUser{Username: rec.Username, Geo: rec.Geo})
		}
	}
	return out
}

// ListTyping returns the usernames whose typing flag for the room is still
// within the TTL at now.
func (t *PresenceTracker) ListTyping(room string, now time.Time) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0)
	for _, rec := range t.users {
		if rec.TypingRoom != room || rec.TypingSince.IsZero() {
			continue
		}
		if now.Sub(rec.TypingSince) < TypingTTL {
			out = append(out, rec.Username)
		}
	}
	return out
}

// Has reports whether a username is currently tracked.
func (t *PresenceTracker) Has(username string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.users[username]
	return ok
}

// Remove drops a record on explicit logout.
func (t *PresenceTracker) Remove(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.users[username]; !ok {
		return false
	}
	delete(t.users, username)
	return true
}

// SweepInactive removes every record whose lastSeen is older than threshold
// at now, except the named user, and returns how many were dropped. The
// heartbeat path calls this with a 5-minute threshold excluding the caller;
// the background sweeper with 15 minutes and no exclusion.
func (t *PresenceTracker) SweepInactive(threshold time.Duration, exclude string, now time.Time) int {
	cutoff := now.Add(-threshold)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for name, rec := range t.users {
		if name == exclude {
			continue
		}
		if rec.LastSeen.Before(cutoff) {
			delete(t.users, name)
			removed++
		}
	}
	return removed
}

// All returns a snapshot of every presence record.
func (t *PresenceTracker) All() []models.PresenceRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.PresenceRecord, 0, len(t.users))
	for _, rec := range t.users {
		out = append(out, *rec)
	}
	return out
}

// Count returns the number of tracked users.
func (t *PresenceTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.users)
}

// Usernames returns every tracked username.
func (t *PresenceTracker) Usernames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.users))
	for name := range t.users {
		out = append(out, name)
	}
	return out
}
