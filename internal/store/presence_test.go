package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-datskov/chat67/internal/models"
)

func TestTouchCreatesAndRefreshes(t *testing.T) {
	tr := NewPresenceTracker()
	now := time.Now()

	geo := models.Geo{Country: "Germany", City: "Berlin"}
	tr.Touch("alice", "1.2.3.4", "general", "test-agent", geo, now)

	require.True(t, tr.Has("alice"))
	users := tr.ListInRoom("general")
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "Berlin", users[0].Geo.City)

	// Moves room on refresh; geo stays from first sight.
	tr.Touch("alice", "1.2.3.4", "dev-talk", "", models.UnknownGeo(), now.Add(time.Second))
	assert.Empty(t, tr.ListInRoom("general"))
	users = tr.ListInRoom("dev-talk")
	require.Len(t, users, 1)
	assert.Equal(t, "Berlin", users[0].Geo.City)
}

func TestTouchLastSeenIsMonotonic(t *testing.T) {
	tr := NewPresenceTracker()
	now := time.Now()

	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), now)
	// A delayed heartbeat must not rewind lastSeen.
	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), now.Add(-time.Minute))

	all := tr.All()
	require.Len(t, all, 1)
	assert.Equal(t, now, all[0].LastSeen)
}

func TestTypingExpiresWithoutStopCall(t *testing.T) {
	tr := NewPresenceTracker()
	now := time.Now()

	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), now)
	tr.SetTyping("alice", "general", true, now)

	assert.Equal(t, []string{"alice"}, tr.ListTyping("general", now))
	assert.Equal(t, []string{"alice"}, tr.ListTyping("general", now.Add(TypingTTL-time.Millisecond)))
	// Readers apply the TTL; no explicit stop needed.
	assert.Empty(t, tr.ListTyping("general", now.Add(TypingTTL)))
}

func TestTypingClearAndRoomScope(t *testing.T) {
	tr := NewPresenceTracker()
	now := time.Now()

	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), now)
	tr.SetTyping("alice", "general", true, now)
	assert.Empty(t, tr.ListTyping("dev-talk", now))

	tr.SetTyping("alice", "general", false, now)
	assert.Empty(t, tr.ListTyping("general", now))

	// Typing for an untracked user is ignored.
	tr.SetTyping("ghost", "general", true, now)
	assert.Empty(t, tr.ListTyping("general", now))
}

func TestSweepInactiveExcludesCaller(t *testing.T) {
	tr := NewPresenceTracker()
	now := time.Now()
	stale := now.Add(-10 * time.Minute)

	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), stale)
	tr.Touch("bob", "5.6.7.8", "general", "", models.UnknownGeo(), stale)
	tr.Touch("carol", "9.9.9.9", "general", "", models.UnknownGeo(), now)

	removed := tr.SweepInactive(5*time.Minute, "alice", now)
	assert.Equal(t, 1, removed)
	assert.True(t, tr.Has("alice"))
	assert.False(t, tr.Has("bob"))
	assert.True(t, tr.Has("carol"))
}

func TestSweepInactiveNoExclusion(t *testing.T) {
	tr := NewPresenceTracker()
	now := time.Now()

	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), now.Add(-20*time.Minute))
	tr.Touch("bob", "5.6.7.8", "general", "", models.UnknownGeo(), now)

	removed := tr.SweepInactive(15*time.Minute, "", now)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, tr.Count())
}

func TestRemove(t *testing.T) {
	tr := NewPresenceTracker()
	tr.Touch("alice", "1.2.3.4", "general", "", models.UnknownGeo(), time.Now())

	assert.True(t, tr.Remove("alice"))
	assert.False(t, tr.Remove("alice"))
	assert.False(t, tr.Has("alice"))
}
