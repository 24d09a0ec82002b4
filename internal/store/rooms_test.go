package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-datskov/chat67/internal/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"General Chat", "general-chat"},
		{"my_room", "my-room"},
		{"Röom 42!", "rom-42"},
		{"UPPER", "upper"},
		{"a  b", "a--b"},
		{"---", "---"},
		{"日本語", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.name), "slugify %q", tc.name)
	}
}

func TestRoomRegistrySeedsGeneral(t *testing.T) {
	r := NewRoomRegistry()

	require.True(t, r.Exists(DefaultRoom))
	rooms := r.List()
	require.Len(t, rooms, 1)
	assert.Equal(t, DefaultRoom, rooms[0].ID)
	assert.Equal(t, "system", rooms[0].CreatedBy)
	assert.Equal(t, models.PrivacyPublic, rooms[0].Privacy)
}

func TestRoomRegistryCreate(t *testing.T) {
	r := NewRoomRegistry()

	id, err := r.Create("Dev Talk", models.PrivacyPrivate, "admin")
	require.NoError(t, err)
	assert.Equal(t, "dev-talk", id)

	room, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Dev Talk", room.Name)
	assert.Equal(t, models.PrivacyPrivate, room.Privacy)
	assert.Equal(t, "admin", room.CreatedBy)
}

func TestRoomRegistryRejectsEmptyName(t *testing.T) {
	r := NewRoomRegistry()

	_, err := r.Create("   ", models.PrivacyPublic, "admin")
	assert.Error(t, err)

	// A name that slugs to nothing is just as useless.
	_, err = r.Create("!!!", models.PrivacyPublic, "admin")
	assert.Error(t, err)
}

func TestRoomRegistryUnknownPrivacyFallsBackToPublic(t *testing.T) {
	r := NewRoomRegistry()

	id, err := r.Create("Lounge", models.Privacy("secret"), "admin")
	require.NoError(t, err)
	room, _ := r.Get(id)
	assert.Equal(t, models.PrivacyPublic, room.Privacy)
}

func TestRoomRegistryCollisionOverwritesInPlace(t *testing.T) {
	r := NewRoomRegistry()

	_, err := r.Create("Dev Talk", models.PrivacyPublic, "alice")
	require.NoError(t, err)
	_, err = r.Create("Games", models.PrivacyPublic, "alice")
	require.NoError(t, err)

	// Same slug, different display name and creator: silently replaces
	// the descriptor but keeps the original list position.
	id, err := r.Create("dev talk", models.PrivacyHidden, "bob")
	require.NoError(t, err)
	assert.Equal(t, "dev-talk", id)

	rooms := r.List()
	require.Len(t, rooms, 3)
	assert.Equal(t, []string{DefaultRoom, "dev-talk", "games"},
		[]string{rooms[0].ID, rooms[1].ID, rooms[2].ID})
	assert.Equal(t, "bob", rooms[1].CreatedBy)
	assert.Equal(t, models.PrivacyHidden, rooms[1].Privacy)
}
