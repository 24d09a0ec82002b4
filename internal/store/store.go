package store

// State bundles the in-memory structures, each behind its own lock. None
// of the operations on one structure calls into another while holding its
// lock, so cross-structure updates are independent atomic steps and no
// global lock ordering is needed.
type State struct {
	Rooms      *RoomRegistry
	Messages   *MessageStore
	Presence   *PresenceTracker
	Moderation *ModerationOverlay
	Gifs       *GifRegistry
	Profiles   *ProfileStore
}

// New returns a fresh State with the default room seeded. Everything here
// is process memory only; a restart loses all of it.
func New() *State {
	return &State{
		Rooms:      NewRoomRegistry(),
		Messages:   NewMessageStore(),
		Presence:   NewPresenceTracker(),
		Moderation: NewModerationOverlay(),
		Gifs:       NewGifRegistry(),
		Profiles:   NewProfileStore(),
	}
}
