package store

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/alexander-datskov/chat67/internal/models"
)

// DefaultRoom is seeded at startup and is always present.
const DefaultRoom = "general"

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify derives a room ID from its display name: lowercase, whitespace and
// underscores become hyphens, everything outside [a-z0-9-] is dropped.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer(" ", "-", "\t", "-", "_", "-").Replace(s)
	return slugStrip.ReplaceAllString(s, "")
}

// RoomRegistry is an ordered, mutex-guarded set of room descriptors.
// Creating a room whose name slugs to an existing ID silently replaces the
// prior descriptor in place; callers needing strict uniqueness must check
// Exists first.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]models.Room
	order []string
}

// NewRoomRegistry returns a registry with the default room pre-seeded.
func NewRoomRegistry() *RoomRegistry {
	r := &RoomRegistry{rooms: make(map[string]models.Room)}
	r.rooms[DefaultRoom] = models.Room{
		ID:        DefaultRoom,
		Name:      "General Chat",
		Privacy:   models.PrivacyPublic,
		CreatedBy: "system",
		CreatedAt: time.Now(),
	}
	r.order = append(r.order, DefaultRoom)
	return r
}

// Create adds a room and returns its derived ID. An empty or
// whitespace-only name is rejected; an unknown privacy falls back to public.
func (r *RoomRegistry) Create(name string, privacy models.Privacy, creator string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("room name is required")
	}
	id := Slugify(name)
	if id == "" {
		return "", fmt.Errorf("room name %q yields an empty id", name)
	}
	if !privacy.Valid() {
		privacy = models.PrivacyPublic
	}

	room := models.Room{
		ID:        id,
		Name:      name,
		Privacy:   privacy,
		CreatedBy: creator,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rooms[id]; !exists {
		r.order = append(r.order, id)
	}
	r.rooms[id] = room
	return id, nil
}

// List returns all rooms in insertion order.
func (r *RoomRegistry) List() []models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Room, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rooms[id])
	}
	return out
}

// Exists reports whether a room with the given ID is registered.
func (r *RoomRegistry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[id]
	return ok
}

// Get returns one room descriptor.
func (r *RoomRegistry) Get(id string) (models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	return room, ok
}

// Count returns the number of registered rooms.
func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
