package handlers

import (
	"net/http"
	"time"

	"github.com/alexander-datskov/chat67/internal/models"
	"github.com/alexander-datskov/chat67/internal/store"
)

// Opportunistic sweep threshold applied on every heartbeat. The background
// sweeper uses the longer absolute threshold.
const heartbeatSweepAfter = 5 * time.Minute

// OnlineUsersResponse lists the users placed in one room.
type OnlineUsersResponse struct {
	Users []models.RoomUser `json:"users"`
}

// OnlineUsers returns who is currently in a room.
func (h *Handler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = store.DefaultRoom
	}
	h.JSON(w, http.StatusOK, OnlineUsersResponse{Users: h.state.Presence.ListInRoom(room)})
}

// TypingStatusResponse lists who is typing in one room right now.
type TypingStatusResponse struct {
	Typing []string `json:"typing"`
}

// TypingStatus returns the users whose typing flag is inside the TTL.
func (h *Handler) TypingStatus(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = store.DefaultRoom
	}
	h.JSON(w, http.StatusOK, TypingStatusResponse{Typing: h.state.Presence.ListTyping(room, time.Now())})
}

// TypingRequest records or clears the caller's typing flag.
type TypingRequest struct {
	Room   string `json:"room"`
	Typing bool   `json:"typing"`
}

// Typing records the typing timestamp; expiry is applied by readers, so a
// client that never sends typing=false still stops showing after the TTL.
func (h *Handler) Typing(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req TypingRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room := req.Room
	if room == "" {
		room = store.DefaultRoom
	}

	h.state.Presence.SetTyping(id.Username, room, req.Typing, time.Now())
	h.OK(w)
}

// UpdateActiveRequest is the presence heartbeat body.
type UpdateActiveRequest struct {
	Room string `json:"room"`
}

// UpdateActive is the presence heartbeat. It refreshes the caller's record
// and opportunistically sweeps other users idle past five minutes, never
// the caller itself.
func (h *Handler) UpdateActive(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req UpdateActiveRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room := req.Room
	if room == "" {
		room = store.DefaultRoom
	}

	now := time.Now()
	ip := clientIP(r)

	// Geo is only fetched when this heartbeat is the first sight of the
	// user, and always before the tracker lock is taken.
	geoData := models.Geo{}
	if !h.state.Presence.Has(id.Username) {
		geoData = h.geo.Lookup(r.Context(), ip)
	}
	h.state.Presence.Touch(id.Username, ip, room, r.UserAgent(), geoData, now)

	h.state.Presence.SweepInactive(heartbeatSweepAfter, id.Username, now)
	h.OK(w)
}
