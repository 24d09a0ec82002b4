package handlers

import (
	"net/http"

	"github.com/alexander-datskov/chat67/internal/models"
)

// RoomInfo represents one room in the list response.
type RoomInfo struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Privacy   models.Privacy `json:"privacy"`
	UserCount int            `json:"user_count"`
	CreatedBy string         `json:"created_by"`
}

// RoomListResponse represents the rooms list response.
type RoomListResponse struct {
	Rooms []RoomInfo `json:"rooms"`
}

// ListRooms returns every room in creation order with live user counts.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.state.Rooms.List()

	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomInfo{
			ID:        room.ID,
			Name:      room.Name,
			Privacy:   room.Privacy,
			UserCount: len(h.state.Presence.ListInRoom(room.ID)),
			CreatedBy: room.CreatedBy,
		})
	}

	h.JSON(w, http.StatusOK, RoomListResponse{Rooms: out})
}
