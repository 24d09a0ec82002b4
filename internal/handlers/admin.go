package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexander-datskov/chat67/internal/metrics"
	"github.com/alexander-datskov/chat67/internal/models"
	"github.com/alexander-datskov/chat67/internal/store"
)

// CreateRoomRequest represents the room creation request.
type CreateRoomRequest struct {
	Name    string         `json:"name"`
	Privacy models.Privacy `json:"privacy"`
}

// CreateRoom registers a new room. A name slugging to an existing ID
// silently replaces that room's descriptor.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req CreateRoomRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	roomID, err := h.state.Rooms.Create(req.Name, req.Privacy, id.Username)
	if err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().Str("room", roomID).Str("by", id.Username).Msg("room created")
	h.JSON(w, http.StatusOK, map[string]string{"status": "OK", "room_id": roomID})
}

// ScreenEffectRequest applies a visual effect to an IP or username.
type ScreenEffectRequest struct {
	Type       models.TargetKind   `json:"type"`
	Identifier string              `json:"identifier"`
	Action     models.EffectAction `json:"action"`
	Color      string              `json:"color"`
	Duration   int                 `json:"duration"` // seconds; 0 = no expiry
}

// ScreenEffect stores a screen effect record. Banned targets are skipped:
// the ban already supersedes any effect.
func (h *Handler) ScreenEffect(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req ScreenEffectRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		h.Error(w, http.StatusBadRequest, "identifier is required")
		return
	}
	if !req.Type.Valid() {
		h.Error(w, http.StatusBadRequest, "type must be ip or user")
		return
	}
	if !req.Action.Valid() {
		h.Error(w, http.StatusBadRequest, "unknown effect action")
		return
	}
	if req.Duration < 0 {
		h.Error(w, http.StatusBadRequest, "duration must be non-negative")
		return
	}
	color := req.Color
	if color == "" {
		color = "#000000"
	}

	stored := h.state.Moderation.SetEffect(req.Type, req.Identifier, req.Action, color, id.Username, req.Duration, time.Now())
	if !stored {
		h.JSON(w, http.StatusOK, map[string]string{"status": "skipped", "reason": "target is banned"})
		return
	}

	metrics.EffectsApplied.WithLabelValues(string(req.Action)).Inc()
	h.logger.Info().
		Str("kind", string(req.Type)).
		Str("target", req.Identifier).
		Str("action", string(req.Action)).
		Int("duration_s", req.Duration).
		Str("by", id.Username).
		Msg("screen effect applied")
	h.OK(w)
}

// ClearEffectRequest removes a stored effect.
type ClearEffectRequest struct {
	Type       models.TargetKind `json:"type"`
	Identifier string            `json:"identifier"`
}

// ClearEffect removes an effect record for an IP or username.
func (h *Handler) ClearEffect(w http.ResponseWriter, r *http.Request) {
	var req ClearEffectRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		h.Error(w, http.StatusBadRequest, "identifier is required")
		return
	}
	if !req.Type.Valid() {
		h.Error(w, http.StatusBadRequest, "type must be ip or user")
		return
	}

	h.state.Moderation.ClearEffect(req.Type, req.Identifier)
	h.OK(w)
}

// BanRequest bans or unbans an IP or username.
type BanRequest struct {
	Type       models.TargetKind `json:"type"`
	Identifier string            `json:"identifier"`
	Reason     string            `json:"reason"`
	Ban        *bool             `json:"ban"` // omitted means ban
}

// Ban adds or removes a ban. Banning clears any pending effect for the
// same key; the action is logged for audit and can never fail downstream.
func (h *Handler) Ban(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req BanRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" {
		h.Error(w, http.StatusBadRequest, "identifier is required")
		return
	}
	if !req.Type.Valid() {
		h.Error(w, http.StatusBadRequest, "type must be ip or user")
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	shouldBan := req.Ban == nil || *req.Ban

	if shouldBan {
		h.state.Moderation.Ban(req.Type, req.Identifier)
		metrics.BansApplied.WithLabelValues(string(req.Type)).Inc()
		h.logger.Info().
			Str("kind", string(req.Type)).
			Str("target", req.Identifier).
			Str("reason", reason).
			Str("by", id.Username).
			Msg("ban applied")
	} else {
		h.state.Moderation.Unban(req.Type, req.Identifier)
		h.logger.Info().
			Str("kind", string(req.Type)).
			Str("target", req.Identifier).
			Str("by", id.Username).
			Msg("ban lifted")
	}

	h.OK(w)
}

// MassUnban clears every ban and effect at once.
func (h *Handler) MassUnban(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	h.state.Moderation.MassUnban()
	h.logger.Info().Str("by", id.Username).Msg("mass unban")
	h.OK(w)
}

// ActiveUserInfo is the admin view of one presence record.
type ActiveUserInfo struct {
	Username  string     `json:"username"`
	IP        string     `json:"ip"`
	Geo       models.Geo `json:"geo"`
	Room      string     `json:"room"`
	LastSeen  string     `json:"last_seen"`
	UserAgent string     `json:"user_agent"`
}

// ActiveUsers lists every tracked user with connection metadata.
func (h *Handler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	records := h.state.Presence.All()

	users := make([]ActiveUserInfo, 0, len(records))
	for _, rec := range records {
		ua := rec.UserAgent
		if len(ua) > 50 {
			ua = ua[:50]
		}
		users = append(users, ActiveUserInfo{
			Username:  rec.Username,
			IP:        rec.IP,
			Geo:       rec.Geo,
			Room:      rec.Room,
			LastSeen:  rec.LastSeen.Format(time.RFC3339),
			UserAgent: ua,
		})
	}

	h.JSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// DebugInfo reports store sizes and the current moderation state.
func (h *Handler) DebugInfo(w http.ResponseWriter, r *http.Request) {
	effects := h.state.Moderation.ActiveEffects()
	summary := make([]string, 0, len(effects))
	for key, action := range effects {
		summary = append(summary, fmt.Sprintf("%s: %s", key, action))
	}

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"system_stats": map[string]int{
			"total_users":    h.state.Presence.Count(),
			"total_messages": h.state.Messages.StoredCount(),
			"total_gifs":     h.state.Gifs.Count(),
			"total_rooms":    h.state.Rooms.Count(),
		},
		"banned_users":   h.state.Moderation.BannedUsers(),
		"banned_ips":     h.state.Moderation.BannedIPs(),
		"active_effects": summary,
	})
}

// ManageMessagesRequest drives the bulk message operations.
type ManageMessagesRequest struct {
	Action string `json:"action"` // delete | clear | export
	Target string `json:"target"` // author, for delete
	Room   string `json:"room"`
}

// RoomExport is one room's message dump.
type RoomExport struct {
	Room     string                  `json:"room"`
	RoomName string                  `json:"room_name"`
	Messages []models.VisibleMessage `json:"messages"`
}

// ManageMessages handles the moderation bulk operations: soft-delete all
// messages by one author, physically clear a room, or export everything.
func (h *Handler) ManageMessages(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req ManageMessagesRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	room := req.Room
	if room == "" {
		room = store.DefaultRoom
	}

	switch req.Action {
	case "delete":
		req.Target = strings.TrimSpace(req.Target)
		if req.Target == "" {
			h.Error(w, http.StatusBadRequest, "target is required")
			return
		}
		count := h.state.Messages.DeleteAllByAuthor(room, req.Target)
		h.logger.Info().Str("room", room).Str("target", req.Target).Int("count", count).Str("by", id.Username).Msg("messages bulk deleted")
		h.JSON(w, http.StatusOK, map[string]int{"deleted": count})

	case "clear":
		h.state.Messages.ClearRoom(room)
		h.logger.Info().Str("room", room).Str("by", id.Username).Msg("room cleared")
		h.OK(w)

	case "export":
		h.JSON(w, http.StatusOK, h.exportRooms())

	default:
		h.Error(w, http.StatusBadRequest, "action must be delete, clear or export")
	}
}

func (h *Handler) exportRooms() []RoomExport {
	snapshot := h.state.Messages.ExportAll()
	out := make([]RoomExport, 0, len(snapshot))
	for roomID, msgs := range snapshot {
		name := roomID
		if room, ok := h.state.Rooms.Get(roomID); ok {
			name = room.Name
		}
		out = append(out, RoomExport{Room: roomID, RoomName: name, Messages: msgs})
	}
	return out
}

// MessageUserRequest targets one user with an announcement.
type MessageUserRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// MessageUser posts a SYSTEM announcement addressed to one user into every
// room, so it is seen wherever they are polling.
func (h *Handler) MessageUser(w http.ResponseWriter, r *http.Request) {
	var req MessageUserRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Message = strings.TrimSpace(req.Message)
	if req.Username == "" || req.Message == "" {
		h.Error(w, http.StatusBadRequest, "username and message are required")
		return
	}

	h.broadcast(fmt.Sprintf("📢 To %s: [ADMIN MESSAGE] %s", req.Username, req.Message))
	h.OK(w)
}

// GlobalMessageRequest is a server-wide announcement.
type GlobalMessageRequest struct {
	Message string `json:"message"`
}

// GlobalMessage posts a SYSTEM announcement to every room.
func (h *Handler) GlobalMessage(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req GlobalMessageRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		h.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	h.broadcast(fmt.Sprintf("📢 GLOBAL ANNOUNCEMENT: %s", req.Message))
	h.logger.Info().Str("by", id.Username).Msg("global announcement posted")
	h.OK(w)
}

// broadcast appends a SYSTEM message to every registered room.
func (h *Handler) broadcast(text string) {
	now := time.Now()
	for _, room := range h.state.Rooms.List() {
		h.state.Messages.Append(room.ID, models.Message{
			ID:     store.NewMessageID(),
			RoomID: room.ID,
			Time:   now,
			User:   "SYSTEM",
			Text:   text,
		})
	}
}

// ForceReconnect applies a short red blink effect to every active user.
func (h *Handler) ForceReconnect(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	now := time.Now()
	for _, username := range h.state.Presence.Usernames() {
		h.state.Moderation.SetEffect(models.TargetUser, username, models.EffectBlink, "#ff0000", id.Username, 5, now)
	}

	h.logger.Info().Str("by", id.Username).Msg("force reconnect triggered")
	h.OK(w)
}

// ExportData returns the full state snapshot: rooms, presence, bans and
// all buffered messages.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"export_id":   uuid.NewString(),
		"timestamp":   time.Now().Format(time.RFC3339),
		"exported_by": id.Username,
		"system_stats": map[string]int{
			"active_users":   h.state.Presence.Count(),
			"banned_users":   len(h.state.Moderation.BannedUsers()),
			"banned_ips":     len(h.state.Moderation.BannedIPs()),
			"total_rooms":    h.state.Rooms.Count(),
			"total_messages": h.state.Messages.StoredCount(),
		},
		"rooms":            h.state.Rooms.List(),
		"active_users":     h.state.Presence.All(),
		"banned_users":     h.state.Moderation.BannedUsers(),
		"banned_ips":       h.state.Moderation.BannedIPs(),
		"messages_by_room": h.state.Messages.ExportAll(),
	})
}
