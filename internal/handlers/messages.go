package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexander-datskov/chat67/internal/metrics"
	"github.com/alexander-datskov/chat67/internal/models"
	"github.com/alexander-datskov/chat67/internal/store"
)

// MessageDTO is a message as rendered to a polling client.
type MessageDTO struct {
	ID      string `json:"id"`
	Time    string `json:"time"` // HH:MM:SS
	User    string `json:"user"`
	Text    string `json:"text"`
	GifURL  string `json:"gif_url,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// MessagesResponse is the poll response: the new batch plus the cursor the
// client sends back on its next call.
type MessagesResponse struct {
	Messages  []MessageDTO `json:"messages"`
	LastIndex int          `json:"last_index"`
}

func toDTO(msgs []models.VisibleMessage) []MessageDTO {
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageDTO{
			ID:      m.ID,
			Time:    m.Time.Format("15:04:05"),
			User:    m.User,
			Text:    m.Text,
			GifURL:  m.GifURL,
			Deleted: m.Deleted,
		})
	}
	return out
}

// GetMessages handles the cursor-based message poll. The cursor is a
// position in the room's current buffer window; an unknown room just reads
// as empty.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = store.DefaultRoom
	}

	after := 0
	if raw := r.URL.Query().Get("after"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			after = n
		}
	}

	msgs, lastIndex := h.state.Messages.ReadSince(room, after)
	h.JSON(w, http.StatusOK, MessagesResponse{Messages: toDTO(msgs), LastIndex: lastIndex})
}

// SendRequest posts a text message.
type SendRequest struct {
	Text string `json:"text"`
	Room string `json:"room"`
}

// SendResponse acknowledges a posted message.
type SendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

// Send handles posting a text message. Text is HTML-escaped before storage.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req SendRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" || req.Room == "" {
		h.Error(w, http.StatusBadRequest, "text and room are required")
		return
	}
	if !h.state.Rooms.Exists(req.Room) {
		h.Error(w, http.StatusBadRequest, "unknown room")
		return
	}

	now := time.Now()
	h.state.Presence.Touch(id.Username, clientIP(r), req.Room, r.UserAgent(), models.UnknownGeo(), now)

	msg := models.Message{
		ID:     store.NewMessageID(),
		RoomID: req.Room,
		Time:   now,
		User:   id.Username,
		Text:   html.EscapeString(text),
	}
	h.state.Messages.Append(req.Room, msg)

	metrics.MessagesPosted.WithLabelValues("text").Inc()
	h.JSON(w, http.StatusOK, SendResponse{Status: "OK", MessageID: msg.ID})
}

// SendGifRequest shares a GIF by URL.
type SendGifRequest struct {
	URL  string `json:"url"`
	Room string `json:"room"`
}

// SendGif validates the URL serves an actual GIF before sharing it.
func (h *Handler) SendGif(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req SendGifRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	gifURL := strings.TrimSpace(req.URL)
	if gifURL == "" || req.Room == "" {
		h.Error(w, http.StatusBadRequest, "url and room are required")
		return
	}
	if !h.state.Rooms.Exists(req.Room) {
		h.Error(w, http.StatusBadRequest, "unknown room")
		return
	}

	// Network probe runs before any state mutation.
	if err := h.media.ValidateGifURL(r.Context(), gifURL); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid GIF URL")
		return
	}

	now := time.Now()
	gifID := h.state.Gifs.Add(gifURL, id.Username, now)
	h.state.Presence.Touch(id.Username, clientIP(r), req.Room, r.UserAgent(), models.UnknownGeo(), now)

	msg := models.Message{
		ID:     store.NewMessageID(),
		RoomID: req.Room,
		Time:   now,
		User:   id.Username,
		Text:   fmt.Sprintf("[GIF shared by %s]", id.Username),
		GifURL: gifURL,
	}
	h.state.Messages.Append(req.Room, msg)

	metrics.MessagesPosted.WithLabelValues("gif").Inc()
	h.logger.Debug().Str("gif_id", gifID).Str("user", id.Username).Msg("gif shared")
	h.JSON(w, http.StatusOK, SendResponse{Status: "OK", MessageID: msg.ID})
}

// DeleteMessageRequest soft-deletes one message.
type DeleteMessageRequest struct {
	MessageID string `json:"message_id"`
	Room      string `json:"room"`
}

// DeleteMessage marks a message deleted if the caller owns it or holds the
// moderator role.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req DeleteMessageRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MessageID == "" {
		h.Error(w, http.StatusBadRequest, "message_id is required")
		return
	}
	room := req.Room
	if room == "" {
		room = store.DefaultRoom
	}

	msg, ok := h.state.Messages.Lookup(room, req.MessageID)
	if !ok {
		h.Error(w, http.StatusNotFound, "message not found")
		return
	}
	if msg.User != id.Username && !id.IsAdmin {
		h.Error(w, http.StatusForbidden, "not your message")
		return
	}

	h.state.Messages.SoftDelete(room, req.MessageID)
	metrics.MessagesDeleted.Inc()
	h.OK(w)
}
