package handlers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alexander-datskov/chat67/internal/store"
)

// SetUsernameRequest establishes a chat identity.
type SetUsernameRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// SetUsername handles identity creation. Banned usernames are rejected
// before any state is touched.
func (h *Handler) SetUsername(w http.ResponseWriter, r *http.Request) {
	var req SetUsernameRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if len(username) < 2 {
		h.Error(w, http.StatusBadRequest, "username must be at least 2 characters")
		return
	}

	ip := clientIP(r)
	if h.state.Moderation.IsBanned(ip, username) {
		h.Error(w, http.StatusForbidden, "this username is banned")
		return
	}

	if err := h.sessions.Issue(w, r, username, false); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	now := time.Now()
	h.state.Profiles.Init(username, strings.TrimSpace(req.Avatar), now)

	// Geo lookup happens before the presence mutation, never under a lock.
	geoData := h.geo.Lookup(r.Context(), ip)
	h.state.Presence.Touch(username, ip, store.DefaultRoom, r.UserAgent(), geoData, now)

	h.JSON(w, http.StatusOK, map[string]string{"status": "OK", "username": username})
}

// Logout drops the caller's presence record and expires the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := identity(r); id != nil && id.Username != "" {
		h.state.Presence.Remove(id.Username)
	}
	h.sessions.Clear(w, r)
	h.OK(w)
}

// AdminLoginRequest carries moderator credentials.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin authenticates a moderator and upgrades the session.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Username != h.adminUser ||
		bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password)) != nil {
		h.logger.Warn().
			Str("ip", clientIP(r)).
			Str("username", req.Username).
			Msg("failed admin login")
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.sessions.Issue(w, r, req.Username, true); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.logger.Info().Str("username", req.Username).Msg("admin logged in")
	h.OK(w)
}
