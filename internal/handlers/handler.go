package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexander-datskov/chat67/internal/api/middleware"
	"github.com/alexander-datskov/chat67/internal/geo"
	"github.com/alexander-datskov/chat67/internal/media"
	"github.com/alexander-datskov/chat67/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	state    *store.State
	sessions *middleware.Sessions
	geo      *geo.Client
	media    *media.Validator
	logger   zerolog.Logger

	adminUser string
	adminHash []byte
	started   time.Time
}

// NewHandler creates a new Handler. The admin password is hashed once here
// and the plaintext is not retained.
func NewHandler(state *store.State, sessions *middleware.Sessions, geoClient *geo.Client, validator *media.Validator, logger zerolog.Logger, adminUser, adminPassword string) *Handler {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		panic("hash admin password: " + err.Error())
	}
	return &Handler{
		state:     state,
		sessions:  sessions,
		geo:       geoClient,
		media:     validator,
		logger:    logger,
		adminUser: adminUser,
		adminHash: hash,
		started:   time.Now(),
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// OK sends the plain success envelope most mutating endpoints return.
func (h *Handler) OK(w http.ResponseWriter) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// decode parses a JSON request body into dst.
func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// identity returns the authenticated identity, or nil for anonymous calls.
func identity(r *http.Request) *middleware.Identity {
	return middleware.GetIdentityFromContext(r.Context())
}

// clientIP returns the caller's real IP.
func clientIP(r *http.Request) string {
	return middleware.RealIP(r)
}
