package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

type contextKey string

// IdentityContextKey carries the authenticated identity through the request.
const IdentityContextKey contextKey = "identity"

// SessionName is the cookie name holding the chat session.
const SessionName = "chat67_session"

// Identity is the per-request caller identity established by set-username
// or the admin login.
type Identity struct {
	Username string
	IsAdmin  bool
}

// Sessions wraps the cookie store and the middleware derived from it.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates the session layer with the given signing secret.
func NewSessions(secret string) *Sessions {
	st := sessions.NewCookieStore([]byte(secret))
	st.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: st}
}

// Identity reads the caller identity from the session cookie. A missing or
// undecodable session yields a nil identity.
func (s *Sessions) Identity(r *http.Request) *Identity {
	sess, err := s.store.Get(r, SessionName)
	if err != nil {
		return nil
	}
	username, _ := sess.Values["username"].(string)
	isAdmin, _ := sess.Values["is_admin"].(bool)
	if username == "" && !isAdmin {
		return nil
	}
	return &Identity{Username: username, IsAdmin: isAdmin}
}

// Issue writes a session cookie for the given identity.
func (s *Sessions) Issue(w http.ResponseWriter, r *http.Request, username string, isAdmin bool) error {
	sess, _ := s.store.Get(r, SessionName)
	sess.Values["username"] = username
	sess.Values["is_admin"] = isAdmin
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.store.Get(r, SessionName)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

// RequireUser rejects requests without an established username identity.
func (s *Sessions) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.Identity(r)
		if id == nil || id.Username == "" {
			jsonError(w, http.StatusUnauthorized, "no username set")
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers without the moderator role. Unauthorized
// callers get a forbidden error with no side effect.
func (s *Sessions) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.Identity(r)
		if id == nil || !id.IsAdmin {
			jsonError(w, http.StatusForbidden, "moderator privilege required")
			return
		}
		ctx := context.WithValue(r.Context(), IdentityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentityFromContext retrieves the authenticated identity, or nil.
func GetIdentityFromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(IdentityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// RealIP extracts the real client IP from proxy headers or the connection.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
