package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alexander-datskov/chat67/internal/store"
)

// BanGuard rejects hard-banned callers before any state is touched. It runs
// after RequireUser so the identity is already in the context; the
// check-effects endpoint is deliberately not behind it, since that is the
// channel that tells a live client it has been banned.
func BanGuard(moderation *store.ModerationOverlay, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := ""
			if id := GetIdentityFromContext(r.Context()); id != nil {
				username = id.Username
			}
			ip := RealIP(r)

			if moderation.IsBanned(ip, username) {
				logger.Warn().
					Str("ip", ip).
					Str("username", username).
					Str("path", r.URL.Path).
					Msg("banned caller rejected")
				jsonError(w, http.StatusForbidden, "banned")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
