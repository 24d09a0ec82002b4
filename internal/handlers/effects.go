package handlers

import (
	"net/http"
	"time"

	"github.com/alexander-datskov/chat67/internal/metrics"
)

// CheckEffectsRequest is the once-per-second moderation poll body.
type CheckEffectsRequest struct {
	Username string `json:"username"`
}

// EffectResponse is the three-way poll result: banned, active effect, or
// neither. This is the only channel by which moderation actions reach an
// already-connected client.
type EffectResponse struct {
	Banned   bool    `json:"banned"`
	Effect   *string `json:"effect"`
	Color    string  `json:"color,omitempty"`
	Duration int     `json:"duration,omitempty"`
}

// CheckEffects evaluates the poll-time moderation contract: ban beats
// effect, IP-keyed effect beats username-keyed effect.
func (h *Handler) CheckEffects(w http.ResponseWriter, r *http.Request) {
	var req CheckEffectsRequest
	_ = decode(r, &req) // an empty body is a valid anonymous poll

	username := req.Username
	if username == "" {
		if id := h.sessions.Identity(r); id != nil {
			username = id.Username
		}
	}

	now := time.Now()
	state := h.state.Moderation.Check(clientIP(r), username, now)

	switch {
	case state.Banned:
		metrics.EffectPolls.WithLabelValues("banned").Inc()
		h.JSON(w, http.StatusOK, EffectResponse{Banned: true})
	case state.Effect != nil:
		metrics.EffectPolls.WithLabelValues("effect").Inc()
		action := string(state.Effect.Action)
		h.JSON(w, http.StatusOK, EffectResponse{
			Banned:   false,
			Effect:   &action,
			Color:    state.Effect.Color,
			Duration: state.Effect.Remaining(now),
		})
	default:
		metrics.EffectPolls.WithLabelValues("none").Inc()
		h.JSON(w, http.StatusOK, EffectResponse{Banned: false, Effect: nil})
	}
}
