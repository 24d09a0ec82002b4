package handlers

import (
	"net/http"
)

// SwitchThemeRequest stores a theme preference.
type SwitchThemeRequest struct {
	Theme string `json:"theme"`
}

// SwitchTheme stores a theme preference. Unknown themes fall back to the
// default rather than erroring.
func (h *Handler) SwitchTheme(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req SwitchThemeRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.state.Profiles.SetTheme(id.Username, req.Theme)
	h.OK(w)
}

// SwitchLayoutRequest stores a layout preference.
type SwitchLayoutRequest struct {
	Layout string `json:"layout"`
}

// SwitchLayout stores a layout preference with the same fallback behavior.
func (h *Handler) SwitchLayout(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var req SwitchLayoutRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	h.state.Profiles.SetLayout(id.Username, req.Layout)
	h.OK(w)
}
