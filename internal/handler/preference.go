package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/focusboard/internal/service"
)

// PreferenceHandler serves the theme switch. It is public: the login page
// is themed too.
type PreferenceHandler struct {
	prefs  *service.PreferenceService
	logger *slog.Logger
}

// NewPreferenceHandler creates a PreferenceHandler.
func NewPreferenceHandler(prefs *service.PreferenceService, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs, logger: logger}
}

// themeBody is both the request and the response of the theme endpoints.
// Theme is "" (light) or "dark-theme".
type themeBody struct {
	Theme string `json:"theme"`
}

// HandleGetTheme returns the stored theme.
//
// HTTP: GET /api/preferences/theme
func (h *PreferenceHandler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.Theme(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

// HandleSetTheme stores a theme.
//
// HTTP: PUT /api/preferences/theme
// REQUEST BODY: {"theme":"dark-theme"}
func (h *PreferenceHandler) HandleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.prefs.SetTheme(r.Context(), req.Theme); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleToggleTheme flips between light and dark.
//
// HTTP: POST /api/preferences/theme/toggle
func (h *PreferenceHandler) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.Toggle(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}
