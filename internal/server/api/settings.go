package api

import (
	"net/http"

	"github.com/ayusman/handtris/internal/store"
)

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	store    *store.Store
	onChange func(store.Settings)
}

// NewSettingsHandler creates a SettingsHandler. onChange, when set, receives
// every saved value.
func NewSettingsHandler(s *store.Store, onChange func(store.Settings)) *SettingsHandler {
	return &SettingsHandler{store: s, onChange: onChange}
}

func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.store.Settings().Load()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load settings")
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		h.update(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// update merges the body over the stored settings, so omitted fields keep
// their values.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	if err := decodeJSON(w, r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.store.Settings().Save(settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	if h.onChange != nil {
		h.onChange(saved)
	}
	writeJSON(w, http.StatusOK, saved)
}
