package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/handtris/internal/store"
)

// maxScoreLimit caps the limit query parameter.
const maxScoreLimit = 100

// ScoresHandler serves the score history.
type ScoresHandler struct {
	store *store.Store
}

// NewScoresHandler creates a ScoresHandler backed by s.
func NewScoresHandler(s *store.Store) *ScoresHandler {
	return &ScoresHandler{store: s}
}

type listScoresResponse struct {
	Scores []*store.Score `json:"scores"`
	Total  int            `json:"total"`
}

type clearScoresResponse struct {
	Deleted int64 `json:"deleted"`
}

// ServeHTTP routes /api/scores and /api/scores/{id}.
func (h *ScoresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/scores")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ScoresHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultScoreLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxScoreLimit)
	}

	scores, err := h.store.Scores().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scores")
		return
	}
	if scores == nil {
		scores = []*store.Score{}
	}
	writeJSON(w, http.StatusOK, listScoresResponse{Scores: scores, Total: len(scores)})
}

func (h *ScoresHandler) get(w http.ResponseWriter, id string) {
	sc, err := h.store.Scores().Get(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Score not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get score")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *ScoresHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Scores().Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Score not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete score")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScoresHandler) clear(w http.ResponseWriter) {
	n, err := h.store.Scores().Clear()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear scores")
		return
	}
	writeJSON(w, http.StatusOK, clearScoresResponse{Deleted: n})
}
