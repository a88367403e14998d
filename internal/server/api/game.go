package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/handtris/internal/app"
	"github.com/ayusman/handtris/internal/engine"
)

// Game is the session surface driven over HTTP.
type Game interface {
	Start()
	Stop()
	Pause() bool
	Resume() bool
	Do(a engine.Action) bool
	SetDifficulty(d float64) float64
	Snapshot() app.SessionSnapshot
}

// GameHandler serves /api/game and its control endpoints.
type GameHandler struct {
	game Game
}

// NewGameHandler creates a GameHandler for game.
func NewGameHandler(game Game) *GameHandler {
	return &GameHandler{game: game}
}

type actionRequest struct {
	Action engine.Action `json:"action"`
}

type actionResponse struct {
	Accepted bool                `json:"accepted"`
	Snapshot app.SessionSnapshot `json:"snapshot"`
}

type difficultyRequest struct {
	Difficulty float64 `json:"difficulty"`
}

// ServeHTTP routes:
//
//	GET  /api/game
//	POST /api/game/{start|stop|pause|resume}
//	POST /api/game/action
//	PUT  /api/game/difficulty
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/game")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, h.game.Snapshot())
	case "start", "stop", "pause", "resume":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.control(w, path)
	case "action":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.action(w, r)
	case "difficulty":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.difficulty(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *GameHandler) control(w http.ResponseWriter, op string) {
	switch op {
	case "start":
		h.game.Start()
	case "stop":
		h.game.Stop()
	case "pause":
		if !h.game.Pause() {
			writeError(w, http.StatusConflict, "Game is not running")
			return
		}
	case "resume":
		if !h.game.Resume() {
			writeError(w, http.StatusConflict, "Game is not paused")
			return
		}
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

func (h *GameHandler) action(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid action: "+err.Error())
		return
	}
	if req.Action == engine.ActionNone {
		writeError(w, http.StatusBadRequest, "Action is required")
		return
	}

	accepted := h.game.Do(req.Action)
	writeJSON(w, http.StatusOK, actionResponse{Accepted: accepted, Snapshot: h.game.Snapshot()})
}

func (h *GameHandler) difficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Difficulty <= 0 {
		writeError(w, http.StatusBadRequest, "Difficulty must be positive")
		return
	}
	h.game.SetDifficulty(req.Difficulty)
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}
