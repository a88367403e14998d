// Package server provides the HTTP server for the Handtris game.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/handtris/internal/app"
	"github.com/ayusman/handtris/internal/capture"
	"github.com/ayusman/handtris/internal/server/api"
	"github.com/ayusman/handtris/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds how long Run waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// Game is the session surface the server needs: HTTP control plus the event
// feed for websocket clients.
type Game interface {
	api.Game
	Subscribe(fn func(app.Event)) func()
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Game      Game
	Preview   *capture.Preview

	// OnSettings receives settings saved through PUT /api/settings.
	OnSettings func(store.Settings)
}

// Server represents the HTTP server for the Handtris application.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *Hub
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	if s.config.Game != nil {
		game := api.NewGameHandler(s.config.Game)
		s.mux.Handle("/api/game", game)
		s.mux.Handle("/api/game/", game)

		s.hub = NewHub(s.config.Game)
		s.mux.Handle("/api/game/ws", s.hub)
	}

	if s.config.Store != nil {
		scores := api.NewScoresHandler(s.config.Store)
		s.mux.Handle("/api/scores", scores)
		s.mux.Handle("/api/scores/", scores)
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store, s.config.OnSettings))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the websocket hub, or nil when no game is configured.
func (s *Server) Hub() *Hub {
	return s.hub
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.hub != nil {
		response["clients"] = s.hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.hub != nil {
		s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("HTTP server stopped")
	return nil
}
