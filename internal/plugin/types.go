// Package plugin discovers external executables and notifies them of game
// events over stdin/stdout JSON.
package plugin

import "encoding/json"

// Events a plugin can subscribe to.
const (
	EventGameOver = "game_over"
)

// Manifest describes a plugin's metadata and the events it wants.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Events       []string        `json:"events"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is written to a plugin's stdin.
type Request struct {
	Event  string          `json:"event"`
	Record json.RawMessage `json:"record,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribed to event.
func (p *Plugin) Handles(event string) bool {
	for _, e := range p.Manifest.Events {
		if e == event {
			return true
		}
	}
	return false
}
