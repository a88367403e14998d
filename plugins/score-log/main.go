// Package main provides a plugin that appends finished games to a JSON lines
// file next to the plugin, or to $HANDTRIS_SCORE_LOG when set.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event  string          `json:"event"`
	Record json.RawMessage `json:"record"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Record mirrors the game over record sent by handtris.
type Record struct {
	PlayerName string    `json:"player_name"`
	Score      uint64    `json:"score"`
	Lines      int       `json:"lines"`
	Timestamp  time.Time `json:"timestamp"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if req.Event != "game_over" {
		writeErrorResponse(fmt.Sprintf("unknown event: %s", req.Event))
		return
	}

	var rec Record
	if err := json.Unmarshal(req.Record, &rec); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to parse record: %v", err))
		return
	}

	if err := appendRecord(logPath(), rec); err != nil {
		writeErrorResponse(err.Error())
		return
	}
	writeSuccessResponse()
}

func logPath() string {
	if p := os.Getenv("HANDTRIS_SCORE_LOG"); p != "" {
		return p
	}
	return "scores.jsonl"
}

func appendRecord(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

func writeErrorResponse(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}
