// Package replay plays recorded hand pose scripts through the recognition
// pipeline without a camera.
package replay

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ayusman/handtris/internal/detector"
)

//go:embed testdata/*.json
var scriptsFS embed.FS

// Step is one camera frame of a script.
type Step struct {
	// TMs is the frame time in milliseconds from the script start.
	TMs    int64   `json:"t_ms"`
	X      float64 `json:"x"`
	Tilt   float64 `json:"tilt"`
	Closed bool    `json:"closed"`
	// Absent marks a frame with no hand in view.
	Absent bool `json:"absent"`
}

// At returns the step time relative to start.
func (s Step) At(start time.Time) time.Time {
	return start.Add(time.Duration(s.TMs) * time.Millisecond)
}

// Hands returns what a detector would report for the step.
func (s Step) Hands() []detector.HandLandmarks {
	if s.Absent {
		return nil
	}
	return []detector.HandLandmarks{detector.PalmPose(s.X, s.Tilt, s.Closed)}
}

// Script is a timed sequence of hand poses.
type Script struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// LoadScript loads a script by name, without the .json extension.
func LoadScript(name string) (*Script, error) {
	data, err := scriptsFS.ReadFile(path.Join("testdata", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}

	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode script %s: %w", name, err)
	}
	for i := 1; i < len(s.Steps); i++ {
		if s.Steps[i].TMs < s.Steps[i-1].TMs {
			return nil, fmt.Errorf("script %s: step %d goes back in time", name, i)
		}
	}
	return &s, nil
}

// Scripts lists the embedded script names.
func Scripts() ([]string, error) {
	entries, err := scriptsFS.ReadDir("testdata")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Play calls fn for every step with its absolute time, starting at start.
func (s *Script) Play(start time.Time, fn func(step Step, at time.Time)) {
	for _, step := range s.Steps {
		fn(step, step.At(start))
	}
}
