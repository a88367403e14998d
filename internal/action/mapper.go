// Package action maps classified gestures and palm position to gameplay
// actions with per-kind debounce.
package action

import (
	"time"

	"github.com/ayusman/handtris/internal/engine"
	"github.com/ayusman/handtris/internal/gesture"
)

// Config holds the mapper tunables.
type Config struct {
	// LeftMax is the highest bucket that moves left (default 4).
	LeftMax int
	// RightMin is the lowest bucket that moves right (default 7).
	RightMin int
	// Debounce suppresses a repeated move of the same kind (default 100ms).
	Debounce time.Duration
}

// DefaultConfig returns the standard mapping.
func DefaultConfig() Config {
	return Config{
		LeftMax:  4,
		RightMin: 7,
		Debounce: 100 * time.Millisecond,
	}
}

// Mapper converts gestures into at most one engine action per call. It is
// not safe for concurrent use.
type Mapper struct {
	cfg      Config
	lastKind engine.Action
	lastAt   time.Time
}

// NewMapper creates a mapper. Zero fields of cfg take defaults.
func NewMapper(cfg Config) *Mapper {
	d := DefaultConfig()
	if cfg.LeftMax <= 0 {
		cfg.LeftMax = d.LeftMax
	}
	if cfg.RightMin <= 0 {
		cfg.RightMin = d.RightMin
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = d.Debounce
	}
	return &Mapper{cfg: cfg}
}

// Reset forgets the last action.
func (m *Mapper) Reset() {
	m.lastKind = engine.ActionNone
	m.lastAt = time.Time{}
}

// Map returns the action for one classified frame. Rotations bypass the
// debounce; moves and drops repeated within Debounce return ActionNone.
func (m *Mapper) Map(g gesture.Gesture, bucket int, handPresent bool, now time.Time) engine.Action {
	if !handPresent {
		return engine.ActionNone
	}

	var a engine.Action
	switch g {
	case gesture.RotateLeft:
		m.remember(engine.ActionRotateLeft, now)
		return engine.ActionRotateLeft
	case gesture.RotateRight:
		m.remember(engine.ActionRotateRight, now)
		return engine.ActionRotateRight
	case gesture.FingersClosed:
		a = engine.ActionMoveDown
	default:
		switch {
		case bucket <= m.cfg.LeftMax:
			a = engine.ActionMoveLeft
		case bucket >= m.cfg.RightMin:
			a = engine.ActionMoveRight
		default:
			return engine.ActionNone
		}
	}

	if a == m.lastKind && !m.lastAt.IsZero() && now.Sub(m.lastAt) < m.cfg.Debounce {
		return engine.ActionNone
	}
	m.remember(a, now)
	return a
}

func (m *Mapper) remember(a engine.Action, now time.Time) {
	m.lastKind = a
	m.lastAt = now
}
