package gesture

import (
	"math"
	"time"

	"github.com/ayusman/handtris/internal/detector"
	"github.com/ayusman/handtris/internal/pose"
)

// Config holds the classifier tunables.
type Config struct {
	// RotationThreshold is the tilt in degrees beyond which a rotation fires
	// and below which the rotation latch recovers (default 40).
	RotationThreshold float64
	// RotationCooldown suppresses all gestures after a rotation (default 100ms).
	RotationCooldown time.Duration
	// ClosureThreshold is the fingertip spread under which fingers count as
	// closed (default 0.07).
	ClosureThreshold float64
	// ClosureCooldown pauses closure detection after fingers close
	// (default 300ms).
	ClosureCooldown time.Duration
	// MinClosureBucket and MaxClosureBucket bound the central band in which
	// FingersClosed is recognized (default 3..7).
	MinClosureBucket int
	MaxClosureBucket int
	// HistorySize is the vote window (default 5).
	HistorySize int
	// MinConfidence is the vote count needed to switch or hold (default 3).
	MinConfidence int
	// ChangeCooldown holds the voted gesture after a switch (default 500ms).
	ChangeCooldown time.Duration

	Pose pose.Config
}

// DefaultConfig returns the standard classifier settings.
func DefaultConfig() Config {
	return Config{
		RotationThreshold: 40,
		RotationCooldown:  100 * time.Millisecond,
		ClosureThreshold:  0.07,
		ClosureCooldown:   300 * time.Millisecond,
		MinClosureBucket:  3,
		MaxClosureBucket:  7,
		HistorySize:       5,
		MinConfidence:     3,
		ChangeCooldown:    500 * time.Millisecond,
		Pose:              pose.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RotationThreshold <= 0 {
		c.RotationThreshold = d.RotationThreshold
	}
	if c.RotationCooldown <= 0 {
		c.RotationCooldown = d.RotationCooldown
	}
	if c.ClosureThreshold <= 0 {
		c.ClosureThreshold = d.ClosureThreshold
	}
	if c.ClosureCooldown <= 0 {
		c.ClosureCooldown = d.ClosureCooldown
	}
	if c.MinClosureBucket <= 0 && c.MaxClosureBucket <= 0 {
		c.MinClosureBucket = d.MinClosureBucket
		c.MaxClosureBucket = d.MaxClosureBucket
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = d.MinConfidence
	}
	if c.ChangeCooldown <= 0 {
		c.ChangeCooldown = d.ChangeCooldown
	}
	return c
}

// Result is the outcome of one Classify call.
type Result struct {
	// Gesture is the gesture emitted by this call. Rotations are emitted
	// exactly once per latch cycle.
	Gesture Gesture `json:"gesture"`
	// Current is the debounced gesture label, for display.
	Current Gesture `json:"current"`
	// Pose is the palm estimate the decision was based on.
	Pose pose.Estimate `json:"pose"`
}

// State is a debug snapshot of the classifier.
type State struct {
	Current         Gesture       `json:"current"`
	RotationLatch   RotationLatch `json:"rotation_latch"`
	FingerLatch     FingerLatch   `json:"finger_latch"`
	Bucket          int           `json:"bucket"`
	Angle           float64       `json:"angle"`
	Spread          float64       `json:"spread"`
	History         []Gesture     `json:"history"`
	LastRotation    time.Time     `json:"last_rotation"`
	LastFingerClose time.Time     `json:"last_finger_close"`
}

// Classifier turns pose frames into gestures. It owns its state exclusively
// and is not safe for concurrent use.
type Classifier struct {
	cfg       Config
	estimator *pose.Estimator

	current         Gesture
	rotation        RotationLatch
	fingers         FingerLatch
	lastRotation    time.Time
	lastFingerClose time.Time
	lastChange      time.Time
	history         []Gesture
}

// NewClassifier creates a classifier. Zero fields of cfg take defaults.
func NewClassifier(cfg Config) *Classifier {
	cfg = cfg.withDefaults()
	return &Classifier{
		cfg:       cfg,
		estimator: pose.NewEstimator(cfg.Pose),
		history:   make([]Gesture, 0, cfg.HistorySize),
	}
}

// Config returns the effective configuration.
func (c *Classifier) Config() Config { return c.cfg }

// Reset returns every latch, timestamp and smoothing buffer to its initial
// state.
func (c *Classifier) Reset() {
	c.estimator.Reset()
	c.current = None
	c.rotation = LatchNormal
	c.fingers = FingersOpen
	c.lastRotation = time.Time{}
	c.lastFingerClose = time.Time{}
	c.lastChange = time.Time{}
	c.history = c.history[:0]
}

// Classify processes one frame observed at now.
func (c *Classifier) Classify(f *detector.PoseFrame, now time.Time) Result {
	est := c.estimator.Update(f)
	c.updateFingers(est, now)

	detected := c.decide(est, now)

	res := Result{Pose: est}
	if detected != None {
		c.current = detected
		res.Gesture = detected
	} else {
		c.record(None)
		c.current = c.vote(est, now)
		if !c.current.IsRotation() {
			res.Gesture = c.current
		}
	}
	res.Current = c.current
	return res
}

// State returns a snapshot for UI feedback.
func (c *Classifier) State() State {
	return State{
		Current:         c.current,
		RotationLatch:   c.rotation,
		FingerLatch:     c.fingers,
		Bucket:          c.estimator.Bucket(),
		Angle:           c.estimator.Angle(),
		Spread:          c.estimator.Spread(),
		History:         append([]Gesture(nil), c.history...),
		LastRotation:    c.lastRotation,
		LastFingerClose: c.lastFingerClose,
	}
}

func within(now, since time.Time, d time.Duration) bool {
	return !since.IsZero() && now.Sub(since) < d
}

// updateFingers advances the closure latch. Detection is paused for
// ClosureCooldown after fingers close.
func (c *Classifier) updateFingers(est pose.Estimate, now time.Time) {
	if within(now, c.lastFingerClose, c.cfg.ClosureCooldown) || !est.SpreadUpdated {
		return
	}
	closed := est.Spread < c.cfg.ClosureThreshold
	switch {
	case closed && c.fingers == FingersOpen:
		c.fingers = FingersShut
		c.lastFingerClose = now
	case !closed && c.fingers == FingersShut:
		c.fingers = FingersOpen
	}
}

func (c *Classifier) decide(est pose.Estimate, now time.Time) Gesture {
	if within(now, c.lastRotation, c.cfg.RotationCooldown) {
		return None
	}

	threshold := c.cfg.RotationThreshold
	if c.rotation == LatchTriggered {
		if math.Abs(est.Angle) >= threshold {
			return None
		}
		c.rotation = LatchNormal
	}

	if c.fingers == FingersShut && est.Bucket >= c.cfg.MinClosureBucket && est.Bucket <= c.cfg.MaxClosureBucket {
		return FingersClosed
	}

	switch {
	case est.Angle > threshold:
		c.rotation = LatchTriggered
		c.lastRotation = now
		return RotateRight
	case est.Angle < -threshold:
		c.rotation = LatchTriggered
		c.lastRotation = now
		return RotateLeft
	}
	return None
}

// record appends to the vote history. Only frames that detected nothing
// are recorded.
func (c *Classifier) record(g Gesture) {
	if len(c.history) == c.cfg.HistorySize {
		copy(c.history, c.history[1:])
		c.history = c.history[:len(c.history)-1]
	}
	c.history = append(c.history, g)
}

// vote picks the debounced gesture for a frame that detected nothing.
// A held label that no longer matches the latches decays to None.
func (c *Classifier) vote(est pose.Estimate, now time.Time) Gesture {
	if within(now, c.lastChange, c.cfg.ChangeCooldown) {
		if c.stillHolds(c.current, est) {
			return c.current
		}
		return None
	}

	var counts [numGestures]int
	for _, g := range c.history {
		counts[g]++
	}
	best := None
	for g := Gesture(0); g < numGestures; g++ {
		if counts[g] > counts[best] {
			best = g
		}
	}

	if counts[best] >= c.cfg.MinConfidence && best != c.current {
		c.lastChange = now
		return best
	}
	if counts[c.current] >= c.cfg.MinConfidence && c.stillHolds(c.current, est) {
		return c.current
	}
	return None
}

// stillHolds reports whether g may be emitted on a frame with estimate est.
// FingersClosed needs a closed latch inside the closure band; rotations are
// one-shot and never held.
func (c *Classifier) stillHolds(g Gesture, est pose.Estimate) bool {
	switch {
	case g == FingersClosed:
		return c.fingers == FingersShut && est.Bucket >= c.cfg.MinClosureBucket && est.Bucket <= c.cfg.MaxClosureBucket
	case g.IsRotation():
		return false
	}
	return true
}
