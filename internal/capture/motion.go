package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	blurKernel    = 21
	diffThreshold = 25
	// DefaultMotionHold keeps the gate open after the last motion so a hand
	// held still keeps being tracked.
	DefaultMotionHold = 2 * time.Second
)

// MotionGate decides whether a frame is worth running hand detection on. It
// compares blurred grayscale frames and stays open for a hold period after
// the last frame that changed by more than threshold percent of pixels.
type MotionGate struct {
	mu          sync.Mutex
	threshold   float64
	hold        time.Duration
	prev        gocv.Mat
	initialized bool
	lastMotion  time.Time
}

// NewMotionGate creates a gate. Non-positive thresholds use 1% and
// non-positive holds use DefaultMotionHold.
func NewMotionGate(threshold float64, hold time.Duration) *MotionGate {
	if threshold <= 0 {
		threshold = 1.0
	}
	if hold <= 0 {
		hold = DefaultMotionHold
	}
	return &MotionGate{
		threshold: threshold,
		hold:      hold,
		prev:      gocv.NewMat(),
	}
}

// Threshold returns the changed-pixel percentage needed to count as motion.
func (g *MotionGate) Threshold() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.threshold
}

// SetThreshold updates the threshold. Values <= 0 are ignored.
func (g *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threshold = threshold
}

// Measure compares frame with the previous one and returns whether it moved
// and the percentage of changed pixels. The first frame only sets the
// baseline.
func (g *MotionGate) Measure(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.measureLocked(frame)
}

func (g *MotionGate) measureLocked(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !g.initialized {
		gray.CopyTo(&g.prev)
		g.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, g.prev, &diff)
	gocv.Threshold(diff, &diff, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	gray.CopyTo(&g.prev)
	return changed > g.threshold, changed
}

// Open measures frame at now and reports whether detection should run:
// either this frame moved or motion was seen within the hold period.
func (g *MotionGate) Open(frame *gocv.Mat, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if moved, _ := g.measureLocked(frame); moved {
		g.lastMotion = now
		return true
	}
	return !g.lastMotion.IsZero() && now.Sub(g.lastMotion) <= g.hold
}

// Reset drops the baseline frame and motion history.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

// Close releases the baseline frame. The gate can be reused afterwards.
func (g *MotionGate) Close() {
	g.Reset()
}

func (g *MotionGate) resetLocked() {
	if !g.prev.Empty() {
		g.prev.Close()
		g.prev = gocv.NewMat()
	}
	g.initialized = false
	g.lastMotion = time.Time{}
}
