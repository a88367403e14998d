package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Synthetic hand geometry, in normalized units.
const (
	palmLength     = 0.12
	openTipReach   = 0.15
	closedTipReach = 0.08
)

var knuckleOffsets = [4]float64{0.045, 0.015, -0.015, -0.045}

// PalmPose builds landmarks for an idealized right hand whose palm centre is
// at horizontal position cx (0..1), tilted tiltDeg degrees from upright
// (positive tilts toward -x), with fingertips spread or pinched together.
//
// Geometry is built with y up and converted to the image convention, so
// ToPoseFrame recovers the same palm centre and tilt.
func PalmPose(cx, tiltDeg float64, closed bool) HandLandmarks {
	const cy = 0.5
	phi := (tiltDeg + 90) * math.Pi / 180
	dx, dy := math.Cos(phi), math.Sin(phi)
	// perpendicular, pointing toward the index finger side
	px, py := dy, -dx

	var up [NumLandmarks]Point2D
	at := func(along, across float64) Point2D {
		return Point2D{X: cx + along*dx + across*px, Y: cy + along*dy + across*py}
	}

	up[Wrist] = at(-palmLength, 0)
	up[ThumbCMC] = at(-0.09, 0.04)
	up[ThumbMCP] = at(-0.06, 0.07)
	up[ThumbIP] = at(-0.03, 0.09)
	up[ThumbTip] = at(0, 0.11)

	reach, spread := openTipReach, 2.0
	if closed {
		reach, spread = closedTipReach, 0.3
	}
	for i, off := range knuckleOffsets {
		mcp := Joint(int(IndexMCP) + i*4)
		up[mcp] = at(0, off)
		up[mcp+1] = at(reach/3, off*(1+spread)/2)
		up[mcp+2] = at(2*reach/3, off*(1+spread)/2)
		up[mcp+3] = at(reach, off*spread)
	}

	lm := HandLandmarks{Handedness: "Right", Score: 0.95}
	for i, p := range up {
		lm.Points[i] = Point3D{X: p.X, Y: 1 - p.Y}
	}
	return lm
}

// OpenPalmLandmarks returns an upright, open hand in the centre of the frame.
func OpenPalmLandmarks() HandLandmarks {
	return PalmPose(0.5, 0, false)
}

// ClosedFingersLandmarks returns an upright hand with the fingertips pinched
// together in the centre of the frame.
func ClosedFingersLandmarks() HandLandmarks {
	return PalmPose(0.5, 0, true)
}

// TiltedPalmLandmarks returns an open hand in the centre of the frame tilted
// by deg degrees.
func TiltedPalmLandmarks(deg float64) HandLandmarks {
	return PalmPose(0.5, deg, false)
}
