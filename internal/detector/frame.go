package detector

import "time"

// Point2D is a normalized 2D coordinate in [0,1]x[0,1].
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// JointSample is one joint of a PoseFrame.
type JointSample struct {
	Point      Point2D `json:"point"`
	Confidence float64 `json:"confidence"`
	Present    bool    `json:"present"`
}

// PoseFrame is a single hand observation keyed by Joint. The origin is the
// bottom-left corner of the image and y grows upward. Absent joints are a
// valid state.
type PoseFrame struct {
	Joints    [NumLandmarks]JointSample `json:"joints"`
	Timestamp time.Time                 `json:"timestamp"`
}

// Set marks joint j present at p.
func (f *PoseFrame) Set(j Joint, p Point2D, confidence float64) {
	if j < 0 || int(j) >= NumLandmarks {
		return
	}
	f.Joints[j] = JointSample{Point: p, Confidence: confidence, Present: true}
}

// Remove marks joint j absent.
func (f *PoseFrame) Remove(j Joint) {
	if j < 0 || int(j) >= NumLandmarks {
		return
	}
	f.Joints[j] = JointSample{}
}

// Get returns the position of joint j and whether it is present.
func (f *PoseFrame) Get(j Joint) (Point2D, bool) {
	if j < 0 || int(j) >= NumLandmarks {
		return Point2D{}, false
	}
	s := f.Joints[j]
	return s.Point, s.Present
}

// Collect returns the positions of the present joints among js, in order.
func (f *PoseFrame) Collect(js ...Joint) []Point2D {
	points := make([]Point2D, 0, len(js))
	for _, j := range js {
		if p, ok := f.Get(j); ok {
			points = append(points, p)
		}
	}
	return points
}

// Count returns the number of present joints.
func (f *PoseFrame) Count() int {
	n := 0
	for _, s := range f.Joints {
		if s.Present {
			n++
		}
	}
	return n
}

// FrameConfig controls how detector output is converted into a PoseFrame.
type FrameConfig struct {
	// MinConfidence drops joints whose confidence is not above it.
	MinConfidence float64
	// Rotate90 applies the (x, y) -> (y, 1-x) correction for cameras mounted
	// in portrait orientation.
	Rotate90 bool
}

// DefaultFrameConfig returns the conversion settings used by the pipeline.
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{MinConfidence: 0.5}
}

// ToPoseFrame converts image-space landmarks (y down) into a PoseFrame
// (y up), dropping joints at or below the confidence threshold.
func (h *HandLandmarks) ToPoseFrame(cfg FrameConfig, ts time.Time) PoseFrame {
	frame := PoseFrame{Timestamp: ts}
	for i := 0; i < NumLandmarks; i++ {
		j := Joint(i)
		conf := h.Confidence(j)
		if conf <= cfg.MinConfidence {
			continue
		}
		p := Point2D{X: h.Points[i].X, Y: 1 - h.Points[i].Y}
		if cfg.Rotate90 {
			p = Point2D{X: p.Y, Y: 1 - p.X}
		}
		frame.Set(j, p, conf)
	}
	return frame
}
