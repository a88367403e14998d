// Package detector provides hand detection interfaces and the pose frame types
// consumed by the gesture pipeline.
package detector

import "fmt"

// Joint identifies one of the 21 hand landmarks.
// Indices follow the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
type Joint int

const (
	Wrist Joint = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// NumLandmarks is the number of joints in a hand.
const NumLandmarks = 21

var jointNames = [NumLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

func (j Joint) String() string {
	if j < 0 || int(j) >= NumLandmarks {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// MCPJoints are the knuckles of the four non-thumb fingers.
var MCPJoints = [4]Joint{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

// TipJoints are the tips of the four non-thumb fingers.
var TipJoints = [4]Joint{IndexTip, MiddleTip, RingTip, PinkyTip}

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
// Coordinates are normalized to the image with y growing downward.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
	// Visibility holds optional per-joint confidence. Joints without an
	// entry use Score.
	Visibility []float64 `json:"visibility,omitempty"`
}

// Confidence returns the confidence of joint j.
func (h *HandLandmarks) Confidence(j Joint) float64 {
	if int(j) < len(h.Visibility) {
		return h.Visibility[j]
	}
	return h.Score
}
