// Package gesture classifies hand pose frames into discrete gestures using
// latches, cooldowns and a short majority vote.
package gesture

import "fmt"

// Gesture is a discrete gesture label.
type Gesture int

const (
	None Gesture = iota
	RotateLeft
	RotateRight
	FingersClosed
	numGestures
)

var gestureNames = [numGestures]string{"none", "rotate_left", "rotate_right", "fingers_closed"}

func (g Gesture) String() string {
	if g < 0 || g >= numGestures {
		return fmt.Sprintf("gesture(%d)", int(g))
	}
	return gestureNames[g]
}

// IsRotation reports whether g is a one-shot rotation gesture.
func (g Gesture) IsRotation() bool {
	return g == RotateLeft || g == RotateRight
}

// MarshalText implements encoding.TextMarshaler.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gesture) UnmarshalText(text []byte) error {
	for i, name := range gestureNames {
		if name == string(text) {
			*g = Gesture(i)
			return nil
		}
	}
	return fmt.Errorf("unknown gesture %q", text)
}

// RotationLatch blocks repeated rotations until the hand returns upright.
type RotationLatch int

const (
	LatchNormal RotationLatch = iota
	LatchTriggered
)

func (l RotationLatch) String() string {
	if l == LatchTriggered {
		return "triggered"
	}
	return "normal"
}

// MarshalText implements encoding.TextMarshaler.
func (l RotationLatch) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *RotationLatch) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*l = LatchNormal
	case "triggered":
		*l = LatchTriggered
	default:
		return fmt.Errorf("unknown rotation latch %q", text)
	}
	return nil
}

// FingerLatch tracks whether the fingertips are pinched together.
type FingerLatch int

const (
	FingersOpen FingerLatch = iota
	FingersShut
)

func (l FingerLatch) String() string {
	if l == FingersShut {
		return "closed"
	}
	return "open"
}

// MarshalText implements encoding.TextMarshaler.
func (l FingerLatch) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *FingerLatch) UnmarshalText(text []byte) error {
	switch string(text) {
	case "open":
		*l = FingersOpen
	case "closed":
		*l = FingersShut
	default:
		return fmt.Errorf("unknown finger latch %q", text)
	}
	return nil
}
