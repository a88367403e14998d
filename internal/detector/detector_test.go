package detector

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestPoseFrame(t *testing.T) {
	t.Run("empty frame has no joints", func(t *testing.T) {
		var f PoseFrame
		if f.Count() != 0 {
			t.Errorf("expected 0 joints, got %d", f.Count())
		}
		if _, ok := f.Get(Wrist); ok {
			t.Error("expected wrist to be absent")
		}
	})

	t.Run("set get remove", func(t *testing.T) {
		var f PoseFrame
		f.Set(IndexTip, Point2D{X: 0.2, Y: 0.3}, 0.9)

		p, ok := f.Get(IndexTip)
		if !ok {
			t.Fatal("expected index tip to be present")
		}
		if p.X != 0.2 || p.Y != 0.3 {
			t.Errorf("unexpected point %+v", p)
		}

		f.Remove(IndexTip)
		if _, ok := f.Get(IndexTip); ok {
			t.Error("expected index tip to be removed")
		}
	})

	t.Run("out of range joints are ignored", func(t *testing.T) {
		var f PoseFrame
		f.Set(Joint(-1), Point2D{}, 1)
		f.Set(Joint(NumLandmarks), Point2D{}, 1)
		if f.Count() != 0 {
			t.Errorf("expected 0 joints, got %d", f.Count())
		}
		if _, ok := f.Get(Joint(99)); ok {
			t.Error("expected out of range joint to be absent")
		}
	})

	t.Run("collect skips absent joints", func(t *testing.T) {
		var f PoseFrame
		f.Set(IndexMCP, Point2D{X: 0.1}, 1)
		f.Set(RingMCP, Point2D{X: 0.3}, 1)

		points := f.Collect(MCPJoints[:]...)
		if len(points) != 2 {
			t.Fatalf("expected 2 points, got %d", len(points))
		}
		if points[0].X != 0.1 || points[1].X != 0.3 {
			t.Errorf("unexpected order %+v", points)
		}
	})
}

func TestJointString(t *testing.T) {
	if Wrist.String() != "wrist" {
		t.Errorf("expected wrist, got %s", Wrist.String())
	}
	if PinkyTip.String() != "pinky_tip" {
		t.Errorf("expected pinky_tip, got %s", PinkyTip.String())
	}
	if Joint(42).String() != "joint(42)" {
		t.Errorf("unexpected name %s", Joint(42).String())
	}
}

func TestToPoseFrame(t *testing.T) {
	ts := time.Unix(100, 0)

	t.Run("flips y to bottom-left origin", func(t *testing.T) {
		hand := HandLandmarks{Score: 0.9}
		hand.Points[Wrist] = Point3D{X: 0.25, Y: 0.8}

		f := hand.ToPoseFrame(DefaultFrameConfig(), ts)

		p, ok := f.Get(Wrist)
		if !ok {
			t.Fatal("expected wrist to be present")
		}
		if math.Abs(p.X-0.25) > epsilon || math.Abs(p.Y-0.2) > epsilon {
			t.Errorf("expected (0.25, 0.2), got %+v", p)
		}
		if !f.Timestamp.Equal(ts) {
			t.Errorf("expected timestamp %v, got %v", ts, f.Timestamp)
		}
	})

	t.Run("drops low confidence hand", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		hand.Score = 0.5

		f := hand.ToPoseFrame(DefaultFrameConfig(), ts)
		if f.Count() != 0 {
			t.Errorf("expected all joints dropped at threshold, got %d", f.Count())
		}
	})

	t.Run("per joint visibility overrides score", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		hand.Visibility = make([]float64, NumLandmarks)
		for i := range hand.Visibility {
			hand.Visibility[i] = 0.9
		}
		hand.Visibility[IndexTip] = 0.1
		hand.Visibility[MiddleTip] = 0.4

		f := hand.ToPoseFrame(DefaultFrameConfig(), ts)
		if f.Count() != NumLandmarks-2 {
			t.Errorf("expected %d joints, got %d", NumLandmarks-2, f.Count())
		}
		if _, ok := f.Get(IndexTip); ok {
			t.Error("expected index tip to be dropped")
		}
		if f.Joints[Wrist].Confidence != 0.9 {
			t.Errorf("expected wrist confidence 0.9, got %f", f.Joints[Wrist].Confidence)
		}
	})

	t.Run("rotate 90", func(t *testing.T) {
		hand := HandLandmarks{Score: 0.9}
		hand.Points[Wrist] = Point3D{X: 0.2, Y: 0.7}

		f := hand.ToPoseFrame(FrameConfig{MinConfidence: 0.5, Rotate90: true}, ts)

		// (0.2, 0.7) image -> (0.2, 0.3) pose -> (0.3, 0.8) rotated
		p, _ := f.Get(Wrist)
		if math.Abs(p.X-0.3) > epsilon || math.Abs(p.Y-0.8) > epsilon {
			t.Errorf("expected (0.3, 0.8), got %+v", p)
		}
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()

		expectedHands := []HandLandmarks{
			OpenPalmLandmarks(),
			ClosedFingersLandmarks(),
		}
		mock.SetHands(expectedHands)

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func palmCenter(f PoseFrame) Point2D {
	var c Point2D
	points := f.Collect(MCPJoints[:]...)
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(points))
	c.Y /= float64(len(points))
	return c
}

func maxTipSpread(f PoseFrame) float64 {
	tips := f.Collect(TipJoints[:]...)
	var c Point2D
	for _, p := range tips {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(tips))
	c.Y /= float64(len(tips))
	var spread float64
	for _, p := range tips {
		spread = math.Max(spread, math.Hypot(p.X-c.X, p.Y-c.Y))
	}
	return spread
}

func TestPalmPose(t *testing.T) {
	cfg := DefaultFrameConfig()

	t.Run("palm centre follows cx", func(t *testing.T) {
		for _, cx := range []float64{0.1, 0.5, 0.85} {
			lm := PalmPose(cx, 0, false)
			f := lm.ToPoseFrame(cfg, time.Time{})
			c := palmCenter(f)
			if math.Abs(c.X-cx) > 1e-6 {
				t.Errorf("cx=%.2f: expected palm centre x %.2f, got %f", cx, cx, c.X)
			}
		}
	})

	t.Run("tilt is recovered from wrist to palm centre", func(t *testing.T) {
		for _, tilt := range []float64{-60, -30, 0, 45, 50} {
			lm := PalmPose(0.5, tilt, false)
			f := lm.ToPoseFrame(cfg, time.Time{})
			w, _ := f.Get(Wrist)
			c := palmCenter(f)
			got := math.Atan2(c.Y-w.Y, c.X-w.X)*180/math.Pi - 90
			if math.Abs(got-tilt) > 1e-6 {
				t.Errorf("expected tilt %.1f, got %f", tilt, got)
			}
		}
	})

	t.Run("open and closed spreads straddle the closure threshold", func(t *testing.T) {
		openLm, closedLm := OpenPalmLandmarks(), ClosedFingersLandmarks()
		open := maxTipSpread(openLm.ToPoseFrame(cfg, time.Time{}))
		closed := maxTipSpread(closedLm.ToPoseFrame(cfg, time.Time{}))
		if open <= 0.07 {
			t.Errorf("expected open spread above 0.07, got %f", open)
		}
		if closed >= 0.07 {
			t.Errorf("expected closed spread below 0.07, got %f", closed)
		}
	})

	t.Run("all joints present with high score", func(t *testing.T) {
		lm := TiltedPalmLandmarks(30)
		if lm.Handedness != "Right" {
			t.Errorf("expected handedness Right, got %s", lm.Handedness)
		}
		if f := lm.ToPoseFrame(cfg, time.Time{}); f.Count() != NumLandmarks {
			t.Errorf("expected %d joints, got %d", NumLandmarks, f.Count())
		}
	})
}

func TestJSONHandVisibility(t *testing.T) {
	t.Run("without visibility", func(t *testing.T) {
		var h jsonHand
		if err := json.Unmarshal([]byte(`{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.8}`), &h); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		lm := h.toHandLandmarks()
		if lm.Points[Wrist].X != 0.1 || lm.Handedness != "Left" {
			t.Errorf("unexpected landmarks %+v", lm)
		}
		if lm.Visibility != nil {
			t.Errorf("expected no visibility, got %v", lm.Visibility)
		}
		if lm.Confidence(IndexTip) != 0.8 {
			t.Errorf("expected score fallback 0.8, got %f", lm.Confidence(IndexTip))
		}
	})

	t.Run("full visibility", func(t *testing.T) {
		h := jsonHand{Score: 0.9}
		for i := 0; i < NumLandmarks; i++ {
			v := 0.6
			h.Points = append(h.Points, jsonPoint{X: float64(i) / 100, Visibility: &v})
		}
		lm := h.toHandLandmarks()
		if len(lm.Visibility) != NumLandmarks {
			t.Fatalf("expected %d visibility entries, got %d", NumLandmarks, len(lm.Visibility))
		}
		if lm.Confidence(PinkyTip) != 0.6 {
			t.Errorf("expected 0.6, got %f", lm.Confidence(PinkyTip))
		}
	})
}
