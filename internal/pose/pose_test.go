package pose

import (
	"testing"
	"time"

	"github.com/ayusman/handtris/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameFor(lm detector.HandLandmarks) *detector.PoseFrame {
	f := lm.ToPoseFrame(detector.DefaultFrameConfig(), time.Time{})
	return &f
}

func TestSmoother(t *testing.T) {
	s := NewSmoother(3)
	assert.Equal(t, 0.0, s.Value())

	assert.InDelta(t, 3.0, s.Push(3), 1e-9)
	assert.InDelta(t, 4.5, s.Push(6), 1e-9)
	assert.InDelta(t, 5.0, s.Push(6), 1e-9)
	// oldest sample (3) is evicted
	assert.InDelta(t, 8.0, s.Push(12), 1e-9)
	assert.Equal(t, 3, s.Len())

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0.0, s.Value())
}

func TestSmootherDefaultSize(t *testing.T) {
	s := NewSmoother(0)
	for i := 0; i < 10; i++ {
		s.Push(float64(i))
	}
	assert.Equal(t, DefaultHistorySize, s.Len())
	assert.InDelta(t, 7.0, s.Value(), 1e-9)
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{-90, -90},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeAngle(tt.in), 1e-9, "NormalizeAngle(%v)", tt.in)
	}
}

func TestEstimatorBucket(t *testing.T) {
	tests := []struct {
		name string
		cx   float64
		want int
	}{
		{"far left clamps to 1", 0.01, 1},
		{"left", 0.3, 3},
		{"centre", 0.5, 5},
		{"right", 0.78, 8},
		{"far right clamps to 10", 0.99, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEstimator(DefaultConfig())
			var est Estimate
			for i := 0; i < DefaultHistorySize; i++ {
				est = e.Update(frameFor(detector.PalmPose(tt.cx, 0, false)))
			}
			assert.True(t, est.BucketUpdated)
			assert.Equal(t, tt.want, est.Bucket)
		})
	}
}

func TestEstimatorBucketIsSmoothed(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	for i := 0; i < 4; i++ {
		e.Update(frameFor(detector.PalmPose(0.2, 0, false)))
	}
	// one outlier at the far right cannot move the mean of five samples past 4
	est := e.Update(frameFor(detector.PalmPose(0.9, 0, false)))
	assert.Equal(t, 3, est.Bucket)
}

func TestEstimatorSkipsWithFewJoints(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	for i := 0; i < 5; i++ {
		e.Update(frameFor(detector.PalmPose(0.8, 30, false)))
	}
	require.Equal(t, 8, e.Bucket())
	require.InDelta(t, 30, e.Angle(), 1e-6)

	f := frameFor(detector.PalmPose(0.1, -50, true))
	f.Remove(detector.IndexMCP)
	f.Remove(detector.MiddleMCP)
	f.Remove(detector.IndexTip)
	f.Remove(detector.RingTip)

	est := e.Update(f)
	assert.False(t, est.BucketUpdated)
	assert.False(t, est.AngleUpdated)
	assert.False(t, est.SpreadUpdated)
	assert.Equal(t, 8, est.Bucket)
	assert.InDelta(t, 30, est.Angle, 1e-6)
}

func TestEstimatorAngleNeedsWrist(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	f := frameFor(detector.TiltedPalmLandmarks(45))
	f.Remove(detector.Wrist)

	est := e.Update(f)
	assert.True(t, est.BucketUpdated)
	assert.False(t, est.AngleUpdated)
	assert.Equal(t, 0.0, est.Angle)
}

func TestEstimatorAngle(t *testing.T) {
	for _, tilt := range []float64{-60, -20, 0, 35, 50} {
		e := NewEstimator(DefaultConfig())
		e.angle = 99
		est := e.Update(frameFor(detector.TiltedPalmLandmarks(tilt)))
		assert.True(t, est.AngleUpdated)
		assert.InDelta(t, tilt, est.Angle, 1e-6, "tilt %v", tilt)
	}
}

func TestEstimatorAngleDeadband(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	e.Update(frameFor(detector.TiltedPalmLandmarks(20)))
	require.InDelta(t, 20, e.Angle(), 1e-6)

	e.Update(frameFor(detector.TiltedPalmLandmarks(20.6)))
	assert.InDelta(t, 20, e.Angle(), 1e-6)

	e.Update(frameFor(detector.TiltedPalmLandmarks(21.5)))
	assert.InDelta(t, 21.5, e.Angle(), 1e-6)
}

func TestEstimatorSpread(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	open := e.Update(frameFor(detector.OpenPalmLandmarks()))
	require.True(t, open.SpreadUpdated)
	assert.InDelta(t, 0.09, open.Spread, 1e-6)

	closed := e.Update(frameFor(detector.ClosedFingersLandmarks()))
	assert.InDelta(t, 0.0135, closed.Spread, 1e-6)
}

func TestEstimatorBucketEMA(t *testing.T) {
	e := NewEstimator(Config{BucketEMA: 0.5, HistorySize: 1})
	est := e.Update(frameFor(detector.PalmPose(0.9, 0, false)))
	// ema = 5*0.5 + 9*0.5 = 7
	assert.Equal(t, 7, est.Bucket)
	est = e.Update(frameFor(detector.PalmPose(0.9, 0, false)))
	// ema = 7*0.5 + 9*0.5 = 8
	assert.Equal(t, 8, est.Bucket)
}

func TestEstimatorReset(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	e.Update(frameFor(detector.PalmPose(0.9, 45, false)))
	e.Reset()
	assert.Equal(t, 5, e.Bucket())
	assert.Equal(t, 0.0, e.Angle())
	assert.Equal(t, 0.0, e.Spread())
}

func TestEstimatorNilFrame(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	est := e.Update(nil)
	assert.Equal(t, Estimate{Bucket: 5}, est)
}
