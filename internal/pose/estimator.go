package pose

import (
	"math"

	"github.com/ayusman/handtris/internal/detector"
	"gonum.org/v1/gonum/stat"
)

// Config holds the estimator tunables.
type Config struct {
	// Buckets is the number of horizontal zones (default 10).
	Buckets int
	// HistorySize is the bucket smoothing window (default 5).
	HistorySize int
	// MinJoints is how many of the four MCP or tip joints must be present for
	// a sub-update to run (default 3).
	MinJoints int
	// AngleOffset is subtracted from the wrist-to-palm heading so an upright
	// hand reads 0 degrees (default 90).
	AngleOffset float64
	// AngleDeadband ignores tilt changes of at most this many degrees
	// (default 1). Negative disables it.
	AngleDeadband float64
	// BucketEMA is the weight of a second exponential smoothing stage on the
	// bucket. Zero disables it.
	BucketEMA float64
}

// DefaultConfig returns the standard estimator settings.
func DefaultConfig() Config {
	return Config{
		Buckets:       10,
		HistorySize:   DefaultHistorySize,
		MinJoints:     3,
		AngleOffset:   90,
		AngleDeadband: 1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Buckets <= 0 {
		c.Buckets = d.Buckets
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if c.MinJoints <= 0 {
		c.MinJoints = d.MinJoints
	}
	if c.AngleDeadband == 0 {
		c.AngleDeadband = d.AngleDeadband
	}
	if c.BucketEMA < 0 || c.BucketEMA > 1 {
		c.BucketEMA = 0
	}
	return c
}

// Estimate is the palm state after an update. Values whose sub-update was
// skipped keep their previous value.
type Estimate struct {
	Bucket int     `json:"bucket"`
	Angle  float64 `json:"angle"`
	// Spread is the largest distance from a fingertip to the fingertip
	// centroid.
	Spread float64 `json:"spread"`

	BucketUpdated bool `json:"bucket_updated"`
	AngleUpdated  bool `json:"angle_updated"`
	SpreadUpdated bool `json:"spread_updated"`
}

// Estimator turns pose frames into a smoothed horizontal bucket, a palm tilt
// angle and a fingertip spread. It is not safe for concurrent use.
type Estimator struct {
	cfg      Config
	smoother *Smoother
	ema      float64
	bucket   int
	angle    float64
	spread   float64
}

// NewEstimator creates an estimator. Zero fields of cfg take defaults.
func NewEstimator(cfg Config) *Estimator {
	cfg = cfg.withDefaults()
	e := &Estimator{
		cfg:      cfg,
		smoother: NewSmoother(cfg.HistorySize),
	}
	e.Reset()
	return e
}

// Config returns the effective configuration.
func (e *Estimator) Config() Config { return e.cfg }

// Reset clears the smoothing history and returns to the neutral pose.
func (e *Estimator) Reset() {
	e.smoother.Reset()
	e.bucket = e.cfg.Buckets / 2
	e.ema = float64(e.bucket)
	e.angle = 0
	e.spread = 0
}

// Bucket returns the current horizontal bucket in [1, Buckets].
func (e *Estimator) Bucket() int { return e.bucket }

// Angle returns the current tilt in degrees, in (-180, 180].
func (e *Estimator) Angle() float64 { return e.angle }

// Spread returns the last measured fingertip spread.
func (e *Estimator) Spread() float64 { return e.spread }

// Update runs the bucket, tilt and spread sub-updates on f. Each one is
// skipped when too few of its joints are present.
func (e *Estimator) Update(f *detector.PoseFrame) Estimate {
	var est Estimate
	if f != nil {
		mcps := f.Collect(detector.MCPJoints[:]...)
		if len(mcps) >= e.cfg.MinJoints {
			center := centroid(mcps)
			e.updateBucket(center.X)
			est.BucketUpdated = true

			if wrist, ok := f.Get(detector.Wrist); ok {
				e.updateAngle(center.X-wrist.X, center.Y-wrist.Y)
				est.AngleUpdated = true
			}
		}

		tips := f.Collect(detector.TipJoints[:]...)
		if len(tips) >= e.cfg.MinJoints {
			e.spread = maxDistance(tips, centroid(tips))
			est.SpreadUpdated = true
		}
	}
	est.Bucket = e.bucket
	est.Angle = e.angle
	est.Spread = e.spread
	return est
}

func (e *Estimator) updateBucket(x float64) {
	n := e.cfg.Buckets
	bucket := clampInt(int(math.Round(e.smoother.Push(x*float64(n)))), 1, n)
	if a := e.cfg.BucketEMA; a > 0 {
		e.ema = e.ema*(1-a) + float64(bucket)*a
		bucket = clampInt(int(math.Round(e.ema)), 1, n)
	}
	e.bucket = bucket
}

func (e *Estimator) updateAngle(dx, dy float64) {
	deg := NormalizeAngle(math.Atan2(dy, dx)*180/math.Pi - e.cfg.AngleOffset)
	if math.Abs(deg-e.angle) > e.cfg.AngleDeadband {
		e.angle = deg
	}
}

// NormalizeAngle maps degrees into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

func centroid(points []detector.Point2D) detector.Point2D {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return detector.Point2D{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

func maxDistance(points []detector.Point2D, c detector.Point2D) float64 {
	var d float64
	for _, p := range points {
		d = math.Max(d, math.Hypot(p.X-c.X, p.Y-c.Y))
	}
	return d
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
