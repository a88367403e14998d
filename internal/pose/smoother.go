// Package pose derives palm position and orientation from hand pose frames.
package pose

import "gonum.org/v1/gonum/stat"

// DefaultHistorySize is the number of samples a Smoother averages.
const DefaultHistorySize = 5

// Smoother keeps a fixed-length history of a scalar signal and reports its
// mean. The zero value is not usable; call NewSmoother.
type Smoother struct {
	size    int
	history []float64
}

// NewSmoother creates a smoother over the last size samples. Non-positive
// sizes use DefaultHistorySize.
func NewSmoother(size int) *Smoother {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Smoother{
		size:    size,
		history: make([]float64, 0, size),
	}
}

// Push records v, evicting the oldest sample when full, and returns the new
// smoothed value.
func (s *Smoother) Push(v float64) float64 {
	if len(s.history) == s.size {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.size-1]
	}
	s.history = append(s.history, v)
	return s.Value()
}

// Value returns the mean of the history, or 0 when empty.
func (s *Smoother) Value() float64 {
	if len(s.history) == 0 {
		return 0
	}
	return stat.Mean(s.history, nil)
}

// Len returns the number of buffered samples.
func (s *Smoother) Len() int { return len(s.history) }

// Reset drops all samples.
func (s *Smoother) Reset() { s.history = s.history[:0] }
