package engine

import (
	"math/rand/v2"
	"sync"
)

// Randomizer supplies the kinds of newly generated pieces.
type Randomizer interface {
	Next() Kind
}

type uniformRandomizer struct {
	rng *rand.Rand
}

// NewRandomizer returns a randomizer that picks each kind uniformly from a
// PCG source seeded with seed, so sequences are reproducible.
func NewRandomizer(seed uint64) Randomizer {
	return &uniformRandomizer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *uniformRandomizer) Next() Kind {
	return Kinds[r.rng.IntN(int(NumKinds))]
}

// SequenceRandomizer replays a fixed list of kinds and cycles when exhausted.
type SequenceRandomizer struct {
	mu    sync.Mutex
	kinds []Kind
	index int
}

// Sequence returns a randomizer that yields kinds in order, cycling forever.
// An empty list always yields KindO.
func Sequence(kinds ...Kind) *SequenceRandomizer {
	return &SequenceRandomizer{kinds: kinds}
}

// Next returns the next kind of the sequence.
func (s *SequenceRandomizer) Next() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.kinds) == 0 {
		return KindO
	}
	k := s.kinds[s.index%len(s.kinds)]
	s.index++
	return k
}
