package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the latest camera frame as JPEG for streaming. Frames are
// only encoded while at least one viewer is watching.
type Preview struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	viewers int
}

// NewPreview creates an empty preview.
func NewPreview() *Preview {
	return &Preview{}
}

// Watch registers a viewer and returns the function that removes it.
func (p *Preview) Watch() func() {
	p.mu.Lock()
	p.viewers++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.viewers--
			if p.viewers == 0 {
				p.jpeg = nil
			}
			p.mu.Unlock()
		})
	}
}

// Watching reports whether anyone is watching.
func (p *Preview) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewers > 0
}

// Update encodes frame when someone is watching.
func (p *Preview) Update(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() || !p.Watching() {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	p.Set(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Set stores an encoded frame.
func (p *Preview) Set(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jpeg = jpeg
	p.seq++
}

// Latest returns the last frame and its sequence number. The sequence
// increases with every stored frame.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq
}
