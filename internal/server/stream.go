package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/handtris/internal/capture"
)

// streamPoll is how often the stream checks for a new preview frame.
const streamPoll = 66 * time.Millisecond // ~15 FPS

// StreamHandler serves the camera preview as MJPEG. Frames come from the
// pipeline's Preview so the camera is read in one place only.
type StreamHandler struct {
	preview *capture.Preview
	poll    time.Duration
}

// NewStreamHandler creates a new StreamHandler for preview.
func NewStreamHandler(preview *capture.Preview) *StreamHandler {
	return &StreamHandler{preview: preview, poll: streamPoll}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stop := h.preview.Watch()
	defer stop()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(h.poll)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, seq := h.preview.Latest()
		if seq == last || len(jpeg) == 0 {
			continue
		}
		last = seq

		if err := writePart(w, jpeg); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}
