package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// idleShutdown stops the Python process after this long without frames,
	// e.g. while the game sits paused.
	idleShutdown = 30 * time.Second
	// exitWait is how long shutdown waits for the service before killing it.
	exitWait = 2 * time.Second
	// maxFrameBytes bounds one encoded frame on the wire.
	maxFrameBytes = 8 << 20
)

// ErrServiceNotFound is returned when the MediaPipe service script is missing.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// Frames are sent as length-prefixed JPEG and answered with one JSON line.
// A broken pipe stops the process; the next Detect starts a fresh one.
type MediaPipeDetector struct {
	config    Config
	script    string
	python    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	}

	python := config.Python
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: config,
		script: script,
		python: python,
	}, nil
}

// Detect analyzes a frame and returns detected hand landmarks.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	hands, err := d.exchange(buf.GetBytes())
	if err != nil {
		log.Printf("mediapipe service failed, restarting on next frame: %v", err)
		if serr := d.shutdown(); serr != nil {
			log.Printf("mediapipe shutdown: %v", serr)
		}
		return nil, err
	}

	d.resetIdleTimer()
	return hands, nil
}

func (d *MediaPipeDetector) exchange(jpeg []byte) ([]HandLandmarks, error) {
	if err := writeFrame(d.stdin, jpeg); err != nil {
		return nil, err
	}
	return readHands(d.stdout)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	cmd := exec.Command(d.python, d.script,
		"--max-hands", strconv.Itoa(d.config.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', 2, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	log.Printf("mediapipe service started: pid=%d", cmd.Process.Pid)

	return nil
}

// shutdown closes stdin so the service exits on EOF, killing it if it does
// not go within exitWait.
func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	d.stdin.Close()

	cmd := d.cmd
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(exitWait):
		cmd.Process.Kill()
		err = <-done
	}

	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if err := d.shutdown(); err != nil {
			log.Printf("mediapipe idle shutdown: %v", err)
		}
	})
}

// writeFrame sends a 4-byte big-endian length followed by the JPEG bytes.
func writeFrame(w io.Writer, jpeg []byte) error {
	if len(jpeg) == 0 || len(jpeg) > maxFrameBytes {
		return fmt.Errorf("frame size %d out of range", len(jpeg))
	}
	msg := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(msg, uint32(len(jpeg)))
	copy(msg[4:], jpeg)
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// readHands reads one JSON response line.
func readHands(r *bufio.Reader) ([]HandLandmarks, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe: %s", response.Error)
	}

	result := make([]HandLandmarks, len(response.Hands))
	for i, h := range response.Hands {
		result[i] = h.toHandLandmarks()
	}
	return result, nil
}

func findMediaPipeScript() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/mediapipe_service.py",
		"../scripts/mediapipe_service.py",
		filepath.Join(execDir, "scripts/mediapipe_service.py"),
		filepath.Join(os.Getenv("HOME"), ".handtris/scripts/mediapipe_service.py"),
	}
	return firstExisting(candidates)
}

// findVenvPython looks for a Python interpreter in a virtual environment
// next to the working directory, the binary or the data directory.
func findVenvPython() string {
	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		"../../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".handtris/venv/bin/python"),
	}
	return firstExisting(candidates)
}

func firstExisting(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// toHandLandmarks copies the response. Per-joint visibility is kept only
// when every returned point carries it.
func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	n := min(NumLandmarks, len(h.Points))
	visibility := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		p := h.Points[i]
		lm.Points[i] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
		if p.Visibility != nil {
			visibility = append(visibility, *p.Visibility)
		}
	}
	if n == NumLandmarks && len(visibility) == n {
		lm.Visibility = visibility
	}

	return lm
}
