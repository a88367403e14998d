package app

import (
	"log"
	"time"

	"github.com/ayusman/handtris/internal/capture"
	"github.com/ayusman/handtris/internal/detector"
	"github.com/ayusman/handtris/internal/engine"
	"github.com/ayusman/handtris/internal/metrics"
	"gocv.io/x/gocv"
)

// runPipeline reads frames until stopCh closes.
//
// Frame rate follows the session: ActiveFPS while a game is being played,
// IdleFPS otherwise. Each frame goes through the motion gate, the hand
// detector and then Session.Apply.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := capture.IdleFPS
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			want := capture.IdleFPS
			if a.session.Active() {
				want = capture.ActiveFPS
			}
			if want != fps {
				fps = want
				a.Camera().SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				log.Printf("Pipeline running at %d FPS", fps)
			}

			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				metrics.FramesProcessed.WithLabelValues("error").Inc()
				continue
			}
			a.processFrame(frame, time.Now())
			frame.Close()
		}
	}
}

// processFrame runs one camera frame through detection and the session and
// returns the action applied to the engine.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) engine.Action {
	if err := a.preview.Update(frame); err != nil {
		log.Printf("Error encoding preview: %v", err)
	}

	a.mu.RLock()
	det := a.detector
	hadHand := a.handPresent
	a.mu.RUnlock()

	// A still frame with no hand on screen cannot produce a gesture. Once a
	// hand is tracked every frame is detected so losing it is noticed.
	if !a.motion.Open(frame, now) && !hadHand {
		metrics.FramesProcessed.WithLabelValues("still").Inc()
		return engine.ActionNone
	}
	if det == nil {
		return engine.ActionNone
	}

	start := time.Now()
	hands, err := det.Detect(frame)
	metrics.DetectSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		metrics.FramesProcessed.WithLabelValues("error").Inc()
		return engine.ActionNone
	}

	return a.applyHands(hands, now)
}

// applyHands converts the first hand into a pose frame for the session. No
// hands, or a hand with every joint below the confidence threshold, counts
// as the hand leaving the camera.
func (a *App) applyHands(hands []detector.HandLandmarks, now time.Time) engine.Action {
	f := detector.PoseFrame{Timestamp: now}
	if len(hands) > 0 {
		f = hands[0].ToPoseFrame(a.config.Frame, now)
	}

	present := f.Count() > 0
	if present {
		metrics.FramesProcessed.WithLabelValues("hand").Inc()
	} else {
		metrics.FramesProcessed.WithLabelValues("no_hand").Inc()
	}

	a.mu.Lock()
	a.handPresent = present
	a.mu.Unlock()

	return a.session.Apply(f)
}
