package app

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ayusman/handtris/internal/action"
	"github.com/ayusman/handtris/internal/detector"
	"github.com/ayusman/handtris/internal/engine"
	"github.com/ayusman/handtris/internal/gesture"
	"github.com/ayusman/handtris/internal/metrics"
)

// Difficulty bounds and the drop interval at difficulty 1.
const (
	MinDifficulty       = 0.5
	MaxDifficulty       = 2.0
	DefaultDropInterval = time.Second
)

// SessionConfig holds construction options for a Session.
type SessionConfig struct {
	Engine  engine.Config
	Gesture gesture.Config
	Action  action.Config

	// BaseDropInterval is the gravity period at difficulty 1.
	BaseDropInterval time.Duration
	// Difficulty scales gravity speed, clamped to [0.5, 2.0]. Zero means 1.
	Difficulty float64
	// PlayerName is written into game over records.
	PlayerName string
	// Clock supplies the time for cooldowns and elapsed time.
	Clock func() time.Time
	// ManualGravity disables the gravity timer; callers drive GravityTick.
	ManualGravity bool
}

// EventKind names what changed in a session.
type EventKind string

const (
	EventStarted    EventKind = "started"
	EventStopped    EventKind = "stopped"
	EventPaused     EventKind = "paused"
	EventResumed    EventKind = "resumed"
	EventAction     EventKind = "action"
	EventGravity    EventKind = "gravity"
	EventGameOver   EventKind = "game_over"
	EventDifficulty EventKind = "difficulty"
)

// Event is delivered to subscribers after every session mutation.
type Event struct {
	Kind     EventKind         `json:"kind"`
	Action   engine.Action     `json:"action"`
	Result   engine.TickResult `json:"result"`
	Snapshot SessionSnapshot   `json:"snapshot"`
}

// Record is the finished game handed to persistence collaborators.
type Record struct {
	PlayerName string    `json:"player_name"`
	Score      uint64    `json:"score"`
	Lines      int       `json:"lines"`
	Timestamp  time.Time `json:"timestamp"`
}

// SessionSnapshot is a read-only view of the session.
type SessionSnapshot struct {
	Game         engine.Snapshot `json:"game"`
	Running      bool            `json:"running"`
	Paused       bool            `json:"paused"`
	ElapsedMs    int64           `json:"elapsed_ms"`
	Difficulty   float64         `json:"difficulty"`
	DropInterval time.Duration   `json:"drop_interval_ns"`
	PlayerName   string          `json:"player_name"`
	HandPresent  bool            `json:"hand_present"`
	Gesture      gesture.State   `json:"gesture"`
	LastAction   engine.Action   `json:"last_action"`
}

// Session is the single owner of game state. Gravity ticks, pose frames and
// manual controls are serialized by one mutex; subscriber callbacks run
// after it is released.
type Session struct {
	mu sync.Mutex

	cfg        SessionConfig
	clock      func() time.Time
	engine     *engine.Engine
	classifier *gesture.Classifier
	mapper     *action.Mapper

	running     bool
	paused      bool
	overHandled bool
	difficulty  float64
	playerName  string
	handPresent bool
	lastAction  engine.Action

	elapsed      time.Duration
	runningSince time.Time

	gravityStop chan struct{}

	subs      map[int]func(Event)
	nextSubID int
	overHooks []func(Record)
}

// NewSession creates an idle session. Call Start to begin a game.
func NewSession(cfg SessionConfig) *Session {
	if cfg.BaseDropInterval <= 0 {
		cfg.BaseDropInterval = DefaultDropInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.PlayerName == "" {
		cfg.PlayerName = "Player"
	}
	return &Session{
		cfg:        cfg,
		clock:      cfg.Clock,
		engine:     engine.New(cfg.Engine),
		classifier: gesture.NewClassifier(cfg.Gesture),
		mapper:     action.NewMapper(cfg.Action),
		difficulty: clampDifficulty(cfg.Difficulty),
		playerName: cfg.PlayerName,
		subs:       make(map[int]func(Event)),
	}
}

func clampDifficulty(d float64) float64 {
	if d == 0 {
		return 1
	}
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// Start resets the board and latches and begins a new game.
func (s *Session) Start() {
	s.mu.Lock()
	s.stopGravityLocked()
	s.engine.Reset()
	s.resetRecognitionLocked()
	s.running = true
	s.paused = false
	s.overHandled = false
	s.elapsed = 0
	s.runningSince = s.clock()
	s.lastAction = engine.ActionNone
	s.startGravityLocked()
	metrics.Score.Set(0)
	ev := s.eventLocked(EventStarted, engine.ActionNone, engine.TickResult{})
	s.mu.Unlock()

	log.Printf("Game started: player=%s difficulty=%.2f", ev.Snapshot.PlayerName, ev.Snapshot.Difficulty)
	s.publish(ev)
}

// Stop halts gravity, ends the game without a record and resets every latch.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.resetRecognitionLocked()
		s.mu.Unlock()
		return
	}
	s.stopGravityLocked()
	s.accumulateLocked()
	s.running = false
	s.paused = false
	s.resetRecognitionLocked()
	ev := s.eventLocked(EventStopped, engine.ActionNone, engine.TickResult{})
	s.mu.Unlock()

	log.Println("Game stopped")
	s.publish(ev)
}

// Pause stops gravity and drops actions. Latches are kept and the classifier
// keeps running.
func (s *Session) Pause() bool {
	s.mu.Lock()
	if !s.running || s.paused || s.engine.GameOver() {
		s.mu.Unlock()
		return false
	}
	s.stopGravityLocked()
	s.accumulateLocked()
	s.paused = true
	ev := s.eventLocked(EventPaused, engine.ActionNone, engine.TickResult{})
	s.mu.Unlock()

	s.publish(ev)
	return true
}

// Resume restarts gravity and action application after Pause.
func (s *Session) Resume() bool {
	s.mu.Lock()
	if !s.running || !s.paused {
		s.mu.Unlock()
		return false
	}
	s.paused = false
	s.runningSince = s.clock()
	s.startGravityLocked()
	ev := s.eventLocked(EventResumed, engine.ActionNone, engine.TickResult{})
	s.mu.Unlock()

	s.publish(ev)
	return true
}

// SetDifficulty changes the gravity speed. It takes effect on the next timer
// rearm.
func (s *Session) SetDifficulty(d float64) float64 {
	s.mu.Lock()
	s.difficulty = clampDifficulty(d)
	ev := s.eventLocked(EventDifficulty, engine.ActionNone, engine.TickResult{})
	s.mu.Unlock()

	s.publish(ev)
	return ev.Snapshot.Difficulty
}

// SetPlayerName sets the name used for the next game over record.
func (s *Session) SetPlayerName(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerName = name
}

// DropInterval returns the current gravity period.
func (s *Session) DropInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropIntervalLocked()
}

func (s *Session) dropIntervalLocked() time.Duration {
	return time.Duration(float64(s.cfg.BaseDropInterval) / s.difficulty)
}

// Active reports whether a game is running, unpaused and not over.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptingLocked()
}

func (s *Session) acceptingLocked() bool {
	return s.running && !s.paused && !s.engine.GameOver()
}

// Apply runs one pose frame through classify, map and act. A frame with no
// joints counts as a lost hand: recognition state is reset. The returned
// action is the one applied to the engine, or ActionNone.
func (s *Session) Apply(f detector.PoseFrame) engine.Action {
	now := s.clock()

	s.mu.Lock()
	if f.Count() == 0 {
		if s.handPresent {
			s.resetRecognitionLocked()
		}
		s.handPresent = false
		s.mu.Unlock()
		return engine.ActionNone
	}
	s.handPresent = true

	res := s.classifier.Classify(&f, now)
	if res.Gesture != gesture.None {
		metrics.Gestures.WithLabelValues(res.Gesture.String()).Inc()
	}
	if !s.acceptingLocked() {
		s.mu.Unlock()
		return engine.ActionNone
	}

	a := s.mapper.Map(res.Gesture, res.Pose.Bucket, true, now)
	if a == engine.ActionNone {
		s.mu.Unlock()
		return engine.ActionNone
	}
	events, rec := s.applyLocked(a, "gesture")
	s.mu.Unlock()

	s.finish(events, rec)
	return a
}

// Do applies a manual action. It reports whether the engine accepted it.
func (s *Session) Do(a engine.Action) bool {
	s.mu.Lock()
	if !s.acceptingLocked() || a == engine.ActionNone {
		s.mu.Unlock()
		return false
	}
	events, rec := s.applyLocked(a, "manual")
	moved := len(events) > 0 && (events[0].Result.Moved || events[0].Result.Locked)
	s.mu.Unlock()

	s.finish(events, rec)
	return moved
}

// GravityTick moves the piece one row down. It is a no-op unless a game is
// active.
func (s *Session) GravityTick() engine.TickResult {
	res, _ := s.timedTick(nil)
	return res
}

// timedTick is GravityTick for the timer goroutine owning stop. It reports
// false without ticking when stop no longer belongs to the running timer,
// e.g. after Pause and Resume raced with the fire.
func (s *Session) timedTick(stop chan struct{}) (engine.TickResult, bool) {
	s.mu.Lock()
	if stop != nil && s.gravityStop != stop {
		s.mu.Unlock()
		return engine.TickResult{}, false
	}
	if !s.acceptingLocked() {
		res := engine.TickResult{GameOver: s.engine.GameOver()}
		s.mu.Unlock()
		return res, true
	}
	res := s.engine.GravityTick()
	events, rec := s.afterMutationLocked(EventGravity, engine.ActionNone, res)
	s.mu.Unlock()

	s.finish(events, rec)
	return res, true
}

// StopRecognition resets classifier and mapper state so a later resume does
// not replay stale hysteresis.
func (s *Session) StopRecognition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetRecognitionLocked()
	s.handPresent = false
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every event and returns a function that removes
// it. Callbacks must not block.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// OnGameOver registers fn to receive the record of every finished game. Hooks
// run on their own goroutine and cannot affect gameplay.
func (s *Session) OnGameOver(fn func(Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overHooks = append(s.overHooks, fn)
}

func (s *Session) applyLocked(a engine.Action, source string) ([]Event, *Record) {
	res := s.engine.Apply(a)
	s.lastAction = a
	metrics.Actions.WithLabelValues(a.String(), source, strconv.FormatBool(res.Moved || res.Locked)).Inc()
	return s.afterMutationLocked(EventAction, a, res)
}

func (s *Session) afterMutationLocked(kind EventKind, a engine.Action, res engine.TickResult) ([]Event, *Record) {
	if res.Cleared > 0 {
		metrics.LinesCleared.Add(float64(res.Cleared))
		metrics.Score.Set(float64(s.engine.Score()))
	}
	events := []Event{s.eventLocked(kind, a, res)}
	if !res.GameOver || s.overHandled {
		return events, nil
	}

	s.overHandled = true
	s.stopGravityLocked()
	s.accumulateLocked()
	metrics.GamesOver.Inc()
	rec := &Record{
		PlayerName: s.playerName,
		Score:      s.engine.Score(),
		Lines:      s.engine.Lines(),
		Timestamp:  s.clock(),
	}
	events = append(events, s.eventLocked(EventGameOver, engine.ActionNone, res))
	return events, rec
}

func (s *Session) finish(events []Event, rec *Record) {
	for _, ev := range events {
		s.publish(ev)
	}
	if rec == nil {
		return
	}
	log.Printf("Game over: player=%s score=%d lines=%d", rec.PlayerName, rec.Score, rec.Lines)

	s.mu.Lock()
	hooks := append(([]func(Record))(nil), s.overHooks...)
	s.mu.Unlock()
	for _, fn := range hooks {
		go fn(*rec)
	}
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (s *Session) eventLocked(kind EventKind, a engine.Action, res engine.TickResult) Event {
	return Event{Kind: kind, Action: a, Result: res, Snapshot: s.snapshotLocked()}
}

func (s *Session) snapshotLocked() SessionSnapshot {
	elapsed := s.elapsed
	if !s.runningSince.IsZero() {
		elapsed += s.clock().Sub(s.runningSince)
	}
	return SessionSnapshot{
		Game:         s.engine.Snapshot(),
		Running:      s.running,
		Paused:       s.paused,
		ElapsedMs:    elapsed.Milliseconds(),
		Difficulty:   s.difficulty,
		DropInterval: s.dropIntervalLocked(),
		PlayerName:   s.playerName,
		HandPresent:  s.handPresent,
		Gesture:      s.classifier.State(),
		LastAction:   s.lastAction,
	}
}

func (s *Session) accumulateLocked() {
	if s.runningSince.IsZero() {
		return
	}
	s.elapsed += s.clock().Sub(s.runningSince)
	s.runningSince = time.Time{}
}

func (s *Session) resetRecognitionLocked() {
	s.classifier.Reset()
	s.mapper.Reset()
}

func (s *Session) startGravityLocked() {
	if s.cfg.ManualGravity || s.gravityStop != nil {
		return
	}
	s.gravityStop = make(chan struct{})
	go s.runGravity(s.gravityStop)
}

func (s *Session) stopGravityLocked() {
	if s.gravityStop != nil {
		close(s.gravityStop)
		s.gravityStop = nil
	}
}

// runGravity ticks the engine on a timer that is rearmed with the current
// drop interval after every fire.
func (s *Session) runGravity(stop chan struct{}) {
	timer := time.NewTimer(s.DropInterval())
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			if _, ok := s.timedTick(stop); !ok {
				return
			}
			timer.Reset(s.DropInterval())
		}
	}
}
