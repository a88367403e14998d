// Package tray provides the system tray menu for Handtris.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// GameState is the game status shown in the menu.
type GameState int

const (
	Idle GameState = iota
	Playing
	Paused
	Over
)

func (s GameState) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Over:
		return "Game over"
	default:
		return "Idle"
	}
}

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onStart  func()
	onPause  func(pause bool)
	onStop   func()
	onOpen   func()
	onQuit   func()
	enabled  bool
	state    GameState
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuPause  *systray.MenuItem
	menuScore  *systray.MenuItem
}

// New creates a new Tray with hand control enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for the hand control toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnStart sets the callback for "New game".
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnPause sets the callback for the pause item. It receives true to pause
// and false to resume.
func (t *Tray) OnPause(fn func(pause bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPause = fn
}

// OnStop sets the callback for "End game".
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnOpen sets the callback for "Open in browser".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Handtris")
	systray.SetTooltip("Handtris - play with your hand")

	t.mu.Lock()
	t.menuScore = systray.AddMenuItem(scoreLine(Idle, 0, 0), "Current game")
	t.menuScore.Disable()
	systray.AddSeparator()

	menuStart := systray.AddMenuItem("New game", "Start a new game")
	t.menuPause = systray.AddMenuItem("Pause", "Pause or resume the game")
	menuStop := systray.AddMenuItem("End game", "End the current game")
	systray.AddSeparator()

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand control")
	menuOpen := systray.AddMenuItem("Open in browser...", "Open the game board")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Handtris")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuStart.ClickedCh:
				t.handleStart()
			case <-t.menuPause.ClickedCh:
				t.handlePause()
			case <-menuStop.ClickedCh:
				t.handleStop()
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Hand control on"
	}
	return "○ Hand control off"
}

func scoreLine(state GameState, score uint64, lines int) string {
	return fmt.Sprintf("%s - score %d, lines %d", state, score, lines)
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleStart() {
	t.mu.RLock()
	callback := t.onStart
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handlePause pauses a running game and resumes a paused one.
func (t *Tray) handlePause() {
	t.mu.RLock()
	callback := t.onPause
	state := t.state
	t.mu.RUnlock()

	if callback == nil {
		return
	}
	switch state {
	case Playing:
		callback(true)
	case Paused:
		callback(false)
	}
}

func (t *Tray) handleStop() {
	t.mu.RLock()
	callback := t.onStop
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetGame updates the score line and the pause item.
func (t *Tray) SetGame(state GameState, score uint64, lines int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = state
	if t.menuScore != nil {
		t.menuScore.SetTitle(scoreLine(state, score, lines))
	}
	if t.menuPause != nil {
		if state == Paused {
			t.menuPause.SetTitle("Resume")
		} else {
			t.menuPause.SetTitle("Pause")
		}
		if state == Playing || state == Paused {
			t.menuPause.Enable()
		} else {
			t.menuPause.Disable()
		}
	}
}

// State returns the last state passed to SetGame.
func (t *Tray) State() GameState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
