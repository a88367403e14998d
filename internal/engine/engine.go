package engine

import "time"

// PointsPerRow is the score awarded for every cleared row.
const PointsPerRow = 100

// Config holds construction options for an Engine.
type Config struct {
	Width  int
	Height int
	// Randomizer picks new piece kinds. Defaults to a time-seeded uniform
	// randomizer.
	Randomizer Randomizer
}

// TickResult describes what a gravity tick or an applied action did.
type TickResult struct {
	// Moved is true when the piece mutation was committed.
	Moved bool `json:"moved"`
	// Locked is true when the piece could not fall and was written into the grid.
	Locked bool `json:"locked"`
	// Cleared is the number of rows removed by the lock.
	Cleared int `json:"cleared"`
	// GameOver reports the engine state after the call.
	GameOver bool `json:"game_over"`
}

// Engine is the authoritative grid and piece state machine. It is not safe
// for concurrent use; callers serialize access (see app.Session).
//
// Every method is total: calls that cannot apply, such as moving after game
// over, are no-ops reported through return values.
type Engine struct {
	grid     *Grid
	rand     Randomizer
	current  *Piece
	next     *Piece
	score    uint64
	lines    int
	pieces   int
	gameOver bool
}

// New creates an engine and spawns the first piece.
func New(cfg Config) *Engine {
	r := cfg.Randomizer
	if r == nil {
		r = NewRandomizer(uint64(time.Now().UnixNano()))
	}
	e := &Engine{
		grid: NewGrid(cfg.Width, cfg.Height),
		rand: r,
	}
	e.Spawn()
	return e
}

// Reset clears the board and score and spawns a fresh piece.
func (e *Engine) Reset() {
	e.grid.Clear()
	e.current = nil
	e.next = nil
	e.score = 0
	e.lines = 0
	e.pieces = 0
	e.gameOver = false
	e.Spawn()
}

// SpawnAnchor is the anchor of newly spawned pieces: top row, centred.
func (e *Engine) SpawnAnchor() Point {
	return Point{Row: e.grid.Height() - 1, Col: e.grid.Width()/2 - 1}
}

// Spawn promotes the next piece (generating one if absent) to the current
// piece at the spawn anchor and generates a new next piece. It returns false
// and enters game over when the spawned piece cannot be placed.
func (e *Engine) Spawn() bool {
	if e.gameOver {
		return false
	}
	anchor := e.SpawnAnchor()
	if e.next == nil {
		p := NewPiece(e.rand.Next(), anchor)
		e.next = &p
	}
	current := NewPiece(e.next.Kind, anchor)
	next := NewPiece(e.rand.Next(), anchor)
	e.next = &next

	if !e.CanPlace(current) {
		e.current = nil
		e.gameOver = true
		return false
	}
	e.current = &current
	return true
}

// CanPlace reports whether every cell of p is on the board and empty.
func (e *Engine) CanPlace(p Piece) bool {
	for _, c := range p.Cells() {
		if !e.grid.InBounds(c.Row, c.Col) {
			return false
		}
		if e.grid.At(c.Row, c.Col).Filled {
			return false
		}
	}
	return true
}

// TryMove shifts the current piece by dx columns and dy rows. A rejected
// move leaves the piece unchanged and returns false.
func (e *Engine) TryMove(dx, dy int) bool {
	if e.gameOver || e.current == nil {
		return false
	}
	candidate := e.current.Moved(dx, dy)
	if !e.CanPlace(candidate) {
		return false
	}
	*e.current = candidate
	return true
}

// TryRotate rotates the current piece one step without wall kicks.
func (e *Engine) TryRotate(dir Direction) bool {
	if e.gameOver || e.current == nil {
		return false
	}
	candidate := e.current.Rotated(dir)
	if !e.CanPlace(candidate) {
		return false
	}
	*e.current = candidate
	return true
}

// GravityTick moves the current piece one row down, locking it when it
// cannot fall.
func (e *Engine) GravityTick() TickResult {
	if e.gameOver || e.current == nil {
		return TickResult{GameOver: e.gameOver}
	}
	if e.TryMove(0, -1) {
		return TickResult{Moved: true}
	}
	cleared := e.Lock()
	return TickResult{Locked: true, Cleared: cleared, GameOver: e.gameOver}
}

// Lock writes the current piece into the grid, clears full rows, scores
// them and spawns the next piece. It returns the number of cleared rows.
func (e *Engine) Lock() int {
	if e.current == nil {
		return 0
	}
	colorID := e.current.Kind.ColorID()
	for _, c := range e.current.Cells() {
		e.grid.Set(c.Row, c.Col, Filled(colorID))
	}
	e.current = nil
	e.pieces++

	cleared := e.grid.ClearFullRows()
	e.score += uint64(cleared) * PointsPerRow
	e.lines += cleared

	e.Spawn()
	return cleared
}

// Apply executes a gameplay action. MoveDown behaves like a gravity tick.
func (e *Engine) Apply(a Action) TickResult {
	switch a {
	case ActionMoveLeft:
		return TickResult{Moved: e.TryMove(-1, 0), GameOver: e.gameOver}
	case ActionMoveRight:
		return TickResult{Moved: e.TryMove(1, 0), GameOver: e.gameOver}
	case ActionMoveDown:
		return e.GravityTick()
	case ActionRotateLeft:
		return TickResult{Moved: e.TryRotate(CounterClockwise), GameOver: e.gameOver}
	case ActionRotateRight:
		return TickResult{Moved: e.TryRotate(Clockwise), GameOver: e.gameOver}
	default:
		return TickResult{GameOver: e.gameOver}
	}
}

// Score returns the accumulated score.
func (e *Engine) Score() uint64 { return e.score }

// Lines returns the total number of cleared rows.
func (e *Engine) Lines() int { return e.lines }

// GameOver reports whether the engine reached its terminal state.
func (e *Engine) GameOver() bool { return e.gameOver }

// Current returns a copy of the falling piece.
func (e *Engine) Current() (Piece, bool) {
	if e.current == nil {
		return Piece{}, false
	}
	return *e.current, true
}

// Next returns a copy of the queued piece.
func (e *Engine) Next() (Piece, bool) {
	if e.next == nil {
		return Piece{}, false
	}
	return *e.next, true
}

// Snapshot is a read-only copy of the engine state for renderers and
// persistence collaborators.
type Snapshot struct {
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Rows         [][]Cell `json:"rows"`
	Current      *Piece   `json:"current,omitempty"`
	CurrentCells []Point  `json:"current_cells,omitempty"`
	Next         *Piece   `json:"next,omitempty"`
	Score        uint64   `json:"score"`
	Lines        int      `json:"lines"`
	Pieces       int      `json:"pieces"`
	GameOver     bool     `json:"game_over"`
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Width:    e.grid.Width(),
		Height:   e.grid.Height(),
		Rows:     e.grid.Rows(),
		Score:    e.score,
		Lines:    e.lines,
		Pieces:   e.pieces,
		GameOver: e.gameOver,
	}
	if e.current != nil {
		p := *e.current
		s.Current = &p
		cells := p.Cells()
		s.CurrentCells = cells[:]
	}
	if e.next != nil {
		p := *e.next
		s.Next = &p
	}
	return s
}
