// Package engine implements the falling-block puzzle state machine: the grid,
// tetromino pieces, gravity, locking, line clears and scoring.
package engine

import "image/color"

// Kind identifies one of the seven tetromino shapes.
type Kind int

const (
	KindI Kind = iota
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
	// NumKinds is the number of distinct piece kinds.
	NumKinds
)

// Kinds lists every piece kind in table order.
var Kinds = [NumKinds]Kind{KindI, KindO, KindT, KindS, KindZ, KindJ, KindL}

var kindNames = [NumKinds]string{"I", "O", "T", "S", "Z", "J", "L"}

// String returns the single-letter name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return "?"
	}
	return kindNames[k]
}

// ColorID returns the cell colour identifier written into the grid when a
// piece of this kind locks. Zero is reserved for empty cells.
func (k Kind) ColorID() uint8 {
	return uint8(k) + 1
}

var kindColors = [NumKinds]color.RGBA{
	{R: 0, G: 255, B: 255, A: 255}, // I cyan
	{R: 255, G: 255, B: 0, A: 255}, // O yellow
	{R: 128, G: 0, B: 128, A: 255}, // T purple
	{R: 0, G: 255, B: 0, A: 255},   // S green
	{R: 255, G: 0, B: 0, A: 255},   // Z red
	{R: 0, G: 0, B: 255, A: 255},   // J blue
	{R: 255, G: 128, B: 0, A: 255}, // L orange
}

// RGBA returns the display colour of the kind.
func (k Kind) RGBA() color.RGBA {
	if k < 0 || k >= NumKinds {
		return color.RGBA{}
	}
	return kindColors[k]
}

// ColorForID maps a grid colour identifier back to its display colour.
func ColorForID(id uint8) color.RGBA {
	if id == 0 {
		return color.RGBA{}
	}
	return Kind(id - 1).RGBA()
}

// Offset is a cell offset relative to a piece anchor. DRow grows downward
// (world row = anchor row - DRow) and DCol grows to the right.
type Offset struct {
	DRow int `json:"drow"`
	DCol int `json:"dcol"`
}

// Point is a grid coordinate. Row 0 is the bottom of the well.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction is a rotation direction.
type Direction int

const (
	// Clockwise advances the rotation index by one.
	Clockwise Direction = 1
	// CounterClockwise moves the rotation index back by one.
	CounterClockwise Direction = -1
)

// shapes holds the four rotation states of every kind. S and Z reuse the
// same offsets for indices 0/2 and 1/3.
var shapes = [NumKinds][4][4]Offset{
	KindI: {
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
	KindO: {
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	},
	KindT: {
		{{0, 1}, {1, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 1}},
		{{0, 1}, {1, 0}, {1, 1}, {2, 1}},
	},
	KindS: {
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
	},
	KindZ: {
		{{1, 1}, {1, 2}, {2, 0}, {2, 1}},
		{{0, 2}, {1, 1}, {1, 2}, {2, 1}},
		{{1, 1}, {1, 2}, {2, 0}, {2, 1}},
		{{0, 2}, {1, 1}, {1, 2}, {2, 1}},
	},
	KindJ: {
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 0}},
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 2}, {2, 0}, {2, 1}, {2, 2}},
	},
	KindL: {
		{{0, 1}, {1, 1}, {2, 1}, {2, 0}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {0, 2}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {2, 1}, {2, 2}},
	},
}

// Piece is a tetromino with a rotation state and an anchor on the grid.
// Pieces are values: Moved and Rotated return candidates and never mutate
// the receiver.
type Piece struct {
	Kind     Kind  `json:"kind"`
	Rotation int   `json:"rotation"`
	Anchor   Point `json:"anchor"`
}

// NewPiece returns a piece of the given kind in rotation 0 at anchor.
func NewPiece(kind Kind, anchor Point) Piece {
	return Piece{Kind: kind, Anchor: anchor}
}

// Offsets returns the occupied cell offsets for the current rotation.
func (p Piece) Offsets() [4]Offset {
	return shapes[p.Kind][p.Rotation]
}

// Cells returns the world coordinates of the four occupied cells.
func (p Piece) Cells() [4]Point {
	var cells [4]Point
	for i, o := range p.Offsets() {
		cells[i] = Point{Row: p.Anchor.Row - o.DRow, Col: p.Anchor.Col + o.DCol}
	}
	return cells
}

// Moved returns a copy shifted by dx columns and dy rows. Positive dy moves
// the piece up; gravity uses dy = -1.
func (p Piece) Moved(dx, dy int) Piece {
	p.Anchor.Col += dx
	p.Anchor.Row += dy
	return p
}

// Rotated returns a copy rotated one step in dir.
func (p Piece) Rotated(dir Direction) Piece {
	p.Rotation = ((p.Rotation+int(dir))%4 + 4) % 4
	return p
}
