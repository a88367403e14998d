package engine

// Default board dimensions.
const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// Cell is one grid square. A zero Cell is empty.
type Cell struct {
	Filled bool  `json:"filled"`
	Color  uint8 `json:"color,omitempty"`
}

// Filled returns a filled cell with the given colour identifier.
func Filled(colorID uint8) Cell {
	return Cell{Filled: true, Color: colorID}
}

// Grid is a fixed-size W x H board stored row-major with row 0 at the bottom.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid creates an empty grid. Non-positive dimensions fall back to the
// defaults.
func NewGrid(width, height int) *Grid {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (row, col) lies on the board.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// At returns the cell at (row, col). Out-of-bounds coordinates read as empty.
func (g *Grid) At(row, col int) Cell {
	if !g.InBounds(row, col) {
		return Cell{}
	}
	return g.cells[row*g.width+col]
}

// Set writes a cell. Out-of-bounds writes are ignored.
func (g *Grid) Set(row, col int, c Cell) {
	if !g.InBounds(row, col) {
		return
	}
	g.cells[row*g.width+col] = c
}

// Clear empties every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{}
	}
}

func (g *Grid) row(r int) []Cell {
	return g.cells[r*g.width : (r+1)*g.width]
}

func (g *Grid) rowFull(r int) bool {
	for _, c := range g.row(r) {
		if !c.Filled {
			return false
		}
	}
	return true
}

// ClearFullRows removes every completely filled row, compacts the surviving
// rows downward keeping their relative order, fills the top with empty rows
// and returns the number of rows removed.
func (g *Grid) ClearFullRows() int {
	write := 0
	cleared := 0
	for r := 0; r < g.height; r++ {
		if g.rowFull(r) {
			cleared++
			continue
		}
		if write != r {
			copy(g.row(write), g.row(r))
		}
		write++
	}
	for r := write; r < g.height; r++ {
		row := g.row(r)
		for i := range row {
			row[i] = Cell{}
		}
	}
	return cleared
}

// Rows returns a copy of the grid as rows, index 0 being the bottom row.
func (g *Grid) Rows() [][]Cell {
	rows := make([][]Cell, g.height)
	for r := range rows {
		rows[r] = append([]Cell(nil), g.row(r)...)
	}
	return rows
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	return &Grid{
		width:  g.width,
		height: g.height,
		cells:  append([]Cell(nil), g.cells...),
	}
}
