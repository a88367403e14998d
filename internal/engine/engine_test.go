package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(kinds ...Kind) *Engine {
	return New(Config{Randomizer: Sequence(kinds...)})
}

func fillRow(g *Grid, row int, except ...int) {
	skip := make(map[int]bool, len(except))
	for _, c := range except {
		skip[c] = true
	}
	for col := 0; col < g.Width(); col++ {
		if skip[col] {
			continue
		}
		g.Set(row, col, Filled(1))
	}
}

func TestNewSpawnsAtAnchor(t *testing.T) {
	e := newTestEngine(KindO, KindT)

	cur, ok := e.Current()
	require.True(t, ok, "expected a current piece after New")
	assert.Equal(t, KindO, cur.Kind)
	assert.Equal(t, Point{Row: 19, Col: 4}, cur.Anchor)
	assert.Equal(t, 0, cur.Rotation)

	next, ok := e.Next()
	require.True(t, ok)
	assert.Equal(t, KindT, next.Kind)
	assert.False(t, e.GameOver())
}

func TestSpawnPromotesNext(t *testing.T) {
	e := newTestEngine(KindI, KindT, KindL)

	require.True(t, e.Spawn())
	cur, _ := e.Current()
	assert.Equal(t, KindT, cur.Kind)
	next, _ := e.Next()
	assert.Equal(t, KindL, next.Kind)
}

func TestRotationCycles(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.String(), func(t *testing.T) {
			p := NewPiece(k, Point{Row: 10, Col: 4})
			cw := p
			ccw := p
			for i := 0; i < 4; i++ {
				cw = cw.Rotated(Clockwise)
				ccw = ccw.Rotated(CounterClockwise)
			}
			assert.Equal(t, p, cw)
			assert.Equal(t, p, ccw)
			assert.Equal(t, 3, p.Rotated(CounterClockwise).Rotation)
		})
	}
}

func TestSZRotationPairs(t *testing.T) {
	for _, k := range []Kind{KindS, KindZ} {
		assert.Equal(t, shapes[k][0], shapes[k][2], "%s rotations 0 and 2", k)
		assert.Equal(t, shapes[k][1], shapes[k][3], "%s rotations 1 and 3", k)
	}
}

func TestCanPlace(t *testing.T) {
	e := newTestEngine(KindO)
	e.grid.Set(5, 5, Filled(2))

	tests := []struct {
		name  string
		piece Piece
		want  bool
	}{
		{"empty area", NewPiece(KindO, Point{Row: 10, Col: 0}), true},
		{"bottom edge", NewPiece(KindO, Point{Row: 1, Col: 0}), true},
		{"below floor", NewPiece(KindO, Point{Row: 0, Col: 0}), false},
		{"left wall", NewPiece(KindO, Point{Row: 10, Col: -1}), false},
		{"right wall", NewPiece(KindO, Point{Row: 10, Col: 9}), false},
		{"above ceiling", NewPiece(KindI, Point{Row: 20, Col: 0}), false},
		{"overlaps filled cell", NewPiece(KindO, Point{Row: 6, Col: 4}), false},
		{"adjacent to filled cell", NewPiece(KindO, Point{Row: 6, Col: 6}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.CanPlace(tt.piece))
		})
	}
}

func countFilled(g *Grid) int {
	n := 0
	for _, row := range g.Rows() {
		for _, c := range row {
			if c.Filled {
				n++
			}
		}
	}
	return n
}

// stamps reports whether painting p onto a copy of g adds exactly four
// filled cells, i.e. every cell is on the board and was empty.
func stamps(g *Grid, p Piece) bool {
	board := g.Clone()
	before := countFilled(board)
	for _, c := range p.Cells() {
		board.Set(c.Row, c.Col, Filled(p.Kind.ColorID()))
	}
	return countFilled(board)-before == 4
}

func TestCanPlaceRandomGrids(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 20; round++ {
		e := newTestEngine(KindO)
		density := rng.Float64() * 0.5
		for row := 0; row < e.grid.Height(); row++ {
			for col := 0; col < e.grid.Width(); col++ {
				if rng.Float64() < density {
					e.grid.Set(row, col, Filled(uint8(1+rng.IntN(7))))
				}
			}
		}

		for _, k := range Kinds {
			for rot := 0; rot < 4; rot++ {
				for row := -2; row < 23; row++ {
					for col := -2; col < 12; col++ {
						p := Piece{Kind: k, Rotation: rot, Anchor: Point{Row: row, Col: col}}
						if got, want := e.CanPlace(p), stamps(e.grid, p); got != want {
							t.Fatalf("round %d density %.2f: CanPlace(%+v) = %v, want %v", round, density, p, got, want)
						}
					}
				}
			}
		}
	}
}

func TestTryMoveRejectsWithoutChange(t *testing.T) {
	e := newTestEngine(KindO)
	e.current.Anchor.Col = 0
	before, _ := e.Current()

	assert.False(t, e.TryMove(-1, 0))
	after, _ := e.Current()
	assert.Equal(t, before, after)

	assert.True(t, e.TryMove(1, 0))
	after, _ = e.Current()
	assert.Equal(t, 1, after.Anchor.Col)
}

func TestTryRotateNoWallKick(t *testing.T) {
	e := newTestEngine(KindI)
	// Rotation 1 of I spans four columns starting at the anchor.
	e.current.Anchor = Point{Row: 10, Col: 7}
	assert.False(t, e.TryRotate(Clockwise))
	cur, _ := e.Current()
	assert.Equal(t, 0, cur.Rotation)
	assert.Equal(t, Point{Row: 10, Col: 7}, cur.Anchor)
}

func TestGravityLocksOPieceOnNineteenthTick(t *testing.T) {
	e := newTestEngine(KindO, KindT)

	for i := 1; i <= 18; i++ {
		res := e.GravityTick()
		require.True(t, res.Moved, "tick %d should move", i)
		require.False(t, res.Locked)
	}
	res := e.GravityTick()
	assert.Equal(t, TickResult{Locked: true}, res)

	for _, p := range []Point{{0, 4}, {0, 5}, {1, 4}, {1, 5}} {
		cell := e.grid.At(p.Row, p.Col)
		assert.True(t, cell.Filled, "cell %v should be filled", p)
		assert.Equal(t, KindO.ColorID(), cell.Color)
	}
	assert.Equal(t, uint64(0), e.Score())

	cur, ok := e.Current()
	require.True(t, ok)
	assert.Equal(t, KindT, cur.Kind)
	assert.Equal(t, e.SpawnAnchor(), cur.Anchor)
}

func TestLockClearsRowAndScores(t *testing.T) {
	e := newTestEngine(KindI, KindO)
	fillRow(e.grid, 0, 9)
	// Vertical I in rotation 2 occupies column anchor+2.
	e.current.Rotation = 2
	e.current.Anchor = Point{Row: 3, Col: 7}

	cleared := e.Lock()
	assert.Equal(t, 1, cleared)
	assert.Equal(t, uint64(100), e.Score())
	assert.Equal(t, 1, e.Lines())

	// The three I cells above row 0 shift down by one.
	for row := 0; row < 3; row++ {
		assert.True(t, e.grid.At(row, 9).Filled, "row %d col 9", row)
	}
	assert.False(t, e.grid.At(3, 9).Filled)
	for col := 0; col < 9; col++ {
		assert.False(t, e.grid.At(0, col).Filled, "col %d", col)
	}
}

func TestClearFullRowsPreservesOrder(t *testing.T) {
	g := NewGrid(4, 6)
	fillRow(g, 0)
	g.Set(1, 0, Filled(2))
	fillRow(g, 2)
	g.Set(3, 1, Filled(3))
	fillRow(g, 4)
	g.Set(5, 3, Filled(4))

	require.Equal(t, 3, g.ClearFullRows())

	want := NewGrid(4, 6)
	want.Set(0, 0, Filled(2))
	want.Set(1, 1, Filled(3))
	want.Set(2, 3, Filled(4))
	if diff := cmp.Diff(want.Rows(), g.Rows()); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestClearFullRowsAllFilled(t *testing.T) {
	g := NewGrid(3, 5)
	for r := 0; r < 5; r++ {
		fillRow(g, r)
	}
	assert.Equal(t, 5, g.ClearFullRows())
	if diff := cmp.Diff(NewGrid(3, 5).Rows(), g.Rows()); diff != "" {
		t.Errorf("expected empty grid (-want +got):\n%s", diff)
	}
}

func TestScoreIsHundredPerLine(t *testing.T) {
	e := newTestEngine(KindI, KindI)
	for r := 0; r < 4; r++ {
		fillRow(e.grid, r, 0)
	}
	e.current.Rotation = 0
	e.current.Anchor = Point{Row: 3, Col: -1}

	assert.Equal(t, 4, e.Lock())
	assert.Equal(t, uint64(400), e.Score())
	assert.Equal(t, 4, e.Lines())
}

func TestGameOverOnBlockedSpawn(t *testing.T) {
	e := newTestEngine(KindO, KindO)
	fillRow(e.grid, 18, 0)

	e.current = nil
	assert.False(t, e.Spawn())
	assert.True(t, e.GameOver())
	_, ok := e.Current()
	assert.False(t, ok)
}

func TestNoMutationAfterGameOver(t *testing.T) {
	e := newTestEngine(KindO)
	fillRow(e.grid, 18, 0)
	e.current = nil
	e.Spawn()
	require.True(t, e.GameOver())

	before := e.Snapshot()
	for _, a := range []Action{ActionMoveLeft, ActionMoveRight, ActionMoveDown, ActionRotateLeft, ActionRotateRight} {
		res := e.Apply(a)
		assert.False(t, res.Moved, a.String())
		assert.True(t, res.GameOver)
	}
	assert.Equal(t, TickResult{GameOver: true}, e.GravityTick())
	assert.Equal(t, 0, e.Lock())
	if diff := cmp.Diff(before, e.Snapshot()); diff != "" {
		t.Errorf("state changed after game over (-before +after):\n%s", diff)
	}
}

func TestExactlyOneOfGameOverOrCurrent(t *testing.T) {
	e := New(Config{Randomizer: NewRandomizer(7)})
	for i := 0; i < 5000 && !e.GameOver(); i++ {
		_, hasCurrent := e.Current()
		require.NotEqual(t, e.GameOver(), hasCurrent, "step %d", i)
		e.Apply([]Action{ActionMoveLeft, ActionMoveRight, ActionRotateRight, ActionMoveDown}[i%4])
		e.GravityTick()
	}
	_, hasCurrent := e.Current()
	assert.NotEqual(t, e.GameOver(), hasCurrent)
}

func TestApplyMapsActions(t *testing.T) {
	e := newTestEngine(KindT)
	start, _ := e.Current()

	assert.True(t, e.Apply(ActionMoveLeft).Moved)
	cur, _ := e.Current()
	assert.Equal(t, start.Anchor.Col-1, cur.Anchor.Col)

	assert.True(t, e.Apply(ActionMoveRight).Moved)
	assert.True(t, e.Apply(ActionRotateRight).Moved)
	cur, _ = e.Current()
	assert.Equal(t, 1, cur.Rotation)

	assert.True(t, e.Apply(ActionRotateLeft).Moved)
	assert.True(t, e.Apply(ActionMoveDown).Moved)
	cur, _ = e.Current()
	assert.Equal(t, start.Anchor.Row-1, cur.Anchor.Row)

	assert.False(t, e.Apply(ActionNone).Moved)
}

func TestReset(t *testing.T) {
	e := newTestEngine(KindO)
	fillRow(e.grid, 0, 0)
	e.score = 500
	e.lines = 5

	e.Reset()
	assert.Equal(t, uint64(0), e.Score())
	assert.Equal(t, 0, e.Lines())
	assert.False(t, e.GameOver())
	assert.False(t, e.grid.At(0, 1).Filled)
	_, ok := e.Current()
	assert.True(t, ok)
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(KindO)
	snap := e.Snapshot()
	snap.Rows[0][0] = Filled(9)
	snap.Current.Anchor.Row = 0

	assert.False(t, e.grid.At(0, 0).Filled)
	cur, _ := e.Current()
	assert.Equal(t, 19, cur.Anchor.Row)
	assert.Len(t, snap.CurrentCells, 4)
}

func TestParseAction(t *testing.T) {
	for a := range actionNames {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAction("jump")
	assert.Error(t, err)
}

func TestSequenceRandomizerCycles(t *testing.T) {
	s := Sequence(KindI, KindJ)
	assert.Equal(t, []Kind{KindI, KindJ, KindI}, []Kind{s.Next(), s.Next(), s.Next()})
	assert.Equal(t, KindO, Sequence().Next())
}

func TestUniformRandomizerIsReproducible(t *testing.T) {
	a := NewRandomizer(42)
	b := NewRandomizer(42)
	for i := 0; i < 50; i++ {
		ka, kb := a.Next(), b.Next()
		require.Equal(t, ka, kb)
		require.True(t, ka >= 0 && ka < NumKinds)
	}
}

func TestLockOPieceCompletesBottomRow(t *testing.T) {
	e := newTestEngine(KindO, KindT)
	fillRow(e.grid, 0, 9)
	// anchor (1,8) covers (0,8) (0,9) (1,8) (1,9); (0,8) is already filled
	e.current.Anchor = Point{Row: 1, Col: 8}

	cleared := e.Lock()
	assert.Equal(t, 1, cleared)
	assert.Equal(t, uint64(100), e.Score())

	// the upper half of the O drops into row 0
	assert.True(t, e.grid.At(0, 8).Filled)
	assert.True(t, e.grid.At(0, 9).Filled)
	assert.False(t, e.grid.At(0, 0).Filled)
	assert.False(t, e.grid.At(1, 8).Filled)
}
