package crossword

import "github.com/bodul/wordgrid/puzzle"

// Grid is the sparse letter map of a crossword on an unbounded plane.
// A cell is written at most once with one agreed letter.
type Grid struct {
	cells map[puzzle.Position]rune
}

func newGrid() *Grid {
	return &Grid{cells: make(map[puzzle.Position]rune)}
}

// At returns the letter at pos and whether the cell is occupied.
func (g *Grid) At(pos puzzle.Position) (rune, bool) {
	r, ok := g.cells[pos]
	return r, ok
}

// Occupied reports whether pos holds a letter.
func (g *Grid) Occupied(pos puzzle.Position) bool {
	_, ok := g.cells[pos]
	return ok
}

// Len returns the number of occupied cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// Bounds returns the inclusive bounding box of all occupied cells.
// ok is false for an empty grid.
func (g *Grid) Bounds() (lo, hi puzzle.Position, ok bool) {
	for pos := range g.cells {
		if !ok {
			lo, hi, ok = pos, pos, true
			continue
		}
		lo.X, lo.Y = min(lo.X, pos.X), min(lo.Y, pos.Y)
		hi.X, hi.Y = max(hi.X, pos.X), max(hi.Y, pos.Y)
	}
	return lo, hi, ok
}

// fits reports whether letters can be written from anchor along dir:
// every occupied target cell must already hold the same letter, every
// empty target cell must have empty neighbours across the word's axis,
// and the cells just before and after the word must be empty.
func (g *Grid) fits(letters []rune, anchor puzzle.Position, dir puzzle.Direction) bool {
	step := dir.Step()
	side := dir.Perpendicular().Step()
	for i, r := range letters {
		pos := anchor.Add(step.Scale(i))
		if cur, ok := g.cells[pos]; ok {
			if cur != r {
				return false
			}
			continue
		}
		if g.Occupied(pos.Add(side)) || g.Occupied(pos.Sub(side)) {
			return false
		}
	}
	if g.Occupied(anchor.Sub(step)) || g.Occupied(anchor.Add(step.Scale(len(letters)))) {
		return false
	}
	return true
}

// write commits letters. Callers check fits first.
func (g *Grid) write(p puzzle.Placement) {
	for i, r := range []rune(p.Word) {
		g.cells[p.Cells[i]] = r
	}
}
