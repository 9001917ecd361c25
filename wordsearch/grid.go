package wordsearch

import "github.com/bodul/wordgrid/puzzle"

// empty marks a cell not yet written.
const empty rune = 0

// Grid is a fixed-size letter matrix. Once a puzzle is generated every
// cell holds either a word letter or a filler letter.
type Grid struct {
	Width  int
	Height int
	cells  []rune
}

func newGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, cells: make([]rune, width*height)}
}

// In reports whether pos lies inside the grid.
func (g *Grid) In(pos puzzle.Position) bool {
	return pos.X >= 0 && pos.X < g.Width && pos.Y >= 0 && pos.Y < g.Height
}

// At returns the letter at pos, or zero outside the grid.
func (g *Grid) At(pos puzzle.Position) rune {
	if !g.In(pos) {
		return empty
	}
	return g.cells[pos.Y*g.Width+pos.X]
}

func (g *Grid) set(pos puzzle.Position, r rune) {
	g.cells[pos.Y*g.Width+pos.X] = r
}

// Rows returns the grid as one string per row.
func (g *Grid) Rows() []string {
	out := make([]string, g.Height)
	for y := range g.Height {
		out[y] = string(g.cells[y*g.Width : (y+1)*g.Width])
	}
	return out
}

// Letters returns the letters found along cells, in order.
func (g *Grid) Letters(cells []puzzle.Position) string {
	r := make([]rune, 0, len(cells))
	for _, c := range cells {
		r = append(r, g.At(c))
	}
	return string(r)
}

// fill writes a filler letter into every empty cell.
func (g *Grid) fill(pick func() rune) {
	for i, r := range g.cells {
		if r == empty {
			g.cells[i] = pick()
		}
	}
}
