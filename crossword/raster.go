package crossword

import (
	"strings"

	"github.com/bodul/wordgrid/puzzle"
)

// Inactive marks a matrix cell no word passes through.
const Inactive rune = 0

// Matrix is a shrink-wrapped dense copy of a layout: only the bounding
// box of occupied cells is kept. Matrix positions use X as the column and
// Y as the row, both starting at zero.
type Matrix struct {
	Width  int
	Height int
	// Origin is the sparse grid position of the top-left matrix cell.
	Origin puzzle.Position
	// Cells is indexed [row][col]; empty cells hold Inactive.
	Cells [][]rune

	layout *Layout
}

// Rasterize converts the sparse grid into a Matrix.
func (l *Layout) Rasterize() *Matrix {
	m := &Matrix{layout: l}
	lo, hi, ok := l.Grid.Bounds()
	if !ok {
		return m
	}
	m.Origin = lo
	m.Width = hi.X - lo.X + 1
	m.Height = hi.Y - lo.Y + 1
	m.Cells = make([][]rune, m.Height)
	for row := range m.Cells {
		m.Cells[row] = make([]rune, m.Width)
	}
	for pos, r := range l.Grid.cells {
		local := pos.Sub(lo)
		m.Cells[local.Y][local.X] = r
	}
	return m
}

// Local converts a sparse grid position into matrix coordinates.
func (m *Matrix) Local(pos puzzle.Position) puzzle.Position {
	return pos.Sub(m.Origin)
}

// Active reports whether the cell at (row, col) holds a letter.
func (m *Matrix) Active(row, col int) bool {
	if row < 0 || row >= m.Height || col < 0 || col >= m.Width {
		return false
	}
	return m.Cells[row][col] != Inactive
}

// CellsOf returns the ordered matrix positions of a placed word, for
// revealing it ahead of play. ok is false when the word was not placed.
func (m *Matrix) CellsOf(word string) (cells []puzzle.Position, ok bool) {
	p, ok := m.layout.Find(word)
	if !ok {
		return nil, false
	}
	cells = make([]puzzle.Position, len(p.Cells))
	for i, c := range p.Cells {
		cells[i] = m.Local(c)
	}
	return cells, true
}

// Rows renders each matrix row as a string, drawing inactive cells as
// blank.
func (m *Matrix) Rows(blank rune) []string {
	out := make([]string, m.Height)
	var sb strings.Builder
	for row, cells := range m.Cells {
		sb.Reset()
		for _, r := range cells {
			if r == Inactive {
				r = blank
			}
			sb.WriteRune(r)
		}
		out[row] = sb.String()
	}
	return out
}
