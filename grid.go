package main

import (
	"time"

	"github.com/bodul/wordgrid/crossword"
	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/words"
	"github.com/bodul/wordgrid/wordsearch"
)

// Kind identifies which engine produced a grid.
type Kind string

const (
	KindCrossword  Kind = "crossword"
	KindWordSearch Kind = "wordsearch"
	KindRows       Kind = "rows"
)

// Coord addresses a cell of a dense grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func coordOf(p puzzle.Position) Coord {
	return Coord{Row: p.Y, Col: p.X}
}

func (c Coord) position() puzzle.Position {
	return puzzle.Position{X: c.Col, Y: c.Row}
}

func coordsOf(ps []puzzle.Position) []Coord {
	out := make([]Coord, len(ps))
	for i, p := range ps {
		out[i] = coordOf(p)
	}
	return out
}

// Cell is one square of a grid as shown to players.
// Inactive cells are crossword squares no word passes through.
type Cell struct {
	Active bool   `json:"active"`
	Letter string `json:"letter,omitempty"`
}

// Word is an entry of the puzzle's word list.
// Crossword entries expose their cells but hide the answer until revealed;
// word-search entries expose the text but hide the cells.
type Word struct {
	Text      string  `json:"text,omitempty"`
	Clue      string  `json:"clue,omitempty"`
	Length    int     `json:"length"`
	Direction string  `json:"direction,omitempty"`
	Cells     []Coord `json:"cells,omitempty"`
	Revealed  bool    `json:"revealed,omitempty"`
}

// Grid is a generated puzzle ready to be served.
type Grid struct {
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Kind      Kind             `json:"kind"`
	Seed      int64            `json:"seed"`
	Rows      int              `json:"rows"`
	Cols      int              `json:"cols"`
	Cells     [][]Cell         `json:"cells"`
	Words     []Word           `json:"words"`
	Warnings  []puzzle.Warning `json:"warnings,omitempty"`
	CreatedAt time.Time        `json:"created_at"`

	answers []string
	norm    *words.Normalizer
	layout  *crossword.Layout
	matrix  *crossword.Matrix
	search  *wordsearch.Puzzle
	rows    *wordsearch.RowPuzzle
}

func newCrosswordGrid(l *crossword.Layout, norm *words.Normalizer, seed int64, reveal string, clues map[string]string) *Grid {
	m := l.Rasterize()
	g := &Grid{
		Kind:     KindCrossword,
		Seed:     seed,
		Rows:     m.Height,
		Cols:     m.Width,
		Cells:    make([][]Cell, m.Height),
		Warnings: l.Warnings,
		norm:     norm,
		layout:   l,
		matrix:   m,
	}
	for row := range m.Height {
		g.Cells[row] = make([]Cell, m.Width)
		for col := range m.Width {
			g.Cells[row][col].Active = m.Active(row, col)
		}
	}

	revealed, hasReveal := puzzle.Placement{}, false
	if reveal != "" {
		revealed, hasReveal = l.Find(reveal)
		if !hasReveal {
			g.Warnings = append(g.Warnings, puzzle.Warning{Word: norm.Upper(reveal), Reason: "clue word is not among the placed words"})
		}
	}

	for _, p := range l.Placements {
		w := Word{
			Clue:      clues[p.Word],
			Length:    p.Len(),
			Direction: p.Direction.String(),
			Cells:     make([]Coord, p.Len()),
		}
		for i, c := range p.Cells {
			w.Cells[i] = coordOf(m.Local(c))
		}
		if hasReveal && p.Word == revealed.Word {
			w.Text, w.Revealed = p.Word, true
			for i, c := range w.Cells {
				g.Cells[c.Row][c.Col].Letter = string([]rune(p.Word)[i])
			}
		}
		g.Words = append(g.Words, w)
		g.answers = append(g.answers, p.Word)
	}
	return g
}

func newWordSearchGrid(p *wordsearch.Puzzle, norm *words.Normalizer, seed int64, clues map[string]string) *Grid {
	g := &Grid{
		Kind:     KindWordSearch,
		Seed:     seed,
		Rows:     p.Grid.Height,
		Cols:     p.Grid.Width,
		Warnings: p.Warnings,
		norm:     norm,
		search:   p,
	}
	g.fillLetters(p.Grid)

	var presolved string
	if len(p.PreSolved) > 0 {
		presolved, _ = p.Solutions.Owner(p.PreSolved[0])
	}
	for _, pl := range p.Placements {
		w := Word{Text: pl.Word, Clue: clues[pl.Word], Length: pl.Len()}
		if pl.Word == presolved {
			w.Cells, w.Revealed = coordsOf(pl.Cells), true
		}
		g.Words = append(g.Words, w)
		g.answers = append(g.answers, pl.Word)
	}
	return g
}

func newRowsGrid(p *wordsearch.RowPuzzle, norm *words.Normalizer, seed int64, clues map[string]string) *Grid {
	g := &Grid{
		Kind: KindRows,
		Seed: seed,
		Rows: p.Grid.Height,
		Cols: p.Grid.Width,
		norm: norm,
		rows: p,
	}
	g.fillLetters(p.Grid)
	for _, w := range p.Solutions.Words() {
		g.Words = append(g.Words, Word{Text: w, Clue: clues[w], Length: len([]rune(w))})
		g.answers = append(g.answers, w)
	}
	return g
}

func (g *Grid) fillLetters(src *wordsearch.Grid) {
	g.Cells = make([][]Cell, src.Height)
	for row := range src.Height {
		g.Cells[row] = make([]Cell, src.Width)
		for col := range src.Width {
			r := src.At(puzzle.Position{X: col, Y: row})
			g.Cells[row][col] = Cell{Active: true, Letter: string(r)}
		}
	}
}

// upper converts player input with the locale the grid was built for.
func (g *Grid) upper(s string) string {
	return g.norm.Upper(s)
}

// inBounds reports whether c addresses a cell of the grid.
func (g *Grid) inBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// wordIndex returns the index of answer in Words, or -1.
func (g *Grid) wordIndex(answer string) int {
	for i, a := range g.answers {
		if a == answer {
			return i
		}
	}
	return -1
}

// solvedAt returns the crossword words through c whose letters in state
// are all present and correct.
func (g *Grid) solvedAt(state [][]string, c Coord) []int {
	if g.layout == nil {
		return nil
	}
	pos := c.position().Add(g.matrix.Origin)
	across, down := g.layout.WordsAt(pos)

	var solved []int
	for _, p := range []*puzzle.Placement{across, down} {
		if p == nil {
			continue
		}
		letters := make([]rune, p.Len())
		for i, cell := range p.Cells {
			local := g.matrix.Local(cell)
			if v := []rune(state[local.Y][local.X]); len(v) > 0 {
				letters[i] = v[0]
			}
		}
		if _, correct := g.layout.Check(p.Word, letters); correct {
			solved = append(solved, g.wordIndex(p.Word))
		}
	}
	return solved
}

// selectWord matches a word-search selection against the placed words.
func (g *Grid) selectWord(cells []Coord) (int, bool) {
	if g.search == nil {
		return -1, false
	}
	ps := make([]puzzle.Position, len(cells))
	for i, c := range cells {
		ps[i] = c.position()
	}
	w, ok := g.search.Select(ps)
	if !ok {
		return -1, false
	}
	return g.wordIndex(w), true
}

// rowsSolved reports whether the marks in state strike out exactly the
// filler letters of a row puzzle.
func (g *Grid) rowsSolved(state [][]string) bool {
	if g.rows == nil {
		return false
	}
	marked := make(map[puzzle.Position]bool)
	for row, cells := range state {
		for col, v := range cells {
			if v != "" {
				marked[puzzle.Position{X: col, Y: row}] = true
			}
		}
	}
	return g.rows.Solved(marked)
}
