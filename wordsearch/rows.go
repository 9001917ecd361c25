package wordsearch

import (
	"fmt"
	"slices"

	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/random"
	"github.com/bodul/wordgrid/words"
)

// RowConfig sizes a one-word-per-row puzzle.
type RowConfig struct {
	Rows    int
	Columns int
	Filler  string
}

// RowPuzzle hides word i in row i, its letters kept in order but spread
// over random columns. Players strike out filler letters until only the
// words remain.
type RowPuzzle struct {
	Grid      *Grid
	Solutions *Solutions
}

// IsSolutionCell reports whether pos carries a word letter.
func (p *RowPuzzle) IsSolutionCell(pos puzzle.Position) bool {
	_, ok := p.Solutions.Owner(pos)
	return ok
}

// Solved reports whether marked strikes out exactly the filler cells.
func (p *RowPuzzle) Solved(marked map[puzzle.Position]bool) bool {
	for y := range p.Grid.Height {
		for x := range p.Grid.Width {
			pos := puzzle.Position{X: x, Y: y}
			if p.IsSolutionCell(pos) == marked[pos] {
				return false
			}
		}
	}
	return true
}

func validateRows(list []string, cfg RowConfig) error {
	if cfg.Rows <= 0 || cfg.Columns <= 0 {
		return fmt.Errorf("%d rows, %d columns: %w", cfg.Rows, cfg.Columns, puzzle.ErrInvalidDimensions)
	}
	if cfg.Filler == "" {
		return puzzle.ErrNoFiller
	}
	if len(list) == 0 {
		return puzzle.ErrNoWords
	}
	for _, w := range list {
		if words.Len(w) > cfg.Columns {
			return fmt.Errorf("%q exceeds %d columns: %w", w, cfg.Columns, puzzle.ErrWordTooLong)
		}
	}
	if len(list) > cfg.Rows {
		return fmt.Errorf("%d words for %d rows: %w", len(list), cfg.Rows, puzzle.ErrTooManyWords)
	}
	return nil
}

// GenerateRows builds a one-word-per-row puzzle. Words keep their list
// order. Any configuration error aborts before a grid exists.
func (g *Generator) GenerateRows(list []string, cfg RowConfig) (*RowPuzzle, error) {
	list = g.norm.Normalize(list)
	if err := validateRows(list, cfg); err != nil {
		return nil, fmt.Errorf("row puzzle: %w", err)
	}

	p := &RowPuzzle{
		Grid:      newGrid(cfg.Columns, cfg.Rows),
		Solutions: newSolutions(g.norm),
	}
	columns := make([]int, cfg.Columns)
	for row, w := range list {
		for i := range columns {
			columns[i] = i
		}
		random.Shuffle(g.rng, columns)

		letters := []rune(w)
		chosen := slices.Clone(columns[:len(letters)])
		slices.Sort(chosen)

		cells := make([]puzzle.Position, len(letters))
		for i, col := range chosen {
			cells[i] = puzzle.Position{X: col, Y: row}
			p.Grid.set(cells[i], letters[i])
		}
		p.Solutions.record(w, cells)
	}

	filler := []rune(cfg.Filler)
	p.Grid.fill(func() rune { return random.Pick(g.rng, filler) })

	g.log.Debug("row puzzle generated", "rows", cfg.Rows, "columns", cfg.Columns, "words", len(list))
	return p, nil
}
