// Package wordsearch hides words in a dense letter grid.
//
// Words never share cells. Each word gets a bounded number of random
// anchor and direction draws; a word that finds no free run of cells is
// reported as a warning and the generation carries on. Remaining cells are
// filled with random letters from a filler alphabet.
package wordsearch

import (
	"fmt"
	"log/slog"

	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/random"
	"github.com/bodul/wordgrid/words"
)

// DefaultFiller is the filler alphabet used when none is configured.
const DefaultFiller = "ABCDEFGHIJKLMNPRSTUVYZ"

// maxAttempts bounds the random draws per word.
const maxAttempts = 100

// Config sizes a word-search grid.
type Config struct {
	// AutoSize derives the grid from the word list: height is the longest
	// word plus two, width is the larger of word count plus two and
	// height plus one. Width and Height are ignored.
	AutoSize bool
	Width    int
	Height   int
	// Filler is the alphabet for unused cells; DefaultFiller when empty.
	Filler string
	// Diagonal also allows words running down and to the right.
	Diagonal bool
	// PreSolved names a word to report as already found.
	PreSolved string
}

// Puzzle is a generated word search.
type Puzzle struct {
	Grid       *Grid
	Placements []puzzle.Placement
	Solutions  *Solutions
	Warnings   []puzzle.Warning
	// PreSolved holds the cells of Config.PreSolved when it was placed.
	PreSolved []puzzle.Position
}

// Select returns the word spelled by the letters under cells, forwards or
// backwards.
func (p *Puzzle) Select(cells []puzzle.Position) (string, bool) {
	return p.Solutions.Match(p.Grid.Letters(cells))
}

// Generator builds word-search grids. It is not safe for concurrent use.
type Generator struct {
	rng  *random.Engine
	norm *words.Normalizer
	log  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to report dropped words.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithNormalizer sets the locale rules used to upper-case words.
func WithNormalizer(n *words.Normalizer) Option {
	return func(g *Generator) { g.norm = n }
}

// New returns a generator drawing all randomness from rng.
func New(rng *random.Engine, opts ...Option) *Generator {
	g := &Generator{
		rng:  rng,
		norm: &words.Normalizer{},
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Size returns the grid dimensions cfg implies for list, or a
// configuration error.
func Size(list []string, cfg Config) (width, height int, err error) {
	longest := words.Longest(list)
	if cfg.AutoSize {
		height = longest + 2
		width = max(len(list)+2, height+1)
		return width, height, nil
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, puzzle.ErrInvalidDimensions)
	}
	if reach := max(cfg.Width, cfg.Height); longest > reach {
		return 0, 0, fmt.Errorf("%d letters in a %dx%d grid: %w", longest, cfg.Width, cfg.Height, puzzle.ErrWordTooLong)
	}
	return cfg.Width, cfg.Height, nil
}

// Generate places list in a new grid. Configuration errors abort before
// any grid is built.
func (g *Generator) Generate(list []string, cfg Config) (*Puzzle, error) {
	list = g.norm.Normalize(list)
	if len(list) == 0 {
		return nil, fmt.Errorf("word search: %w", puzzle.ErrNoWords)
	}
	width, height, err := Size(list, cfg)
	if err != nil {
		return nil, fmt.Errorf("word search: %w", err)
	}
	filler := []rune(cfg.Filler)
	if len(filler) == 0 {
		filler = []rune(DefaultFiller)
	}

	dirs := []puzzle.Direction{puzzle.Horizontal, puzzle.Vertical}
	if cfg.Diagonal {
		dirs = append(dirs, puzzle.Diagonal)
	}

	p := &Puzzle{
		Grid:      newGrid(width, height),
		Solutions: newSolutions(g.norm),
	}
	for _, w := range words.ByLengthDesc(list) {
		if g.place(p, w, dirs) {
			continue
		}
		g.log.Warn("word search word dropped", "word", w, "attempts", maxAttempts)
		p.Warnings = append(p.Warnings, puzzle.Warning{
			Word:   w,
			Reason: fmt.Sprintf("no free cells after %d attempts", maxAttempts),
		})
	}

	p.Grid.fill(func() rune { return random.Pick(g.rng, filler) })

	if cfg.PreSolved != "" {
		cells, ok := p.Solutions.Cells(cfg.PreSolved)
		if ok {
			p.PreSolved = cells
		} else {
			p.Warnings = append(p.Warnings, puzzle.Warning{
				Word:   g.norm.Upper(cfg.PreSolved),
				Reason: "pre-solved word is not among the placed words",
			})
		}
	}

	g.log.Debug("word search generated",
		"width", width,
		"height", height,
		"placed", len(p.Placements),
		"dropped", len(p.Warnings))
	return p, nil
}

func (g *Generator) place(p *Puzzle, w string, dirs []puzzle.Direction) bool {
	letters := []rune(w)
	for range maxAttempts {
		dir := random.Pick(g.rng, dirs)
		anchor := puzzle.Position{
			X: g.rng.Intn(0, p.Grid.Width),
			Y: g.rng.Intn(0, p.Grid.Height),
		}
		pl := puzzle.NewPlacement(w, anchor, dir)
		if !free(p.Grid, pl) {
			continue
		}
		for i, c := range pl.Cells {
			p.Grid.set(c, letters[i])
		}
		p.Placements = append(p.Placements, pl)
		p.Solutions.record(w, pl.Cells)
		return true
	}
	return false
}

// free reports whether every cell of pl is inside the grid and unwritten.
func free(g *Grid, pl puzzle.Placement) bool {
	for _, c := range pl.Cells {
		if !g.In(c) || g.At(c) != empty {
			return false
		}
	}
	return true
}
