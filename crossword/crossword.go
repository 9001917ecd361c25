// Package crossword lays out words as an intersecting crossword on an
// unbounded sparse grid and rasterizes the result into a dense matrix.
//
// The first (longest) word is written vertically at the origin. Every other
// word is first tried against the letters already on the grid, crossing an
// existing word at a shared letter; words that cannot cross anything are
// then dropped into free space near the origin. Words that fit nowhere are
// reported as warnings and left out.
package crossword

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/random"
	"github.com/bodul/wordgrid/words"
)

const (
	// maxPasses bounds the sweeps over pending words looking for crossings.
	maxPasses = 10
	// freeAttempts bounds random free-space placements per leftover word.
	freeAttempts = 200
	// searchRange is the half-width of the free-space window around the origin.
	searchRange = 20
)

// Layout is the result of one generation.
type Layout struct {
	// Placements lists placed words in placement order.
	Placements []puzzle.Placement
	// Warnings lists words that could not be placed.
	Warnings []puzzle.Warning
	// Grid is the sparse letter map shared by all placements.
	Grid *Grid

	norm *words.Normalizer
}

func (l *Layout) place(p puzzle.Placement) {
	l.Grid.write(p)
	l.Placements = append(l.Placements, p)
}

// Generator builds crossword layouts. It is not safe for concurrent use:
// each generation advances the generator's random engine.
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

// Generate lays out list. Entries are normalized and deduplicated first;
// an empty result is rejected with puzzle.ErrNoWords.
func (g *Generator) Generate(list []string) (*Layout, error) {
	pending := words.ByLengthDesc(g.norm.Normalize(list))
	if len(pending) == 0 {
		return nil, fmt.Errorf("crossword: %w", puzzle.ErrNoWords)
	}

	l := &Layout{Grid: newGrid(), norm: g.norm}
	l.place(puzzle.NewPlacement(pending[0], puzzle.Position{}, puzzle.Vertical))
	pending = pending[1:]
	random.Shuffle(g.rng, pending)

	for pass := 0; pass < maxPasses && len(pending) > 0; pass++ {
		progressed := false
		for i := len(pending) - 1; i >= 0; i-- {
			if g.placeCrossing(l, pending[i]) {
				pending = slices.Delete(pending, i, i+1)
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	g.placeLeftovers(l, pending)

	g.log.Debug("crossword generated",
		"placed", len(l.Placements),
		"dropped", len(l.Warnings),
		"cells", l.Grid.Len())
	return l, nil
}

// crossing pairs a letter of the new word with an equal letter of a
// placed word.
type crossing struct {
	at     int // offset in the new word
	word   int // index into Layout.Placements
	offset int // offset in the placed word
}

func crossings(letters []rune, placed []puzzle.Placement) []crossing {
	var out []crossing
	for wi, p := range placed {
		for j, r := range []rune(p.Word) {
			for i, c := range letters {
				if c == r {
					out = append(out, crossing{at: i, word: wi, offset: j})
				}
			}
		}
	}
	return out
}

func (g *Generator) placeCrossing(l *Layout, w string) bool {
	letters := []rune(w)
	cands := crossings(letters, l.Placements)
	random.Shuffle(g.rng, cands)

	for _, c := range cands {
		existing := l.Placements[c.word]
		dir := existing.Direction.Perpendicular()
		anchor := existing.Cells[c.offset].Sub(dir.Step().Scale(c.at))
		if l.Grid.fits(letters, anchor, dir) {
			l.place(puzzle.NewPlacement(w, anchor, dir))
			return true
		}
	}
	return false
}

// placeLeftovers drops words that crossed nothing into free space and
// records a warning for each word that still does not fit.
func (g *Generator) placeLeftovers(l *Layout, pending []string) {
	for _, w := range pending {
		if g.placeFree(l, w) {
			continue
		}
		g.log.Warn("crossword word dropped", "word", w, "attempts", freeAttempts)
		l.Warnings = append(l.Warnings, puzzle.Warning{
			Word:   w,
			Reason: fmt.Sprintf("no valid position after %d free-space attempts", freeAttempts),
		})
	}
}

func (g *Generator) placeFree(l *Layout, w string) bool {
	letters := []rune(w)
	for range freeAttempts {
		dir := puzzle.Direction(g.rng.Intn(0, 2))
		anchor := puzzle.Position{
			X: g.rng.Intn(-searchRange, searchRange),
			Y: g.rng.Intn(-searchRange, searchRange),
		}
		if l.Grid.fits(letters, anchor, dir) {
			l.place(puzzle.NewPlacement(w, anchor, dir))
			return true
		}
	}
	return false
}
