package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bodul/wordgrid/crossword"
	"github.com/bodul/wordgrid/random"
	"github.com/bodul/wordgrid/words"
	"github.com/bodul/wordgrid/wordsearch"
)

var errInvalidLocale = errors.New("invalid locale")

// PuzzleRequest is the common part of every generation request.
// Words may be given as an array, as a dash-separated List, or both.
type PuzzleRequest struct {
	Words  []string          `json:"words" toml:"words"`
	List   string            `json:"list" toml:"list"`
	Seed   *int64            `json:"seed" toml:"seed"`
	Locale string            `json:"locale" toml:"locale"`
	Clues  map[string]string `json:"clues" toml:"clues"`
}

func (r PuzzleRequest) words() []string {
	return append(append([]string(nil), r.Words...), words.Split(r.List)...)
}

// CrosswordRequest asks for a crossword. Reveal names a word shown from
// the start.
type CrosswordRequest struct {
	PuzzleRequest
	Reveal string `json:"reveal" toml:"reveal"`
}

// WordSearchRequest asks for a word search. Zero width and height select
// automatic sizing.
type WordSearchRequest struct {
	PuzzleRequest
	Width     int    `json:"width" toml:"width"`
	Height    int    `json:"height" toml:"height"`
	Filler    string `json:"filler" toml:"filler"`
	Diagonal  bool   `json:"diagonal" toml:"diagonal"`
	PreSolved string `json:"presolved" toml:"presolved"`
}

// RowsRequest asks for a one-word-per-row puzzle.
type RowsRequest struct {
	PuzzleRequest
	Rows    int    `json:"rows" toml:"rows"`
	Columns int    `json:"columns" toml:"columns"`
	Filler  string `json:"filler" toml:"filler"`
}

// Builder runs the layout engines. Each call gets its own random engine,
// so a Builder may serve concurrent requests.
type Builder struct {
	norm   *words.Normalizer
	filler string
	log    *slog.Logger
}

// NewBuilder returns a builder using norm for default upper-casing and
// filler as the default filler alphabet.
func NewBuilder(norm *words.Normalizer, filler string, log *slog.Logger) *Builder {
	if filler == "" {
		filler = wordsearch.DefaultFiller
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Builder{norm: norm, filler: filler, log: log}
}

// setup resolves the seed and locale of a request.
func (b *Builder) setup(r PuzzleRequest) (*random.Engine, *words.Normalizer, error) {
	norm := b.norm
	if r.Locale != "" {
		n, err := words.ParseLocale(r.Locale)
		if err != nil {
			return nil, nil, fmt.Errorf("%w %q: %v", errInvalidLocale, r.Locale, err)
		}
		norm = n
	}

	var seed int64
	if r.Seed != nil {
		seed = *r.Seed
	} else {
		s, err := random.NewSeed()
		if err != nil {
			return nil, nil, err
		}
		seed = s
	}
	return random.New(seed), norm, nil
}

// clueMap upper-cases clue keys so they match placed words.
func clueMap(norm *words.Normalizer, clues map[string]string) map[string]string {
	out := make(map[string]string, len(clues))
	for w, c := range clues {
		out[norm.Upper(w)] = c
	}
	return out
}

// Crossword generates a crossword grid.
func (b *Builder) Crossword(r CrosswordRequest) (*Grid, error) {
	rng, norm, err := b.setup(r.PuzzleRequest)
	if err != nil {
		return nil, err
	}
	gen := crossword.New(rng, crossword.WithLogger(b.log), crossword.WithNormalizer(norm))
	l, err := gen.Generate(r.words())
	if err != nil {
		return nil, err
	}
	return newCrosswordGrid(l, norm, rng.Seed(), r.Reveal, clueMap(norm, r.Clues)), nil
}

// WordSearch generates a word-search grid.
func (b *Builder) WordSearch(r WordSearchRequest) (*Grid, error) {
	rng, norm, err := b.setup(r.PuzzleRequest)
	if err != nil {
		return nil, err
	}
	cfg := wordsearch.Config{
		AutoSize:  r.Width == 0 && r.Height == 0,
		Width:     r.Width,
		Height:    r.Height,
		Filler:    r.Filler,
		Diagonal:  r.Diagonal,
		PreSolved: r.PreSolved,
	}
	if cfg.Filler == "" {
		cfg.Filler = b.filler
	}
	gen := wordsearch.New(rng, wordsearch.WithLogger(b.log), wordsearch.WithNormalizer(norm))
	p, err := gen.Generate(r.words(), cfg)
	if err != nil {
		return nil, err
	}
	return newWordSearchGrid(p, norm, rng.Seed(), clueMap(norm, r.Clues)), nil
}

// Rows generates a one-word-per-row grid.
func (b *Builder) Rows(r RowsRequest) (*Grid, error) {
	rng, norm, err := b.setup(r.PuzzleRequest)
	if err != nil {
		return nil, err
	}
	filler := r.Filler
	if filler == "" {
		filler = b.filler
	}
	gen := wordsearch.New(rng, wordsearch.WithLogger(b.log), wordsearch.WithNormalizer(norm))
	p, err := gen.GenerateRows(r.words(), wordsearch.RowConfig{Rows: r.Rows, Columns: r.Columns, Filler: filler})
	if err != nil {
		return nil, err
	}
	return newRowsGrid(p, norm, rng.Seed(), clueMap(norm, r.Clues)), nil
}
