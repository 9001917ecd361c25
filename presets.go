package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Preset is a named puzzle definition from the presets file:
//
//	[[preset]]
//	name   = "farm"
//	kind   = "crossword"
//	list   = "COW-HORSE-SHEEP"
//	seed   = 12345
//	reveal = "COW"
type Preset struct {
	Name string `toml:"name"`
	Kind Kind   `toml:"kind"`
	PuzzleRequest

	Reveal    string `toml:"reveal"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Filler    string `toml:"filler"`
	Diagonal  bool   `toml:"diagonal"`
	PreSolved string `toml:"presolved"`
	Rows      int    `toml:"rows"`
	Columns   int    `toml:"columns"`
}

type presetFile struct {
	Presets []Preset `toml:"preset"`
}

// LoadPresets reads presets from a TOML file. Unknown keys are rejected.
func LoadPresets(path string) ([]Preset, error) {
	var f presetFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode presets %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("presets %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("presets %s: preset %d has no name", path, i+1)
		}
	}
	return f.Presets, nil
}

// Build generates the preset's grid.
func (p Preset) Build(b *Builder) (*Grid, error) {
	var (
		g   *Grid
		err error
	)
	switch p.Kind {
	case KindCrossword, "":
		g, err = b.Crossword(CrosswordRequest{PuzzleRequest: p.PuzzleRequest, Reveal: p.Reveal})
	case KindWordSearch:
		g, err = b.WordSearch(WordSearchRequest{
			PuzzleRequest: p.PuzzleRequest,
			Width:         p.Width,
			Height:        p.Height,
			Filler:        p.Filler,
			Diagonal:      p.Diagonal,
			PreSolved:     p.PreSolved,
		})
	case KindRows:
		g, err = b.Rows(RowsRequest{
			PuzzleRequest: p.PuzzleRequest,
			Rows:          p.Rows,
			Columns:       p.Columns,
			Filler:        p.Filler,
		})
	default:
		return nil, fmt.Errorf("preset %q: unknown kind %q", p.Name, p.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}
	g.Name = p.Name
	return g, nil
}
