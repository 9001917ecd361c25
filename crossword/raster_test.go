package crossword

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/words"
)

// layoutOf builds a layout from fixed placements.
func layoutOf(ps ...puzzle.Placement) *Layout {
	l := &Layout{Grid: newGrid(), norm: &words.Normalizer{}}
	for _, p := range ps {
		l.place(p)
	}
	return l
}

func TestRasterizeShrinkWraps(t *testing.T) {
	l := layoutOf(
		puzzle.NewPlacement("CAT", puzzle.Position{X: 0, Y: 0}, puzzle.Vertical),
		puzzle.NewPlacement("ART", puzzle.Position{X: 0, Y: 1}, puzzle.Horizontal),
		puzzle.NewPlacement("SCAR", puzzle.Position{X: -1, Y: 0}, puzzle.Horizontal),
	)
	m := l.Rasterize()

	require.Equal(t, 4, m.Width)
	require.Equal(t, 3, m.Height)
	require.Equal(t, puzzle.Position{X: -1, Y: 0}, m.Origin)

	want := []string{
		"SCAR",
		".ART",
		".T..",
	}
	if diff := cmp.Diff(want, m.Rows('.')); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
	require.True(t, m.Active(0, 0))
	require.False(t, m.Active(2, 0))
	require.False(t, m.Active(5, 5))
}

func TestMatrixShapeMatchesBounds(t *testing.T) {
	l := generate(t, 99, animals)
	m := l.Rasterize()
	lo, hi, ok := l.Grid.Bounds()
	require.True(t, ok)

	require.Equal(t, hi.X-lo.X+1, m.Width)
	require.Equal(t, hi.Y-lo.Y+1, m.Height)
	require.Len(t, m.Cells, m.Height)

	active := 0
	for _, row := range m.Cells {
		require.Len(t, row, m.Width)
		for _, r := range row {
			if r != Inactive {
				active++
			}
		}
	}
	require.Equal(t, l.Grid.Len(), active)
}

func TestCellsOf(t *testing.T) {
	l := layoutOf(
		puzzle.NewPlacement("DOG", puzzle.Position{X: 0, Y: 0}, puzzle.Vertical),
		puzzle.NewPlacement("GOAT", puzzle.Position{X: 0, Y: 2}, puzzle.Horizontal),
	)
	m := l.Rasterize()

	cells, ok := m.CellsOf("goat")
	require.True(t, ok)
	want := []puzzle.Position{{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Fatalf("cells (-want +got):\n%s", diff)
	}

	_, ok = m.CellsOf("horse")
	require.False(t, ok)
}

func TestWordsAt(t *testing.T) {
	l := layoutOf(
		puzzle.NewPlacement("DOG", puzzle.Position{X: 0, Y: 0}, puzzle.Vertical),
		puzzle.NewPlacement("GOAT", puzzle.Position{X: 0, Y: 2}, puzzle.Horizontal),
	)

	across, down := l.WordsAt(puzzle.Position{X: 0, Y: 2})
	require.NotNil(t, across)
	require.NotNil(t, down)
	require.Equal(t, "GOAT", across.Word)
	require.Equal(t, "DOG", down.Word)

	across, down = l.WordsAt(puzzle.Position{X: 0, Y: 0})
	require.Nil(t, across)
	require.Equal(t, "DOG", down.Word)

	across, down = l.WordsAt(puzzle.Position{X: 9, Y: 9})
	require.Nil(t, across)
	require.Nil(t, down)
}

func TestCheck(t *testing.T) {
	l := layoutOf(puzzle.NewPlacement("DOG", puzzle.Position{}, puzzle.Vertical))

	tests := []struct {
		name            string
		letters         []rune
		filled, correct bool
	}{
		{"correct", []rune("DOG"), true, true},
		{"lower case", []rune("dog"), true, true},
		{"wrong letter", []rune("DIG"), true, false},
		{"missing letter", []rune{'D', 0, 'G'}, false, false},
		{"wrong length", []rune("DO"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, correct := l.Check("dog", tt.letters)
			require.Equal(t, tt.filled, filled)
			require.Equal(t, tt.correct, correct)
		})
	}
}
