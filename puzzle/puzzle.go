// Package puzzle holds the data model shared by the crossword and
// word-search layout engines.
package puzzle

import (
	"fmt"
	"unicode/utf8"
)

// Position is a cell coordinate. X grows to the right, Y grows downward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by q.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p multiplied by n on both axes.
func (p Position) Scale(n int) Position {
	return Position{X: p.X * n, Y: p.Y * n}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is the axis a word is written along.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
	Diagonal
)

// Step returns the offset between two consecutive letters.
func (d Direction) Step() Position {
	switch d {
	case Vertical:
		return Position{X: 0, Y: 1}
	case Diagonal:
		return Position{X: 1, Y: 1}
	default:
		return Position{X: 1, Y: 0}
	}
}

// Perpendicular returns the crossing axis. Diagonal has none and is
// returned unchanged.
func (d Direction) Perpendicular() Direction {
	switch d {
	case Horizontal:
		return Vertical
	case Vertical:
		return Horizontal
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Diagonal:
		return "diagonal"
	default:
		return "unknown"
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "horizontal":
		*d = Horizontal
	case "vertical":
		*d = Vertical
	case "diagonal":
		*d = Diagonal
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Placement is a word committed to a grid. It is immutable once built.
type Placement struct {
	Word      string     `json:"word"`
	Anchor    Position   `json:"anchor"`
	Direction Direction  `json:"direction"`
	Cells     []Position `json:"cells"`
}

// NewPlacement derives the occupied cells of word written from anchor
// along dir.
func NewPlacement(word string, anchor Position, dir Direction) Placement {
	step := dir.Step()
	cells := make([]Position, 0, utf8.RuneCountInString(word))
	for i := range utf8.RuneCountInString(word) {
		cells = append(cells, anchor.Add(step.Scale(i)))
	}
	return Placement{Word: word, Anchor: anchor, Direction: dir, Cells: cells}
}

// Len returns the number of letters in the placed word.
func (p Placement) Len() int {
	return len(p.Cells)
}

// Index returns the letter offset of pos within the word, or -1.
func (p Placement) Index(pos Position) int {
	for i, c := range p.Cells {
		if c == pos {
			return i
		}
	}
	return -1
}

// Contains reports whether the word passes through pos.
func (p Placement) Contains(pos Position) bool {
	return p.Index(pos) >= 0
}

// Warning records a word that could not be placed. It never aborts a
// generation.
type Warning struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return w.Word + ": " + w.Reason
}
