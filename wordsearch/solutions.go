package wordsearch

import (
	"slices"

	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/words"
)

// Solutions records, per placed word, the ordered cells it occupies.
type Solutions struct {
	norm  *words.Normalizer
	order []string
	cells map[string][]puzzle.Position
	owner map[puzzle.Position]string
}

func newSolutions(norm *words.Normalizer) *Solutions {
	return &Solutions{
		norm:  norm,
		cells: make(map[string][]puzzle.Position),
		owner: make(map[puzzle.Position]string),
	}
}

func (s *Solutions) record(word string, cells []puzzle.Position) {
	if _, ok := s.cells[word]; !ok {
		s.order = append(s.order, word)
	}
	s.cells[word] = slices.Clone(cells)
	for _, c := range cells {
		s.owner[c] = word
	}
}

// Words returns the registered words in placement order.
func (s *Solutions) Words() []string {
	return slices.Clone(s.order)
}

// Len returns the number of registered words.
func (s *Solutions) Len() int {
	return len(s.order)
}

// Cells returns the ordered cells of word, compared case-insensitively.
func (s *Solutions) Cells(word string) ([]puzzle.Position, bool) {
	cells, ok := s.cells[s.norm.Upper(word)]
	if !ok {
		return nil, false
	}
	return slices.Clone(cells), true
}

// Owner returns the word occupying pos, if any.
func (s *Solutions) Owner(pos puzzle.Position) (string, bool) {
	w, ok := s.owner[pos]
	return w, ok
}

// Match reports which registered word a selection spells, read forwards
// or backwards, ignoring case.
func (s *Solutions) Match(selection string) (string, bool) {
	sel := s.norm.Upper(selection)
	if sel == "" {
		return "", false
	}
	if _, ok := s.cells[sel]; ok {
		return sel, true
	}
	if rev := words.Reverse(sel); rev != sel {
		if _, ok := s.cells[rev]; ok {
			return rev, true
		}
	}
	return "", false
}
