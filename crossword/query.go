package crossword

import "github.com/bodul/wordgrid/puzzle"

// Find returns the placement of word, compared case-insensitively.
func (l *Layout) Find(word string) (puzzle.Placement, bool) {
	word = l.norm.Upper(word)
	for _, p := range l.Placements {
		if p.Word == word {
			return p, true
		}
	}
	return puzzle.Placement{}, false
}

// WordsAt returns the horizontal and vertical placements passing through
// pos. Either may be nil.
func (l *Layout) WordsAt(pos puzzle.Position) (across, down *puzzle.Placement) {
	for i := range l.Placements {
		p := &l.Placements[i]
		if !p.Contains(pos) {
			continue
		}
		switch p.Direction {
		case puzzle.Horizontal:
			if across == nil {
				across = p
			}
		case puzzle.Vertical:
			if down == nil {
				down = p
			}
		}
	}
	return across, down
}

// Check compares player letters against a placed word. letters is
// aligned with the word; a zero rune is an empty cell. filled reports
// whether every cell has a letter, correct whether every letter matches.
func (l *Layout) Check(word string, letters []rune) (filled, correct bool) {
	p, ok := l.Find(word)
	if !ok || len(letters) != p.Len() {
		return false, false
	}
	answer := []rune(p.Word)
	filled, correct = true, true
	for i, r := range letters {
		if r == 0 {
			filled, correct = false, false
			continue
		}
		if l.norm.Upper(string(r)) != string(answer[i]) {
			correct = false
		}
	}
	return filled, correct
}
