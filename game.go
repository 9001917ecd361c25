package main

import (
	"slices"
	"sync"
	"time"
)

// Player represents a connected player.
type Player struct {
	Pseudo   string    `json:"pseudo"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// GameSession is a collaborative game on a grid.
type GameSession struct {
	ID        string             `json:"id"`
	GridID    string             `json:"grid_id"`
	Players   map[string]*Player `json:"players"`
	State     [][]string         `json:"state"` // player letters or marks [row][col]
	Found     []int              `json:"found"` // indices into Grid.Words
	CreatedAt time.Time          `json:"created_at"`
	mu        sync.Mutex
}

// playerColors is the palette assigned to players in order.
var playerColors = []string{
	"#2563eb", "#dc2626", "#16a34a", "#9333ea",
	"#ea580c", "#0891b2", "#c026d3", "#ca8a04",
}

// AddPlayer adds a player to the session and returns the player.
func (g *GameSession) AddPlayer(pseudo string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.Players[pseudo]; ok {
		return p
	}

	p := &Player{
		Pseudo:   pseudo,
		Color:    playerColors[len(g.Players)%len(playerColors)],
		JoinedAt: time.Now(),
	}
	g.Players[pseudo] = p
	return p
}

// RemovePlayer removes a player from the session.
func (g *GameSession) RemovePlayer(pseudo string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.Players, pseudo)
}

// SetCell sets a value at a given position. Returns false if out of bounds.
func (g *GameSession) SetCell(row, col int, value string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if row < 0 || row >= len(g.State) || col < 0 || col >= len(g.State[0]) {
		return false
	}
	g.State[row][col] = value
	return true
}

// GetState returns a copy of the current game state.
func (g *GameSession) GetState() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	cp := make([][]string, len(g.State))
	for i, row := range g.State {
		cp[i] = slices.Clone(row)
	}
	return cp
}

// MarkFound records a solved word. It reports whether the word is new and
// how many words are found, both read under the same lock.
func (g *GameSession) MarkFound(word int) (added bool, found int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if slices.Contains(g.Found, word) {
		return false, len(g.Found)
	}
	g.Found = append(g.Found, word)
	return true, len(g.Found)
}

// MarkAll records words 0..n-1 as found. It reports whether any of them
// was new, so only one caller sees the puzzle complete.
func (g *GameSession) MarkAll(n int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := false
	for i := range n {
		if !slices.Contains(g.Found, i) {
			g.Found = append(g.Found, i)
			added = true
		}
	}
	return added
}

// Snapshot copies the session state for a newly connected client.
func (g *GameSession) Snapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := &Snapshot{
		State:   make([][]string, len(g.State)),
		Found:   slices.Clone(g.Found),
		Players: make(map[string]*Player, len(g.Players)),
	}
	for i, row := range g.State {
		snap.State[i] = slices.Clone(row)
	}
	for k, p := range g.Players {
		cp := *p
		snap.Players[k] = &cp
	}
	return snap
}

// FoundWords returns a copy of the solved word indices.
func (g *GameSession) FoundWords() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.Found)
}
