package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// EventType names a game update.
type EventType string

const (
	EventGameState    EventType = "game_state"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventCellUpdate   EventType = "cell_update"
	EventWordSolved   EventType = "word_solved" // crossword word complete and correct
	EventWordFound    EventType = "word_found"  // word-search selection matched
	EventPuzzleSolved EventType = "puzzle_solved"
)

// Move is a cell change made by a player. An empty Value erases.
type Move struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// FoundWord identifies a solved entry of Grid.Words.
type FoundWord struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Snapshot is the state sent to a client when it connects.
type Snapshot struct {
	State   [][]string         `json:"state"`
	Found   []int              `json:"found"`
	Players map[string]*Player `json:"players"`
}

// Event is a game update pushed to every client of a session. Only the
// field matching Type is set.
type Event struct {
	Type   EventType  `json:"type"`
	Pseudo string     `json:"pseudo,omitempty"`
	Color  string     `json:"color,omitempty"`
	Move   *Move      `json:"move,omitempty"`
	Word   *FoundWord `json:"word,omitempty"`
	Game   *Snapshot  `json:"game,omitempty"`
}

// client represents a single SSE connection.
type client struct {
	ch     chan string
	gameID string
}

// Broadcaster manages SSE clients grouped by game session.
type Broadcaster struct {
	mu    sync.RWMutex
	games map[string]map[*client]struct{}
	log   *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(log *slog.Logger) *Broadcaster {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Broadcaster{
		games: make(map[string]map[*client]struct{}),
		log:   log,
	}
}

// Register adds a client for a game session and returns it.
func (b *Broadcaster) Register(gameID string) *client {
	c := &client{
		ch:     make(chan string, sseChannelBuffer),
		gameID: gameID,
	}
	b.mu.Lock()
	if b.games[gameID] == nil {
		b.games[gameID] = make(map[*client]struct{})
	}
	b.games[gameID][c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a client and closes its channel. Games without
// clients are forgotten.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := b.games[c.gameID]
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.ch)
	if len(clients) == 0 {
		delete(b.games, c.gameID)
	}
}

// Broadcast sends a raw message to all clients of a game session.
// Clients whose buffer is full miss the message.
func (b *Broadcaster) Broadcast(gameID, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.games[gameID] {
		select {
		case c.ch <- data:
		default:
			b.log.Debug("sse client lagging, message dropped", "game", gameID)
		}
	}
}

// Publish encodes evt as JSON and broadcasts it.
func (b *Broadcaster) Publish(gameID string, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		b.log.Error("encode sse event", "game", gameID, "type", evt.Type, "err", err)
		return
	}
	b.log.Debug("publish", "game", gameID, "type", evt.Type)
	b.Broadcast(gameID, string(data))
}

// ClientCount returns the number of connected clients for a game.
func (b *Broadcaster) ClientCount(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.games[gameID])
}

// ServeSSE streams a game's events until the request ends. hello builds
// the first event sent to the new client; bye runs after it disconnects.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, gameID string, hello func() Event, bye func()) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(gameID)
	defer func() {
		b.Unregister(c)
		if bye != nil {
			bye()
		}
	}()

	if hello != nil {
		data, err := json.Marshal(hello())
		if err != nil {
			b.log.Error("encode sse greeting", "game", gameID, "err", err)
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
