package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bodul/wordgrid/puzzle"
	"github.com/bodul/wordgrid/words"
)

const (
	maxBodySize   = 1 << 20 // 1 Mo
	defaultThemed = 8
	maxThemed     = 20
	markCell      = "X"
)

// WordSuggester produces themed word lists. GeminiClient implements it.
type WordSuggester interface {
	SuggestWords(ctx context.Context, theme string, count int, locale string) ([]Suggestion, error)
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
	// Cleanup stale entries every minute.
	go func() {
		for {
			time.Sleep(time.Minute)
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux       *http.ServeMux
	store     *Store
	builder   *Builder
	suggester WordSuggester
	sse       *Broadcaster
	log       *slog.Logger
	norm      *words.Normalizer
	createRL  *rateLimiter
	themeRL   *rateLimiter
	moveRL    *rateLimiter
}

// NewServer creates a configured HTTP server. suggester may be nil, in
// which case themed generation is unavailable.
func NewServer(store *Store, builder *Builder, suggester WordSuggester, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		mux:       http.NewServeMux(),
		store:     store,
		builder:   builder,
		suggester: suggester,
		sse:       NewBroadcaster(log),
		log:       log,
		norm:      builder.norm,
		createRL:  newRateLimiter(30, time.Minute), // 30 puzzles/min per IP
		themeRL:   newRateLimiter(5, time.Minute),  // 5 Gemini calls/min per IP
		moveRL:    newRateLimiter(60, time.Second), // 60 moves/sec per IP
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleInfo)

	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles/crossword", s.handleCreateCrossword)
	s.mux.HandleFunc("POST /api/puzzles/wordsearch", s.handleCreateWordSearch)
	s.mux.HandleFunc("POST /api/puzzles/rows", s.handleCreateRows)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)
	s.mux.HandleFunc("POST /api/puzzles/{id}/select", s.handleSelect)
	s.mux.HandleFunc("POST /api/themes", s.handleTheme)

	// Game API
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("POST /api/games/{id}/join", s.handleJoinGame)
	s.mux.HandleFunc("POST /api/games/{id}/move", s.handleMove)
	s.mux.HandleFunc("POST /api/games/{id}/found", s.handleFound)
	s.mux.HandleFunc("GET /api/games/{id}/events", s.handleGameEvents)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// GET /: service description.
func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "wordgrid",
		"kinds":   []Kind{KindCrossword, KindWordSearch, KindRows},
		"themes":  s.suggester != nil,
		"locale":  s.norm.Tag().String(),
	})
}

// --- Puzzle handlers ---

// createPuzzle decodes a request body into req, builds the grid and saves it.
func createPuzzle[T any](s *Server, w http.ResponseWriter, r *http.Request, build func(T) (*Grid, error)) {
	if !s.createRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	var req T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	grid, err := build(req)
	if err != nil {
		s.generationError(w, err)
		return
	}
	s.store.SaveGrid(grid)
	s.log.Info("puzzle created", "id", grid.ID, "kind", grid.Kind, "seed", grid.Seed,
		"words", len(grid.Words), "warnings", len(grid.Warnings))

	writeJSON(w, http.StatusCreated, grid)
}

// generationError maps an engine error to an HTTP status.
func (s *Server) generationError(w http.ResponseWriter, err error) {
	if puzzle.IsConfigError(err) || errors.Is(err, errInvalidLocale) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Error("generate puzzle", "err", err)
	jsonError(w, "Erreur lors de la génération", http.StatusInternalServerError)
}

// POST /api/puzzles/crossword
func (s *Server) handleCreateCrossword(w http.ResponseWriter, r *http.Request) {
	createPuzzle(s, w, r, s.builder.Crossword)
}

// POST /api/puzzles/wordsearch
func (s *Server) handleCreateWordSearch(w http.ResponseWriter, r *http.Request) {
	createPuzzle(s, w, r, s.builder.WordSearch)
}

// POST /api/puzzles/rows
func (s *Server) handleCreateRows(w http.ResponseWriter, r *http.Request) {
	createPuzzle(s, w, r, s.builder.Rows)
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListGrids())
}

// GET /api/puzzles/{id}: get a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	grid := s.store.GetGrid(r.PathValue("id"))
	if grid == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

type selectRequest struct {
	Pseudo string  `json:"pseudo"`
	Cells  []Coord `json:"cells"`
}

type selectResponse struct {
	Found bool   `json:"found"`
	Index int    `json:"index"`
	Word  string `json:"word,omitempty"`
}

// decodeSelection reads a cell selection for a word-search grid.
func decodeSelection(w http.ResponseWriter, r *http.Request, grid *Grid) (selectRequest, bool) {
	var req selectRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Cells) == 0 {
		jsonError(w, "Champ 'cells' requis", http.StatusBadRequest)
		return req, false
	}
	if grid.Kind != KindWordSearch {
		jsonError(w, "Sélection réservée aux mots mêlés", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// POST /api/puzzles/{id}/select: match a word-search selection.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	grid := s.store.GetGrid(r.PathValue("id"))
	if grid == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	req, ok := decodeSelection(w, r, grid)
	if !ok {
		return
	}

	resp := selectResponse{Index: -1}
	if i, ok := grid.selectWord(req.Cells); ok {
		resp = selectResponse{Found: true, Index: i, Word: grid.answers[i]}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ThemeRequest asks for a puzzle built from Gemini suggestions.
type ThemeRequest struct {
	Theme   string `json:"theme"`
	Count   int    `json:"count"`
	Kind    Kind   `json:"kind"`
	Locale  string `json:"locale"`
	Seed    *int64 `json:"seed"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// POST /api/themes: suggest words for a theme and build a puzzle.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if !s.themeRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}
	if s.suggester == nil {
		jsonError(w, "Suggestions de mots non configurées", http.StatusServiceUnavailable)
		return
	}

	var req ThemeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Theme) == "" {
		jsonError(w, "Champ 'theme' requis", http.StatusBadRequest)
		return
	}
	if req.Count <= 0 {
		req.Count = defaultThemed
	}
	req.Count = min(req.Count, maxThemed)
	if req.Kind == "" {
		req.Kind = KindCrossword
	}
	if req.Kind != KindCrossword && req.Kind != KindWordSearch && req.Kind != KindRows {
		jsonError(w, "Type de grille inconnu", http.StatusBadRequest)
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = s.norm.Tag().String()
	}

	suggestions, err := s.suggester.SuggestWords(r.Context(), req.Theme, req.Count, locale)
	if err != nil {
		s.log.Error("suggest words", "theme", req.Theme, "err", err)
		jsonError(w, "Erreur lors de la suggestion de mots", http.StatusBadGateway)
		return
	}

	base := PuzzleRequest{Seed: req.Seed, Locale: req.Locale, Clues: make(map[string]string)}
	for _, sg := range suggestions {
		base.Words = append(base.Words, sg.Word)
		base.Clues[sg.Word] = sg.Clue
	}

	var grid *Grid
	switch req.Kind {
	case KindCrossword:
		grid, err = s.builder.Crossword(CrosswordRequest{PuzzleRequest: base})
	case KindWordSearch:
		grid, err = s.builder.WordSearch(WordSearchRequest{PuzzleRequest: base})
	case KindRows:
		rows, cols := req.Rows, req.Columns
		if rows <= 0 {
			rows = len(base.Words)
		}
		if cols <= 0 {
			cols = words.Longest(base.Words) + 4
		}
		grid, err = s.builder.Rows(RowsRequest{PuzzleRequest: base, Rows: rows, Columns: cols})
	}
	if err != nil {
		s.generationError(w, err)
		return
	}
	grid.Name = req.Theme
	s.store.SaveGrid(grid)
	s.log.Info("themed puzzle created", "id", grid.ID, "theme", req.Theme, "kind", grid.Kind, "words", len(grid.Words))

	writeJSON(w, http.StatusCreated, grid)
}

// --- Game handlers ---

// POST /api/games: create a game from a puzzle.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GridID string `json:"grid_id"`
		Preset string `json:"preset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.GridID == "" && req.Preset == "") {
		jsonError(w, "Champ 'grid_id' requis", http.StatusBadRequest)
		return
	}
	if req.GridID == "" {
		grid := s.store.FindGrid(req.Preset)
		if grid == nil {
			jsonError(w, "Grille introuvable", http.StatusNotFound)
			return
		}
		req.GridID = grid.ID
	}

	game, err := s.store.CreateGame(req.GridID)
	if err != nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// GET /api/games/{id}: get current game state.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	resp := struct {
		*GameSession
		Grid *Grid `json:"grid"`
	}{
		GameSession: game,
		Grid:        s.store.GetGrid(game.GridID),
	}
	game.mu.Lock()
	defer game.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/games/{id}/join: join a game with a pseudo.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Pseudo == "" {
		jsonError(w, "Champ 'pseudo' requis", http.StatusBadRequest)
		return
	}

	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "Pseudo invalide", http.StatusBadRequest)
		return
	}

	player := game.AddPlayer(pseudo)
	s.sse.Publish(game.ID, Event{Type: EventPlayerJoined, Pseudo: player.Pseudo, Color: player.Color})
	writeJSON(w, http.StatusOK, player)
}

// POST /api/games/{id}/move: place a letter or a mark.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	if !s.moveRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	grid := s.store.GetGrid(game.GridID)
	if grid == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
		Row    int    `json:"row"`
		Col    int    `json:"col"`
		Value  string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	at := Coord{Row: req.Row, Col: req.Col}
	if !grid.inBounds(at) {
		jsonError(w, "Position hors limites", http.StatusBadRequest)
		return
	}

	value := strings.TrimSpace(req.Value)
	switch grid.Kind {
	case KindCrossword:
		// Empty erases; otherwise exactly one letter.
		if value != "" {
			ch, size := utf8.DecodeRuneInString(value)
			if size != len(value) || !unicode.IsLetter(ch) {
				jsonError(w, "Valeur invalide : une lettre ou vide", http.StatusBadRequest)
				return
			}
			value = grid.upper(value)
		}
		if !grid.Cells[at.Row][at.Col].Active {
			jsonError(w, "Case inactive", http.StatusBadRequest)
			return
		}
	case KindRows:
		value = strings.ToUpper(value)
		if value != "" && value != markCell {
			jsonError(w, "Valeur invalide : X ou vide", http.StatusBadRequest)
			return
		}
	default:
		jsonError(w, "Utilisez /found pour les mots mêlés", http.StatusBadRequest)
		return
	}

	game.SetCell(at.Row, at.Col, value)
	s.sse.Publish(game.ID, Event{
		Type:   EventCellUpdate,
		Pseudo: req.Pseudo,
		Move:   &Move{Row: at.Row, Col: at.Col, Value: value},
	})

	switch grid.Kind {
	case KindCrossword:
		for _, i := range grid.solvedAt(game.GetState(), at) {
			s.markFound(game, grid, i, req.Pseudo, EventWordSolved)
		}
	case KindRows:
		if grid.rowsSolved(game.GetState()) && game.MarkAll(len(grid.Words)) {
			s.publishSolved(game, grid)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/games/{id}/found: submit a word-search selection.
func (s *Server) handleFound(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}
	grid := s.store.GetGrid(game.GridID)
	if grid == nil {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	req, ok := decodeSelection(w, r, grid)
	if !ok {
		return
	}

	resp := selectResponse{Index: -1}
	if i, ok := grid.selectWord(req.Cells); ok {
		resp = selectResponse{Found: true, Index: i, Word: grid.answers[i]}
		s.markFound(game, grid, i, sanitizePseudo(req.Pseudo), EventWordFound)
	}
	writeJSON(w, http.StatusOK, resp)
}

// markFound records a solved word and notifies players the first time.
func (s *Server) markFound(game *GameSession, grid *Grid, word int, pseudo string, typ EventType) {
	added, found := game.MarkFound(word)
	if !added {
		return
	}
	s.sse.Publish(game.ID, Event{
		Type:   typ,
		Pseudo: pseudo,
		Word:   &FoundWord{Index: word, Text: grid.answers[word]},
	})
	if found == len(grid.Words) {
		s.publishSolved(game, grid)
	}
}

func (s *Server) publishSolved(game *GameSession, grid *Grid) {
	s.log.Info("puzzle solved", "game", game.ID, "grid", grid.ID)
	s.sse.Publish(game.ID, Event{Type: EventPuzzleSolved})
}

// GET /api/games/{id}/events: SSE stream.
func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	game := s.store.GetGame(r.PathValue("id"))
	if game == nil {
		jsonError(w, "Partie introuvable", http.StatusNotFound)
		return
	}

	playerPseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	s.sse.ServeSSE(w, r, game.ID, func() Event {
		return Event{Type: EventGameState, Game: game.Snapshot()}
	}, func() {
		if playerPseudo != "" {
			game.RemovePlayer(playerPseudo)
			s.sse.Publish(game.ID, Event{Type: EventPlayerLeft, Pseudo: playerPseudo})
		}
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
