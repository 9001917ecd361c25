package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bodul/wordgrid/puzzle"
)

func newTestServer() *Server {
	return NewServer(NewStore(), NewBuilder(nil, "", nil), nil, nil)
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createGrid(t *testing.T, srv *Server, kind Kind, body string) *Grid {
	t.Helper()
	w := do(srv, "POST", "/api/puzzles/"+string(kind), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s: expected 201, got %d: %s", kind, w.Code, w.Body.String())
	}
	var g Grid
	json.NewDecoder(w.Body).Decode(&g)
	stored := srv.store.GetGrid(g.ID)
	if stored == nil {
		t.Fatalf("grid %s was not stored", g.ID)
	}
	return stored
}

func createGame(t *testing.T, srv *Server, gridID string) *GameSession {
	t.Helper()
	w := do(srv, "POST", "/api/games", `{"grid_id":"`+gridID+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create game: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	return srv.store.GetGame(resp.ID)
}

// waitEvent reads events from c until one of type typ arrives.
func waitEvent(t *testing.T, c *client, typ EventType) Event {
	t.Helper()
	timeout := time.After(200 * time.Millisecond)
	for {
		select {
		case msg := <-c.ch:
			var evt Event
			if err := json.Unmarshal([]byte(msg), &evt); err != nil {
				t.Fatalf("decode event %q: %v", msg, err)
			}
			if evt.Type == typ {
				return evt
			}
		case <-timeout:
			t.Fatalf("no %s event received", typ)
		}
	}
}

func TestInfoRoute(t *testing.T) {
	srv := newTestServer()

	w := do(srv, "GET", "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var info struct {
		Service string `json:"service"`
		Themes  bool   `json:"themes"`
	}
	json.NewDecoder(w.Body).Decode(&info)
	if info.Service != "wordgrid" || info.Themes {
		t.Fatalf("unexpected info: %+v", info)
	}

	if w := do(srv, "GET", "/unknown", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", w.Code)
	}
}

func TestCreateCrossword(t *testing.T) {
	srv := newTestServer()

	g := createGrid(t, srv, KindCrossword, `{"list":"cat-car-art","seed":1,"clues":{"cat":"Purrs"}}`)
	if g.Kind != KindCrossword || g.Seed != 1 {
		t.Fatalf("unexpected grid: kind=%s seed=%d", g.Kind, g.Seed)
	}
	if len(g.Words) != 3 || len(g.Warnings) != 0 {
		t.Fatalf("expected 3 words and no warnings, got %d/%d", len(g.Words), len(g.Warnings))
	}
	if len(g.Cells) != g.Rows || len(g.Cells[0]) != g.Cols {
		t.Fatalf("cells do not match %dx%d", g.Rows, g.Cols)
	}

	for i, w := range g.Words {
		if w.Text != "" {
			t.Fatalf("word %d: answer should be hidden, got %q", i, w.Text)
		}
		if len(w.Cells) != w.Length {
			t.Fatalf("word %d: %d cells for length %d", i, len(w.Cells), w.Length)
		}
		for _, c := range w.Cells {
			if !g.Cells[c.Row][c.Col].Active || g.Cells[c.Row][c.Col].Letter != "" {
				t.Fatalf("word %d: cell %+v should be active and blank", i, c)
			}
		}
	}
	if i := g.wordIndex("CAT"); i < 0 || g.Words[i].Clue != "Purrs" {
		t.Fatalf("expected CAT with its clue, got index %d", i)
	}
}

func TestCreatePuzzleErrors(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		name string
		kind Kind
		body string
		code int
	}{
		{"malformed", KindCrossword, `{`, http.StatusBadRequest},
		{"no words", KindCrossword, `{"words":[" ",""]}`, http.StatusBadRequest},
		{"bad locale", KindCrossword, `{"words":["cat"],"locale":"@@"}`, http.StatusBadRequest},
		{"zero width", KindWordSearch, `{"words":["cat"],"width":0,"height":5}`, http.StatusBadRequest},
		{"word too long", KindRows, `{"words":["elephant"],"rows":2,"columns":5}`, http.StatusBadRequest},
		{"too many words", KindRows, `{"words":["a","b","c"],"rows":2,"columns":5}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "POST", "/api/puzzles/"+string(tt.kind), tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAndGetPuzzles(t *testing.T) {
	srv := newTestServer()
	g := createGrid(t, srv, KindWordSearch, `{"words":["apple","pear"],"seed":3}`)
	createGrid(t, srv, KindRows, `{"words":["sun"],"rows":1,"columns":5,"seed":3}`)

	w := do(srv, "GET", "/api/puzzles", "")
	var list []Grid
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 2 {
		t.Fatalf("expected 2 puzzles, got %d", len(list))
	}

	w = do(srv, "GET", "/api/puzzles/"+g.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := do(srv, "GET", "/api/puzzles/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func selectionBody(cells []puzzle.Position) string {
	b, _ := json.Marshal(map[string]any{"pseudo": "Alice", "cells": coordsOf(cells)})
	return string(b)
}

func TestSelectWord(t *testing.T) {
	srv := newTestServer()
	g := createGrid(t, srv, KindWordSearch, `{"words":["apple","pear","plum"],"seed":42}`)

	pl := g.search.Placements[0]
	reversed := slices.Clone(pl.Cells)
	slices.Reverse(reversed)

	for _, cells := range [][]puzzle.Position{pl.Cells, reversed} {
		w := do(srv, "POST", "/api/puzzles/"+g.ID+"/select", selectionBody(cells))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp selectResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if !resp.Found || resp.Word != pl.Word || resp.Index != 0 {
			t.Fatalf("expected %s at index 0, got %+v", pl.Word, resp)
		}
	}

	w := do(srv, "POST", "/api/puzzles/"+g.ID+"/select", selectionBody(pl.Cells[:1]))
	var resp selectResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Found {
		t.Fatalf("single cell should not match, got %+v", resp)
	}

	if w := do(srv, "POST", "/api/puzzles/"+g.ID+"/select", `{"cells":[]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection, got %d", w.Code)
	}

	cw := createGrid(t, srv, KindCrossword, `{"words":["cat"],"seed":1}`)
	if w := do(srv, "POST", "/api/puzzles/"+cw.ID+"/select", selectionBody(pl.Cells)); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on crossword, got %d", w.Code)
	}
}

type fakeSuggester struct {
	suggestions []Suggestion
	err         error
	locale      string
}

func (f *fakeSuggester) SuggestWords(_ context.Context, _ string, count int, locale string) ([]Suggestion, error) {
	f.locale = locale
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions[:min(count, len(f.suggestions))], nil
}

func TestThemeUnavailable(t *testing.T) {
	srv := newTestServer()
	w := do(srv, "POST", "/api/themes", `{"theme":"farm"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestTheme(t *testing.T) {
	fake := &fakeSuggester{suggestions: []Suggestion{
		{Word: "cow", Clue: "Gives milk"},
		{Word: "horse", Clue: "Gallops"},
		{Word: "sheep", Clue: "Grows wool"},
	}}
	srv := NewServer(NewStore(), NewBuilder(nil, "", nil), fake, nil)

	for _, kind := range []Kind{KindCrossword, KindWordSearch, KindRows} {
		w := do(srv, "POST", "/api/themes", `{"theme":"farm","kind":"`+string(kind)+`","seed":9,"locale":"en"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("%s: expected 201, got %d: %s", kind, w.Code, w.Body.String())
		}
		var g Grid
		json.NewDecoder(w.Body).Decode(&g)
		if g.Kind != kind || g.Name != "farm" || len(g.Words) != 3 {
			t.Fatalf("%s: unexpected grid kind=%s name=%q words=%d", kind, g.Kind, g.Name, len(g.Words))
		}
		for _, word := range g.Words {
			if word.Clue == "" {
				t.Fatalf("%s: word without clue: %+v", kind, word)
			}
		}
	}
	if fake.locale != "en" {
		t.Fatalf("expected locale en, got %q", fake.locale)
	}

	if w := do(srv, "POST", "/api/themes", `{"theme":"  "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank theme, got %d", w.Code)
	}
	if w := do(srv, "POST", "/api/themes", `{"theme":"farm","kind":"maze"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", w.Code)
	}
}

func TestThemeUpstreamError(t *testing.T) {
	fake := &fakeSuggester{err: errors.New("quota exceeded")}
	srv := NewServer(NewStore(), NewBuilder(nil, "", nil), fake, nil)

	w := do(srv, "POST", "/api/themes", `{"theme":"farm"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestCrosswordGameFlow(t *testing.T) {
	srv := newTestServer()
	grid := createGrid(t, srv, KindCrossword, `{"list":"CAT-CAR-ART","seed":1}`)
	game := createGame(t, srv, grid.ID)

	// Join game.
	w := do(srv, "POST", "/api/games/"+game.ID+"/join", `{"pseudo":"Alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("join game: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var player Player
	json.NewDecoder(w.Body).Decode(&player)
	if player.Pseudo != "Alice" {
		t.Fatalf("expected pseudo Alice, got %s", player.Pseudo)
	}

	events := srv.sse.Register(game.ID)
	defer srv.sse.Unregister(events)

	// Fill the first word letter by letter, lower case.
	word := grid.Words[0]
	answer := []rune(strings.ToLower(grid.answers[0]))
	for i, c := range word.Cells {
		body, _ := json.Marshal(map[string]any{"pseudo": "Alice", "row": c.Row, "col": c.Col, "value": string(answer[i])})
		w := do(srv, "POST", "/api/games/"+game.ID+"/move", string(body))
		if w.Code != http.StatusNoContent {
			t.Fatalf("move %d: expected 204, got %d: %s", i, w.Code, w.Body.String())
		}
	}

	update := waitEvent(t, events, EventCellUpdate)
	if update.Move == nil || update.Move.Value != strings.ToUpper(string(answer[0])) || update.Pseudo != "Alice" {
		t.Fatalf("expected upper-cased move by Alice, got %+v", update)
	}
	solved := waitEvent(t, events, EventWordSolved)
	if solved.Word == nil || solved.Word.Text != grid.answers[0] || solved.Word.Index != 0 {
		t.Fatalf("expected %s solved, got %+v", grid.answers[0], solved.Word)
	}
	if !slices.Contains(game.FoundWords(), 0) {
		t.Fatalf("expected word 0 found, got %v", game.FoundWords())
	}

	// Get game state, including the grid.
	w = do(srv, "GET", "/api/games/"+game.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get game: expected 200, got %d", w.Code)
	}
	var resp struct {
		State [][]string `json:"state"`
		Found []int      `json:"found"`
		Grid  *Grid      `json:"grid"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	first := word.Cells[0]
	if got, want := resp.State[first.Row][first.Col], strings.ToUpper(string(answer[0])); got != want {
		t.Fatalf("expected %q at %+v, got %q", want, first, got)
	}
	if resp.Grid == nil || len(resp.Found) != 1 {
		t.Fatalf("expected grid and one found word, got %+v", resp.Found)
	}
}

func TestCrosswordMoveUsesGridLocale(t *testing.T) {
	srv := newTestServer()
	grid := createGrid(t, srv, KindCrossword, `{"words":["kiraz"],"locale":"tr","seed":1}`)
	game := createGame(t, srv, grid.ID)

	events := srv.sse.Register(game.ID)
	defer srv.sse.Unregister(events)

	for i, c := range grid.Words[0].Cells {
		body, _ := json.Marshal(map[string]any{"pseudo": "Ayşe", "row": c.Row, "col": c.Col, "value": string("kiraz"[i])})
		if w := do(srv, "POST", "/api/games/"+game.ID+"/move", string(body)); w.Code != http.StatusNoContent {
			t.Fatalf("move %d: expected 204, got %d: %s", i, w.Code, w.Body.String())
		}
	}

	second := grid.Words[0].Cells[1]
	if got := game.GetState()[second.Row][second.Col]; got != "İ" {
		t.Fatalf("expected dotted capital I, got %q", got)
	}
	solved := waitEvent(t, events, EventWordSolved)
	if solved.Word == nil || solved.Word.Text != "KİRAZ" {
		t.Fatalf("expected KİRAZ solved, got %+v", solved.Word)
	}
	waitEvent(t, events, EventPuzzleSolved)
}

func TestPuzzleSolvedPublishedOnce(t *testing.T) {
	srv := newTestServer()
	grid := createGrid(t, srv, KindWordSearch, `{"words":["cow","owl","hen"],"width":6,"height":6,"seed":5}`)
	game := createGame(t, srv, grid.ID)

	events := srv.sse.Register(game.ID)
	defer srv.sse.Unregister(events)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range grid.Words {
				srv.markFound(game, grid, i, "Alice", EventWordFound)
			}
		}()
	}
	wg.Wait()

	counts := map[EventType]int{}
	for done := false; !done; {
		select {
		case msg := <-events.ch:
			var evt Event
			if err := json.Unmarshal([]byte(msg), &evt); err != nil {
				t.Fatalf("decode event %q: %v", msg, err)
			}
			counts[evt.Type]++
		case <-time.After(50 * time.Millisecond):
			done = true
		}
	}
	if counts[EventWordFound] != len(grid.Words) || counts[EventPuzzleSolved] != 1 {
		t.Fatalf("expected %d word_found and 1 puzzle_solved, got %v", len(grid.Words), counts)
	}
}

func TestCreateGameInvalidGrid(t *testing.T) {
	srv := newTestServer()

	if w := do(srv, "POST", "/api/games", `{"grid_id":"nonexistent"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := do(srv, "POST", "/api/games", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateGameFromPreset(t *testing.T) {
	srv := newTestServer()
	g, err := srv.builder.Crossword(CrosswordRequest{PuzzleRequest: PuzzleRequest{List: "COW-OWL"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g.Name = "farm"
	srv.store.SaveGrid(g)

	w := do(srv, "POST", "/api/games", `{"preset":"farm"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(srv, "POST", "/api/games", `{"preset":"zoo"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestMoveValidation(t *testing.T) {
	srv := newTestServer()
	grid := createGrid(t, srv, KindCrossword, `{"list":"CAT-CAR-ART-SCAR-TAR","seed":5}`)
	game := createGame(t, srv, grid.ID)
	c := grid.Words[0].Cells[0]

	tests := []struct {
		name string
		body string
		code int
	}{
		{"digit", `{"row":` + itoa(c.Row) + `,"col":` + itoa(c.Col) + `,"value":"5"}`, http.StatusBadRequest},
		{"two letters", `{"row":` + itoa(c.Row) + `,"col":` + itoa(c.Col) + `,"value":"AB"}`, http.StatusBadRequest},
		{"out of bounds", `{"row":100,"col":100,"value":"A"}`, http.StatusBadRequest},
		{"erase", `{"row":` + itoa(c.Row) + `,"col":` + itoa(c.Col) + `,"value":""}`, http.StatusNoContent},
		{"accented", `{"row":` + itoa(c.Row) + `,"col":` + itoa(c.Col) + `,"value":"é"}`, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "POST", "/api/games/"+game.ID+"/move", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}

	// Inactive cells refuse letters.
	for row := range grid.Rows {
		for col := range grid.Cols {
			if grid.Cells[row][col].Active {
				continue
			}
			w := do(srv, "POST", "/api/games/"+game.ID+"/move", `{"row":`+itoa(row)+`,"col":`+itoa(col)+`,"value":"A"}`)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("inactive cell: expected 400, got %d", w.Code)
			}
			return
		}
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestWordSearchGameFlow(t *testing.T) {
	srv := newTestServer()
	grid := createGrid(t, srv, KindWordSearch, `{"words":["cow","owl"],"width":6,"height":6,"seed":11}`)
	game := createGame(t, srv, grid.ID)

	events := srv.sse.Register(game.ID)
	defer srv.sse.Unregister(events)

	// Letters are placed with /found, not /move.
	if w := do(srv, "POST", "/api/games/"+game.ID+"/move", `{"row":0,"col":0,"value":"A"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for move on word search, got %d", w.Code)
	}

	for i, pl := range grid.search.Placements {
		w := do(srv, "POST", "/api/games/"+game.ID+"/found", selectionBody(pl.Cells))
		if w.Code != http.StatusOK {
			t.Fatalf("found: expected 200, got %d: %s", w.Code, w.Body.String())
		}
		evt := waitEvent(t, events, EventWordFound)
		if evt.Word == nil || evt.Word.Text != pl.Word || evt.Pseudo != "Alice" {
			t.Fatalf("word %d: unexpected event %+v", i, evt)
		}
	}
	waitEvent(t, events, EventPuzzleSolved)

	// Finding a word twice does not notify again.
	w := do(srv, "POST", "/api/games/"+game.ID+"/found", selectionBody(grid.search.Placements[0].Cells))
	var resp selectResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Found {
		t.Fatal("expected selection to still match")
	}
	select {
	case msg := <-events.ch:
		t.Fatalf("unexpected event %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRowsGameFlow(t *testing.T) {
	srv := newTestServer()
	grid := createGrid(t, srv, KindRows, `{"words":["cat","dog"],"rows":2,"columns":4,"seed":8}`)
	game := createGame(t, srv, grid.ID)

	events := srv.sse.Register(game.ID)
	defer srv.sse.Unregister(events)

	if w := do(srv, "POST", "/api/games/"+game.ID+"/move", `{"row":0,"col":0,"value":"B"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a letter on a row puzzle, got %d", w.Code)
	}

	for row := range grid.Rows {
		for col := range grid.Cols {
			if grid.rows.IsSolutionCell(puzzle.Position{X: col, Y: row}) {
				continue
			}
			w := do(srv, "POST", "/api/games/"+game.ID+"/move", `{"row":`+itoa(row)+`,"col":`+itoa(col)+`,"value":"x"}`)
			if w.Code != http.StatusNoContent {
				t.Fatalf("mark: expected 204, got %d: %s", w.Code, w.Body.String())
			}
		}
	}
	waitEvent(t, events, EventPuzzleSolved)
	if len(game.FoundWords()) != 2 {
		t.Fatalf("expected both words found, got %v", game.FoundWords())
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer()

	w := do(srv, "GET", "/", "")

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for key, expected := range headers {
		if got := w.Header().Get(key); got != expected {
			t.Errorf("header %s: expected %q, got %q", key, expected, got)
		}
	}

	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Content-Security-Policy header missing")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Second)

	// First 3 should pass.
	for i := range 3 {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th should be blocked.
	if rl.allow("1.2.3.4") {
		t.Fatal("4th request should be rate limited")
	}

	// Different IP should still be allowed.
	if !rl.allow("5.6.7.8") {
		t.Fatal("different IP should be allowed")
	}
}
