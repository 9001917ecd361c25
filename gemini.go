package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const suggestPrompt = `You write word lists for children's word puzzles.

Theme: %q
Language: %s
Number of words: %d

Return JSON only, no markdown, in this shape:
[{"word": "<single word>", "clue": "<short clue>"}, ...]

Rules:
- Each word is a single word of 3 to 10 letters, no spaces, digits or hyphens.
- Words are distinct and written in the requested language.
- Clues are one short sentence in the same language and never contain the word.`

// Suggestion is a themed word with its clue.
type Suggestion struct {
	Word string `json:"word"`
	Clue string `json:"clue"`
}

// errNoSuggestions indicates the model returned no usable word.
var errNoSuggestions = errors.New("no usable word suggestions")

// SuggestWords asks Gemini for count words about theme in the language
// named by locale.
func (g *GeminiClient) SuggestWords(ctx context.Context, theme string, count int, locale string) ([]Suggestion, error) {
	if locale == "" {
		locale = "en"
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(suggestPrompt, theme, locale, count)},
			},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.7)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return parseSuggestions(resp.Text(), count)
}

// parseSuggestions decodes a model answer, dropping entries that are not
// a single word, and keeps at most limit entries.
func parseSuggestions(text string, limit int) ([]Suggestion, error) {
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var raw []Suggestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse suggestions JSON: %w\nraw response: %s", err, text)
	}

	out := make([]Suggestion, 0, len(raw))
	for _, s := range raw {
		s.Word = strings.TrimSpace(s.Word)
		if s.Word == "" || strings.ContainsAny(s.Word, " -\t") {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, errNoSuggestions
	}
	return out, nil
}
