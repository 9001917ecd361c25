package main

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// GeminiClient suggests themed word lists through Gemini on Vertex AI.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration // per SuggestWords call, 0 for none
}

// geminiSettings resolves the Vertex AI client config and model name for
// cfg. Empty region and model fall back to defaults.
func geminiSettings(cfg Config) (*genai.ClientConfig, string) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	}, model
}

// NewGeminiClient creates a client using Application Default Credentials.
// Set GOOGLE_APPLICATION_CREDENTIALS to the service account key file path.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("create genai client: GCP_PROJECT_ID is required")
	}
	cc, model := geminiSettings(cfg)
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: model,
		timeout:   cfg.SuggestTimeout,
	}, nil
}

// Model returns the Gemini model used for suggestions.
func (g *GeminiClient) Model() string { return g.modelName }

// Close releases resources held by the client.
func (g *GeminiClient) Close() error {
	return nil
}
