package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ModelClient generates one model response for a conversation history,
// optionally offering function declarations the model may call.
type ModelClient interface {
	Generate(ctx context.Context, history []*genai.Content, decls []*genai.FunctionDeclaration) (*genai.GenerateContentResponse, error)
}

// GeminiConfig holds the model and generation settings.
type GeminiConfig struct {
	Project         string
	Location        string
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Gemini is the Vertex AI backed ModelClient.
type Gemini struct {
	client *genai.Client
	cfg    GeminiConfig
}

// NewGemini creates a Vertex AI client for the configured project and
// location.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.Project,
		Location: cfg.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	return &Gemini{client: client, cfg: cfg}, nil
}

// Generate runs one model turn. Safety filtering is disabled across
// categories to keep tool-calling deterministic for benign queries.
func (g *Gemini) Generate(ctx context.Context, history []*genai.Content, decls []*genai.FunctionDeclaration) (*genai.GenerateContentResponse, error) {
	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(g.cfg.Temperature),
		TopP:               genai.Ptr(g.cfg.TopP),
		MaxOutputTokens:    g.cfg.MaxOutputTokens,
		ResponseModalities: []string{"TEXT"},
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		},
	}

	if len(decls) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, history, config)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return resp, nil
}
