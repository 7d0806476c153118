package gen

import (
	"context"

	"google.golang.org/genai"
)

// TextGenerator is the external text-generation collaborator. The gateway
// makes exactly one attempt per request and falls back on any error.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Gemini implements TextGenerator on the Google GenAI API.
type Gemini struct {
	client *genai.Client
	model  string
}

const defaultModel = "gemini-2.0-flash"

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
