package librarian

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini — генератор на Gemini API с JSON-схемой ответа.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini создаёт клиента Gemini API по ключу.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	const op = "librarian.NewGemini"
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Gemini{client: client, model: model}, nil
}

func bookSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":    str,
				"author":   str,
				"year":     str,
				"summary":  str,
				"category": str,
			},
			Required: []string{"title", "author", "year", "summary", "category"},
		},
	}
}

// Generate отправляет промпт и возвращает текст ответа.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "librarian.Gemini.Generate"
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   bookSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.Text(), nil
}
