// Package advisor is the Krishi Sakhi chat assistant: a Gemini-backed
// Q&A endpoint grounded on a local document knowledge base.
package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const systemPrompt = `You are 'Krishi Sakhi', a friendly and knowledgeable AI farming assistant for farmers in Kerala, India.
- Your purpose is to answer farming-related questions.
- Analyze the user's query to determine if it is in English or Malayalam. Your final response MUST be in the same language.
- After your main answer, add a language tag on a new line, like this: [lang:ml] for Malayalam or [lang:en] for English. This tag is for the application and should not be spoken.
- Prioritize using the information from the 'CONTEXT FROM DOCUMENTS' section to answer.
- If the documents don't have the answer, use your general knowledge.
- Keep your answers clear, concise, and easy for a farmer to understand.`

// Generator abstracts the LLM so handlers can be tested without a key.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
		})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

// BuildPrompt composes the grounded prompt sent to the model.
func BuildPrompt(docContext, query string) string {
	return fmt.Sprintf("CONTEXT FROM DOCUMENTS:\n---\n%s\n---\n\nFARMER'S QUERY:\n%s", docContext, query)
}
