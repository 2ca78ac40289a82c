package pipeline

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiAnalyzer is the concrete implementation of Analyzer that uses Gemini.
type GeminiAnalyzer struct {
	client    *genai.Client
	modelName string
}

// NewGeminiAnalyzer creates a Gemini client. An empty apiKey lets the SDK
// fall back to GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewGeminiAnalyzer(ctx context.Context, apiKey, modelName string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: DefaultAPIVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiAnalyzer: create genai client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultModelName
	}
	return &GeminiAnalyzer{client: client, modelName: modelName}, nil
}

// ModelName returns the model the analyzer calls.
func (a *GeminiAnalyzer) ModelName() string {
	return a.modelName
}

// AnalyzeReceipt sends the receipt image and extraction prompt to Gemini.
func (a *GeminiAnalyzer) AnalyzeReceipt(ctx context.Context, image []byte, mimeType, eventName string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildReceiptPrompt(eventName)},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("AnalyzeReceipt: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("AnalyzeReceipt: empty response from model")
	}
	return rawText, nil
}

// GenerateText sends a text-only prompt to Gemini and returns the trimmed answer.
func (a *GeminiAnalyzer) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("GenerateText: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("GenerateText: empty response from model")
	}
	return text, nil
}
