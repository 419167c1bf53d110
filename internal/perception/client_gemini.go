package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fairway/internal/logging"

	"google.golang.org/genai"
)

// GeminiClient implements LLMClient on the Google GenAI SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini-backed classification client.
func NewGeminiClient(ctx context.Context, cfg ClientConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GeminiClient{client: client, model: model, timeout: timeout}, nil
}

// Classify sends one completion request. Low temperature keeps the JSON
// output stable across retries of the same input.
func (c *GeminiClient) Classify(ctx context.Context, text, contextFragment string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := text
	if contextFragment != "" {
		prompt = contextFragment + "\n## Current Request\n" + text
	}

	temp := float32(0.1)
	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:       &temp,
			SystemInstruction: genai.NewContentFromText(classifierSystemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		logging.Get(logging.CategoryPerception).Warn("gemini call failed: %v", err)
		return "", fmt.Errorf("gemini classification call: %w", err)
	}

	response := result.Text()
	if response == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}
	return response, nil
}

// Name identifies the provider.
func (c *GeminiClient) Name() string {
	return "gemini:" + c.model
}
