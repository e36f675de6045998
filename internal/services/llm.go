package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"alfredoptarigan/resume-matcher/internal/config"
)

// Completion is the narrow contract with the LLM collaborator.
type Completion struct {
	Text       string
	TokensUsed *int
}

type LLMClient interface {
	Complete(ctx context.Context, system, prompt string) (*Completion, error)
	ModelName() string
}

type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

func NewGeminiClient(cfg config.LLMConfig) (LLMClient, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}, nil
}

// Complete implements LLMClient. The call is bounded by the configured
// timeout; the orchestrators map timeouts and transport errors to their own
// failure kinds.
func (g *geminiClient) Complete(ctx context.Context, system, prompt string) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxTokens,
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("llm completion failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("llm returned nil response")
	}

	completion := &Completion{Text: resp.Text()}
	if resp.UsageMetadata != nil {
		tokens := int(resp.UsageMetadata.TotalTokenCount)
		completion.TokensUsed = &tokens
	}

	return completion, nil
}

// ModelName implements LLMClient.
func (g *geminiClient) ModelName() string {
	return g.model
}
