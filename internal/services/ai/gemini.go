package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/benvon/plume/internal/models"
	"google.golang.org/genai"
)

const (
	// DefaultGeminiBaseURL is the public Generative Language API host
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	geminiAPIVersion = "v1beta"
	geminiListLimit  = 100
)

// GeminiAdapter calls the Gemini API through the Google Gen AI SDK
type GeminiAdapter struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewGeminiAdapter creates the Gemini adapter
func NewGeminiAdapter(baseURL string, httpClient *http.Client, timeout time.Duration) *GeminiAdapter {
	return &GeminiAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (g *GeminiAdapter) Provider() models.Provider {
	return models.ProviderGemini
}

// client builds an SDK client for the stored key. The SDK does not retry
// unary calls.
func (g *GeminiAdapter) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    g.baseURL + "/",
			APIVersion: geminiAPIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create client: %w", models.ProviderGemini, err)
	}
	return client, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, systemPrompt, userPrompt string, settings models.ProviderSettings) (string, error) {
	if !settings.HasCredential() {
		return "", missingCredential(models.ProviderGemini)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := g.client(ctx, settings.APIKey)
	if err != nil {
		return "", err
	}

	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		}
	}

	resp, err := client.Models.GenerateContent(ctx, settings.Model, genai.Text(userPrompt), config)
	if err != nil {
		return "", g.convertError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s: %w: no candidates in response", models.ProviderGemini, ErrProviderResponse)
	}
	return text, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context, settings models.ProviderSettings) ([]models.ModelInfo, error) {
	if !settings.HasCredential() {
		return nil, missingCredential(models.ProviderGemini)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := g.client(ctx, settings.APIKey)
	if err != nil {
		return nil, err
	}

	page, err := client.Models.List(ctx, &genai.ListModelsConfig{PageSize: geminiListLimit})
	if err != nil {
		return nil, g.convertError(err)
	}

	list := make([]models.ModelInfo, 0, len(page.Items))
	for _, m := range page.Items {
		if !supportsGenerate(m.SupportedActions) {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		name := m.DisplayName
		if name == "" {
			name = id
		}
		list = append(list, models.ModelInfo{ID: id, Name: name})
	}
	return list, nil
}

func (g *GeminiAdapter) CheckStatus(_ context.Context, settings models.ProviderSettings) models.ProviderStatus {
	return credentialStatus(models.ProviderGemini, settings)
}

// convertError turns SDK errors into the package taxonomy
func (g *GeminiAdapter) convertError(err error) error {
	var sdkErr genai.APIError
	if errors.As(err, &sdkErr) {
		message := sdkErr.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", sdkErr.Code)
		}
		return &APIError{
			Provider:   models.ProviderGemini,
			StatusCode: sdkErr.Code,
			Type:       sdkErr.Status,
			Message:    message,
		}
	}
	return classifyTransportError(models.ProviderGemini, err)
}

func supportsGenerate(actions []string) bool {
	return len(actions) == 0 || slices.Contains(actions, "generateContent")
}
